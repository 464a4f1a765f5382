package tasks

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"taskpad/internal/model"
)

// Handler exposes the task container over HTTP. The remote fetch is triggered
// lazily by the first list request; the idle gate in the store keeps later
// requests from re-issuing it.
type Handler struct {
	store    *Store
	pageSize int
}

func NewHandler(store *Store, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Handler{store: store, pageSize: pageSize}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

type listResponse struct {
	Status     Status       `json:"status"`
	Error      *string      `json:"error"`
	Query      string       `json:"query"`
	Filter     Filter       `json:"filter"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
	Filtered   int          `json:"filteredCount"`
	Items      []model.Task `json:"items"`
}

// List handles GET /api/tasks. Query params q and status write through to the
// container so it stays the source of truth for the active criteria; page
// selects the derived page and falls back to 1 when it overflows the result.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.store.FetchAll(r.Context())

	params := r.URL.Query()
	if params.Has("q") {
		h.store.SetQuery(params.Get("q"))
	}
	if params.Has("status") {
		h.store.SetFilter(Filter(params.Get("status")))
	}

	page := 1
	if raw := strings.TrimSpace(params.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeErr(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}

	snap := h.store.Snapshot()
	v := Derive(snap.Items, snap.Query, snap.Filter, page, h.pageSize)
	if v.Page > v.TotalPages {
		v = Derive(snap.Items, snap.Query, snap.Filter, 1, h.pageSize)
	}

	res := listResponse{
		Status:     snap.Status,
		Query:      snap.Query,
		Filter:     snap.Filter,
		Page:       v.Page,
		TotalPages: v.TotalPages,
		Filtered:   v.Filtered,
		Items:      v.Items,
	}
	if snap.Err != "" {
		res.Error = &snap.Err
	}
	writeJSON(w, http.StatusOK, res)
}

type createRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	UserID    int    `json:"userId"`
}

// Create handles POST /api/tasks. An empty title is rejected here, at the
// validation boundary; it never reaches the container.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in createRequest
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		writeErr(w, http.StatusBadRequest, "title is required")
		return
	}
	t := h.store.Add(title, in.Completed, in.UserID)
	writeJSON(w, http.StatusCreated, t)
}

func taskID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// Detail handles GET /api/tasks/{id}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid task id")
		return
	}
	t, found := h.store.Get(id)
	if !found {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Patch handles PATCH /api/tasks/{id}. An absent id is a silent no-op: the
// response reports found=false but the call still succeeds.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid task id")
		return
	}
	var p Patch
	if err := decodeJSON(r, &p); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if p.Title != nil {
		trimmed := strings.TrimSpace(*p.Title)
		if trimmed == "" {
			writeErr(w, http.StatusBadRequest, "title is required")
			return
		}
		p.Title = &trimmed
	}

	t, found := h.store.Update(id, p)
	res := map[string]any{"ok": true, "found": found}
	if found {
		res["task"] = t
	}
	writeJSON(w, http.StatusOK, res)
}

// Delete handles DELETE /api/tasks/{id}. Absent ids are a silent no-op.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid task id")
		return
	}
	found := h.store.Remove(id)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "found": found})
}

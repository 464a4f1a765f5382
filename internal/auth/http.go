package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
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

type sessionResponse struct {
	IsAuthenticated bool    `json:"isAuthenticated"`
	Username        *string `json:"username"`
	Role            *string `json:"role"`
}

func toSessionResponse(s Session) sessionResponse {
	if !s.IsAuthenticated {
		return sessionResponse{}
	}
	username := s.Username
	role := string(s.Role)
	return sessionResponse{IsAuthenticated: true, Username: &username, Role: &role}
}

// Login handles POST /api/auth/login. An invalid pair is a form-level error,
// not a fault: 401 with a message the form can render.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		writeErr(w, http.StatusBadRequest, "username and password are required")
		return
	}

	sess, token, err := h.svc.Login(in.Username, in.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		writeErr(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.svc.SetSessionCookie(w, r, token)
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// Logout handles POST /api/auth/logout. It succeeds from any state.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.svc.ClearSessionCookie(w, r)
	writeJSON(w, http.StatusOK, toSessionResponse(Session{}))
}

// Session handles GET /api/auth/session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSessionResponse(h.svc.Current()))
}

// Profile handles PUT /api/auth/profile. Only the username changes.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		writeErr(w, http.StatusBadRequest, "username is required")
		return
	}

	sess, err := h.svc.UpdateProfile(in.Username)
	if errors.Is(err, ErrNotAuthenticated) {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

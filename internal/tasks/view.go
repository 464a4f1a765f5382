package tasks

import (
	"strings"

	"taskpad/internal/model"
)

// DefaultPageSize is the number of tasks per derived page.
const DefaultPageSize = 9

// View is the filtered, searched, paginated subset of tasks computed for
// display. It is derived on demand and never stored as primary state.
type View struct {
	Items      []model.Task
	Page       int
	TotalPages int
	Filtered   int
}

func matchesFilter(t model.Task, f Filter) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	default:
		return true
	}
}

func matchesQuery(t model.Task, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), q)
}

// Derive computes the display page: status filter, then case-insensitive
// substring match on title, then a half-open page slice. It is pure; calling
// it twice with the same inputs yields the same result. A page past the end
// yields an empty Items slice; resetting to page 1 in that case is the
// caller's policy, not enforced here.
func Derive(items []model.Task, query string, filter Filter, page, pageSize int) View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	q := strings.ToLower(strings.TrimSpace(query))
	filtered := make([]model.Task, 0, len(items))
	for _, t := range items {
		if matchesFilter(t, filter) && matchesQuery(t, q) {
			filtered = append(filtered, t)
		}
	}

	totalPages := (len(filtered) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return View{
		Items:      filtered[start:end],
		Page:       page,
		TotalPages: totalPages,
		Filtered:   len(filtered),
	}
}

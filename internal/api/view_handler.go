package api

import (
	"net/http"
)

// ListViews возвращает views дашборда.
// GET /api/v1/views
func (h *Handler) ListViews(w http.ResponseWriter, r *http.Request) {
	List(w, h.dashboard.Views, len(h.dashboard.Views))
}

// GetView возвращает view по slug.
// GET /api/v1/views/{slug}
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	view, ok := h.dashboard.View(r.PathValue("slug"))
	if !ok {
		NotFound(w, "view not found")
		return
	}
	Success(w, view)
}

// ListCategories возвращает категории дашборда.
// GET /api/v1/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	List(w, h.dashboard.Categories, len(h.dashboard.Categories))
}

package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Metrics(),
		Logging(h.logger),
	)

	// Commands
	mux.Handle("POST /api/v1/commands/{slug}/execute", chain(http.HandlerFunc(h.ExecuteCommand)))
	mux.Handle("GET /api/v1/commands/{slug}/execute", chain(http.HandlerFunc(h.ExecuteCommandQuery)))

	// Dashboard
	mux.Handle("GET /api/v1/views", chain(http.HandlerFunc(h.ListViews)))
	mux.Handle("GET /api/v1/views/{slug}", chain(http.HandlerFunc(h.GetView)))
	mux.Handle("GET /api/v1/categories", chain(http.HandlerFunc(h.ListCategories)))

	// Dashboard versions
	mux.Handle("GET /api/v1/dashboards", chain(http.HandlerFunc(h.ListDashboards)))
	mux.Handle("GET /api/v1/dashboards/{name}/versions", chain(http.HandlerFunc(h.ListVersions)))
	mux.Handle("POST /api/v1/dashboards/{name}/versions", chain(http.HandlerFunc(h.CreateVersion)))
	mux.Handle("GET /api/v1/dashboards/{name}/versions/{version}", chain(http.HandlerFunc(h.GetVersion)))
}

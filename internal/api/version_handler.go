package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shaiso/Shellboard/internal/engine"
	"github.com/shaiso/Shellboard/internal/repo"
)

// ListDashboards возвращает имена сохранённых дашбордов.
// GET /api/v1/dashboards
func (h *Handler) ListDashboards(w http.ResponseWriter, r *http.Request) {
	if !h.requireVersions(w) {
		return
	}

	names, err := h.versions.ListNames(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	List(w, names, len(names))
}

// ListVersions возвращает версии дашборда.
// GET /api/v1/dashboards/{name}/versions
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	if !h.requireVersions(w) {
		return
	}

	versions, err := h.versions.ListVersions(r.Context(), r.PathValue("name"))
	if HandleRepoError(w, h.logger, err, "dashboard not found") {
		return
	}

	result := make([]VersionSummary, len(versions))
	for i, v := range versions {
		result[i] = VersionSummary{ID: v.ID, Version: v.Version, CreatedAt: v.CreatedAt}
	}

	List(w, result, len(result))
}

// CreateVersion публикует новую версию дашборда. Spec валидируется до записи.
// POST /api/v1/dashboards/{name}/versions
func (h *Handler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	if !h.requireVersions(w) {
		return
	}

	name := r.PathValue("name")
	if HandleRepoError(w, h.logger, repo.ValidateName(name), "") {
		return
	}

	var req CreateVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if err := engine.Validate(&req.Spec); err != nil {
		if HandleValidationError(w, err) {
			return
		}
		BadRequest(w, err.Error())
		return
	}

	version, err := h.versions.CreateVersion(r.Context(), name, req.Spec)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	h.logger.Info("dashboard version created", "name", version.Name, "version", version.Version)
	Created(w, VersionFromDomain(*version))
}

// GetVersion возвращает конкретную версию дашборда. "latest" — последнюю.
// GET /api/v1/dashboards/{name}/versions/{version}
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	if !h.requireVersions(w) {
		return
	}

	name := r.PathValue("name")
	raw := r.PathValue("version")

	if raw == "latest" {
		version, err := h.versions.GetLatest(r.Context(), name)
		if HandleRepoError(w, h.logger, err, "dashboard not found") {
			return
		}
		Success(w, VersionFromDomain(*version))
		return
	}

	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		BadRequest(w, "invalid version number")
		return
	}

	version, err := h.versions.GetVersion(r.Context(), name, number)
	if HandleRepoError(w, h.logger, err, "dashboard version not found") {
		return
	}

	Success(w, VersionFromDomain(*version))
}

func (h *Handler) requireVersions(w http.ResponseWriter) bool {
	if h.versions == nil {
		Unavailable(w, "dashboard storage is not configured")
		return false
	}
	return true
}

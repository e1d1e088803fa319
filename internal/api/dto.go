package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Shellboard/internal/domain"
)

// Command DTOs

// ExecuteRequest — тело POST /api/v1/commands/{slug}/execute.
type ExecuteRequest struct {
	Inputs []domain.InputValue `json:"inputs"`
}

// ExecuteResponse — результат выполнения команды.
type ExecuteResponse struct {
	Command  string `json:"command"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// ExecuteFromDomain конвертирует domain.ExecutionResult в ExecuteResponse.
func ExecuteFromDomain(command string, r domain.ExecutionResult) ExecuteResponse {
	return ExecuteResponse{
		Command:  command,
		Stdout:   r.Stdout,
		Stderr:   r.Stderr,
		ExitCode: r.ExitCode,
	}
}

// Dashboard version DTOs

// CreateVersionRequest — запрос на публикацию новой версии дашборда.
type CreateVersionRequest struct {
	Spec domain.Definition `json:"spec"`
}

// VersionResponse — ответ с версией дашборда.
type VersionResponse struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Version   int               `json:"version"`
	Spec      domain.Definition `json:"spec"`
	CreatedAt time.Time         `json:"created_at"`
}

// VersionFromDomain конвертирует domain.DashboardVersion в VersionResponse.
func VersionFromDomain(v domain.DashboardVersion) VersionResponse {
	return VersionResponse{
		ID:        v.ID,
		Name:      v.Name,
		Version:   v.Version,
		Spec:      v.Spec,
		CreatedAt: v.CreatedAt,
	}
}

// VersionSummary — версия без spec, для списков.
type VersionSummary struct {
	ID        uuid.UUID `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

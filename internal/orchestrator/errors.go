package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrViewNotFound — view с таким slug нет в дашборде.
	ErrViewNotFound = errors.New("view not found")

	// ErrViewStopped — view остановлен (размонтирован).
	ErrViewStopped = errors.New("view stopped")

	// ErrNotStarted — view ещё не запущен.
	ErrNotStarted = errors.New("view not started")

	// ErrNoGateway — не задан gateway.
	ErrNoGateway = errors.New("gateway is required")
)

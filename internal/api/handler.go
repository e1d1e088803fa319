package api

import (
	"context"
	"log/slog"

	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/gateway"
)

// VersionStore — хранилище версий дашбордов. *repo.DashboardRepo реализует его.
type VersionStore interface {
	CreateVersion(ctx context.Context, name string, spec domain.Definition) (*domain.DashboardVersion, error)
	GetVersion(ctx context.Context, name string, version int) (*domain.DashboardVersion, error)
	GetLatest(ctx context.Context, name string) (*domain.DashboardVersion, error)
	ListVersions(ctx context.Context, name string) ([]domain.DashboardVersion, error)
	ListNames(ctx context.Context) ([]string, error)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	dashboard *domain.Dashboard
	gateway   gateway.Gateway
	versions  VersionStore
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	// Dashboard — обслуживаемый дашборд (views, categories, commands).
	Dashboard *domain.Dashboard

	// Gateway — исполнитель команд.
	Gateway gateway.Gateway

	// Versions — хранилище версий. nil — маршруты /dashboards отвечают 503.
	Versions VersionStore

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Dashboard == nil {
		cfg.Dashboard = &domain.Dashboard{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Handler{
		dashboard: cfg.Dashboard,
		gateway:   cfg.Gateway,
		versions:  cfg.Versions,
		logger:    cfg.Logger,
	}
}

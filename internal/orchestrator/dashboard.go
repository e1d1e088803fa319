package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/sequencer"
)

// DashboardConfig — конфигурация Dashboard.
type DashboardConfig struct {
	// Dashboard — разрешённое определение дашборда.
	Dashboard *domain.Dashboard

	// Gateway — общий для всех views.
	Gateway sequencer.Gateway

	// Gate — политика gating для всех views.
	Gate sequencer.GatePolicy

	// ChainDelay — задержка auto-chain.
	ChainDelay time.Duration

	// Callbacks — обработчики событий всех views.
	Callbacks Callbacks

	// Logger
	Logger *slog.Logger
}

// Dashboard управляет views одного дашборда.
//
// У каждого view свой sequencer; состояние между views не разделяется.
type Dashboard struct {
	dashboard *domain.Dashboard

	// Active views — экземпляры по ID и индекс slug → ID
	activeViews map[uuid.UUID]*View
	bySlug      map[string]uuid.UUID
	order       []uuid.UUID
	mu          sync.RWMutex

	logger *slog.Logger
}

// NewDashboard создаёт View для каждого view дашборда.
func NewDashboard(cfg DashboardConfig) (*Dashboard, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dashboard{
		dashboard:   cfg.Dashboard,
		activeViews: make(map[uuid.UUID]*View, len(cfg.Dashboard.Views)),
		bySlug:      make(map[string]uuid.UUID, len(cfg.Dashboard.Views)),
		logger:      logger.With("component", "dashboard"),
	}

	for _, vc := range cfg.Dashboard.Views {
		view, err := New(Config{
			View:       vc,
			Gateway:    cfg.Gateway,
			Gate:       cfg.Gate,
			ChainDelay: cfg.ChainDelay,
			Callbacks:  cfg.Callbacks,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}

		d.activeViews[view.ID()] = view
		d.bySlug[vc.Slug] = view.ID()
		d.order = append(d.order, view.ID())
	}

	return d, nil
}

// Start запускает все views.
func (d *Dashboard) Start(ctx context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	d.logger.Info("starting dashboard", "views", len(d.order))

	for _, id := range d.order {
		if err := d.activeViews[id].Start(ctx); err != nil {
			return fmt.Errorf("start view %s: %w", d.activeViews[id].Slug(), err)
		}
	}

	return nil
}

// Stop останавливает все views.
func (d *Dashboard) Stop() {
	d.mu.RLock()
	views := make([]*View, 0, len(d.order))
	for _, id := range d.order {
		views = append(views, d.activeViews[id])
	}
	d.mu.RUnlock()

	for _, v := range views {
		v.Stop()
	}

	d.logger.Info("dashboard stopped", "views", len(views))
}

// Definition возвращает разрешённое определение дашборда.
func (d *Dashboard) Definition() *domain.Dashboard {
	return d.dashboard
}

// View ищет view по slug.
func (d *Dashboard) View(slug string) (*View, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.bySlug[slug]
	if !ok {
		return nil, false
	}
	return d.activeViews[id], true
}

// ViewByID ищет view по ID экземпляра.
func (d *Dashboard) ViewByID(id uuid.UUID) (*View, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := d.activeViews[id]
	return v, ok
}

// Views возвращает views в порядке определения.
func (d *Dashboard) Views() []*View {
	d.mu.RLock()
	defer d.mu.RUnlock()

	views := make([]*View, 0, len(d.order))
	for _, id := range d.order {
		views = append(views, d.activeViews[id])
	}
	return views
}

// Trigger запускает пользовательский тик view.
func (d *Dashboard) Trigger(slug string) error {
	return d.TriggerFrom(slug, sequencer.OriginUser)
}

// TriggerFrom запускает тик view с указанным источником.
func (d *Dashboard) TriggerFrom(slug string, origin sequencer.Origin) error {
	v, ok := d.View(slug)
	if !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, slug)
	}
	return v.TriggerFrom(origin)
}

// SetValue сохраняет значение input'а шага view.
func (d *Dashboard) SetValue(slug string, step int, name, value string) error {
	v, ok := d.View(slug)
	if !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, slug)
	}
	return v.SetValue(step, name, value)
}

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/engine"
	"github.com/shaiso/Shellboard/internal/sequencer"
)

// defaultInterval — период проверки расписаний в Run.
const defaultInterval = time.Second

// Triggerer запускает тик view. *orchestrator.Dashboard реализует его.
type Triggerer interface {
	TriggerFrom(slug string, origin sequencer.Origin) error
}

// entry — расписание одного view.
type entry struct {
	view      string
	refresh   string
	schedule  cron.Schedule
	nextDueAt time.Time
}

// Scheduler — планировщик refresh-тиков.
type Scheduler struct {
	triggerer Triggerer
	location  *time.Location
	logger    *slog.Logger

	mu      sync.Mutex
	entries []*entry
}

// Config — конфигурация Scheduler.
type Config struct {
	// Views — views дашборда; учитываются только views с Refresh.
	Views []domain.ViewConfig

	// Triggerer получает тики.
	Triggerer Triggerer

	// Location — часовой пояс расписаний (default: time.Local).
	Location *time.Location

	Logger *slog.Logger
}

// New создаёт Scheduler. Ошибка — если refresh одного из views некорректен.
func New(cfg Config) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		triggerer: cfg.Triggerer,
		location:  loc,
		logger:    logger.With("component", "scheduler"),
	}

	now := time.Now()
	for _, v := range cfg.Views {
		if v.Refresh == "" {
			continue
		}

		schedule, err := engine.ParseRefresh(v.Refresh)
		if err != nil {
			return nil, fmt.Errorf("view %s: %w", v.Slug, err)
		}

		s.entries = append(s.entries, &entry{
			view:      v.Slug,
			refresh:   v.Refresh,
			schedule:  schedule,
			nextDueAt: nextDue(schedule, now, loc),
		})
	}

	return s, nil
}

// Len возвращает количество views с расписанием.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// NextDue возвращает время следующего обновления view.
func (s *Scheduler) NextDue(view string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.view == view {
			return e.nextDueAt, true
		}
	}
	return time.Time{}, false
}

// Tick запускает тики всех views, чьё время наступило к now.
// Пропущенные срабатывания не накапливаются: следующее время считается от now.
// Ошибка одного view не блокирует остальные. Возвращает число запущенных тиков.
func (s *Scheduler) Tick(now time.Time) int {
	s.mu.Lock()
	var due []*entry
	for _, e := range s.entries {
		if !e.nextDueAt.After(now) {
			due = append(due, e)
			e.nextDueAt = nextDue(e.schedule, now, s.location)
		}
	}
	s.mu.Unlock()

	triggered := 0
	for _, e := range due {
		if err := s.triggerer.TriggerFrom(e.view, sequencer.OriginSchedule); err != nil {
			s.logger.Warn("scheduled refresh failed", "view", e.view, "error", err)
			continue
		}
		triggered++
		s.logger.Debug("scheduled refresh", "view", e.view, "next_due_at", e.nextDueAt)
	}

	return triggered
}

// Run вызывает Tick с периодом interval до отмены ctx.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "views", s.Len(), "interval", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case now := <-ticker.C:
			s.Tick(now)
		}
	}
}

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/engine"
	"github.com/shaiso/Shellboard/internal/sequencer"
	"github.com/shaiso/Shellboard/internal/telemetry"
)

// DefaultChainDelay — задержка перед auto-chain тиком.
const DefaultChainDelay = 50 * time.Millisecond

// Config — конфигурация View.
type Config struct {
	// View — конфигурация view из дашборда.
	View domain.ViewConfig

	// Gateway выполняет команды шагов.
	Gateway sequencer.Gateway

	// Gate — политика gating (default: GateAnyInput).
	Gate sequencer.GatePolicy

	// ChainDelay — задержка follow-up тика (default: 50ms).
	ChainDelay time.Duration

	// Callbacks — обработчики событий.
	Callbacks Callbacks

	// Logger
	Logger *slog.Logger
}

// View — один отображаемый view со своим sequencer'ом.
type View struct {
	id         uuid.UUID
	config     domain.ViewConfig
	seq        *sequencer.Sequencer
	callbacks  Callbacks
	chainDelay time.Duration

	// Lifecycle
	logger     *slog.Logger
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
	timer   *time.Timer
}

// New строит план и sequencer для view.
func New(cfg Config) (*View, error) {
	if cfg.Gateway == nil {
		return nil, ErrNoGateway
	}

	kind := cfg.View.Kind()

	plan, err := engine.BuildPlan(cfg.View, engine.DefaultPlanOptions(kind))
	if err != nil {
		return nil, fmt.Errorf("build plan for view %s: %w", cfg.View.Slug, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = telemetry.WithView(logger, cfg.View.Slug)

	seqCfg := sequencer.DefaultConfig(kind)
	seqCfg.Gate = cfg.Gate
	seqCfg.Logger = logger

	chainDelay := cfg.ChainDelay
	if chainDelay <= 0 {
		chainDelay = DefaultChainDelay
	}

	return &View{
		id:         uuid.New(),
		config:     cfg.View,
		seq:        sequencer.New(plan, cfg.Gateway, seqCfg),
		callbacks:  cfg.Callbacks,
		chainDelay: chainDelay,
		logger:     logger,
	}, nil
}

// ID возвращает идентификатор экземпляра view.
func (v *View) ID() uuid.UUID {
	return v.id
}

// Slug возвращает slug view.
func (v *View) Slug() string {
	return v.config.Slug
}

// Config возвращает конфигурацию view.
func (v *View) Config() domain.ViewConfig {
	return v.config
}

// Plan возвращает план view.
func (v *View) Plan() *engine.Plan {
	return v.seq.Plan()
}

// State возвращает снимок состояния sequencer'а.
func (v *View) State() sequencer.State {
	return v.seq.State()
}

// SetValue сохраняет значение input'а шага.
func (v *View) SetValue(step int, name, value string) error {
	return v.seq.SetValue(step, name, value)
}

// Start запускает view. Command view с execute.auto сразу получает первый тик.
func (v *View) Start(ctx context.Context) error {
	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return ErrViewStopped
	}
	if v.started {
		v.mu.Unlock()
		return nil
	}
	v.ctx, v.cancelFunc = context.WithCancel(ctx)
	v.started = true
	v.mu.Unlock()

	v.logger.Debug("view started", "steps", v.seq.Plan().Len())

	if v.config.Kind() == domain.ViewKindCommand && v.config.Execute.Auto {
		v.logger.Debug("auto-start")
		return v.TriggerFrom(sequencer.OriginAuto)
	}

	return nil
}

// Stop размонтирует view: отменяет отложенный follow-up, закрывает sequencer
// и ждёт завершения горутин. Результаты, пришедшие позже, отбрасываются.
func (v *View) Stop() {
	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return
	}
	v.stopped = true
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.mu.Unlock()

	v.seq.Close()

	if v.cancelFunc != nil {
		v.cancelFunc()
	}

	v.wg.Wait()

	v.logger.Debug("view stopped")
}

// Trigger запускает тик от пользователя. Результат приходит через Callbacks.
func (v *View) Trigger() {
	if err := v.TriggerFrom(sequencer.OriginUser); err != nil {
		v.logger.Debug("trigger ignored", "error", err)
	}
}

// TriggerFrom запускает тик с указанным источником.
// Ошибка означает только, что view не запущен или уже остановлен.
func (v *View) TriggerFrom(origin sequencer.Origin) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stopped {
		return ErrViewStopped
	}
	if !v.started {
		return ErrNotStarted
	}

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		v.tick(origin)
	}()

	return nil
}

// tick выполняет один тик и рассылает события.
func (v *View) tick(origin sequencer.Origin) {
	tr, err := v.seq.Tick(v.ctx, origin)

	switch {
	case errors.Is(err, sequencer.ErrSequencerClosed):
		telemetry.RecordTick(v.config.Slug, telemetry.TickDiscarded)
		return

	case errors.Is(err, sequencer.ErrTickInFlight):
		telemetry.RecordTick(v.config.Slug, telemetry.TickBusy)
		v.logger.Debug("tick dropped, previous call in flight", "origin", origin)
		return

	case err != nil:
		telemetry.RecordTick(v.config.Slug, telemetry.TickFailed)
		v.logger.Warn("step failed", "step_index", tr.StepIndex, "tick", tr.Tick, "error", err)
		v.callbacks.error(ErrorEvent{
			ViewID:     v.id,
			View:       v.config.Slug,
			StepIndex:  tr.StepIndex,
			CommandRef: v.seq.Plan().Steps[tr.StepIndex].CommandRef,
			Origin:     origin,
			Tick:       tr.Tick,
			Err:        err,
		})
		v.notifyChange(tr)
		return
	}

	step := v.seq.Plan().Steps[tr.StepIndex]

	switch {
	case tr.Skipped:
		telemetry.RecordTick(v.config.Slug, telemetry.TickSkipped)
		v.emit(EffectFocus, tr.StepIndex)

	case step.PrePhase:
		telemetry.RecordTick(v.config.Slug, telemetry.TickPrePhase)

	default:
		telemetry.RecordTick(v.config.Slug, telemetry.TickExecuted)
		v.callbacks.result(ResultEvent{
			ViewID:     v.id,
			View:       v.config.Slug,
			StepIndex:  tr.StepIndex,
			StepName:   step.Name,
			CommandRef: step.CommandRef,
			Display:    step.Display,
			Origin:     origin,
			Tick:       tr.Tick,
			Result:     tr.Result,
		})
		v.emit(EffectHighlight, tr.StepIndex)
	}

	if tr.Advanced {
		v.emit(EffectScroll, tr.NextIndex)
		if v.seq.Plan().Steps[tr.NextIndex].NeedsInput() {
			v.emit(EffectFocus, tr.NextIndex)
		}
	}

	v.notifyChange(tr)

	if tr.FollowUp {
		v.scheduleFollowUp()
	}
}

// scheduleFollowUp планирует ровно один auto-chain тик.
func (v *View) scheduleFollowUp() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stopped {
		return
	}
	if v.timer != nil {
		v.timer.Stop()
	}

	v.timer = time.AfterFunc(v.chainDelay, func() {
		if err := v.TriggerFrom(sequencer.OriginAuto); err != nil {
			v.logger.Debug("follow-up dropped", "error", err)
		}
	})
}

func (v *View) emit(kind EffectKind, step int) {
	v.callbacks.effect(Effect{ViewID: v.id, View: v.config.Slug, Kind: kind, StepIndex: step})
}

func (v *View) notifyChange(tr sequencer.Transition) {
	v.callbacks.change(ChangeEvent{
		ViewID:     v.id,
		View:       v.config.Slug,
		Transition: tr,
		State:      v.seq.State(),
	})
}

package sequencer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/engine"
)

// Gateway выполняет команду и возвращает результат.
//
// Ненулевой exit code — это успешный вызов. Ошибка означает сбой
// транспорта или сервиса.
type Gateway interface {
	Execute(ctx context.Context, commandRef string, inputs []domain.InputValue) (*domain.ExecutionResult, error)
}

// LoopChain — политика auto-chain при возврате на шаг 0.
type LoopChain int

const (
	// LoopChainOnce — петля, вызванная внешним тиком, может запланировать
	// один follow-up; петля на follow-up тике цепочку не продолжает.
	LoopChainOnce LoopChain = iota

	// LoopChainNever — петля никогда не планирует follow-up.
	LoopChainNever
)

// Config — конфигурация Sequencer.
type Config struct {
	// Gate — политика gating (default: GateAnyInput).
	Gate GatePolicy

	// LoopChain — политика auto-chain на петле.
	LoopChain LoopChain

	// ResetOnLoop — очищать inputs шага 0 при возврате на него.
	ResetOnLoop bool

	Logger *slog.Logger
}

// DefaultConfig возвращает конфигурацию по умолчанию для вида view.
//
// Command view повторяет одну команду: inputs сохраняются, петля не
// продолжает цепочку. Sequence view начинает новый цикл с чистого шага 0.
func DefaultConfig(kind domain.ViewKind) Config {
	if kind == domain.ViewKindCommand {
		return Config{Gate: GateAnyInput, LoopChain: LoopChainNever, ResetOnLoop: false}
	}
	return Config{Gate: GateAnyInput, LoopChain: LoopChainOnce, ResetOnLoop: true}
}

// Sequencer — автомат выполнения шагов одного view.
//
// Один Sequencer принадлежит одному view и не разделяется между views.
type Sequencer struct {
	plan    *engine.Plan
	gateway Gateway
	cfg     Config
	logger  *slog.Logger

	mu           sync.Mutex
	inputs       *Collector
	results      []*domain.ExecutionResult
	active       int
	lastExecuted int
	executing    bool
	phase        domain.Phase
	tick         uint64
	closed       bool
}

// New создаёт Sequencer для плана.
func New(plan *engine.Plan, gw Gateway, cfg Config) *Sequencer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Sequencer{
		plan:         plan,
		gateway:      gw,
		cfg:          cfg,
		logger:       logger.With("view", plan.View),
		inputs:       NewCollector(plan.Len()),
		results:      make([]*domain.ExecutionResult, plan.Len()),
		lastExecuted: -1,
		phase:        domain.PhaseIdle,
	}
}

// Plan возвращает план, по которому работает sequencer.
func (s *Sequencer) Plan() *engine.Plan {
	return s.plan
}

// SetValue сохраняет значение input'а для шага.
func (s *Sequencer) SetValue(step int, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSequencerClosed
	}
	return s.inputs.SetValue(step, name, value)
}

// State возвращает снимок состояния.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		ActiveIndex:       s.active,
		LastExecutedIndex: s.lastExecuted,
		IsExecuting:       s.executing,
		Phase:             s.phase,
		Tick:              s.tick,
		InputValues:       s.inputs.snapshot(),
		Results:           append([]*domain.ExecutionResult(nil), s.results...),
	}
}

// Close закрывает sequencer. Результаты, пришедшие после Close, отбрасываются.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
}

// Tick выполняет один тик автомата.
//
// Пока предыдущий тик ждёт gateway, новый тик возвращает ErrTickInFlight
// без вызова gateway. Ошибка gateway возвращается как есть, состояние
// (активный шаг, результаты) не меняется. Если sequencer закрыли во время
// вызова, результат отбрасывается: Transition.Discarded и ErrSequencerClosed.
func (s *Sequencer) Tick(ctx context.Context, origin Origin) (Transition, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return Transition{Origin: origin, Discarded: true}, ErrSequencerClosed
	}
	if s.executing {
		s.mu.Unlock()
		return Transition{Origin: origin}, ErrTickInFlight
	}

	s.tick++
	idx := s.active
	step := s.plan.Steps[idx]
	tr := Transition{Tick: s.tick, Origin: origin, StepIndex: idx, NextIndex: idx}

	// 1. Gating
	if !s.inputs.IsComplete(idx, step.Inputs, s.cfg.Gate) {
		s.phase = domain.PhaseIdle
		tr.Phase = s.phase
		tr.Skipped = true
		s.mu.Unlock()

		s.logger.Debug("step waits for input", "step_index", idx, "tick", tr.Tick)
		return tr, nil
	}

	// 2. Pre-phase: значения уровня view собраны, вызова gateway нет.
	// Новый цикл начинается с пустыми результатами и inputs шагов.
	if step.PrePhase {
		s.clearResults()
		for i := 1; i < s.plan.Len(); i++ {
			s.inputs.Reset(i)
		}
		s.advance(&tr)
		s.mu.Unlock()

		s.logger.Debug("pre-phase completed", "next_index", tr.NextIndex, "tick", tr.Tick)
		return tr, nil
	}

	// 3. Executing
	inputs := s.collect(step)
	s.executing = true
	s.phase = domain.PhaseExecuting
	s.mu.Unlock()

	s.logger.Debug("executing step",
		"step_index", idx,
		"command", step.CommandRef,
		"tick", tr.Tick,
		"origin", origin,
	)

	res, err := s.execute(ctx, step.CommandRef, inputs)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.executing = false

	if s.closed {
		tr.Discarded = true
		return tr, ErrSequencerClosed
	}

	if err != nil {
		s.phase = domain.PhaseIdle
		tr.Phase = s.phase
		return tr, fmt.Errorf("execute step %d (%s): %w", idx, step.CommandRef, err)
	}

	// 4. Применяем результат
	if idx == 0 {
		s.clearResults()
	}
	s.results[idx] = res
	s.lastExecuted = idx
	tr.Result = res

	if res.ExitCode != 0 {
		s.phase = domain.PhaseIdle
		tr.Phase = s.phase
		return tr, nil
	}

	s.advance(&tr)
	return tr, nil
}

// execute вызывает gateway. Паника gateway возвращается как ErrGatewayPanic.
func (s *Sequencer) execute(ctx context.Context, ref string, inputs []domain.InputValue) (res *domain.ExecutionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: %v", ErrGatewayPanic, r)
		}
	}()

	res, err = s.gateway.Execute(ctx, ref, inputs)
	if err == nil && res == nil {
		err = ErrNoResult
	}
	return res, err
}

// advance сдвигает активный шаг после успешного шага и решает про auto-chain.
// Вызывается под s.mu.
func (s *Sequencer) advance(tr *Transition) {
	tr.Advanced = true

	if tr.StepIndex == s.plan.Len()-1 {
		s.active = 0
		tr.Looped = true
		if s.cfg.ResetOnLoop {
			s.inputs.Reset(0)
		}
	} else {
		s.active = tr.StepIndex + 1
	}
	tr.NextIndex = s.active

	tr.FollowUp = !s.plan.Steps[s.active].NeedsInput()
	if tr.Looped {
		switch s.cfg.LoopChain {
		case LoopChainNever:
			tr.FollowUp = false
		default:
			tr.FollowUp = tr.FollowUp && tr.Origin != OriginAuto
		}
	}

	if tr.FollowUp {
		s.phase = domain.PhaseAdvanced
	} else {
		s.phase = domain.PhaseIdle
	}
	tr.Phase = s.phase
}

// clearResults очищает результаты перед новым циклом. Вызывается под s.mu.
func (s *Sequencer) clearResults() {
	for i := range s.results {
		s.results[i] = nil
	}
}

// collect собирает значения, которые получает команда шага.
// Пустые значения не передаются. Вызывается под s.mu.
func (s *Sequencer) collect(step engine.PlanStep) []domain.InputValue {
	var out []domain.InputValue
	for _, use := range step.Uses {
		v, ok := s.inputs.Value(use.Owner, use.Spec.Slug)
		if !ok || v == "" {
			continue
		}
		out = append(out, domain.InputValue{Name: use.Spec.Slug, Value: v})
	}
	return out
}

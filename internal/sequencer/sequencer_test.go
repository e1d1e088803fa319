package sequencer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/engine"
)

// call — один вызов fakeGateway.
type call struct {
	command string
	inputs  []domain.InputValue
}

// fakeGateway записывает вызовы и отвечает по exit code команды.
type fakeGateway struct {
	mu    sync.Mutex
	calls []call
	exit  map[string]int
	err   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{exit: make(map[string]int)}
}

func (g *fakeGateway) Execute(_ context.Context, command string, inputs []domain.InputValue) (*domain.ExecutionResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, call{command: command, inputs: inputs})
	if g.err != nil {
		return nil, g.err
	}
	code := g.exit[command]
	return &domain.ExecutionResult{Stdout: command + " out", ExitCode: code}, nil
}

func (g *fakeGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *fakeGateway) last() call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[len(g.calls)-1]
}

// blockingGateway держит вызов до закрытия release.
type blockingGateway struct {
	started chan struct{}
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func newBlockingGateway() *blockingGateway {
	return &blockingGateway{started: make(chan struct{}, 10), release: make(chan struct{})}
}

func (g *blockingGateway) Execute(ctx context.Context, command string, _ []domain.InputValue) (*domain.ExecutionResult, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	g.started <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &domain.ExecutionResult{Stdout: command}, nil
}

func step(name string, inputs ...string) domain.Step {
	c := domain.CommandConfig{Slug: name, Command: "echo " + name}
	for _, in := range inputs {
		c.Inputs = append(c.Inputs, domain.InputSpec{Slug: in})
	}
	return domain.Step{Name: name, Command: c}
}

func sequencePlan(t *testing.T, steps ...domain.Step) *engine.Plan {
	t.Helper()
	view := domain.ViewConfig{
		Name:     "test",
		Slug:     "test",
		Sequence: &domain.SequenceConfig{Slug: "test", Steps: steps},
	}
	plan, err := engine.BuildPlan(view, engine.DefaultPlanOptions(view.Kind()))
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	return plan
}

func newSequencer(t *testing.T, gw Gateway, steps ...domain.Step) *Sequencer {
	t.Helper()
	return New(sequencePlan(t, steps...), gw, DefaultConfig(domain.ViewKindSequence))
}

func tick(t *testing.T, s *Sequencer, origin Origin) Transition {
	t.Helper()
	tr, err := s.Tick(context.Background(), origin)
	if err != nil {
		t.Fatalf("tick: unexpected error: %v", err)
	}
	return tr
}

// --- Advancement Tests ---

func TestTick_AdvancesThroughSequenceAndLoops(t *testing.T) {
	gw := newFakeGateway()
	s := newSequencer(t, gw, step("a"), step("b"), step("c"))

	_ = s.SetValue(0, "NOTE", "stale")

	for i, want := range []int{1, 2, 0} {
		tr := tick(t, s, OriginUser)
		if tr.StepIndex != i {
			t.Errorf("tick %d: evaluated step %d", i, tr.StepIndex)
		}
		if got := s.State().ActiveIndex; got != want {
			t.Fatalf("tick %d: expected active %d, got %d", i, want, got)
		}
	}

	st := s.State()
	if len(st.InputValues[0]) != 0 {
		t.Errorf("expected step 0 inputs cleared on loop, got %+v", st.InputValues[0])
	}
	if st.LastExecutedIndex != 2 {
		t.Errorf("expected last executed 2, got %d", st.LastExecutedIndex)
	}
	if gw.count() != 3 {
		t.Errorf("expected 3 gateway calls, got %d", gw.count())
	}
}

func TestTick_NonZeroExitDoesNotAdvance(t *testing.T) {
	gw := newFakeGateway()
	gw.exit["a"] = 2
	s := newSequencer(t, gw, step("a"), step("b"))

	for i := 0; i < 3; i++ {
		tr := tick(t, s, OriginUser)
		if tr.Advanced || tr.FollowUp {
			t.Errorf("attempt %d: failing step must not advance: %+v", i, tr)
		}
		if tr.Result == nil || tr.Result.ExitCode != 2 {
			t.Errorf("attempt %d: expected result with exit 2, got %+v", i, tr.Result)
		}
	}

	st := s.State()
	if st.ActiveIndex != 0 {
		t.Errorf("expected active 0, got %d", st.ActiveIndex)
	}
	if st.Result(0) == nil || st.Result(0).ExitCode != 2 {
		t.Errorf("expected failure result recorded, got %+v", st.Result(0))
	}
	if gw.count() != 3 {
		t.Errorf("expected the same step re-executed 3 times, got %d calls", gw.count())
	}
}

// --- Gating Tests ---

func TestTick_GatingSkip(t *testing.T) {
	gw := newFakeGateway()
	s := newSequencer(t, gw, step("a", "HOST"))

	before := s.State()
	tr := tick(t, s, OriginUser)

	if !tr.Skipped || tr.Phase != domain.PhaseIdle {
		t.Errorf("expected gating skip, got %+v", tr)
	}
	if gw.count() != 0 {
		t.Errorf("gateway must not be called, got %d calls", gw.count())
	}

	after := s.State()
	if after.ActiveIndex != before.ActiveIndex || after.IsExecuting || after.Result(0) != nil {
		t.Errorf("state changed on gating skip: %+v", after)
	}
}

func TestTick_GateAllInputs(t *testing.T) {
	gw := newFakeGateway()
	cfg := DefaultConfig(domain.ViewKindSequence)
	cfg.Gate = GateAllInputs
	s := New(sequencePlan(t, step("a", "HOST", "PORT")), gw, cfg)

	_ = s.SetValue(0, "HOST", "db1")
	if tr := tick(t, s, OriginUser); !tr.Skipped {
		t.Fatalf("expected skip with PORT missing, got %+v", tr)
	}

	_ = s.SetValue(0, "PORT", "5432")
	if tr := tick(t, s, OriginUser); tr.Skipped {
		t.Fatalf("expected execution, got %+v", tr)
	}
	if gw.count() != 1 {
		t.Errorf("expected 1 call, got %d", gw.count())
	}
}

func TestTick_StepWithInputScenario(t *testing.T) {
	gw := newFakeGateway()
	s := newSequencer(t, gw, step("a"), step("b", "token"))

	tr := tick(t, s, OriginUser)
	if tr.NextIndex != 1 || tr.FollowUp {
		t.Fatalf("trigger 1: expected active 1 without follow-up, got %+v", tr)
	}

	tr = tick(t, s, OriginUser)
	if !tr.Skipped || s.State().ActiveIndex != 1 {
		t.Fatalf("trigger 2: expected gating skip at 1, got %+v", tr)
	}

	if err := s.SetValue(1, "token", "x"); err != nil {
		t.Fatalf("set value: %v", err)
	}

	tr = tick(t, s, OriginUser)
	c := gw.last()
	if c.command != "b" || len(c.inputs) != 1 || c.inputs[0] != (domain.InputValue{Name: "token", Value: "x"}) {
		t.Fatalf("trigger 3: unexpected call %+v", c)
	}
	if !tr.Looped || s.State().ActiveIndex != 0 {
		t.Errorf("trigger 3: expected loop to 0, got %+v", tr)
	}
	// шаг a не требует ввода — новый цикл начинается автоматически
	if !tr.FollowUp {
		t.Error("trigger 3: expected follow-up into step a")
	}
}

// --- Auto-chain Tests ---

func TestTick_SingleStepLoopChainsOnce(t *testing.T) {
	gw := newFakeGateway()
	s := newSequencer(t, gw, step("a"))

	tr := tick(t, s, OriginUser)
	if !tr.Looped || tr.NextIndex != 0 {
		t.Fatalf("expected loop to 0, got %+v", tr)
	}
	if !tr.FollowUp {
		t.Fatal("expected exactly one follow-up after user tick")
	}
	if gw.count() != 1 {
		t.Fatalf("tick must not recurse, got %d calls", gw.count())
	}

	tr = tick(t, s, OriginAuto)
	if tr.FollowUp {
		t.Error("follow-up tick must not chain again")
	}
	if gw.count() != 2 {
		t.Errorf("expected 2 calls, got %d", gw.count())
	}
}

func TestTick_FollowUpOnlyForStepsWithoutInput(t *testing.T) {
	gw := newFakeGateway()
	s := newSequencer(t, gw, step("a"), step("b"), step("c", "X"))

	tr := tick(t, s, OriginUser)
	if !tr.FollowUp || tr.Phase != domain.PhaseAdvanced {
		t.Fatalf("expected follow-up into b, got %+v", tr)
	}

	tr = tick(t, s, OriginAuto)
	if tr.FollowUp || tr.Phase != domain.PhaseIdle {
		t.Fatalf("c needs input, expected idle, got %+v", tr)
	}
}

func TestTick_CommandViewNeverChainsOnLoop(t *testing.T) {
	gw := newFakeGateway()
	c := domain.CommandConfig{Slug: "uptime", Command: "uptime", Inputs: []domain.InputSpec{{Slug: "HOST"}}}
	view := domain.ViewConfig{Name: "Uptime", Slug: "uptime", Command: &c}
	plan, err := engine.BuildPlan(view, engine.DefaultPlanOptions(view.Kind()))
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}

	s := New(plan, gw, DefaultConfig(domain.ViewKindCommand))
	_ = s.SetValue(0, "HOST", "db1")

	tr := tick(t, s, OriginUser)
	if tr.FollowUp {
		t.Error("command view must not chain")
	}
	if v := s.State().Value(0, "HOST"); v != "db1" {
		t.Errorf("command view keeps inputs between runs, got %q", v)
	}

	tick(t, s, OriginUser)
	if gw.count() != 2 {
		t.Errorf("expected re-execution with kept input, got %d calls", gw.count())
	}
}

// --- Results Tests ---

func TestTick_NewCycleClearsResults(t *testing.T) {
	gw := newFakeGateway()
	s := newSequencer(t, gw, step("a"), step("b"))

	tick(t, s, OriginUser)
	tick(t, s, OriginAuto)

	if s.State().Result(1) == nil {
		t.Fatal("expected result for b")
	}

	tick(t, s, OriginUser)

	st := s.State()
	if st.Result(1) != nil {
		t.Error("stale result of b must be cleared when a new cycle starts")
	}
	if st.Result(0) == nil {
		t.Error("expected fresh result for a")
	}
}

func TestTick_GatewayError(t *testing.T) {
	gw := newFakeGateway()
	s := newSequencer(t, gw, step("a"), step("b"))

	tick(t, s, OriginUser)

	gw.err = errors.New("connection refused")
	tr, err := s.Tick(context.Background(), OriginUser)
	if err == nil || !errors.Is(err, gw.err) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if tr.Result != nil || tr.Advanced {
		t.Errorf("gateway error must not produce a result: %+v", tr)
	}

	st := s.State()
	if st.ActiveIndex != 1 || st.IsExecuting || st.Phase != domain.PhaseIdle {
		t.Errorf("unexpected state after gateway error: %+v", st)
	}
	if st.Result(1) != nil {
		t.Error("no result must be recorded on gateway error")
	}
	if st.Result(0) == nil {
		t.Error("result of a must be kept")
	}
}

// panicGateway паникует на первом вызове и отвечает на следующих.
type panicGateway struct {
	calls int
}

func (g *panicGateway) Execute(_ context.Context, command string, _ []domain.InputValue) (*domain.ExecutionResult, error) {
	g.calls++
	if g.calls == 1 {
		panic("boom")
	}
	return &domain.ExecutionResult{Stdout: command}, nil
}

func TestTick_GatewayPanic(t *testing.T) {
	gw := &panicGateway{}
	s := newSequencer(t, gw, step("a"), step("b"))

	tr, err := s.Tick(context.Background(), OriginUser)
	if !errors.Is(err, ErrGatewayPanic) {
		t.Fatalf("expected ErrGatewayPanic, got %v", err)
	}
	if tr.Advanced {
		t.Errorf("panicked step must not advance, got %+v", tr)
	}
	if st := s.State(); st.IsExecuting || st.ActiveIndex != 0 {
		t.Fatalf("sequencer must be idle on step 0 after a panic, got %+v", st)
	}

	tr = tick(t, s, OriginUser)
	if !tr.Advanced || tr.NextIndex != 1 {
		t.Errorf("next tick must run normally, got %+v", tr)
	}
}

func TestTick_NilResult(t *testing.T) {
	s := newSequencer(t, gatewayFunc(func(context.Context, string, []domain.InputValue) (*domain.ExecutionResult, error) {
		return nil, nil
	}), step("a"))

	if _, err := s.Tick(context.Background(), OriginUser); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

// gatewayFunc адаптирует функцию к Gateway.
type gatewayFunc func(context.Context, string, []domain.InputValue) (*domain.ExecutionResult, error)

func (f gatewayFunc) Execute(ctx context.Context, c string, in []domain.InputValue) (*domain.ExecutionResult, error) {
	return f(ctx, c, in)
}

// --- Concurrency Tests ---

func TestTick_SingleFlight(t *testing.T) {
	gw := newBlockingGateway()
	s := newSequencer(t, gw, step("a"), step("b"))

	done := make(chan error, 1)
	go func() {
		_, err := s.Tick(context.Background(), OriginUser)
		done <- err
	}()

	<-gw.started
	if !s.State().IsExecuting {
		t.Error("expected executing state")
	}

	for i := 0; i < 5; i++ {
		if _, err := s.Tick(context.Background(), OriginUser); !errors.Is(err, ErrTickInFlight) {
			t.Fatalf("expected ErrTickInFlight, got %v", err)
		}
	}

	close(gw.release)
	if err := <-done; err != nil {
		t.Fatalf("first tick: %v", err)
	}

	gw.mu.Lock()
	calls := gw.calls
	gw.mu.Unlock()
	if calls != 1 {
		t.Errorf("expected exactly 1 gateway call, got %d", calls)
	}
	if s.State().ActiveIndex != 1 {
		t.Errorf("expected active 1, got %d", s.State().ActiveIndex)
	}
}

func TestTick_ResultAfterCloseIsDiscarded(t *testing.T) {
	gw := newBlockingGateway()
	s := newSequencer(t, gw, step("a"), step("b"))

	type out struct {
		tr  Transition
		err error
	}
	done := make(chan out, 1)
	go func() {
		tr, err := s.Tick(context.Background(), OriginUser)
		done <- out{tr, err}
	}()

	<-gw.started
	s.Close()
	close(gw.release)

	select {
	case o := <-done:
		if !errors.Is(o.err, ErrSequencerClosed) || !o.tr.Discarded {
			t.Fatalf("expected discarded result, got %+v %v", o.tr, o.err)
		}
	case <-time.After(time.Second):
		t.Fatal("tick did not return")
	}

	st := s.State()
	if st.ActiveIndex != 0 || st.Result(0) != nil || st.LastExecutedIndex != -1 {
		t.Errorf("closed sequencer state mutated: %+v", st)
	}

	if _, err := s.Tick(context.Background(), OriginUser); !errors.Is(err, ErrSequencerClosed) {
		t.Errorf("expected ErrSequencerClosed, got %v", err)
	}
	if err := s.SetValue(0, "A", "1"); !errors.Is(err, ErrSequencerClosed) {
		t.Errorf("expected ErrSequencerClosed on SetValue, got %v", err)
	}
}

// --- Variant Tests ---

func TestTick_PrePhase(t *testing.T) {
	gw := newFakeGateway()
	view := domain.ViewConfig{
		Name:     "deploy",
		Slug:     "deploy",
		Inputs:   []domain.InputSpec{{Slug: "ENV"}},
		Sequence: &domain.SequenceConfig{Slug: "deploy", Steps: []domain.Step{step("build"), step("ship", "REGION")}},
	}
	plan, err := engine.BuildPlan(view, engine.PlanOptions{})
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	s := New(plan, gw, DefaultConfig(domain.ViewKindSequence))

	if tr := tick(t, s, OriginUser); !tr.Skipped {
		t.Fatalf("pre-phase must wait for ENV, got %+v", tr)
	}

	_ = s.SetValue(0, "ENV", "prod")
	tr := tick(t, s, OriginUser)
	if !tr.Advanced || tr.NextIndex != 1 || !tr.FollowUp {
		t.Fatalf("expected pre-phase to advance into build, got %+v", tr)
	}
	if gw.count() != 0 {
		t.Fatal("pre-phase must not call the gateway")
	}

	tick(t, s, OriginAuto)
	if c := gw.last(); c.command != "build" || len(c.inputs) != 1 || c.inputs[0].Value != "prod" {
		t.Fatalf("expected build with ENV=prod, got %+v", c)
	}

	_ = s.SetValue(2, "REGION", "eu")
	tr = tick(t, s, OriginUser)
	c := gw.last()
	if c.command != "ship" || len(c.inputs) != 2 || c.inputs[0].Name != "ENV" || c.inputs[1].Name != "REGION" {
		t.Fatalf("expected ship with ENV and REGION, got %+v", c)
	}
	if !tr.Looped || tr.FollowUp {
		t.Errorf("expected loop back to pre-phase waiting for input, got %+v", tr)
	}
	if v := s.State().Value(0, "ENV"); v != "" {
		t.Errorf("view-level inputs must be cleared on loop, got %q", v)
	}
}

func TestTick_PrePhaseClearsLaterStepInputs(t *testing.T) {
	gw := newFakeGateway()
	view := domain.ViewConfig{
		Name:     "deploy",
		Slug:     "deploy",
		Inputs:   []domain.InputSpec{{Slug: "ENV"}},
		Sequence: &domain.SequenceConfig{Slug: "deploy", Steps: []domain.Step{step("build"), step("ship", "REGION")}},
	}
	plan, err := engine.BuildPlan(view, engine.PlanOptions{})
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	s := New(plan, gw, DefaultConfig(domain.ViewKindSequence))

	_ = s.SetValue(0, "ENV", "prod")
	tick(t, s, OriginUser)
	tick(t, s, OriginAuto)
	_ = s.SetValue(2, "REGION", "eu")
	if tr := tick(t, s, OriginUser); !tr.Looped {
		t.Fatalf("expected loop after ship, got %+v", tr)
	}
	if v := s.State().Value(2, "REGION"); v != "eu" {
		t.Fatalf("loop must keep later-step inputs until the next pre-phase, got %q", v)
	}

	_ = s.SetValue(0, "ENV", "staging")
	tick(t, s, OriginUser)
	if v := s.State().Value(2, "REGION"); v != "" {
		t.Errorf("pre-phase must clear later-step inputs, got %q", v)
	}

	tick(t, s, OriginAuto)
	if tr := tick(t, s, OriginUser); !tr.Skipped {
		t.Errorf("ship must wait for a fresh REGION, got %+v", tr)
	}
	if gw.count() != 3 {
		t.Errorf("expected 3 gateway calls, got %d", gw.count())
	}
}

func TestTick_DedupReusesValue(t *testing.T) {
	gw := newFakeGateway()
	s := newSequencer(t, gw, step("login", "USER"), step("whoami", "USER"))

	_ = s.SetValue(0, "USER", "root")
	tr := tick(t, s, OriginUser)
	if !tr.FollowUp {
		t.Fatalf("whoami reuses USER and needs no input, got %+v", tr)
	}

	tick(t, s, OriginAuto)
	c := gw.last()
	if c.command != "whoami" || len(c.inputs) != 1 || c.inputs[0].Value != "root" {
		t.Fatalf("expected whoami with USER=root, got %+v", c)
	}
}

func TestTick_LastExecutedDoesNotAffectTransitions(t *testing.T) {
	gw := newFakeGateway()
	gw.exit["b"] = 1
	s := newSequencer(t, gw, step("a"), step("b"))

	tick(t, s, OriginUser)
	tick(t, s, OriginAuto)

	st := s.State()
	if st.LastExecutedIndex != 1 || st.ActiveIndex != 1 {
		t.Fatalf("unexpected state: %+v", st)
	}

	gw.exit["b"] = 0
	tr := tick(t, s, OriginUser)
	if tr.StepIndex != 1 || !tr.Looped {
		t.Errorf("expected retry of b to loop, got %+v", tr)
	}
}

package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/engine"
	"github.com/shaiso/Shellboard/internal/orchestrator"
	"github.com/shaiso/Shellboard/internal/sequencer"
)

// Controller — то, чем управляет терминальный дашборд.
// *orchestrator.Dashboard реализует его.
type Controller interface {
	Views() []*orchestrator.View
	Trigger(slug string) error
	SetValue(slug string, step int, name, value string) error
}

// Options — настройки терминального дашборда.
type Options struct {
	// RawBaseURL — адрес API для ссылок на сырой вывод (format=raw).
	// Пусто — ссылки не показываются.
	RawBaseURL string

	// Title — заголовок (default: "Shellboard").
	Title string
}

// Model — состояние терминального дашборда.
type Model struct {
	ctrl   Controller
	bridge *Bridge
	opts   Options

	views  []*orchestrator.View
	states map[string]sequencer.State

	// Selection
	cursor    int
	field     int
	highlight map[string]int

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	notice string
	width  int
	height int
}

// NewModel создаёт Model. bridge может быть nil, тогда события не приходят.
func NewModel(ctrl Controller, bridge *Bridge, opts Options) Model {
	if opts.Title == "" {
		opts.Title = "Shellboard"
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(spinnerStyle),
	)

	views := ctrl.Views()
	states := make(map[string]sequencer.State, len(views))
	for _, v := range views {
		states[v.Slug()] = v.State()
	}

	m := Model{
		ctrl:      ctrl,
		bridge:    bridge,
		opts:      opts,
		views:     views,
		states:    states,
		highlight: make(map[string]int),
		input:     ti,
		spinner:   sp,
		viewport:  viewport.New(80, 10),
	}
	m.loadField()
	m.refreshOutput()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.waitForMsg(),
	)
}

func (m Model) waitForMsg() tea.Cmd {
	if m.bridge == nil {
		return nil
	}
	return m.bridge.wait()
}

// -- Selection helpers --

// selected возвращает выбранный view или nil.
func (m Model) selected() *orchestrator.View {
	if m.cursor < 0 || m.cursor >= len(m.views) {
		return nil
	}
	return m.views[m.cursor]
}

// selectedState возвращает снимок состояния выбранного view.
func (m Model) selectedState() (sequencer.State, bool) {
	v := m.selected()
	if v == nil {
		return sequencer.State{}, false
	}
	st, ok := m.states[v.Slug()]
	return st, ok
}

// activeStep возвращает активный шаг плана выбранного view.
func (m Model) activeStep() (engine.PlanStep, int, bool) {
	v := m.selected()
	st, ok := m.selectedState()
	if v == nil || !ok {
		return engine.PlanStep{}, 0, false
	}

	plan := v.Plan()
	if st.ActiveIndex < 0 || st.ActiveIndex >= plan.Len() {
		return engine.PlanStep{}, 0, false
	}
	return plan.Steps[st.ActiveIndex], st.ActiveIndex, true
}

// fields возвращает поля ввода активного шага выбранного view.
func (m Model) fields() []domain.InputSpec {
	step, _, ok := m.activeStep()
	if !ok {
		return nil
	}
	return step.Inputs
}

// currentField возвращает выбранное поле ввода.
func (m Model) currentField() (domain.InputSpec, bool) {
	fields := m.fields()
	if m.field < 0 || m.field >= len(fields) {
		return domain.InputSpec{}, false
	}
	return fields[m.field], true
}

// loadField подставляет в textinput сохранённое значение выбранного поля.
func (m *Model) loadField() {
	field, ok := m.currentField()
	if !ok {
		m.input.SetValue("")
		m.input.Placeholder = ""
		return
	}

	_, index, _ := m.activeStep()
	st, _ := m.selectedState()

	m.input.SetValue(st.Value(index, field.Slug))
	m.input.Placeholder = field.Slug
	if field.Description != "" {
		m.input.Placeholder = field.Description
	}
	m.input.CursorEnd()
}

// selectView переключает выбранный view.
func (m *Model) selectView(delta int) {
	if len(m.views) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.views)) % len(m.views)
	m.field = 0
	m.loadField()
	m.refreshOutput()
}

// selectField переключает поле ввода активного шага.
func (m *Model) selectField(delta int) {
	fields := m.fields()
	if len(fields) == 0 {
		return
	}
	m.field = (m.field + delta + len(fields)) % len(fields)
	m.loadField()
}

// lastResult возвращает результат последнего выполненного шага выбранного view.
func (m Model) lastResult() (*domain.ExecutionResult, engine.PlanStep, bool) {
	v := m.selected()
	st, ok := m.selectedState()
	if v == nil || !ok {
		return nil, engine.PlanStep{}, false
	}

	index := st.LastExecutedIndex
	result := st.Result(index)
	if result == nil {
		return nil, engine.PlanStep{}, false
	}
	return result, v.Plan().Steps[index], true
}

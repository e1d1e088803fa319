package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shaiso/Shellboard/internal/orchestrator"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case changeMsg:
		m.applyChange(orchestrator.ChangeEvent(msg))
		return m, m.waitForMsg()

	case resultMsg:
		if v := m.selected(); v != nil && v.ID() == msg.ViewID {
			m.notice = ""
		}
		return m, m.waitForMsg()

	case errorMsg:
		m.notice = fmt.Sprintf("%s: %v", msg.View, msg.Err)
		return m, m.waitForMsg()

	case effectMsg:
		m.applyEffect(orchestrator.Effect(msg))
		return m, m.waitForMsg()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "tab":
		m.selectView(1)
		return m, nil

	case "shift+tab":
		m.selectView(-1)
		return m, nil

	case "up":
		m.selectField(-1)
		return m, nil

	case "down":
		m.selectField(1)
		return m, nil

	case "pgup":
		m.viewport.HalfPageUp()
		return m, nil

	case "pgdown":
		m.viewport.HalfPageDown()
		return m, nil

	case "enter":
		m.trigger()
		return m, nil
	}

	before := m.input.Value()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != before {
		m.storeValue()
	}
	return m, cmd
}

// storeValue передаёт значение поля ввода в sequencer выбранного view.
func (m *Model) storeValue() {
	v := m.selected()
	field, ok := m.currentField()
	if v == nil || !ok {
		return
	}

	_, index, _ := m.activeStep()
	if err := m.ctrl.SetValue(v.Slug(), index, field.Slug, m.input.Value()); err != nil {
		m.notice = err.Error()
		return
	}

	// Локальная копия, чтобы не ждать ChangeEvent.
	st := m.states[v.Slug()]
	if index < len(st.InputValues) {
		st.InputValues[index] = setInput(st.InputValues[index], field.Slug, m.input.Value())
		m.states[v.Slug()] = st
	}
}

// trigger запускает тик выбранного view.
func (m *Model) trigger() {
	v := m.selected()
	if v == nil {
		return
	}

	if err := m.ctrl.Trigger(v.Slug()); err != nil {
		m.notice = fmt.Sprintf("%s: %v", v.Slug(), err)
		return
	}
	m.notice = ""
}

// applyChange обновляет снимок состояния view.
func (m *Model) applyChange(e orchestrator.ChangeEvent) {
	prev, known := m.states[e.View]
	m.states[e.View] = e.State

	v := m.selected()
	if v == nil || v.ID() != e.ViewID {
		return
	}

	if !known || prev.ActiveIndex != e.State.ActiveIndex || e.Transition.Looped {
		m.field = 0
		m.loadField()
	}
	m.refreshOutput()
}

// applyEffect применяет эффект отображения к выбранному view.
func (m *Model) applyEffect(e orchestrator.Effect) {
	switch e.Kind {
	case orchestrator.EffectHighlight:
		m.highlight[e.View] = e.StepIndex
	}

	v := m.selected()
	if v == nil || v.ID() != e.ViewID {
		return
	}

	switch e.Kind {
	case orchestrator.EffectFocus:
		m.field = 0
		m.input.Focus()
		m.loadField()
	case orchestrator.EffectScroll:
		m.viewport.GotoTop()
	}
}

// resize пересчитывает размеры viewport.
func (m *Model) resize() {
	width := m.width - 4
	if width < 20 {
		width = 20
	}

	// Заголовок, список views, блок шагов и подвал.
	reserved := len(m.views) + 12
	if v := m.selected(); v != nil {
		reserved += v.Plan().Len()
	}

	height := m.height - reserved
	if height < 3 {
		height = 3
	}

	m.viewport.Width = width
	m.viewport.Height = height
	m.input.Width = width - 20
	m.refreshOutput()
}

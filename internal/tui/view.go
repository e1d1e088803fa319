package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/engine"
	"github.com/shaiso/Shellboard/internal/gateway"
	"github.com/shaiso/Shellboard/internal/sequencer"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.opts.Title))
	b.WriteString("\n\n")

	if len(m.views) == 0 {
		b.WriteString(mutedStyle.Render("no views"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.renderViewList())
	b.WriteString("\n")
	b.WriteString(m.renderSteps())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if link := m.rawLink(); link != "" {
		b.WriteString(mutedStyle.Render("raw: " + link))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render("tab: view • ↑/↓: field • enter: run • pgup/pgdn: scroll • esc: quit"))
	return b.String()
}

// renderViewList — список views с категорией и фазой.
func (m Model) renderViewList() string {
	var b strings.Builder
	for i, v := range m.views {
		cfg := v.Config()
		st := m.states[v.Slug()]

		cursor := " "
		name := cfg.Name
		if i == m.cursor {
			cursor = markerCursor
			name = selectedStyle.Render(name)
		}

		category := categoryStyle(cfg.Category.Color).Render("[" + cfg.Category.Name + "]")
		fmt.Fprintf(&b, "%s %s %s  %s\n", cursor, category, name, m.renderPhase(st))
	}
	return b.String()
}

func (m Model) renderPhase(st sequencer.State) string {
	if st.IsExecuting {
		return m.spinner.View() + " " + activeStyle.Render(st.Phase.String())
	}
	if st.Phase == "" {
		return mutedStyle.Render(domain.PhaseIdle.String())
	}
	return mutedStyle.Render(st.Phase.String())
}

// renderSteps — шаги выбранного view и поля ввода активного шага.
func (m Model) renderSteps() string {
	v := m.selected()
	st, _ := m.selectedState()
	plan := v.Plan()

	highlighted, hasHighlight := m.highlight[v.Slug()]

	var b strings.Builder
	for i, step := range plan.Steps {
		name := step.Name
		if step.PrePhase {
			name = "inputs"
		}

		marker := markerPending
		style := mutedStyle
		switch result := st.Result(i); {
		case i == st.ActiveIndex:
			marker, style = markerActive, activeStyle
		case result != nil && result.Succeeded():
			marker, style = markerOK, okStyle
		case result != nil:
			marker, style = markerFailed, failedStyle
		}

		line := style.Render(marker) + " " + name
		if hasHighlight && highlighted == i {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")

		if i == st.ActiveIndex {
			b.WriteString(m.renderFields(step.Inputs))
		}
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderFields(fields []domain.InputSpec) string {
	var b strings.Builder
	for i, f := range fields {
		if i == m.field {
			fmt.Fprintf(&b, "  %s %s: %s\n", markerCursor, f.Slug, m.input.View())
			continue
		}
		_, index, _ := m.activeStep()
		st, _ := m.selectedState()
		fmt.Fprintf(&b, "    %s: %s\n", f.Slug, mutedStyle.Render(st.Value(index, f.Slug)))
	}
	return b.String()
}

// refreshOutput выводит в viewport результат последнего выполненного шага.
func (m *Model) refreshOutput() {
	result, step, ok := m.lastResult()
	if !ok {
		m.viewport.SetContent(mutedStyle.Render("no output yet"))
		return
	}

	var b strings.Builder
	header := fmt.Sprintf("%s: exit %d", step.Name, result.ExitCode)
	if result.Succeeded() {
		b.WriteString(okStyle.Render(header))
	} else {
		b.WriteString(failedStyle.Render(header))
	}
	b.WriteString("\n")

	if step.Display.IsChart() {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%s output, %d bytes", step.Display, len(result.Stdout))))
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Width(m.viewport.Width).Render(result.Output()))
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

// rawLink — ссылка на сырой вывод последнего выполненного шага.
func (m Model) rawLink() string {
	if m.opts.RawBaseURL == "" {
		return ""
	}

	_, step, ok := m.lastResult()
	if !ok || step.CommandRef == "" {
		return ""
	}

	st, _ := m.selectedState()
	return gateway.RawLink(m.opts.RawBaseURL, step.CommandRef, stepInputs(st, step.Uses))
}

// setInput заменяет или добавляет значение name.
func setInput(values []domain.InputValue, name, value string) []domain.InputValue {
	for i := range values {
		if values[i].Name == name {
			values[i].Value = value
			return values
		}
	}
	return append(values, domain.InputValue{Name: name, Value: value})
}

// stepInputs собирает значения, которые получила команда шага.
func stepInputs(st sequencer.State, uses []engine.InputUse) []domain.InputValue {
	values := make([]domain.InputValue, 0, len(uses))
	for _, use := range uses {
		values = append(values, domain.InputValue{
			Name:  use.Spec.Slug,
			Value: st.Value(use.Owner, use.Spec.Slug),
		})
	}
	return values
}

package engine

import (
	"fmt"

	"github.com/shaiso/Shellboard/internal/domain"
)

// PlanOptions — параметры построения плана.
type PlanOptions struct {
	// Dedup включает дедупликацию inputs между шагами: первый шаг,
	// объявивший slug, собирает значение, последующие переиспользуют его.
	// Без Dedup каждый шаг собирает свои inputs сам.
	Dedup bool
}

// DefaultPlanOptions возвращает параметры по умолчанию для вида view.
func DefaultPlanOptions(kind domain.ViewKind) PlanOptions {
	return PlanOptions{Dedup: kind == domain.ViewKindSequence}
}

// InputUse — вход, который получает команда шага, и индекс шага-владельца,
// у которого берётся значение.
type InputUse struct {
	Spec  domain.InputSpec
	Owner int
}

// PlanStep — один шаг плана.
type PlanStep struct {
	// Name — имя шага.
	Name string

	// CommandRef — slug команды. Пустой у pre-phase.
	CommandRef string

	// Display — формат вывода команды.
	Display domain.Display

	// Inputs — inputs, которые собираются на этом шаге и участвуют в gating.
	Inputs []domain.InputSpec

	// Uses — все inputs, передаваемые команде, в порядке объявления
	// (сначала inputs уровня view).
	Uses []InputUse

	// PrePhase — шаг сбора inputs уровня view, без вызова gateway.
	PrePhase bool
}

// NeedsInput возвращает true, если шаг собирает хотя бы один input.
func (s PlanStep) NeedsInput() bool {
	return len(s.Inputs) > 0
}

// Plan — обобщённое описание view для sequencer'а.
//
// Неизменяем после построения: sequencer держит один Plan на всё время жизни.
type Plan struct {
	// View — slug view.
	View string

	// Kind — вид view, от которого зависят политики по умолчанию.
	Kind domain.ViewKind

	// Steps — шаги. Если у view есть inputs уровня view, Steps[0] — pre-phase.
	Steps []PlanStep
}

// Len возвращает количество шагов (включая pre-phase).
func (p *Plan) Len() int {
	return len(p.Steps)
}

// HasPrePhase возвращает true, если первый шаг — pre-phase.
func (p *Plan) HasPrePhase() bool {
	return len(p.Steps) > 0 && p.Steps[0].PrePhase
}

// BuildPlan строит Plan из ViewConfig.
func BuildPlan(view domain.ViewConfig, opts PlanOptions) (*Plan, error) {
	steps := view.Steps()
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSteps, view.Slug)
	}

	plan := &Plan{
		View:  view.Slug,
		Kind:  view.Kind(),
		Steps: make([]PlanStep, 0, len(steps)+1),
	}

	// owners — slug → индекс шага, который собирает значение.
	owners := make(map[string]int)

	var viewUses []InputUse
	if len(view.Inputs) > 0 {
		pre := PlanStep{
			Name:     view.Name,
			Inputs:   view.Inputs,
			PrePhase: true,
		}
		for _, in := range view.Inputs {
			owners[in.Slug] = 0
			viewUses = append(viewUses, InputUse{Spec: in, Owner: 0})
		}
		plan.Steps = append(plan.Steps, pre)
	}

	for _, st := range steps {
		idx := len(plan.Steps)
		ps := PlanStep{
			Name:       st.Name,
			CommandRef: st.CommandRef(),
			Display:    st.Command.Display,
			Uses:       append([]InputUse(nil), viewUses...),
		}

		for _, in := range st.Command.Inputs {
			owner, owned := owners[in.Slug]
			if owned && owner == 0 && plan.HasPrePhase() {
				continue // уже передаётся как input уровня view
			}
			if owned && opts.Dedup {
				ps.Uses = append(ps.Uses, InputUse{Spec: in, Owner: owner})
				continue
			}
			if !owned {
				owners[in.Slug] = idx
			}
			ps.Inputs = append(ps.Inputs, in)
			ps.Uses = append(ps.Uses, InputUse{Spec: in, Owner: idx})
		}

		plan.Steps = append(plan.Steps, ps)
	}

	return plan, nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/engine"
	"github.com/shaiso/Shellboard/internal/sequencer"
)

// ErrMissingInput — шагу не хватает значений --input.
var ErrMissingInput = errors.New("missing input")

// ExitError — команда шага завершилась с ненулевым кодом.
// main завершает процесс с этим кодом.
type ExitError struct {
	Step    string
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("step %q (%s) exited with code %d", e.Step, e.Command, e.Code)
}

// StepReport — результат одного выполненного шага.
type StepReport struct {
	Index   int
	Name    string
	Command string
	Result  *domain.ExecutionResult
}

// RunView проходит view от первого шага до последнего без TUI.
//
// Значения inputs берутся из values по slug. Каждый выполненный шаг
// передаётся в report. Останавливается на первом шаге с ненулевым
// кодом (ExitError) или без нужных inputs (ErrMissingInput).
func RunView(ctx context.Context, view domain.ViewConfig, gw sequencer.Gateway, values map[string]string, gate sequencer.GatePolicy, report func(StepReport)) error {
	plan, err := engine.BuildPlan(view, engine.DefaultPlanOptions(view.Kind()))
	if err != nil {
		return err
	}

	cfg := sequencer.DefaultConfig(view.Kind())
	cfg.Gate = gate
	cfg.Logger = slog.Default().With("view", view.Slug)

	seq := sequencer.New(plan, gw, cfg)
	defer seq.Close()

	for {
		idx := seq.State().ActiveIndex
		step := plan.Steps[idx]

		for _, spec := range step.Inputs {
			if v, ok := values[spec.Slug]; ok {
				if err := seq.SetValue(idx, spec.Slug, v); err != nil {
					return err
				}
			}
		}

		tr, err := seq.Tick(ctx, sequencer.OriginUser)
		if err != nil {
			return err
		}

		if tr.Skipped {
			return fmt.Errorf("%w: step %q needs %s", ErrMissingInput, step.Name, inputNames(step.Inputs))
		}

		if !step.PrePhase && report != nil {
			report(StepReport{
				Index:   idx,
				Name:    step.Name,
				Command: step.CommandRef,
				Result:  tr.Result,
			})
		}

		if tr.Result != nil && !tr.Result.Succeeded() {
			return &ExitError{Step: step.Name, Command: step.CommandRef, Code: tr.Result.ExitCode}
		}

		if tr.Looped {
			return nil
		}
	}
}

func inputNames(specs []domain.InputSpec) string {
	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.Slug
	}
	return strings.Join(names, ", ")
}

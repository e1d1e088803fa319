package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Shellboard/internal/domain"
)

func cmd(slug string, inputs ...string) domain.CommandConfig {
	c := domain.CommandConfig{Slug: slug, Command: "echo " + slug}
	for _, in := range inputs {
		c.Inputs = append(c.Inputs, domain.InputSpec{Slug: in})
	}
	return c
}

func sequenceView(steps ...domain.Step) domain.ViewConfig {
	return domain.ViewConfig{
		Name:     "Seq",
		Slug:     "seq",
		Sequence: &domain.SequenceConfig{Slug: "seq", Steps: steps},
	}
}

func slugs(specs []domain.InputSpec) []string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Slug)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --- BuildPlan Tests ---

func TestBuildPlan_CommandView(t *testing.T) {
	c := cmd("uptime")
	view := domain.ViewConfig{Name: "Uptime", Slug: "uptime", Command: &c}

	plan, err := BuildPlan(view, DefaultPlanOptions(view.Kind()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Len() != 1 {
		t.Fatalf("expected 1 step, got %d", plan.Len())
	}
	if plan.Kind != domain.ViewKindCommand {
		t.Errorf("expected command kind, got %s", plan.Kind)
	}
	if plan.Steps[0].Name != "Uptime" || plan.Steps[0].CommandRef != "uptime" {
		t.Errorf("unexpected step: %+v", plan.Steps[0])
	}
	if plan.HasPrePhase() {
		t.Error("command view without inputs should not have pre-phase")
	}
}

func TestBuildPlan_NoSteps(t *testing.T) {
	_, err := BuildPlan(domain.ViewConfig{Slug: "empty"}, PlanOptions{})
	if !errors.Is(err, ErrNoSteps) {
		t.Fatalf("expected ErrNoSteps, got %v", err)
	}
}

func TestBuildPlan_Dedup(t *testing.T) {
	view := sequenceView(
		domain.Step{Name: "a", Command: cmd("a", "HOST")},
		domain.Step{Name: "b", Command: cmd("b", "HOST", "TOKEN")},
		domain.Step{Name: "c", Command: cmd("c", "TOKEN")},
	)

	plan, err := BuildPlan(view, PlanOptions{Dedup: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := slugs(plan.Steps[0].Inputs); !equal(got, []string{"HOST"}) {
		t.Errorf("step 0 owns %v", got)
	}
	if got := slugs(plan.Steps[1].Inputs); !equal(got, []string{"TOKEN"}) {
		t.Errorf("step 1 owns %v", got)
	}
	if plan.Steps[2].NeedsInput() {
		t.Errorf("step 2 should reuse TOKEN, owns %v", slugs(plan.Steps[2].Inputs))
	}

	uses := plan.Steps[1].Uses
	if len(uses) != 2 || uses[0].Owner != 0 || uses[1].Owner != 1 {
		t.Errorf("unexpected uses for step 1: %+v", uses)
	}
	if uses := plan.Steps[2].Uses; len(uses) != 1 || uses[0].Owner != 1 {
		t.Errorf("unexpected uses for step 2: %+v", uses)
	}
}

func TestBuildPlan_NoDedup(t *testing.T) {
	view := sequenceView(
		domain.Step{Name: "a", Command: cmd("a", "HOST")},
		domain.Step{Name: "b", Command: cmd("b", "HOST")},
	)

	plan, err := BuildPlan(view, PlanOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !plan.Steps[1].NeedsInput() {
		t.Fatal("without dedup every step collects its own inputs")
	}
	if plan.Steps[1].Uses[0].Owner != 1 {
		t.Errorf("expected owner 1, got %d", plan.Steps[1].Uses[0].Owner)
	}
}

func TestBuildPlan_PrePhase(t *testing.T) {
	view := sequenceView(
		domain.Step{Name: "a", Command: cmd("a", "ENV")},
		domain.Step{Name: "b", Command: cmd("b", "REGION")},
	)
	view.Inputs = []domain.InputSpec{{Slug: "ENV"}}

	plan, err := BuildPlan(view, PlanOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Len() != 3 || !plan.HasPrePhase() {
		t.Fatalf("expected pre-phase + 2 steps, got %d steps", plan.Len())
	}

	pre := plan.Steps[0]
	if pre.CommandRef != "" || !equal(slugs(pre.Inputs), []string{"ENV"}) {
		t.Errorf("unexpected pre-phase: %+v", pre)
	}

	// ENV собирается в pre-phase, шаг a ничего не собирает.
	if plan.Steps[1].NeedsInput() {
		t.Errorf("step a should not collect ENV, owns %v", slugs(plan.Steps[1].Inputs))
	}
	if uses := plan.Steps[1].Uses; len(uses) != 1 || uses[0].Owner != 0 {
		t.Errorf("unexpected uses for step a: %+v", uses)
	}

	// Шаг b получает ENV из pre-phase и собирает REGION сам.
	uses := plan.Steps[2].Uses
	if len(uses) != 2 || uses[0].Spec.Slug != "ENV" || uses[1].Owner != 2 {
		t.Errorf("unexpected uses for step b: %+v", uses)
	}
}

package engine

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/Shellboard/internal/domain"
)

// refreshParser — парсер cron-выражений для refresh.
var refreshParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseRefresh парсит cron-выражение refresh ("*/5 * * * *", "@every 30s").
func ParseRefresh(expr string) (cron.Schedule, error) {
	sched, err := refreshParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse refresh %q: %w", expr, err)
	}
	return sched, nil
}

// Validate выполняет полную валидацию Definition.
//
// Проверяет по порядку:
// - inputs: непустые и уникальные slug'и
// - commands: slug, текст, display, ссылки на inputs без повторов
// - sequences: slug, хотя бы один шаг, ссылки шагов на commands
// - categories: slug, имя, цвет
// - views: имя, ровно одна цель (command/sequence), категория, refresh
func Validate(def *domain.Definition) error {
	if def == nil {
		return NewValidationError("", "", "", "definition is empty", ErrEmptySteps)
	}

	inputs, err := validateInputs(def.Inputs)
	if err != nil {
		return err
	}

	commands, err := validateCommands(inputs, def.Commands)
	if err != nil {
		return err
	}

	sequences, err := validateSequences(commands, def.Sequences)
	if err != nil {
		return err
	}

	categories, err := validateCategories(def.Categories)
	if err != nil {
		return err
	}

	return validateViews(inputs, commands, sequences, categories, def.Views)
}

func validateInputs(inputs []domain.InputDef) (map[string]bool, error) {
	seen := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		if in.Slug == "" {
			return nil, NewValidationError("input", "", "slug",
				fmt.Sprintf("input %d has empty slug", i), ErrEmptySlug)
		}
		if seen[in.Slug] {
			return nil, NewValidationError("input", in.Slug, "slug",
				"duplicate slug", ErrDuplicate)
		}
		seen[in.Slug] = true
	}
	return seen, nil
}

func validateCommands(inputs map[string]bool, commands []domain.CommandDef) (map[string]bool, error) {
	seen := make(map[string]bool, len(commands))
	for i := range commands {
		cmd := &commands[i]

		if cmd.Slug == "" {
			return nil, NewValidationError("command", "", "slug",
				fmt.Sprintf("command %d has empty slug", i), ErrEmptySlug)
		}
		if seen[cmd.Slug] {
			return nil, NewValidationError("command", cmd.Slug, "slug",
				"duplicate slug", ErrDuplicate)
		}
		seen[cmd.Slug] = true

		if cmd.Command == "" {
			return nil, NewValidationError("command", cmd.Slug, "command",
				"command is empty", ErrEmptyCommand)
		}

		if _, ok := domain.ParseDisplay(cmd.Display); !ok {
			return nil, NewValidationError("command", cmd.Slug, "display",
				fmt.Sprintf("unknown display: %s", cmd.Display), ErrInvalidDisplay)
		}

		if err := validateInputRefs("command", cmd.Slug, inputs, cmd.Inputs); err != nil {
			return nil, err
		}
	}
	return seen, nil
}

// validateInputRefs проверяет, что ссылки на inputs определены и не повторяются.
func validateInputRefs(kind, slug string, inputs map[string]bool, refs []domain.CommandInputDef) error {
	used := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if !inputs[ref.Input] {
			return NewValidationError(kind, slug, "inputs",
				fmt.Sprintf("undefined input: %s", ref.Input), ErrUndefinedRef)
		}
		if used[ref.Input] {
			return NewValidationError(kind, slug, "inputs",
				fmt.Sprintf("duplicate input: %s", ref.Input), ErrDuplicate)
		}
		used[ref.Input] = true
	}
	return nil
}

func validateSequences(commands map[string]bool, sequences []domain.SequenceDef) (map[string]bool, error) {
	seen := make(map[string]bool, len(sequences))
	for i := range sequences {
		seq := &sequences[i]

		if seq.Slug == "" {
			return nil, NewValidationError("sequence", "", "slug",
				fmt.Sprintf("sequence %d has empty slug", i), ErrEmptySlug)
		}
		if seen[seq.Slug] {
			return nil, NewValidationError("sequence", seq.Slug, "slug",
				"duplicate slug", ErrDuplicate)
		}
		seen[seq.Slug] = true

		if len(seq.Steps) == 0 {
			return nil, NewValidationError("sequence", seq.Slug, "steps",
				"no steps defined", ErrEmptySteps)
		}

		for j, step := range seq.Steps {
			if step.Name == "" {
				return nil, NewValidationError("sequence", seq.Slug, "steps",
					fmt.Sprintf("step %d has empty name", j), ErrEmptyName)
			}
			if !commands[step.Command] {
				return nil, NewValidationError("sequence", seq.Slug, "steps",
					fmt.Sprintf("step %s: undefined command: %s", step.Name, step.Command), ErrUndefinedRef)
			}
		}
	}
	return seen, nil
}

func validateCategories(categories []domain.CategoryDef) (map[string]bool, error) {
	seen := make(map[string]bool, len(categories))
	for i, c := range categories {
		if c.Slug == "" {
			return nil, NewValidationError("category", "", "slug",
				fmt.Sprintf("category %d has empty slug", i), ErrEmptySlug)
		}
		if seen[c.Slug] {
			return nil, NewValidationError("category", c.Slug, "slug",
				"duplicate slug", ErrDuplicate)
		}
		seen[c.Slug] = true

		if c.Name == "" {
			return nil, NewValidationError("category", c.Slug, "name",
				"name is empty", ErrEmptyName)
		}
		if c.Color == "" {
			return nil, NewValidationError("category", c.Slug, "color",
				"color is empty", ErrEmptyColor)
		}
	}
	return seen, nil
}

func validateViews(inputs, commands, sequences, categories map[string]bool, views []domain.ViewDef) error {
	names := make(map[string]bool, len(views))
	slugs := make(map[string]bool, len(views))

	for i := range views {
		v := &views[i]

		if v.Name == "" {
			return NewValidationError("view", "", "name",
				fmt.Sprintf("view %d has empty name", i), ErrEmptyName)
		}
		if names[v.Name] {
			return NewValidationError("view", v.Name, "name",
				"duplicate name", ErrDuplicate)
		}
		names[v.Name] = true

		slug := ViewSlug(*v)
		if slug == "" {
			return NewValidationError("view", v.Name, "slug",
				"slug is empty", ErrEmptySlug)
		}
		if slugs[slug] {
			return NewValidationError("view", v.Name, "slug",
				fmt.Sprintf("duplicate slug: %s", slug), ErrDuplicate)
		}
		slugs[slug] = true

		switch {
		case v.Command != "" && v.Sequence != "":
			return NewValidationError("view", v.Name, "command",
				"command and sequence set", ErrViewTarget)
		case v.Command == "" && v.Sequence == "":
			return NewValidationError("view", v.Name, "command",
				"no command and no sequence set", ErrViewTarget)
		case v.Command != "" && !commands[v.Command]:
			return NewValidationError("view", v.Name, "command",
				fmt.Sprintf("undefined command: %s", v.Command), ErrUndefinedRef)
		case v.Sequence != "" && !sequences[v.Sequence]:
			return NewValidationError("view", v.Name, "sequence",
				fmt.Sprintf("undefined sequence: %s", v.Sequence), ErrUndefinedRef)
		}

		if !categories[v.Category] {
			return NewValidationError("view", v.Name, "category",
				fmt.Sprintf("undefined category: %s", v.Category), ErrUndefinedRef)
		}

		if err := validateInputRefs("view", v.Name, inputs, v.Inputs); err != nil {
			return err
		}

		if v.Refresh != "" {
			if _, err := ParseRefresh(v.Refresh); err != nil {
				return NewValidationError("view", v.Name, "refresh", err.Error(), ErrInvalidRefresh)
			}
		}
	}

	return nil
}

package engine

import (
	"strings"
	"unicode"

	"github.com/shaiso/Shellboard/internal/domain"
)

// Resolve валидирует Definition и разворачивает ссылки по slug'ам
// в готовые ViewConfig и CategoryConfig.
func Resolve(def *domain.Definition) (*domain.Dashboard, error) {
	if err := Validate(def); err != nil {
		return nil, err
	}

	inputs := make(map[string]domain.InputSpec, len(def.Inputs))
	for _, in := range def.Inputs {
		inputs[in.Slug] = domain.InputSpec{Slug: in.Slug, Description: in.Description}
	}

	commands := make(map[string]domain.CommandConfig, len(def.Commands))
	for _, c := range def.Commands {
		display, _ := domain.ParseDisplay(c.Display)
		commands[c.Slug] = domain.CommandConfig{
			Slug:        c.Slug,
			Command:     c.Command,
			Display:     display,
			Description: c.Description,
			Inputs:      resolveInputs(inputs, c.Inputs),
		}
	}

	scopeCommands(def, inputs, commands)

	sequences := make(map[string]domain.SequenceConfig, len(def.Sequences))
	for _, s := range def.Sequences {
		steps := make([]domain.Step, 0, len(s.Steps))
		for _, st := range s.Steps {
			steps = append(steps, domain.Step{Name: st.Name, Command: commands[st.Command]})
		}
		sequences[s.Slug] = domain.SequenceConfig{Slug: s.Slug, Steps: steps}
	}

	dash := &domain.Dashboard{
		Views:      make([]domain.ViewConfig, 0, len(def.Views)),
		Categories: make([]domain.CategoryConfig, 0, len(def.Categories)),
		Commands:   commands,
	}

	categories := make(map[string]domain.CategoryConfig, len(def.Categories))
	for _, c := range def.Categories {
		cat := domain.CategoryConfig{Slug: c.Slug, Name: c.Name, Color: c.Color}
		categories[c.Slug] = cat
		dash.Categories = append(dash.Categories, cat)
	}

	for _, v := range def.Views {
		view := domain.ViewConfig{
			Name:     v.Name,
			Slug:     ViewSlug(v),
			Execute:  domain.ExecuteConfig{Auto: v.Execute.Auto},
			Refresh:  v.Refresh,
			Inputs:   resolveInputs(inputs, v.Inputs),
			Category: categories[v.Category],
		}
		if v.Command != "" {
			cmd := commands[v.Command]
			view.Command = &cmd
		} else {
			seq := sequences[v.Sequence]
			view.Sequence = &seq
		}
		dash.Views = append(dash.Views, view)
	}

	return dash, nil
}

// scopeCommands добавляет командам inputs уровня view тех views, в которых
// команда выполняется.
func scopeCommands(def *domain.Definition, inputs map[string]domain.InputSpec, commands map[string]domain.CommandConfig) {
	steps := make(map[string][]string, len(def.Sequences))
	for _, s := range def.Sequences {
		for _, st := range s.Steps {
			steps[s.Slug] = append(steps[s.Slug], st.Command)
		}
	}

	for _, v := range def.Views {
		if len(v.Inputs) == 0 {
			continue
		}
		refs := steps[v.Sequence]
		if v.Command != "" {
			refs = []string{v.Command}
		}
		for _, ref := range refs {
			cmd := commands[ref]
			for _, in := range v.Inputs {
				if !cmd.AcceptsInput(in.Input) {
					cmd.Scope = append(cmd.Scope, inputs[in.Input])
				}
			}
			commands[ref] = cmd
		}
	}
}

func resolveInputs(inputs map[string]domain.InputSpec, refs []domain.CommandInputDef) []domain.InputSpec {
	if len(refs) == 0 {
		return nil
	}
	out := make([]domain.InputSpec, 0, len(refs))
	for _, ref := range refs {
		out = append(out, inputs[ref.Input])
	}
	return out
}

// ViewSlug возвращает slug view: явный или выведенный из имени
// ("Disk Usage" → "disk-usage").
func ViewSlug(v domain.ViewDef) string {
	if v.Slug != "" {
		return v.Slug
	}
	return Slugify(v.Name)
}

// Slugify приводит строку к виду slug: нижний регистр, буквы и цифры,
// остальные символы схлопываются в один дефис.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

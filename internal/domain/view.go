package domain

// InputSpec — входной параметр, который требует шаг.
// Идентичность определяется Slug.
type InputSpec struct {
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// CommandConfig — команда с развёрнутыми ссылками на inputs.
type CommandConfig struct {
	Slug        string      `json:"slug"`
	Command     string      `json:"command"`
	Display     Display     `json:"display,omitempty"`
	Description string      `json:"description,omitempty"`
	Inputs      []InputSpec `json:"inputs,omitempty"`

	// Scope — inputs уровня view, которые команда получает в views,
	// где она выполняется (pre-phase).
	Scope []InputSpec `json:"scope,omitempty"`
}

// AcceptsInput сообщает, может ли команда получить input с таким именем.
func (c CommandConfig) AcceptsInput(name string) bool {
	for _, in := range c.Inputs {
		if in.Slug == name {
			return true
		}
	}
	for _, in := range c.Scope {
		if in.Slug == name {
			return true
		}
	}
	return false
}

// Step — один шаг последовательности.
type Step struct {
	Name    string        `json:"name"`
	Command CommandConfig `json:"command"`
}

// CommandRef возвращает идентификатор команды для gateway.
func (s Step) CommandRef() string {
	return s.Command.Slug
}

// SequenceConfig — последовательность шагов. Инвариант: len(Steps) >= 1.
type SequenceConfig struct {
	Slug  string `json:"slug"`
	Steps []Step `json:"steps"`
}

// CategoryConfig — категория view.
type CategoryConfig struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ExecuteConfig — политика запуска view.
type ExecuteConfig struct {
	Auto bool `json:"auto"`
}

// ViewKind — вид view.
type ViewKind string

const (
	// ViewKindCommand — одиночная команда.
	ViewKindCommand ViewKind = "command"

	// ViewKindSequence — последовательность шагов.
	ViewKindSequence ViewKind = "sequence"
)

// ViewConfig — готовая к использованию конфигурация view.
type ViewConfig struct {
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Execute  ExecuteConfig   `json:"execute"`
	Refresh  string          `json:"refresh,omitempty"`
	Inputs   []InputSpec     `json:"inputs,omitempty"`
	Command  *CommandConfig  `json:"command,omitempty"`
	Sequence *SequenceConfig `json:"sequence,omitempty"`
	Category CategoryConfig  `json:"category"`
}

// Kind возвращает вид view.
func (v ViewConfig) Kind() ViewKind {
	if v.Sequence != nil {
		return ViewKindSequence
	}
	return ViewKindCommand
}

// Steps нормализует view в список шагов.
// Command view — это последовательность из одного шага с именем view.
func (v ViewConfig) Steps() []Step {
	if v.Sequence != nil {
		return v.Sequence.Steps
	}
	if v.Command != nil {
		return []Step{{Name: v.Name, Command: *v.Command}}
	}
	return nil
}

// Dashboard — результат разрешения Definition.
type Dashboard struct {
	Views      []ViewConfig
	Categories []CategoryConfig
	Commands   map[string]CommandConfig
}

// View ищет view по slug.
func (d *Dashboard) View(slug string) (ViewConfig, bool) {
	for _, v := range d.Views {
		if v.Slug == slug {
			return v, true
		}
	}
	return ViewConfig{}, false
}

// Command ищет команду по slug.
func (d *Dashboard) Command(slug string) (CommandConfig, bool) {
	c, ok := d.Commands[slug]
	return c, ok
}

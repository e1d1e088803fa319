package domain

import (
	"time"

	"github.com/google/uuid"
)

// Definition — описание дашборда в том виде, в котором его пишет пользователь.
//
// Все ссылки между сущностями задаются slug'ами: view ссылается на command
// или sequence и на category, step — на command, command — на input.
// Definition хранится в файле (YAML/HCL) или в БД (JSONB поле spec)
// и превращается в набор ViewConfig через engine.Resolve.
type Definition struct {
	// Inputs — именованные входные параметры, которые могут требовать команды.
	Inputs []InputDef `json:"inputs,omitempty" yaml:"inputs,omitempty"`

	// Commands — shell-команды, доступные для выполнения.
	Commands []CommandDef `json:"commands,omitempty" yaml:"commands,omitempty"`

	// Sequences — упорядоченные последовательности шагов.
	Sequences []SequenceDef `json:"sequences,omitempty" yaml:"sequences,omitempty"`

	// Categories — группы views (цвет, название).
	Categories []CategoryDef `json:"categories,omitempty" yaml:"categories,omitempty"`

	// Views — то, что отображается на дашборде.
	Views []ViewDef `json:"views,omitempty" yaml:"views,omitempty"`
}

// InputDef — объявление входного параметра.
type InputDef struct {
	Slug        string `json:"slug" yaml:"slug"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// CommandDef — объявление команды.
type CommandDef struct {
	// Slug — уникальный идентификатор команды (он же CommandRef для gateway).
	Slug string `json:"slug" yaml:"slug"`

	// Command — текст команды для /bin/sh -c.
	Command string `json:"command" yaml:"command"`

	// Display — формат отображения stdout ("", "text", "echarts-json", "apexcharts-json").
	Display string `json:"display,omitempty" yaml:"display,omitempty"`

	// Description — человекочитаемое описание.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Inputs — slug'и входных параметров, которые команда получает через env.
	Inputs []CommandInputDef `json:"inputs,omitempty" yaml:"inputs,omitempty"`
}

// CommandInputDef — ссылка команды на входной параметр.
type CommandInputDef struct {
	Input string `json:"input" yaml:"input"`
}

// SequenceDef — объявление последовательности шагов.
type SequenceDef struct {
	Slug  string    `json:"slug" yaml:"slug"`
	Steps []StepDef `json:"steps" yaml:"steps"`
}

// StepDef — один шаг последовательности.
type StepDef struct {
	Name    string `json:"name" yaml:"name"`
	Command string `json:"command" yaml:"command"`
}

// CategoryDef — объявление категории.
type CategoryDef struct {
	Slug  string `json:"slug" yaml:"slug"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// ViewDef — объявление view.
//
// Ровно одно из Command / Sequence должно быть задано.
type ViewDef struct {
	Name string `json:"name" yaml:"name"`

	// Slug — идентификатор view. Если пустой, выводится из Name.
	Slug string `json:"slug,omitempty" yaml:"slug,omitempty"`

	Command  string `json:"command,omitempty" yaml:"command,omitempty"`
	Sequence string `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Category string `json:"category" yaml:"category"`

	// Inputs — параметры уровня view (pre-phase), собираются до первого шага
	// и передаются в каждый шаг.
	Inputs []CommandInputDef `json:"inputs,omitempty" yaml:"inputs,omitempty"`

	// Execute — политика запуска.
	Execute ExecuteDef `json:"execute,omitempty" yaml:"execute,omitempty"`

	// Refresh — cron-выражение периодического перезапуска (пусто = выключено).
	Refresh string `json:"refresh,omitempty" yaml:"refresh,omitempty"`
}

// ExecuteDef — настройки запуска view.
type ExecuteDef struct {
	// Auto — выполнить команду сразу при создании view.
	Auto bool `json:"auto,omitempty" yaml:"auto,omitempty"`
}

// DashboardVersion — сохранённая версия Definition.
//
// Новая версия создаётся при каждом сохранении, активной считается последняя.
type DashboardVersion struct {
	// ID — уникальный идентификатор версии.
	ID uuid.UUID `json:"id"`

	// Name — имя дашборда ("ops", "staging" и т.д.).
	Name string `json:"name"`

	// Version — номер версии (1, 2, 3, ...).
	Version int `json:"version"`

	// Spec — содержимое JSONB поля spec.
	Spec Definition `json:"spec"`

	// CreatedAt — время создания версии.
	CreatedAt time.Time `json:"created_at"`
}

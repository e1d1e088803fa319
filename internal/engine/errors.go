package engine

import "errors"

// Ошибки валидации Definition.
var (
	// ErrEmptySlug — у сущности пустой slug.
	ErrEmptySlug = errors.New("empty slug")

	// ErrEmptyName — у сущности пустое имя.
	ErrEmptyName = errors.New("empty name")

	// ErrDuplicate — несколько сущностей с одинаковым slug или именем.
	ErrDuplicate = errors.New("duplicate definition")

	// ErrUndefinedRef — ссылка на несуществующую сущность.
	ErrUndefinedRef = errors.New("undefined reference")

	// ErrEmptyCommand — у команды пустой текст.
	ErrEmptyCommand = errors.New("command is empty")

	// ErrEmptySteps — последовательность без шагов.
	ErrEmptySteps = errors.New("sequence has no steps")

	// ErrViewTarget — у view задано и command, и sequence, или ни одного.
	ErrViewTarget = errors.New("view must set exactly one of command or sequence")

	// ErrInvalidDisplay — неизвестный формат отображения.
	ErrInvalidDisplay = errors.New("invalid display")

	// ErrInvalidRefresh — некорректное cron-выражение refresh.
	ErrInvalidRefresh = errors.New("invalid refresh schedule")

	// ErrEmptyColor — у категории не задан цвет.
	ErrEmptyColor = errors.New("category color is empty")
)

// Ошибки построения плана.
var (
	// ErrNoSteps — view не содержит ни одного шага.
	ErrNoSteps = errors.New("view has no steps")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	Kind    string // вид сущности: input, command, sequence, category, view
	Slug    string // slug или имя сущности
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Slug != "" {
		return e.Kind + " " + e.Slug + ": " + e.Message
	}
	if e.Kind != "" {
		return e.Kind + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(kind, slug, field, message string, err error) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Slug:    slug,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

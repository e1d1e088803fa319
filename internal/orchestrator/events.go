package orchestrator

import (
	"github.com/google/uuid"
	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/sequencer"
)

// ResultEvent — результат выполнения шага для отображения.
type ResultEvent struct {
	ViewID     uuid.UUID
	View       string
	StepIndex  int
	StepName   string
	CommandRef string
	Display    domain.Display
	Origin     sequencer.Origin
	Tick       uint64
	Result     *domain.ExecutionResult
}

// ErrorEvent — сбой gateway, показывается пользователю как уведомление.
type ErrorEvent struct {
	ViewID     uuid.UUID
	View       string
	StepIndex  int
	CommandRef string
	Origin     sequencer.Origin
	Tick       uint64
	Err        error
}

// EffectKind — вид эффекта отображения.
type EffectKind string

const (
	// EffectFocus — перевести фокус на поле ввода шага.
	EffectFocus EffectKind = "focus"

	// EffectScroll — прокрутить к шагу.
	EffectScroll EffectKind = "scroll"

	// EffectHighlight — подсветить выполненный шаг.
	EffectHighlight EffectKind = "highlight"
)

// Effect — эффект отображения после перехода. В состоянии sequencer'а не хранится.
type Effect struct {
	ViewID    uuid.UUID
	View      string
	Kind      EffectKind
	StepIndex int
}

// ChangeEvent — состояние view после обработанного тика.
type ChangeEvent struct {
	ViewID     uuid.UUID
	View       string
	Transition sequencer.Transition
	State      sequencer.State
}

// Callbacks — обработчики событий view. Любой может быть nil.
//
// Вызываются из горутины тика; обработчик не должен блокироваться надолго.
type Callbacks struct {
	OnResult func(ResultEvent)
	OnError  func(ErrorEvent)
	OnEffect func(Effect)
	OnChange func(ChangeEvent)
}

func (c Callbacks) result(e ResultEvent) {
	if c.OnResult != nil {
		c.OnResult(e)
	}
}

func (c Callbacks) error(e ErrorEvent) {
	if c.OnError != nil {
		c.OnError(e)
	}
}

func (c Callbacks) effect(e Effect) {
	if c.OnEffect != nil {
		c.OnEffect(e)
	}
}

func (c Callbacks) change(e ChangeEvent) {
	if c.OnChange != nil {
		c.OnChange(e)
	}
}

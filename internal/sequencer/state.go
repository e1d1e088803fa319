package sequencer

import "github.com/shaiso/Shellboard/internal/domain"

// Origin — источник тика.
type Origin string

const (
	// OriginUser — действие пользователя (Enter, кнопка Run, CLI).
	OriginUser Origin = "user"

	// OriginAuto — follow-up тик, запланированный auto-chain.
	OriginAuto Origin = "auto"

	// OriginSchedule — периодический refresh по cron.
	OriginSchedule Origin = "schedule"
)

// State — снимок состояния sequencer'а для отображения.
//
// Все срезы — копии: изменение снимка не влияет на sequencer.
type State struct {
	// ActiveIndex — шаг, ожидающий ввода или выполняющийся.
	ActiveIndex int

	// LastExecutedIndex — последний выполненный шаг (-1, если ничего не выполнялось).
	// Используется только для подсветки.
	LastExecutedIndex int

	// IsExecuting — вызов gateway в процессе.
	IsExecuting bool

	// Phase — текущая фаза автомата.
	Phase domain.Phase

	// Tick — номер последнего принятого тика.
	Tick uint64

	// InputValues — собранные значения по шагам.
	InputValues [][]domain.InputValue

	// Results — последний результат по шагам (nil, если шаг не выполнялся
	// в текущем цикле).
	Results []*domain.ExecutionResult
}

// Result возвращает результат шага или nil.
func (s State) Result(step int) *domain.ExecutionResult {
	if step < 0 || step >= len(s.Results) {
		return nil
	}
	return s.Results[step]
}

// Value возвращает собранное значение name для шага.
func (s State) Value(step int, name string) string {
	if step < 0 || step >= len(s.InputValues) {
		return ""
	}
	for _, v := range s.InputValues[step] {
		if v.Name == name {
			return v.Value
		}
	}
	return ""
}

// Transition — описание одного тика.
type Transition struct {
	// Tick — номер тика.
	Tick uint64

	// Origin — источник тика.
	Origin Origin

	// StepIndex — шаг, который оценивался на этом тике.
	StepIndex int

	// NextIndex — активный шаг после тика.
	NextIndex int

	// Phase — фаза после тика.
	Phase domain.Phase

	// Skipped — gating: шагу нужен ввод, gateway не вызывался.
	Skipped bool

	// Result — результат выполнения (nil для Skipped, pre-phase и ошибок gateway).
	Result *domain.ExecutionResult

	// Advanced — активный шаг сдвинулся (exit 0 или pre-phase).
	Advanced bool

	// Looped — последовательность вернулась на шаг 0.
	Looped bool

	// FollowUp — нужен ещё один автоматический тик.
	FollowUp bool

	// Discarded — результат пришёл после Close и не был применён.
	Discarded bool
}

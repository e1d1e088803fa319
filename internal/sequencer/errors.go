package sequencer

import "errors"

// Ошибки sequencer'а.
var (
	// ErrTickInFlight — предыдущий тик ещё ждёт ответа gateway.
	ErrTickInFlight = errors.New("tick already in flight")

	// ErrSequencerClosed — sequencer закрыт (view размонтирован).
	ErrSequencerClosed = errors.New("sequencer closed")

	// ErrStepIndex — индекс шага вне диапазона.
	ErrStepIndex = errors.New("step index out of range")

	// ErrNoResult — gateway вернул nil без ошибки.
	ErrNoResult = errors.New("gateway returned no result")

	// ErrGatewayPanic — gateway запаниковал во время вызова.
	ErrGatewayPanic = errors.New("gateway panicked")

	// ErrUnknownGatePolicy — неизвестное имя политики gating.
	ErrUnknownGatePolicy = errors.New("unknown gate policy")
)

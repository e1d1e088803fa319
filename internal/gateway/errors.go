package gateway

import (
	"errors"
	"fmt"
)

// Классы ошибок gateway. Проверяются через errors.Is на *Error.
var (
	// ErrUnavailable — исполнитель недоступен (сеть, нет соединения с RabbitMQ).
	ErrUnavailable = errors.New("executor unavailable")

	// ErrTimeout — ответ не получен за отведённое время.
	ErrTimeout = errors.New("execution timeout")

	// ErrUnknownCommand — исполнитель не знает такой команды.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrBadRequest — исполнитель отклонил запрос.
	ErrBadRequest = errors.New("bad request")

	// ErrService — ошибка на стороне исполнителя (команду не удалось запустить).
	ErrService = errors.New("executor error")

	// ErrProtocol — ответ исполнителя не удалось разобрать.
	ErrProtocol = errors.New("malformed executor response")

	// ErrUnknownKind — неизвестный тип gateway в конфигурации.
	ErrUnknownKind = errors.New("unknown gateway kind")
)

// Error — сбой вызова gateway (GatewayError).
type Error struct {
	// Op — реализация gateway: http, amqp, local.
	Op string

	// Command — slug команды.
	Command string

	// Err — класс ошибки и причина.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s gateway: command %s: %v", e.Op, e.Command, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError оборачивает cause в класс kind.
func newError(op, command string, kind, cause error) *Error {
	if cause == nil {
		return &Error{Op: op, Command: command, Err: kind}
	}
	return &Error{Op: op, Command: command, Err: fmt.Errorf("%w: %w", kind, cause)}
}

// IsGatewayError сообщает, является ли err (или его причина) ошибкой gateway.
func IsGatewayError(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr)
}

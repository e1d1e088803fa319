package worker

import "errors"

// Ошибки воркера.
var (
	// ErrUnknownCommand — команда с таким slug не определена.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrEmptyCommand — у команды пустая строка для запуска.
	ErrEmptyCommand = errors.New("empty command")

	// ErrExecutionTimeout — выполнение превысило таймаут.
	ErrExecutionTimeout = errors.New("execution timeout")

	// ErrExecutionFailed — процесс не удалось запустить.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrNoReplyTo — запрос пришёл без очереди для ответа.
	ErrNoReplyTo = errors.New("request has no reply_to")
)

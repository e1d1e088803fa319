package gateway

import (
	"context"
	"errors"

	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/worker"
)

const opLocal = "local"

// Local выполняет команды в текущем процессе.
type Local struct {
	executor *worker.CommandExecutor
}

// NewLocal создаёт Local gateway над командами дашборда.
func NewLocal(commands worker.CommandLookup, shell *worker.ShellExecutor) *Local {
	return &Local{executor: worker.NewCommandExecutor(commands, shell)}
}

// Execute запускает команду через shell.
func (l *Local) Execute(ctx context.Context, commandRef string, inputs []domain.InputValue) (*domain.ExecutionResult, error) {
	result, err := l.executor.Execute(ctx, commandRef, inputs)
	if err == nil {
		return result, nil
	}

	switch {
	case errors.Is(err, worker.ErrUnknownCommand):
		return nil, newError(opLocal, commandRef, ErrUnknownCommand, err)
	case errors.Is(err, worker.ErrExecutionTimeout), errors.Is(err, context.DeadlineExceeded):
		return nil, newError(opLocal, commandRef, ErrTimeout, err)
	default:
		return nil, newError(opLocal, commandRef, ErrService, err)
	}
}

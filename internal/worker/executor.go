package worker

import (
	"context"
	"fmt"

	"github.com/shaiso/Shellboard/internal/domain"
)

// Executor выполняет команду дашборда по slug.
//
// Реализации: CommandExecutor (локально), gateway.* (удалённо).
type Executor interface {
	Execute(ctx context.Context, commandRef string, inputs []domain.InputValue) (*domain.ExecutionResult, error)
}

// CommandLookup находит команду по slug. *domain.Dashboard реализует его.
type CommandLookup interface {
	Command(slug string) (domain.CommandConfig, bool)
}

// CommandExecutor выполняет команды дашборда через ShellExecutor.
type CommandExecutor struct {
	commands CommandLookup
	shell    *ShellExecutor
}

// NewCommandExecutor создаёт CommandExecutor. shell == nil — настройки по умолчанию.
func NewCommandExecutor(commands CommandLookup, shell *ShellExecutor) *CommandExecutor {
	if shell == nil {
		shell = &ShellExecutor{}
	}
	return &CommandExecutor{commands: commands, shell: shell}
}

// Execute находит команду и запускает её.
// Inputs, которые команда не объявляет, в окружение процесса не попадают.
func (e *CommandExecutor) Execute(ctx context.Context, commandRef string, inputs []domain.InputValue) (*domain.ExecutionResult, error) {
	cmd, ok := e.commands.Command(commandRef)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, commandRef)
	}

	result, err := e.shell.Run(ctx, cmd.Command, AcceptedInputs(cmd, inputs))
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", commandRef, err)
	}

	return result, nil
}

// AcceptedInputs оставляет только inputs, которые команда может получить:
// её собственные и inputs уровня view (CommandConfig.Scope).
func AcceptedInputs(cmd domain.CommandConfig, inputs []domain.InputValue) []domain.InputValue {
	out := make([]domain.InputValue, 0, len(inputs))
	for _, in := range inputs {
		if cmd.AcceptsInput(in.Name) {
			out = append(out, in)
		}
	}
	return out
}

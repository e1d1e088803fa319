package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/telemetry"
)

// Instrumented пишет метрики и логи для каждого вызова gateway.
type Instrumented struct {
	next   Gateway
	name   string
	logger *slog.Logger
}

// NewInstrumented создаёт обёртку. name — метка gateway в метриках.
func NewInstrumented(next Gateway, name string, logger *slog.Logger) *Instrumented {
	if logger == nil {
		logger = slog.Default()
	}
	return &Instrumented{
		next:   next,
		name:   name,
		logger: logger.With("component", "gateway", "gateway", name),
	}
}

// Execute выполняет команду и учитывает результат.
func (g *Instrumented) Execute(ctx context.Context, commandRef string, inputs []domain.InputValue) (*domain.ExecutionResult, error) {
	start := time.Now()
	result, err := g.next.Execute(ctx, commandRef, inputs)
	elapsed := time.Since(start)

	telemetry.ObserveGatewayCall(g.name, elapsed)

	if err != nil {
		telemetry.RecordGatewayError(g.name, commandRef)
		g.logger.Warn("gateway call failed", "command", commandRef, "duration", elapsed, "error", err)
		return nil, err
	}

	telemetry.RecordExecution(commandRef, result.ExitCode)
	g.logger.Debug("command executed",
		"command", commandRef,
		"exit_code", result.ExitCode,
		"duration", elapsed,
	)

	return result, nil
}

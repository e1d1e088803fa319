package gateway

import (
	"context"

	"github.com/shaiso/Shellboard/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Traced оборачивает вызовы gateway в otel span "gateway.execute".
type Traced struct {
	next   Gateway
	tracer trace.Tracer
}

// NewTraced создаёт трассирующую обёртку.
func NewTraced(next Gateway, tracer trace.Tracer) *Traced {
	return &Traced{next: next, tracer: tracer}
}

// Execute выполняет команду внутри span.
func (t *Traced) Execute(ctx context.Context, commandRef string, inputs []domain.InputValue) (*domain.ExecutionResult, error) {
	ctx, span := t.tracer.Start(ctx, "gateway.execute",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("command", commandRef),
			attribute.Int("inputs", len(inputs)),
		),
	)
	defer span.End()

	result, err := t.next.Execute(ctx, commandRef, inputs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("exit_code", result.ExitCode))
	if !result.Succeeded() {
		// ненулевой exit — результат, а не сбой: статус span не меняем
		span.AddEvent("command exited non-zero")
	}

	return result, nil
}

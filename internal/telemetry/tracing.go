package telemetry

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName — имя tracer'а Shellboard.
const TracerName = "github.com/shaiso/Shellboard"

// Tracing — tracer provider процесса.
type Tracing struct {
	provider *sdktrace.TracerProvider
}

// SetupTracing создаёт tracer provider и делает его глобальным.
//
// Завершённые спаны пишутся в лог на уровне DEBUG (ошибочные — WARN).
// Если OTEL_TRACING=off, используется no-op tracer из otel.
func SetupTracing(logger *slog.Logger) *Tracing {
	if os.Getenv("OTEL_TRACING") == "off" {
		return &Tracing{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(&logSpanProcessor{logger: logger.With("component", "tracing")}),
	)
	otel.SetTracerProvider(provider)

	return &Tracing{provider: provider}
}

// Tracer возвращает tracer с заданным именем.
func (t *Tracing) Tracer(name string) trace.Tracer {
	if t == nil || t.provider == nil {
		return otel.Tracer(name)
	}
	return t.provider.Tracer(name)
}

// Shutdown завершает provider.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// logSpanProcessor пишет завершённые спаны в slog.
type logSpanProcessor struct {
	logger *slog.Logger
}

func (p *logSpanProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logSpanProcessor) OnEnd(span sdktrace.ReadOnlySpan) {
	attrs := []any{
		"span", span.Name(),
		"trace_id", span.SpanContext().TraceID().String(),
		"duration", span.EndTime().Sub(span.StartTime()),
	}
	for _, kv := range span.Attributes() {
		attrs = append(attrs, string(kv.Key), kv.Value.Emit())
	}

	status := span.Status()
	if status.Code == codes.Error {
		p.logger.Warn("span failed", append(attrs, "error", status.Description)...)
		return
	}
	p.logger.Debug("span finished", attrs...)
}

func (p *logSpanProcessor) Shutdown(context.Context) error {
	return nil
}

func (p *logSpanProcessor) ForceFlush(context.Context) error {
	return nil
}

package gateway

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Shellboard/internal/worker"
	"go.opentelemetry.io/otel/trace"
)

// Options — параметры сборки gateway.
type Options struct {
	// Kind — реализация: http, amqp, local.
	Kind Kind

	// APIURL — адрес shellboard-api (KindHTTP).
	APIURL string

	// Timeout — таймаут выполнения команды.
	Timeout time.Duration

	// Commands — команды дашборда (KindLocal).
	Commands worker.CommandLookup

	// RPC — RPC клиент RabbitMQ (KindAMQP).
	RPC Caller

	// Tracer — если задан, каждый вызов оборачивается в span.
	Tracer trace.Tracer

	Logger *slog.Logger
}

// New собирает gateway нужного вида с метриками и, если задан Tracer, трассировкой.
func New(opts Options) (Gateway, error) {
	var gw Gateway

	switch opts.Kind {
	case KindHTTP, "":
		gw = NewHTTP(opts.APIURL, opts.Timeout)
	case KindLocal:
		if opts.Commands == nil {
			return nil, fmt.Errorf("%w: local gateway needs commands", ErrUnknownKind)
		}
		gw = NewLocal(opts.Commands, &worker.ShellExecutor{Timeout: opts.Timeout})
	case KindAMQP:
		if opts.RPC == nil {
			return nil, fmt.Errorf("%w: amqp gateway needs an RPC client", ErrUnknownKind)
		}
		gw = NewAMQP(opts.RPC, opts.Timeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}

	name := string(opts.Kind)
	if name == "" {
		name = string(KindHTTP)
	}

	gw = NewInstrumented(gw, name, opts.Logger)
	if opts.Tracer != nil {
		gw = NewTraced(gw, opts.Tracer)
	}
	return gw, nil
}

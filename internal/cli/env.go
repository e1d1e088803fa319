package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shaiso/Shellboard/internal/config"
	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/gateway"
	"github.com/shaiso/Shellboard/internal/mq"
	"github.com/shaiso/Shellboard/internal/repo"
	"github.com/shaiso/Shellboard/internal/sequencer"
)

// ErrInvalidInput — флаг --input не в формате NAME=VALUE.
var ErrInvalidInput = errors.New("input must be NAME=VALUE")

// Env — общие флаги CLI. Значения читаются после разбора флагов.
type Env struct {
	APIURL  string
	Source  string
	Gateway string
	Gate    string
	Timeout time.Duration
	JSON    bool

	// RabbitURL — адрес RabbitMQ для --gateway amqp (default: mq.DefaultURL).
	RabbitURL string

	Logger *slog.Logger

	// Stdout, Stderr — потоки вывода (default: os.Stdout, os.Stderr).
	Stdout io.Writer
	Stderr io.Writer
}

// Client создаёт клиент API.
func (e *Env) Client() *Client {
	return NewClient(e.APIURL, e.Timeout)
}

// Output создаёт Output.
func (e *Env) Output() *Output {
	if e.Stdout == nil || e.Stderr == nil {
		return NewOutput(e.JSON)
	}
	return NewOutputTo(e.JSON, e.Stdout, e.Stderr)
}

// GatePolicy разбирает --gate.
func (e *Env) GatePolicy() (sequencer.GatePolicy, error) {
	return sequencer.ParseGatePolicy(e.Gate)
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Session — загруженный дашборд и gateway для его команд.
type Session struct {
	Dashboard *domain.Dashboard
	Gateway   gateway.Gateway

	// RawBaseURL — адрес API для ссылок на сырой вывод (только через API).
	RawBaseURL string

	closers []func()
}

// Close освобождает соединения сессии.
func (s *Session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Open загружает дашборд и собирает gateway.
//
// Без --config дашборд берётся из API, команды выполняются через API.
// С --config определение загружается из файла или БД, а gateway
// выбирается флагом --gateway (по умолчанию local).
func (e *Env) Open(ctx context.Context) (*Session, error) {
	s := &Session{}

	if e.Source == "" {
		client := e.Client()
		dash, err := client.Dashboard(ctx)
		if err != nil {
			return nil, fmt.Errorf("load dashboard from %s: %w", e.APIURL, err)
		}
		s.Dashboard = dash
		s.RawBaseURL = client.BaseURL()

		gw, err := gateway.New(gateway.Options{
			Kind:    gateway.KindHTTP,
			APIURL:  e.APIURL,
			Timeout: e.Timeout,
			Logger:  e.logger(),
		})
		if err != nil {
			return nil, err
		}
		s.Gateway = gw
		return s, nil
	}

	dash, err := e.loadDashboard(ctx, s)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Dashboard = dash

	kind := gateway.KindLocal
	if e.Gateway != "" {
		if kind, err = gateway.ParseKind(e.Gateway); err != nil {
			s.Close()
			return nil, err
		}
	}

	opts := gateway.Options{
		Kind:     kind,
		APIURL:   e.APIURL,
		Timeout:  e.Timeout,
		Commands: dash,
		Logger:   e.logger(),
	}

	switch kind {
	case gateway.KindAMQP:
		rpc, err := e.openRPC(ctx, s)
		if err != nil {
			s.Close()
			return nil, err
		}
		opts.RPC = rpc
	case gateway.KindHTTP:
		s.RawBaseURL = strings.TrimRight(e.APIURL, "/")
	}

	gw, err := gateway.New(opts)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Gateway = gw
	return s, nil
}

// loadDashboard загружает определение из --config.
func (e *Env) loadDashboard(ctx context.Context, s *Session) (*domain.Dashboard, error) {
	var store config.DefinitionStore
	if _, ok := config.IsDBSource(e.Source); ok {
		pool, err := repo.NewPool(ctx)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		store = repo.NewDashboardRepo(pool)
	}

	return config.LoadDashboard(ctx, e.Source, store)
}

// openRPC подключается к RabbitMQ и запускает RPC клиент.
func (e *Env) openRPC(ctx context.Context, s *Session) (*mq.RPCClient, error) {
	url := e.RabbitURL
	if url == "" {
		url = mq.DefaultURL()
	}

	conn, err := mq.NewConnection(url, e.logger())
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	s.closers = append(s.closers, func() { conn.Close() })

	if err := mq.SetupTopology(ctx, conn); err != nil {
		return nil, fmt.Errorf("setup topology: %w", err)
	}

	rpc := mq.NewRPCClient(conn, mq.NewPublisher(conn, e.logger()), e.logger())
	if err := rpc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start rpc client: %w", err)
	}
	s.closers = append(s.closers, rpc.Stop)
	return rpc, nil
}

// ParseInputs разбирает значения --input NAME=VALUE.
func ParseInputs(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidInput, p)
		}
		values[name] = value
	}
	return values, nil
}

// InputValues переводит значения в []domain.InputValue в порядке pairs.
func InputValues(pairs []string) ([]domain.InputValue, error) {
	values, err := ParseInputs(pairs)
	if err != nil {
		return nil, err
	}

	inputs := make([]domain.InputValue, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, p := range pairs {
		name, _, _ := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		inputs = append(inputs, domain.InputValue{Name: name, Value: values[name]})
	}
	return inputs, nil
}

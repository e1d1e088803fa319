// Shellboard Worker — выполняет команды дашборда из RabbitMQ.
//
// Worker:
//   - Получает запросы command.execute из очереди commands.execute
//   - Выполняет команду через /bin/sh с inputs в окружении
//   - Отправляет результат в reply-очередь вызывающего
//
// Workers масштабируются горизонтально.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Shellboard/internal/config"
	"github.com/shaiso/Shellboard/internal/gateway"
	"github.com/shaiso/Shellboard/internal/mq"
	"github.com/shaiso/Shellboard/internal/repo"
	"github.com/shaiso/Shellboard/internal/telemetry"
	"github.com/shaiso/Shellboard/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting shellboard-worker")

	settings, err := config.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Определение из БД, если SHELLBOARD_CONFIG=db:<имя>
	var store config.DefinitionStore
	if _, ok := config.IsDBSource(settings.ConfigSource); ok {
		pool, err := repo.NewPool(ctx)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = repo.NewDashboardRepo(pool)
		logger.Info("database connected")
	}

	dash, err := config.LoadDashboard(ctx, settings.ConfigSource, store)
	if err != nil {
		logger.Error("failed to load dashboard", "source", settings.ConfigSource, "error", err)
		os.Exit(1)
	}
	logger.Info("dashboard loaded", "source", settings.ConfigSource, "commands", len(dash.Commands))

	// RabbitMQ
	mqURL := settings.RabbitURL
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	// Создаём топологию
	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	publisher := mq.NewPublisher(mqConn, logger)

	// Команды выполняются локально, с метриками и логами каждого вызова
	executor := gateway.NewInstrumented(
		worker.NewCommandExecutor(dash, &worker.ShellExecutor{Timeout: settings.CommandTimeout}),
		"worker",
		logger,
	)

	// Создаём worker
	w := worker.New(worker.Config{
		Executor:  executor,
		Publisher: publisher,
		Conn:      mqConn,
		Logger:    logger,
	})

	// Запускаем worker
	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("WORKER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем worker
	w.Stop()
	logger.Info("shellboard-worker stopped")
}

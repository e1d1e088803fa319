// Shellboard API — HTTP API дашборда.
//
// API:
//   - Отдаёт views и categories дашборда
//   - Выполняет команды (локально или через RabbitMQ и shellboard-worker)
//   - Хранит версии определений дашбордов в PostgreSQL
//
// Определение берётся из SHELLBOARD_CONFIG: файл YAML/HCL/JSON или db:<имя>.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Shellboard/internal/api"
	"github.com/shaiso/Shellboard/internal/config"
	"github.com/shaiso/Shellboard/internal/gateway"
	"github.com/shaiso/Shellboard/internal/mq"
	"github.com/shaiso/Shellboard/internal/repo"
	"github.com/shaiso/Shellboard/internal/telemetry"
)

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shellboard_api_health_requests_total",
		Help: "Total health check requests handled by shellboard_api",
	})
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting shellboard-api")

	settings, err := config.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	tracing := telemetry.SetupTracing(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// База данных нужна для версий дашбордов и для источника db:<имя>
	var versions api.VersionStore
	var store config.DefinitionStore
	_, fromDB := config.IsDBSource(settings.ConfigSource)
	if settings.DBURL != "" || fromDB {
		pool, err := connectDB(ctx, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		dashRepo := repo.NewDashboardRepo(pool)
		versions = dashRepo
		store = dashRepo
	}

	dash, err := config.LoadDashboard(ctx, settings.ConfigSource, store)
	if err != nil {
		logger.Error("failed to load dashboard", "source", settings.ConfigSource, "error", err)
		os.Exit(1)
	}
	logger.Info("dashboard loaded",
		"source", settings.ConfigSource,
		"views", len(dash.Views),
		"commands", len(dash.Commands),
	)

	// Gateway: API выполняет команды сам или отдаёт их воркерам
	opts := gateway.Options{
		Kind:     gateway.KindLocal,
		Timeout:  settings.CommandTimeout,
		Commands: dash,
		Tracer:   tracing.Tracer(telemetry.TracerName),
		Logger:   logger,
	}

	if settings.Gateway == gateway.KindAMQP {
		rpc, closeMQ, err := connectMQ(ctx, settings.RabbitURL, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer closeMQ()

		opts.Kind = gateway.KindAMQP
		opts.RPC = rpc
	}

	gw, err := gateway.New(opts)
	if err != nil {
		logger.Error("failed to create gateway", "error", err)
		os.Exit(1)
	}
	logger.Info("gateway ready", "kind", opts.Kind)

	// Создаём API handler
	handler := api.NewHandler(api.Config{
		Dashboard: dash,
		Gateway:   gw,
		Versions:  versions,
		Logger:    logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := settings.APIAddr()

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", "error", err)
	}

	logger.Info("stopped")
}

// connectDB подключается к PostgreSQL и создаёт схему.
func connectDB(ctx context.Context, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := repo.NewPool(ctx)
	if err != nil {
		return nil, err
	}

	if err := repo.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to database")
	return pool, nil
}

// connectMQ подключается к RabbitMQ и запускает RPC клиент.
func connectMQ(ctx context.Context, url string, logger *slog.Logger) (*mq.RPCClient, func(), error) {
	if url == "" {
		url = mq.DefaultURL()
	}

	conn, err := mq.NewConnection(url, logger)
	if err != nil {
		return nil, nil, err
	}

	if err := mq.SetupTopology(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("setup topology: %w", err)
	}

	rpc := mq.NewRPCClient(conn, mq.NewPublisher(conn, logger), logger)
	if err := rpc.Start(ctx); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("start rpc client: %w", err)
	}
	logger.Info("RabbitMQ connected")
	logger.Debug(mq.TopologyInfo())

	return rpc, func() {
		rpc.Stop()
		conn.Close()
	}, nil
}

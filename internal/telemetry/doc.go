// Package telemetry содержит логирование, метрики и трассировку Shellboard.
//
//   - logging.go — slog логгер из LOG_LEVEL / LOG_FORMAT, логгер в контексте
//   - metrics.go — Prometheus метрики тиков, выполнений и HTTP запросов
//   - tracing.go — OpenTelemetry tracer provider, который пишет спаны в лог
package telemetry

// Package gateway — Execution Gateway: выполнение команды по slug с набором inputs.
//
// Реализации:
//   - HTTP — клиент shellboard-api (POST /api/v1/commands/{slug}/execute)
//   - AMQP — RPC через RabbitMQ (reply-очередь + correlation ID + таймаут)
//   - Local — выполнение в процессе через worker.CommandExecutor
//
// Обёртки:
//   - Traced — otel span на каждый вызов
//   - Instrumented — prometheus метрики и логирование
//
// Все сбои возвращаются как *Error. Ненулевой exit code ошибкой не является:
// это обычный ExecutionResult.
//
//	gw := gateway.NewInstrumented(
//	    gateway.NewTraced(gateway.NewHTTP(apiURL, timeout), tracer),
//	    "http", logger,
//	)
//	result, err := gw.Execute(ctx, "disk-usage", inputs)
package gateway

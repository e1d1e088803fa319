// Package api содержит HTTP API исполнителя команд (shellboard-api).
//
// Структура:
//   - handler.go         — Handler с DI (дашборд, gateway, хранилище версий, logger)
//   - routes.go          — регистрация маршрутов
//   - middleware.go      — middleware (recovery, logging, metrics)
//   - response.go        — унифицированные JSON-ответы и обработка ошибок
//   - dto.go             — Data Transfer Objects (request/response)
//   - command_handler.go — выполнение команд /commands/{slug}/execute
//   - view_handler.go    — чтение /views и /categories
//   - version_handler.go — версии дашбордов /dashboards
//
// Команды выполняются через gateway.Gateway: локально (gateway.Local)
// или через воркеры RabbitMQ (gateway.AMQP). Ненулевой exit code — это
// обычный ответ 200 с exit_code, а не ошибка API.
package api

// Package cli реализует инструмент командной строки Shellboard.
//
// # Обзор
//
// CLI работает в двух режимах:
//   - через shellboard-api (по умолчанию): views, команды и версии
//     дашбордов читаются и выполняются по HTTP;
//   - локально (--config FILE или --config db:NAME): определение
//     загружается напрямую, команды выполняются выбранным gateway
//     (--gateway local|amqp|http).
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент shellboard-api. Выполнение команд и чтение дашборда
// делегируются gateway.HTTP, версии дашбордов читаются и публикуются
// через /api/v1/dashboards.
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
//
// ## Runner
//
// RunView проходит один цикл view без терминального интерфейса:
// значения inputs берутся из флагов, шаги выполняются по порядку,
// ненулевой exit code останавливает прогон.
//
// ## Commands
//
//   - views, categories — содержимое дашборда
//   - exec SLUG — выполнить команду
//   - run VIEW — прогнать view целиком
//   - validate FILE — проверить определение
//   - dashboard: list, versions, publish, show
//   - tui — терминальный дашборд
package cli

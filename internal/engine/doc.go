// Package engine превращает описание дашборда в исполняемые планы.
//
// Включает:
//   - validate.go — проверка Definition (уникальность slug'ов, ссылки, cron)
//   - resolve.go  — разрешение ссылок Definition → Dashboard
//   - plan.go     — построение Plan для sequencer'а из ViewConfig
//
// Plan — обобщённая модель трёх вариантов view: одиночная команда,
// список шагов с параметрами уровня view (pre-phase) и последовательность
// с дедупликацией входных параметров между шагами.
package engine

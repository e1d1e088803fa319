// Package orchestrator связывает view с sequencer'ом.
//
// View отвечает за:
//   - Построение плана и sequencer'а из конфигурации view
//   - Trigger: тик sequencer'а в отдельной горутине (ошибки не возвращаются вызывающему)
//   - Auto-chain: follow-up тик через ChainDelay по таймеру
//   - Auto-start command view с execute.auto
//   - Уведомления: OnResult, OnError, OnChange и эффекты отображения (OnEffect)
//
// Dashboard управляет набором View одного дашборда.
package orchestrator

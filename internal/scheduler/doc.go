// Package scheduler периодически обновляет views с refresh-расписанием.
//
// View с полем refresh (cron-выражение или дескриптор вида "@every 30s")
// получает тик с источником OriginSchedule каждый раз, когда наступает
// время по расписанию.
//
// Структура:
//   - scheduler.go — Scheduler (Tick, Run)
//   - cron.go      — вычисление следующего времени по расписанию
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Views:     dash.Views,
//	    Triggerer: dashboard,
//	    Logger:    logger,
//	})
//
//	go sched.Run(ctx, time.Second)
//
// Тик, пришедший во время выполнения предыдущего, отбрасывается
// sequencer'ом (single-flight), поэтому частое расписание безопасно.
package scheduler

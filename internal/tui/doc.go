// Package tui — терминальный дашборд Shellboard на bubbletea.
//
// Model показывает список views, шаги выбранного view, поля ввода
// активного шага и вывод последнего выполненного шага. События
// orchestrator'а приходят в программу через Bridge:
//
//	bridge := tui.NewBridge(64)
//	dash, _ := orchestrator.NewDashboard(orchestrator.DashboardConfig{
//		Callbacks: bridge.Callbacks(),
//		...
//	})
//	err := tui.Run(ctx, dash, bridge, tui.Options{})
//
// Клавиши: tab/shift+tab — выбор view, up/down — поле ввода,
// enter — сохранить значение и запустить тик, pgup/pgdown — прокрутка
// вывода, ctrl+c/esc — выход.
package tui

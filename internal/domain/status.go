package domain

// Phase — состояние sequencer'а.
//
// Жизненный цикл одного тика:
//
//	IDLE → EXECUTING → ADVANCED → (auto-chain) EXECUTING
//	                            ↘ IDLE
type Phase string

const (
	// PhaseIdle — ожидание ввода или действия пользователя.
	PhaseIdle Phase = "IDLE"

	// PhaseExecuting — вызов gateway в процессе.
	PhaseExecuting Phase = "EXECUTING"

	// PhaseAdvanced — результат применён, активный шаг вычислен.
	PhaseAdvanced Phase = "ADVANCED"
)

// String возвращает строковое представление Phase.
func (p Phase) String() string {
	return string(p)
}

// Display — формат отображения вывода команды.
type Display string

const (
	// DisplayText — вывод как есть (по умолчанию).
	DisplayText Display = "text"

	// DisplayEChartsJSON — stdout содержит JSON опций ECharts.
	DisplayEChartsJSON Display = "echarts-json"

	// DisplayApexChartsJSON — stdout содержит JSON опций ApexCharts.
	DisplayApexChartsJSON Display = "apexcharts-json"
)

// ParseDisplay парсит строку в Display. Пустая строка означает DisplayText.
func ParseDisplay(s string) (Display, bool) {
	switch s {
	case "", "text":
		return DisplayText, true
	case "echarts-json":
		return DisplayEChartsJSON, true
	case "apexcharts-json":
		return DisplayApexChartsJSON, true
	default:
		return "", false
	}
}

// IsChart возвращает true для форматов-графиков.
func (d Display) IsChart() bool {
	return d == DisplayEChartsJSON || d == DisplayApexChartsJSON
}

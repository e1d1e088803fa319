package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы тика для метрики shellboard_ticks_total.
const (
	TickExecuted  = "executed"
	TickSkipped   = "skipped"
	TickPrePhase  = "pre_phase"
	TickBusy      = "busy"
	TickFailed    = "gateway_error"
	TickDiscarded = "discarded"
)

var (
	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shellboard_ticks_total",
		Help: "Sequencer ticks by view and outcome",
	}, []string{"view", "outcome"})

	executionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shellboard_executions_total",
		Help: "Command executions by command and exit status",
	}, []string{"command", "status"})

	executionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shellboard_execution_duration_seconds",
		Help:    "Command execution latency as seen by the gateway",
		Buckets: prometheus.DefBuckets,
	}, []string{"gateway"})

	gatewayErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shellboard_gateway_errors_total",
		Help: "Gateway transport or service failures",
	}, []string{"gateway", "command"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shellboard_http_requests_total",
		Help: "HTTP requests handled by shellboard-api",
	}, []string{"method", "code"})
)

// RecordTick учитывает исход тика.
func RecordTick(view, outcome string) {
	ticksTotal.WithLabelValues(view, outcome).Inc()
}

// RecordExecution учитывает выполнение команды.
// status — "ok" для exit 0, иначе "exit_<code>".
func RecordExecution(command string, exitCode int) {
	status := "ok"
	if exitCode != 0 {
		status = "exit_" + strconv.Itoa(exitCode)
	}
	executionsTotal.WithLabelValues(command, status).Inc()
}

// ObserveGatewayCall учитывает длительность вызова gateway.
func ObserveGatewayCall(gateway string, d time.Duration) {
	executionDuration.WithLabelValues(gateway).Observe(d.Seconds())
}

// RecordGatewayError учитывает ошибку gateway.
func RecordGatewayError(gateway, command string) {
	gatewayErrorsTotal.WithLabelValues(gateway, command).Inc()
}

// RecordHTTPRequest учитывает HTTP запрос.
func RecordHTTPRequest(method string, code int) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

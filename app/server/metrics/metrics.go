// Package metrics defines the Prometheus metrics of the dashboard server.
//
// Everything is registered with the default registry and served on /metrics.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GateDecisionsTotal counts auth gate outcomes by decision.
	GateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_gate_decisions_total",
			Help: "Auth gate decisions by outcome.",
		},
		[]string{"decision"},
	)

	// GateCacheLookupsTotal counts cache lookups by result (hit, miss).
	GateCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_gate_cache_lookups_total",
			Help: "Auth gate cache lookups by result.",
		},
		[]string{"result"},
	)

	// GateCacheEvictionsTotal counts entries removed by sweeps or by the size bound.
	GateCacheEvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_gate_cache_evictions_total",
			Help: "Auth gate cache evictions by reason.",
		},
		[]string{"reason"},
	)

	// SessionValidationErrorsTotal counts session store failures seen by the gate.
	SessionValidationErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_session_validation_errors_total",
			Help: "Session store errors during gate validation.",
		},
	)

	// AdminActionsTotal counts audited admin operations by action.
	AdminActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_admin_actions_total",
			Help: "Audited administrative actions by action.",
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(
		GateDecisionsTotal,
		GateCacheLookupsTotal,
		GateCacheEvictionsTotal,
		SessionValidationErrorsTotal,
		AdminActionsTotal,
	)
}

// Handler serves the default registry.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

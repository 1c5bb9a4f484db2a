package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LedgerOps counts reconciliation engine operations by ledger and verb.
	LedgerOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Ledger record mutations processed by the reconciliation engine",
	}, []string{"ledger", "op"})

	// CableActions counts optical cable lifecycle transitions by action type.
	CableActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cable_actions_total",
		Help: "Optical cable lifecycle actions applied",
	}, []string{"action"})

	// ReconcileFailures counts rejected or failed reconciliation attempts.
	ReconcileFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_failures_total",
		Help: "Reconciliation or lifecycle operations that were rejected",
	}, []string{"reason"})
)

// Handler exposes the prometheus registry as a gin handler for /metrics.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

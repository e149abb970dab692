package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MovementMetrics registra el resultado de los movimientos del motor.
// Con registerer nil todos los métodos son no-op, para tests y tooling.
type MovementMetrics struct {
	outcomes *prometheus.CounterVec
	commit   prometheus.Histogram
}

// NewMovementMetrics registra las métricas del motor en el registerer dado.
func NewMovementMetrics(reg prometheus.Registerer) *MovementMetrics {
	if reg == nil {
		return &MovementMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Movimientos procesados por tipo y resultado.",
	}, []string{"kind", "result"})
	commit := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_movement_commit_seconds",
		Help:    "Duración de la transacción append+apply en segundos.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(outcomes, commit)
	return &MovementMetrics{outcomes: outcomes, commit: commit}
}

// IncOutcome incrementa el contador para el tipo de movimiento y resultado
// (accepted, insufficient_stock, unregistered_tag, validation, storage).
func (m *MovementMetrics) IncOutcome(kind, result string) {
	if m == nil || m.outcomes == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.outcomes.WithLabelValues(kind, result).Inc()
}

// ObserveCommit registra la duración de la transacción del motor.
func (m *MovementMetrics) ObserveCommit(d time.Duration) {
	if m == nil || m.commit == nil {
		return
	}
	m.commit.Observe(d.Seconds())
}

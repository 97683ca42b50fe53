package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records row-store selector activity: which store served each
// operation and every primary/fallback mode transition.
type StoreMetrics struct {
	transitions *prometheus.CounterVec
	operations  *prometheus.CounterVec
}

// NewStoreMetrics registers the store metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_mode_transitions_total",
		Help: "Row store mode transitions.",
	}, []string{"to"})
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_operations_total",
		Help: "Row store operations by serving store and outcome.",
	}, []string{"op", "store", "outcome"})
	reg.MustRegister(transitions, operations)
	return &StoreMetrics{
		transitions: transitions,
		operations:  operations,
	}
}

// IncTransition counts a mode switch to the named store.
func (s *StoreMetrics) IncTransition(to string) {
	if s == nil || s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(normalizeLabel(to)).Inc()
}

// IncOperation counts one operation served by the named store.
func (s *StoreMetrics) IncOperation(op, store, outcome string) {
	if s == nil || s.operations == nil {
		return
	}
	s.operations.WithLabelValues(normalizeLabel(op), normalizeLabel(store), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

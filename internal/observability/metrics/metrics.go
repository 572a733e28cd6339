package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulerMetrics exposes counters for booking flows.
type SchedulerMetrics struct {
	createdTotal   prometheus.Counter
	cancelledTotal prometheus.Counter
	rejectedTotal  *prometheus.CounterVec
}

func NewSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	m := &SchedulerMetrics{
		createdTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduler",
			Name:      "appointments_created_total",
			Help:      "Total appointments accepted and persisted",
		}),
		cancelledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduler",
			Name:      "appointments_cancelled_total",
			Help:      "Total appointments cancelled",
		}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduler",
			Name:      "appointments_rejected_total",
			Help:      "Total booking requests rejected by validation or conflict",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.cancelledTotal, m.rejectedTotal)
	return m
}

func (m *SchedulerMetrics) ObserveCreated() {
	if m == nil {
		return
	}
	m.createdTotal.Inc()
}

func (m *SchedulerMetrics) ObserveCancelled() {
	if m == nil {
		return
	}
	m.cancelledTotal.Inc()
}

func (m *SchedulerMetrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(reason).Inc()
}

// StoreMetrics exposes write instrumentation for the appointment store.
type StoreMetrics struct {
	writeLatency prometheus.Histogram
	writeErrors  prometheus.Counter
}

func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		writeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "store",
			Name:      "write_seconds",
			Help:      "Latency of full rewrites of the appointment file",
			Buckets:   prometheus.DefBuckets,
		}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "store",
			Name:      "write_errors_total",
			Help:      "Total failed rewrites of the appointment file",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.writeLatency, m.writeErrors)
	return m
}

func (m *StoreMetrics) ObserveWrite(seconds float64, err error) {
	if m == nil {
		return
	}
	m.writeLatency.Observe(seconds)
	if err != nil {
		m.writeErrors.Inc()
	}
}

package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSchedulerMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSchedulerMetrics(reg)

	m.ObserveCreated()
	m.ObserveCreated()
	m.ObserveCancelled()
	m.ObserveRejected("slot_taken")

	if got := testutil.ToFloat64(m.createdTotal); got != 2 {
		t.Fatalf("expected 2 created, got %v", got)
	}
	if got := testutil.ToFloat64(m.cancelledTotal); got != 1 {
		t.Fatalf("expected 1 cancelled, got %v", got)
	}
	if got := testutil.ToFloat64(m.rejectedTotal.WithLabelValues("slot_taken")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
}

func TestStoreMetricsWriteErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)

	m.ObserveWrite(0.01, nil)
	m.ObserveWrite(0.02, errors.New("disk full"))

	if got := testutil.ToFloat64(m.writeErrors); got != 1 {
		t.Fatalf("expected 1 write error, got %v", got)
	}
}

func TestNilReceiversAreSafe(t *testing.T) {
	var sm *SchedulerMetrics
	var stm *StoreMetrics

	sm.ObserveCreated()
	sm.ObserveCancelled()
	sm.ObserveRejected("past_datetime")
	stm.ObserveWrite(0, nil)
}

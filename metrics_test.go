package sevent

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafeEverywhere(t *testing.T) {
	var m *Metrics
	m.ObservePools(NewSlabPool(1, 8), NewNodePool(1))
	m.recordRecv(10, nil)
	m.recordSend(10, errors.New("boom"))
	if got := m.Collectors(); got != nil {
		t.Fatalf("nil Metrics.Collectors() = %v, want nil", got)
	}
}

func TestMetricsObservePoolsReportsDepth(t *testing.T) {
	m := NewMetrics("test_sevent")
	slabs := NewSlabPool(1, 8)
	nodes := NewNodePool(1)

	slabs.Release(make([]byte, 8))
	nodes.Release(&node{})

	m.ObservePools(slabs, nodes)

	if got := testutil.ToFloat64(m.slabPoolDepth); got != 1 {
		t.Errorf("slabPoolDepth = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.nodePoolDepth); got != 1 {
		t.Errorf("nodePoolDepth = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.slabPoolDepth); got < 0 || got > float64(slabs.Capacity()) {
		t.Errorf("slabPoolDepth = %v, must stay within [0, capacity=%d]", got, slabs.Capacity())
	}
}

func TestMetricsRecordPoolExhaustedIsMonotonic(t *testing.T) {
	m := NewMetrics("test_sevent_exhausted")
	SetMetrics(m)
	t.Cleanup(func() { SetMetrics(nil) })

	slabs := NewSlabPool(1, 8)
	slabs.Release(make([]byte, 8))
	slabs.Release(make([]byte, 8)) // at capacity, exhausted
	slabs.Release(make([]byte, 8)) // exhausted again

	if got := testutil.ToFloat64(m.slabPoolExhausted); got != 2 {
		t.Errorf("slabPoolExhausted = %v, want 2", got)
	}
	if got := slabs.Overflows(); got != 2 {
		t.Errorf("Overflows() = %d, want 2", got)
	}
}

func TestMetricsRecordRecvAndSend(t *testing.T) {
	m := NewMetrics("test_sevent_io")

	m.recordRecv(100, nil)
	m.recordRecv(0, errors.New("econnreset"))
	m.recordSend(50, nil)

	if got := testutil.ToFloat64(m.recvCalls); got != 2 {
		t.Errorf("recvCalls = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.recvBytes); got != 100 {
		t.Errorf("recvBytes = %v, want 100", got)
	}
	if got := testutil.ToFloat64(m.recvErrors); got != 1 {
		t.Errorf("recvErrors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.sendCalls); got != 1 {
		t.Errorf("sendCalls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.sendBytes); got != 50 {
		t.Errorf("sendBytes = %v, want 50", got)
	}
}

func TestMetricsCollectorsRegisterCleanly(t *testing.T) {
	m := NewMetrics("test_sevent_register")
	reg := prometheus.NewRegistry()
	if err := reg.Register(m.slabPoolDepth); err != nil {
		t.Fatalf("Register: %v", err)
	}
	for _, c := range m.Collectors()[1:] {
		if err := reg.Register(c); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
}

func TestMetricsRecordIterationCounters(t *testing.T) {
	m := NewMetrics("test_sevent_iterations")

	m.recordRecvIteration()
	m.recordRecvIteration()
	m.recordSendIteration()

	if got := testutil.ToFloat64(m.recvIterations); got != 2 {
		t.Errorf("recvIterations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.sendIterations); got != 1 {
		t.Errorf("sendIterations = %v, want 1", got)
	}
}

func TestSetMetricsRoutesSocketRecordingThroughGlobal(t *testing.T) {
	m := NewMetrics("test_sevent_global")
	SetMetrics(m)
	t.Cleanup(func() { SetMetrics(nil) })

	globalMetrics.recordRecv(42, nil)
	if got := testutil.ToFloat64(m.recvBytes); got != 42 {
		t.Errorf("recvBytes = %v, want 42", got)
	}
}

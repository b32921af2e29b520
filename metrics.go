package sevent

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// globalMetricsPtr holds the process-wide Metrics instance socket I/O
// records against. nil until SetMetrics is called, at which point every
// recorder below becomes a cheap nil check away from a live collector update, the
// same "off until configured" default as the package logger
// (getGlobalLogger) and as the teacher's own Metrics.
var globalMetricsPtr atomic.Pointer[Metrics]

// SetMetrics installs m as the process-wide Metrics instance used by
// SocketRecv/SocketSend/SocketRecvFrom/SocketSendTo. Pass nil to disable.
func SetMetrics(m *Metrics) { globalMetricsPtr.Store(m) }

var globalMetrics = metricsAccessor{}

// metricsAccessor forwards to whatever *Metrics is currently installed,
// so call sites can write globalMetrics.recordRecv(...) unconditionally
// without a nil check of their own.
type metricsAccessor struct{}

func (metricsAccessor) recordRecv(n int, err error) { globalMetricsPtr.Load().recordRecv(n, err) }
func (metricsAccessor) recordSend(n int, err error) { globalMetricsPtr.Load().recordSend(n, err) }
func (metricsAccessor) recordRecvIteration()        { globalMetricsPtr.Load().recordRecvIteration() }
func (metricsAccessor) recordSendIteration()        { globalMetricsPtr.Load().recordSendIteration() }
func (metricsAccessor) recordPoolExhausted(pool string) {
	globalMetricsPtr.Load().recordPoolExhausted(pool)
}

// Metrics is an optional set of Prometheus collectors for pool and socket
// I/O activity. A nil *Metrics is valid everywhere it's accepted: every
// recorder method is a nil-receiver no-op, so instrumentation costs one
// nil check on the hot path when disabled, the same "optional, attach if
// you want it" shape as the teacher's Metrics (metrics.go), adapted from
// an in-process latency/TPS tracker to externally-scraped counters and
// gauges, since this package has no request/task lifecycle of its own to
// time.
type Metrics struct {
	slabPoolDepth     prometheus.Gauge
	nodePoolDepth     prometheus.Gauge
	slabPoolExhausted prometheus.Counter
	nodePoolExhausted prometheus.Counter

	recvBytes      prometheus.Counter
	sendBytes      prometheus.Counter
	recvCalls      prometheus.Counter
	sendCalls      prometheus.Counter
	recvErrors     prometheus.Counter
	sendErrors     prometheus.Counter
	recvIterations prometheus.Counter
	sendIterations prometheus.Counter
}

// NewMetrics creates a Metrics with collectors registered under the given
// namespace (e.g. "sevent"). The caller registers the returned Metrics'
// collectors with a prometheus.Registerer via Collectors.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		slabPoolDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "slab_pool", Name: "depth",
			Help: "Current number of slabs held in the SlabPool free list.",
		}),
		nodePoolDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "node_pool", Name: "depth",
			Help: "Current number of nodes held in the NodePool free list.",
		}),
		slabPoolExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "slab_pool", Name: "exhausted_total",
			Help: "Slab releases that found the pool at capacity and fell back to the allocator.",
		}),
		nodePoolExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "node_pool", Name: "exhausted_total",
			Help: "Node releases that found the pool at capacity and fell back to the allocator.",
		}),
		recvBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "socket", Name: "recv_bytes_total",
			Help: "Bytes accepted across all socket_recv/socket_recvfrom calls.",
		}),
		sendBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "socket", Name: "send_bytes_total",
			Help: "Bytes transmitted across all socket_send/socket_sendto calls.",
		}),
		recvCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "socket", Name: "recv_calls_total",
			Help: "Number of socket_recv/socket_recvfrom invocations.",
		}),
		sendCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "socket", Name: "send_calls_total",
			Help: "Number of socket_send/socket_sendto invocations.",
		}),
		recvErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "socket", Name: "recv_errors_total",
			Help: "socket_recv/socket_recvfrom calls that returned an OSError (EAGAIN excluded).",
		}),
		sendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "socket", Name: "send_errors_total",
			Help: "socket_send/socket_sendto calls that returned an OSError (EAGAIN excluded).",
		}),
		recvIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "socket", Name: "recv_iterations_total",
			Help: "Inner recv(2) syscalls performed across all socket_recv/socket_recvfrom calls.",
		}),
		sendIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "socket", Name: "send_iterations_total",
			Help: "Inner send(2) syscalls performed across all socket_send/socket_sendto calls.",
		}),
	}
}

// Collectors returns every collector owned by m, for bulk registration:
// reg.MustRegister(m.Collectors()...).
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{
		m.slabPoolDepth, m.nodePoolDepth,
		m.slabPoolExhausted, m.nodePoolExhausted,
		m.recvBytes, m.sendBytes, m.recvCalls, m.sendCalls,
		m.recvErrors, m.sendErrors, m.recvIterations, m.sendIterations,
	}
}

// ObservePools records the current depth of both pools. Depth never goes
// negative or exceeds the pool's configured capacity, since Depth is the
// length of a slice never grown past Release's capacity check. Cumulative
// exhaustion is tracked separately by recordPoolExhausted, called directly
// from the pool's Release path so it can use the monotonic Counter type
// rather than re-deriving a delta from Overflows() on each scrape.
func (m *Metrics) ObservePools(slabPool *SlabPool, nodePool *NodePool) {
	if m == nil {
		return
	}
	m.slabPoolDepth.Set(float64(slabPool.Depth()))
	m.nodePoolDepth.Set(float64(nodePool.Depth()))
}

func (m *Metrics) recordPoolExhausted(pool string) {
	if m == nil {
		return
	}
	switch pool {
	case "slab":
		m.slabPoolExhausted.Inc()
	case "node":
		m.nodePoolExhausted.Inc()
	}
}

func (m *Metrics) recordRecvIteration() {
	if m == nil {
		return
	}
	m.recvIterations.Inc()
}

func (m *Metrics) recordSendIteration() {
	if m == nil {
		return
	}
	m.sendIterations.Inc()
}

func (m *Metrics) recordRecv(n int, err error) {
	if m == nil {
		return
	}
	m.recvCalls.Inc()
	if n > 0 {
		m.recvBytes.Add(float64(n))
	}
	if err != nil {
		m.recvErrors.Inc()
	}
}

func (m *Metrics) recordSend(n int, err error) {
	if m == nil {
		return
	}
	m.sendCalls.Inc()
	if n > 0 {
		m.sendBytes.Add(float64(n))
	}
	if err != nil {
		m.sendErrors.Inc()
	}
}

package sevent

import "sync/atomic"

const (
	// defaultRecvIterationCap is the default number of inner recv
	// syscalls a single socket_recv call may perform.
	defaultRecvIterationCap = 8

	// defaultSendIterationCap is the default number of inner send
	// syscalls a single socket_send call may perform.
	defaultSendIterationCap = 8
)

// tunables holds the process-wide recv/send iteration caps used by the
// socket I/O loops; the slab size is held by the global SlabPool itself
// (see GetRecvSize/SetRecvSize). It generalizes the teacher's
// construction-time loopOptions (options.go) into a registry that stays
// live and mutable for the lifetime of the process, since, unlike Loop's
// options, these values must be changeable after pools already exist.
type tunables struct {
	recvIterationCap atomic.Int32
	sendIterationCap atomic.Int32
}

var globalTunables = newTunables()

func newTunables() *tunables {
	t := &tunables{}
	t.recvIterationCap.Store(defaultRecvIterationCap)
	t.sendIterationCap.Store(defaultSendIterationCap)
	return t
}

// GetRecvSize returns the current slab size used by new pool-born
// receive chunks.
func GetRecvSize() int { return globalSlabPool.Size() }

// SetRecvSize changes the slab size used by new pool-born receive
// chunks. It fails with a [RuntimeConflictError] if the SlabPool is
// non-empty: changing the size of slabs already in flight would leave
// pooled buffers of mismatched capacity, violating the invariant that a
// pool-born chunk's capacity always equals the configured slab size.
func SetRecvSize(n int) error {
	if globalSlabPool.Depth() != 0 {
		return &RuntimeConflictError{
			Message: "sevent: cannot change recv size while SlabPool is non-empty",
		}
	}
	globalSlabPool.SetSize(n)
	LogTunableChanged("recv_size", n)
	return nil
}

// GetRecvCount returns the current recv iteration cap.
func GetRecvCount() int { return int(globalTunables.recvIterationCap.Load()) }

// SetRecvCount changes the recv iteration cap. Unlike SetRecvSize, this
// is always legal: it bounds future work, not existing pool state.
func SetRecvCount(n int) {
	globalTunables.recvIterationCap.Store(int32(n))
	LogTunableChanged("recv_count", n)
}

// GetSendCount returns the current send iteration cap.
func GetSendCount() int { return int(globalTunables.sendIterationCap.Load()) }

// SetSendCount changes the send iteration cap.
func SetSendCount(n int) {
	globalTunables.sendIterationCap.Store(int32(n))
	LogTunableChanged("send_count", n)
}

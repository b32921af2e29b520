// Package sevent provides a chunked I/O buffer for staging bytes between
// non-blocking sockets and application code, plus the non-blocking socket
// I/O helpers built on top of it.
//
// # Architecture
//
// [Buffer] is a thin façade over a FIFO queue of immutable [Chunk] values
// ([ChunkQueue]). Writers append whole chunks to the tail; readers consume
// from the head, down to partial-chunk granularity tracked by a head
// offset rather than by copying. Two bounded, single-threaded, process-wide
// pools back the hot path: [SlabPool] recycles the fixed-size byte slabs a
// socket recv writes into, and [NodePool] recycles the queue's linked
// cells. Both pools spill to the allocator once full rather than blocking,
// so a burst of traffic degrades to ordinary garbage-collected allocation
// instead of stalling.
//
// # Socket I/O
//
// [SocketRecv], [SocketSend], [SocketRecvFrom], and [SocketSendTo] drive a
// bounded number of non-blocking recv(2)/send(2) syscalls per call,
// stopping on EAGAIN/EWOULDBLOCK (never surfaced as an error), a
// zero-byte result, or the configured iteration cap ([GetRecvCount],
// [GetSendCount]). SocketRecv opportunistically reuses spare capacity in
// an existing pool-born tail chunk instead of acquiring a new slab for
// every recv.
//
// # Thread Safety
//
// A [Buffer] and the pools and queue it wraps are NOT safe for concurrent
// use: the package targets a single-threaded event loop driving one
// socket's I/O at a time, the same model the original C extension this
// package reimplements assumes. Of the process-wide state, the recv/send
// iteration caps ([GetRecvCount], [GetSendCount]), the structured logger,
// and the installed [Metrics] use atomics/locks to guard configuration
// changes, not data-plane access; the default pools and the slab size
// ([GetRecvSize]/[SetRecvSize]) are not guarded at all.
//
// # Usage
//
//	buf := sevent.NewBuffer()
//	if _, err := sevent.SocketRecv(buf, fd, 0); err != nil {
//	    log.Fatal(err)
//	}
//	chunk, err := buf.Read(-1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(string(chunk.Bytes()))
//
// # Error Types
//
// The package provides cause-chain-aware error types:
//   - [IndexOutOfRangeError]: element access past total length, or a
//     contiguous-view request on an empty buffer
//   - [AllocationFailureError]: a chunk or node could not be acquired
//   - [RuntimeConflictError]: a tunable change conflicts with in-flight pooled state
//   - [OSError]: a recv/send syscall failed (excluding EAGAIN/EWOULDBLOCK)
//   - [OverflowError]: a port or flowinfo value outside its permitted range
//   - [AddressFormatError]: a malformed or wrong-arity peer address
//
// All error types implement the standard [error] interface, [errors.Unwrap],
// and type-based matching via [errors.As].
package sevent

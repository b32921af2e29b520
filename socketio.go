package sevent

// Family selects the address family used to format and parse peer
// addresses in the datagram paths. Kept as a package-local enum rather
// than reusing unix.AF_INET/unix.AF_INET6 directly: those constants'
// numeric values differ across platforms (and this file has no build
// tag), so the per-OS socketio_*.go files each switch on Family to build
// their own native sockaddr type.
type Family int

const (
	FamilyINet Family = iota
	FamilyINet6
)

// Addr is the peer address attached to chunks produced by SocketRecvFrom
// and required as the attachment on chunks consumed by SocketSendTo.
// Mirrors the (host, port) / (host, port, flowinfo, scope_id) tuples
// inet_ntop/inet_pton exchange in cbuffer.c's socket_recvfrom/sendto.
type Addr struct {
	Host     string
	Port     int
	FlowInfo uint32
	ScopeID  uint32
}

// tailReuseMinSpare is the minimum spare capacity (in bytes) a pool-born
// tail chunk must have before SocketRecv will recv directly into it
// instead of acquiring a new slab: 256 bytes minimum spare before
// tail-reuse kicks in.
const tailReuseMinSpare = 256

const (
	maxPort     = 65535
	maxFlowInfo = 1<<20 - 1
)

func validateAddr(family Family, a Addr) error {
	if a.Port < 0 || a.Port > maxPort {
		return &OverflowError{Field: "port", Value: int64(a.Port), Message: "sevent: port out of range"}
	}
	if family == FamilyINet6 && a.FlowInfo > maxFlowInfo {
		return &OverflowError{Field: "flowinfo", Value: int64(a.FlowInfo), Message: "sevent: flowinfo out of range"}
	}
	return nil
}

// Recv performs a single non-blocking recv(2) into a fresh slab, with no
// retry and no pooling side effects beyond the one slab acquired. Returns
// an empty chunk (not an error) when the call would block or the peer has
// closed.
func Recv(fd int) (Chunk, error) {
	slab := globalSlabPool.Acquire()
	n, err := rawRecv(fd, slab)
	if err != nil {
		globalSlabPool.Release(slab)
		if isWouldBlock(err) {
			return Chunk{}, nil
		}
		return Chunk{}, &OSError{Cause: err, Op: "recv", FD: fd}
	}
	if n <= 0 {
		globalSlabPool.Release(slab)
		return Chunk{}, nil
	}
	return newPooledChunk(slab[:n], nil), nil
}

// Send performs a single send(2) attempt, returning the number of bytes
// actually written. 0 with a nil error means the call would block.
func Send(fd int, data []byte) (int, error) {
	n, err := rawSend(fd, data)
	if err != nil {
		if isWouldBlock(err) {
			return 0, nil
		}
		return 0, &OSError{Cause: err, Op: "send", FD: fd}
	}
	return n, nil
}

// recvStep performs one recv iteration of SocketRecv/SocketRecvFrom's
// bounded loop: either the tail-reuse fast path (recv directly into a
// pool-born tail chunk's spare capacity) or a fresh slab acquisition.
// terminal is true when the loop should stop: EAGAIN/EWOULDBLOCK, a
// zero-byte recv (peer closed), or an OS error.
func recvStep(q *ChunkQueue, fd int) (n int, terminal bool, err error) {
	if q.tail != nil && q.tail.chunk.fromPool {
		buf := q.tail.chunk.bytes
		if spare := cap(buf) - len(buf); spare >= tailReuseMinSpare {
			extra := buf[len(buf):cap(buf)]
			globalMetrics.recordRecvIteration()
			got, rerr := rawRecv(fd, extra)
			if rerr != nil {
				if isWouldBlock(rerr) {
					return 0, true, nil
				}
				return 0, true, &OSError{Cause: rerr, Op: "recv", FD: fd}
			}
			if got <= 0 {
				return 0, true, nil
			}
			q.tail.chunk.bytes = buf[:len(buf)+got]
			q.totalLen += got
			return got, false, nil
		}
	}

	slab := q.slabPool.Acquire()
	globalMetrics.recordRecvIteration()
	got, rerr := rawRecv(fd, slab)
	if rerr != nil {
		q.slabPool.Release(slab)
		if isWouldBlock(rerr) {
			return 0, true, nil
		}
		return 0, true, &OSError{Cause: rerr, Op: "recv", FD: fd}
	}
	if got <= 0 {
		q.slabPool.Release(slab)
		return 0, true, nil
	}
	q.PushTail(newPooledChunk(slab[:got], nil))
	return got, false, nil
}

// SocketRecv fills b from fd for up to GetRecvCount() iterations or until
// the loop terminates (EAGAIN, peer close, or maxLen reached). maxLen <= 0
// means unbounded. Returns bytes received this call.
func SocketRecv(b *Buffer, fd int, maxLen int) (int, error) {
	q := b.queue
	budget := maxLen
	if budget > 0 {
		budget -= q.totalLen
	}

	total := 0
	for i := 0; i < GetRecvCount(); i++ {
		if maxLen > 0 && budget <= 0 {
			break
		}
		n, terminal, err := recvStep(q, fd)
		if err != nil {
			LogSocketRecv(fd, total, err)
			globalMetrics.recordRecv(total, err)
			return total, err
		}
		total += n
		budget -= n
		if terminal {
			break
		}
	}
	LogSocketRecv(fd, total, nil)
	globalMetrics.recordRecv(total, nil)
	return total, nil
}

// SocketSend drains b to fd for up to GetSendCount() iterations, stopping
// early on a partial send (the kernel send buffer is saturated) or
// EAGAIN/EWOULDBLOCK. Returns bytes sent this call.
func SocketSend(b *Buffer, fd int) (int, error) {
	q := b.queue
	total := 0
	for i := 0; i < GetSendCount(); i++ {
		if q.head == nil {
			break
		}
		data := q.head.chunk.bytes[q.headOffset:]
		globalMetrics.recordSendIteration()
		n, err := rawSend(fd, data)
		if err != nil {
			if isWouldBlock(err) {
				break
			}
			oerr := &OSError{Cause: err, Op: "send", FD: fd}
			LogSocketSend(fd, total, oerr)
			globalMetrics.recordSend(total, oerr)
			return total, oerr
		}
		if n == 0 {
			break
		}
		total += n
		q.consume(n)
		if n < len(data) {
			break
		}
	}
	LogSocketSend(fd, total, nil)
	globalMetrics.recordSend(total, nil)
	return total, nil
}

// SocketRecvFrom is SocketRecv for datagram sockets: every iteration
// allocates a fresh slab (no tail-reuse, since the peer address varies
// per datagram) and attaches the formatted peer Addr to the new chunk.
func SocketRecvFrom(b *Buffer, fd int, family Family, maxLen int) (int, error) {
	q := b.queue
	budget := maxLen
	if budget > 0 {
		budget -= q.totalLen
	}

	total := 0
	for i := 0; i < GetRecvCount(); i++ {
		if maxLen > 0 && budget <= 0 {
			break
		}

		slab := q.slabPool.Acquire()
		globalMetrics.recordRecvIteration()
		n, sa, err := rawRecvFrom(fd, slab)
		if err != nil {
			q.slabPool.Release(slab)
			if isWouldBlock(err) {
				break
			}
			oerr := &OSError{Cause: err, Op: "recvfrom", FD: fd}
			LogSocketRecv(fd, total, oerr)
			globalMetrics.recordRecv(total, oerr)
			return total, oerr
		}
		if n <= 0 {
			q.slabPool.Release(slab)
			break
		}

		addr, aerr := addrFromSockaddr(sa)
		if aerr != nil {
			q.slabPool.Release(slab)
			LogSocketRecv(fd, total, aerr)
			globalMetrics.recordRecv(total, aerr)
			return total, aerr
		}

		q.PushTail(newPooledChunk(slab[:n], addr))
		total += n
		budget -= n
	}
	LogSocketRecv(fd, total, nil)
	globalMetrics.recordRecv(total, nil)
	return total, nil
}

// SocketSendTo drains b to fd as datagrams, reading each chunk's
// attachment as the destination Addr. Validation failures (bad arity,
// unparseable host, out-of-range port/flowinfo) stop the loop and
// propagate immediately without consuming the offending chunk.
func SocketSendTo(b *Buffer, fd int, family Family) (int, error) {
	q := b.queue
	total := 0
	for i := 0; i < GetSendCount(); i++ {
		if q.head == nil {
			break
		}

		addr, ok := q.head.chunk.attachment.(Addr)
		if !ok {
			aerr := &AddressFormatError{Message: "sevent: chunk attachment is not an Addr"}
			LogSocketSend(fd, total, aerr)
			globalMetrics.recordSend(total, aerr)
			return total, aerr
		}
		if err := validateAddr(family, addr); err != nil {
			LogSocketSend(fd, total, err)
			globalMetrics.recordSend(total, err)
			return total, err
		}
		sa, err := sockaddrFromAddr(family, addr)
		if err != nil {
			LogSocketSend(fd, total, err)
			globalMetrics.recordSend(total, err)
			return total, err
		}

		data := q.head.chunk.bytes[q.headOffset:]
		globalMetrics.recordSendIteration()
		if err := rawSendTo(fd, data, sa); err != nil {
			if isWouldBlock(err) {
				break
			}
			oerr := &OSError{Cause: err, Op: "sendto", FD: fd}
			LogSocketSend(fd, total, oerr)
			globalMetrics.recordSend(total, oerr)
			return total, oerr
		}

		// Datagram sendto is all-or-nothing: a successful call always
		// transmits the entire chunk, never a prefix.
		n := len(data)
		total += n
		q.consume(n)
	}
	LogSocketSend(fd, total, nil)
	globalMetrics.recordSend(total, nil)
	return total, nil
}

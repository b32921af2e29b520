package sevent

// allocBytes is the seam through which ChunkQueue obtains destination
// buffers for read/join/next/fetch/copyfrom. It is a variable rather than
// a direct make() call so tests can simulate allocation-failure paths,
// since Go gives no ordinary way to force an allocator to fail short of
// exhausting real memory.
var allocBytes = func(n int) ([]byte, error) {
	return make([]byte, n), nil
}

// ChunkQueue is a singly-linked FIFO of [Chunk] values with a head byte
// offset that lets the front chunk be partially consumed without being
// split. It is grounded on cbuffer.c's BufferQueue/BufferObject pair: a
// linked list of pool-recyclable nodes plus a running head_offset/total_len
// pair cached at the queue level rather than recomputed per access.
//
// Not thread-safe. A ChunkQueue is owned by exactly one logical task at
// a time, the same single-writer assumption the original C extension's
// BufferQueue makes.
type ChunkQueue struct {
	head, tail *node
	headOffset int
	totalLen   int

	slabPool *SlabPool
	nodePool *NodePool
}

// NewChunkQueue returns an empty ChunkQueue drawing from the package-wide
// pools.
func NewChunkQueue() *ChunkQueue {
	return NewChunkQueueWithPools(globalSlabPool, globalNodePool)
}

// NewChunkQueueWithPools returns an empty ChunkQueue drawing from the given
// pools, for tests and callers that want isolated pool accounting.
func NewChunkQueueWithPools(slabPool *SlabPool, nodePool *NodePool) *ChunkQueue {
	return &ChunkQueue{slabPool: slabPool, nodePool: nodePool}
}

// Length returns total_len. O(1).
func (q *ChunkQueue) Length() int { return q.totalLen }

// Empty reports whether the queue holds zero bytes.
func (q *ChunkQueue) Empty() bool { return q.head == nil }

// PushTail appends chunk as a new tail node. O(1). A zero-length chunk is a
// no-op, mirroring Buffer_write's early return on an empty payload.
func (q *ChunkQueue) PushTail(c Chunk) {
	if c.empty() {
		return
	}
	nd := q.nodePool.Acquire()
	nd.chunk = c
	nd.next = nil
	q.appendNode(nd)
}

// appendNode splices an already-built node onto the tail. Used both by
// PushTail and by Fetch's zero-copy whole-node move.
func (q *ChunkQueue) appendNode(nd *node) {
	nd.next = nil
	if q.tail == nil {
		q.head = nd
	} else {
		q.tail.next = nd
	}
	q.tail = nd
	q.totalLen += nd.chunk.Len()
}

// releaseHeadNode drops the current head node: its slab returns to the
// SlabPool if pool-born, the node itself returns to the NodePool, and
// head_offset resets. The caller is responsible for total_len bookkeeping
// of the bytes within the node that it hasn't already accounted for.
func (q *ChunkQueue) releaseHeadNode() {
	old := q.head
	if old.chunk.fromPool {
		q.slabPool.Release(old.chunk.bytes)
	}
	q.head = old.next
	if q.head == nil {
		q.tail = nil
	}
	q.headOffset = 0
	q.nodePool.Release(old)
}

// consume advances the queue by k bytes across one or more head nodes,
// releasing each fully-consumed node to the pools. k must not exceed
// total_len; this is an internal invariant the exported API never
// violates, so a violation panics rather than returning an error.
func (q *ChunkQueue) consume(k int) {
	if k < 0 || k > q.totalLen {
		panic("sevent: ChunkQueue.consume: k out of range")
	}
	remaining := k
	for remaining > 0 {
		avail := q.head.chunk.Len() - q.headOffset
		if remaining < avail {
			q.headOffset += remaining
			q.totalLen -= remaining
			remaining = 0
		} else {
			q.totalLen -= avail
			remaining -= avail
			q.releaseHeadNode()
		}
	}
}

// PopHead removes and returns the head chunk, honoring head_offset: if
// nonzero, it allocates a fresh chunk holding only the unconsumed
// remainder, carries the head's attachment, and releases the original
// node. ok is false when the queue was already empty.
func (q *ChunkQueue) PopHead() (c Chunk, ok bool, err error) {
	if q.head == nil {
		return Chunk{}, false, nil
	}

	if q.headOffset == 0 {
		c = q.head.chunk
		q.totalLen -= c.Len()
		old := q.head
		q.head = old.next
		if q.head == nil {
			q.tail = nil
		}
		q.nodePool.Release(old)
		return c, true, nil
	}

	remainder := q.head.chunk.bytes[q.headOffset:]
	b, allocErr := allocBytes(len(remainder))
	if allocErr != nil {
		return Chunk{}, false, &AllocationFailureError{Cause: allocErr}
	}
	copy(b, remainder)
	c = newChunk(b, q.head.chunk.attachment)
	q.totalLen -= len(remainder)
	old := q.head
	if old.chunk.fromPool {
		q.slabPool.Release(old.chunk.bytes)
	}
	q.head = old.next
	if q.head == nil {
		q.tail = nil
	}
	q.headOffset = 0
	q.nodePool.Release(old)
	return c, true, nil
}

// Next returns the head segment in whatever granularity the queue
// currently stores it. Identical to PopHead: both hand off the head chunk
// whole when head_offset == 0, and copy the unconsumed remainder otherwise.
func (q *ChunkQueue) Next() (Chunk, bool, error) {
	return q.PopHead()
}

// Read produces a contiguous chunk of exactly k bytes when total_len >= k,
// else the empty short-read sentinel. k < 0 delegates to ReadAll; k == 0
// returns empty without touching the queue.
func (q *ChunkQueue) Read(k int) (Chunk, error) {
	if k < 0 {
		return q.ReadAll()
	}
	if k == 0 {
		return Chunk{}, nil
	}
	if k > q.totalLen {
		return Chunk{}, nil
	}

	if q.headOffset == 0 && q.head.chunk.Len() == k {
		c, _, err := q.PopHead()
		return c, err
	}

	b, allocErr := allocBytes(k)
	if allocErr != nil {
		return Chunk{}, &AllocationFailureError{Cause: allocErr}
	}

	var attachment any
	written := 0
	for written < k {
		avail := q.head.chunk.Len() - q.headOffset
		need := k - written
		take := need
		if take > avail {
			take = avail
		}
		src := q.head.chunk.bytes[q.headOffset : q.headOffset+take]
		copy(b[written:], src)
		attachment = q.head.chunk.attachment
		written += take
		q.consume(take)
	}

	return newChunk(b, attachment), nil
}

// ReadAll collapses the queue into a single chunk via Join, hands it off,
// and empties the queue. Returns empty without allocating when the queue
// is already empty.
func (q *ChunkQueue) ReadAll() (Chunk, error) {
	if q.totalLen == 0 {
		return Chunk{}, nil
	}
	if err := q.Join(); err != nil {
		return Chunk{}, err
	}
	c, _, err := q.PopHead()
	return c, err
}

// Join idempotently collapses the queue to a single node. A no-op when
// empty, or when already a single node with head_offset == 0. The
// collapsed node carries the attachment of the tail chunk at the moment
// of collapse: the tail attachment is authoritative, not the head's.
//
// On allocation failure, the queue is fully drained, every remaining
// node released back to the pools, before the error is returned, so the
// caller never observes a half-collapsed queue.
func (q *ChunkQueue) Join() error {
	if q.totalLen == 0 {
		return nil
	}
	if q.head == q.tail && q.headOffset == 0 {
		return nil
	}

	tailAttachment := q.tail.chunk.attachment
	total := q.totalLen

	b, allocErr := allocBytes(total)
	if allocErr != nil {
		q.drainToEmpty()
		return &AllocationFailureError{Cause: allocErr}
	}

	written := 0
	for n := q.head; n != nil; n = n.next {
		off := 0
		if n == q.head {
			off = q.headOffset
		}
		written += copy(b[written:], n.chunk.bytes[off:])
	}

	q.releaseAllNodes()

	nd := q.nodePool.Acquire()
	nd.chunk = newChunk(b, tailAttachment)
	nd.next = nil
	q.head = nd
	q.tail = nd
	q.headOffset = 0
	q.totalLen = total
	return nil
}

// releaseAllNodes walks the chain releasing every node's slab and cell
// back to the pools, without touching total_len/head_offset; callers set
// those afterward.
func (q *ChunkQueue) releaseAllNodes() {
	n := q.head
	for n != nil {
		next := n.next
		if n.chunk.fromPool {
			q.slabPool.Release(n.chunk.bytes)
		}
		q.nodePool.Release(n)
		n = next
	}
	q.head = nil
	q.tail = nil
}

// drainToEmpty releases every node and resets the queue to the empty
// state, used on Join's allocation-failure path.
func (q *ChunkQueue) drainToEmpty() {
	q.releaseAllNodes()
	q.headOffset = 0
	q.totalLen = 0
}

// Clear releases every node and slab and resets offsets. O(n).
func (q *ChunkQueue) Clear() {
	q.drainToEmpty()
}

// Extend steals other's chain onto self's tail. O(1) when other.head_offset
// == 0; otherwise the junction chunk is copied to drop the offset before
// splicing, since only a queue's own head node may carry an offset. After
// return, other is empty. A queue extended with itself is a no-op.
func (q *ChunkQueue) Extend(other *ChunkQueue) error {
	if q == other || other.head == nil {
		return nil
	}

	if other.headOffset != 0 {
		head := other.head
		remainder := head.chunk.bytes[other.headOffset:]
		b, allocErr := allocBytes(len(remainder))
		if allocErr != nil {
			return &AllocationFailureError{Cause: allocErr}
		}
		copy(b, remainder)
		if head.chunk.fromPool {
			other.slabPool.Release(head.chunk.bytes)
		}
		head.chunk = newChunk(b, head.chunk.attachment)
		other.headOffset = 0
	}

	if q.tail == nil {
		q.head = other.head
	} else {
		q.tail.next = other.head
	}
	q.tail = other.tail
	q.totalLen += other.totalLen

	other.head = nil
	other.tail = nil
	other.headOffset = 0
	other.totalLen = 0
	return nil
}

// Fetch moves up to k bytes from other's head into self's tail, preferring
// whole-node zero-copy splices and copying only the segment that crosses a
// boundary. k < 0 or k > other.Length() means "everything other has".
// Returns the number of bytes moved.
func (q *ChunkQueue) Fetch(other *ChunkQueue, k int) (int, error) {
	if k < 0 || k > other.totalLen {
		k = other.totalLen
	}

	moved := 0
	for moved < k && other.head != nil {
		head := other.head
		avail := head.chunk.Len() - other.headOffset
		need := k - moved

		if need >= avail {
			if other.headOffset == 0 {
				other.head = head.next
				if other.head == nil {
					other.tail = nil
				}
				other.totalLen -= avail
				q.appendNode(head)
				moved += avail
				continue
			}

			remainder := head.chunk.bytes[other.headOffset:]
			b, allocErr := allocBytes(len(remainder))
			if allocErr != nil {
				return moved, &AllocationFailureError{Cause: allocErr}
			}
			copy(b, remainder)
			newC := newChunk(b, head.chunk.attachment)

			if head.chunk.fromPool {
				other.slabPool.Release(head.chunk.bytes)
			}
			other.head = head.next
			if other.head == nil {
				other.tail = nil
			}
			other.totalLen -= avail
			other.headOffset = 0
			other.nodePool.Release(head)

			q.PushTail(newC)
			moved += newC.Len()
			continue
		}

		src := head.chunk.bytes[other.headOffset : other.headOffset+need]
		b, allocErr := allocBytes(need)
		if allocErr != nil {
			return moved, &AllocationFailureError{Cause: allocErr}
		}
		copy(b, src)
		q.PushTail(newChunk(b, head.chunk.attachment))
		other.headOffset += need
		other.totalLen -= need
		moved += need
	}

	return moved, nil
}

// CopyFrom copies up to k bytes from other's head into self's tail without
// modifying other. Unlike Fetch, every destination chunk is a fresh
// allocation (from_pool=false); only the attachment reference is shared,
// never the backing bytes, since other's node may later return its slab
// to the pool and have its storage reused.
func (q *ChunkQueue) CopyFrom(other *ChunkQueue, k int) (int, error) {
	if k < 0 || k > other.totalLen {
		k = other.totalLen
	}

	copied := 0
	n := other.head
	offset := other.headOffset
	for copied < k && n != nil {
		avail := n.chunk.Len() - offset
		need := k - copied
		take := need
		if take > avail {
			take = avail
		}

		b, allocErr := allocBytes(take)
		if allocErr != nil {
			return copied, &AllocationFailureError{Cause: allocErr}
		}
		copy(b, n.chunk.bytes[offset:offset+take])
		q.PushTail(newChunk(b, n.chunk.attachment))

		copied += take
		offset += take
		if offset >= n.chunk.Len() {
			n = n.next
			offset = 0
		}
	}

	return copied, nil
}

// ByteAt triggers Join, then returns the byte at index i along with the
// joined chunk's attachment (if any).
func (q *ChunkQueue) ByteAt(i int) (b byte, attachment any, err error) {
	if err := q.Join(); err != nil {
		return 0, nil, err
	}
	if i < 0 || i >= q.totalLen {
		return 0, nil, &IndexOutOfRangeError{Index: i, Length: q.totalLen}
	}
	return q.head.chunk.bytes[i], q.head.chunk.attachment, nil
}

// Slice triggers Join, then returns a fresh copy of bytes[max(0,i) ..
// clamp(j, i, total_len)].
func (q *ChunkQueue) Slice(i, j int) (Chunk, error) {
	if err := q.Join(); err != nil {
		return Chunk{}, err
	}
	if i < 0 {
		i = 0
	}
	if j < i {
		j = i
	}
	if j > q.totalLen {
		j = q.totalLen
	}
	if i > q.totalLen {
		i = q.totalLen
	}

	n := j - i
	if n == 0 {
		return Chunk{}, nil
	}
	b, allocErr := allocBytes(n)
	if allocErr != nil {
		return Chunk{}, &AllocationFailureError{Cause: allocErr}
	}
	copy(b, q.head.chunk.bytes[i:j])
	return newChunk(b, nil), nil
}

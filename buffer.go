package sevent

import "hash/fnv"

// Buffer is the user-facing byte stream: a thin façade over one
// [ChunkQueue]. Grounded on cbuffer.c's BufferObject, which likewise wraps
// a single queue head/tail/offset triple and exposes write/read/next/join/
// extend/fetch/copyfrom/clear plus head/last/length as its public surface.
type Buffer struct {
	queue  *ChunkQueue
	leased bool
}

// NewBuffer returns an empty Buffer drawing from the package-wide pools.
func NewBuffer() *Buffer {
	return &Buffer{queue: NewChunkQueue()}
}

// NewBufferWithPools returns an empty Buffer drawing from the given pools.
func NewBufferWithPools(slabPool *SlabPool, nodePool *NodePool) *Buffer {
	return &Buffer{queue: NewChunkQueueWithPools(slabPool, nodePool)}
}

// Write appends data as a new chunk, with an optional attachment. Mirrors
// Buffer_write's early return on an empty payload (a zero-length write is
// a no-op, not an error). The chunk is caller-owned (from_pool=false) and
// is never returned to the SlabPool.
func (b *Buffer) Write(data []byte, attachment any) {
	b.queue.PushTail(newChunk(data, attachment))
}

// Length returns the buffer's total byte length.
func (b *Buffer) Length() int { return b.queue.Length() }

// Empty reports whether the buffer holds zero bytes.
func (b *Buffer) Empty() bool { return b.queue.Empty() }

// Read produces exactly k bytes (k<0 reads everything, k==0 or a request
// exceeding the buffer's length returns the empty short-read sentinel).
// See ChunkQueue.Read for the exact semantics and tie-breaks.
func (b *Buffer) Read(k int) (Chunk, error) {
	return b.queue.Read(k)
}

// Next returns the head segment at whatever granularity it is currently
// stored in, copying only when the head chunk is partially consumed.
func (b *Buffer) Next() (Chunk, bool, error) {
	return b.queue.Next()
}

// Join collapses the buffer to a single contiguous chunk. Idempotent; a
// no-op when already collapsed or empty.
func (b *Buffer) Join() error {
	return b.queue.Join()
}

// Extend steals other's contents onto b's tail; other is empty afterward.
func (b *Buffer) Extend(other *Buffer) error {
	return b.queue.Extend(other.queue)
}

// Fetch moves up to k bytes (k<0 means everything) from other's head onto
// b's tail, returning the number of bytes moved.
func (b *Buffer) Fetch(other *Buffer, k int) (int, error) {
	return b.queue.Fetch(other.queue, k)
}

// CopyFrom copies up to k bytes from other's head onto b's tail without
// modifying other.
func (b *Buffer) CopyFrom(other *Buffer, k int) (int, error) {
	return b.queue.CopyFrom(other.queue, k)
}

// Clear releases every chunk and node back to the pools.
func (b *Buffer) Clear() {
	b.queue.Clear()
}

// Head returns the head chunk and its attachment without removing it.
// Returns ok=false on an empty buffer, matching Buffer_head's empty-bytes
// return rather than an error.
func (b *Buffer) Head() (c Chunk, ok bool) {
	if b.queue.head == nil {
		return Chunk{}, false
	}
	return b.queue.head.chunk, true
}

// HeadAttachment returns the head chunk's attachment, or nil if the buffer
// is empty or the head chunk carries none.
func (b *Buffer) HeadAttachment() any {
	if b.queue.head == nil {
		return nil
	}
	return b.queue.head.chunk.attachment
}

// Last returns the tail chunk and its attachment without removing it.
func (b *Buffer) Last() (c Chunk, ok bool) {
	if b.queue.tail == nil {
		return Chunk{}, false
	}
	return b.queue.tail.chunk, true
}

// LastAttachment returns the tail chunk's attachment, or nil.
func (b *Buffer) LastAttachment() any {
	if b.queue.tail == nil {
		return nil
	}
	return b.queue.tail.chunk.attachment
}

// ByteAt triggers Join and returns the byte at index i plus the joined
// chunk's attachment.
func (b *Buffer) ByteAt(i int) (byte, any, error) {
	return b.queue.ByteAt(i)
}

// Slice triggers Join and returns a fresh copy of bytes [i:j), clamped as
// described in ChunkQueue.Slice.
func (b *Buffer) Slice(i, j int) (Chunk, error) {
	return b.queue.Slice(i, j)
}

// AsView triggers Join and leases the single resulting chunk as a
// read-only [ContiguousView]. Fails with ErrViewAlreadyLeased if a
// previously-issued view from this Buffer has not yet been released.
func (b *Buffer) AsView() (*ContiguousView, error) {
	if b.leased {
		return nil, ErrViewAlreadyLeased
	}
	v, err := newContiguousView(b.queue, func() { b.leased = false })
	if err != nil {
		return nil, err
	}
	b.leased = true
	return v, nil
}

// BuffersView materializes a read-only, head-to-tail snapshot of every
// chunk currently in the buffer, for diagnostics. Mirrors
// Buffer_buffers_getter's `_buffers` property.
func (b *Buffer) BuffersView() []Chunk {
	out := make([]Chunk, 0, 16)
	for n := b.queue.head; n != nil; n = n.next {
		out = append(out, n.chunk)
	}
	return out
}

// Hash returns an FNV-1a hash of the buffer's contents, triggering Join.
// Mirrors Buffer_hash's `hash(buf)` support; an empty buffer hashes as the
// empty byte sequence.
func (b *Buffer) Hash() (uint64, error) {
	if b.queue.Length() == 0 {
		h := fnv.New64a()
		return h.Sum64(), nil
	}
	if err := b.queue.Join(); err != nil {
		return 0, err
	}
	h := fnv.New64a()
	h.Write(b.queue.head.chunk.bytes)
	return h.Sum64(), nil
}

// String renders the buffer's contents as a string, triggering Join.
// Mirrors Buffer_string's `str(buf)` behavior; an empty buffer stringifies
// as the empty string.
func (b *Buffer) String() string {
	if b.queue.Length() == 0 {
		return ""
	}
	if err := b.queue.Join(); err != nil {
		return ""
	}
	return string(b.queue.head.chunk.bytes)
}

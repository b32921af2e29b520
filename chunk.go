package sevent

// Chunk is an immutable byte slab plus an optional caller-defined
// attachment, the unit of storage in a [ChunkQueue]. A Chunk's bytes
// keep their length after creation, with one exception: SocketRecv's
// tail-reuse path receives into the spare capacity of a pool-born tail
// chunk still held by a queue and lengthens that queued chunk in place.
// Capacity is always >= length, and equals the configured slab size
// whenever fromPool is true.
//
// Chunk is a value type and is cheap to copy: copying a Chunk copies the
// slice header and the attachment reference, not the underlying bytes.
type Chunk struct {
	bytes      []byte
	attachment any
	fromPool   bool
}

// newChunk wraps caller-supplied bytes. The resulting Chunk is never
// returned to the SlabPool on release; its storage is released the way
// the caller's own reference is released (i.e. left to the GC).
func newChunk(b []byte, attachment any) Chunk {
	return Chunk{bytes: b, attachment: attachment}
}

// newPooledChunk wraps a slab obtained from the SlabPool. Its storage is
// eligible for return to the pool when the chunk is consumed.
func newPooledChunk(b []byte, attachment any) Chunk {
	return Chunk{bytes: b, attachment: attachment, fromPool: true}
}

// Bytes returns the chunk's byte slice. The caller must not mutate it:
// pool-born chunks reuse their backing array after release.
func (c Chunk) Bytes() []byte { return c.bytes }

// Len returns the number of bytes in the chunk.
func (c Chunk) Len() int { return len(c.bytes) }

// Attachment returns the chunk's caller-defined token, or nil if absent.
func (c Chunk) Attachment() any { return c.attachment }

// HasAttachment reports whether the chunk carries a non-nil attachment.
func (c Chunk) HasAttachment() bool { return c.attachment != nil }

// Pair returns (bytes, attachment) if an attachment is present, or just
// bytes otherwise, the same "attachment-bearing pair iff present"
// tie-break used throughout the Buffer API.
func (c Chunk) Pair() (data []byte, attachment any, ok bool) {
	if c.attachment != nil {
		return c.bytes, c.attachment, true
	}
	return c.bytes, nil, false
}

// empty reports whether the chunk carries zero bytes.
func (c Chunk) empty() bool { return len(c.bytes) == 0 }

package sevent

// ContiguousView is a read-only lease on a Buffer's contents after Join
// has collapsed it to one chunk. The view holds the sole chunk's byte
// slice. IndexOutOfRange is signaled for an empty buffer rather than an
// empty view, since there is no chunk to lease in the first place.
//
// A Buffer allows only one live ContiguousView at a time; AsView returns
// ErrViewAlreadyLeased while a previous view is unreleased rather than
// blocking or silently invalidating it. Only AsView checks the lease: the
// Buffer's other methods, including those that read, send or clear its
// contents, run normally while a view is live and do not keep the leased
// chunk in the buffer.
type ContiguousView struct {
	bytes    []byte
	released bool
	release  func()
}

// newContiguousView joins q and wraps its sole chunk. onRelease is called
// exactly once, when Release is first invoked.
func newContiguousView(q *ChunkQueue, onRelease func()) (*ContiguousView, error) {
	if q.Length() == 0 {
		return nil, &IndexOutOfRangeError{Message: "sevent: as_view on an empty buffer"}
	}
	if err := q.Join(); err != nil {
		return nil, err
	}
	return &ContiguousView{bytes: q.head.chunk.bytes, release: onRelease}, nil
}

// Bytes returns the leased byte slice. Panics if called after Release,
// since a released view handing back its slice would risk exposing pool
// memory already reused by a subsequent Acquire.
func (v *ContiguousView) Bytes() []byte {
	if v.released {
		panic(ErrViewReleased)
	}
	return v.bytes
}

// Len returns the length of the leased view.
func (v *ContiguousView) Len() int { return len(v.bytes) }

// Release ends the lease, allowing the owning Buffer to issue a new view.
// Idempotent.
func (v *ContiguousView) Release() {
	if v.released {
		return
	}
	v.released = true
	if v.release != nil {
		v.release()
	}
}

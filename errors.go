// Package sevent provides a chunked I/O buffer for staging bytes between
// non-blocking sockets and user code, with cause-chain-aware error types.
package sevent

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with [errors.Is]. Each concrete error type below
// wraps one of these as its Unwrap target so callers can match on kind
// without caring about the formatted message.
var (
	// ErrIndexOutOfRange is returned by element access past total_len, or
	// by a contiguous-view request on an empty buffer.
	ErrIndexOutOfRange = errors.New("sevent: index out of range")

	// ErrAllocationFailure is returned when a chunk or queue node cannot
	// be acquired (pool exhausted and the allocator also failed).
	ErrAllocationFailure = errors.New("sevent: allocation failure")

	// ErrRuntimeConflict is returned by SetRecvSize when the SlabPool is
	// non-empty.
	ErrRuntimeConflict = errors.New("sevent: runtime conflict")

	// ErrOverflow is returned when a port or flowinfo value is outside
	// its permitted range.
	ErrOverflow = errors.New("sevent: value out of range")

	// ErrAddressFormat is returned on inet_pton/inet_ntop failure, or an
	// address tuple of the wrong arity or field types.
	ErrAddressFormat = errors.New("sevent: address format error")

	// ErrViewAlreadyLeased is returned by Buffer.AsView when a
	// ContiguousView obtained from a prior call has not yet been released.
	ErrViewAlreadyLeased = errors.New("sevent: view already leased")

	// ErrViewReleased is the value ContiguousView.Bytes panics with when
	// called after Release.
	ErrViewReleased = errors.New("sevent: view already released")
)

// IndexOutOfRangeError reports an out-of-bounds element or view access.
type IndexOutOfRangeError struct {
	Message string
	Index   int
	Length  int
}

func (e *IndexOutOfRangeError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Length)
}

// Unwrap returns [ErrIndexOutOfRange] so callers can match with [errors.Is].
func (e *IndexOutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }

// AllocationFailureError reports that a chunk, slab, or queue node could
// not be acquired.
type AllocationFailureError struct {
	Cause   error
	Message string
}

func (e *AllocationFailureError) Error() string {
	if e.Message == "" {
		return "allocation failure"
	}
	return e.Message
}

// Unwrap returns the underlying cause, falling back to [ErrAllocationFailure].
func (e *AllocationFailureError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrAllocationFailure
}

// RuntimeConflictError reports an attempt to change a process-wide
// tunable while its precondition (e.g. an empty pool) does not hold.
type RuntimeConflictError struct {
	Message string
}

func (e *RuntimeConflictError) Error() string {
	if e.Message == "" {
		return "runtime conflict"
	}
	return e.Message
}

// Unwrap returns [ErrRuntimeConflict] so callers can match with [errors.Is].
func (e *RuntimeConflictError) Unwrap() error { return ErrRuntimeConflict }

// OSError wraps a failure from recv/send/recvfrom/sendto that was not
// EAGAIN/EWOULDBLOCK. On Windows, winsock errors are mapped into this
// same category by the platform-specific socket I/O files.
type OSError struct {
	Cause error
	Op    string // "recv", "send", "recvfrom", "sendto"
	FD    int
}

func (e *OSError) Error() string {
	return fmt.Sprintf("sevent: %s on fd %d: %v", e.Op, e.FD, e.Cause)
}

// Unwrap returns the underlying OS-level error (an [golang.org/x/sys/unix.Errno]
// or equivalent), so [errors.Is] against specific errno values still works
// through this wrapper.
func (e *OSError) Unwrap() error { return e.Cause }

// OverflowError reports a port or flowinfo value outside its permitted range.
type OverflowError struct {
	Field   string
	Value   int64
	Message string
}

func (e *OverflowError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s value %d out of range", e.Field, e.Value)
}

// Unwrap returns [ErrOverflow] so callers can match with [errors.Is].
func (e *OverflowError) Unwrap() error { return ErrOverflow }

// AddressFormatError reports an inet_pton/inet_ntop failure, or an address
// tuple of the wrong arity or field types.
type AddressFormatError struct {
	Cause   error
	Message string
}

func (e *AddressFormatError) Error() string {
	if e.Message == "" {
		return "address format error"
	}
	return e.Message
}

// Unwrap returns the underlying cause, falling back to [ErrAddressFormat].
func (e *AddressFormatError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrAddressFormat
}

// wrapf is a small helper mirroring the teacher's WrapError: it formats a
// message and keeps the cause chain intact for errors.Is/As.
func wrapf(cause error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), cause)
}

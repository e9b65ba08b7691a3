package vm

import (
	"errors"
	"fmt"
)

// Caller-input errors. They are reported immediately and never retried.
var (
	ErrAllocationFailed       = errors.New("allocation failed")
	ErrSegmentExists          = errors.New("segment already exists")
	ErrSegmentNotFound        = errors.New("segment not found")
	ErrOffsetOutOfBounds      = errors.New("offset out of bounds")
	ErrUnknownTranslationMode = errors.New("unknown translation mode")
)

// Internal invariant violations. They abort the operation and must be
// propagated, since continuing would corrupt the frame bookkeeping.
var (
	ErrReplacerExhausted        = errors.New("replacer has no frame to evict")
	ErrFrameLookupInconsistency = errors.New("frame not found after allocation")
)

// A TranslationError carries the request that failed to translate.
type TranslationError struct {
	PID     PID
	Segment SegmentID
	Offset  uint64
	Err     error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("pid %d segment %d offset %d: %v",
		e.PID, e.Segment, e.Offset, e.Err)
}

// Unwrap returns the underlying taxonomy error.
func (e *TranslationError) Unwrap() error {
	return e.Err
}

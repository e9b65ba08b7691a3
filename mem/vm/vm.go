// Package vm provides the shared vocabulary of the virtual memory models:
// identifiers, access types, translation modes, page table entries, the
// error taxonomy, and the events the models emit.
package vm

import (
	"fmt"
	"strings"
)

// PID stands for Process ID.
type PID uint32

// SegmentID identifies a segment within a process.
type SegmentID uint32

// GlobalPageID is a page identifier that is unique across all the segments of
// all the processes. IDs start at 1; 0 means no page.
type GlobalPageID uint64

// NoPage is the zero GlobalPageID.
const NoPage GlobalPageID = 0

// FrameID is the index of a physical frame.
type FrameID uint32

// AccessType tells if an access reads or writes.
type AccessType string

// Access types as they appear in traces.
const (
	AccessRead  AccessType = "R"
	AccessWrite AccessType = "W"
)

// IsWrite returns true for write accesses.
func (a AccessType) IsWrite() bool {
	return a == AccessWrite
}

// ParseAccessType accepts R or W in either case.
func ParseAccessType(s string) (AccessType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "R":
		return AccessRead, nil
	case "W":
		return AccessWrite, nil
	}

	return "", fmt.Errorf("unknown access type %q", s)
}

// TranslationMode selects how a segment offset is translated.
type TranslationMode string

// Translation modes.
const (
	// ModeFlat maps base + offset straight to a physical address.
	ModeFlat TranslationMode = "flat"

	// ModePaged maps the offset to a global page and a page offset.
	ModePaged TranslationMode = "paged"
)

// ParseTranslationMode accepts the canonical names and the aliases used by
// older traces.
func ParseTranslationMode(s string) (TranslationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat", "pure-seg":
		return ModeFlat, nil
	case "paged", "segmented-paging":
		return ModePaged, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownTranslationMode, s)
}

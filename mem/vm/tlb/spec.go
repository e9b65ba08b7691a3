package tlb

import "fmt"

// Spec describes a TLB.
type Spec struct {
	NumEntries int
}

func defaults() Spec {
	return Spec{NumEntries: 8}
}

func (s Spec) validate() error {
	if s.NumEntries <= 0 {
		return fmt.Errorf("number of entries must be > 0, got %d",
			s.NumEntries)
	}

	return nil
}

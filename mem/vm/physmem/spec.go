package physmem

import (
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

// Spec describes the physical memory.
type Spec struct {
	FramesCount int
	Policy      replacement.Policy
}

func defaults() Spec {
	return Spec{
		FramesCount: 4,
		Policy:      replacement.FIFO,
	}
}

func (s Spec) validate() error {
	if s.FramesCount <= 0 {
		return fmt.Errorf("frames count must be > 0, got %d", s.FramesCount)
	}

	if _, err := replacement.ParsePolicy(string(s.Policy)); err != nil {
		return err
	}

	return nil
}

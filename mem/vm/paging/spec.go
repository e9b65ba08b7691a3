package paging

import (
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

// Spec describes a paging engine.
type Spec struct {
	FramesCount int
	PageSize    uint64
	Policy      replacement.Policy
}

func defaults() Spec {
	return Spec{
		FramesCount: 4,
		PageSize:    4096,
		Policy:      replacement.FIFO,
	}
}

func (s Spec) validate() error {
	if s.FramesCount <= 0 {
		return fmt.Errorf("frames count must be > 0, got %d", s.FramesCount)
	}

	if s.PageSize == 0 {
		return fmt.Errorf("page size must be > 0")
	}

	if _, err := replacement.ParsePolicy(string(s.Policy)); err != nil {
		return err
	}

	return nil
}

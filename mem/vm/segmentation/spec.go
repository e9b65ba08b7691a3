package segmentation

import (
	"fmt"

	"github.com/sarchlab/vmsim/mem/allocator"
)

// Spec describes a segmentation engine.
type Spec struct {
	AddressSpaceSize uint64
	PageSize         uint64
	Strategy         allocator.Strategy
}

func defaults() Spec {
	return Spec{
		AddressSpaceSize: 1 << 20,
		PageSize:         4096,
		Strategy:         allocator.FirstFit,
	}
}

func (s Spec) validate() error {
	if s.PageSize == 0 || s.PageSize&(s.PageSize-1) != 0 {
		return fmt.Errorf("page size must be a power of 2, got %d",
			s.PageSize)
	}

	if s.AddressSpaceSize < s.PageSize {
		return fmt.Errorf("address space of %d bytes is smaller than a page",
			s.AddressSpaceSize)
	}

	if _, err := allocator.ParseStrategy(string(s.Strategy)); err != nil {
		return err
	}

	return nil
}

package demand

import (
	"fmt"
	"time"
)

// Spec describes a demand controller.
type Spec struct {
	// DiskLatency is the simulated time to bring a page in. Zero loads
	// synchronously.
	DiskLatency time.Duration
}

func defaults() Spec {
	return Spec{}
}

func (s Spec) validate() error {
	if s.DiskLatency < 0 {
		return fmt.Errorf("disk latency must not be negative, got %s",
			s.DiskLatency)
	}

	return nil
}

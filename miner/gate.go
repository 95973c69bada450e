package miner

import (
	"context"

	"github.com/remeh/sizedwaitgroup"
)

// DefaultConcurrency is the default number of workers allowed inside the
// proof-of-work call at once. Solving is the one operation the upstream
// services bottleneck on, so it is batched while cooldown waiting stays
// fully parallel.
const DefaultConcurrency = 3

// ComputeGate is the bounded admission gate around proof-of-work solving,
// shared by every worker in the process.
type ComputeGate struct {
	swg      sizedwaitgroup.SizedWaitGroup
	capacity int
}

// NewComputeGate creates a gate of the given capacity; non-positive values
// fall back to DefaultConcurrency.
func NewComputeGate(capacity int) *ComputeGate {
	if capacity <= 0 {
		capacity = DefaultConcurrency
	}
	return &ComputeGate{
		swg:      sizedwaitgroup.New(capacity),
		capacity: capacity,
	}
}

// Acquire blocks until a slot frees or the context is cancelled. This is
// the scheduler's only deliberate backpressure point and may block for an
// arbitrarily long time.
func (g *ComputeGate) Acquire(ctx context.Context) error {
	return g.swg.AddWithContext(ctx)
}

// Release frees the slot taken by Acquire.
func (g *ComputeGate) Release() {
	g.swg.Done()
}

// Capacity returns the gate's fixed capacity.
func (g *ComputeGate) Capacity() int {
	return g.capacity
}

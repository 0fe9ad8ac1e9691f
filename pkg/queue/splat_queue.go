package queue

import "github.com/df07/go-vcm-tracer/pkg/core"

// Splat is a contribution destined for a pixel other than the one the
// producing path belongs to: light tracing and connect-to-camera both
// discover their target pixel only after projecting a light vertex through
// the lens, so they cannot write directly into a tile-owned image region.
type Splat struct {
	X, Y  int
	Color core.Vec3
}

// SplatQueue is the lock-free append buffer light-path processing pushes
// into; the scheduler drains it into the image once per iteration, after
// every worker has finished, so no pixel is ever written by two goroutines
// at once. Grounded directly on the teacher's splat queue (same
// atomic-reserve-then-write-or-grow pattern), generalized onto AtomicQueue.
type SplatQueue struct {
	*AtomicQueue[Splat]
}

// NewSplatQueue creates a splat queue with a reasonable starting capacity.
func NewSplatQueue() *SplatQueue {
	return &SplatQueue{AtomicQueue: NewAtomicQueue[Splat](1 << 16)}
}

// Add records a splat contribution at pixel (x, y).
func (sq *SplatQueue) Add(x, y int, color core.Vec3) {
	sq.Push(Splat{X: x, Y: y, Color: color})
}

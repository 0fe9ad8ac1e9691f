package queue

import (
	"github.com/df07/go-vcm-tracer/pkg/core"
	"github.com/df07/go-vcm-tracer/pkg/mis"
)

// PathRay is one in-flight path segment queued for BVH traversal: either a
// camera subpath ray or a light subpath ray, distinguished by LightPath.
type PathRay struct {
	Ray        core.Ray
	TMax       float64   // occlusion test bound; math.Inf(1) for continuation rays, the connection distance for shadow rays
	Throughput core.Vec3 // accumulated path throughput up to this ray's origin
	MIS        mis.State
	PathID     int // which camera pixel (or light subpath) this ray belongs to
	PixelX     int
	PixelY     int
	Depth      int
	Specular   bool  // the bounce that produced this ray was a delta-BSDF sample
	LightPath  bool  // true for light subpath rays, false for camera subpath rays
	RNGSeed    int64

	// ContinueProb is the Russian-roulette acceptance probability applied at
	// the bounce that produced this ray (1 if that bounce was below
	// RRMinBounces and forced to continue). MIS weight computations that
	// convert a vertex's forward/reverse BSDF pdf into the probability
	// actually governing path continuation must fold this in.
	ContinueProb float64
}

// RayQueue is the bulk-synchronous ray batch the scheduler fills with one
// phase's worth of rays, hands to BVH traversal, then drains to spawn the
// next phase's secondary rays.
type RayQueue struct {
	*AtomicQueue[PathRay]
}

// NewRayQueue creates a ray queue pre-sized for capacity rays.
func NewRayQueue(capacity int) *RayQueue {
	return &RayQueue{AtomicQueue: NewAtomicQueue[PathRay](capacity)}
}

package queue

import (
	"github.com/df07/go-vcm-tracer/pkg/bsdf"
	"github.com/df07/go-vcm-tracer/pkg/core"
	"github.com/df07/go-vcm-tracer/pkg/mis"
)

// LightVertex is a light subpath vertex cached for the deferred pass:
// after all light subpaths finish tracing, every camera-subpath vertex
// attempts vertex connection and merging against the vertices cached here.
type LightVertex struct {
	Point      core.Vec3
	Normal     core.Vec3
	GeomNormal core.Vec3
	Wo         core.Vec3 // direction back toward the previous light-path vertex
	Throughput core.Vec3 // accumulated light-path throughput up to this vertex
	BSDF       bsdf.BSDF
	MIS        mis.State
	PathID     int // which light subpath this vertex belongs to
	Depth      int

	// ContinueProb is the Russian-roulette acceptance probability applied at
	// the bounce that produced this vertex (1 if that bounce was below
	// RRMinBounces). Carried forward from the PathRay that reached this
	// vertex so connection and merging can fold it into their MIS pdfs.
	ContinueProb float64
}

// VertexCache holds every light-path vertex produced in one iteration. It
// is append-only during light-path tracing and read-only during the
// camera-path connect/merge pass, then Reset for the next iteration.
type VertexCache struct {
	*AtomicQueue[LightVertex]
}

// NewVertexCache creates a vertex cache pre-sized for capacity vertices.
func NewVertexCache(capacity int) *VertexCache {
	return &VertexCache{AtomicQueue: NewAtomicQueue[LightVertex](capacity)}
}

// Package light implements the renderer's emitters: area lights backed by
// scene geometry, point lights, and an infinite environment light, plus the
// light-picking sampler the VCM integrator uses to start light subpaths.
package light

import "github.com/df07/go-vcm-tracer/pkg/core"

// Type classifies a light for the techniques that need to branch on it
// (e.g. NEE never needs to trace a shadow ray past a delta light's sampled
// point, because the "point" is exact).
type Type int

const (
	TypeArea Type = iota
	TypePoint
	TypeInfinite
)

// DirectSample is the result of sampling a light for next-event estimation
// from a shading point: a direction to test for occlusion, paired with the
// unoccluded radiance and the solid-angle PDF of having chosen it.
type DirectSample struct {
	Point    core.Vec3 // point sampled on the light (unused/ignored for delta lights)
	Normal   core.Vec3 // light's surface normal at Point, for area lights
	Wi       core.Vec3 // unit direction from the shading point toward the light
	Distance float64   // distance to Point (math.Inf for infinite lights)
	Radiance core.Vec3 // emitted radiance along -Wi
	PDF      float64   // solid-angle PDF of Wi at the shading point; 0 for delta lights
}

// EmissionSample is the result of sampling a light to start a light
// subpath: an origin+direction ray to trace, plus the area and directional
// PDFs needed to compute dVCM/dVC at the first light vertex.
type EmissionSample struct {
	Ray          core.Ray
	Normal       core.Vec3 // emission-surface normal at Ray.Origin
	Radiance     core.Vec3
	PDFArea      float64 // PDF of Ray.Origin on the light's surface (or 1 for point/infinite)
	PDFDirection float64 // PDF of Ray.Direction given Ray.Origin
}

// Light is any emitter the integrator can sample for NEE, connect-to-camera,
// and light-subpath generation.
type Light interface {
	Type() Type

	// IsDelta reports whether this light occupies a single point/direction
	// (point lights): such lights can never be hit by a camera path's
	// direction sampling or by vertex merging, only by NEE/connection.
	IsDelta() bool

	// IsFinite reports whether this light has finite extent. Infinite
	// (environment) lights need the scene's world radius to convert an
	// emission-direction PDF into an equivalent area PDF at the light
	// "surface" (a disk at the world bounding sphere).
	IsFinite() bool

	// SampleDirect samples a point/direction on the light visible from
	// point, for next-event estimation.
	SampleDirect(point core.Vec3, sample core.Vec2) DirectSample

	// PDFDirect returns the solid-angle PDF that SampleDirect would have
	// produced direction wi from point. Needed by the balance heuristic to
	// re-derive "what would NEE have sampled here" at a vertex reached by
	// another technique (e.g. a BSDF-sampled ray that happens to hit the
	// light).
	PDFDirect(point, wi core.Vec3) float64

	// SampleEmission samples a ray leaving the light, for light subpath
	// generation.
	SampleEmission(sample1, sample2 core.Vec2) EmissionSample

	// PDFEmission returns the area and directional PDFs of SampleEmission
	// having produced this ray, needed when a camera-traced ray directly
	// hits the light (dVCM/dVC at that hit depend on both).
	PDFEmission(ray core.Ray, normal core.Vec3) (pdfArea, pdfDirection float64)

	// Emit returns the radiance leaving point (with the given surface
	// normal) toward direction. Used when a camera path's hit is on this
	// light's surface.
	Emit(point, normal, direction core.Vec3) core.Vec3
}

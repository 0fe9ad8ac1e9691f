package geometry

import (
	"math"

	"github.com/df07/go-vcm-tracer/pkg/bsdf"
	"github.com/df07/go-vcm-tracer/pkg/core"
)

// Quad represents a rectangular surface defined by a corner and two edge vectors
type Quad struct {
	Corner core.Vec3
	U      core.Vec3
	V      core.Vec3
	Normal core.Vec3
	BSDF   bsdf.BSDF
	Light  AreaLight // non-nil if this quad emits
	D      float64
	W      core.Vec3
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3, material bsdf.BSDF) *Quad {
	normal := u.Cross(v).Normalize()
	d := normal.Dot(corner)
	cross := u.Cross(v)
	w := normal.Multiply(1.0 / normal.Dot(cross))

	return &Quad{
		Corner: corner,
		U:      u,
		V:      v,
		Normal: normal,
		BSDF:   material,
		D:      d,
		W:      w,
	}
}

// Area returns the quad's surface area.
func (q *Quad) Area() float64 {
	return q.U.Cross(q.V).Length()
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, tMin, tMax float64) (*SurfaceInteraction, bool) {
	denominator := ray.Direction.Dot(q.Normal)
	if math.Abs(denominator) < 1e-8 {
		return nil, false
	}

	t := (q.D - ray.Origin.Dot(q.Normal)) / denominator
	if t < tMin || t > tMax {
		return nil, false
	}

	hitPoint := ray.At(t)
	hitVector := hitPoint.Subtract(q.Corner)

	alpha := q.W.Dot(hitVector.Cross(q.V))
	beta := q.W.Dot(q.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return nil, false
	}

	si := &SurfaceInteraction{
		T:     t,
		Point: hitPoint,
		UV:    core.NewVec2(alpha, beta),
		BSDF:  q.BSDF,
		Light: q.Light,
	}
	si.SetFaceNormal(ray, q.Normal)
	return si, true
}

// BoundingBox returns the axis-aligned bounding box for this quad, expanded
// slightly along its normal so a degenerate (zero-thickness) AABB still
// intersects correctly with slab tests.
func (q *Quad) BoundingBox() core.AABB {
	p0 := q.Corner
	p1 := q.Corner.Add(q.U)
	p2 := q.Corner.Add(q.V)
	p3 := q.Corner.Add(q.U).Add(q.V)
	return core.NewAABBFromPoints(p0, p1, p2, p3).Expand(1e-4)
}

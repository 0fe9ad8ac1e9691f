package geometry

import (
	"github.com/df07/go-vcm-tracer/pkg/bsdf"
	"github.com/df07/go-vcm-tracer/pkg/core"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3 // The three vertices
	BSDF       bsdf.BSDF // Surface scattering model
	Light      AreaLight // non-nil if this triangle emits
	normal     core.Vec3 // Cached normal vector
	bbox       core.AABB // Cached bounding box
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3, material bsdf.BSDF) *Triangle {
	t := &Triangle{V0: v0, V1: v1, V2: v2, BSDF: material}
	t.computeNormal()
	t.computeBoundingBox()
	return t
}

// NewTriangleWithNormal creates a new triangle from three vertices with a custom normal
func NewTriangleWithNormal(v0, v1, v2 core.Vec3, normal core.Vec3, material bsdf.BSDF) *Triangle {
	t := &Triangle{V0: v0, V1: v1, V2: v2, BSDF: material, normal: normal.Normalize()}
	t.computeBoundingBox()
	return t
}

func (t *Triangle) computeNormal() {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)
	t.normal = edge1.Cross(edge2).Normalize()
}

func (t *Triangle) computeBoundingBox() {
	t.bbox = core.NewAABBFromPoints(t.V0, t.V1, t.V2)
}

// Hit tests if a ray intersects with the triangle using the Moller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (*SurfaceInteraction, bool) {
	const epsilon = 1e-8

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return nil, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return nil, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return nil, false
	}

	tParam := f * edge2.Dot(q)
	if tParam < tMin || tParam > tMax {
		return nil, false
	}

	si := &SurfaceInteraction{
		T:     tParam,
		Point: ray.At(tParam),
		UV:    core.NewVec2(u, v),
		BSDF:  t.BSDF,
		Light: t.Light,
	}
	si.SetFaceNormal(ray, t.normal)
	return si, true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// GetNormal returns the triangle's geometric normal vector
func (t *Triangle) GetNormal() core.Vec3 {
	return t.normal
}

// Area returns the triangle's surface area, used by area lights to convert
// between area and solid-angle sampling densities.
func (t *Triangle) Area() float64 {
	return 0.5 * t.V1.Subtract(t.V0).Cross(t.V2.Subtract(t.V0)).Length()
}

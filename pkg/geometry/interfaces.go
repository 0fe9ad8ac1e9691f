package geometry

import (
	"github.com/df07/go-vcm-tracer/pkg/bsdf"
	"github.com/df07/go-vcm-tracer/pkg/core"
)

// AreaLight is the minimal view a Shape needs of the light that emits from
// it, so that a camera path hitting an emissive surface can add its
// contribution without geometry importing pkg/light. Any *light.AreaLight
// satisfies this interface structurally.
type AreaLight interface {
	Emit(point, normal, direction core.Vec3) core.Vec3
}

// SurfaceInteraction records everything a path vertex needs once a ray hits
// a shape: the hit point and both normals (shading vs. geometric, since
// they can diverge with interpolated mesh normals or bump mapping), the
// surface's BSDF, and, if this shape is emissive, the light it belongs to.
type SurfaceInteraction struct {
	T          float64
	Point      core.Vec3
	Normal     core.Vec3 // shading normal, always oriented against the ray
	GeomNormal core.Vec3 // geometric (face) normal, always oriented against the ray
	UV         core.Vec2
	BSDF       bsdf.BSDF
	Light      AreaLight // nil unless this surface emits
}

// SetFaceNormal orients normal and geomNormal against the incoming ray. It
// does not record which face the ray hit.
func (si *SurfaceInteraction) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	if ray.Direction.Dot(outwardNormal) < 0 {
		si.Normal = outwardNormal
		si.GeomNormal = outwardNormal
	} else {
		si.Normal = outwardNormal.Negate()
		si.GeomNormal = outwardNormal.Negate()
	}
}

// Shape is anything a ray can be tested against: triangles, quads, spheres,
// meshes, and the BVH that accelerates queries over all of them.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*SurfaceInteraction, bool)
	BoundingBox() core.AABB
}

// Preprocessor is implemented by shapes/lights that need the finite scene
// bounds once the whole scene is assembled (e.g. an infinite environment
// light needs a world radius to convert area PDFs to solid angle).
type Preprocessor interface {
	Preprocess(worldCenter core.Vec3, worldRadius float64) error
}

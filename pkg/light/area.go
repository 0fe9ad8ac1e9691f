package light

import (
	"math"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

// AreaLight is an emitter backed by a planar quad. Radiance is emitted
// uniformly (Lambertian emission) from one side, or both if TwoSided.
type AreaLight struct {
	Corner, U, V core.Vec3
	Normal       core.Vec3
	Radiance     core.Vec3
	TwoSided     bool
	area         float64
}

// NewAreaLight creates a quad-shaped area light spanning corner, corner+u,
// corner+v and corner+u+v, emitting radiance uniformly from its front face
// (or both faces if twoSided).
func NewAreaLight(corner, u, v, radiance core.Vec3, twoSided bool) *AreaLight {
	return &AreaLight{
		Corner:   corner,
		U:        u,
		V:        v,
		Normal:   u.Cross(v).Normalize(),
		Radiance: radiance,
		TwoSided: twoSided,
		area:     u.Cross(v).Length(),
	}
}

func (a *AreaLight) Type() Type     { return TypeArea }
func (a *AreaLight) IsDelta() bool  { return false }
func (a *AreaLight) IsFinite() bool { return true }

func (a *AreaLight) frontFacing(direction core.Vec3) bool {
	return direction.Dot(a.Normal) > 0 || a.TwoSided
}

// Emit returns the emitted radiance toward direction from a point on the
// light. The normal argument is ignored: the light's own Normal decides
// which side emits.
func (a *AreaLight) Emit(point, normal, direction core.Vec3) core.Vec3 {
	if !a.frontFacing(direction) {
		return core.Vec3{}
	}
	return a.Radiance
}

func (a *AreaLight) SampleDirect(point core.Vec3, sample core.Vec2) DirectSample {
	lightPoint := a.Corner.Add(a.U.Multiply(sample.X)).Add(a.V.Multiply(sample.Y))
	toLight := lightPoint.Subtract(point)
	distSq := toLight.LengthSquared()
	dist := math.Sqrt(distSq)
	wi := toLight.Multiply(1.0 / dist)

	cosLight := -wi.Dot(a.Normal)
	if !a.TwoSided && cosLight <= 0 {
		return DirectSample{}
	}
	cosLight = math.Abs(cosLight)
	if cosLight < 1e-9 || a.area <= 0 {
		return DirectSample{}
	}

	pdf := distSq / (cosLight * a.area)
	return DirectSample{
		Point:    lightPoint,
		Normal:   a.Normal,
		Wi:       wi,
		Distance: dist,
		Radiance: a.Radiance,
		PDF:      pdf,
	}
}

func (a *AreaLight) PDFDirect(point, wi core.Vec3) float64 {
	// Intersect the ray (point, wi) with the quad's plane to recover the
	// point SampleDirect would have produced, then apply the same
	// area-to-solid-angle Jacobian.
	denom := wi.Dot(a.Normal)
	if math.Abs(denom) < 1e-9 {
		return 0
	}
	d := a.Normal.Dot(a.Corner)
	t := (d - point.Dot(a.Normal)) / denom
	if t <= 0 {
		return 0
	}
	hit := point.Add(wi.Multiply(t))
	hitVec := hit.Subtract(a.Corner)
	w := a.Normal.Multiply(1.0 / a.Normal.Dot(a.U.Cross(a.V)))
	alpha := w.Dot(hitVec.Cross(a.V))
	beta := w.Dot(a.U.Cross(hitVec))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return 0
	}

	cosLight := math.Abs(wi.Dot(a.Normal))
	if cosLight < 1e-9 || a.area <= 0 {
		return 0
	}
	distSq := t * t
	return distSq / (cosLight * a.area)
}

func (a *AreaLight) SampleEmission(sample1, sample2 core.Vec2) EmissionSample {
	origin := a.Corner.Add(a.U.Multiply(sample1.X)).Add(a.V.Multiply(sample1.Y))

	n := a.Normal
	if a.TwoSided && sample2.X < 0.5 {
		n = n.Negate()
		sample2 = core.NewVec2(sample2.X*2, sample2.Y)
	} else if a.TwoSided {
		sample2 = core.NewVec2((sample2.X-0.5)*2, sample2.Y)
	}

	dir := core.SampleCosineHemisphere(n, sample2)
	pdfDir := math.Abs(dir.Dot(n)) / math.Pi
	if a.TwoSided {
		pdfDir *= 0.5
	}

	pdfArea := 1.0
	if a.area > 0 {
		pdfArea = 1.0 / a.area
	}

	return EmissionSample{
		Ray:          core.NewRay(origin, dir),
		Normal:       n,
		Radiance:     a.Radiance,
		PDFArea:      pdfArea,
		PDFDirection: pdfDir,
	}
}

func (a *AreaLight) PDFEmission(ray core.Ray, normal core.Vec3) (pdfArea, pdfDirection float64) {
	pdfArea = 1.0
	if a.area > 0 {
		pdfArea = 1.0 / a.area
	}
	pdfDirection = math.Abs(ray.Direction.Dot(normal)) / math.Pi
	if a.TwoSided {
		pdfDirection *= 0.5
	}
	return pdfArea, pdfDirection
}

package light

import (
	"math"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

// PointLight is a delta light: an idealized zero-size emitter with
// isotropic intensity. It can only be reached by NEE or connection (its
// PDF functions and Eval from a camera hit are meaningless since no ray can
// ever hit a single point).
type PointLight struct {
	Position  core.Vec3
	Intensity core.Vec3 // radiant intensity (W/sr), not radiance
}

// NewPointLight creates an isotropic point light.
func NewPointLight(position, intensity core.Vec3) *PointLight {
	return &PointLight{Position: position, Intensity: intensity}
}

func (p *PointLight) Type() Type     { return TypePoint }
func (p *PointLight) IsDelta() bool  { return true }
func (p *PointLight) IsFinite() bool { return true }

func (p *PointLight) Emit(point, normal, direction core.Vec3) core.Vec3 {
	return core.Vec3{}
}

func (p *PointLight) SampleDirect(point core.Vec3, sample core.Vec2) DirectSample {
	toLight := p.Position.Subtract(point)
	distSq := toLight.LengthSquared()
	dist := math.Sqrt(distSq)
	wi := toLight.Multiply(1.0 / dist)
	return DirectSample{
		Point:    p.Position,
		Wi:       wi,
		Distance: dist,
		Radiance: p.Intensity.Multiply(1.0 / distSq),
		PDF:      1.0, // delta distribution: treated as certain once selected
	}
}

// PDFDirect is 0: a delta light's single point has zero probability of
// being re-derived from an arbitrary direction by any other technique, so
// MIS never needs to weight against it.
func (p *PointLight) PDFDirect(point, wi core.Vec3) float64 { return 0 }

func (p *PointLight) SampleEmission(sample1, sample2 core.Vec2) EmissionSample {
	dir := core.SampleOnUnitSphere(sample1)
	return EmissionSample{
		Ray:          core.NewRay(p.Position, dir),
		Radiance:     p.Intensity,
		PDFArea:      1.0,
		PDFDirection: 1.0 / (4 * math.Pi),
	}
}

func (p *PointLight) PDFEmission(ray core.Ray, normal core.Vec3) (pdfArea, pdfDirection float64) {
	return 1.0, 1.0 / (4 * math.Pi)
}

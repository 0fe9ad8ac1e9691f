package light

import (
	"math"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

// InfiniteLight is a uniform environment light: constant radiance from
// every direction, used for ambient/sky illumination. It needs the finite
// scene's bounding sphere (set via Preprocess) to convert its emission
// direction PDF into an equivalent area PDF on a disk at the world bound,
// matching how a light subpath leaving it is parameterized.
type InfiniteLight struct {
	Radiance           core.Vec3
	worldCenter        core.Vec3
	worldRadius        float64
}

// NewInfiniteLight creates a uniform environment light.
func NewInfiniteLight(radiance core.Vec3) *InfiniteLight {
	return &InfiniteLight{Radiance: radiance, worldRadius: 1}
}

// Preprocess implements geometry.Preprocessor.
func (i *InfiniteLight) Preprocess(worldCenter core.Vec3, worldRadius float64) error {
	i.worldCenter = worldCenter
	i.worldRadius = worldRadius
	return nil
}

func (i *InfiniteLight) Type() Type     { return TypeInfinite }
func (i *InfiniteLight) IsDelta() bool  { return false }
func (i *InfiniteLight) IsFinite() bool { return false }

func (i *InfiniteLight) Emit(point, normal, direction core.Vec3) core.Vec3 {
	return i.Radiance
}

func (i *InfiniteLight) SampleDirect(point core.Vec3, sample core.Vec2) DirectSample {
	wi := core.SampleOnUnitSphere(sample)
	return DirectSample{
		Wi:       wi,
		Distance: math.Inf(1),
		Radiance: i.Radiance,
		PDF:      1.0 / (4 * math.Pi),
	}
}

func (i *InfiniteLight) PDFDirect(point, wi core.Vec3) float64 {
	return 1.0 / (4 * math.Pi)
}

func (i *InfiniteLight) SampleEmission(sample1, sample2 core.Vec2) EmissionSample {
	dir := core.SampleOnUnitSphere(sample1)
	diskPoint := core.SamplePointInUnitDisk(sample2)

	var tangent core.Vec3
	if math.Abs(dir.X) > 0.1 {
		tangent = core.NewVec3(0, 1, 0)
	} else {
		tangent = core.NewVec3(1, 0, 0)
	}
	tangent = tangent.Cross(dir).Normalize()
	bitangent := dir.Cross(tangent)

	origin := i.worldCenter.
		Add(dir.Multiply(-i.worldRadius)).
		Add(tangent.Multiply(diskPoint.X * i.worldRadius)).
		Add(bitangent.Multiply(diskPoint.Y * i.worldRadius))

	pdfArea := 1.0
	if i.worldRadius > 0 {
		pdfArea = 1.0 / (math.Pi * i.worldRadius * i.worldRadius)
	}

	return EmissionSample{
		Ray:          core.NewRay(origin, dir),
		Normal:       dir.Negate(),
		Radiance:     i.Radiance,
		PDFArea:      pdfArea,
		PDFDirection: 1.0 / (4 * math.Pi),
	}
}

func (i *InfiniteLight) PDFEmission(ray core.Ray, normal core.Vec3) (pdfArea, pdfDirection float64) {
	pdfArea = 1.0
	if i.worldRadius > 0 {
		pdfArea = 1.0 / (math.Pi * i.worldRadius * i.worldRadius)
	}
	return pdfArea, 1.0 / (4 * math.Pi)
}

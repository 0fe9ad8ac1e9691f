package bsdf

import (
	"math"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

// Phong is a glossy specular lobe built around the reflection direction,
// importance-sampled with power-cosine (Lafortune-Willems) sampling.
type Phong struct {
	Specular  core.Vec3
	Shininess float64
}

// NewPhong creates a Phong glossy BSDF.
func NewPhong(specular core.Vec3, shininess float64) *Phong {
	return &Phong{Specular: specular, Shininess: shininess}
}

func (p *Phong) IsSpecular() bool { return false }

func (p *Phong) Eval(wo, wi, shadingNormal, geomNormal core.Vec3, adjoint bool) core.Vec3 {
	if !sameHemisphere(wo, wi, shadingNormal) {
		return core.Vec3{}
	}
	r := reflect(wi, shadingNormal)
	cosAlpha := math.Max(0, r.Dot(wo))
	norm := (p.Shininess + 2) / (2 * math.Pi)
	f := p.Specular.Multiply(norm * math.Pow(cosAlpha, p.Shininess))
	if adjoint {
		f = f.Multiply(ShadingNormalAdjoint(shadingNormal, geomNormal, wo, wi))
	}
	return f
}

func (p *Phong) PDF(wo, wi, shadingNormal core.Vec3) float64 {
	if !sameHemisphere(wo, wi, shadingNormal) {
		return 0
	}
	r := reflect(wi, shadingNormal)
	cosAlpha := math.Max(0, r.Dot(wo))
	return (p.Shininess + 1) / (2 * math.Pi) * math.Pow(cosAlpha, p.Shininess)
}

func (p *Phong) Sample(wo, shadingNormal, geomNormal core.Vec3, sampler core.Sampler, adjoint bool) (ScatterSample, bool) {
	n := shadingNormal
	if wo.Dot(shadingNormal) < 0 {
		n = n.Negate()
	}
	r := reflect(wo, n)

	u := sampler.Get2D()
	cosAlpha := math.Pow(u.X, 1.0/(p.Shininess+1))
	sinAlpha := math.Sqrt(math.Max(0, 1-cosAlpha*cosAlpha))
	phi := 2 * math.Pi * u.Y

	var tangent core.Vec3
	if math.Abs(r.X) > 0.1 {
		tangent = core.NewVec3(0, 1, 0)
	} else {
		tangent = core.NewVec3(1, 0, 0)
	}
	tangent = tangent.Cross(r).Normalize()
	bitangent := r.Cross(tangent)

	wi := tangent.Multiply(sinAlpha * math.Cos(phi)).
		Add(bitangent.Multiply(sinAlpha * math.Sin(phi))).
		Add(r.Multiply(cosAlpha))

	if wi.Dot(n) <= 0 {
		return ScatterSample{}, false
	}
	pdf := p.PDF(wo, wi, shadingNormal)
	if pdf <= 0 {
		return ScatterSample{}, false
	}
	return ScatterSample{
		Wi:  wi,
		F:   p.Eval(wo, wi, shadingNormal, geomNormal, adjoint),
		PDF: pdf,
	}, true
}

package bsdf

import (
	"math"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

// Lambertian is a perfectly diffuse reflector.
type Lambertian struct {
	Albedo core.Vec3
}

// NewLambertian creates a Lambertian BSDF with the given reflectance.
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

func (l *Lambertian) IsSpecular() bool { return false }

func (l *Lambertian) Eval(wo, wi, shadingNormal, geomNormal core.Vec3, adjoint bool) core.Vec3 {
	if !sameHemisphere(wo, wi, shadingNormal) {
		return core.Vec3{}
	}
	f := l.Albedo.Multiply(1.0 / math.Pi)
	if adjoint {
		f = f.Multiply(ShadingNormalAdjoint(shadingNormal, geomNormal, wo, wi))
	}
	return f
}

func (l *Lambertian) PDF(wo, wi, shadingNormal core.Vec3) float64 {
	if !sameHemisphere(wo, wi, shadingNormal) {
		return 0
	}
	return math.Abs(wi.Dot(shadingNormal)) / math.Pi
}

func (l *Lambertian) Sample(wo, shadingNormal, geomNormal core.Vec3, sampler core.Sampler, adjoint bool) (ScatterSample, bool) {
	n := shadingNormal
	if wo.Dot(shadingNormal) < 0 {
		n = n.Negate()
	}
	wi := core.SampleCosineHemisphere(n, sampler.Get2D())
	pdf := l.PDF(wo, wi, shadingNormal)
	if pdf <= 0 {
		return ScatterSample{}, false
	}
	return ScatterSample{
		Wi:  wi,
		F:   l.Eval(wo, wi, shadingNormal, geomNormal, adjoint),
		PDF: pdf,
	}, true
}

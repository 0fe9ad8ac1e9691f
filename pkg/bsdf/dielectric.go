package bsdf

import (
	"math"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

// Dielectric is a smooth refractive surface (glass, water) with Fresnel
// reflectance stochastically choosing between reflection and transmission.
type Dielectric struct {
	Tint           core.Vec3
	IOR            float64 // index of refraction of the interior, relative to vacuum
}

// NewDielectric creates a glass-like BSDF with the given interior IOR.
func NewDielectric(tint core.Vec3, ior float64) *Dielectric {
	return &Dielectric{Tint: tint, IOR: ior}
}

func (d *Dielectric) IsSpecular() bool { return true }

func (d *Dielectric) Eval(wo, wi, shadingNormal, geomNormal core.Vec3, adjoint bool) core.Vec3 {
	return core.Vec3{}
}

func (d *Dielectric) PDF(wo, wi, shadingNormal core.Vec3) float64 {
	return 0
}

// schlick is the Fresnel-Schlick reflectance approximation.
func schlick(cosTheta, etaI, etaT float64) float64 {
	r0 := (etaI - etaT) / (etaI + etaT)
	r0 *= r0
	x := 1 - cosTheta
	return r0 + (1-r0)*x*x*x*x*x
}

func (d *Dielectric) Sample(wo, shadingNormal, geomNormal core.Vec3, sampler core.Sampler, adjoint bool) (ScatterSample, bool) {
	n := shadingNormal
	cosWo := wo.Dot(n)
	entering := cosWo > 0
	etaI, etaT := 1.0, d.IOR
	if !entering {
		n = n.Negate()
		cosWo = -cosWo
		etaI, etaT = d.IOR, 1.0
	}
	eta := etaI / etaT

	sin2ThetaT := eta * eta * math.Max(0, 1-cosWo*cosWo)
	reflectance := 1.0
	if sin2ThetaT < 1 {
		reflectance = schlick(cosWo, etaI, etaT)
	}

	if sampler.Get1D() < reflectance {
		wi := reflect(wo, n)
		return ScatterSample{
			Wi:       wi,
			F:        d.Tint.Multiply(1.0 / math.Abs(wi.Dot(n))),
			PDF:      1.0,
			Specular: true,
		}, true
	}

	// Refract: Snell's law applied to the direction away from the surface.
	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	wt := wo.Negate().Multiply(eta).Add(n.Multiply(eta*cosWo - cosThetaT))
	wt = wt.Normalize()

	// Radiance transport scales by (etaT/etaI)^2 when crossing into a denser
	// medium; importance transport (adjoint) does not carry this factor.
	scale := 1.0
	if !adjoint {
		scale = (etaT * etaT) / (etaI * etaI)
	}

	return ScatterSample{
		Wi:       wt,
		F:        d.Tint.Multiply(scale / math.Abs(wt.Dot(n))),
		PDF:      1.0,
		Specular: true,
	}, true
}

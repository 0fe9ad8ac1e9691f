package bsdf

import (
	"math"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

// OrenNayar is a rough diffuse reflector (micro-facet Lambertian), more
// retro-reflective than plain Lambertian as Roughness increases.
type OrenNayar struct {
	Albedo    core.Vec3
	Roughness float64 // standard deviation of facet slope, radians
	a, b      float64 // precomputed Oren-Nayar coefficients
}

// NewOrenNayar creates a rough diffuse BSDF.
func NewOrenNayar(albedo core.Vec3, roughness float64) *OrenNayar {
	sigma2 := roughness * roughness
	return &OrenNayar{
		Albedo:    albedo,
		Roughness: roughness,
		a:         1.0 - sigma2/(2*(sigma2+0.33)),
		b:         0.45 * sigma2 / (sigma2 + 0.09),
	}
}

func (o *OrenNayar) IsSpecular() bool { return false }

func (o *OrenNayar) Eval(wo, wi, shadingNormal, geomNormal core.Vec3, adjoint bool) core.Vec3 {
	if !sameHemisphere(wo, wi, shadingNormal) {
		return core.Vec3{}
	}
	cosWo := math.Abs(wo.Dot(shadingNormal))
	cosWi := math.Abs(wi.Dot(shadingNormal))
	sinWo := math.Sqrt(math.Max(0, 1-cosWo*cosWo))
	sinWi := math.Sqrt(math.Max(0, 1-cosWi*cosWi))

	// Project wo, wi onto the tangent plane to get the azimuthal difference.
	tWo := wo.Subtract(shadingNormal.Multiply(cosWo))
	tWi := wi.Subtract(shadingNormal.Multiply(cosWi))
	maxCos := 0.0
	if sinWo > 1e-6 && sinWi > 1e-6 {
		maxCos = math.Max(0, tWo.Normalize().Dot(tWi.Normalize()))
	}

	sinAlpha, tanBeta := sinWo, sinWi/math.Max(cosWi, cosWo)
	if cosWo < cosWi {
		sinAlpha, tanBeta = sinWi, sinWo/math.Max(cosWi, cosWo)
	}

	f := o.Albedo.Multiply((o.a + o.b*maxCos*sinAlpha*tanBeta) / math.Pi)
	if adjoint {
		f = f.Multiply(ShadingNormalAdjoint(shadingNormal, geomNormal, wo, wi))
	}
	return f
}

func (o *OrenNayar) PDF(wo, wi, shadingNormal core.Vec3) float64 {
	if !sameHemisphere(wo, wi, shadingNormal) {
		return 0
	}
	return math.Abs(wi.Dot(shadingNormal)) / math.Pi
}

func (o *OrenNayar) Sample(wo, shadingNormal, geomNormal core.Vec3, sampler core.Sampler, adjoint bool) (ScatterSample, bool) {
	n := shadingNormal
	if wo.Dot(shadingNormal) < 0 {
		n = n.Negate()
	}
	wi := core.SampleCosineHemisphere(n, sampler.Get2D())
	pdf := o.PDF(wo, wi, shadingNormal)
	if pdf <= 0 {
		return ScatterSample{}, false
	}
	return ScatterSample{
		Wi:  wi,
		F:   o.Eval(wo, wi, shadingNormal, geomNormal, adjoint),
		PDF: pdf,
	}, true
}

package bsdf

import "github.com/df07/go-vcm-tracer/pkg/core"

// Mirror is a perfect specular reflector, optionally tinted (e.g. a
// Fresnel-conductor approximation via a fixed reflectance color).
type Mirror struct {
	Reflectance core.Vec3
}

// NewMirror creates a perfectly specular reflector with the given tint.
func NewMirror(reflectance core.Vec3) *Mirror {
	return &Mirror{Reflectance: reflectance}
}

func (m *Mirror) IsSpecular() bool { return true }

// Eval and PDF are always zero: a delta lobe is never hit by NEE,
// connection or merging, only by Sample.
func (m *Mirror) Eval(wo, wi, shadingNormal, geomNormal core.Vec3, adjoint bool) core.Vec3 {
	return core.Vec3{}
}

func (m *Mirror) PDF(wo, wi, shadingNormal core.Vec3) float64 {
	return 0
}

func (m *Mirror) Sample(wo, shadingNormal, geomNormal core.Vec3, sampler core.Sampler, adjoint bool) (ScatterSample, bool) {
	n := shadingNormal
	if wo.Dot(shadingNormal) < 0 {
		n = n.Negate()
	}
	wi := reflect(wo, n)
	cosWi := wi.Dot(n)
	if cosWi <= 0 {
		return ScatterSample{}, false
	}
	// The cosine term cancels against the 1/cos in the rendering equation
	// for a delta BRDF, so F already carries the cosine-corrected weight.
	return ScatterSample{
		Wi:       wi,
		F:        m.Reflectance.Multiply(1.0 / cosWi),
		PDF:      1.0,
		Specular: true,
	}, true
}

// Package bsdf implements the surface scattering models used by the
// renderer's light transport: Lambertian diffuse, perfect specular
// reflection, dielectric refraction, a Phong glossy lobe, Oren-Nayar rough
// diffuse, and lobe-weighted mixtures of the above.
package bsdf

import (
	"math"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

// ScatterSample is the result of importance-sampling a BSDF at a vertex.
type ScatterSample struct {
	Wi       core.Vec3 // sampled incident direction, world space, away from the surface
	F        core.Vec3 // BSDF value at (Wo, Wi), not divided by PDF
	PDF      float64   // solid-angle density of Wi given Wo; 0 for specular lobes
	Specular bool       // true if this lobe is a delta distribution
}

// BSDF models how a surface scatters light between two directions that both
// point away from the surface: Wo toward the previous path vertex, Wi toward
// the next one. Bidirectional path tracing needs every BSDF to be evaluable
// from both the camera and the light side, so Eval and Sample take an
// explicit adjoint flag rather than assuming one transport direction.
type BSDF interface {
	// Eval returns f(wo, wi) for whatever non-specular lobes this BSDF has.
	// Callers skip Eval entirely for vertices where IsSpecular is true,
	// since a delta lobe has zero probability of being hit by NEE,
	// connection or merging.
	Eval(wo, wi, shadingNormal, geomNormal core.Vec3, adjoint bool) core.Vec3

	// PDF returns the solid-angle density of sampling wi given wo, matching
	// whatever Sample would produce. Used by the balance heuristic to
	// recompute the probability a technique *other* than the one that
	// generated this vertex would have chosen it.
	PDF(wo, wi, shadingNormal core.Vec3) float64

	// Sample draws an incident direction proportional (ideally) to
	// Eval*cosine. ok is false when the sampled direction has zero
	// contribution (e.g. transmission sampled on an opaque material).
	Sample(wo, shadingNormal, geomNormal core.Vec3, sampler core.Sampler, adjoint bool) (sample ScatterSample, ok bool)

	// IsSpecular reports whether every lobe is a delta distribution.
	IsSpecular() bool
}

// ShadingNormalAdjoint is the correction factor Veach (1997, 5.4.5.1)
// derives for shading normals that diverge from the geometric normal: without
// it, importance and light transport disagree on the cosine term at such a
// vertex and energy is not conserved when light paths are traced backwards.
// Camera-side evaluation does not need it; light-side (adjoint) evaluation
// must multiply its BSDF value by this factor.
func ShadingNormalAdjoint(shadingNormal, geomNormal, wo, wi core.Vec3) float64 {
	num := math.Abs(wo.Dot(shadingNormal)) * math.Abs(wi.Dot(geomNormal))
	den := math.Abs(wo.Dot(geomNormal)) * math.Abs(wi.Dot(shadingNormal))
	if den < 1e-9 {
		return 1
	}
	return num / den
}

// reflect returns the perfect mirror reflection of wo about normal, with
// both vectors pointing away from the surface.
func reflect(wo, normal core.Vec3) core.Vec3 {
	return normal.Multiply(2 * wo.Dot(normal)).Subtract(wo)
}

// sameHemisphere reports whether wo and wi are on the same side of normal,
// i.e. this would be a reflection rather than a transmission event.
func sameHemisphere(wo, wi, normal core.Vec3) bool {
	return wo.Dot(normal)*wi.Dot(normal) > 0
}

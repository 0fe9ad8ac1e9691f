package bsdf

import "github.com/df07/go-vcm-tracer/pkg/core"

// Mixture combines several BSDF lobes with fixed weights (e.g. a dielectric
// coat over a diffuse base). Eval and PDF sum the weighted contribution of
// every non-specular lobe; Sample picks one lobe proportional to its weight
// and returns the *mixture's* PDF at the sampled direction, not the chosen
// lobe's PDF alone, so that NEE and connection techniques (which call Eval
// and PDF directly, never Sample) agree with what Sample would have done.
type Mixture struct {
	Lobes   []BSDF
	Weights []float64 // sums to 1; Weights[i] is the probability of picking Lobes[i]
}

// NewMixture creates a weighted combination of BSDFs. Weights are
// normalized to sum to 1.
func NewMixture(lobes []BSDF, weights []float64) *Mixture {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	normalized := make([]float64, len(weights))
	if total > 0 {
		for i, w := range weights {
			normalized[i] = w / total
		}
	}
	return &Mixture{Lobes: lobes, Weights: normalized}
}

func (m *Mixture) IsSpecular() bool {
	for _, l := range m.Lobes {
		if !l.IsSpecular() {
			return false
		}
	}
	return true
}

func (m *Mixture) Eval(wo, wi, shadingNormal, geomNormal core.Vec3, adjoint bool) core.Vec3 {
	var sum core.Vec3
	for i, l := range m.Lobes {
		if l.IsSpecular() || m.Weights[i] <= 0 {
			continue
		}
		sum = sum.Add(l.Eval(wo, wi, shadingNormal, geomNormal, adjoint).Multiply(m.Weights[i]))
	}
	return sum
}

func (m *Mixture) PDF(wo, wi, shadingNormal core.Vec3) float64 {
	sum := 0.0
	for i, l := range m.Lobes {
		if l.IsSpecular() || m.Weights[i] <= 0 {
			continue
		}
		sum += m.Weights[i] * l.PDF(wo, wi, shadingNormal)
	}
	return sum
}

// Sample picks a lobe proportional to its weight, draws a direction from
// it, then re-evaluates Eval/PDF against the *whole* mixture so the
// returned sample is consistent with what PDF(wo, wi, n) reports for any
// other technique that later re-derives a probability for this same wi.
func (m *Mixture) Sample(wo, shadingNormal, geomNormal core.Vec3, sampler core.Sampler, adjoint bool) (ScatterSample, bool) {
	u := sampler.Get1D()
	chosen := -1
	cumulative := 0.0
	for i, w := range m.Weights {
		cumulative += w
		if u < cumulative || i == len(m.Weights)-1 {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		return ScatterSample{}, false
	}

	lobe := m.Lobes[chosen]
	sample, ok := lobe.Sample(wo, shadingNormal, geomNormal, sampler, adjoint)
	if !ok {
		return ScatterSample{}, false
	}

	if lobe.IsSpecular() {
		// A specular lobe's direction has zero probability under every
		// other lobe, so the mixture behaves like that lobe alone, scaled
		// by the probability of having picked it.
		sample.F = sample.F.Multiply(1.0 / m.Weights[chosen])
		sample.PDF = 1.0
		sample.Specular = true
		return sample, true
	}

	sample.F = m.Eval(wo, sample.Wi, shadingNormal, geomNormal, adjoint)
	sample.PDF = m.PDF(wo, sample.Wi, shadingNormal)
	sample.Specular = false
	if sample.PDF <= 0 {
		return ScatterSample{}, false
	}
	return sample, true
}

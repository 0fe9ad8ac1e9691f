package light

// Sampler picks one light out of the scene's light list, uniformly. VCM's
// dVCM/dVC initialization needs the exact pdf_lightpick used here, so it is
// exposed rather than folded into the per-light PDFs.
type Sampler struct {
	Lights []Light
}

// NewSampler builds a uniform light-picking sampler over lights.
func NewSampler(lights []Light) *Sampler {
	return &Sampler{Lights: lights}
}

// Pick selects one light uniformly at random via u in [0,1).
func (s *Sampler) Pick(u float64) (Light, float64) {
	if len(s.Lights) == 0 {
		return nil, 0
	}
	idx := int(u * float64(len(s.Lights)))
	if idx >= len(s.Lights) {
		idx = len(s.Lights) - 1
	}
	return s.Lights[idx], s.PDF()
}

// PDF returns the (uniform) probability of having picked any one light.
func (s *Sampler) PDF() float64 {
	if len(s.Lights) == 0 {
		return 0
	}
	return 1.0 / float64(len(s.Lights))
}

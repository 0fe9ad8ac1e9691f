package light

import (
	"math"
	"testing"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

func TestAreaLightSampleDirectPDFAgreesWithPDFDirect(t *testing.T) {
	l := NewAreaLight(core.NewVec3(0, 5, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), core.NewVec3(10, 10, 10), false)
	point := core.NewVec3(0.5, 0, 0.5)

	sample := l.SampleDirect(point, core.NewVec2(0.3, 0.7))
	if sample.PDF <= 0 {
		t.Fatalf("expected positive PDF, got %v", sample.PDF)
	}

	pdf := l.PDFDirect(point, sample.Wi)
	if math.Abs(pdf-sample.PDF) > 1e-6 {
		t.Errorf("PDFDirect() = %v, want %v (matching SampleDirect)", pdf, sample.PDF)
	}
}

func TestAreaLightOneSidedBacksideMiss(t *testing.T) {
	l := NewAreaLight(core.NewVec3(0, 5, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), core.NewVec3(10, 10, 10), false)
	// Point above the light: the light's normal points down (u x v), so
	// this point sees the light's back face.
	above := core.NewVec3(0.5, 10, 0.5)
	sample := l.SampleDirect(above, core.NewVec2(0.5, 0.5))
	if sample.PDF != 0 {
		t.Errorf("expected zero PDF sampling the back face of a one-sided light, got %v", sample.PDF)
	}
}

func TestPointLightIsDelta(t *testing.T) {
	p := NewPointLight(core.NewVec3(0, 1, 0), core.NewVec3(1, 1, 1))
	if !p.IsDelta() {
		t.Fatal("point light must report delta")
	}
	if pdf := p.PDFDirect(core.Vec3{}, core.NewVec3(0, 1, 0)); pdf != 0 {
		t.Errorf("PDFDirect on a delta light must be 0, got %v", pdf)
	}
}

func TestSamplerPicksUniformly(t *testing.T) {
	lights := []Light{
		NewPointLight(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1)),
		NewPointLight(core.NewVec3(1, 0, 0), core.NewVec3(1, 1, 1)),
	}
	s := NewSampler(lights)
	if got := s.PDF(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("PDF() = %v, want 0.5", got)
	}

	first, _ := s.Pick(0.0)
	second, _ := s.Pick(0.99)
	if first == second {
		t.Error("expected different lights at u=0 and u=0.99")
	}
}

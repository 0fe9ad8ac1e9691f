package bsdf

import (
	"math/rand"
	"testing"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

func TestLambertianSampleMatchesPDF(t *testing.T) {
	l := NewLambertian(core.NewVec3(0.8, 0.8, 0.8))
	n := core.NewVec3(0, 1, 0)
	wo := core.NewVec3(0, 1, 0)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(1)))

	for i := 0; i < 64; i++ {
		s, ok := l.Sample(wo, n, n, sampler, false)
		if !ok {
			t.Fatalf("sample %d rejected", i)
		}
		if s.Specular {
			t.Fatalf("lambertian should never report specular")
		}
		if pdf := l.PDF(wo, s.Wi, n); pdf <= 0 {
			t.Fatalf("sample %d has non-positive PDF via BSDF.PDF: %v", i, pdf)
		}
	}
}

func TestMirrorIsSpecularAndEvalZero(t *testing.T) {
	m := NewMirror(core.NewVec3(1, 1, 1))
	if !m.IsSpecular() {
		t.Fatal("mirror must report specular")
	}
	n := core.NewVec3(0, 1, 0)
	wo := core.NewVec3(0, 1, 0)
	if f := m.Eval(wo, wo, n, n, false); f != (core.Vec3{}) {
		t.Fatalf("specular Eval should be zero, got %v", f)
	}
}

func TestMixtureIsSpecularOnlyWhenAllLobesAre(t *testing.T) {
	diffuse := NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	mirror := NewMirror(core.NewVec3(1, 1, 1))
	mix := NewMixture([]BSDF{diffuse, mirror}, []float64{0.5, 0.5})
	if mix.IsSpecular() {
		t.Fatal("mixture with a diffuse lobe must not be fully specular")
	}

	allSpecular := NewMixture([]BSDF{mirror, mirror}, []float64{0.3, 0.7})
	if !allSpecular.IsSpecular() {
		t.Fatal("mixture of only specular lobes must be specular")
	}
}

func TestMixtureWeightsNormalize(t *testing.T) {
	diffuse := NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	mix := NewMixture([]BSDF{diffuse, diffuse}, []float64{2, 2})
	if mix.Weights[0] != 0.5 || mix.Weights[1] != 0.5 {
		t.Fatalf("expected normalized weights [0.5 0.5], got %v", mix.Weights)
	}
}

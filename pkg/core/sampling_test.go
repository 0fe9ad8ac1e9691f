package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestSampleCosineHemisphereStaysInHemisphere(t *testing.T) {
	normal := NewVec3(0, 1, 0)
	r := rand.New(rand.NewSource(1))
	sampler := NewRandomSampler(r)

	for i := 0; i < 256; i++ {
		d := SampleCosineHemisphere(normal, sampler.Get2D())
		if d.Dot(normal) < -1e-9 {
			t.Fatalf("sample %d below hemisphere: dir=%v dot=%v", i, d, d.Dot(normal))
		}
		if !almostEqual(d.Length(), 1.0) {
			t.Fatalf("sample %d not unit length: %v", i, d.Length())
		}
	}
}

func TestSamplePointInUnitDiskBounded(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	sampler := NewRandomSampler(r)
	for i := 0; i < 256; i++ {
		p := SamplePointInUnitDisk(sampler.Get2D())
		if p.LengthSquared() > 1.0+1e-9 {
			t.Fatalf("sample %d outside unit disk: %v", i, p)
		}
		if p.Z != 0 {
			t.Fatalf("sample %d not planar: %v", i, p)
		}
	}
}

func TestSampleOnUnitSphereUnitLength(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	sampler := NewRandomSampler(r)
	for i := 0; i < 256; i++ {
		d := SampleOnUnitSphere(sampler.Get2D())
		if math.Abs(d.Length()-1.0) > 1e-9 {
			t.Fatalf("sample %d not unit length: %v", i, d.Length())
		}
	}
}

func TestPathRNGDeterministic(t *testing.T) {
	a := PathRNG(3, 100, 0, 0)
	b := PathRNG(3, 100, 0, 0)
	for i := 0; i < 16; i++ {
		x, y := a.Float64(), b.Float64()
		if x != y {
			t.Fatalf("PathRNG not deterministic at draw %d: %v != %v", i, x, y)
		}
	}
}

func TestPathRNGVariesWithIndices(t *testing.T) {
	a := PathRNG(3, 100, 0, 0).Float64()
	b := PathRNG(3, 101, 0, 0).Float64()
	if a == b {
		t.Fatalf("PathRNG produced identical first draw for different pixel IDs")
	}
}

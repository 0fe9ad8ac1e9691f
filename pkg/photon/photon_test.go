package photon

import (
	"math"
	"testing"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

func TestRadiusShrinksWithIteration(t *testing.T) {
	r1 := Radius(0.1, 0.75, 1)
	r100 := Radius(0.1, 0.75, 100)
	if r100 >= r1 {
		t.Errorf("radius should shrink as iterations progress: r1=%v r100=%v", r1, r100)
	}
	want := 0.1 * math.Pow(100, -0.5*0.25)
	if math.Abs(r100-want) > 1e-9 {
		t.Errorf("Radius(0.1, 0.75, 100) = %v, want %v", r100, want)
	}
}

func TestRadiusFloorsAtMinimum(t *testing.T) {
	r := Radius(1e-12, 0.75, 1000000)
	if r < 1e-7 {
		t.Errorf("Radius should floor at 1e-7, got %v", r)
	}
}

func TestGridQueryRadiusFindsNearbyExcludesFar(t *testing.T) {
	photons := []Photon{
		{Point: core.NewVec3(0, 0, 0)},
		{Point: core.NewVec3(0.05, 0, 0)},
		{Point: core.NewVec3(10, 10, 10)},
	}
	g := NewGrid(photons, 0.1)

	found := g.QueryRadius(core.NewVec3(0, 0, 0), 0.1)
	if len(found) != 2 {
		t.Fatalf("QueryRadius found %d photons, want 2", len(found))
	}
}

func TestGridQueryRadiusAcrossCellBoundary(t *testing.T) {
	photons := []Photon{
		{Point: core.NewVec3(0.09, 0, 0)},
		{Point: core.NewVec3(0.11, 0, 0)},
	}
	g := NewGrid(photons, 0.1)

	found := g.QueryRadius(core.NewVec3(0.1, 0, 0), 0.05)
	if len(found) != 2 {
		t.Errorf("QueryRadius across a cell boundary found %d, want 2", len(found))
	}
}

func TestGridLen(t *testing.T) {
	photons := []Photon{{Point: core.NewVec3(0, 0, 0)}, {Point: core.NewVec3(1, 1, 1)}}
	g := NewGrid(photons, 0.1)
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
}

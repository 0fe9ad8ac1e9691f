// Package photon indexes light-path vertices spatially so vertex merging
// can find every nearby photon in roughly constant time instead of
// scanning the whole vertex cache per camera-path vertex.
package photon

import (
	"math"

	"github.com/df07/go-vcm-tracer/pkg/bsdf"
	"github.com/df07/go-vcm-tracer/pkg/core"
	"github.com/df07/go-vcm-tracer/pkg/mis"
)

// Photon is a light-path vertex indexed for merging queries. Mirrors
// queue.LightVertex's fields rather than importing that package, since the
// grid only needs the subset merging actually reads.
type Photon struct {
	Point      core.Vec3
	Normal     core.Vec3
	Wo         core.Vec3
	Throughput core.Vec3
	BSDF       bsdf.BSDF
	MIS        mis.State
	PathID     int

	// ContinueProb is the Russian-roulette acceptance probability applied at
	// the bounce that produced this photon; merging folds it into the
	// photon-side reverse pdf the same way connection folds it into a
	// cached light vertex's.
	ContinueProb float64
}

// Radius returns the progressive photon mapping search radius for
// iteration i (1-indexed), shrinking the search volume over the course of
// the render so the merging estimator's bias vanishes as more iterations
// accumulate. r_i = r_base * i^(-0.5*(1-alpha)); alpha=0.75 gives the
// i^-0.125 falloff from Hachisuka & Jensen's progressive photon mapping.
func Radius(baseRadius float64, alpha float64, iteration int) float64 {
	if iteration < 1 {
		iteration = 1
	}
	r := baseRadius * math.Pow(float64(iteration), -0.5*(1-alpha))
	if r < 1e-7 {
		r = 1e-7
	}
	return r
}

// Grid is a uniform spatial hash over photon positions, rebuilt once per
// iteration from that iteration's light-path vertices. Cell size is set to
// the current iteration's search radius so a query never needs to look
// past its 3x3x3 cell neighborhood.
type Grid struct {
	cellSize float64
	cells    map[int64][]int
	photons  []Photon
}

// NewGrid builds a grid over photons sized for queries at the given
// search radius.
func NewGrid(photons []Photon, searchRadius float64) *Grid {
	cellSize := searchRadius
	if cellSize <= 0 {
		cellSize = 1
	}
	g := &Grid{
		cellSize: cellSize,
		cells:    make(map[int64][]int, len(photons)),
		photons:  photons,
	}
	for i, p := range photons {
		key := g.cellKey(g.cellIndex(p.Point))
		g.cells[key] = append(g.cells[key], i)
	}
	return g
}

type cellCoord struct{ x, y, z int }

func (g *Grid) cellIndex(p core.Vec3) cellCoord {
	return cellCoord{
		x: int(math.Floor(p.X / g.cellSize)),
		y: int(math.Floor(p.Y / g.cellSize)),
		z: int(math.Floor(p.Z / g.cellSize)),
	}
}

// cellKey packs a cell coordinate into a single int64 hash. Coordinates are
// offset to stay positive within a generous range; collisions beyond that
// range only cost extra candidates in QueryRadius, never correctness,
// since QueryRadius always filters by exact distance.
func (g *Grid) cellKey(c cellCoord) int64 {
	const offset = 1 << 20
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	x := int64(c.x + offset)
	y := int64(c.y + offset)
	z := int64(c.z + offset)
	return x*p1 ^ y*p2 ^ z*p3
}

// QueryRadius returns every indexed photon within radius of center,
// already filtered to the exact distance (unlike a broadphase-only grid,
// merging needs precise membership for the Epanechnikov kernel weight).
func (g *Grid) QueryRadius(center core.Vec3, radius float64) []Photon {
	min := g.cellIndex(center.Subtract(core.NewVec3(radius, radius, radius)))
	max := g.cellIndex(center.Add(core.NewVec3(radius, radius, radius)))

	var results []Photon
	r2 := radius * radius
	for x := min.x; x <= max.x; x++ {
		for y := min.y; y <= max.y; y++ {
			for z := min.z; z <= max.z; z++ {
				key := g.cellKey(cellCoord{x, y, z})
				for _, idx := range g.cells[key] {
					p := g.photons[idx]
					if p.Point.Subtract(center).LengthSquared() <= r2 {
						results = append(results, p)
					}
				}
			}
		}
	}
	return results
}

// Len returns the number of photons indexed in the grid.
func (g *Grid) Len() int {
	return len(g.photons)
}

package integrator

import "image"

// tile is a contiguous, exclusively-owned block of pixels one worker
// goroutine processes for an entire camera-path iteration. Grounded on the
// teacher's progressive.Tile/NewTileGrid: same rectangular partitioning,
// generalized from an adaptive per-pixel sample budget to "trace every
// pixel's camera path once, through however many bounces this iteration's
// settings allow."
type tile struct {
	id     int
	bounds image.Rectangle
}

// newTileGrid partitions a width x height image into tileSize x tileSize
// tiles (the last row/column may be smaller), covering every pixel exactly
// once.
func newTileGrid(width, height, tileSize int) []tile {
	if tileSize <= 0 {
		tileSize = 32
	}
	var tiles []tile
	id := 0
	for y0 := 0; y0 < height; y0 += tileSize {
		for x0 := 0; x0 < width; x0 += tileSize {
			x1 := x0 + tileSize
			if x1 > width {
				x1 = width
			}
			y1 := y0 + tileSize
			if y1 > height {
				y1 = height
			}
			tiles = append(tiles, tile{id: id, bounds: image.Rect(x0, y0, x1, y1)})
			id++
		}
	}
	return tiles
}

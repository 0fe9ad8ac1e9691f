package queue

import (
	stdimage "image"
	"image/color"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

// Image accumulates radiance per pixel across iterations. Camera-path and
// NEE contributions land on the pixel the tracing tile already owns, so
// tile-owning goroutines write them directly with no synchronization.
// Light-tracing and connect-to-camera contributions land on whatever pixel
// the light vertex happens to project onto, which no tile owns in advance;
// those are pushed onto a SplatQueue instead and applied here by a single
// goroutine once every worker for the iteration has joined. Go has no
// atomic float add, so this ownership split is what keeps the accumulator
// race-free without a per-pixel lock.
type Image struct {
	width, height int
	sum           []core.Vec3
	samples       []int
}

// NewImage creates a zeroed accumulator for a width x height render.
func NewImage(width, height int) *Image {
	return &Image{
		width:   width,
		height:  height,
		sum:     make([]core.Vec3, width*height),
		samples: make([]int, width*height),
	}
}

func (img *Image) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= img.width || y >= img.height {
		return 0, false
	}
	return y*img.width + x, true
}

// Add accumulates color at (x, y) as one sample. Callers must own (x, y)
// exclusively for the duration of the call: the tile scheduler guarantees
// this for camera-path writes, and ApplySplats guarantees it by draining
// sequentially.
func (img *Image) Add(x, y int, color core.Vec3) {
	i, ok := img.index(x, y)
	if !ok {
		return
	}
	img.sum[i] = img.sum[i].Add(color)
	img.samples[i]++
}

// ApplySplats drains every splat queued so far into the image and resets
// the queue. Called once per iteration after all light-path workers have
// joined, so no pixel is ever touched concurrently by two splats.
func (img *Image) ApplySplats(sq *SplatQueue, samplesPerSplat int) {
	for _, s := range sq.Items() {
		i, ok := img.index(s.X, s.Y)
		if !ok {
			continue
		}
		img.sum[i] = img.sum[i].Add(s.Color)
		img.samples[i] += samplesPerSplat
	}
	sq.Reset()
}

// At returns the averaged color for pixel (x, y).
func (img *Image) At(x, y int) core.Vec3 {
	i, ok := img.index(x, y)
	if !ok || img.samples[i] == 0 {
		return core.Vec3{}
	}
	return img.sum[i].Multiply(1.0 / float64(img.samples[i]))
}

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.height }

// ToRGBA renders the accumulated image to an 8-bit image.Image, applying
// gamma correction (gamma=2.0) and clamping before quantizing. Grounded on
// the teacher's Raytracer.vec3ToColor/RenderPass.
func (img *Image) ToRGBA() *stdimage.RGBA {
	out := stdimage.NewRGBA(stdimage.Rect(0, 0, img.width, img.height))
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			c := img.At(x, y).GammaCorrect(2.0).Clamp(0.0, 1.0)
			out.SetRGBA(x, y, color.RGBA{
				R: uint8(255 * c.X),
				G: uint8(255 * c.Y),
				B: uint8(255 * c.Z),
				A: 255,
			})
		}
	}
	return out
}

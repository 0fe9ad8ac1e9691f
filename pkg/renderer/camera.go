package renderer

import (
	"math"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

// CameraConfig describes a pinhole camera. Unlike the teacher's
// depth-of-field camera, this renderer's Camera has no Aperture/lens
// sampling: light tracing's connect-to-camera technique needs a single
// fixed lens point to project onto, which a thin-lens camera with a
// randomly sampled aperture does not have.
type CameraConfig struct {
	Center      core.Vec3
	LookAt      core.Vec3
	Up          core.Vec3
	Width       int
	Height      int
	VFov        float64 // vertical field of view, in degrees
}

// Camera is the pinhole camera collaborator the transport package uses to
// generate primary rays and to project light-subpath vertices back onto
// the image plane for connect-to-camera.
type Camera struct {
	center   core.Vec3
	forward  core.Vec3
	right    core.Vec3
	up       core.Vec3
	width    int
	height   int
	planeDist float64 // distance from center to the image plane along forward
	halfW    float64
	halfH    float64
}

// NewCamera builds a pinhole camera from config. The image plane is placed
// at unit distance along forward and scaled by the vertical field of view,
// matching the teacher's viewport construction generalized to an arbitrary
// look-at/up basis instead of a fixed -z axis.
func NewCamera(config CameraConfig) *Camera {
	forward := config.LookAt.Subtract(config.Center).Normalize()
	right := forward.Cross(config.Up).Normalize()
	up := right.Cross(forward).Normalize()

	theta := config.VFov * math.Pi / 180.0
	halfH := math.Tan(theta / 2.0)
	aspect := float64(config.Width) / float64(config.Height)
	halfW := halfH * aspect

	return &Camera{
		center:    config.Center,
		forward:   forward,
		right:     right,
		up:        up,
		width:     config.Width,
		height:    config.Height,
		planeDist: 1.0,
		halfW:     halfW,
		halfH:     halfH,
	}
}

// GenerateRay returns the camera ray through continuous pixel coordinates
// (sx, sy), 0<=sx<width, 0<=sy<height, y increasing downward.
func (c *Camera) GenerateRay(sx, sy float64) core.Ray {
	u := (2*sx/float64(c.width) - 1) * c.halfW
	v := (1 - 2*sy/float64(c.height)) * c.halfH

	dir := c.forward.Add(c.right.Multiply(u)).Add(c.up.Multiply(v)).Normalize()
	return core.NewRay(c.center, dir)
}

// Position returns the camera's lens/pinhole position.
func (c *Camera) Position() core.Vec3 { return c.center }

// Forward returns the camera's viewing direction.
func (c *Camera) Forward() core.Vec3 { return c.forward }

// ImagePlaneDist returns the distance from Position to the image plane
// along Forward, needed to convert between image-plane area and solid
// angle in connect-to-camera's MIS weight.
func (c *Camera) ImagePlaneDist() float64 { return c.planeDist }

// WorldToRaster projects a world point onto continuous raster coordinates.
// ok is false when the point is behind the camera or projects outside the
// image plane, matching the "reject if behind camera or off-plane" rule
// connect-to-camera needs.
func (c *Camera) WorldToRaster(point core.Vec3) (x, y float64, ok bool) {
	rel := point.Subtract(c.center)
	depth := rel.Dot(c.forward)
	if depth <= 0 {
		return 0, 0, false
	}

	u := rel.Dot(c.right) / depth
	v := rel.Dot(c.up) / depth

	ndcX := u / c.halfW
	ndcY := v / c.halfH
	if ndcX < -1 || ndcX > 1 || ndcY < -1 || ndcY > 1 {
		return 0, 0, false
	}

	x = (ndcX + 1) * 0.5 * float64(c.width)
	y = (1 - ndcY) * 0.5 * float64(c.height)
	return x, y, true
}

// RasterToID converts continuous raster coordinates to a discrete pixel
// index, or ok=false if they fall outside the image.
func (c *Camera) RasterToID(x, y float64) (id int, ok bool) {
	px, py := int(x), int(y)
	if px < 0 || py < 0 || px >= c.width || py >= c.height {
		return 0, false
	}
	return py*c.width + px, true
}

// CalculateRayPDFs returns the area and directional PDFs of GenerateRay
// having sampled ray's direction: pixel sampling PDF is 1 per pixel area by
// convention, so the solid-angle PDF is just the cos^3 pinhole conversion
// PBRT derives for a perspective camera; areaPDF is always 1 (the lens is
// a single point).
func (c *Camera) CalculateRayPDFs(ray core.Ray) (areaPDF, directionPDF float64) {
	cosTheta := ray.Direction.Dot(c.forward)
	if cosTheta <= 0 {
		return 1, 0
	}
	directionPDF = c.planeDist * c.planeDist / (cosTheta * cosTheta * cosTheta)
	return 1, directionPDF
}

// Width returns the image width in pixels.
func (c *Camera) Width() int { return c.width }

// Height returns the image height in pixels.
func (c *Camera) Height() int { return c.height }

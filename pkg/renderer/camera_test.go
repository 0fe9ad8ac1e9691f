package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

func testCamera() *Camera {
	return NewCamera(CameraConfig{
		Center: core.NewVec3(0, 0, 0),
		LookAt: core.NewVec3(0, 0, -1),
		Up:     core.NewVec3(0, 1, 0),
		Width:  100,
		Height: 100,
		VFov:   90,
	})
}

func TestGenerateRayCenterPixelMatchesForward(t *testing.T) {
	c := testCamera()
	ray := c.GenerateRay(50, 50)
	if dot := ray.Direction.Dot(c.Forward()); dot < 0.999 {
		t.Errorf("center pixel ray direction should equal forward, dot=%v", dot)
	}
}

func TestWorldToRasterRoundTrip(t *testing.T) {
	c := testCamera()
	ray := c.GenerateRay(20, 30)
	point := ray.At(5)

	x, y, ok := c.WorldToRaster(point)
	if !ok {
		t.Fatal("WorldToRaster rejected a point along a generated ray")
	}
	if math.Abs(x-20) > 1e-6 || math.Abs(y-30) > 1e-6 {
		t.Errorf("WorldToRaster(GenerateRay(20,30).At(5)) = (%v, %v), want (20, 30)", x, y)
	}
}

func TestWorldToRasterRejectsBehindCamera(t *testing.T) {
	c := testCamera()
	_, _, ok := c.WorldToRaster(core.NewVec3(0, 0, 10))
	if ok {
		t.Error("WorldToRaster should reject a point behind the camera")
	}
}

func TestWorldToRasterRejectsOffImagePlane(t *testing.T) {
	c := testCamera()
	_, _, ok := c.WorldToRaster(core.NewVec3(1000, 1000, -1))
	if ok {
		t.Error("WorldToRaster should reject a point projecting outside the image plane")
	}
}

func TestRasterToID(t *testing.T) {
	c := testCamera()
	id, ok := c.RasterToID(10, 20)
	if !ok || id != 20*100+10 {
		t.Errorf("RasterToID(10,20) = (%v, %v), want (2010, true)", id, ok)
	}
	if _, ok := c.RasterToID(-1, 0); ok {
		t.Error("RasterToID should reject negative coordinates")
	}
}

func TestCalculateRayPDFsPositiveOnForwardRay(t *testing.T) {
	c := testCamera()
	ray := c.GenerateRay(50, 50)
	areaPDF, dirPDF := c.CalculateRayPDFs(ray)
	if areaPDF != 1 {
		t.Errorf("areaPDF = %v, want 1", areaPDF)
	}
	if dirPDF <= 0 {
		t.Errorf("directionPDF = %v, want > 0", dirPDF)
	}
}

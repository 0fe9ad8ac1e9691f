package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-vcm-tracer/pkg/bsdf"
	"github.com/df07/go-vcm-tracer/pkg/geometry"
	"github.com/df07/go-vcm-tracer/pkg/renderer"
)

func sphereBSDF(t *testing.T, shape geometry.Shape) bsdf.BSDF {
	t.Helper()
	sphere, ok := shape.(*geometry.Sphere)
	if !ok {
		t.Fatalf("expected *geometry.Sphere, got %T", shape)
	}
	return sphere.BSDF
}

func writeTestPBRT(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.pbrt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test PBRT file: %v", err)
	}
	return path
}

const testPBRTBasic = `LookAt 0 0 5  0 0 0  0 1 0
Camera "perspective" "float fov" 45

Film "rgb" "integer xresolution" 320 "integer yresolution" 240

WorldBegin

Material "diffuse" "rgb reflectance" [0.7 0.2 0.2]
Shape "sphere" "float radius" 1.0

LightSource "point" "rgb I" [10 10 10] "point from" [0 5 0]

AttributeBegin
    Material "conductor" "rgb eta" [0.5 0.5 0.9] "float roughness" 0.1
    AreaLightSource "area" "rgb L" [8 8 8]
    Shape "bilinearPatch" "point P00" [-1 2 -1] "point P01" [-1 2 1] "point P10" [1 2 -1] "point P11" [1 2 1]
AttributeEnd

WorldEnd
`

func TestNewPBRTScene(t *testing.T) {
	path := writeTestPBRT(t, testPBRTBasic)

	s, camera, err := NewPBRTScene(path)
	if err != nil {
		t.Fatalf("NewPBRTScene() error = %v", err)
	}
	if s == nil || camera == nil {
		t.Fatal("NewPBRTScene() returned a nil scene or camera")
	}

	if camera.Width() != 320 || camera.Height() != 240 {
		t.Errorf("camera dimensions = %dx%d, want 320x240", camera.Width(), camera.Height())
	}

	// the top-level sphere plus the attribute block's emissive quad patch.
	if len(s.Shapes) != 2 {
		t.Fatalf("shape count = %d, want 2", len(s.Shapes))
	}

	// the point light plus the area light wired onto the quad patch.
	if len(s.Lights) != 2 {
		t.Fatalf("light count = %d, want 2", len(s.Lights))
	}

	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
}

func TestNewPBRTSceneCameraOverride(t *testing.T) {
	path := writeTestPBRT(t, testPBRTBasic)

	_, camera, err := NewPBRTScene(path, renderer.CameraConfig{Width: 100, Height: 50})
	if err != nil {
		t.Fatalf("NewPBRTScene() error = %v", err)
	}
	if camera.Width() != 100 || camera.Height() != 50 {
		t.Errorf("camera override ignored: got %dx%d, want 100x50", camera.Width(), camera.Height())
	}
}

func TestNewPBRTSceneMissingFile(t *testing.T) {
	_, _, err := NewPBRTScene(filepath.Join(t.TempDir(), "does-not-exist.pbrt"))
	if err == nil {
		t.Fatal("expected an error loading a nonexistent PBRT file")
	}
}

func TestConvertMaterialUnsupported(t *testing.T) {
	path := writeTestPBRT(t, `LookAt 0 0 5  0 0 0  0 1 0
Camera "perspective" "float fov" 45

WorldBegin

Material "plastic" "rgb Kd" [0.5 0.5 0.5]
Shape "sphere" "float radius" 1.0

WorldEnd
`)

	if _, _, err := NewPBRTScene(path); err == nil {
		t.Fatal("expected an error for an unsupported material type")
	}
}

func TestConvertMaterialConductorShininess(t *testing.T) {
	// A smooth conductor (low roughness) should produce a much tighter
	// Phong lobe than a rough one.
	smoothPath := writeTestPBRT(t, `LookAt 0 0 5  0 0 0  0 1 0
Camera "perspective" "float fov" 45
WorldBegin
Material "conductor" "float roughness" 0.0
Shape "sphere" "float radius" 1.0
WorldEnd
`)
	roughPath := writeTestPBRT(t, `LookAt 0 0 5  0 0 0  0 1 0
Camera "perspective" "float fov" 45
WorldBegin
Material "conductor" "float roughness" 1.0
Shape "sphere" "float radius" 1.0
WorldEnd
`)

	smoothScene, _, err := NewPBRTScene(smoothPath)
	if err != nil {
		t.Fatalf("NewPBRTScene(smooth) error = %v", err)
	}
	roughScene, _, err := NewPBRTScene(roughPath)
	if err != nil {
		t.Fatalf("NewPBRTScene(rough) error = %v", err)
	}

	smoothMat := sphereBSDF(t, smoothScene.Shapes[0])
	roughMat := sphereBSDF(t, roughScene.Shapes[0])

	smoothPhongMat, ok := smoothMat.(*bsdf.Phong)
	if !ok {
		t.Fatalf("expected *bsdf.Phong, got %T", smoothMat)
	}
	roughPhongMat, ok := roughMat.(*bsdf.Phong)
	if !ok {
		t.Fatalf("expected *bsdf.Phong, got %T", roughMat)
	}

	if smoothPhongMat.Shininess <= roughPhongMat.Shininess {
		t.Errorf("smooth shininess %v should exceed rough shininess %v", smoothPhongMat.Shininess, roughPhongMat.Shininess)
	}
}

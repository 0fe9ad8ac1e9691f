package scene

import (
	"testing"

	"github.com/df07/go-vcm-tracer/pkg/renderer"
)

// captureLogger collects every Printf call instead of writing to stdout, so
// tests can assert on warnings without polluting test output.
type captureLogger struct{ lines []string }

func (c *captureLogger) Printf(format string, args ...interface{}) {
	c.lines = append(c.lines, format)
}

func TestNewCausticGlassSceneWithoutMesh(t *testing.T) {
	logger := &captureLogger{}
	s, camera := NewCausticGlassScene(false, logger)

	if s == nil || camera == nil {
		t.Fatal("NewCausticGlassScene returned a nil scene or camera")
	}

	// loadMesh=false should skip both PLY meshes but still wire lighting.
	if len(s.Shapes) != 0 {
		t.Errorf("shape count = %d, want 0 (meshes skipped)", len(s.Shapes))
	}
	if len(s.Lights) != 2 {
		t.Fatalf("light count = %d, want 2 (point + infinite)", len(s.Lights))
	}

	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
}

func TestCausticGlassCameraConfigDefaults(t *testing.T) {
	config := causticGlassCameraConfig()
	if config.Width != 525 || config.Height != 750 {
		t.Errorf("default dimensions = %dx%d, want 525x750", config.Width, config.Height)
	}
}

func TestCausticGlassCameraConfigOverride(t *testing.T) {
	config := causticGlassCameraConfig(renderer.CameraConfig{Width: 200, Height: 150})
	if config.Width != 200 || config.Height != 150 {
		t.Errorf("override dimensions = %dx%d, want 200x150", config.Width, config.Height)
	}
	// VFov wasn't overridden, so it should keep its default.
	if config.VFov != 30.0*1.5 {
		t.Errorf("VFov = %v, want %v", config.VFov, 30.0*1.5)
	}
}

func TestAddCausticGlassMeshMissingFile(t *testing.T) {
	s := NewScene()
	logger := &captureLogger{}

	addCausticGlassMesh(s, "does-not-exist.ply", nil, []string{"nowhere/"}, logger)

	if len(s.Shapes) != 0 {
		t.Errorf("shape count = %d, want 0 for a missing PLY file", len(s.Shapes))
	}
	if len(logger.lines) == 0 {
		t.Error("expected a warning to be logged for the missing file")
	}
}

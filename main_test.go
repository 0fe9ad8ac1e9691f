package main

import (
	"strings"
	"testing"

	"github.com/df07/go-vcm-tracer/pkg/renderer"
)

func TestCreateScene(t *testing.T) {
	logger := renderer.NewDefaultLogger()
	cameraOverride := renderer.CameraConfig{Width: 200, Height: 150}

	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		{"cornell scene", "cornell", false},
		{"caustic-glass scene", "caustic-glass", false},
		{"nonexistent PBRT path", "scenes/nonexistent.pbrt", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, camera, err := createScene(tt.sceneType, logger, cameraOverride)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for scene type %q, got none", tt.sceneType)
				}
				if sc != nil || camera != nil {
					t.Errorf("expected nil scene/camera for invalid scene type %q", tt.sceneType)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error for scene type %q: %v", tt.sceneType, err)
			}
			if sc == nil || camera == nil {
				t.Fatalf("expected non-nil scene and camera for scene type %q", tt.sceneType)
			}
			if camera.Width() <= 0 || camera.Height() <= 0 {
				t.Errorf("camera dimensions should be positive, got %dx%d", camera.Width(), camera.Height())
			}
			// caustic-glass's shapes depend on PLY mesh files that may not be
			// present in this environment; every other scene builds its
			// shapes in-process and should always have at least one.
			if tt.sceneType != "caustic-glass" && len(sc.Shapes) == 0 {
				t.Errorf("scene %q should have at least one shape", tt.sceneType)
			}
		})
	}
}

func TestCreateOutputDir(t *testing.T) {
	tests := []struct {
		sceneType    string
		expectedBase string
	}{
		{"cornell", "cornell"},
		{"caustic-glass", "caustic-glass"},
		{"scenes/cornell-empty.pbrt", "cornell-empty"},
		{"scenes/subdir/my-scene.pbrt", "my-scene"},
	}

	for _, tt := range tests {
		t.Run(tt.sceneType, func(t *testing.T) {
			outputDir := createOutputDir(tt.sceneType)

			if !strings.Contains(outputDir, tt.expectedBase) {
				t.Errorf("expected output dir to contain %q, got %q", tt.expectedBase, outputDir)
			}
			if !strings.HasPrefix(outputDir, "output") {
				t.Errorf("expected output dir to start with \"output\", got %q", outputDir)
			}
		})
	}
}

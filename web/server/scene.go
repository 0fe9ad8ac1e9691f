package server

import (
	"github.com/df07/go-vcm-tracer/pkg/core"
	"github.com/df07/go-vcm-tracer/pkg/renderer"
	"github.com/df07/go-vcm-tracer/pkg/scene"
)

// createScene builds the scene and camera req.Scene names. configOnly skips
// the (slow) caustic-glass PLY mesh load, for endpoints that only need the
// camera/settings shape (scene-config, inspect's bounds validation) rather
// than a traceable scene.
func (s *Server) createScene(req *RenderRequest, configOnly bool, logger core.Logger) (*scene.Scene, *renderer.Camera) {
	override := renderer.CameraConfig{Width: req.Width, Height: req.Height}

	switch req.Scene {
	case "cornell":
		sc, camera := scene.NewCornellScene()
		return sc, camera
	case "caustic-glass":
		if logger == nil {
			logger = renderer.NewDefaultLogger()
		}
		sc, camera := scene.NewCausticGlassScene(!configOnly, logger, override)
		return sc, camera
	default:
		sc, camera, err := scene.NewPBRTScene(req.Scene, override)
		if err != nil {
			return nil, nil
		}
		return sc, camera
	}
}

package scene

import (
	"os"
	"time"

	"github.com/df07/go-vcm-tracer/pkg/bsdf"
	"github.com/df07/go-vcm-tracer/pkg/core"
	"github.com/df07/go-vcm-tracer/pkg/geometry"
	"github.com/df07/go-vcm-tracer/pkg/loaders"
	"github.com/df07/go-vcm-tracer/pkg/renderer"
)

// NewCausticGlassScene builds the glass-caustic torture scene from the
// PBRT "glass" reference scene: a point light standing in for PBRT's spot
// light (this renderer has no cone-restricted light type, so the full
// sphere of intensity is emitted; the caustic geometry below the light
// dominates the image regardless), an infinite ambient fill light, and two
// PLY meshes -- a dielectric glass mesh and a rough diffuse floor mesh.
// loadMesh lets callers skip the (slow) PLY load when only probing camera
// framing.
func NewCausticGlassScene(loadMesh bool, logger core.Logger, cameraOverrides ...renderer.CameraConfig) (*Scene, *renderer.Camera) {
	s := NewScene()

	cameraConfig := causticGlassCameraConfig(cameraOverrides...)
	camera := renderer.NewCamera(cameraConfig)

	addCausticGlassLighting(s)

	if loadMesh {
		addCausticGlassMeshes(s, logger)
	} else {
		logger.Printf("caustic glass scene created without meshes\n")
	}

	return s, camera
}

// causticGlassCameraConfig mirrors the PBRT scene's LookAt/fov:
//
//	LookAt -5.5 7 -5.5, -4.75 2.25 0, 0 1 0
//	Camera "perspective" "float fov" [ 30 ]
//
// with the film's 1050x1500 resolution halved and PBRT's 1.5 scale folded
// into the vertical FOV (scale > 1 zooms out).
func causticGlassCameraConfig(overrides ...renderer.CameraConfig) renderer.CameraConfig {
	config := renderer.CameraConfig{
		Center: core.NewVec3(-5.5, 7, -5.5),
		LookAt: core.NewVec3(-4.75, 2.25, 0),
		Up:     core.NewVec3(0, 1, 0),
		Width:  525,
		Height: 750,
		VFov:   30.0 * 1.5,
	}
	if len(overrides) > 0 {
		o := overrides[0]
		if o.Width > 0 {
			config.Width = o.Width
		}
		if o.Height > 0 {
			config.Height = o.Height
		}
		if o.VFov > 0 {
			config.VFov = o.VFov
		}
	}
	return config
}

// addCausticGlassLighting adds the PBRT scene's two light sources:
//
//	LightSource "spot" "point from" [0 5 9] "point to" [-5 2.75 0] "rgb I" [139.81 118.64 105.39]
//	LightSource "infinite" "rgb L" [0.1 0.1 0.1]
func addCausticGlassLighting(s *Scene) {
	spotFrom := core.NewVec3(0, 5, 9)
	spotIntensity := core.NewVec3(139.8113403320, 118.6366500854, 105.3887557983)
	s.AddPointLight(spotFrom, spotIntensity)
	s.AddInfiniteLight(core.NewVec3(0.1, 0.1, 0.1))
}

func addCausticGlassMeshes(s *Scene, logger core.Logger) {
	basePaths := []string{
		"models/caustic-glass/geometry/",
		"../models/caustic-glass/geometry/",
	}

	// Material "glass" "float index" [1.25]
	addCausticGlassMesh(s, "mesh_00001.ply", bsdf.NewDielectric(core.Vec3{X: 1, Y: 1, Z: 1}, 1.25), basePaths, logger)

	// Material "uber" "rgb Kd" [0.64 0.64 0.64]; approximated as Lambertian.
	floorAlbedo := core.NewVec3(0.6399999857, 0.6399999857, 0.6399999857)
	addCausticGlassMesh(s, "mesh_00002.ply", bsdf.NewLambertian(floorAlbedo), basePaths, logger)
}

func addCausticGlassMesh(s *Scene, filename string, material bsdf.BSDF, basePaths []string, logger core.Logger) {
	var meshPath string
	for _, base := range basePaths {
		path := base + filename
		if _, err := os.Stat(path); err == nil {
			meshPath = path
			break
		}
	}
	if meshPath == "" {
		logger.Printf("warning: %s not found under any of %v\n", filename, basePaths)
		return
	}

	logger.Printf("loading %s from %s...\n", filename, meshPath)
	start := time.Now()
	plyData, err := loaders.LoadPLY(meshPath)
	if err != nil {
		logger.Printf("error loading %s: %v\n", filename, err)
		return
	}
	logger.Printf("ply data loaded: %d vertices, %d triangles in %v\n",
		len(plyData.Vertices), len(plyData.Faces)/3, time.Since(start))

	// PLY normals are per-vertex; TriangleMesh wants per-triangle normals, so
	// leave options nil and let the mesh derive them from each triangle.
	mesh := geometry.NewTriangleMesh(plyData.Vertices, plyData.Faces, material, nil)
	logger.Printf("triangle mesh built: %d triangles\n", mesh.TriangleCount())

	s.Shapes = append(s.Shapes, mesh)
}

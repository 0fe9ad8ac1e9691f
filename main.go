package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-vcm-tracer/pkg/core"
	"github.com/df07/go-vcm-tracer/pkg/integrator"
	"github.com/df07/go-vcm-tracer/pkg/renderer"
	"github.com/df07/go-vcm-tracer/pkg/scene"
)

func main() {
	sceneType := flag.String("scene", "cornell", "Scene: 'cornell', 'caustic-glass', or a .pbrt file path")
	mode := flag.String("mode", "vcm", "Transport mode: pt, lt, bpt, ppm, vcm, sppm, twpt")
	width := flag.Int("width", 400, "Image width")
	height := flag.Int("height", 400, "Image height")
	iterations := flag.Int("iterations", 8, "Number of VCM iterations to accumulate")
	nLightPaths := flag.Int("light-paths", 0, "Light subpaths per iteration (0 = width*height)")
	maxPathLength := flag.Int("max-path-length", 12, "Maximum bounces per subpath (0 = unbounded, RR only)")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("VCM Raytracer")
		fmt.Println("Usage: raytracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Built-in scenes: cornell, caustic-glass")
		fmt.Println("Any other -scene value is loaded as a PBRT scene file.")
		fmt.Println()
		fmt.Println("Output is saved to output/<scene>/render_<timestamp>.png")
		return
	}

	transportMode, err := core.ParseMode(*mode)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	logger := renderer.NewDefaultLogger()
	sc, camera, err := createScene(*sceneType, logger, renderer.CameraConfig{Width: *width, Height: *height})
	if err != nil {
		fmt.Printf("Error creating scene: %v\n", err)
		return
	}
	if err := sc.Preprocess(); err != nil {
		fmt.Printf("Error preprocessing scene: %v\n", err)
		return
	}

	settings := core.DefaultSettings(camera.Width(), camera.Height())
	settings.Mode = transportMode
	if *nLightPaths > 0 {
		settings.NLightPaths = *nLightPaths
	}
	settings.MaxPathLength = *maxPathLength
	settings.BaseRadius = sc.BVH.Radius * 0.01

	fmt.Printf("Rendering %s scene in %s mode (%dx%d, %d iterations)...\n",
		*sceneType, transportMode, camera.Width(), camera.Height(), *iterations)

	integ := integrator.New(sc, camera, settings)

	startTime := time.Now()
	for i := 1; i <= *iterations; i++ {
		integ.RenderIteration(i)
	}
	renderTime := time.Since(startTime)
	fmt.Printf("Render completed in %v\n", renderTime)

	outputDir := createOutputDir(*sceneType)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		fmt.Printf("Error creating file: %v\n", err)
		return
	}
	defer file.Close()

	if err := png.Encode(file, integ.Image.ToRGBA()); err != nil {
		fmt.Printf("Error saving PNG: %v\n", err)
		return
	}

	fmt.Printf("Render saved as %s\n", filename)
}

// createScene builds a scene and camera for name: the two built-in scenes,
// or any other value interpreted as a PBRT scene file path.
func createScene(name string, logger core.Logger, cameraOverride renderer.CameraConfig) (*scene.Scene, *renderer.Camera, error) {
	switch name {
	case "":
		return nil, nil, fmt.Errorf("scene name must not be empty")
	case "cornell":
		sc, camera := scene.NewCornellScene()
		return sc, camera, nil
	case "caustic-glass":
		sc, camera := scene.NewCausticGlassScene(true, logger, cameraOverride)
		return sc, camera, nil
	default:
		sc, camera, err := scene.NewPBRTScene(name, cameraOverride)
		if err != nil {
			return nil, nil, fmt.Errorf("unknown scene %q: %w", name, err)
		}
		return sc, camera, nil
	}
}

// createOutputDir returns the output/<base> directory for a scene name,
// deriving base from the final path component minus any .pbrt extension.
func createOutputDir(sceneType string) string {
	base := filepath.Base(sceneType)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "scene"
	}
	return filepath.Join("output", base)
}

// Package server exposes the VCM renderer over HTTP: progressive
// server-sent-event rendering, a scene-config endpoint for the preview UI's
// controls, and a ray-cast inspection endpoint for clicking an object in
// the preview image. Grounded on the teacher's own web/server package
// (same SSE/console-streaming architecture), rebuilt to drive
// pkg/integrator.Integrator instead of the teacher's ProgressiveRaytracer.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

// Server handles web requests for the VCM raytracer.
type Server struct {
	port int
}

// NewServer creates a new web server listening on port.
func NewServer(port int) *Server {
	return &Server{port: port}
}

// RenderRequest represents a render (or inspect) request's common and
// render-specific parameters, parsed and validated from the query string.
type RenderRequest struct {
	Scene         string `json:"scene"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Mode          string `json:"mode"`
	Iterations    int    `json:"iterations"`
	NLightPaths   int    `json:"nLightPaths"`
	MaxPathLength int    `json:"maxPathLength"`
	RRMinBounces  int    `json:"rrMinBounces"`
}

// Start registers routes and serves the preview UI and API.
func (s *Server) Start() error {
	http.Handle("/", http.FileServer(http.Dir("static/")))

	http.HandleFunc("/api/render", s.handleRender)
	http.HandleFunc("/api/inspect", s.handleInspect)
	http.HandleFunc("/api/health", s.handleHealth)
	http.HandleFunc("/api/scene-config", s.handleSceneConfig)

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, nil)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleSceneConfig returns the default render settings and validation
// limits the preview UI's controls are built from.
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "cornell"
	}

	defaults := core.DefaultSettings(400, 400)
	response := map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"mode":          defaults.Mode.String(),
			"nLightPaths":   defaults.NLightPaths,
			"maxPathLength": defaults.MaxPathLength,
			"rrMinBounces":  defaults.RRMinBounces,
		},
		"limits": map[string]interface{}{
			"width":         map[string]int{"min": 100, "max": 2000},
			"height":        map[string]int{"min": 100, "max": 2000},
			"iterations":    map[string]int{"min": 1, "max": 10000},
			"maxPathLength": map[string]int{"min": 0, "max": 64},
			"rrMinBounces":  map[string]int{"min": 1, "max": 64},
		},
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// parseCommonSceneParams fills in the scene/width/height/mode fields every
// endpoint (render, inspect, scene-config) needs, applying defaults and
// range validation.
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	q := r.URL.Query()

	req.Scene = q.Get("scene")
	if req.Scene == "" {
		req.Scene = "cornell"
	}
	req.Mode = q.Get("mode")
	if req.Mode == "" {
		req.Mode = "vcm"
	}
	if _, err := core.ParseMode(req.Mode); err != nil {
		return err
	}

	var err error
	if req.Width, err = parseIntParam(q, "width", 400, 100, 2000); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(q, "height", 400, 100, 2000); err != nil {
		return err
	}
	return nil
}

func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
	}
	return parsed, nil
}

func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
	}
	return parsed, nil
}

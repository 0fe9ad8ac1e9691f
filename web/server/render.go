package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	stdimage "image"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-vcm-tracer/pkg/core"
	"github.com/df07/go-vcm-tracer/pkg/integrator"
	"github.com/df07/go-vcm-tracer/pkg/scene"
	"github.com/google/uuid"
)

// SSEEvent is a single thread-safe SSE message; every render goroutine
// writes through sseEventChan instead of the ResponseWriter directly,
// since http.ResponseWriter is not safe for concurrent writes.
type SSEEvent struct {
	Type string `json:"type"` // "console", "iteration", "error", "complete"
	Data string `json:"data"`
}

// IterationUpdate is sent once per completed VCM iteration: a snapshot of
// the accumulated image plus progress stats.
type IterationUpdate struct {
	Iteration   int    `json:"iteration"`
	Iterations  int    `json:"iterations"`
	ImageData   string `json:"imageData"` // base64-encoded PNG snapshot
	ElapsedMs   int64  `json:"elapsedMs"`
}

// RenderingPipeline pairs a scene with the integrator tracing it.
type RenderingPipeline struct {
	Scene      *scene.Scene
	Integrator *integrator.Integrator
}

// handleRender runs a progressive VCM render, streaming one IterationUpdate
// per completed iteration over SSE. Grounded on the teacher's own
// handleRender (same unified-SSE-writer-goroutine plus console-streaming
// architecture), adapted from the teacher's pass/tile callbacks onto
// Integrator.RenderIteration's simpler one-call-per-iteration shape.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	sseEventChan := make(chan SSEEvent, 100)
	go s.writeSSEEvents(w, ctx, sseEventChan)

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("invalid request: %v", err))
		return
	}

	consoleChan, webLogger := s.setupConsoleLogging()
	go s.streamConsoleMessages(ctx, consoleChan, sseEventChan)

	pipeline, err := s.setupRenderingPipeline(req, webLogger)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	startTime := time.Now()
	for iter := 1; iter <= req.Iterations; iter++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pipeline.Integrator.RenderIteration(iter)
		s.sendIterationUpdate(ctx, sseEventChan, pipeline, iter, req.Iterations, startTime)
	}

	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "rendering completed"}:
	case <-ctx.Done():
	}
}

func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := uuid.NewString()
	return consoleChan, NewWebLogger(renderID, consoleChan)
}

// writeSSEEvents is the single goroutine allowed to write to w, since
// http.ResponseWriter has no concurrent-write guarantee.
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for {
		select {
		case consoleMsg, ok := <-consoleChan:
			if !ok {
				return
			}
			data, err := json.Marshal(consoleMsg)
			if err != nil {
				log.Printf("error marshaling console message: %v", err)
				continue
			}
			select {
			case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			case <-ctx.Done():
				return
			default:
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) setupRenderingPipeline(req *RenderRequest, logger core.Logger) (*RenderingPipeline, error) {
	sceneObj, camera := s.createScene(req, false, logger)
	if sceneObj == nil {
		return nil, fmt.Errorf("unknown scene: %s", req.Scene)
	}
	if err := sceneObj.Preprocess(); err != nil {
		return nil, fmt.Errorf("preprocessing scene: %w", err)
	}

	mode, err := core.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	settings := core.DefaultSettings(camera.Width(), camera.Height())
	settings.Mode = mode
	if req.NLightPaths > 0 {
		settings.NLightPaths = req.NLightPaths
	}
	if req.MaxPathLength > 0 {
		settings.MaxPathLength = req.MaxPathLength
	}
	if req.RRMinBounces > 0 {
		settings.RRMinBounces = req.RRMinBounces
	}
	settings.BaseRadius = sceneObj.BVH.Radius * 0.01

	return &RenderingPipeline{
		Scene:      sceneObj,
		Integrator: integrator.New(sceneObj, camera, settings),
	}, nil
}

func (s *Server) sendIterationUpdate(ctx context.Context, sseEventChan chan SSEEvent, pipeline *RenderingPipeline, iteration, iterations int, startTime time.Time) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	imageData, err := s.imageToBase64PNG(pipeline.Integrator.Image.ToRGBA())
	if err != nil {
		log.Printf("error encoding iteration %d image: %v", iteration, err)
		return
	}

	update := IterationUpdate{
		Iteration:  iteration,
		Iterations: iterations,
		ImageData:  imageData,
		ElapsedMs:  time.Since(startTime).Milliseconds(),
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("error marshaling iteration update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "iteration", Data: string(data)}:
	case <-ctx.Done():
	}
}

func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	var err error
	if req.Iterations, err = parseIntParam(r.URL.Query(), "iterations", 8, 1, 10000); err != nil {
		return nil, err
	}
	if req.NLightPaths, err = parseIntParam(r.URL.Query(), "nLightPaths", 0, 0, 10_000_000); err != nil {
		return nil, err
	}
	if req.MaxPathLength, err = parseIntParam(r.URL.Query(), "maxPathLength", 12, 0, 64); err != nil {
		return nil, err
	}
	if req.RRMinBounces, err = parseIntParam(r.URL.Query(), "rrMinBounces", 4, 1, 64); err != nil {
		return nil, err
	}

	if req.Width*req.Height > 800*600 && req.Iterations > 100 {
		log.Printf("render warning: large image with many iterations may render slowly")
	}

	return req, nil
}

func (s *Server) imageToBase64PNG(img stdimage.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
	}
}

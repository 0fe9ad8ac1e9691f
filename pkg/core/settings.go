package core

import "fmt"

// Mode selects which light transport techniques a render pass combines.
// The VCM integrator (pkg/integrator) dispatches on this to enable or
// disable entire phases (light tracing, vertex merging, ...) rather than
// branching throughout the transport code.
type Mode int

const (
	// ModePT is unidirectional path tracing from the camera, with next
	// event estimation at every non-specular vertex.
	ModePT Mode = iota
	// ModeLT is light tracing: every non-specular light vertex connects to
	// the camera. Camera paths still bounce, but only add emission they hit
	// directly (no NEE, connection or merging).
	ModeLT
	// ModeBPT is bidirectional path tracing: camera and light subpaths are
	// combined by connection only (no merging).
	ModeBPT
	// ModePPM is progressive photon mapping: light paths deposit photons,
	// camera paths gather by merging only (no connection).
	ModePPM
	// ModeVCM is the full vertex connection and merging estimator: camera
	// and light subpaths are combined by both connection and merging,
	// balance-heuristic weighted against each other via dVCM/dVC/dVM.
	ModeVCM
	// ModeSPPM is stochastic progressive photon mapping: one camera path
	// per pixel per iteration, radius shrinks according to the progressive
	// schedule, merging only.
	ModeSPPM
	// ModeTWPT is traditional (unidirectional) path tracing without NEE,
	// used as a reference/ground-truth mode for variance comparisons.
	ModeTWPT
)

func (m Mode) String() string {
	switch m {
	case ModePT:
		return "pt"
	case ModeLT:
		return "lt"
	case ModeBPT:
		return "bpt"
	case ModePPM:
		return "ppm"
	case ModeVCM:
		return "vcm"
	case ModeSPPM:
		return "sppm"
	case ModeTWPT:
		return "twpt"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a CLI/query-string mode name to a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "pt":
		return ModePT, nil
	case "lt":
		return ModeLT, nil
	case "bpt":
		return ModeBPT, nil
	case "ppm":
		return ModePPM, nil
	case "vcm":
		return ModeVCM, nil
	case "sppm":
		return ModeSPPM, nil
	case "twpt":
		return ModeTWPT, nil
	default:
		return 0, fmt.Errorf("core: unknown mode %q", name)
	}
}

// UsesConnection reports whether this mode combines subpaths by vertex
// connection between camera and cached light vertices (bidirectional path
// tracing). NEE and connect-to-camera are gated separately.
func (m Mode) UsesConnection() bool {
	switch m {
	case ModeBPT, ModeVCM:
		return true
	default:
		return false
	}
}

// UsesMerging reports whether this mode combines subpaths by vertex merging
// (photon density estimation).
func (m Mode) UsesMerging() bool {
	switch m {
	case ModePPM, ModeVCM, ModeSPPM:
		return true
	default:
		return false
	}
}

// UsesLightTracing reports whether light subpaths connect directly to the
// camera (as opposed to only being used for NEE/merging against camera
// subpaths).
func (m Mode) UsesLightTracing() bool {
	switch m {
	case ModeLT, ModeBPT, ModeVCM:
		return true
	default:
		return false
	}
}

// Settings configures a single render: image dimensions, transport mode,
// and the tuning parameters the VCM estimator needs (path counts, merge
// radius schedule, tile granularity). Unlike the teacher's per-scene
// SamplingConfig, NLightPaths is never inferred from SamplesPerPixel: VCM's
// unbiasedness depends on the light-path count being known exactly when
// computing dVCM, so it is a required field.
type Settings struct {
	Width, Height int

	// Mode selects which techniques this render combines.
	Mode Mode

	// SamplesPerPixel is the number of camera paths traced per pixel per
	// iteration (almost always 1 for progressive modes; the image refines
	// over many iterations instead).
	SamplesPerPixel int

	// NLightPaths is the number of light subpaths traced per iteration.
	// Required: it directly scales the vertex-merging normalization
	// constant (eta_vcm) and the 1/NLightPaths connect-to-camera weight,
	// so it cannot be derived from any other setting.
	NLightPaths int

	// MaxPathLength is a hard cap on camera and light subpath length;
	// Russian roulette may end a path earlier. 0 means unbounded (RR only).
	MaxPathLength int

	// RRMinBounces is the number of bounces below which Russian roulette
	// never kills a path.
	RRMinBounces int

	// BaseRadius is the initial photon-merge search radius (r_0 in the
	// progressive radius schedule). The integrator uses it as given; a zero
	// value is not replaced by a radius derived from the scene bounds.
	BaseRadius float64

	// RadiusAlpha is the alpha exponent of the progressive radius
	// schedule r_i = r_0 * i^(-0.5*(1-alpha)). Georgiev et al. recommend
	// 0.75; 0 is treated as "use the default".
	RadiusAlpha float64

	// NumConnections bounds how many light-path vertices each camera vertex
	// attempts to connect to per iteration (0 means "all cached vertices").
	NumConnections int

	// TileSize is the edge length, in pixels, of the tiles the scheduler
	// hands to worker goroutines.
	TileSize int
}

// DefaultSettings returns settings tuned for a quick interactive preview.
func DefaultSettings(width, height int) Settings {
	return Settings{
		Width:           width,
		Height:          height,
		Mode:            ModeVCM,
		SamplesPerPixel: 1,
		NLightPaths:     width * height,
		MaxPathLength:   12,
		RRMinBounces:    4,
		RadiusAlpha:     0.75,
		NumConnections:  0,
		TileSize:        32,
	}
}

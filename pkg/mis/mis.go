// Package mis implements the vertex connection and merging (VCM) partial
// multiple-importance-sampling weights: the dVCM/dVC/dVM state each path
// vertex carries so that any of the four combination techniques (direct
// hit, next-event estimation, vertex connection, vertex merging) can
// recompute a balance-heuristic weight in O(1), without re-walking the
// whole path. The recurrences and combination formulas below follow
// Georgiev et al.'s "Light Transport Simulation with Vertex Connection and
// Merging" and its SmallVCM/imbatracer reference implementations; see
// DESIGN.md for the exact grounding.
package mis

import "math"

// State is the MIS bookkeeping carried alongside a single path vertex.
type State struct {
	DVCM float64 // partial weight for the "this vertex sampled by the other technique's density" term
	DVC  float64 // partial weight for vertex-connection techniques
	DVM  float64 // partial weight for vertex-merging techniques
}

// Engine holds the per-iteration scalars the weight formulas need: how many
// light subpaths were traced (light tracing's 1/N factor) and the current
// photon-merge search radius (which sets eta_vcm, the connection/merging
// balance factor).
type Engine struct {
	NLightPaths int
	Radius      float64
	Merging     bool // true when this render's Mode combines by vertex merging
}

// NewEngine creates a weighting engine for one iteration.
func NewEngine(nLightPaths int, radius float64, merging bool) *Engine {
	return &Engine{NLightPaths: nLightPaths, Radius: radius, Merging: merging}
}

// etaVCM is the ratio that balances the connection and merging estimators:
// pi * r^2 * N, the effective "number of samples" a merge event represents
// relative to a single connection.
func (e *Engine) etaVCM() float64 {
	if !e.Merging || e.Radius <= 0 {
		return 0
	}
	return math.Pi * e.Radius * e.Radius * float64(e.NLightPaths)
}

// misWeightVC is the connection-technique scale factor (1/eta_vcm when
// merging is enabled; 1 when it is not, which reduces every formula below
// to the plain bidirectional balance heuristic).
func (e *Engine) misWeightVC() float64 {
	if !e.Merging {
		return 1
	}
	eta := e.etaVCM()
	if eta <= 0 {
		return 1
	}
	return 1.0 / eta
}

// misWeightVM is the merging-technique scale factor (eta_vcm, or 0 when
// this render's mode never merges).
func (e *Engine) misWeightVM() float64 {
	if !e.Merging {
		return 0
	}
	return e.etaVCM()
}

// InitLight returns the MIS state of the first vertex of a light subpath.
// pdfEmitW is the solid-angle PDF of the sampled emission direction,
// pdfDirectA is the area PDF NEE would have used to sample this same point
// directly, cosOut is the emission cosine at the light surface, and
// lightPickPDF is the probability of having chosen this light among all
// lights in the scene. delta lights (point lights) never accumulate a
// dVC/dVM contribution, since no connection or merge technique can hit an
// idealized point.
func (e *Engine) InitLight(pdfEmitW, pdfDirectA, cosOut, lightPickPDF float64, delta bool) State {
	s := State{DVCM: pdfDirectA / pdfEmitW}
	if !delta && pdfEmitW > 0 {
		s.DVC = cosOut / (pdfEmitW * lightPickPDF)
	}
	s.DVM = s.DVC * e.misWeightVC()
	return s
}

// InitCamera returns the MIS state of the camera's root vertex. pdfCameraW
// is the solid-angle PDF of the sampled camera ray direction.
func (e *Engine) InitCamera(pdfCameraW float64) State {
	if pdfCameraW <= 0 {
		return State{}
	}
	return State{DVCM: float64(e.NLightPaths) / pdfCameraW}
}

// Bounce advances a vertex's MIS state across a scattering event: cosOut is
// the cosine of the sampled outgoing direction against the shading normal,
// pdfDirW/pdfRevW are the forward and reverse solid-angle PDFs of that
// scattering event, and specular marks a delta-BSDF bounce (mirror,
// dielectric), where forward and reverse PDFs are meaningless and the
// connection/merge contributions instead just carry the cosine/PDF ratio
// through unchanged.
func (e *Engine) Bounce(s State, cosOut, pdfDirW, pdfRevW float64, specular bool) State {
	if specular {
		return State{
			DVCM: 0,
			DVC:  s.DVC * cosOut,
			DVM:  s.DVM * cosOut,
		}
	}
	if pdfDirW <= 0 {
		return State{}
	}
	scale := cosOut / pdfDirW
	return State{
		DVCM: 1.0 / pdfDirW,
		DVC:  scale * (s.DVC*pdfRevW + s.DVCM + e.misWeightVM()),
		DVM:  scale * (s.DVM*pdfRevW + s.DVCM*e.misWeightVC() + 1.0),
	}
}

// WeightDirectHit combines the "camera path lands on a light" technique
// with NEE and connection at that same vertex: pdfDirectA is the area PDF
// NEE would use to sample this point, pdfEmitW is the emission PDF this
// point/direction would have had as a light-subpath start.
func (e *Engine) WeightDirectHit(camera State, pdfDirectA, pdfEmitW float64) float64 {
	w := pdfDirectA*camera.DVCM + pdfEmitW*camera.DVC
	return 1.0 / (1.0 + w)
}

// WeightNEE combines next-event estimation against the direct-hit and
// vertex-connection techniques that could also have produced this sample:
// pdfDirectW is NEE's own solid-angle PDF, pdfBSDFDirW is the probability
// the shading BSDF would have sampled this same direction, and
// pdfEmitDirW is the emission PDF at the light end (used to weight against
// connection/merging via the light-side dVCM/dVC).
func (e *Engine) WeightNEE(camera State, pdfDirectW, pdfBSDFDirW, pdfEmitDirW, pdfBSDFRevW float64) float64 {
	if pdfDirectW <= 0 {
		return 0
	}
	wLight := pdfBSDFDirW / pdfDirectW
	wCamera := (pdfEmitDirW / pdfDirectW) * (e.misWeightVM() + camera.DVCM + camera.DVC*pdfBSDFRevW)
	return 1.0 / (1.0 + wLight + wCamera)
}

// WeightConnectToCamera combines light tracing's "connect this light vertex
// straight to the camera" technique against NEE/BSDF sampling from the
// camera side: pdfCameraW is the camera importance PDF of the direction
// toward the light vertex.
func (e *Engine) WeightConnectToCamera(lightVertex State, pdfCameraW, pdfLightRevW float64) float64 {
	if e.NLightPaths == 0 {
		return 0
	}
	w := (pdfCameraW / float64(e.NLightPaths)) * (e.misWeightVM() + lightVertex.DVCM + lightVertex.DVC*pdfLightRevW)
	return 1.0 / (w + 1.0)
}

// WeightConnection combines a bidirectional vertex connection (joining a
// camera subpath vertex to a light subpath vertex) against every other
// technique that could reach either vertex: the four PDFs are the forward
// and reverse solid-angle densities the two BSDFs assign to the connecting
// direction.
func (e *Engine) WeightConnection(camera, lightVertex State, cameraBSDFDirW, cameraBSDFRevW, lightBSDFDirW, lightBSDFRevW float64) float64 {
	wLight := cameraBSDFDirW * (e.misWeightVM() + lightVertex.DVCM + lightVertex.DVC*lightBSDFRevW)
	wCamera := lightBSDFDirW * (e.misWeightVM() + camera.DVCM + camera.DVC*cameraBSDFRevW)
	return 1.0 / (wLight + 1.0 + wCamera)
}

// WeightMerge combines a photon-merge event against connection at the same
// two vertices: cameraBSDFDirW/lightBSDFDirW are the solid-angle densities
// each subpath's BSDF assigns to the direction toward the other vertex.
func (e *Engine) WeightMerge(camera, lightVertex State, cameraBSDFDirW, lightBSDFDirW float64) float64 {
	vc := e.misWeightVC()
	wLight := lightVertex.DVCM*vc + lightVertex.DVM*cameraBSDFDirW
	wCamera := camera.DVCM*vc + camera.DVM*lightBSDFDirW
	return 1.0 / (wLight + 1.0 + wCamera)
}

// Package transport implements the per-event path processing policies the
// VCM integrator drives every traced ray through: bounce, connect-to-camera,
// next-event estimation, vertex connection, and vertex merging. Each
// operation is grounded on imbatracer's VCMIntegrator
// (original_source/.../vcm.cpp), translated from its template-bool-flagged
// C++ methods into plain Go functions that consult core.Settings.Mode
// instead.
package transport

import (
	"math"

	"github.com/df07/go-vcm-tracer/pkg/core"
	"github.com/df07/go-vcm-tracer/pkg/geometry"
	"github.com/df07/go-vcm-tracer/pkg/light"
	"github.com/df07/go-vcm-tracer/pkg/mis"
	"github.com/df07/go-vcm-tracer/pkg/photon"
	"github.com/df07/go-vcm-tracer/pkg/queue"
)

// rayOffset nudges shadow/secondary ray origins off the surface they were
// spawned from, avoiding self-intersection at the originating point.
const rayOffset = 1e-4

// Scene is the minimal view the path processor needs of the scene: ray
// intersection and occlusion queries. The lights to sample come from
// Processor.Lights, not from the scene.
type Scene interface {
	Hit(ray core.Ray, tMin, tMax float64) (*geometry.SurfaceInteraction, bool)
	Occluded(ray core.Ray, tMin, tMax float64) bool
}

// Camera is the minimal view the path processor needs of the camera, for
// connect-to-camera's raster projection.
type Camera interface {
	Position() core.Vec3
	Forward() core.Vec3
	ImagePlaneDist() float64
	WorldToRaster(point core.Vec3) (x, y float64, ok bool)
	RasterToID(x, y float64) (id int, ok bool)
}

// Processor holds everything the four combination operations need in
// common: the scene to trace against, the light sampler, the camera to
// connect to, the MIS weighting engine for the current iteration, and the
// render settings that bound path length and Russian roulette.
type Processor struct {
	Scene    Scene
	Camera   Camera
	Lights   *light.Sampler
	MIS      *mis.Engine
	Settings core.Settings
	Radius   float64 // current iteration's photon-merge search radius
}

// russianRoulette decides whether to continue a path whose accumulated
// throughput is given, returning the survival probability (1 if this
// bounce is below the minimum forced-continuation depth). Grounded on
// imbatracer's russian_roulette: continuation probability scales with the
// path's luminance so bright paths survive more often than dim ones.
func russianRoulette(throughput core.Vec3, depth, minBounces int, u float64) (pdf float64, continue_ bool) {
	if depth < minBounces {
		return 1, true
	}
	pdf = math.Min(1, throughput.Luminance())
	if pdf <= 0 {
		return 0, false
	}
	return pdf, u < pdf
}

// Bounce importance-samples the BSDF at a path vertex, advances the
// vertex's MIS state, and pushes a new PathRay for the sampled direction.
// adjoint is true for light-subpath bounces (the BSDF must use the
// shading-normal correction since the path is traced against the light's
// natural transport direction).
func (p *Processor) Bounce(ray queue.PathRay, si *geometry.SurfaceInteraction, sampler core.Sampler, rayQueue *queue.RayQueue, adjoint bool) {
	maxLen := p.Settings.MaxPathLength
	if maxLen > 0 && ray.Depth >= maxLen {
		return
	}

	rrPDF, ok := russianRoulette(ray.Throughput, ray.Depth, p.Settings.RRMinBounces, sampler.Get1D())
	if !ok {
		return
	}

	wo := rayDirToWo(ray.Ray.Direction)

	scatter, ok := si.BSDF.Sample(wo, si.Normal, si.GeomNormal, sampler, adjoint)
	if !ok || scatter.PDF < 0 || (scatter.F == core.Vec3{} && !scatter.Specular) {
		return
	}

	cosThetaI := math.Abs(scatter.Wi.Dot(si.Normal))

	var pdfRevW float64
	if !scatter.Specular {
		pdfRevW = si.BSDF.PDF(scatter.Wi, wo, si.Normal)
	} else {
		pdfRevW = scatter.PDF
	}

	newState := p.MIS.Bounce(ray.MIS, cosThetaI, scatter.PDF*rrPDF, pdfRevW*rrPDF, scatter.Specular)

	// scatter.F already carries the Veach shading-normal correction when
	// adjoint is true (every non-specular BSDF bakes it into Eval), so the
	// throughput update here always uses the plain shading cosine.
	throughput := ray.Throughput.MultiplyVec(scatter.F).Multiply(cosThetaI / (rrPDF * scatter.PDF))

	rayQueue.Push(queue.PathRay{
		Ray:          core.NewRay(si.Point.Add(scatter.Wi.Multiply(rayOffset)), scatter.Wi),
		TMax:         math.Inf(1),
		Throughput:   throughput,
		MIS:          newState,
		PathID:       ray.PathID,
		PixelX:       ray.PixelX,
		PixelY:       ray.PixelY,
		Depth:        ray.Depth + 1,
		Specular:     scatter.Specular,
		LightPath:    ray.LightPath,
		RNGSeed:      ray.RNGSeed,
		ContinueProb: rrPDF,
	})
}

// rayDirToWo returns the outgoing direction (toward the previous vertex)
// given the incoming ray's travel direction.
func rayDirToWo(rayDir core.Vec3) core.Vec3 {
	return rayDir.Negate()
}

// ConnectToCamera projects a light-path vertex onto the camera's image
// plane and, if visible, pushes a weighted shadow ray toward the camera.
// Grounded on imbatracer's connect_to_camera: rejects vertices behind the
// camera or outside the image plane; the BSDF is evaluated with adjoint=true
// since this connection is made against the light's natural transport
// direction.
func (p *Processor) ConnectToCamera(lv queue.LightVertex, si *geometry.SurfaceInteraction, shadowOut *queue.RayQueue) {
	dirToCam := p.Camera.Position().Subtract(si.Point)
	if dirToCam.Dot(p.Camera.Forward().Negate()) < 0 {
		return
	}

	px, py, ok := p.Camera.WorldToRaster(si.Point)
	if !ok {
		return
	}
	pixelID, ok := p.Camera.RasterToID(px, py)
	if !ok {
		return
	}

	distSq := dirToCam.LengthSquared()
	dist := math.Sqrt(distSq)
	dirToCam = dirToCam.Multiply(1.0 / dist)

	cosThetaI := math.Abs(p.Camera.Forward().Dot(dirToCam.Negate()))
	wo := lv.Wo
	// bsdfValue below already carries the shading-normal correction
	// (adjoint=true), so the geometric term uses the plain cosine.
	cosThetaO := math.Abs(si.Normal.Dot(dirToCam))

	bsdfValue := si.BSDF.Eval(wo, dirToCam, si.Normal, si.GeomNormal, true)
	pdfRevW := si.BSDF.PDF(dirToCam, wo, si.Normal) * lv.ContinueProb

	imgToSurf := (p.Camera.ImagePlaneDist() * p.Camera.ImagePlaneDist() * cosThetaO) /
		(distSq * cosThetaI * cosThetaI * cosThetaI)
	if imgToSurf <= 0 || math.IsInf(imgToSurf, 0) {
		return
	}

	misWeight := p.MIS.WeightConnectToCamera(lv.MIS, imgToSurf, pdfRevW)

	contribution := lv.Throughput.MultiplyVec(bsdfValue).Multiply(misWeight * imgToSurf / float64(p.Settings.NLightPaths))

	shadowOut.Push(queue.PathRay{
		Ray:        core.NewRay(si.Point.Add(dirToCam.Multiply(rayOffset)), dirToCam),
		TMax:       dist - 2*rayOffset,
		Throughput: contribution,
		PathID:     pixelID,
		PixelX:     int(px),
		PixelY:     int(py),
		Depth:      lv.Depth,
		LightPath:  false,
	})
}

// DirectIllum samples one light for next-event estimation at a camera-path
// vertex and pushes a weighted shadow ray. Grounded on imbatracer's
// direct_illum.
func (p *Processor) DirectIllum(ray queue.PathRay, si *geometry.SurfaceInteraction, sampler core.Sampler, shadowOut *queue.RayQueue) {
	if si.BSDF.IsSpecular() {
		return
	}

	l, lightPickPDF := p.Lights.Pick(sampler.Get1D())
	if l == nil || lightPickPDF <= 0 {
		return
	}
	invPDFLightPick := 1.0 / lightPickPDF

	sample := l.SampleDirect(si.Point, sampler.Get2D())
	if sample.PDF <= 0 || (sample.Radiance == core.Vec3{}) {
		return
	}

	wo := rayDirToWo(ray.Ray.Direction)
	cosThetaI := math.Abs(si.Normal.Dot(sample.Wi))
	cosThetaO := math.Max(0, -sample.Normal.Dot(sample.Wi))

	bsdfValue := si.BSDF.Eval(wo, sample.Wi, si.Normal, si.GeomNormal, false)
	pdfDirW := si.BSDF.PDF(wo, sample.Wi, si.Normal)
	pdfRevW := si.BSDF.PDF(sample.Wi, wo, si.Normal)

	continuePDF := ray.ContinueProb

	var pdfForward float64
	if !l.IsDelta() {
		pdfForward = continuePDF * pdfDirW
	}
	pdfReverse := continuePDF * pdfRevW

	_, pdfEmitDir := l.PDFEmission(core.NewRay(sample.Point, sample.Wi.Negate()), sample.Normal)

	misWeight := p.MIS.WeightNEE(ray.MIS, sample.PDF, pdfForward*invPDFLightPick, pdfEmitDir*invPDFLightPick, pdfReverse)

	if cosThetaO <= 0 {
		// no emission toward the shading point; nothing to connect
		return
	}

	contribution := ray.Throughput.MultiplyVec(bsdfValue).Multiply(misWeight * cosThetaI * invPDFLightPick).MultiplyVec(sample.Radiance)

	dist := sample.Distance
	if math.IsInf(dist, 0) {
		dist = 1e8
	}
	shadowOut.Push(queue.PathRay{
		Ray:        core.NewRay(si.Point.Add(sample.Wi.Multiply(rayOffset)), sample.Wi),
		TMax:       dist - 2*rayOffset,
		Throughput: contribution,
		PathID:     ray.PathID,
		PixelX:     ray.PixelX,
		PixelY:     ray.PixelY,
		Depth:      ray.Depth,
		LightPath:  false,
	})
}

// Connect attempts a bidirectional vertex connection between a camera-path
// vertex and the first Settings.NumConnections vertices of the light-vertex
// cache (every cached vertex when NumConnections is 0; vertices are not
// filtered by path id), pushing one weighted shadow ray per surviving
// connection. Grounded on
// imbatracer's connect.
func (p *Processor) Connect(ray queue.PathRay, si *geometry.SurfaceInteraction, vertices []queue.LightVertex, shadowOut *queue.RayQueue) {
	if si.BSDF.IsSpecular() {
		return
	}

	wo := rayDirToWo(ray.Ray.Direction)

	n := len(vertices)
	if p.Settings.NumConnections > 0 && p.Settings.NumConnections < n {
		n = p.Settings.NumConnections
	}

	for i := 0; i < n; i++ {
		lv := vertices[i]

		connectDir := lv.Point.Subtract(si.Point)
		distSq := connectDir.LengthSquared()
		dist := math.Sqrt(distSq)
		if dist < p.Radius {
			// Points too close to each other usually lie on the same
			// surface and should have a near-zero cosine term; skip to
			// avoid an overly bright, slowly-converging pixel.
			continue
		}
		connectDir = connectDir.Multiply(1.0 / dist)

		bsdfValueCam := si.BSDF.Eval(wo, connectDir, si.Normal, si.GeomNormal, false)
		pdfDirCamW := si.BSDF.PDF(wo, connectDir, si.Normal) * ray.ContinueProb
		pdfRevCamW := si.BSDF.PDF(connectDir, wo, si.Normal) * ray.ContinueProb

		lightDirBack := connectDir.Negate()
		bsdfValueLight := lv.BSDF.Eval(lv.Wo, lightDirBack, lv.Normal, lv.GeomNormal, true)
		pdfDirLightW := lv.BSDF.PDF(lv.Wo, lightDirBack, lv.Normal) * lv.ContinueProb
		pdfRevLightW := lv.BSDF.PDF(lightDirBack, lv.Wo, lv.Normal) * lv.ContinueProb

		// bsdfValueLight already carries the shading-normal correction
		// (adjoint=true), so the geometric term uses the plain cosine.
		cosCam := si.Normal.Dot(connectDir)
		cosLight := math.Abs(lv.Normal.Dot(lightDirBack))

		geomTerm := cosCam * cosLight / distSq
		if geomTerm < 0 {
			geomTerm = 0
		}
		if geomTerm == 0 {
			continue
		}

		pdfCamA := pdfDirCamW * cosLight / distSq
		pdfLightA := pdfDirLightW * cosCam / distSq

		misWeight := p.MIS.WeightConnection(ray.MIS, lv.MIS, pdfLightA, pdfRevCamW, pdfCamA, pdfRevLightW)

		contribution := ray.Throughput.Multiply(misWeight * geomTerm).MultiplyVec(bsdfValueCam).MultiplyVec(bsdfValueLight).MultiplyVec(lv.Throughput)
		if (contribution == core.Vec3{}) {
			continue
		}

		shadowOut.Push(queue.PathRay{
			Ray:        core.NewRay(si.Point.Add(connectDir.Multiply(rayOffset)), connectDir),
			TMax:       dist - 2*rayOffset,
			Throughput: contribution,
			PathID:     ray.PathID,
			PixelX:     ray.PixelX,
			PixelY:     ray.PixelY,
			Depth:      ray.Depth,
			LightPath:  false,
		})
	}
}

// Merge accumulates a photon density estimate at a camera-path vertex by
// querying the photon grid for nearby light-path vertices and weighting
// each by the balance heuristic against connection. Grounded on
// imbatracer's vertex_merging; returns the unweighted-by-throughput-only
// radiance estimate, which the caller multiplies by the camera vertex's
// accumulated throughput and the per-iteration merge normalization
// constant (1 / (pi * r^2 * N_light_paths)).
func (p *Processor) Merge(ray queue.PathRay, si *geometry.SurfaceInteraction, grid *photon.Grid) core.Vec3 {
	if si.BSDF.IsSpecular() {
		return core.Vec3{}
	}

	wo := rayDirToWo(ray.Ray.Direction)
	contribution := core.Vec3{}
	r2 := p.Radius * p.Radius

	for _, ph := range grid.QueryRadius(si.Point, p.Radius) {
		// Epanechnikov kernel, scaled so that together with the caller's
		// 1/(pi*r^2) normalization it integrates to one over the disk.
		kernel := 2 * (1 - ph.Point.Subtract(si.Point).LengthSquared()/r2)
		lightInDir := ph.Wo

		bsdfValue := si.BSDF.Eval(wo, lightInDir, si.Normal, si.GeomNormal, false)
		pdfDirW := si.BSDF.PDF(wo, lightInDir, si.Normal) * ray.ContinueProb
		pdfRevW := si.BSDF.PDF(lightInDir, wo, si.Normal) * ph.ContinueProb

		misWeight := p.MIS.WeightMerge(ray.MIS, ph.MIS, pdfDirW, pdfRevW)

		contribution = contribution.Add(bsdfValue.MultiplyVec(ph.Throughput).Multiply(misWeight * kernel))
	}

	return contribution
}

// MergeNormalization returns the 1/(pi*r^2*N) normalization constant that
// converts a summed-kernel photon estimate into a density.
func MergeNormalization(radius float64, nLightPaths int) float64 {
	if radius <= 0 || nLightPaths == 0 {
		return 0
	}
	return 1.0 / (math.Pi * radius * radius * float64(nLightPaths))
}

// DirectHit evaluates the weighted contribution when a camera path
// directly hits an emissive surface. Grounded on imbatracer's handling in
// process_camera_rays: the first camera-path vertex sees emitted radiance
// unweighted (no other technique could have produced a t=1 path), every
// later vertex is weighted against NEE and connection via WeightDirectHit.
func (p *Processor) DirectHit(ray queue.PathRay, si *geometry.SurfaceInteraction, l light.Light) core.Vec3 {
	wo := rayDirToWo(ray.Ray.Direction)
	radiance := l.Emit(si.Point, si.Normal, wo)
	if (radiance == core.Vec3{}) {
		return core.Vec3{}
	}
	if ray.Depth == 0 {
		return ray.Throughput.MultiplyVec(radiance)
	}

	pdfDirectA, pdfEmitW := l.PDFEmission(core.NewRay(si.Point, wo.Negate()), si.Normal)
	lightPickPDF := p.Lights.PDF()

	misWeight := p.MIS.WeightDirectHit(ray.MIS, pdfDirectA*lightPickPDF, pdfEmitW*lightPickPDF)
	return ray.Throughput.MultiplyVec(radiance).Multiply(misWeight)
}

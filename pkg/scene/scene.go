// Package scene assembles the shapes and lights a render needs into the
// BVH-accelerated, light-sampler-equipped Scene the transport and
// integrator packages trace rays against.
package scene

import (
	"github.com/df07/go-vcm-tracer/pkg/bsdf"
	"github.com/df07/go-vcm-tracer/pkg/core"
	"github.com/df07/go-vcm-tracer/pkg/geometry"
	"github.com/df07/go-vcm-tracer/pkg/light"
)

// Scene holds every shape and light a render needs, plus the BVH built
// from them and the light-picking sampler built over them. It satisfies
// transport.Scene directly: Hit and Occluded delegate straight to the BVH.
type Scene struct {
	Shapes       []geometry.Shape
	Lights       []light.Light
	BVH          *geometry.BVH
	LightSampler *light.Sampler
}

// NewScene creates an empty scene ready to have shapes/lights added to it.
func NewScene() *Scene {
	return &Scene{}
}

// Preprocess builds the BVH over every added shape, preprocesses any
// shape/light that needs the finite world bounds (infinite lights need a
// world radius to convert their emission-direction PDF to an area PDF),
// and builds the light-picking sampler. Must be called once, after every
// shape and light has been added, before the scene is traced against.
func (s *Scene) Preprocess() error {
	s.BVH = geometry.NewBVH(s.Shapes)

	for _, l := range s.Lights {
		if pp, ok := l.(geometry.Preprocessor); ok {
			if err := pp.Preprocess(s.BVH.Center, s.BVH.Radius); err != nil {
				return err
			}
		}
	}
	for _, shape := range s.Shapes {
		if pp, ok := shape.(geometry.Preprocessor); ok {
			if err := pp.Preprocess(s.BVH.Center, s.BVH.Radius); err != nil {
				return err
			}
		}
	}

	s.LightSampler = light.NewSampler(s.Lights)
	return nil
}

// LightList returns every light in the scene, for light-subpath seeding.
func (s *Scene) LightList() []light.Light { return s.Lights }

// Sampler returns the uniform light-picking sampler built in Preprocess.
func (s *Scene) Sampler() *light.Sampler { return s.LightSampler }

// Hit implements transport.Scene.
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*geometry.SurfaceInteraction, bool) {
	return s.BVH.Hit(ray, tMin, tMax)
}

// Occluded implements transport.Scene.
func (s *Scene) Occluded(ray core.Ray, tMin, tMax float64) bool {
	return s.BVH.Occluded(ray, tMin, tMax)
}

// PrimitiveCount returns the total number of primitive surfaces in the
// scene, counting every triangle of a mesh individually.
func (s *Scene) PrimitiveCount() int {
	count := 0
	for _, shape := range s.Shapes {
		if mesh, ok := shape.(*geometry.TriangleMesh); ok {
			count += mesh.TriangleCount()
			continue
		}
		count++
	}
	return count
}

// AddAreaLight adds a quad-shaped area light spanning corner, corner+u,
// corner+v: a Quad shape carrying mat as its surface BSDF (usually black,
// so the light's own emissive surface doesn't also reflect) with its Light
// field wired to a new light.AreaLight, added to both Shapes and Lights.
func (s *Scene) AddAreaLight(corner, u, v, radiance core.Vec3, twoSided bool, mat bsdf.BSDF) *light.AreaLight {
	if mat == nil {
		mat = bsdf.NewLambertian(core.Vec3{})
	}
	l := light.NewAreaLight(corner, u, v, radiance, twoSided)
	quad := geometry.NewQuad(corner, u, v, mat)
	quad.Light = l
	s.Shapes = append(s.Shapes, quad)
	s.Lights = append(s.Lights, l)
	return l
}

// AddPointLight adds an isotropic point light.
func (s *Scene) AddPointLight(position, intensity core.Vec3) *light.PointLight {
	l := light.NewPointLight(position, intensity)
	s.Lights = append(s.Lights, l)
	return l
}

// AddInfiniteLight adds a uniform environment light.
func (s *Scene) AddInfiniteLight(radiance core.Vec3) *light.InfiniteLight {
	l := light.NewInfiniteLight(radiance)
	s.Lights = append(s.Lights, l)
	return l
}

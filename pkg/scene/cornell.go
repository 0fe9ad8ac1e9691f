package scene

import (
	"github.com/df07/go-vcm-tracer/pkg/bsdf"
	"github.com/df07/go-vcm-tracer/pkg/core"
	"github.com/df07/go-vcm-tracer/pkg/geometry"
	"github.com/df07/go-vcm-tracer/pkg/renderer"
)

// NewCornellScene builds the classic Cornell box: five Lambertian quad
// walls, a quad ceiling light, and a mirror sphere plus a glass sphere --
// the standard torture test for connection and merging, since the glass
// sphere only receives light through specular refraction, unreachable by
// next-event estimation alone.
func NewCornellScene() (*Scene, *renderer.Camera) {
	s := NewScene()

	camera := renderer.NewCamera(renderer.CameraConfig{
		Center: core.NewVec3(278, 278, -800),
		LookAt: core.NewVec3(278, 278, 0),
		Up:     core.NewVec3(0, 1, 0),
		Width:  400,
		Height: 400,
		VFov:   40.0,
	})

	white := bsdf.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := bsdf.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := bsdf.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))

	const boxSize = 555.0

	floor := geometry.NewQuad(
		core.NewVec3(0, 0, 0),
		core.NewVec3(boxSize, 0, 0),
		core.NewVec3(0, 0, boxSize),
		white,
	)
	ceiling := geometry.NewQuad(
		core.NewVec3(0, boxSize, 0),
		core.NewVec3(boxSize, 0, 0),
		core.NewVec3(0, 0, boxSize),
		white,
	)
	backWall := geometry.NewQuad(
		core.NewVec3(0, 0, boxSize),
		core.NewVec3(boxSize, 0, 0),
		core.NewVec3(0, boxSize, 0),
		white,
	)
	leftWall := geometry.NewQuad(
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 0, boxSize),
		core.NewVec3(0, boxSize, 0),
		red,
	)
	rightWall := geometry.NewQuad(
		core.NewVec3(boxSize, 0, 0),
		core.NewVec3(0, boxSize, 0),
		core.NewVec3(0, 0, boxSize),
		green,
	)
	s.Shapes = append(s.Shapes, floor, ceiling, backWall, leftWall, rightWall)

	const lightSize = 130.0
	lightOffset := (boxSize - lightSize) / 2.0
	s.AddAreaLight(
		core.NewVec3(lightOffset, boxSize-1, lightOffset),
		core.NewVec3(lightSize, 0, 0),
		core.NewVec3(0, 0, lightSize),
		core.NewVec3(15.0, 15.0, 15.0),
		false,
		nil,
	)

	leftSphere := geometry.NewSphere(
		core.NewVec3(185, 82.5, 169),
		82.5,
		bsdf.NewMirror(core.NewVec3(0.8, 0.8, 0.9)),
	)
	rightSphere := geometry.NewSphere(
		core.NewVec3(370, 90, 351),
		90,
		bsdf.NewDielectric(core.NewVec3(1, 1, 1), 1.5),
	)
	s.Shapes = append(s.Shapes, leftSphere, rightSphere)

	return s, camera
}

package geometry

import (
	"testing"

	"github.com/df07/go-vcm-tracer/pkg/bsdf"
	"github.com/df07/go-vcm-tracer/pkg/core"
)

func testMeshMaterial() bsdf.BSDF {
	return bsdf.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
}

func TestTriangleMeshCreation(t *testing.T) {
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(0, 1, 0),
	}
	faces := []int{0, 1, 2, 0, 2, 3}

	mesh := NewTriangleMesh(vertices, faces, testMeshMaterial(), nil)

	if mesh.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", mesh.TriangleCount())
	}

	bbox := mesh.BoundingBox()
	const tolerance = 1e-9
	if bbox.Min.Subtract(core.NewVec3(0, 0, 0)).Length() > tolerance {
		t.Errorf("expected min (0,0,0), got %v", bbox.Min)
	}
	if bbox.Max.Subtract(core.NewVec3(1, 1, 0)).Length() > tolerance {
		t.Errorf("expected max (1,1,0), got %v", bbox.Max)
	}
}

func TestTriangleMeshHit(t *testing.T) {
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(0, 1, 0),
	}
	faces := []int{0, 1, 2, 0, 2, 3}
	mesh := NewTriangleMesh(vertices, faces, testMeshMaterial(), nil)

	tests := []struct {
		name      string
		ray       core.Ray
		shouldHit bool
	}{
		{"center", core.NewRay(core.NewVec3(0.5, 0.5, -1), core.NewVec3(0, 0, 1)), true},
		{"corner", core.NewRay(core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1)), true},
		{"miss", core.NewRay(core.NewVec3(2, 2, -1), core.NewVec3(0, 0, 1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := mesh.Hit(tt.ray, 0.001, 10.0)
			if isHit != tt.shouldHit {
				t.Errorf("expected hit=%v, got hit=%v", tt.shouldHit, isHit)
			}
			if tt.shouldHit && hit == nil {
				t.Error("expected hit record, got nil")
			}
		})
	}
}

func TestTriangleMeshInvalidFaceCount(t *testing.T) {
	vertices := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid face count")
		}
	}()

	NewTriangleMesh(vertices, []int{0, 1}, testMeshMaterial(), nil)
}

func TestTriangleMeshCustomNormals(t *testing.T) {
	vertices := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)}
	faces := []int{0, 1, 2}
	customNormal := core.NewVec3(0, 0, -1)
	options := &TriangleMeshOptions{Normals: []core.Vec3{customNormal}}

	mesh := NewTriangleMesh(vertices, faces, testMeshMaterial(), options)
	if mesh.TriangleCount() != 1 {
		t.Errorf("expected 1 triangle, got %d", mesh.TriangleCount())
	}

	ray := core.NewRay(core.NewVec3(0.3, 0.3, 1), core.NewVec3(0, 0, -1))
	hit, isHit := mesh.Hit(ray, 0.001, 10.0)
	if !isHit {
		t.Fatal("expected hit with custom normal")
	}
	if hit.Normal.Subtract(customNormal.Multiply(-1)).Length() > 1e-6 {
		t.Errorf("expected hit normal %v, got %v", customNormal.Multiply(-1), hit.Normal)
	}
}

func TestTriangleMeshPerTriangleMaterials(t *testing.T) {
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(0, 1, 0),
	}
	faces := []int{0, 1, 2, 0, 2, 3}

	options := &TriangleMeshOptions{
		BSDFs: []bsdf.BSDF{testMeshMaterial(), testMeshMaterial()},
	}
	mesh := NewTriangleMesh(vertices, faces, testMeshMaterial(), options)

	ray1 := core.NewRay(core.NewVec3(0.8, 0.1, -1), core.NewVec3(0, 0, 1))
	hit1, isHit1 := mesh.Hit(ray1, 0.001, 10.0)
	if !isHit1 || hit1.BSDF == nil {
		t.Error("expected hit with BSDF on first triangle")
	}

	ray2 := core.NewRay(core.NewVec3(0.1, 0.8, -1), core.NewVec3(0, 0, 1))
	hit2, isHit2 := mesh.Hit(ray2, 0.001, 10.0)
	if !isHit2 || hit2.BSDF == nil {
		t.Error("expected hit with BSDF on second triangle")
	}
}

func TestTriangleMeshTriangles(t *testing.T) {
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(0, 1, 0),
	}
	faces := []int{0, 1, 2, 0, 2, 3}
	mesh := NewTriangleMesh(vertices, faces, testMeshMaterial(), nil)

	triangles := mesh.Triangles()
	if len(triangles) != 2 {
		t.Errorf("expected 2 triangles, got %d", len(triangles))
	}
	for i, shape := range triangles {
		if _, ok := shape.(*Triangle); !ok {
			t.Errorf("triangle %d is not a *Triangle", i)
		}
	}
}

func TestTriangleMeshPyramid(t *testing.T) {
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 0, 1),
		core.NewVec3(0, 0, 1),
		core.NewVec3(0.5, 1, 0.5),
	}
	faces := []int{
		0, 1, 2,
		0, 2, 3,
		0, 4, 1,
		1, 4, 2,
		2, 4, 3,
		3, 4, 0,
	}
	mesh := NewTriangleMesh(vertices, faces, testMeshMaterial(), nil)

	if mesh.TriangleCount() != 6 {
		t.Errorf("expected 6 triangles, got %d", mesh.TriangleCount())
	}

	bbox := mesh.BoundingBox()
	if bbox.Min.X > 0 || bbox.Min.Y > 0 || bbox.Min.Z > 0 {
		t.Errorf("bbox min should be at origin, got %v", bbox.Min)
	}
	if bbox.Max.X < 1 || bbox.Max.Y < 1 || bbox.Max.Z < 1 {
		t.Errorf("bbox max should include all vertices, got %v", bbox.Max)
	}

	tests := []struct {
		name      string
		ray       core.Ray
		shouldHit bool
	}{
		{"base from below", core.NewRay(core.NewVec3(0.5, -1, 0.5), core.NewVec3(0, 1, 0)), true},
		{"side face", core.NewRay(core.NewVec3(0.5, 0.5, -1), core.NewVec3(0, 0, 1)), true},
		{"miss", core.NewRay(core.NewVec3(2, 0.5, 0.5), core.NewVec3(1, 0, 0)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := mesh.Hit(tt.ray, 0.001, 10.0)
			if isHit != tt.shouldHit {
				t.Errorf("expected hit=%v, got hit=%v", tt.shouldHit, isHit)
			}
			if tt.shouldHit && hit != nil && hit.T <= 0 {
				t.Errorf("expected positive t, got %f", hit.T)
			}
		})
	}
}

func TestTriangleMeshEdgeCases(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		vertices := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)}
		mesh := NewTriangleMesh(vertices, []int{}, testMeshMaterial(), nil)

		if mesh.TriangleCount() != 0 {
			t.Errorf("expected 0 triangles, got %d", mesh.TriangleCount())
		}
		ray := core.NewRay(core.NewVec3(0.5, 0.5, -1), core.NewVec3(0, 0, 1))
		if _, isHit := mesh.Hit(ray, 0.001, 10.0); isHit {
			t.Error("expected no hit for empty mesh")
		}
	})

	t.Run("single triangle", func(t *testing.T) {
		vertices := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)}
		mesh := NewTriangleMesh(vertices, []int{0, 1, 2}, testMeshMaterial(), nil)

		if mesh.TriangleCount() != 1 {
			t.Errorf("expected 1 triangle, got %d", mesh.TriangleCount())
		}
		ray := core.NewRay(core.NewVec3(0.3, 0.3, -1), core.NewVec3(0, 0, 1))
		if _, isHit := mesh.Hit(ray, 0.001, 10.0); !isHit {
			t.Error("expected hit for single triangle")
		}
	})

	t.Run("mismatched normals panics", func(t *testing.T) {
		vertices := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)}
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic for mismatched normals count")
			}
		}()
		options := &TriangleMeshOptions{
			Normals: []core.Vec3{core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1)},
		}
		NewTriangleMesh(vertices, []int{0, 1, 2}, testMeshMaterial(), options)
	})
}

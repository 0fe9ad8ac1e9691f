package scene

import (
	"fmt"
	"strconv"

	"github.com/df07/go-vcm-tracer/pkg/bsdf"
	"github.com/df07/go-vcm-tracer/pkg/core"
	"github.com/df07/go-vcm-tracer/pkg/geometry"
	"github.com/df07/go-vcm-tracer/pkg/light"
	"github.com/df07/go-vcm-tracer/pkg/loaders"
	"github.com/df07/go-vcm-tracer/pkg/renderer"
)

// NewPBRTScene builds a Scene and Camera by parsing a PBRT scene file.
// Materials, shapes and lights are converted one for one into this
// renderer's bsdf/light/geometry types; AreaLightSource statements inside
// an attribute block turn the shape they precede into an emissive Quad via
// its Light field, same as AddAreaLight does for Cornell boxes; other
// shapes under an AreaLightSource get no light and do not emit.
func NewPBRTScene(filepath string, cameraOverrides ...renderer.CameraConfig) (*Scene, *renderer.Camera, error) {
	parsed, err := loaders.LoadPBRT(filepath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load PBRT file: %w", err)
	}

	s := NewScene()
	camera, err := convertCamera(parsed, cameraOverrides...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert camera: %w", err)
	}

	materials := make([]bsdf.BSDF, len(parsed.Materials))
	for i := range parsed.Materials {
		mat, err := convertMaterial(&parsed.Materials[i])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to convert material: %w", err)
		}
		materials[i] = mat
	}

	for i := range parsed.Shapes {
		stmt := &parsed.Shapes[i]
		mat, err := materialFor(stmt, materials)
		if err != nil {
			return nil, nil, err
		}
		shape, err := convertShape(stmt, mat)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to convert shape: %w", err)
		}
		if shape != nil {
			s.Shapes = append(s.Shapes, shape)
		}
	}

	for i := range parsed.LightSources {
		l, err := convertLight(&parsed.LightSources[i])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to convert light: %w", err)
		}
		if l != nil {
			s.Lights = append(s.Lights, l)
		}
	}

	for i := range parsed.Attributes {
		if err := processAttributeBlock(&parsed.Attributes[i], s, materials); err != nil {
			return nil, nil, fmt.Errorf("failed to process attribute block: %w", err)
		}
	}

	return s, camera, nil
}

func materialFor(stmt *loaders.PBRTStatement, globalMaterials []bsdf.BSDF) (bsdf.BSDF, error) {
	if stmt.MaterialIndex < 0 || stmt.MaterialIndex >= len(globalMaterials) {
		return nil, fmt.Errorf("shape has no valid material (MaterialIndex: %d)", stmt.MaterialIndex)
	}
	return globalMaterials[stmt.MaterialIndex], nil
}

func convertCamera(parsed *loaders.PBRTScene, overrides ...renderer.CameraConfig) (*renderer.Camera, error) {
	config := renderer.CameraConfig{
		Center: core.NewVec3(0, 0, 0),
		LookAt: core.NewVec3(0, 0, -1),
		Up:     core.NewVec3(0, 1, 0),
		Width:  400,
		Height: 400,
		VFov:   90.0,
	}

	if parsed.LookAt != nil && parsed.LookAtTo != nil && parsed.LookAtUp != nil {
		config.Center = *parsed.LookAt
		config.LookAt = *parsed.LookAtTo
		config.Up = *parsed.LookAtUp
	}

	if parsed.Camera != nil && parsed.Camera.Subtype == "perspective" {
		if fov, ok := parsed.Camera.GetFloatParam("fov"); ok {
			if fov <= 0 || fov >= 180 {
				return nil, fmt.Errorf("invalid camera FOV %f: must be between 0 and 180 degrees", fov)
			}
			config.VFov = fov
		}
	}

	if parsed.Film != nil {
		if width, ok := parsed.Film.GetFloatParam("xresolution"); ok {
			if width <= 0 || width > 8192 {
				return nil, fmt.Errorf("invalid image width %f: must be between 1 and 8192", width)
			}
			config.Width = int(width)
		}
		if height, ok := parsed.Film.GetFloatParam("yresolution"); ok {
			if height <= 0 || height > 8192 {
				return nil, fmt.Errorf("invalid image height %f: must be between 1 and 8192", height)
			}
			config.Height = int(height)
		}
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

	return renderer.NewCamera(config), nil
}

func convertMaterial(stmt *loaders.PBRTStatement) (bsdf.BSDF, error) {
	switch stmt.Subtype {
	case "diffuse":
		if rgb, ok := stmt.GetRGBParam("reflectance"); ok {
			return bsdf.NewLambertian(*rgb), nil
		}
		return bsdf.NewLambertian(core.NewVec3(0.7, 0.7, 0.7)), nil

	case "conductor":
		specular := core.NewVec3(0.7, 0.6, 0.5)
		if rgb, ok := stmt.GetRGBParam("eta"); ok {
			specular = *rgb
		}
		shininess := 400.0
		if roughness, ok := stmt.GetFloatParam("roughness"); ok {
			if roughness < 0 || roughness > 1 {
				return nil, fmt.Errorf("invalid conductor roughness %f: must be between 0 and 1", roughness)
			}
			// Roughly invert PBRT's [0,1] roughness into a Phong exponent:
			// smoother surfaces (roughness near 0) get a tighter, higher-power lobe.
			shininess = 2.0 + 1000.0*(1.0-roughness)*(1.0-roughness)
		}
		return bsdf.NewPhong(specular, shininess), nil

	case "dielectric":
		ior := 1.5
		if eta, ok := stmt.GetFloatParam("eta"); ok {
			if eta <= 0 {
				return nil, fmt.Errorf("invalid dielectric IOR %f: must be positive", eta)
			}
			ior = eta
		}
		return bsdf.NewDielectric(core.NewVec3(1, 1, 1), ior), nil

	case "uber":
		// PBRT's "uber" mixes a diffuse base with a specular coat; approximated
		// here as the diffuse component alone, same simplification the caustic
		// glass scene makes for its floor mesh.
		albedo := core.NewVec3(0.5, 0.5, 0.5)
		if rgb, ok := stmt.GetRGBParam("Kd"); ok {
			albedo = *rgb
		}
		return bsdf.NewLambertian(albedo), nil

	default:
		return nil, fmt.Errorf("unsupported material type: %s", stmt.Subtype)
	}
}

func convertShape(stmt *loaders.PBRTStatement, mat bsdf.BSDF) (geometry.Shape, error) {
	if mat == nil {
		return nil, fmt.Errorf("shape has no material")
	}

	switch stmt.Subtype {
	case "sphere":
		radius := 1.0
		if r, ok := stmt.GetFloatParam("radius"); ok {
			if r <= 0 {
				return nil, fmt.Errorf("invalid sphere radius %f: must be positive", r)
			}
			radius = r
		}
		return geometry.NewSphere(core.NewVec3(0, 0, 0), radius, mat), nil

	case "bilinearPatch":
		p00, ok1 := stmt.GetPoint3Param("P00")
		p01, ok2 := stmt.GetPoint3Param("P01")
		p10, ok3 := stmt.GetPoint3Param("P10")
		_, ok4 := stmt.GetPoint3Param("P11")
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, fmt.Errorf("bilinearPatch missing corner points")
		}
		corner := *p00
		u := p01.Subtract(*p00)
		v := p10.Subtract(*p00)
		return geometry.NewQuad(corner, u, v, mat), nil

	case "trianglemesh":
		param, exists := stmt.Parameters["P"]
		if !exists || len(param.Values)%3 != 0 {
			return nil, fmt.Errorf("trianglemesh missing or invalid vertices")
		}
		vertices := make([]core.Vec3, 0, len(param.Values)/3)
		for i := 0; i < len(param.Values); i += 3 {
			x, err := strconv.ParseFloat(param.Values[i], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid vertex X coordinate %q: %w", param.Values[i], err)
			}
			y, err := strconv.ParseFloat(param.Values[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid vertex Y coordinate %q: %w", param.Values[i+1], err)
			}
			z, err := strconv.ParseFloat(param.Values[i+2], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid vertex Z coordinate %q: %w", param.Values[i+2], err)
			}
			vertices = append(vertices, core.NewVec3(x, y, z))
		}

		indicesParam, exists := stmt.Parameters["indices"]
		if !exists || len(indicesParam.Values)%3 != 0 {
			return nil, fmt.Errorf("trianglemesh missing or invalid indices")
		}
		indices := make([]int, 0, len(indicesParam.Values))
		for _, idxStr := range indicesParam.Values {
			idx, _ := strconv.Atoi(idxStr)
			indices = append(indices, idx)
		}

		return geometry.NewTriangleMesh(vertices, indices, mat, nil), nil

	default:
		return nil, fmt.Errorf("unsupported shape type: %s", stmt.Subtype)
	}
}

func convertLight(stmt *loaders.PBRTStatement) (light.Light, error) {
	switch stmt.Subtype {
	case "point":
		intensity := core.NewVec3(10, 10, 10)
		if rgb, ok := stmt.GetRGBParam("I"); ok {
			intensity = *rgb
		}
		position := core.NewVec3(0, 5, 0)
		if pos, ok := stmt.GetPoint3Param("from"); ok {
			position = *pos
		}
		return light.NewPointLight(position, intensity), nil

	case "distant":
		// No directional light type exists; approximate a distant light as a
		// uniform environment light, same as "infinite" below.
		radiance := core.NewVec3(3, 3, 3)
		if rgb, ok := stmt.GetRGBParam("L"); ok {
			radiance = *rgb
		}
		return light.NewInfiniteLight(radiance), nil

	case "infinite":
		radiance := core.NewVec3(1, 1, 1)
		if rgb, ok := stmt.GetRGBParam("L"); ok {
			radiance = *rgb
		}
		return light.NewInfiniteLight(radiance), nil

	default:
		return nil, fmt.Errorf("unsupported light type: %s", stmt.Subtype)
	}
}

// processAttributeBlock converts the shapes, materials and lights inside an
// AttributeBegin/AttributeEnd block. A shape preceded by an AreaLightSource
// statement becomes emissive: it keeps its surface BSDF but also gets a
// light.AreaLight wired to its Light field and appended to the scene's
// light list, exactly like AddAreaLight wires a Cornell ceiling light.
func processAttributeBlock(block *loaders.AttributeBlock, s *Scene, globalMaterials []bsdf.BSDF) error {
	localMaterials := make([]bsdf.BSDF, len(block.Materials))
	for i := range block.Materials {
		mat, err := convertMaterial(&block.Materials[i])
		if err != nil {
			return fmt.Errorf("failed to convert material in attribute block: %w", err)
		}
		localMaterials[i] = mat
	}

	var areaRadiance *core.Vec3
	for i := range block.LightSources {
		if block.LightSources[i].Type == "AreaLightSource" {
			if rgb, ok := block.LightSources[i].GetRGBParam("L"); ok {
				areaRadiance = rgb
			}
			break
		}
	}

	for i := range block.Shapes {
		stmt := &block.Shapes[i]
		var mat bsdf.BSDF
		switch {
		case stmt.MaterialIndex >= 0 && stmt.MaterialIndex < len(localMaterials):
			mat = localMaterials[stmt.MaterialIndex]
		case stmt.MaterialIndex >= 0 && stmt.MaterialIndex < len(globalMaterials):
			mat = globalMaterials[stmt.MaterialIndex]
		default:
			return fmt.Errorf("shape has no valid material (MaterialIndex: %d, local: %d, global: %d)",
				stmt.MaterialIndex, len(localMaterials), len(globalMaterials))
		}

		shape, err := convertShape(stmt, mat)
		if err != nil {
			return fmt.Errorf("failed to convert shape in attribute block: %w", err)
		}
		if shape == nil {
			continue
		}

		if areaRadiance != nil {
			if l, ok := wireAreaLight(shape, *areaRadiance); ok {
				s.Lights = append(s.Lights, l)
			}
		}
		s.Shapes = append(s.Shapes, shape)
	}

	for i := range block.LightSources {
		if block.LightSources[i].Type == "AreaLightSource" {
			continue
		}
		l, err := convertLight(&block.LightSources[i])
		if err != nil {
			return fmt.Errorf("failed to convert light in attribute block: %w", err)
		}
		if l != nil {
			s.Lights = append(s.Lights, l)
		}
	}

	return nil
}

// wireAreaLight attaches a light.AreaLight to shape's Light field if shape
// is a quad (the only shape this renderer can sample uniformly by area);
// for other shapes it attaches nothing and returns false, so they neither
// emit nor are sampled by NEE.
func wireAreaLight(shape geometry.Shape, radiance core.Vec3) (light.Light, bool) {
	quad, ok := shape.(*geometry.Quad)
	if !ok {
		return nil, false
	}
	l := light.NewAreaLight(quad.Corner, quad.U, quad.V, radiance, false)
	quad.Light = l
	return l, true
}

package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-vcm-tracer/pkg/bsdf"
	"github.com/df07/go-vcm-tracer/pkg/geometry"
	"github.com/df07/go-vcm-tracer/pkg/renderer"
	"github.com/df07/go-vcm-tracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Emissive     bool                   `json:"emissive"`
	Properties   map[string]interface{} `json:"properties"`
}

// extractMaterialInfo extracts detailed material information with type assertions
func (s *Server) extractMaterialInfo(mat bsdf.BSDF) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *bsdf.Lambertian:
		properties["albedo"] = [3]float64{m.Albedo.X, m.Albedo.Y, m.Albedo.Z}
		properties["color"] = fmt.Sprintf("#%02x%02x%02x",
			int(m.Albedo.X*255), int(m.Albedo.Y*255), int(m.Albedo.Z*255))
		return "lambertian", properties

	case *bsdf.Mirror:
		properties["reflectance"] = [3]float64{m.Reflectance.X, m.Reflectance.Y, m.Reflectance.Z}
		properties["color"] = fmt.Sprintf("#%02x%02x%02x",
			int(m.Reflectance.X*255), int(m.Reflectance.Y*255), int(m.Reflectance.Z*255))
		return "mirror", properties

	case *bsdf.Dielectric:
		properties["ior"] = m.IOR
		properties["tint"] = [3]float64{m.Tint.X, m.Tint.Y, m.Tint.Z}
		return "dielectric", properties

	case *bsdf.Phong:
		properties["specular"] = [3]float64{m.Specular.X, m.Specular.Y, m.Specular.Z}
		properties["shininess"] = m.Shininess
		return "phong", properties

	case *bsdf.OrenNayar:
		properties["albedo"] = [3]float64{m.Albedo.X, m.Albedo.Y, m.Albedo.Z}
		properties["roughness"] = m.Roughness
		return "orenNayar", properties

	case *bsdf.Mixture:
		lobes := make([]map[string]interface{}, len(m.Lobes))
		for i, lobe := range m.Lobes {
			lobeType, lobeProps := s.extractMaterialInfo(lobe)
			lobes[i] = map[string]interface{}{
				"type":       lobeType,
				"weight":     m.Weights[i],
				"properties": lobeProps,
			}
		}
		properties["lobes"] = lobes
		return "mixture", properties

	default:
		return "unknown", properties
	}
}

// InspectResult contains rich information about an object hit by an inspection ray
type InspectResult struct {
	Hit       bool
	HitRecord *geometry.SurfaceInteraction
	Shape     geometry.Shape
}

// inspectPixel casts a ray through the center of the specified pixel and
// returns information about the first object hit. The caller must have
// already called sceneObj.Preprocess().
func inspectPixel(sceneObj *scene.Scene, camera *renderer.Camera, pixelX, pixelY int) InspectResult {
	ray := camera.GenerateRay(float64(pixelX)+0.5, float64(pixelY)+0.5)

	hit, isHit := sceneObj.BVH.Hit(ray, 0.001, math.Inf(1))
	if !isHit {
		return InspectResult{Hit: false}
	}

	// BVH.Hit doesn't return which shape was hit, so re-test every shape at
	// the same distance to identify it.
	for _, shape := range sceneObj.Shapes {
		if shapeHit, shapeIsHit := shape.Hit(ray, 0.001, hit.T+0.001); shapeIsHit {
			if shapeHit.T == hit.T {
				return InspectResult{Hit: true, HitRecord: hit, Shape: shape}
			}
		}
	}

	return InspectResult{Hit: true, HitRecord: hit, Shape: nil}
}

// extractGeometryInfo extracts detailed geometry information
func (s *Server) extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = [3]float64{geom.Center.X, geom.Center.Y, geom.Center.Z}
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Quad:
		properties["corner"] = [3]float64{geom.Corner.X, geom.Corner.Y, geom.Corner.Z}
		properties["u"] = [3]float64{geom.U.X, geom.U.Y, geom.U.Z}
		properties["v"] = [3]float64{geom.V.X, geom.V.Y, geom.V.Z}
		properties["normal"] = [3]float64{geom.Normal.X, geom.Normal.Y, geom.Normal.Z}
		return "quad", properties

	case *geometry.TriangleMesh:
		properties["triangleCount"] = geom.TriangleCount()
		bbox := geom.BoundingBox()
		properties["boundingBox"] = map[string]interface{}{
			"min": [3]float64{bbox.Min.X, bbox.Min.Y, bbox.Min.Z},
			"max": [3]float64{bbox.Max.X, bbox.Max.Y, bbox.Max.Z},
		}
		return "triangleMesh", properties

	default:
		return "unknown", properties
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	inspectReq := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid x coordinate"})
		return
	}

	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid y coordinate"})
		return
	}

	if pixelX < 0 || pixelX >= inspectReq.Width || pixelY < 0 || pixelY >= inspectReq.Height {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	const configOnly = true
	sceneObj, camera := s.createScene(inspectReq, configOnly, nil)
	if sceneObj == nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Unknown scene: " + inspectReq.Scene})
		return
	}
	if err := sceneObj.Preprocess(); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "preprocessing scene: " + err.Error()})
		return
	}

	result := inspectPixel(sceneObj, camera, pixelX, pixelY)

	if !result.Hit {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := "unknown", map[string]interface{}{}
	if result.HitRecord.BSDF != nil {
		materialType, materialProps = s.extractMaterialInfo(result.HitRecord.BSDF)
	}
	geometryType, geometryProps := "unknown", map[string]interface{}{}
	if result.Shape != nil {
		geometryType, geometryProps = s.extractGeometryInfo(result.Shape)
	}

	allProperties := make(map[string]interface{})
	allProperties["material"] = materialProps
	allProperties["geometry"] = geometryProps

	response := InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        [3]float64{result.HitRecord.Point.X, result.HitRecord.Point.Y, result.HitRecord.Point.Z},
		Normal:       [3]float64{result.HitRecord.Normal.X, result.HitRecord.Normal.Y, result.HitRecord.Normal.Z},
		Distance:     result.HitRecord.T,
		Emissive:     result.HitRecord.Light != nil,
		Properties:   allProperties,
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

package geometry

import "github.com/df07/go-vcm-tracer/pkg/core"

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Shapes      []Shape // Multiple shapes for leaf nodes (nil for internal nodes)
}

// BVH represents a Bounding Volume Hierarchy for fast ray-object intersection
type BVH struct {
	Root   *BVHNode
	Center core.Vec3 // Precomputed finite scene center, for infinite light calculations
	Radius float64   // Precomputed world radius, for infinite light PDF calculations
}

// NewBVH constructs a BVH from a slice of shapes
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{}
	}

	shapesCopy := make([]Shape, len(shapes))
	copy(shapesCopy, shapes)

	root := buildBVH(shapesCopy)

	worldCenter := root.BoundingBox.Center()
	worldRadius := root.BoundingBox.Max.Subtract(worldCenter).Length()

	return &BVH{Root: root, Center: worldCenter, Radius: worldRadius}
}

// leafThreshold: if we have this many or fewer shapes, store them in a leaf node
const leafThreshold = 8

// buildBVH recursively builds the BVH using fast median splitting along the
// longest axis. This avoids the O(n^2 log n) cost of a full SAH build while
// still giving good locality for the scene sizes this renderer targets.
func buildBVH(shapes []Shape) *BVHNode {
	var boundingBox core.AABB
	boundingBox = shapes[0].BoundingBox()
	for i := 1; i < len(shapes); i++ {
		boundingBox = boundingBox.Union(shapes[i].BoundingBox())
	}

	if len(shapes) <= leafThreshold {
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}

	axis, splitPos, ok := findBestSplit(shapes, boundingBox)
	if !ok {
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}

	left, right := partitionShapes(shapes, axis, splitPos)
	if len(left) == 0 || len(right) == 0 {
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(left),
		Right:       buildBVH(right),
	}
}

func findBestSplit(shapes []Shape, boundingBox core.AABB) (axis int, splitPos float64, ok bool) {
	axis = boundingBox.LongestAxis()

	var minVal, maxVal float64
	switch axis {
	case 0:
		minVal, maxVal = boundingBox.Min.X, boundingBox.Max.X
	case 1:
		minVal, maxVal = boundingBox.Min.Y, boundingBox.Max.Y
	case 2:
		minVal, maxVal = boundingBox.Min.Z, boundingBox.Max.Z
	}

	if maxVal <= minVal {
		return 0, 0, false
	}
	return axis, (minVal + maxVal) * 0.5, true
}

func partitionShapes(shapes []Shape, axis int, splitPos float64) ([]Shape, []Shape) {
	var left, right []Shape
	for _, shape := range shapes {
		center := shape.BoundingBox().Center()
		var centerVal float64
		switch axis {
		case 0:
			centerVal = center.X
		case 1:
			centerVal = center.Y
		case 2:
			centerVal = center.Z
		}
		if centerVal < splitPos {
			left = append(left, shape)
		} else {
			right = append(right, shape)
		}
	}
	return left, right
}

// Hit tests if a ray intersects any shape in the BVH, returning the closest.
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64) (*SurfaceInteraction, bool) {
	if bvh.Root == nil {
		return nil, false
	}
	return bvh.hitNode(bvh.Root, ray, tMin, tMax)
}

func (bvh *BVH) hitNode(node *BVHNode, ray core.Ray, tMin, tMax float64) (*SurfaceInteraction, bool) {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return nil, false
	}

	if node.Shapes != nil {
		var closest *SurfaceInteraction
		closestSoFar := tMax
		for _, shape := range node.Shapes {
			if si, ok := shape.Hit(ray, tMin, closestSoFar); ok {
				closest = si
				closestSoFar = si.T
			}
		}
		return closest, closest != nil
	}

	var closest *SurfaceInteraction
	closestSoFar := tMax
	if node.Left != nil {
		if si, ok := bvh.hitNode(node.Left, ray, tMin, closestSoFar); ok {
			closest = si
			closestSoFar = si.T
		}
	}
	if node.Right != nil {
		if si, ok := bvh.hitNode(node.Right, ray, tMin, closestSoFar); ok {
			closest = si
			closestSoFar = si.T
		}
	}
	return closest, closest != nil
}

// Occluded reports whether anything blocks the segment [tMin, tMax] along
// ray, without computing a full SurfaceInteraction. Shadow rays and the
// merge/connect visibility tests use this: it can stop at the first hit
// instead of finding the closest one.
func (bvh *BVH) Occluded(ray core.Ray, tMin, tMax float64) bool {
	if bvh.Root == nil {
		return false
	}
	return bvh.occludedNode(bvh.Root, ray, tMin, tMax)
}

func (bvh *BVH) occludedNode(node *BVHNode, ray core.Ray, tMin, tMax float64) bool {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return false
	}
	if node.Shapes != nil {
		for _, shape := range node.Shapes {
			if _, ok := shape.Hit(ray, tMin, tMax); ok {
				return true
			}
		}
		return false
	}
	if node.Left != nil && bvh.occludedNode(node.Left, ray, tMin, tMax) {
		return true
	}
	if node.Right != nil && bvh.occludedNode(node.Right, ray, tMin, tMax) {
		return true
	}
	return false
}

// BoundingBox implements the Shape interface for the whole BVH.
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}

package scene

import (
	"math"

	"github.com/vegatrace/vega/types"
)

// Bvh node definition. Each node takes 32 bytes.
type BvhNode struct {
	// Bounding box min extent. If this is an inner node then the W
	// component is > 0 and contains the index of the left child; if this
	// is a leaf then the W component is <= 0 and contains the negated
	// index of the first triangle in the leaf.
	Min types.Vec4

	// Bounding box max extent. If this is an inner node then the W
	// component is > 0 and contains the index of the right child; if
	// this is a leaf then the W component is < 0 and contains the
	// negated triangle count for the leaf.
	Max types.Vec4
}

// Set the node bounding box.
func (n *BvhNode) SetBBox(bbox [2]types.Vec3) {
	n.Min[0], n.Min[1], n.Min[2] = bbox[0][0], bbox[0][1], bbox[0][2]
	n.Max[0], n.Max[1], n.Max[2] = bbox[1][0], bbox[1][1], bbox[1][2]
}

// Mark the node as an inner node and set its child indices.
func (n *BvhNode) SetChildNodes(left, right uint32) {
	n.Min[3] = float32(left)
	n.Max[3] = float32(right)
}

// Mark the node as a leaf referencing count triangles starting at first.
func (n *BvhNode) SetTriangles(first, count uint32) {
	n.Min[3] = -float32(first)
	n.Max[3] = -float32(count)
}

// Returns true if this node is a leaf.
func (n *BvhNode) IsLeaf() bool {
	return n.Max[3] < 0
}

// Returns the child node indices. Callers must ensure the node is an
// inner node.
func (n *BvhNode) ChildNodes() (left, right uint32) {
	return uint32(n.Min[3]), uint32(n.Max[3])
}

// Returns the triangle range for a leaf node.
func (n *BvhNode) Triangles() (first, count uint32) {
	return uint32(-n.Min[3]), uint32(-n.Max[3])
}

// A ray used for CPU-side scene queries.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3

	// Hits beyond MaxT are ignored.
	MaxT float32
}

// The result of a CPU-side ray/scene intersection query.
type Intersection struct {
	// Parametric distance along the ray to the hit point.
	HitT float32

	// World-space hit point and interpolated shading normal.
	Point  types.Vec3
	Normal types.Vec3

	// Index of the intersected triangle in the scene triangle list.
	TriIndex uint32

	// Render node identifier of the intersected triangle.
	InstanceID uint32

	MaterialIndex uint32
}

const intersectEpsilon float32 = 1e-7

// Intersect traverses the scene BVH and returns the closest triangle
// intersection along the ray. The second return value is false if the ray
// does not intersect any scene geometry within ray.MaxT.
func (s *Scene) Intersect(ray Ray) (Intersection, bool) {
	var best Intersection
	best.HitT = ray.MaxT
	found := false

	if len(s.Nodes) == 0 {
		return best, false
	}

	invDir := types.Vec3{1.0 / ray.Dir[0], 1.0 / ray.Dir[1], 1.0 / ray.Dir[2]}

	// Iterative traversal using an explicit node stack.
	var stack [64]uint32
	stackTop := 0
	stack[stackTop] = 0
	stackTop++

	for stackTop > 0 {
		stackTop--
		node := &s.Nodes[stack[stackTop]]

		if !rayBoxHit(node, ray.Origin, invDir, best.HitT) {
			continue
		}

		if !node.IsLeaf() {
			left, right := node.ChildNodes()
			stack[stackTop] = left
			stackTop++
			stack[stackTop] = right
			stackTop++
			continue
		}

		first, count := node.Triangles()
		for triIndex := first; triIndex < first+count; triIndex++ {
			tri := &s.Triangles[triIndex]
			hitT, u, v, ok := rayTriangleHit(tri, ray.Origin, ray.Dir, best.HitT)
			if !ok {
				continue
			}

			w := 1.0 - u - v
			best.HitT = hitT
			best.Point = ray.Origin.Add(ray.Dir.Mul(hitT))
			best.Normal = tri.Normals[0].Mul(w).
				Add(tri.Normals[1].Mul(u)).
				Add(tri.Normals[2].Mul(v)).
				Normalize()
			best.TriIndex = triIndex
			best.InstanceID = tri.InstanceID
			best.MaterialIndex = tri.MaterialIndex
			found = true
		}
	}

	return best, found
}

// Slab test against the node bounding box.
func rayBoxHit(node *BvhNode, origin, invDir types.Vec3, maxT float32) bool {
	var tMin float32 = 0
	tMax := maxT

	for axis := 0; axis < 3; axis++ {
		t0 := (node.Min[axis] - origin[axis]) * invDir[axis]
		t1 := (node.Max[axis] - origin[axis]) * invDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}

// Moeller-Trumbore ray/triangle intersection test.
func rayTriangleHit(tri *Triangle, origin, dir types.Vec3, maxT float32) (hitT, u, v float32, ok bool) {
	e1 := tri.Vertices[1].Sub(tri.Vertices[0])
	e2 := tri.Vertices[2].Sub(tri.Vertices[0])

	pVec := dir.Cross(e2)
	det := e1.Dot(pVec)
	if float32(math.Abs(float64(det))) < intersectEpsilon {
		return 0, 0, 0, false
	}

	invDet := 1.0 / det
	tVec := origin.Sub(tri.Vertices[0])
	u = tVec.Dot(pVec) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	qVec := tVec.Cross(e1)
	v = dir.Dot(qVec) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	hitT = e2.Dot(qVec) * invDet
	if hitT < intersectEpsilon || hitT >= maxT {
		return 0, 0, 0, false
	}
	return hitT, u, v, true
}

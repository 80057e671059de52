package scene

import "github.com/vegatrace/vega/types"

// A triangle primitive. Triangles are the only primitive type that the
// tracer operates on; planes, spheres and other analytic shapes are
// expected to be tessellated by the scene readers.
type Triangle struct {
	Vertices [3]types.Vec3
	Normals  [3]types.Vec3
	UVs      [3]types.Vec2

	// Index into the scene material list.
	MaterialIndex uint32

	// Identifies the render node this triangle belongs to. Picking
	// queries report this value back to the caller.
	InstanceID uint32
}

// Calculate the axis-aligned bounding box for this triangle.
func (tr *Triangle) BBox() [2]types.Vec3 {
	min := types.MinVec3(tr.Vertices[0], types.MinVec3(tr.Vertices[1], tr.Vertices[2]))
	max := types.MaxVec3(tr.Vertices[0], types.MaxVec3(tr.Vertices[1], tr.Vertices[2]))
	return [2]types.Vec3{min, max}
}

// Calculate the centroid for this triangle.
func (tr *Triangle) Center() types.Vec3 {
	return tr.Vertices[0].Add(tr.Vertices[1]).Add(tr.Vertices[2]).Mul(1.0 / 3.0)
}

// Calculate the geometric normal for this triangle.
func (tr *Triangle) FaceNormal() types.Vec3 {
	e1 := tr.Vertices[1].Sub(tr.Vertices[0])
	e2 := tr.Vertices[2].Sub(tr.Vertices[0])
	return e1.Cross(e2).Normalize()
}

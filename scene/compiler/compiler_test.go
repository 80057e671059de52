package compiler

import (
	"testing"

	"github.com/vegatrace/vega/scene"
	"github.com/vegatrace/vega/types"
)

func TestCompileAssignsInstanceIDs(t *testing.T) {
	rawScene := &RawScene{
		Camera:    scene.NewCamera(45),
		Materials: []scene.Material{{Name: "white", Kd: types.Vec3{0.9, 0.9, 0.9}}},
		Nodes: []RawNode{
			{Name: "floor", Triangles: quadTriangles(types.Vec3{-1, 0, -1}, 2)},
			{Name: "wall", Triangles: quadTriangles(types.Vec3{-1, 2, -1}, 2)},
		},
	}

	sc, err := Compile(rawScene)
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Triangles) != 4 {
		t.Fatalf("expected compiled scene to contain 4 triangles; got %d", len(sc.Triangles))
	}
	if len(sc.InstanceNames) != 2 || sc.InstanceNames[0] != "floor" || sc.InstanceNames[1] != "wall" {
		t.Fatalf("unexpected instance name list: %v", sc.InstanceNames)
	}

	instanceCounts := make(map[uint32]int)
	for _, tri := range sc.Triangles {
		instanceCounts[tri.InstanceID]++
	}
	for instanceID := uint32(0); instanceID < 2; instanceID++ {
		if instanceCounts[instanceID] != 2 {
			t.Fatalf("expected 2 triangles for instance %d; got %d", instanceID, instanceCounts[instanceID])
		}
	}
}

func TestCompileLeafRangesCoverAllTriangles(t *testing.T) {
	rawScene := &RawScene{
		Camera:    scene.NewCamera(45),
		Materials: []scene.Material{{Name: "white", Kd: types.Vec3{0.9, 0.9, 0.9}}},
		Nodes: []RawNode{
			{Name: "floor", Triangles: quadTriangles(types.Vec3{-10, 0, -10}, 20)},
		},
	}

	sc, err := Compile(rawScene)
	if err != nil {
		t.Fatal(err)
	}

	var covered uint32
	for _, node := range sc.Nodes {
		if !node.IsLeaf() {
			continue
		}
		first, count := node.Triangles()
		if int(first+count) > len(sc.Triangles) {
			t.Fatalf("leaf range [%d, %d) exceeds triangle count %d", first, first+count, len(sc.Triangles))
		}
		covered += count
	}
	if int(covered) != len(sc.Triangles) {
		t.Fatalf("expected leafs to cover %d triangles; got %d", len(sc.Triangles), covered)
	}
}

func TestCompileRejectsEmptyScene(t *testing.T) {
	_, err := Compile(&RawScene{Camera: scene.NewCamera(45)})
	if err != scene.ErrMissingGeometry {
		t.Fatalf("expected %v; got %v", scene.ErrMissingGeometry, err)
	}
}

// Build two triangles forming an axis-aligned quad on the XZ plane.
func quadTriangles(origin types.Vec3, side float32) []scene.Triangle {
	v0 := origin
	v1 := origin.Add(types.Vec3{side, 0, 0})
	v2 := origin.Add(types.Vec3{side, 0, side})
	v3 := origin.Add(types.Vec3{0, 0, side})
	up := types.Vec3{0, 1, 0}

	return []scene.Triangle{
		{Vertices: [3]types.Vec3{v0, v1, v2}, Normals: [3]types.Vec3{up, up, up}},
		{Vertices: [3]types.Vec3{v0, v2, v3}, Normals: [3]types.Vec3{up, up, up}},
	}
}

package reader

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vegatrace/vega/asset"
	"github.com/vegatrace/vega/types"
)

func TestFloat32Parser(t *testing.T) {
	expError := "unsupported syntax for 'v'; expected 1 argument; got 0"
	_, err := parseFloat32([]string{"v"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	_, err = parseFloat32([]string{"v", "not-a-float"})
	if err == nil {
		t.Fatal("expected to get a parse error")
	}

	v, err := parseFloat32([]string{"v", "3.14"})
	if err != nil {
		t.Fatal(err)
	}

	if v != 3.14 {
		t.Fatalf("expected parsed value to be 3.14; got %f", v)
	}
}

func TestVec2Parser(t *testing.T) {
	expError := "unsupported syntax for 'v'; expected 2 arguments; got 0"
	_, err := parseVec2([]string{"v"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	_, err = parseVec2([]string{"v", "not-a-float", "2"})
	if err == nil {
		t.Fatal("expected to get a parse error")
	}

	v, err := parseVec2([]string{"v", "3.14", "0"})
	if err != nil {
		t.Fatal(err)
	}

	expVal := types.Vec2{3.14, 0}
	if !reflect.DeepEqual(v, expVal) {
		t.Fatalf("expected parsed value to be %v; got %v", expVal, v)
	}
}

func TestVec3Parser(t *testing.T) {
	expError := "unsupported syntax for 'v'; expected 3 arguments; got 0"
	_, err := parseVec3([]string{"v"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	_, err = parseVec3([]string{"v", "not-a-float", "2", "3"})
	if err == nil {
		t.Fatal("expected to get a parse error")
	}

	v, err := parseVec3([]string{"v", "3.14", "0", "0.4"})
	if err != nil {
		t.Fatal(err)
	}

	expVal := types.Vec3{3.14, 0, 0.4}
	if !reflect.DeepEqual(v, expVal) {
		t.Fatalf("expected parsed value to be %v; got %v", expVal, v)
	}
}

func TestSelectFaceCoordinate(t *testing.T) {
	expError := "index out of bounds"
	type spec struct {
		in       string
		listLen  int
		out      int
		expError string
	}
	specs := []spec{
		{"2", 1, -1, expError},
		{"-2", 1, -1, expError},
		{"1", 10, 0, ""}, // indices are 1-based
		{"-1", 10, 9, ""},
	}

	for idx, s := range specs {
		v, err := selectFaceCoordIndex(s.in, s.listLen)
		if s.expError != "" && (err == nil || err.Error() != s.expError) {
			t.Fatalf("[spec %d] expected error %s; got %v", idx, s.expError, err)
		} else if s.expError == "" && v != s.out {
			t.Fatalf("[spec %d] expected index to be %d; got %d", idx, s.out, v)
		}
	}
}

func TestWavefrontParser(t *testing.T) {
	payload := `
o quad
v 0 0 0
v 1 0 0
v 1 0 1
v 0 0 1
vn 0 1 0
f 1//1 2//1 3//1
f 1//1 3//1 4//1
camera_fov 60
camera_eye 0.5 2 0.5
camera_look 0.5 0 0.5
camera_up 0 0 -1
bg_color 0.1 0.1 0.1
`

	reader := newWavefrontReader()
	if err := reader.parse(asset.NewResourceFromStream("test.obj", strings.NewReader(payload))); err != nil {
		t.Fatal(err)
	}

	rawScene := reader.rawScene
	if len(rawScene.Nodes) != 1 || rawScene.Nodes[0].Name != "quad" {
		t.Fatalf("expected 1 raw node named 'quad'; got %v", rawScene.Nodes)
	}
	if len(rawScene.Nodes[0].Triangles) != 2 {
		t.Fatalf("expected 2 parsed triangles; got %d", len(rawScene.Nodes[0].Triangles))
	}
	if rawScene.Camera.FOV != 60 {
		t.Fatalf("expected camera fov to be 60; got %f", rawScene.Camera.FOV)
	}

	// Faces referenced no material so a default one should be allocated
	if len(rawScene.Materials) != 1 {
		t.Fatalf("expected a single default material; got %d", len(rawScene.Materials))
	}
	for _, tri := range rawScene.Nodes[0].Triangles {
		if tri.MaterialIndex != 0 {
			t.Fatalf("expected triangles to reference default material 0; got %d", tri.MaterialIndex)
		}
	}
}

func TestWavefrontMaterialParser(t *testing.T) {
	payload := `
newmtl lamp
Ke 10 10 10
newmtl glass
Kd 0.2 0.2 0.2
Ni 1.52
Nr 0.1
`

	reader := newWavefrontReader()
	if err := reader.parseMaterials(asset.NewResourceFromStream("test.mtl", strings.NewReader(payload))); err != nil {
		t.Fatal(err)
	}

	materials := reader.rawScene.Materials
	if len(materials) != 2 {
		t.Fatalf("expected 2 parsed materials; got %d", len(materials))
	}
	if !materials[0].IsEmissive() {
		t.Fatal("expected material 'lamp' to be emissive")
	}
	if materials[1].Ni != 1.52 || materials[1].Roughness != 0.1 {
		t.Fatalf("unexpected 'glass' material params: Ni=%f Nr=%f", materials[1].Ni, materials[1].Roughness)
	}

	expError := "[test.mtl: 2] error: got 'Kd' without a 'newmtl'"
	err := newWavefrontReader().parseMaterials(asset.NewResourceFromStream("test.mtl", strings.NewReader("\nKd 1 0 0")))
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}
}

func TestWavefrontUndefinedMaterial(t *testing.T) {
	payload := `
v 0 0 0
v 1 0 0
v 0 1 0
usemtl missing
f 1 2 3
`

	err := newWavefrontReader().parse(asset.NewResourceFromStream("test.obj", strings.NewReader(payload)))
	if err == nil || !strings.Contains(err.Error(), "undefined material with name 'missing'") {
		t.Fatalf("expected an undefined material error; got %v", err)
	}
}

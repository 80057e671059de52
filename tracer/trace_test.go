package tracer

import (
	"testing"

	"github.com/vegatrace/vega/device"
	"github.com/vegatrace/vega/scene"
	"github.com/vegatrace/vega/types"
)

func TestTraceFrameAccumulatesPrimaryHits(t *testing.T) {
	sc := emissiveQuadScene()
	ctx := traceContext(t, sc, 8, 8)
	ctx.Push = PushConstants{Frame: 1, MaxDepth: 2, MaxSamples: 4, Seed: 42}

	if err := TraceFrame()(ctx)(); err != nil {
		t.Fatal(err)
	}

	// The center pixel looks straight at the emissive quad
	offset := (4*8 + 4) * 4
	if ctx.Raw.F32[offset] == 0 {
		t.Fatal("expected center pixel to accumulate radiance from the emissive quad")
	}
	if ctx.Albedo.F32[offset] != sc.Materials[0].Kd[0] {
		t.Fatalf("expected albedo guide to hold Kd %f; got %f", sc.Materials[0].Kd[0], ctx.Albedo.F32[offset])
	}
	if ctx.Normal.F32[offset+2] != 1 {
		t.Fatalf("expected normal guide to hold +Z facing normal; got %f", ctx.Normal.F32[offset+2])
	}
	if ctx.Raw.F32[offset+3] != 1 {
		t.Fatal("expected alpha channel to be set")
	}

	// The quad lies on the z=-5 plane; off-axis rays are slightly longer.
	if depth := ctx.Depth.F32[offset]; depth < 5 || depth > 6 {
		t.Fatalf("expected center pixel depth close to 5; got %f", depth)
	}
}

func TestTraceFrameMissShading(t *testing.T) {
	sc := emissiveQuadScene()

	// Point the camera away from all geometry
	sc.Camera.LookAt = types.Vec3{0, 0, 1}
	sc.Camera.SetupProjection(1)

	ctx := traceContext(t, sc, 4, 4)
	ctx.Push = PushConstants{Frame: 1, MaxDepth: 2, MaxSamples: 1, Seed: 7}
	ctx.Uniforms.BgColor = types.Vec3{0.25, 0.5, 0.75}

	if err := TraceFrame()(ctx)(); err != nil {
		t.Fatal(err)
	}

	offset := (2*4 + 2) * 4
	if ctx.Raw.F32[offset] != 0.25 || ctx.Raw.F32[offset+1] != 0.5 || ctx.Raw.F32[offset+2] != 0.75 {
		t.Fatalf("expected miss pixel to shade as the background color; got %v", ctx.Raw.F32[offset:offset+3])
	}
}

func TestTraceFrameShadesFromSnapshottedCamera(t *testing.T) {
	sc := emissiveQuadScene()
	ctx := traceContext(t, sc, 4, 4)
	ctx.Push = PushConstants{Frame: 1, MaxDepth: 2, MaxSamples: 1, Seed: 11}
	ctx.Uniforms.BgColor = types.Vec3{0.25, 0.5, 0.75}

	op := TraceFrame()(ctx)

	// Move the live camera away from the quad after the op is recorded.
	// The op must keep shading with the snapshot taken at record time.
	sc.Camera.LookAt = types.Vec3{0, 0, 1}
	sc.Camera.SetupProjection(1)

	if err := op(); err != nil {
		t.Fatal(err)
	}

	offset := (2*4 + 2) * 4
	if ctx.Raw.F32[offset+3] != 1 || ctx.Raw.F32[offset] == 0.25 {
		t.Fatalf("expected center pixel to hit the quad via the snapshotted frustrum; got %v", ctx.Raw.F32[offset:offset+4])
	}
}

func traceContext(t *testing.T, sc *scene.Scene, w, h uint32) *Context {
	t.Helper()

	mkImage := func() *device.Image {
		img, err := device.NewImage(device.FmtRGBA32F, w, h)
		if err != nil {
			t.Fatal(err)
		}
		return img
	}

	return &Context{
		Scene: sc,
		Uniforms: FrameUniforms{
			InvViewProj: sc.Camera.InvViewProjMat(),
			CameraPos:   sc.Camera.Position,
			Frustrum:    sc.Camera.Frustrum,
		},
		Raw:    mkImage(),
		Albedo: mkImage(),
		Normal: mkImage(),
		Depth:  mkImage(),
	}
}

// Build a scene with a single emissive quad covering the camera frustrum.
func emissiveQuadScene() *scene.Scene {
	v0 := types.Vec3{-100, -100, -5}
	v1 := types.Vec3{100, -100, -5}
	v2 := types.Vec3{100, 100, -5}
	v3 := types.Vec3{-100, 100, -5}
	n := types.Vec3{0, 0, 1}

	triangles := []scene.Triangle{
		{Vertices: [3]types.Vec3{v0, v1, v2}, Normals: [3]types.Vec3{n, n, n}},
		{Vertices: [3]types.Vec3{v0, v2, v3}, Normals: [3]types.Vec3{n, n, n}},
	}

	var root scene.BvhNode
	root.SetBBox([2]types.Vec3{{-100, -100, -5}, {100, 100, -5}})
	root.SetTriangles(0, uint32(len(triangles)))

	camera := scene.NewCamera(45)
	camera.SetupProjection(1)

	return &scene.Scene{
		Camera:    camera,
		Triangles: triangles,
		Nodes:     []scene.BvhNode{root},
		Materials: []scene.Material{{Name: "lamp", Kd: types.Vec3{0.5, 0.5, 0.5}, Ke: types.Vec3{5, 5, 5}}},
	}
}

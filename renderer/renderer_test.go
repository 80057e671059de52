package renderer

import (
	"testing"

	"github.com/vegatrace/vega/denoiser"
	"github.com/vegatrace/vega/scene"
	"github.com/vegatrace/vega/types"
)

func TestRendererDenoiseCadence(t *testing.T) {
	dn := newMockDenoiser()
	r := testRenderer(t, dn, func(s *Settings) {
		s.MaxFrames = 4
		s.DenoiseEveryNFrames = 2
	})
	defer r.Close()

	// Frames 0..4: frame 0 is skipped, frames 2 and 4 denoise (4 is the
	// final accumulation frame).
	for i := 0; i < 5; i++ {
		if err := r.Render(); err != nil {
			t.Fatalf("[frame %d] %v", i, err)
		}
	}

	if err := r.(*defaultRenderer).pool.Drain(); err != nil {
		t.Fatal(err)
	}
	if len(dn.denoiseCalls) != 2 {
		t.Fatalf("expected 2 denoise calls; got %d", len(dn.denoiseCalls))
	}

	stats := r.Stats()
	if stats.Frame != 4 {
		t.Fatalf("expected frame 4; got %d", stats.Frame)
	}
	if stats.DenoisedFrame != 4 {
		t.Fatalf("expected denoised frame 4; got %d", stats.DenoisedFrame)
	}
	if stats.TimelineValue != 2 {
		t.Fatalf("expected timeline value 2; got %d", stats.TimelineValue)
	}
}

func TestRendererFreezesAtMaxFrames(t *testing.T) {
	dn := newMockDenoiser()
	r := testRenderer(t, dn, func(s *Settings) {
		s.MaxFrames = 2
	})
	defer r.Close()

	for i := 0; i < 5; i++ {
		if err := r.Render(); err != nil {
			t.Fatalf("[frame %d] %v", i, err)
		}
	}

	stats := r.Stats()
	if stats.Frame != 2 {
		t.Fatalf("expected the clock to freeze at frame 2; got %d", stats.Frame)
	}
	if !stats.Frozen {
		t.Fatal("expected frozen stats after reaching the frame limit")
	}

	// Only the final frame lands on the denoise cadence (2 < everyN but
	// it equals maxFrames).
	if err := r.(*defaultRenderer).pool.Drain(); err != nil {
		t.Fatal(err)
	}
	if len(dn.denoiseCalls) != 1 {
		t.Fatalf("expected 1 denoise call; got %d", len(dn.denoiseCalls))
	}
}

func TestRendererCameraChangeResetsAccumulation(t *testing.T) {
	dn := newMockDenoiser()
	r := testRenderer(t, dn, nil)
	defer r.Close()

	for i := 0; i < 3; i++ {
		if err := r.Render(); err != nil {
			t.Fatalf("[frame %d] %v", i, err)
		}
	}
	if stats := r.Stats(); stats.Frame != 2 {
		t.Fatalf("expected frame 2 before the camera moved; got %d", stats.Frame)
	}

	r.(*defaultRenderer).sc.Camera.Move(scene.Forward, 0.1)
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if stats := r.Stats(); stats.Frame != 0 {
		t.Fatalf("expected accumulation to restart at frame 0; got %d", stats.Frame)
	}
}

func TestRendererRestartClearsAccumulationTargets(t *testing.T) {
	dn := newMockDenoiser()
	r := testRenderer(t, dn, func(s *Settings) {
		s.DenoiseEveryNFrames = 100
	})
	defer r.Close()

	for i := 0; i < 2; i++ {
		if err := r.Render(); err != nil {
			t.Fatalf("[frame %d] %v", i, err)
		}
	}

	// Seed a stale pixel in a target the restarted frame never writes;
	// the recorded clear op must wipe it once the queue reaches it.
	def := r.(*defaultRenderer)
	if err := def.pool.Drain(); err != nil {
		t.Fatal(err)
	}
	def.targets.Get(RoleDenoised).F32[0] = 1

	def.sc.Camera.Move(scene.Forward, 0.1)
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if err := def.pool.Drain(); err != nil {
		t.Fatal(err)
	}

	if got := def.targets.Get(RoleDenoised).F32[0]; got != 0 {
		t.Fatalf("expected restarted accumulation to clear stale target pixels; got %f", got)
	}
}

func TestRendererDirectOnlyWithoutService(t *testing.T) {
	r := testRenderer(t, nil, func(s *Settings) {
		s.DenoiseEveryNFrames = 1
		s.DenoiseFirstFrame = true
	})
	defer r.Close()

	for i := 0; i < 3; i++ {
		if err := r.Render(); err != nil {
			t.Fatalf("[frame %d] %v", i, err)
		}
	}

	stats := r.Stats()
	if stats.TimelineValue != 0 {
		t.Fatalf("expected no branched submissions without an accelerator; got value %d", stats.TimelineValue)
	}
	if stats.DenoisedFrame != -1 {
		t.Fatalf("expected the raw image to be presented; got denoised frame %d", stats.DenoisedFrame)
	}
}

func TestRendererResizeFailureKeepsTargets(t *testing.T) {
	r := testRenderer(t, newMockDenoiser(), nil)
	defer r.Close()

	if err := r.Render(); err != nil {
		t.Fatal(err)
	}

	if err := r.Resize(1<<20, 1<<20); err == nil {
		t.Fatal("expected oversized resize to fail")
	}

	def := r.(*defaultRenderer)
	if w, h := def.targets.Size(); w != 8 || h != 8 {
		t.Fatalf("expected targets to retain size 8x8 after a failed resize; got %dx%d", w, h)
	}

	// Rendering continues at the old size.
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
}

func TestRendererResizeRestartsAccumulation(t *testing.T) {
	dn := newMockDenoiser()
	r := testRenderer(t, dn, nil)
	defer r.Close()

	for i := 0; i < 3; i++ {
		if err := r.Render(); err != nil {
			t.Fatalf("[frame %d] %v", i, err)
		}
	}

	if err := r.Resize(16, 16); err != nil {
		t.Fatal(err)
	}
	if dn.allocW != 16 || dn.allocH != 16 {
		t.Fatalf("expected accelerator buffers to be reallocated at 16x16; got %dx%d", dn.allocW, dn.allocH)
	}

	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if stats := r.Stats(); stats.Frame != 0 {
		t.Fatalf("expected accumulation to restart after resize; got frame %d", stats.Frame)
	}
}

func TestRendererPick(t *testing.T) {
	r := testRenderer(t, newMockDenoiser(), nil)
	defer r.Close()

	if err := r.Render(); err != nil {
		t.Fatal(err)
	}

	res := r.Pick(4, 4)
	if !res.Hit() {
		t.Fatal("expected center pick to hit the quad")
	}
	if res.InstanceID != 0 {
		t.Fatalf("expected instance 0; got %d", res.InstanceID)
	}
	if res.Name != "quad" {
		t.Fatalf("expected instance name 'quad'; got %s", res.Name)
	}
	if res.HitT <= 0 {
		t.Fatalf("expected positive hit distance; got %f", res.HitT)
	}

	// A pick outside the frame reports a miss with the sentinel ID.
	res = r.Pick(100, 100)
	if res.Hit() {
		t.Fatal("expected out-of-bounds pick to miss")
	}
	if res.InstanceID != NoInstance || res.HitT != -1 {
		t.Fatalf("expected miss sentinels; got instance %d, hitT %f", res.InstanceID, res.HitT)
	}
}

func TestRendererClose(t *testing.T) {
	r := testRenderer(t, newMockDenoiser(), nil)
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}

	r.Close()
	if err := r.Render(); err != ErrRendererClosed {
		t.Fatalf("expected error %v; got %v", ErrRendererClosed, err)
	}
}

func testRenderer(t *testing.T, dn *mockDenoiser, tweak func(*Settings)) Renderer {
	t.Helper()

	settings := DefaultSettings()
	settings.MaxDepth = 2
	if tweak != nil {
		tweak(&settings)
	}

	opts := Options{
		FrameW:   8,
		FrameH:   8,
		Settings: settings,
	}

	var service denoiser.Service
	if dn != nil {
		service = dn
	}

	r, err := NewDefault(renderQuadScene(), service, opts)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// Large emissive quad at z=-2 covering the frustrum.
func renderQuadScene() *scene.Scene {
	v0 := types.Vec3{-50, -50, -2}
	v1 := types.Vec3{50, -50, -2}
	v2 := types.Vec3{50, 50, -2}
	v3 := types.Vec3{-50, 50, -2}
	n := types.Vec3{0, 0, 1}

	triangles := []scene.Triangle{
		{Vertices: [3]types.Vec3{v0, v1, v2}, Normals: [3]types.Vec3{n, n, n}},
		{Vertices: [3]types.Vec3{v0, v2, v3}, Normals: [3]types.Vec3{n, n, n}},
	}

	var root scene.BvhNode
	root.SetBBox([2]types.Vec3{{-50, -50, -2}, {50, 50, -2}})
	root.SetTriangles(0, uint32(len(triangles)))

	return &scene.Scene{
		Triangles:     triangles,
		Nodes:         []scene.BvhNode{root},
		Materials:     []scene.Material{{Name: "light", Ke: types.Vec3{1, 1, 1}}},
		InstanceNames: []string{"quad"},
		Camera:        scene.NewCamera(45),
	}
}

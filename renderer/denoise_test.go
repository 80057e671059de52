package renderer

import "testing"

func TestNeedDenoise(t *testing.T) {
	type spec struct {
		apply      bool
		firstFrame bool
		everyN     int64
		maxFrames  int64
		frame      int64
		expNeed    bool
	}

	specs := []spec{
		// Frame 0 is skipped unless first-frame denoising is on.
		{true, false, 100, 200000, 0, false},
		{true, true, 100, 200000, 0, true},
		// Mid-window frames are never filtered.
		{true, false, 100, 200000, 1, false},
		{true, false, 100, 200000, 99, false},
		{true, false, 100, 200000, 101, false},
		// Window boundaries are filtered.
		{true, false, 100, 200000, 100, true},
		{true, false, 100, 200000, 200, true},
		// The final accumulation frame is always filtered even when it
		// does not land on a window boundary.
		{true, false, 100, 200000, 200000, true},
		{true, false, 100, 205, 205, true},
		{true, false, 100, 205, 204, false},
		// Disabled denoising wins over everything.
		{false, true, 100, 200000, 100, false},
		{false, false, 100, 200000, 200000, false},
	}

	for specIndex, spec := range specs {
		s := DefaultSettings()
		s.DenoiseApply = spec.apply
		s.DenoiseFirstFrame = spec.firstFrame
		s.DenoiseEveryNFrames = spec.everyN
		s.MaxFrames = spec.maxFrames

		if need := NeedDenoise(s, spec.frame); need != spec.expNeed {
			t.Fatalf("[spec %d] expected NeedDenoise for frame %d to be %t; got %t", specIndex, spec.frame, spec.expNeed, need)
		}
	}
}

func TestShowDenoised(t *testing.T) {
	type spec struct {
		apply      bool
		firstFrame bool
		everyN     int64
		maxFrames  int64
		frame      int64
		expShow    bool
	}

	specs := []spec{
		// Before the first full window the raw accumulation is shown.
		{true, false, 100, 200000, 0, false},
		{true, false, 100, 200000, 99, false},
		{true, false, 100, 200000, 100, true},
		{true, false, 100, 200000, 150, true},
		// First-frame denoising enables presentation immediately.
		{true, true, 100, 200000, 0, true},
		{true, true, 100, 200000, 50, true},
		// A short accumulation run still presents the final filtered frame.
		{true, false, 100, 50, 50, true},
		{true, false, 100, 50, 49, false},
		{false, true, 100, 200000, 150, false},
	}

	for specIndex, spec := range specs {
		s := DefaultSettings()
		s.DenoiseApply = spec.apply
		s.DenoiseFirstFrame = spec.firstFrame
		s.DenoiseEveryNFrames = spec.everyN
		s.MaxFrames = spec.maxFrames

		if show := ShowDenoised(s, spec.frame); show != spec.expShow {
			t.Fatalf("[spec %d] expected ShowDenoised for frame %d to be %t; got %t", specIndex, spec.frame, spec.expShow, show)
		}
	}
}

func TestDenoisedFrame(t *testing.T) {
	type spec struct {
		frame    int64
		expFrame int64
	}

	specs := []spec{
		{0, 0},
		{99, 0},
		{100, 100},
		{101, 100},
		{250, 200},
	}

	s := DefaultSettings()
	s.DenoiseEveryNFrames = 100

	for specIndex, spec := range specs {
		if got := DenoisedFrame(s, spec.frame); got != spec.expFrame {
			t.Fatalf("[spec %d] expected denoised frame %d; got %d", specIndex, spec.expFrame, got)
		}
	}
}

func TestPlanFrame(t *testing.T) {
	s := DefaultSettings()
	s.DenoiseEveryNFrames = 100
	s.DenoiseBlend = 0.25

	// Without a branch-capable device every frame submits directly.
	plan := PlanFrame(DirectOnly, s, 100)
	if plan.Mode != SubmitDirect || plan.Denoise || plan.ShowDenoised {
		t.Fatalf("expected a direct plan without denoising; got %+v", plan)
	}

	plan = PlanFrame(BranchCapable, s, 100)
	if plan.Mode != SubmitBranched {
		t.Fatalf("expected mode %q; got %q", SubmitBranched, plan.Mode)
	}
	if !plan.Denoise || !plan.ShowDenoised {
		t.Fatalf("expected a denoising plan on a window boundary; got %+v", plan)
	}
	if plan.Blend != 0.25 {
		t.Fatalf("expected blend 0.25; got %f", plan.Blend)
	}

	// Mid-window frames submit directly but still present the last
	// denoised image.
	plan = PlanFrame(BranchCapable, s, 150)
	if plan.Mode != SubmitDirect {
		t.Fatalf("expected mode %q; got %q", SubmitDirect, plan.Mode)
	}
	if plan.Denoise {
		t.Fatal("expected no denoising mid-window")
	}
	if !plan.ShowDenoised {
		t.Fatal("expected the denoised image to remain presented mid-window")
	}
}

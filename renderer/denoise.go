package renderer

// Capability describes what the frame orchestrator may do with the
// denoising accelerator. It is resolved exactly once at startup.
type Capability int

const (
	// No accelerator present; every frame is submitted directly.
	DirectOnly Capability = iota

	// An accelerator is available; frames may branch across the two
	// execution timelines.
	BranchCapable
)

func (c Capability) String() string {
	if c == BranchCapable {
		return "branch-capable"
	}
	return "direct-only"
}

// SubmitMode tags how a frame's command streams are handed to the queue.
type SubmitMode int

const (
	// Single submission, no cross-timeline hand-off.
	SubmitDirect SubmitMode = iota

	// Primary submission plus accelerator dispatch plus a gated
	// continuation submission.
	SubmitBranched
)

func (m SubmitMode) String() string {
	if m == SubmitBranched {
		return "branched"
	}
	return "direct"
}

// FramePlan is the scheduler's decision for a single frame.
type FramePlan struct {
	Mode SubmitMode

	// True when the denoiser must run for this frame.
	Denoise bool

	// True when the display target should present the denoised image
	// rather than the raw accumulation.
	ShowDenoised bool

	Blend float32
}

// NeedDenoise reports whether the accelerator should filter the given
// frame. The final accumulation frame is always filtered; frame 0 is
// filtered only when DenoiseFirstFrame is set; every other frame is
// filtered on the DenoiseEveryNFrames cadence.
func NeedDenoise(s Settings, frame int64) bool {
	if !s.DenoiseApply {
		return false
	}
	if frame == s.MaxFrames {
		return true
	}
	if !s.DenoiseFirstFrame && frame == 0 {
		return false
	}
	if s.DenoiseEveryNFrames <= 0 {
		return false
	}
	return frame%s.DenoiseEveryNFrames == 0
}

// ShowDenoised reports whether the display should present the denoised
// target for the given frame. Before the first full accumulation window
// has elapsed the raw image is shown, unless first-frame denoising is on.
func ShowDenoised(s Settings, frame int64) bool {
	if !s.DenoiseApply {
		return false
	}
	return frame >= s.DenoiseEveryNFrames || s.DenoiseFirstFrame || frame >= s.MaxFrames
}

// DenoisedFrame returns the frame number whose accumulation state the
// denoised target currently holds.
func DenoisedFrame(s Settings, frame int64) int64 {
	if s.DenoiseEveryNFrames <= 0 {
		return frame
	}
	return (frame / s.DenoiseEveryNFrames) * s.DenoiseEveryNFrames
}

// PlanFrame combines the startup capability with the per-frame decisions
// into a submit plan. Without a branch-capable device every frame
// degrades to a direct submission showing the raw image.
func PlanFrame(capability Capability, s Settings, frame int64) FramePlan {
	if capability != BranchCapable {
		return FramePlan{Mode: SubmitDirect}
	}

	plan := FramePlan{
		Mode:         SubmitDirect,
		Denoise:      NeedDenoise(s, frame),
		ShowDenoised: ShowDenoised(s, frame),
		Blend:        s.DenoiseBlend,
	}
	if plan.Denoise {
		plan.Mode = SubmitBranched
	}
	return plan
}

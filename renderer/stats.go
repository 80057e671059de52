package renderer

import "time"

// FrameStats is a snapshot of the orchestrator state after the most
// recent Render call.
type FrameStats struct {
	// Frame number accumulated from the current camera pose, or -1
	// before the first frame.
	Frame int64

	// True when the clock has reached the accumulation limit and new
	// trace work is no longer emitted.
	Frozen bool

	// Frame number whose accumulation state the presented denoised
	// image holds, or -1 when the raw image is being presented.
	DenoisedFrame int64

	// Timeline counter value of the most recent branched submission.
	TimelineValue uint64

	// Wall time spent in the most recent Render call. Submissions are
	// asynchronous so this measures recording and pacing, not trace
	// work.
	RenderTime time.Duration
}

package renderer

// Sentinel value held by the clock before the first frame and after every
// reset; the first Advance call after a reset yields frame 0.
const frameNone int64 = -1

// FrameClock tracks the number of frames accumulated from the current
// camera pose. The clock resets itself whenever the camera signature
// changes between frames and freezes once the accumulation limit has been
// reached.
type FrameClock struct {
	frame     int64
	cameraSig uint64
	haveSig   bool
}

func NewFrameClock() *FrameClock {
	return &FrameClock{frame: frameNone}
}

// Advance moves the clock to the next frame. A camera signature mismatch
// restarts accumulation at frame 0. The returned accumulate flag is false
// when the clock is frozen at maxFrames and the caller should not emit new
// trace work.
func (c *FrameClock) Advance(cameraSig uint64, maxFrames int64) (frame int64, accumulate bool) {
	if !c.haveSig || cameraSig != c.cameraSig {
		c.frame = frameNone
		c.cameraSig = cameraSig
		c.haveSig = true
	}

	if c.frame >= maxFrames {
		return c.frame, false
	}

	c.frame++
	return c.frame, true
}

// Frame returns the current frame number, or -1 before the first Advance.
func (c *FrameClock) Frame() int64 {
	return c.frame
}

// Reset restarts accumulation regardless of camera pose. Used after
// resize and scene reloads.
func (c *FrameClock) Reset() {
	c.frame = frameNone
	c.haveSig = false
}

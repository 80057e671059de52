// Package device models the execution timelines that the renderer
// submits work to. A Queue executes command streams in submission
// order on its own scheduling goroutine; cross-timeline ordering is
// expressed exclusively through timeline semaphore signal/wait pairs
// attached to submissions. The package performs no rendering on its
// own; the recorded ops carry the actual work.
package device

import "errors"

var (
	ErrInvalidImageSize = errors.New("device: invalid image dimensions")
	ErrQueueClosed      = errors.New("device: queue has been shut down")
	ErrStreamNotEnded   = errors.New("device: command stream submitted before End")
)

// Package denoiser defines the service contract for the out-of-band
// denoising accelerator. The accelerator executes on its own timeline;
// callers coordinate with it exclusively through the Ready and Done
// timeline semaphores using values allocated by the frame orchestrator.
package denoiser

import (
	"errors"

	"github.com/vegatrace/vega/device"
)

var (
	ErrUnavailable     = errors.New("denoiser: no compatible accelerator device found")
	ErrNotAllocated    = errors.New("denoiser: buffers have not been allocated")
	ErrInvalidImageDim = errors.New("denoiser: image dimensions do not match allocated buffers")
)

// Service is implemented by denoising accelerator backends.
//
// The hand-off protocol for a frame with timeline value v is:
//  1. ImageToBuffer records staging copies into a render queue stream.
//  2. The render queue signals Ready at v after that stream executes.
//  3. Denoise(v, blend) is invoked; the accelerator waits Ready >= v,
//     filters the staged buffers and signals Done at v.
//  4. BufferToImage records the read-back into a continuation stream whose
//     submission waits for Done >= v.
type Service interface {
	// AllocateBuffers sizes the staging and output buffers for the given
	// image dimensions. It must be called before any other operation and
	// again after each resize.
	AllocateBuffers(w, h int) error

	// ImageToBuffer records ops that copy the raw result and the albedo
	// and normal guide channels into the accelerator staging buffers.
	ImageToBuffer(stream *device.CommandStream, result, albedo, normal *device.Image)

	// Denoise asks the accelerator to filter the staged buffers once the
	// Ready semaphore reaches value, then signal Done at value. It never
	// blocks the caller.
	Denoise(value uint64, blend float32)

	// BufferToImage records an op that copies the filtered output into
	// the target image.
	BufferToImage(stream *device.CommandStream, target *device.Image)

	// Ready is signaled by the render queue when staged data is complete.
	Ready() *device.TimelineSemaphore

	// Done is signaled by the accelerator when filtered output is ready.
	Done() *device.TimelineSemaphore

	// Destroy stops the accelerator worker and releases its resources.
	Destroy()
}

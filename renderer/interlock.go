package renderer

import (
	"github.com/vegatrace/vega/denoiser"
	"github.com/vegatrace/vega/device"
)

// Interlock hands frame submissions to the device queue and, for
// branched frames, stitches the render timeline to the accelerator
// timeline through a pair of timeline semaphore waits. Each branched
// frame is tagged with a fresh, strictly increasing counter value that
// is shared by both semaphores.
type Interlock struct {
	queue   *device.Queue
	service denoiser.Service
	counter uint64
}

func NewInterlock(queue *device.Queue, service denoiser.Service) *Interlock {
	return &Interlock{
		queue:   queue,
		service: service,
	}
}

// SubmitDirect hands the slot's primary stream to the queue with no
// cross-timeline gating.
func (il *Interlock) SubmitDirect(slot *StreamSlot) error {
	done := make(chan error, 1)
	err := il.queue.Submit(device.Submission{
		Streams: []*device.CommandStream{slot.Primary},
		Done:    done,
	})
	if err != nil {
		return err
	}
	slot.Track(done)
	return nil
}

// SubmitBranched submits the slot's primary stream, dispatches the
// accelerator and submits the continuation stream gated on the
// accelerator's completion. The call does not block on any of the
// three stages; the queue and the accelerator worker pace each other
// through the shared counter value.
func (il *Interlock) SubmitBranched(slot *StreamSlot, blend float32) error {
	il.counter++
	value := il.counter

	primaryDone := make(chan error, 1)
	err := il.queue.Submit(device.Submission{
		Streams: []*device.CommandStream{slot.Primary},
		Signal:  []device.SemaphoreValue{{Sem: il.service.Ready(), Value: value}},
		Done:    primaryDone,
	})
	if err != nil {
		return err
	}
	slot.Track(primaryDone)

	il.service.Denoise(value, blend)

	continuationDone := make(chan error, 1)
	err = il.queue.Submit(device.Submission{
		Streams: []*device.CommandStream{slot.Continuation},
		Wait:    []device.SemaphoreValue{{Sem: il.service.Done(), Value: value}},
		Done:    continuationDone,
	})
	if err != nil {
		return err
	}
	slot.Track(continuationDone)
	return nil
}

// Value returns the counter value tagged onto the most recent
// branched submission.
func (il *Interlock) Value() uint64 {
	return il.counter
}

package renderer

import (
	"fmt"

	"github.com/vegatrace/vega/device"
)

// Frames in flight before the CPU blocks on slot reuse.
const numStreamSlots = 3

// StreamSlot bundles the command streams recorded for a single frame.
// The primary stream carries the trace and staging work; the
// continuation stream carries work gated on the accelerator, and stays
// empty for directly submitted frames.
type StreamSlot struct {
	Primary      *device.CommandStream
	Continuation *device.CommandStream

	pending []<-chan error
}

// Track registers a submission completion channel with the slot. The
// slot cannot be reused until every tracked submission has retired.
func (slot *StreamSlot) Track(done <-chan error) {
	slot.pending = append(slot.pending, done)
}

// Wait blocks until all tracked submissions retire and returns the
// first error any of them reported.
func (slot *StreamSlot) Wait() error {
	var firstErr error
	for _, done := range slot.pending {
		if err := <-done; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	slot.pending = slot.pending[:0]
	return firstErr
}

// StreamPool rotates a fixed set of stream slots so that recording for
// the next frame can begin while earlier frames are still executing.
type StreamPool struct {
	slots [numStreamSlots]*StreamSlot
	next  int
}

func NewStreamPool() *StreamPool {
	pool := &StreamPool{}
	for slotIndex := 0; slotIndex < numStreamSlots; slotIndex++ {
		pool.slots[slotIndex] = &StreamSlot{
			Primary:      device.NewCommandStream(fmt.Sprintf("frame-%d/primary", slotIndex)),
			Continuation: device.NewCommandStream(fmt.Sprintf("frame-%d/continuation", slotIndex)),
		}
	}
	return pool
}

// Acquire returns the next slot in round-robin order, blocking until
// its previous frame has retired, with both streams reset and ready
// for recording.
func (pool *StreamPool) Acquire() (*StreamSlot, error) {
	slot := pool.slots[pool.next]
	pool.next = (pool.next + 1) % numStreamSlots

	if err := slot.Wait(); err != nil {
		return nil, err
	}
	slot.Primary.Reset()
	slot.Continuation.Reset()
	return slot, nil
}

// Drain waits for every in-flight slot to retire.
func (pool *StreamPool) Drain() error {
	var firstErr error
	for _, slot := range pool.slots {
		if err := slot.Wait(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

package device

import (
	"fmt"
	"sync"
	"time"
)

// A timeline semaphore pairs a signal emitted on one execution
// timeline with a wait issued on another. Its payload is a
// monotonically increasing counter; a wait for value v is satisfied
// once the counter reaches v or beyond. Signaled values must strictly
// increase: reusing or rolling back a value would let a wait be
// satisfied by a stale signal from an earlier frame, which is a
// design-time bug rather than a recoverable condition.
type TimelineSemaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	name  string
	value uint64
}

// Create a new timeline semaphore with its counter at zero.
func NewTimelineSemaphore(name string) *TimelineSemaphore {
	s := &TimelineSemaphore{name: name}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Get the last signaled value.
func (s *TimelineSemaphore) Value() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Advance the counter to v and wake all waiters whose target has been
// reached. Panics if v does not advance the counter.
func (s *TimelineSemaphore) Signal(v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v <= s.value {
		panic(fmt.Sprintf("device: semaphore %q: signal value %d does not advance counter (at %d)", s.name, v, s.value))
	}
	s.value = v
	s.cond.Broadcast()
}

// Block until the counter reaches v. Returns immediately if it
// already has.
func (s *TimelineSemaphore) Wait(v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.value < v {
		s.cond.Wait()
	}
}

// Block until the counter reaches v or the timeout elapses. Reports
// whether the target value was reached. An expired wait leaves no
// goroutine behind waiting on the semaphore.
func (s *TimelineSemaphore) WaitTimeout(v uint64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	// The timer shares the broadcast with Signal so the wait loop can
	// observe the deadline without a dedicated waiter goroutine.
	timer := time.AfterFunc(timeout, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	for s.value < v {
		if !time.Now().Before(deadline) {
			return false
		}
		s.cond.Wait()
	}
	return true
}

// A (semaphore, value) pair attached to a queue submission either as
// a wait dependency or as a completion signal.
type SemaphoreValue struct {
	Sem   *TimelineSemaphore
	Value uint64
}

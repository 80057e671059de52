package device

import (
	"runtime"
	"testing"
	"time"
)

func TestSemaphoreSignalAdvancesValue(t *testing.T) {
	sem := NewTimelineSemaphore("test")

	if got := sem.Value(); got != 0 {
		t.Fatalf("expected initial value 0; got %d", got)
	}

	sem.Signal(1)
	sem.Signal(5)
	if got := sem.Value(); got != 5 {
		t.Fatalf("expected value 5 after signals; got %d", got)
	}
}

func TestSemaphoreStaleSignalPanics(t *testing.T) {
	type spec struct {
		first  uint64
		second uint64
	}
	specs := []spec{
		{3, 3},
		{3, 2},
	}

	for index, s := range specs {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("[spec %d] expected panic signaling %d after %d", index, s.second, s.first)
				}
			}()

			sem := NewTimelineSemaphore("test")
			sem.Signal(s.first)
			sem.Signal(s.second)
		}()
	}
}

func TestSemaphoreWaitNotSatisfiedByOlderSignal(t *testing.T) {
	sem := NewTimelineSemaphore("test")

	sem.Signal(1)
	if sem.WaitTimeout(2, 50*time.Millisecond) {
		t.Fatal("wait for 2 satisfied by signal for 1")
	}

	sem.Signal(2)
	if !sem.WaitTimeout(2, time.Second) {
		t.Fatal("wait for 2 not satisfied after signal for 2")
	}
}

func TestSemaphoreWaitTimeoutLeavesNoWaiter(t *testing.T) {
	sem := NewTimelineSemaphore("test")

	before := runtime.NumGoroutine()
	for i := 0; i < 10; i++ {
		if sem.WaitTimeout(1, time.Millisecond) {
			t.Fatal("wait satisfied without any signal")
		}
	}

	// Give any stray waiters a moment to show up in the count.
	time.Sleep(20 * time.Millisecond)
	if after := runtime.NumGoroutine(); after > before {
		t.Fatalf("expected no goroutines left behind by expired waits; had %d, got %d", before, after)
	}

	// The semaphore must still work after expired waits.
	sem.Signal(1)
	if !sem.WaitTimeout(1, time.Second) {
		t.Fatal("wait for 1 not satisfied after signal for 1")
	}
}

func TestSemaphoreWaitSatisfiedByLaterSignal(t *testing.T) {
	sem := NewTimelineSemaphore("test")

	done := make(chan struct{})
	go func() {
		sem.Wait(3)
		close(done)
	}()

	// A single signal beyond the waited value must release the waiter.
	sem.Signal(7)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter not released by signal past its target value")
	}
}

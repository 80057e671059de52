package device

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func endedStream(t *testing.T, name string, ops ...Op) *CommandStream {
	t.Helper()
	cs := NewCommandStream(name)
	cs.Begin()
	for _, op := range ops {
		cs.Record(op)
	}
	cs.End()
	return cs
}

func TestQueueExecutesInSubmissionOrder(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()

	var order []int
	done := make(chan error, 1)

	for i := 0; i < 3; i++ {
		i := i
		sub := Submission{
			Streams: []*CommandStream{
				endedStream(t, "s", func() error {
					order = append(order, i)
					return nil
				}),
			},
		}
		if i == 2 {
			sub.Done = done
		}
		if err := q.Submit(sub); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	if err := <-done; err != nil {
		t.Fatalf("unexpected execution error: %v", err)
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("expected submission order [0 1 2]; got %v", order)
		}
	}
}

func TestQueueWaitGatesExecution(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()

	sem := NewTimelineSemaphore("gate")
	var ran atomic.Bool

	err := q.Submit(Submission{
		Streams: []*CommandStream{
			endedStream(t, "gated", func() error {
				ran.Store(true)
				return nil
			}),
		},
		Wait: []SemaphoreValue{{Sem: sem, Value: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(50 * time.Millisecond)
	if ran.Load() {
		t.Fatal("gated stream executed before its wait value was signaled")
	}

	sem.Signal(1)
	q.WaitIdle()
	if !ran.Load() {
		t.Fatal("gated stream did not execute after signal")
	}
}

func TestQueueSignalsAfterRetire(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()

	sem := NewTimelineSemaphore("done")
	var ran atomic.Bool

	err := q.Submit(Submission{
		Streams: []*CommandStream{
			endedStream(t, "work", func() error {
				ran.Store(true)
				return nil
			}),
		},
		Signal: []SemaphoreValue{{Sem: sem, Value: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}

	sem.Wait(1)
	if !ran.Load() {
		t.Fatal("signal emitted before stream work retired")
	}
}

func TestQueueSubmitDoesNotBlockOnGatedWork(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()

	sem := NewTimelineSemaphore("gate")

	// First submission is gated on a value nobody signaled yet.
	err := q.Submit(Submission{
		Streams: []*CommandStream{endedStream(t, "gated", func() error { return nil })},
		Wait:    []SemaphoreValue{{Sem: sem, Value: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}

	// The submitting side must still be able to queue more work.
	submitted := make(chan struct{})
	go func() {
		q.Submit(Submission{
			Streams: []*CommandStream{endedStream(t, "follow", func() error { return nil })},
		})
		close(submitted)
	}()

	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Fatal("submit blocked on a gated prior submission")
	}

	sem.Signal(1)
	q.WaitIdle()
}

func TestQueueSurfacesExecutionErrors(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()

	bang := errors.New("bang")
	err := q.SubmitAndWait(Submission{
		Streams: []*CommandStream{endedStream(t, "boom", func() error { return bang })},
	})
	if !errors.Is(err, bang) {
		t.Fatalf("expected execution error to surface; got %v", err)
	}

	// Err reports each error once; a failed stream must not poison
	// later successful submissions.
	if err := q.Err(); !errors.Is(err, bang) {
		t.Fatalf("expected Err to report the execution error; got %v", err)
	}
	if err := q.Err(); err != nil {
		t.Fatalf("expected Err to clear after being read; got %v", err)
	}

	err = q.SubmitAndWait(Submission{
		Streams: []*CommandStream{endedStream(t, "ok", func() error { return nil })},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := q.Err(); err != nil {
		t.Fatalf("expected no error after a successful submission; got %v", err)
	}
}

func TestQueueRejectsUnendedStream(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()

	cs := NewCommandStream("open")
	cs.Begin()

	err := q.Submit(Submission{Streams: []*CommandStream{cs}})
	if !errors.Is(err, ErrStreamNotEnded) {
		t.Fatalf("expected ErrStreamNotEnded; got %v", err)
	}
}

func TestStreamReuseAfterRetire(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()

	cs := endedStream(t, "reused", func() error { return nil })
	if err := q.SubmitAndWait(Submission{Streams: []*CommandStream{cs}}); err != nil {
		t.Fatal(err)
	}

	// Retired streams go back to their initial state and can record again.
	cs.Begin()
	cs.Record(func() error { return nil })
	cs.End()
	if err := q.SubmitAndWait(Submission{Streams: []*CommandStream{cs}}); err != nil {
		t.Fatal(err)
	}
}

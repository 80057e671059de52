package device

import (
	"fmt"
	"sync"
)

// A unit of recorded work. Ops execute on the consuming queue's
// goroutine, in recording order.
type Op func() error

type streamState uint8

const (
	streamInitial streamState = iota
	streamRecording
	streamEnded
	streamPending
)

// A reusable command recording context. The lifecycle is
// Reset -> Begin -> Record... -> End -> submit; a stream that has
// been submitted must not be touched again until the queue reports
// its submission retired. Lifecycle misuse panics: it indicates a
// scheduling bug (typically reusing a slot before its prior frame
// retired), not a runtime condition to recover from.
type CommandStream struct {
	mu    sync.Mutex
	name  string
	state streamState
	ops   []Op
}

// Create a new, empty command stream.
func NewCommandStream(name string) *CommandStream {
	return &CommandStream{name: name}
}

func (cs *CommandStream) Name() string {
	return cs.name
}

// Discard all recorded ops and make the stream recordable again.
func (cs *CommandStream) Reset() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.state == streamPending {
		panic(fmt.Sprintf("device: stream %q: reset while submission in flight", cs.name))
	}
	cs.ops = cs.ops[:0]
	cs.state = streamInitial
}

// Start recording.
func (cs *CommandStream) Begin() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.state != streamInitial {
		panic(fmt.Sprintf("device: stream %q: begin without reset", cs.name))
	}
	cs.state = streamRecording
}

// Append an op to the stream.
func (cs *CommandStream) Record(op Op) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.state != streamRecording {
		panic(fmt.Sprintf("device: stream %q: record outside begin/end", cs.name))
	}
	cs.ops = append(cs.ops, op)
}

// Finish recording; the stream may now be submitted exactly once.
func (cs *CommandStream) End() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.state != streamRecording {
		panic(fmt.Sprintf("device: stream %q: end without begin", cs.name))
	}
	cs.state = streamEnded
}

// Number of recorded ops.
func (cs *CommandStream) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.ops)
}

// Called by the queue when the stream enters a submission.
func (cs *CommandStream) markPending() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.state != streamEnded {
		return ErrStreamNotEnded
	}
	cs.state = streamPending
	return nil
}

// Called by the queue once the submission retired.
func (cs *CommandStream) markRetired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.state = streamInitial
	cs.ops = cs.ops[:0]
}

func (cs *CommandStream) execute() error {
	cs.mu.Lock()
	ops := make([]Op, len(cs.ops))
	copy(ops, cs.ops)
	cs.mu.Unlock()

	for _, op := range ops {
		if err := op(); err != nil {
			return err
		}
	}
	return nil
}

package device

import (
	"sync"

	"github.com/vegatrace/vega/log"
)

// Capacity of the submission channel. Submit only blocks when the
// caller runs this many submissions ahead of the queue, which the
// renderer's frames-in-flight cap prevents.
const submitQueueDepth = 16

// A batch of command streams handed to a queue in one Submit call.
// Wait pairs gate the entire batch: no op executes before every wait
// value has been reached on its semaphore. Signal pairs are emitted
// after the last op of the batch retires. Done, when non-nil,
// receives the batch's execution result exactly once.
type Submission struct {
	Streams []*CommandStream
	Wait    []SemaphoreValue
	Signal  []SemaphoreValue
	Done    chan<- error
}

// A Queue executes submissions in FIFO order on a dedicated
// goroutine, standing in for an independently scheduled hardware
// queue. Submitting never blocks on the execution of prior work;
// only WaitIdle synchronizes the caller with the queue's timeline.
type Queue struct {
	logger log.Logger
	name   string

	subChan   chan Submission
	closeChan chan struct{}
	wg        sync.WaitGroup

	// Tracks submissions that have been accepted but not retired.
	inFlight sync.WaitGroup

	mu      sync.Mutex
	lastErr error
	closed  bool
}

// Create a queue and start its scheduling goroutine.
func NewQueue(name string) *Queue {
	q := &Queue{
		logger:    log.New("queue/" + name),
		name:      name,
		subChan:   make(chan Submission, submitQueueDepth),
		closeChan: make(chan struct{}),
	}

	q.wg.Add(1)
	go q.run()
	return q
}

func (q *Queue) Name() string {
	return q.name
}

// Hand a batch of ended command streams to the queue. The call
// returns as soon as the batch is accepted; execution happens
// asynchronously on the queue goroutine.
func (q *Queue) Submit(sub Submission) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	for _, cs := range sub.Streams {
		if err := cs.markPending(); err != nil {
			q.mu.Unlock()
			return err
		}
	}
	q.inFlight.Add(1)
	q.mu.Unlock()

	q.subChan <- sub
	return nil
}

// Submit a batch and block until it retires, returning its execution
// result. Used only off the hot path (picking, one-shot uploads).
func (q *Queue) SubmitAndWait(sub Submission) error {
	done := make(chan error, 1)
	sub.Done = done
	if err := q.Submit(sub); err != nil {
		return err
	}
	return <-done
}

// Block until every accepted submission has retired.
func (q *Queue) WaitIdle() {
	q.inFlight.Wait()
}

// Err returns the last execution error observed by the queue goroutine
// and clears it. Each error is reported at most once; callers that need
// per-submission errors should use the submission's Done channel.
func (q *Queue) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	err := q.lastErr
	q.lastErr = nil
	return err
}

// Drain outstanding work and stop the scheduling goroutine.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.WaitIdle()
	close(q.closeChan)
	q.wg.Wait()
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case sub := <-q.subChan:
			q.execute(sub)
		case <-q.closeChan:
			// Drain anything that raced with Close.
			for {
				select {
				case sub := <-q.subChan:
					q.execute(sub)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) execute(sub Submission) {
	for _, w := range sub.Wait {
		w.Sem.Wait(w.Value)
	}

	var err error
	for _, cs := range sub.Streams {
		if err = cs.execute(); err != nil {
			q.logger.Errorf("stream %q failed: %v", cs.Name(), err)
			break
		}
	}

	for _, cs := range sub.Streams {
		cs.markRetired()
	}
	for _, s := range sub.Signal {
		s.Sem.Signal(s.Value)
	}

	if err != nil {
		q.mu.Lock()
		q.lastErr = err
		q.mu.Unlock()
	}
	if sub.Done != nil {
		sub.Done <- err
	}
	q.inFlight.Done()
}

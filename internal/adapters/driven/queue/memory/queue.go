// Package memory provides an in-memory JobQueue used in tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure Queue implements the interface.
var _ driven.JobQueue = (*Queue)(nil)

// Queue is a FIFO in-memory job queue with lease semantics. Leases are
// not redelivered on timeout; the interesting surface for tests is
// ordering and the enqueue hook.
type Queue struct {
	mu      sync.Mutex
	pending []driven.Job
	leased  map[string]driven.Job
	signal  chan struct{}

	// EnqueueHook, when set, runs on every enqueue. Tests use it to
	// observe commit/enqueue ordering.
	EnqueueHook func(name string)
}

// New creates an empty in-memory queue.
func New() *Queue {
	return &Queue{
		leased: make(map[string]driven.Job),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends a named job.
func (q *Queue) Enqueue(_ context.Context, name string, args map[string]any) error {
	q.mu.Lock()
	q.pending = append(q.pending, driven.Job{
		ID:   uuid.New().String(),
		Name: name,
		Args: args,
	})
	q.mu.Unlock()

	if q.EnqueueHook != nil {
		q.EnqueueHook(name)
	}

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue leases the next job, blocking until one is available or ctx
// is done.
func (q *Queue) Dequeue(ctx context.Context) (*driven.Job, error) {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			job := q.pending[0]
			q.pending = q.pending[1:]
			q.leased[job.ID] = job
			q.mu.Unlock()
			return &job, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.signal:
		}
	}
}

// Ack marks a leased job as completed.
func (q *Queue) Ack(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.leased, id)
	return nil
}

// Jobs returns a snapshot of pending jobs in order.
func (q *Queue) Jobs() []driven.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]driven.Job(nil), q.pending...)
}

// Len returns the number of pending jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

package events

import (
	"context"
	"errors"
)

// ErrQueueClosed is returned by Publish after Close.
var ErrQueueClosed = errors.New("event queue closed")

// Queue is a bounded in-process event channel between the provider side and
// the UI loop. It decodes nothing: producers publish tagged Events, the
// consumer ranges over C and switches on Kind.
type Queue struct {
	ch   chan Event
	done chan struct{}
}

// NewQueue creates a queue with the given buffer size.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 64
	}
	return &Queue{
		ch:   make(chan Event, size),
		done: make(chan struct{}),
	}
}

// Publish enqueues an event, blocking while the queue is full. Returns
// ErrQueueClosed after Close, or the context error if ctx ends first.
func (q *Queue) Publish(ctx context.Context, ev Event) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.ch <- ev:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// C is the consumer side of the queue.
func (q *Queue) C() <-chan Event {
	return q.ch
}

// Close stops the queue. Pending events already buffered remain readable
// from C until drained.
func (q *Queue) Close() error {
	select {
	case <-q.done:
		return nil
	default:
		close(q.done)
	}
	return nil
}

// Package queue defines the contract for enqueuing and consuming
// submitted test sessions.
//
// The in-memory bounded queue decouples HTTP submission from
// classification so a burst of submissions degrades to backpressure
// instead of latency.
package queue

import (
	"context"
	"sync"

	"github.com/edulytics/screener/internal/domain/model"
	"github.com/edulytics/screener/pkg/metrics"
)

const (
	defaultCapacity   = 100000
	defaultBufferSize = 100000
)

// Session is the payload type flowing through the queue.
type Session = model.TestSession

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a session to the queue.
	// Returns false if the queue is full and the session was not enqueued.
	Enqueue(ctx context.Context, s Session) bool

	// Dequeue returns a channel that receives sessions as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Session

	// Len returns the current number of queued sessions.
	Len(ctx context.Context) int

	// Close shuts the queue down. After closing, no new sessions can be
	// enqueued and the dequeue channel drains then closes.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	sessions   chan Session
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultCapacity,
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.sessions = make(chan Session, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a session to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Session) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	if len(q.sessions) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return false
	}

	select {
	case q.sessions <- s:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives sessions as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Session {
	out := make(chan Session)
	go func() {
		defer close(out)
		for s := range q.sessions {
			select {
			case out <- s:
				metrics.RecordQueueDequeue()
				q.updateGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued sessions.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	q.updateGauges()
	return len(q.sessions)
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.sessions)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

// Close shuts the queue down.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.sessions)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

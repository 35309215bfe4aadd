// Package queue defines the contract for enqueuing and consuming plays
// awaiting simulation.
//
// Implementations may use channels or more advanced structures; the
// in-memory bounded queue below is the default.
package queue

import (
	"context"
	"sync"

	"github.com/hitsim/hitsim/internal/domain/model"
	"github.com/hitsim/hitsim/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 100_000
)

// Play is the payload type flowing through the queue.
type Play = model.Play

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a play to the queue.
	// Returns false if the queue is full and the play was not enqueued.
	Enqueue(ctx context.Context, p Play) bool

	// Dequeue returns a channel that will receive plays as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Play

	// Len returns the current number of queued plays.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new plays
	// can be enqueued and the dequeue channel drains then closes.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	plays    chan Play
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.plays = make(chan Play, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds a play to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, p Play) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.plays <- p:
		metrics.RecordQueueEnqueue()
		size := len(q.plays)
		metrics.UpdateQueueSize(size)
		metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
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

// Dequeue exposes the play channel for consumers.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Play {
	return q.plays
}

// Len returns the current number of queued plays.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.plays)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.closed = true
	close(q.plays)
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

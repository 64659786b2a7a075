package queue

import (
	"context"
	"time"
)

// EnqueueOptions tune a single enqueue. Zero values mean default priority
// and immediate visibility.
type EnqueueOptions struct {
	Priority int
	Delay    time.Duration
}

// JobQueue is the background job collaborator. Everything pushed through it
// is for asynchronous persistence or analytics only; nothing in the response
// pipeline ever waits on a job result.
type JobQueue interface {
	// Enqueue submits a job and returns its handle.
	Enqueue(ctx context.Context, topic, jobType string, payload any, opts EnqueueOptions) (string, error)
}

// Nop is the queue used when no backend is configured. Running without a
// queue is a normal, non-error condition.
type Nop struct{}

func (Nop) Enqueue(ctx context.Context, topic, jobType string, payload any, opts EnqueueOptions) (string, error) {
	return "", nil
}

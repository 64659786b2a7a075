package queue

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryJob is a job captured by the in-memory queue.
type MemoryJob struct {
	ID      string
	Topic   string
	Type    string
	Payload any
	Opts    EnqueueOptions
}

// Memory is an in-process JobQueue, used in tests and single-node dev
// deployments where no Redis is configured.
type Memory struct {
	mu   sync.Mutex
	jobs []MemoryJob
}

// NewMemory creates an empty in-memory queue.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Enqueue(ctx context.Context, topic, jobType string, payload any, opts EnqueueOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := MemoryJob{
		ID:      uuid.NewString(),
		Topic:   topic,
		Type:    jobType,
		Payload: payload,
		Opts:    opts,
	}
	m.jobs = append(m.jobs, job)
	return job.ID, nil
}

// Jobs returns a snapshot of everything enqueued so far.
func (m *Memory) Jobs() []MemoryJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MemoryJob, len(m.jobs))
	copy(out, m.jobs)
	return out
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// jobEnvelope is the wire format pushed onto the Redis list.
type jobEnvelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Payload    any       `json:"payload"`
	Priority   int       `json:"priority"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	RunAfter   time.Time `json:"run_after,omitempty"`
}

// RedisQueue implements JobQueue on a Redis list per topic. Workers elsewhere
// in the platform consume with BRPOP; this subsystem only produces.
type RedisQueue struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisQueue creates a Redis-backed queue. keyPrefix namespaces the lists,
// e.g. "rudud:jobs".
func NewRedisQueue(client *redis.Client, keyPrefix string) *RedisQueue {
	if keyPrefix == "" {
		keyPrefix = "rudud:jobs"
	}
	return &RedisQueue{client: client, keyPrefix: keyPrefix}
}

func (q *RedisQueue) Enqueue(ctx context.Context, topic, jobType string, payload any, opts EnqueueOptions) (string, error) {
	env := jobEnvelope{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    payload,
		Priority:   opts.Priority,
		EnqueuedAt: time.Now().UTC(),
	}
	if opts.Delay > 0 {
		env.RunAfter = env.EnqueuedAt.Add(opts.Delay)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshalling job: %w", err)
	}

	key := q.keyPrefix + ":" + topic
	if err := q.client.LPush(ctx, key, data).Err(); err != nil {
		return "", fmt.Errorf("pushing job to %s: %w", key, err)
	}
	return env.ID, nil
}

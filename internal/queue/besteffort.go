package queue

import (
	"context"

	"github.com/sirupsen/logrus"
)

// BestEffort wraps a JobQueue so that enqueue failures (including panics in a
// misbehaving backend) are logged and swallowed. Callers fire and forget; the
// primary return value of the request being served is never affected.
type BestEffort struct {
	q   JobQueue
	log *logrus.Logger
}

// NewBestEffort creates a best-effort sink over q. A nil q degrades to Nop.
func NewBestEffort(q JobQueue, log *logrus.Logger) *BestEffort {
	if q == nil {
		q = Nop{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BestEffort{q: q, log: log}
}

// Enqueue submits the job, logging any failure instead of returning it.
func (b *BestEffort) Enqueue(ctx context.Context, topic, jobType string, payload any, opts EnqueueOptions) {
	defer func() {
		if rec := recover(); rec != nil {
			b.log.WithFields(logrus.Fields{
				"topic": topic,
				"type":  jobType,
				"panic": rec,
			}).Error("queue backend panicked during enqueue")
		}
	}()

	if _, err := b.q.Enqueue(ctx, topic, jobType, payload, opts); err != nil {
		b.log.WithFields(logrus.Fields{
			"topic": topic,
			"type":  jobType,
			"error": err.Error(),
		}).Warn("best-effort enqueue failed")
	}
}

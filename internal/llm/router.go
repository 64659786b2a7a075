package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrAllProvidersFailed is returned when every available provider has been
// attempted and none produced a response. It is the only error the router
// surfaces; individual provider failures are counted and skipped.
var ErrAllProvidersFailed = errors.New("all llm providers failed")

// DefaultAttemptTimeout bounds a single provider attempt. Vendor APIs give
// no hard latency guarantee, so an unbounded call could hang the whole
// request pipeline.
const DefaultAttemptTimeout = 10 * time.Second

// Router fans a chat request across providers in a fixed priority order,
// one at a time. Attempts are strictly sequential so a flaky provider never
// causes duplicate billed calls.
type Router struct {
	providers      []Provider
	health         *HealthStore
	attemptTimeout time.Duration
	log            *logrus.Logger
}

// NewRouter creates a router over the given providers, tried in the order
// given. A nil health store gets a fresh one; a zero timeout gets the default.
func NewRouter(providers []Provider, health *HealthStore, attemptTimeout time.Duration, log *logrus.Logger) *Router {
	if health == nil {
		names := make([]string, len(providers))
		for i, p := range providers {
			names[i] = p.Name()
		}
		health = NewHealthStore(names...)
	}
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Router{
		providers:      providers,
		health:         health,
		attemptTimeout: attemptTimeout,
		log:            log,
	}
}

// Health exposes the router's health store for status endpoints.
func (r *Router) Health() *HealthStore { return r.health }

// GenerateChatResponse builds the message list from systemPrompt, history and
// userMessage and attempts each available provider in order. The first
// success wins. If every available provider fails, or none is available,
// ErrAllProvidersFailed is returned.
func (r *Router) GenerateChatResponse(ctx context.Context, systemPrompt, userMessage string, history []Message, opts ChatOptions) (*ChatResult, error) {
	messages := make([]Message, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: userMessage})

	req := CompletionRequest{
		Model:       opts.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	var lastErr error
	for _, p := range r.order(opts.Provider) {
		if !r.health.Available(p.Name()) {
			continue
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
		resp, err := p.Complete(attemptCtx, req)
		cancel()

		if err != nil {
			lastErr = err
			r.health.RecordFailure(p.Name(), err)
			r.log.WithFields(logrus.Fields{
				"provider": p.Name(),
				"error":    err.Error(),
			}).Warn("provider attempt failed, trying next")
			continue
		}
		if resp.Content == "" {
			lastErr = fmt.Errorf("provider %s returned empty content", p.Name())
			r.health.RecordFailure(p.Name(), lastErr)
			continue
		}

		r.health.RecordSuccess(p.Name())
		return &ChatResult{
			Text:       resp.Content,
			Provider:   p.Name(),
			TokensUsed: resp.InputTokens + resp.OutputTokens,
		}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: last error: %v", ErrAllProvidersFailed, lastErr)
	}
	return nil, ErrAllProvidersFailed
}

// order returns the provider list with preferred (if set and known) moved to
// the front. The relative order of the rest is preserved.
func (r *Router) order(preferred string) []Provider {
	if preferred == "" {
		return r.providers
	}
	ordered := make([]Provider, 0, len(r.providers))
	var rest []Provider
	for _, p := range r.providers {
		if p.Name() == preferred {
			ordered = append(ordered, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(ordered, rest...)
}

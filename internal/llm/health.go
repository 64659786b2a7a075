package llm

import (
	"sync"
	"time"
)

// RateLimitInfo carries the most recent rate-limit headers seen from a provider.
type RateLimitInfo struct {
	Remaining int
	ResetAt   time.Time
}

// ProviderState tracks the per-process health of one configured provider.
// Available is decided once at startup from credential presence and never
// re-checked per request; the counters are mutated only by the Router.
type ProviderState struct {
	Name         string
	Available    bool
	RequestCount uint64
	ErrorCount   uint64
	LastError    string
	RateLimit    *RateLimitInfo
}

// HealthStore owns the provider states. It is constructor-owned and injected
// into the Router rather than living as a package-level singleton, so a
// multi-instance deployment can swap in a shared backing store later.
type HealthStore struct {
	mu     sync.RWMutex
	states map[string]*ProviderState
}

// NewHealthStore creates a health store seeded with one state per provider name.
func NewHealthStore(names ...string) *HealthStore {
	s := &HealthStore{states: make(map[string]*ProviderState, len(names))}
	for _, name := range names {
		s.states[name] = &ProviderState{Name: name, Available: true}
	}
	return s
}

// MarkUnavailable permanently disables a provider for the process lifetime,
// typically because its credential is missing.
func (s *HealthStore) MarkUnavailable(name, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ensure(name)
	st.Available = false
	st.LastError = reason
}

// RecordSuccess increments the request counter for a provider.
func (s *HealthStore) RecordSuccess(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(name).RequestCount++
}

// RecordFailure increments the error counter and remembers the last error.
func (s *HealthStore) RecordFailure(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ensure(name)
	st.ErrorCount++
	if err != nil {
		st.LastError = err.Error()
	}
}

// Available reports whether the provider can be attempted at all.
func (s *HealthStore) Available(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[name]
	return ok && st.Available
}

// State returns a snapshot of one provider's state.
func (s *HealthStore) State(name string) (ProviderState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[name]
	if !ok {
		return ProviderState{}, false
	}
	return *st, true
}

// States returns a snapshot of all provider states.
func (s *HealthStore) States() []ProviderState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ProviderState, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, *st)
	}
	return out
}

func (s *HealthStore) ensure(name string) *ProviderState {
	st, ok := s.states[name]
	if !ok {
		st = &ProviderState{Name: name, Available: true}
		s.states[name] = st
	}
	return st
}

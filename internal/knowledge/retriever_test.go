package knowledge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/tariqmb/rudud/internal/business"
	"github.com/tariqmb/rudud/internal/cache"
)

// mockIndex counts searches and returns canned results or an error.
type mockIndex struct {
	mu      sync.Mutex
	results []SearchResult
	err     error
	calls   int
}

func (m *mockIndex) Search(ctx context.Context, query, businessID string, topK int, minSimilarity float64) ([]SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockIndex) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var testEntries = []business.KnowledgeEntry{
	{ID: "e1", Title: "Shipping", Content: "Shipping takes 3 days inside Cairo."},
	{ID: "e2", Title: "Returns", Content: "Returns are accepted within 14 days."},
}

func TestRetrieveEmptyKnowledgeBaseSkipsEverything(t *testing.T) {
	idx := &mockIndex{results: []SearchResult{{Content: "x", Similarity: 0.9}}}
	r := NewRetriever(cache.NewMemory(), idx, nil)

	got := r.Retrieve(context.Background(), "biz-1", "shipping", nil)
	if got != "" {
		t.Errorf("expected empty block, got %q", got)
	}
	if idx.callCount() != 0 {
		t.Errorf("vector index should not be touched, got %d calls", idx.callCount())
	}
}

func TestRetrieveCachesWithinTTL(t *testing.T) {
	idx := &mockIndex{results: []SearchResult{{Content: "Shipping takes 3 days.", Similarity: 0.91}}}
	r := NewRetriever(cache.NewMemory(), idx, nil)
	ctx := context.Background()

	first := r.Retrieve(ctx, "biz-1", "shipping time", testEntries)
	second := r.Retrieve(ctx, "biz-1", "shipping time", testEntries)

	if first == "" || first != second {
		t.Errorf("expected identical non-empty blocks, got %q / %q", first, second)
	}
	if idx.callCount() != 1 {
		t.Errorf("expected at most one vector search within TTL, got %d", idx.callCount())
	}
}

func TestRetrieveNormalizesQueryForCaching(t *testing.T) {
	idx := &mockIndex{results: []SearchResult{{Content: "c", Similarity: 0.8}}}
	r := NewRetriever(cache.NewMemory(), idx, nil)
	ctx := context.Background()

	r.Retrieve(ctx, "biz-1", "Shipping   Time", testEntries)
	r.Retrieve(ctx, "biz-1", "shipping time", testEntries)

	if idx.callCount() != 1 {
		t.Errorf("normalized queries should share a cache entry, got %d searches", idx.callCount())
	}
}

func TestRetrieveFormatsNumberedBlock(t *testing.T) {
	idx := &mockIndex{results: []SearchResult{
		{Content: "First chunk.", Similarity: 0.92},
		{Content: "Second chunk.", Similarity: 0.81},
	}}
	r := NewRetriever(cache.NewMemory(), idx, nil)

	got := r.Retrieve(context.Background(), "biz-1", "anything", testEntries)
	if !strings.Contains(got, "1. [relevance 0.92] First chunk.") {
		t.Errorf("missing first numbered result in %q", got)
	}
	if !strings.Contains(got, "2. [relevance 0.81] Second chunk.") {
		t.Errorf("missing second numbered result in %q", got)
	}
}

func TestRetrieveDegradesToKeywordFallback(t *testing.T) {
	idx := &mockIndex{err: errors.New("vector index down")}
	store := cache.NewMemory()
	r := NewRetriever(store, idx, nil)

	got := r.Retrieve(context.Background(), "biz-1", "shipping details please", testEntries)
	if !strings.Contains(got, "Shipping takes 3 days inside Cairo.") {
		t.Errorf("expected fallback match on first word, got %q", got)
	}
	if strings.Contains(got, "Returns are accepted") {
		t.Errorf("fallback matched unrelated entry: %q", got)
	}
}

func TestDegradedResultIsNotCached(t *testing.T) {
	idx := &mockIndex{err: errors.New("vector index down")}
	r := NewRetriever(cache.NewMemory(), idx, nil)
	ctx := context.Background()

	r.Retrieve(ctx, "biz-1", "shipping details", testEntries)
	r.Retrieve(ctx, "biz-1", "shipping details", testEntries)

	// Both calls must reach the index: a degraded answer never poisons the cache.
	if idx.callCount() != 2 {
		t.Errorf("expected 2 index attempts, got %d", idx.callCount())
	}
}

func TestEmptySearchResultsAreNotCached(t *testing.T) {
	idx := &mockIndex{}
	r := NewRetriever(cache.NewMemory(), idx, nil)
	ctx := context.Background()

	if got := r.Retrieve(ctx, "biz-1", "unrelated topic", testEntries); got != "" {
		t.Errorf("expected empty block, got %q", got)
	}
	r.Retrieve(ctx, "biz-1", "unrelated topic", testEntries)
	if idx.callCount() != 2 {
		t.Errorf("empty blocks should not be cached, got %d searches", idx.callCount())
	}
}

func TestNoSingleFlightDeduplication(t *testing.T) {
	// The cache intentionally has no request coalescing: concurrent misses
	// on the same key may each compute. This asserts the documented
	// behavior rather than preventing it.
	idx := &mockIndex{results: []SearchResult{{Content: "c", Similarity: 0.9}}}
	r := NewRetriever(cache.NewMemory(), idx, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Retrieve(context.Background(), "biz-1", "same query", testEntries)
		}()
	}
	wg.Wait()

	if idx.callCount() < 1 || idx.callCount() > 4 {
		t.Errorf("expected between 1 and 4 searches, got %d", idx.callCount())
	}
}

func TestInvalidateDropsBusinessEntries(t *testing.T) {
	idx := &mockIndex{results: []SearchResult{{Content: "c", Similarity: 0.9}}}
	store := cache.NewMemory()
	r := NewRetriever(store, idx, nil)
	ctx := context.Background()

	r.Retrieve(ctx, "biz-1", "q", testEntries)
	if err := r.Invalidate(ctx, "biz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	r.Retrieve(ctx, "biz-1", "q", testEntries)
	if idx.callCount() != 2 {
		t.Errorf("expected recompute after invalidation, got %d searches", idx.callCount())
	}
}

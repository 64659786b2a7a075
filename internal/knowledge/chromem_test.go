package knowledge

import (
	"context"
	"math"
	"strings"
	"testing"

	chromem "github.com/philippgille/chromem-go"

	"github.com/tariqmb/rudud/internal/business"
)

// keywordEmbedding maps text onto a fixed 3-dimensional unit vector so tests
// never touch the embeddings API.
func keywordEmbedding(ctx context.Context, text string) ([]float32, error) {
	lower := strings.ToLower(text)
	vec := []float32{0.1, 0.1, 0.1}
	for i, kw := range []string{"shipping", "return", "hours"} {
		if strings.Contains(lower, kw) {
			vec[i] = 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

func newTestIndex(t *testing.T) *ChromemIndex {
	t.Helper()
	idx := NewChromemIndexWithFunc(chromem.EmbeddingFunc(keywordEmbedding))

	err := idx.IndexEntries(context.Background(), "biz-1", []business.KnowledgeEntry{
		{ID: "e1", Title: "Shipping", Content: "Shipping takes 3 days inside Cairo."},
		{ID: "e2", Title: "Returns", Content: "Return requests are accepted within 14 days."},
	})
	if err != nil {
		t.Fatalf("indexing entries: %v", err)
	}
	return idx
}

func TestChromemSearchRanksByRelevance(t *testing.T) {
	idx := newTestIndex(t)

	results, err := idx.Search(context.Background(), "shipping times", "biz-1", 5, 0.8)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result above threshold, got %d: %+v", len(results), results)
	}
	if !strings.Contains(results[0].Content, "Shipping takes 3 days") {
		t.Errorf("unexpected top result %q", results[0].Content)
	}
	if results[0].Similarity <= 0.8 {
		t.Errorf("similarity should clear the threshold, got %f", results[0].Similarity)
	}
}

func TestChromemSearchClampsTopK(t *testing.T) {
	idx := newTestIndex(t)

	// topK above collection size must not error.
	results, err := idx.Search(context.Background(), "shipping and return policy", "biz-1", 50, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected both entries, got %d", len(results))
	}
}

func TestChromemSearchUnknownBusiness(t *testing.T) {
	idx := newTestIndex(t)

	results, err := idx.Search(context.Background(), "anything", "biz-404", 5, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results != nil {
		t.Errorf("expected no results for unknown business, got %+v", results)
	}
}

func TestChromemIndexEmptyEntriesIsNoop(t *testing.T) {
	idx := NewChromemIndexWithFunc(chromem.EmbeddingFunc(keywordEmbedding))

	if err := idx.IndexEntries(context.Background(), "biz-1", nil); err != nil {
		t.Fatalf("indexing no entries should succeed: %v", err)
	}
	results, err := idx.Search(context.Background(), "shipping", "biz-1", 5, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty index, got %+v", results)
	}
}

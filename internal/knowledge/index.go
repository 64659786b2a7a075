package knowledge

import (
	"context"

	"github.com/tariqmb/rudud/internal/business"
)

// SearchResult is one ranked hit from the vector index.
type SearchResult struct {
	Content    string
	Similarity float64
}

// VectorIndex is the semantic-search collaborator. Its internal ranking is a
// black box; the retriever only consumes ordered results.
type VectorIndex interface {
	// Search returns up to topK results for query within the business's
	// collection, ordered by similarity, filtered by minSimilarity.
	Search(ctx context.Context, query, businessID string, topK int, minSimilarity float64) ([]SearchResult, error)
}

// Indexer ingests knowledge entries into the vector index. Kept separate from
// VectorIndex because the read path never needs it.
type Indexer interface {
	IndexEntries(ctx context.Context, businessID string, entries []business.KnowledgeEntry) error
}

package knowledge

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/tariqmb/rudud/internal/business"
)

// ChromemIndex implements VectorIndex on chromem-go with one collection per
// business, embedding through the OpenAI embeddings API.
type ChromemIndex struct {
	db        *chromem.DB
	embedFunc chromem.EmbeddingFunc
}

// NewChromemIndex creates an in-memory index embedding with the given
// OpenAI API key.
func NewChromemIndex(openAIKey string) *ChromemIndex {
	return &ChromemIndex{
		db:        chromem.NewDB(),
		embedFunc: chromem.NewEmbeddingFuncOpenAI(openAIKey, chromem.EmbeddingModelOpenAI3Small),
	}
}

// NewChromemIndexWithFunc creates an index with a custom embedding function,
// used by tests to avoid network calls.
func NewChromemIndexWithFunc(ef chromem.EmbeddingFunc) *ChromemIndex {
	return &ChromemIndex{db: chromem.NewDB(), embedFunc: ef}
}

func collectionName(businessID string) string {
	return "kb-" + businessID
}

// IndexEntries adds or refreshes a business's knowledge entries.
func (x *ChromemIndex) IndexEntries(ctx context.Context, businessID string, entries []business.KnowledgeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	col, err := x.db.GetOrCreateCollection(collectionName(businessID), nil, x.embedFunc)
	if err != nil {
		return fmt.Errorf("getting collection for %s: %w", businessID, err)
	}

	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		content := e.Content
		if e.Title != "" {
			content = e.Title + "\n\n" + e.Content
		}
		docs[i] = chromem.Document{
			ID:       e.ID,
			Content:  content,
			Metadata: map[string]string{"business_id": businessID, "title": e.Title},
		}
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("indexing entries for %s: %w", businessID, err)
	}
	return nil
}

func (x *ChromemIndex) Search(ctx context.Context, query, businessID string, topK int, minSimilarity float64) ([]SearchResult, error) {
	col := x.db.GetCollection(collectionName(businessID), x.embedFunc)
	if col == nil || col.Count() == 0 {
		return nil, nil
	}

	if topK <= 0 {
		topK = 5
	}
	// chromem-go requires nResults <= collection size.
	if count := col.Count(); topK > count {
		topK = count
	}

	hits, err := col.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query for %s: %w", businessID, err)
	}

	var results []SearchResult
	for _, h := range hits {
		if float64(h.Similarity) < minSimilarity {
			continue
		}
		results = append(results, SearchResult{
			Content:    h.Content,
			Similarity: float64(h.Similarity),
		})
	}
	return results, nil
}

package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tariqmb/rudud/internal/business"
	"github.com/tariqmb/rudud/internal/cache"
)

const (
	// DefaultTTL is how long a formatted knowledge block stays cached.
	DefaultTTL = time.Hour

	defaultTopK          = 5
	defaultMinSimilarity = 0.65

	cacheKeyPrefix = "rudud:kb:"
)

// Retriever produces the knowledge context block for a prompt: cache-first
// semantic retrieval, degrading to a naive substring scan when the vector
// index is unavailable. Retrieval problems never propagate to the caller;
// the worst case is an empty block.
type Retriever struct {
	cache         cache.Store
	index         VectorIndex
	ttl           time.Duration
	topK          int
	minSimilarity float64
	log           *logrus.Logger
}

// NewRetriever creates a retriever with default tuning.
func NewRetriever(store cache.Store, index VectorIndex, log *logrus.Logger) *Retriever {
	return NewRetrieverWithOptions(store, index, DefaultTTL, defaultTopK, defaultMinSimilarity, log)
}

// NewRetrieverWithOptions creates a retriever with explicit tuning. Zero
// values fall back to the defaults.
func NewRetrieverWithOptions(store cache.Store, index VectorIndex, ttl time.Duration, topK int, minSimilarity float64, log *logrus.Logger) *Retriever {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	if minSimilarity <= 0 {
		minSimilarity = defaultMinSimilarity
	}
	return &Retriever{
		cache:         store,
		index:         index,
		ttl:           ttl,
		topK:          topK,
		minSimilarity: minSimilarity,
		log:           log,
	}
}

// Retrieve returns the knowledge context for query, possibly empty. entries
// are the business's raw knowledge entries, used both as the empty-knowledge
// gate and as the degraded fallback corpus.
func (r *Retriever) Retrieve(ctx context.Context, businessID, query string, entries []business.KnowledgeEntry) string {
	if len(entries) == 0 {
		return ""
	}

	key := cacheKey(businessID, query)
	if cached, err := r.cache.Get(ctx, key); err == nil {
		return cached
	} else if !errors.Is(err, cache.ErrMiss) {
		r.log.WithFields(logrus.Fields{
			"business_id": businessID,
			"error":       err.Error(),
		}).Warn("knowledge cache read failed, treating as miss")
	}

	results, err := r.index.Search(ctx, query, businessID, r.topK, r.minSimilarity)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"business_id": businessID,
			"error":       err.Error(),
		}).Error("vector search failed, using keyword fallback")
		// A degraded answer must not poison the cache.
		return fallbackScan(query, entries)
	}

	block := formatResults(results)
	if block != "" {
		if err := r.cache.Set(ctx, key, block, r.ttl); err != nil {
			r.log.WithFields(logrus.Fields{
				"business_id": businessID,
				"error":       err.Error(),
			}).Warn("knowledge cache write failed")
		}
	}
	return block
}

// Invalidate drops every cached block for a business, called when its
// knowledge base changes.
func (r *Retriever) Invalidate(ctx context.Context, businessID string) error {
	return r.cache.DeletePattern(ctx, cacheKeyPrefix+businessID+":")
}

// cacheKey hashes the normalized query so arbitrary user text never ends up
// in a cache key.
func cacheKey(businessID, query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return cacheKeyPrefix + businessID + ":" + hex.EncodeToString(sum[:8])
}

// formatResults renders ranked hits as a numbered, relevance-annotated block.
func formatResults(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Relevant business knowledge:\n")
	for i, res := range results {
		fmt.Fprintf(&b, "%d. [relevance %.2f] %s\n", i+1, res.Similarity, res.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// fallbackScan is the degraded path: entries whose content contains the
// first word of the query, case-insensitively.
func fallbackScan(query string, entries []business.KnowledgeEntry) string {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return ""
	}
	first := words[0]

	var matched []string
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Content), first) {
			matched = append(matched, e.Content)
		}
	}
	if len(matched) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Relevant business knowledge:\n")
	for i, content := range matched {
		fmt.Fprintf(&b, "%d. %s\n", i+1, content)
	}
	return strings.TrimRight(b.String(), "\n")
}

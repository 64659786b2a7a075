package business

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a business id does not exist.
var ErrNotFound = errors.New("business not found")

// KnowledgeEntry is one raw unit of business-supplied knowledge text.
type KnowledgeEntry struct {
	ID      string
	Title   string
	Content string
}

// Business is the profile the response pipeline personalizes prompts with.
type Business struct {
	ID                 string
	Name               string
	Tone               string
	Language           string
	Industry           string
	KnowledgeEntries   []KnowledgeEntry
	ActiveCustomModels []string
}

// Repository looks up business profiles. The response engine consumes this
// interface; persistence lives behind it.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Business, error)
}

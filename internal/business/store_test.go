package business

import (
	"context"
	"errors"
	"testing"

	"github.com/tariqmb/rudud/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestFindByIDNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.FindByID(context.Background(), "missing-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAndFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := &Business{
		ID:                 "biz-1",
		Name:               "Nile Electronics",
		Tone:               "friendly",
		Language:           "ar",
		Industry:           "retail",
		ActiveCustomModels: []string{"support-v2"},
		KnowledgeEntries: []KnowledgeEntry{
			{Title: "Shipping", Content: "We ship within 3 business days."},
			{Title: "Returns", Content: "Returns accepted within 14 days."},
		},
	}
	if err := s.Create(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.FindByID(ctx, "biz-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Name != "Nile Electronics" || got.Tone != "friendly" || got.Industry != "retail" {
		t.Errorf("unexpected business %+v", got)
	}
	if len(got.KnowledgeEntries) != 2 {
		t.Fatalf("expected 2 knowledge entries, got %d", len(got.KnowledgeEntries))
	}
	if got.KnowledgeEntries[0].Content != "We ship within 3 business days." {
		t.Errorf("unexpected first entry %+v", got.KnowledgeEntries[0])
	}
	if len(got.ActiveCustomModels) != 1 || got.ActiveCustomModels[0] != "support-v2" {
		t.Errorf("unexpected custom models %v", got.ActiveCustomModels)
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if got, err := s.List(ctx); err != nil || len(got) != 0 {
		t.Fatalf("expected empty list, got %v (err %v)", got, err)
	}

	for _, name := range []string{"First", "Second"} {
		if err := s.Create(ctx, &Business{
			Name:             name,
			KnowledgeEntries: []KnowledgeEntry{{Title: "FAQ", Content: "content for " + name}},
		}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 businesses, got %d", len(got))
	}
	for _, b := range got {
		if len(b.KnowledgeEntries) != 1 {
			t.Errorf("business %s missing knowledge entries", b.Name)
		}
	}
}

func TestCreateAssignsIDs(t *testing.T) {
	s := newTestStore(t)
	b := &Business{Name: "Test"}
	if err := s.Create(context.Background(), b); err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID == "" {
		t.Error("expected generated business id")
	}
}

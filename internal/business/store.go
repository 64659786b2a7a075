package business

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tariqmb/rudud/internal/db"
)

// Store is the SQLite-backed Repository implementation.
type Store struct {
	db *db.DB
}

// NewStore creates a store over the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// FindByID loads a business profile with its knowledge entries.
func (s *Store) FindByID(ctx context.Context, id string) (*Business, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, tone, language, industry, custom_models FROM businesses WHERE id = ?`, id)

	var b Business
	var customModels string
	err := row.Scan(&b.ID, &b.Name, &b.Tone, &b.Language, &b.Industry, &customModels)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying business %s: %w", id, err)
	}

	if customModels != "" {
		if err := json.Unmarshal([]byte(customModels), &b.ActiveCustomModels); err != nil {
			return nil, fmt.Errorf("parsing custom models for %s: %w", id, err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content FROM knowledge_entries WHERE business_id = ? ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge entries for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e KnowledgeEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Content); err != nil {
			return nil, fmt.Errorf("scanning knowledge entry: %w", err)
		}
		b.KnowledgeEntries = append(b.KnowledgeEntries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating knowledge entries: %w", err)
	}

	return &b, nil
}

// List returns every business with its knowledge entries, used to warm the
// vector index at startup.
func (s *Store) List(ctx context.Context) ([]*Business, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM businesses ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing businesses: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning business id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating businesses: %w", err)
	}

	out := make([]*Business, 0, len(ids))
	for _, id := range ids {
		b, err := s.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Create inserts a business profile.
func (s *Store) Create(ctx context.Context, b *Business) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	customModels, err := json.Marshal(b.ActiveCustomModels)
	if err != nil {
		return fmt.Errorf("marshalling custom models: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO businesses (id, name, tone, language, industry, custom_models) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Tone, b.Language, b.Industry, string(customModels))
	if err != nil {
		return fmt.Errorf("inserting business: %w", err)
	}

	for i := range b.KnowledgeEntries {
		if err := s.AddKnowledgeEntry(ctx, b.ID, &b.KnowledgeEntries[i]); err != nil {
			return err
		}
	}
	return nil
}

// AddKnowledgeEntry appends one knowledge entry to a business.
func (s *Store) AddKnowledgeEntry(ctx context.Context, businessID string, e *KnowledgeEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO knowledge_entries (id, business_id, title, content) VALUES (?, ?, ?, ?)`,
		e.ID, businessID, e.Title, e.Content)
	if err != nil {
		return fmt.Errorf("inserting knowledge entry: %w", err)
	}
	return nil
}

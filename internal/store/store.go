// Package store persists named settings trees per dataset so a curated
// view can be reloaded later.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/molscope/molscope/internal/db"
)

// ErrNotFound is returned when no saved settings match the lookup.
var ErrNotFound = errors.New("saved settings not found")

// Saved is a named settings tree for one dataset.
type Saved struct {
	ID        string
	Dataset   string
	Name      string
	Tree      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store provides CRUD operations for saved settings.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Save inserts or updates the settings tree stored under (dataset, name).
// Returns the record id.
func (s *Store) Save(ctx context.Context, dataset, name string, tree map[string]any) (string, error) {
	if dataset == "" {
		return "", errors.New("dataset must not be empty")
	}
	if name == "" {
		return "", errors.New("name must not be empty")
	}

	encoded, err := json.Marshal(tree)
	if err != nil {
		return "", fmt.Errorf("marshalling settings tree: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_settings (id, dataset, name, tree)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(dataset, name) DO UPDATE SET
			tree = excluded.tree,
			updated_at = datetime('now')`,
		id, dataset, name, string(encoded),
	)
	if err != nil {
		return "", fmt.Errorf("saving settings: %w", err)
	}

	// On upsert the original id survives; read it back.
	var stored string
	err = s.db.QueryRowContext(ctx,
		"SELECT id FROM saved_settings WHERE dataset = ? AND name = ?",
		dataset, name,
	).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("reading back saved settings id: %w", err)
	}
	return stored, nil
}

// Get retrieves the settings tree stored under (dataset, name).
func (s *Store) Get(ctx context.Context, dataset, name string) (*Saved, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, dataset, name, tree, created_at, updated_at
		FROM saved_settings WHERE dataset = ? AND name = ?`,
		dataset, name,
	)
	return scanSaved(row)
}

// List returns all saved settings for a dataset, most recently updated first.
func (s *Store) List(ctx context.Context, dataset string) ([]Saved, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dataset, name, tree, created_at, updated_at
		FROM saved_settings WHERE dataset = ?
		ORDER BY updated_at DESC`,
		dataset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing saved settings: %w", err)
	}
	defer rows.Close()

	var out []Saved
	for rows.Next() {
		saved, err := scanSaved(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *saved)
	}
	return out, rows.Err()
}

// Delete removes the settings stored under (dataset, name).
func (s *Store) Delete(ctx context.Context, dataset, name string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM saved_settings WHERE dataset = ? AND name = ?",
		dataset, name,
	)
	if err != nil {
		return fmt.Errorf("deleting saved settings: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSaved(sc scanner) (*Saved, error) {
	var (
		saved              Saved
		encoded            string
		createdAt, updated string
	)

	err := sc.Scan(&saved.ID, &saved.Dataset, &saved.Name, &encoded, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(encoded), &saved.Tree); err != nil {
		return nil, fmt.Errorf("decoding settings tree: %w", err)
	}
	if t, parseErr := time.Parse(time.DateTime, createdAt); parseErr == nil {
		saved.CreatedAt = t
	}
	if t, parseErr := time.Parse(time.DateTime, updated); parseErr == nil {
		saved.UpdatedAt = t
	}
	return &saved, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"internship_fetcher/internal/domain"
)

type WebsiteStore struct {
	db *sqlx.DB
}

func NewWebsiteStore(db *sqlx.DB) *WebsiteStore {
	return &WebsiteStore{db: db}
}

// GetOrCreate returns the website with w.Name, creating it from w when it
// does not exist yet. Existing rows are left untouched.
func (s *WebsiteStore) GetOrCreate(ctx context.Context, w domain.Website) (*domain.Website, error) {
	query := `
		INSERT INTO websites (name, url, is_special)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, url, is_special, created_at, updated_at`

	var out domain.Website
	if err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &out, query, w.Name, w.URL, w.IsSpecial); err != nil {
		return nil, fmt.Errorf("get or create website %q: %w", w.Name, err)
	}
	return &out, nil
}

func (s *WebsiteStore) GetByName(ctx context.Context, name string) (*domain.Website, error) {
	query := `
		SELECT id, name, url, is_special, created_at, updated_at
		FROM websites
		WHERE name = $1`

	var w domain.Website
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &w, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("website %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *WebsiteStore) List(ctx context.Context) ([]domain.Website, error) {
	query := `
		SELECT id, name, url, is_special, created_at, updated_at
		FROM websites
		ORDER BY name`

	var websites []domain.Website
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &websites, query); err != nil {
		return nil, err
	}
	return websites, nil
}

// Delete removes an operator-added website and its postings. Built-in
// sources fail with domain.ErrProtectedSource.
func (s *WebsiteStore) Delete(ctx context.Context, id int64) error {
	exec := GetExecutor(ctx, s.db)

	var special bool
	err := sqlx.GetContext(ctx, exec, &special, `SELECT is_special FROM websites WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("website %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if special {
		return fmt.Errorf("website %d: %w", id, domain.ErrProtectedSource)
	}

	_, err = exec.ExecContext(ctx, `DELETE FROM websites WHERE id = $1 AND is_special = FALSE`, id)
	return err
}

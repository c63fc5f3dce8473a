package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"internship_fetcher/internal/domain"
)

type SearchQueryStore struct {
	db *sqlx.DB
}

func NewSearchQueryStore(db *sqlx.DB) *SearchQueryStore {
	return &SearchQueryStore{db: db}
}

func (s *SearchQueryStore) List(ctx context.Context) ([]domain.SearchQuery, error) {
	query := `
		SELECT id, city, keywords, max_pages, last_executed, created_at
		FROM search_queries
		ORDER BY id`

	var queries []domain.SearchQuery
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &queries, query); err != nil {
		return nil, err
	}
	return queries, nil
}

// Upsert saves q keyed by (city, keywords) and fills in its id.
func (s *SearchQueryStore) Upsert(ctx context.Context, q *domain.SearchQuery) error {
	query := `
		INSERT INTO search_queries (city, keywords, max_pages)
		VALUES ($1, $2, $3)
		ON CONFLICT (city, keywords) DO UPDATE SET max_pages = EXCLUDED.max_pages
		RETURNING id, created_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query, q.City, q.Keywords, q.MaxPages).
		Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert search query: %w", err)
	}
	return nil
}

func (s *SearchQueryStore) MarkExecuted(ctx context.Context, id int64, at time.Time) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE search_queries SET last_executed = $2 WHERE id = $1`, id, at)
	return err
}

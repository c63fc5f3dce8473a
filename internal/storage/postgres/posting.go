package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"internship_fetcher/internal/domain"
)

// ErrDuplicate is returned when a write violates a unique constraint.
var ErrDuplicate = domain.ErrDuplicate

const uniqueViolation = "23505"

const postingColumns = `
		id, website_id, external_id, url, title, company, position, salary, city,
		employment_type, description, keywords, selection_start_date,
		selection_end_date, duration, is_archived, content_hash, created_at, updated_at`

type PostingStore struct {
	db *sqlx.DB
}

func NewPostingStore(db *sqlx.DB) *PostingStore {
	return &PostingStore{db: db}
}

// GetByExternalID returns (nil, nil) when the website has no such posting.
func (s *PostingStore) GetByExternalID(ctx context.Context, websiteID int64, externalID string) (*domain.Posting, error) {
	query := `SELECT` + postingColumns + `
		FROM postings
		WHERE website_id = $1 AND external_id = $2`

	return s.getOne(ctx, query, websiteID, externalID)
}

// GetByContentHash returns (nil, nil) when the website has no such posting.
func (s *PostingStore) GetByContentHash(ctx context.Context, websiteID int64, hash string) (*domain.Posting, error) {
	query := `SELECT` + postingColumns + `
		FROM postings
		WHERE website_id = $1 AND content_hash = $2`

	return s.getOne(ctx, query, websiteID, hash)
}

// GetByURL returns (nil, nil) when the website has no posting at url.
// Rows without an external id are preferred.
func (s *PostingStore) GetByURL(ctx context.Context, websiteID int64, url string) (*domain.Posting, error) {
	query := `SELECT` + postingColumns + `
		FROM postings
		WHERE website_id = $1 AND url = $2
		ORDER BY external_id NULLS FIRST, id
		LIMIT 1`

	return s.getOne(ctx, query, websiteID, url)
}

func (s *PostingStore) getOne(ctx context.Context, query string, args ...any) (*domain.Posting, error) {
	var p domain.Posting
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostingStore) Insert(ctx context.Context, p *domain.Posting) error {
	query := `
		INSERT INTO postings (
			website_id, external_id, url, title, company, position, salary, city,
			employment_type, description, keywords, selection_start_date,
			selection_end_date, duration, is_archived, content_hash, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)
		RETURNING id`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		p.WebsiteID,
		p.ExternalID,
		p.URL,
		p.Title,
		p.Company,
		p.Position,
		p.Salary,
		p.City,
		p.EmploymentType,
		p.Description,
		p.Keywords,
		p.SelectionStartDate,
		p.SelectionEndDate,
		p.Duration,
		p.IsArchived,
		p.ContentHash,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)

	return mapError(err)
}

func (s *PostingStore) Update(ctx context.Context, p *domain.Posting) error {
	query := `
		UPDATE postings SET
			external_id = $2,
			url = $3,
			title = $4,
			company = $5,
			position = $6,
			salary = $7,
			city = $8,
			employment_type = $9,
			description = $10,
			keywords = $11,
			selection_start_date = $12,
			selection_end_date = $13,
			duration = $14,
			is_archived = $15,
			content_hash = $16,
			updated_at = $17
		WHERE id = $1`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		p.ID,
		p.ExternalID,
		p.URL,
		p.Title,
		p.Company,
		p.Position,
		p.Salary,
		p.City,
		p.EmploymentType,
		p.Description,
		p.Keywords,
		p.SelectionStartDate,
		p.SelectionEndDate,
		p.Duration,
		p.IsArchived,
		p.ContentHash,
		p.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("posting %d: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteOrphans removes rows of the website with the given content hash
// whose external id differs from externalID. NULL counts as a distinct
// value.
func (s *PostingStore) DeleteOrphans(ctx context.Context, websiteID int64, hash string, externalID *string) (int64, error) {
	query := `
		DELETE FROM postings
		WHERE website_id = $1
			AND content_hash = $2
			AND external_id IS DISTINCT FROM $3`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, websiteID, hash, externalID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ArchiveExpired flags every live posting whose selection window closed
// before now.
func (s *PostingStore) ArchiveExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE postings
		SET is_archived = TRUE, updated_at = $1
		WHERE is_archived = FALSE
			AND selection_end_date IS NOT NULL
			AND selection_end_date < $1::date`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	return err
}

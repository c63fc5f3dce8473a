package reconcile

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"internship_fetcher/internal/domain"
)

// PostingStore lookups return (nil, nil) when nothing matches. Insert and
// Update return domain.ErrDuplicate on a unique violation.
type PostingStore interface {
	GetByExternalID(ctx context.Context, websiteID int64, externalID string) (*domain.Posting, error)
	GetByURL(ctx context.Context, websiteID int64, url string) (*domain.Posting, error)
	GetByContentHash(ctx context.Context, websiteID int64, hash string) (*domain.Posting, error)
	Insert(ctx context.Context, posting *domain.Posting) error
	Update(ctx context.Context, posting *domain.Posting) error
	DeleteOrphans(ctx context.Context, websiteID int64, hash string, externalID *string) (int64, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

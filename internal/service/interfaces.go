package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"internship_fetcher/internal/domain"
	"internship_fetcher/internal/source"
)

type Adapter interface {
	ID() string
	Website() domain.Website
	GetAll(ctx context.Context, q source.Query, existing source.ExistingFunc) ([]domain.Incoming, error)
}

type WebsiteStore interface {
	GetOrCreate(ctx context.Context, w domain.Website) (*domain.Website, error)
}

type PostingStore interface {
	GetByExternalID(ctx context.Context, websiteID int64, externalID string) (*domain.Posting, error)
	ArchiveExpired(ctx context.Context, now time.Time) (int64, error)
}

type SearchQueryStore interface {
	List(ctx context.Context) ([]domain.SearchQuery, error)
	MarkExecuted(ctx context.Context, id int64, at time.Time) error
}

type Reconciler interface {
	Apply(ctx context.Context, in domain.Incoming, website domain.Website) (*domain.Posting, bool, error)
}

type Publisher interface {
	Publish(ctx context.Context, posting *domain.Posting, isNew bool, source, runID string) error
	Close() error
}

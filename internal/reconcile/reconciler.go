// Package reconcile turns adapter output into stored postings.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"internship_fetcher/internal/domain"
)

type Reconciler struct {
	postings  PostingStore
	txManager TransactionManager
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Reconciler)

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func New(postings PostingStore, txManager TransactionManager, logger *slog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		postings:  postings,
		txManager: txManager,
		logger:    logger.With("component", "reconcile"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply reconciles one adapter result. Postings the adapter passed through
// unchanged are returned as-is without a write.
func (r *Reconciler) Apply(ctx context.Context, in domain.Incoming, website domain.Website) (*domain.Posting, bool, error) {
	if in.Kind == domain.IncomingPersisted {
		if in.Posting == nil {
			return nil, false, fmt.Errorf("%w: persisted item without posting", domain.ErrValidation)
		}
		return in.Posting, false, nil
	}
	return r.Reconcile(ctx, in.Fields, website)
}

// Reconcile creates the posting or merges fields into the stored one. The
// bool result reports whether a row was created.
func (r *Reconciler) Reconcile(ctx context.Context, fields domain.Fields, website domain.Website) (*domain.Posting, bool, error) {
	logger := r.logger.With("website", website.Name, "url", fields.URL)
	hash := fields.ContentHash()

	existing, err := r.find(ctx, fields, website.ID, hash)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return r.merge(ctx, existing, fields, logger)
	}

	if fields.Title == nil || strings.TrimSpace(*fields.Title) == "" {
		return nil, false, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	posting := newPosting(fields, website.ID, hash, r.now())

	err = r.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		removed, err := r.postings.DeleteOrphans(txCtx, website.ID, hash, posting.ExternalID)
		if err != nil {
			return fmt.Errorf("delete orphans: %w", err)
		}
		if removed > 0 {
			logger.Warn("removed orphaned duplicates before insert",
				"content_hash", hash,
				"count", removed,
			)
		}

		return r.postings.Insert(txCtx, posting)
	})

	if errors.Is(err, domain.ErrDuplicate) {
		logger.Info("lost insert race, merging into existing posting")

		existing, err := r.find(ctx, fields, website.ID, hash)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, fmt.Errorf("%w: duplicate reported but no posting found", domain.ErrStorage)
		}
		return r.merge(ctx, existing, fields, logger)
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: insert posting: %w", domain.ErrStorage, err)
	}

	logger.Debug("created posting", "id", posting.ID)

	return posting, true, nil
}

func (r *Reconciler) find(ctx context.Context, fields domain.Fields, websiteID int64, hash string) (*domain.Posting, error) {
	if fields.HasExternalID() {
		p, err := r.postings.GetByExternalID(ctx, websiteID, *fields.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("%w: lookup by external id: %w", domain.ErrStorage, err)
		}
		if p != nil {
			return p, nil
		}
	} else if fields.URL != "" {
		p, err := r.postings.GetByURL(ctx, websiteID, fields.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: lookup by url: %w", domain.ErrStorage, err)
		}
		if p != nil {
			return p, nil
		}
	}

	p, err := r.postings.GetByContentHash(ctx, websiteID, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup by content hash: %w", domain.ErrStorage, err)
	}
	return p, nil
}

func (r *Reconciler) merge(ctx context.Context, existing *domain.Posting, fields domain.Fields, logger *slog.Logger) (*domain.Posting, bool, error) {
	updated := *existing

	if fields.HasExternalID() {
		switch {
		case updated.ExternalID == nil || *updated.ExternalID == "":
			id := *fields.ExternalID
			updated.ExternalID = &id
		case *updated.ExternalID != *fields.ExternalID:
			logger.Warn("external_id conflict, keeping stored value",
				"posting_id", updated.ID,
				"stored", *updated.ExternalID,
				"incoming", *fields.ExternalID,
			)
		}
	}

	if fields.URL != "" {
		updated.URL = fields.URL
	}
	setText(&updated.Title, fields.Title)
	setText(&updated.Company, fields.Company)
	setText(&updated.Position, fields.Position)
	setText(&updated.Description, fields.Description)
	setPtr(&updated.Salary, fields.Salary)
	setPtr(&updated.City, fields.City)
	setPtr(&updated.EmploymentType, fields.EmploymentType)
	setPtr(&updated.Keywords, fields.Keywords)
	setPtr(&updated.SelectionStartDate, fields.SelectionStartDate)
	setPtr(&updated.SelectionEndDate, fields.SelectionEndDate)
	setPtr(&updated.Duration, fields.Duration)
	if fields.IsArchived != nil {
		updated.IsArchived = *fields.IsArchived
	}

	updated.ContentHash = domain.ContentIdentity(updated.Title, updated.Company, updated.Position, updated.Description)
	updated.UpdatedAt = r.now()

	if err := r.postings.Update(ctx, &updated); err != nil {
		return nil, false, fmt.Errorf("%w: update posting %d: %w", domain.ErrStorage, updated.ID, err)
	}

	logger.Debug("updated posting", "id", updated.ID)

	return &updated, false, nil
}

func newPosting(f domain.Fields, websiteID int64, hash string, now time.Time) *domain.Posting {
	p := &domain.Posting{
		WebsiteID:          websiteID,
		URL:                f.URL,
		Title:              deref(f.Title),
		Company:            deref(f.Company),
		Position:           deref(f.Position),
		Description:        deref(f.Description),
		Salary:             f.Salary,
		City:               f.City,
		EmploymentType:     f.EmploymentType,
		Keywords:           f.Keywords,
		SelectionStartDate: f.SelectionStartDate,
		SelectionEndDate:   f.SelectionEndDate,
		Duration:           f.Duration,
		ContentHash:        hash,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if f.HasExternalID() {
		id := *f.ExternalID
		p.ExternalID = &id
	}
	if f.IsArchived != nil {
		p.IsArchived = *f.IsArchived
	}
	return p
}

func setText(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setPtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Package source defines the contract shared by every posting source.
package source

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"internship_fetcher/internal/domain"
	"internship_fetcher/internal/fetch"
)

// Query is one logical search request fanned out to every adapter.
type Query struct {
	Keywords string
	City     string
	Area     string
	MaxPages int

	// URLs are the pages handed to the generic-URL adapter.
	URLs []string
}

// Page is one page of search results in the shape every adapter reports.
type Page[T any] struct {
	Items   []T
	Found   int
	Pages   int
	PerPage int
	Page    int
}

// ExistingFunc returns the stored posting for an external id of the
// adapter's website, or nil when there is none.
type ExistingFunc func(ctx context.Context, externalID string) (*domain.Posting, error)

type Adapter interface {
	ID() string
	Website() domain.Website
	GetAll(ctx context.Context, q Query, existing ExistingFunc) ([]domain.Incoming, error)
}

// Fetcher is the subset of the fetch client adapters use.
type Fetcher interface {
	Do(ctx context.Context, req fetch.Request) (*fetch.Response, error)
	GetJSON(ctx context.Context, req fetch.Request, v any) error
	Sleep(ctx context.Context, d time.Duration) error
}

// FreshPosting returns the stored posting for externalID when it is recent
// enough to skip refetching its details. Lookup failures are logged and
// treated as stale.
func FreshPosting(
	ctx context.Context,
	existing ExistingFunc,
	externalID string,
	now time.Time,
	staleAfter time.Duration,
	logger *slog.Logger,
) *domain.Posting {
	if existing == nil || externalID == "" {
		return nil
	}

	p, err := existing(ctx, externalID)
	if err != nil {
		logger.Warn("existing posting lookup failed", "external_id", externalID, "error", err)
		return nil
	}
	if domain.IsStale(p, now, staleAfter) {
		return nil
	}
	return p
}

// KeepWithURL drops records that cannot be persisted because they have no
// url.
func KeepWithURL(items []domain.Incoming, logger *slog.Logger) []domain.Incoming {
	kept := items[:0]
	for _, item := range items {
		if item.Kind == domain.IncomingNew && strings.TrimSpace(item.Fields.URL) == "" {
			logger.Warn("dropping posting without url",
				"external_id", deref(item.Fields.ExternalID),
				"title", deref(item.Fields.Title),
			)
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// FormatSalary renders a salary range the way job boards display it.
// Currency defaults to RUB.
func FormatSalary(from, to *float64, currency string) *string {
	if currency == "" {
		currency = "RUB"
	}

	var s string
	switch {
	case from != nil && to != nil:
		s = formatAmount(*from) + " - " + formatAmount(*to) + " " + currency
	case from != nil:
		s = "от " + formatAmount(*from) + " " + currency
	case to != nil:
		s = "до " + formatAmount(*to) + " " + currency
	default:
		return nil
	}
	return &s
}

// OptionalText normalizes s and returns nil when nothing is left.
func OptionalText(s string) *string {
	s = domain.NormalizeText(s)
	if s == "" {
		return nil
	}
	return &s
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

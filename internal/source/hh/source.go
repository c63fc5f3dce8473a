package hh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"internship_fetcher/internal/domain"
	"internship_fetcher/internal/fetch"
	"internship_fetcher/internal/source"
)

const (
	SourceID   = "hh"
	SourceName = "HeadHunter"
	SiteURL    = "https://hh.ru/"

	searchText = "стажировка"

	// The API refuses to page deeper than 2000 results.
	maxPerPage = 100
)

type Config struct {
	BaseURL     string
	Token       string
	ContactUA   string
	PerPage     int
	MaxPagesCap int
	PageDelay   time.Duration
	StaleAfter  time.Duration
	Keywords    []string
}

// Source implements source.Adapter for the HeadHunter vacancies API.
type Source struct {
	fetcher source.Fetcher
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
}

func New(cfg Config, fetcher source.Fetcher, logger *slog.Logger) *Source {
	if cfg.PerPage <= 0 || cfg.PerPage > maxPerPage {
		cfg.PerPage = maxPerPage
	}
	if cfg.MaxPagesCap <= 0 {
		cfg.MaxPagesCap = 20
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = domain.DefaultStaleAfter
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = source.DefaultTechKeywords
	}

	logger = logger.With("source", SourceID)
	if cfg.Token == "" {
		logger.Warn("no api token configured, requests may be rate limited")
	}

	return &Source{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Source) ID() string {
	return SourceID
}

func (s *Source) Website() domain.Website {
	return domain.Website{Name: SourceName, URL: SiteURL, IsSpecial: true}
}

// Search fetches one page of internship summaries. Pages past the API depth
// limit come back empty without a request.
func (s *Source) Search(ctx context.Context, q source.Query, page, perPage int) (*source.Page[Vacancy], error) {
	if page >= s.cfg.MaxPagesCap && perPage == maxPerPage {
		s.logger.Warn("page beyond api depth limit", "page", page, "per_page", perPage)
		return &source.Page[Vacancy]{PerPage: perPage, Page: page}, nil
	}

	params := url.Values{}
	params.Set("text", strings.TrimSpace(searchText+" "+q.Keywords))
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	if q.Area != "" {
		params.Set("area", q.Area)
	}

	var resp SearchResponse
	err := s.fetcher.GetJSON(ctx, fetch.Request{
		URL:    s.cfg.BaseURL + "/vacancies",
		Params: params,
		Header: s.headers(),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("search page %d: %w", page, err)
	}

	return &source.Page[Vacancy]{
		Items:   resp.Items,
		Found:   resp.Found,
		Pages:   resp.Pages,
		PerPage: resp.PerPage,
		Page:    resp.Page,
	}, nil
}

// Detail fetches the full vacancy, including description and key skills.
func (s *Source) Detail(ctx context.Context, id string) (*Vacancy, error) {
	var v Vacancy
	err := s.fetcher.GetJSON(ctx, fetch.Request{
		URL:    s.cfg.BaseURL + "/vacancies/" + url.PathEscape(id),
		Header: s.headers(),
	}, &v)
	if err != nil {
		return nil, fmt.Errorf("vacancy %s: %w", id, err)
	}
	return &v, nil
}

// GetAll pages through the search results and converts every vacancy.
// Vacancies stored recently are passed through without a detail request.
func (s *Source) GetAll(ctx context.Context, q source.Query, existing source.ExistingFunc) ([]domain.Incoming, error) {
	maxPages := q.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}
	if maxPages > s.cfg.MaxPagesCap {
		s.logger.Warn("max_pages exceeds api depth limit, clamping",
			"requested", maxPages,
			"cap", s.cfg.MaxPagesCap,
		)
		maxPages = s.cfg.MaxPagesCap
	}

	var (
		out  []domain.Incoming
		seen = make(map[string]bool)
		now  = s.now()
	)

	for page := 0; page < maxPages; page++ {
		res, err := s.Search(ctx, q, page, s.cfg.PerPage)
		if err != nil {
			if errors.Is(err, fetch.ErrBlocked) {
				s.logger.Warn("access blocked, stopping pagination", "page", page, "error", err)
			} else {
				s.logger.Error("page failed, stopping pagination", "page", page, "error", err)
			}
			break
		}
		if len(res.Items) == 0 {
			s.logger.Info("empty page, stopping pagination", "page", page)
			break
		}

		for _, v := range res.Items {
			if seen[v.ID] {
				continue
			}
			seen[v.ID] = true
			out = append(out, s.incoming(ctx, v, existing, now))
		}

		s.logger.Debug("fetched page",
			"page", page,
			"items", len(res.Items),
			"total", len(out),
			"pages", res.Pages,
		)

		if page >= res.Pages-1 || page >= maxPages-1 {
			break
		}

		if err := s.fetcher.Sleep(ctx, s.cfg.PageDelay); err != nil {
			return source.KeepWithURL(out, s.logger), err
		}
	}

	s.logger.Info("fetched vacancies", "count", len(out))

	return source.KeepWithURL(out, s.logger), nil
}

func (s *Source) incoming(ctx context.Context, v Vacancy, existing source.ExistingFunc, now time.Time) domain.Incoming {
	if p := source.FreshPosting(ctx, existing, v.ID, now, s.cfg.StaleAfter, s.logger); p != nil {
		return domain.AlreadyPersisted(p)
	}

	detail, err := s.Detail(ctx, v.ID)
	if err != nil {
		s.logger.Warn("detail fetch failed, using summary", "external_id", v.ID, "error", err)
		detail = &v
	}

	return domain.NewIncoming(Convert(*detail, s.cfg.Keywords))
}

func (s *Source) headers() http.Header {
	h := http.Header{}
	h.Set("Accept", "*/*")
	if s.cfg.Token != "" {
		h.Set("Authorization", "Bearer "+s.cfg.Token)
	}
	if s.cfg.ContactUA != "" {
		h.Set("HH-User-Agent", s.cfg.ContactUA)
	}
	return h
}

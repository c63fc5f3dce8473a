package habr

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
	"unicode/utf8"

	"internship_fetcher/internal/domain"
	"internship_fetcher/internal/extract"
	"internship_fetcher/internal/fetch"
	"internship_fetcher/internal/source"
)

const (
	SourceID   = "habr"
	SourceName = "Habr Career"
	SiteURL    = "https://career.habr.com/"

	searchText = "стажировка"
)

type Config struct {
	BaseURL              string
	MaxResults           int
	MinDescriptionLength int
	DescriptionSelector  string
	PageDelay            time.Duration
	StaleAfter           time.Duration
	Keywords             []string
}

// Source implements source.Adapter for Habr Career. Summaries come from the
// frontend list API; descriptions are scraped from the vacancy pages.
type Source struct {
	fetcher source.Fetcher
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
}

func New(cfg Config, fetcher source.Fetcher, logger *slog.Logger) *Source {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 500
	}
	if cfg.MinDescriptionLength <= 0 {
		cfg.MinDescriptionLength = 100
	}
	if cfg.DescriptionSelector == "" {
		cfg.DescriptionSelector = ".vacancy-description__text"
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = domain.DefaultStaleAfter
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = source.DefaultTechKeywords
	}

	return &Source{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger.With("source", SourceID),
		now:     time.Now,
	}
}

func (s *Source) ID() string {
	return SourceID
}

func (s *Source) Website() domain.Website {
	return domain.Website{Name: SourceName, URL: SiteURL, IsSpecial: true}
}

// Search fetches one page of the vacancies list. Pages start at 1.
func (s *Source) Search(ctx context.Context, q source.Query, page, perPage int) (*source.Page[Vacancy], error) {
	params := url.Values{}
	params.Set("q", strings.TrimSpace(searchText+" "+q.Keywords))
	params.Set("type", "all")
	params.Set("page", strconv.Itoa(page))
	if perPage > 0 {
		params.Set("per_page", strconv.Itoa(perPage))
	}

	var resp ListResponse
	err := s.fetcher.GetJSON(ctx, fetch.Request{
		URL:    s.cfg.BaseURL + "/api/frontend/vacancies",
		Params: params,
		Header: http.Header{"Referer": []string{s.cfg.BaseURL + "/vacancies"}},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("list page %d: %w", page, err)
	}

	return &source.Page[Vacancy]{
		Items:   resp.List,
		Found:   resp.Meta.TotalResults,
		Pages:   resp.Meta.TotalPages,
		PerPage: resp.Meta.PerPage,
		Page:    resp.Meta.CurrentPage,
	}, nil
}

// Description downloads the vacancy page and returns the best description
// found on it, or "" when no candidate is long enough.
func (s *Source) Description(ctx context.Context, id int64) (string, error) {
	resp, err := s.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodGet,
		URL:    s.cfg.BaseURL + "/vacancies/" + strconv.FormatInt(id, 10),
		Header: http.Header{"Accept": []string{"text/html"}},
	})
	if err != nil {
		return "", fmt.Errorf("vacancy page %d: %w", id, err)
	}

	doc, err := extract.Parse(string(resp.Body))
	if err != nil {
		return "", fmt.Errorf("parse vacancy page %d: %w", id, err)
	}

	var fromJSONLD string
	for _, jp := range extract.FindJobPostings(doc) {
		if utf8.RuneCountInString(jp.Description) > utf8.RuneCountInString(fromJSONLD) {
			fromJSONLD = jp.Description
		}
	}
	fromSelector := extract.SelectorText(doc, s.cfg.DescriptionSelector)

	return pickDescription(s.cfg.MinDescriptionLength, fromJSONLD, fromSelector), nil
}

// GetAll pages through the list API until the last page, max_pages or the
// max_results cap, whichever comes first.
func (s *Source) GetAll(ctx context.Context, q source.Query, existing source.ExistingFunc) ([]domain.Incoming, error) {
	maxPages := q.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	var (
		out  []domain.Incoming
		seen = make(map[int64]bool)
		now  = s.now()
	)

pages:
	for page := 1; page <= maxPages; page++ {
		res, err := s.Search(ctx, q, page, 0)
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
			if len(out) >= s.cfg.MaxResults {
				s.logger.Info("max_results reached", "max_results", s.cfg.MaxResults)
				break pages
			}
			if seen[v.ID] {
				continue
			}
			seen[v.ID] = true

			item, err := s.incoming(ctx, v, existing, now)
			if err != nil {
				s.logger.Warn("access blocked, stopping pagination", "external_id", v.ID, "error", err)
				break pages
			}
			out = append(out, item)
		}

		if page >= res.Pages {
			break
		}

		if err := s.fetcher.Sleep(ctx, s.cfg.PageDelay); err != nil {
			return source.KeepWithURL(out, s.logger), err
		}
	}

	s.logger.Info("fetched vacancies", "count", len(out))

	return source.KeepWithURL(out, s.logger), nil
}

// incoming only fails when the vacancy page reports the scraper as blocked.
func (s *Source) incoming(ctx context.Context, v Vacancy, existing source.ExistingFunc, now time.Time) (domain.Incoming, error) {
	if v.ID != 0 {
		id := strconv.FormatInt(v.ID, 10)
		if p := source.FreshPosting(ctx, existing, id, now, s.cfg.StaleAfter, s.logger); p != nil {
			return domain.AlreadyPersisted(p), nil
		}
	}

	var description string
	if v.ID != 0 {
		var err error
		description, err = s.Description(ctx, v.ID)
		if errors.Is(err, fetch.ErrBlocked) {
			return domain.Incoming{}, err
		}
		if err != nil {
			s.logger.Warn("vacancy page failed, using summary", "external_id", v.ID, "error", err)
		}
	}

	return domain.NewIncoming(Convert(v, s.cfg.BaseURL, description, s.cfg.Keywords)), nil
}

// pickDescription returns the longest candidate that reaches minLength.
func pickDescription(minLength int, candidates ...string) string {
	var best string
	for _, c := range candidates {
		n := utf8.RuneCountInString(c)
		if n >= minLength && n > utf8.RuneCountInString(best) {
			best = c
		}
	}
	return best
}

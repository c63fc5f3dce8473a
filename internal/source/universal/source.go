// Package universal extracts postings from arbitrary web pages.
package universal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"

	"internship_fetcher/internal/domain"
	"internship_fetcher/internal/extract"
	"internship_fetcher/internal/fetch"
	"internship_fetcher/internal/llm"
	"internship_fetcher/internal/source"
)

const SourceID = "universal"

const (
	maxTitle    = 255
	maxCompany  = 100
	maxPosition = 200
	maxShort    = 100
)

type FieldExtractor interface {
	Extract(ctx context.Context, text string) (*llm.Extraction, error)
}

type Cache interface {
	Get(ctx context.Context, pageURL string) (*domain.Fields, error)
	Set(ctx context.Context, pageURL string, fields *domain.Fields) error
}

type Config struct {
	Concurrency int
	Keywords    []string
}

type Source struct {
	fetcher   source.Fetcher
	extractor FieldExtractor
	cache     Cache
	cfg       Config
	logger    *slog.Logger
}

// New builds the adapter. extractor and cache may be nil.
func New(cfg Config, fetcher source.Fetcher, extractor FieldExtractor, cache Cache, logger *slog.Logger) *Source {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = source.DefaultTechKeywords
	}

	return &Source{
		fetcher:   fetcher,
		extractor: extractor,
		cache:     cache,
		cfg:       cfg,
		logger:    logger.With("source", SourceID),
	}
}

func (s *Source) ID() string {
	return SourceID
}

// Website is a placeholder; every record carries the website of its host.
func (s *Source) Website() domain.Website {
	return domain.Website{Name: SourceID}
}

// Search wraps the query URLs as a single page. Pages past the first are
// empty.
func (s *Source) Search(_ context.Context, q source.Query, page, _ int) (*source.Page[string], error) {
	res := &source.Page[string]{Found: len(q.URLs), Pages: 1, PerPage: len(q.URLs), Page: page}
	if page == 0 {
		res.Items = q.URLs
	}
	return res, nil
}

// GetAll processes every query URL concurrently. URLs that yield nothing are
// logged and skipped.
func (s *Source) GetAll(ctx context.Context, q source.Query, _ source.ExistingFunc) ([]domain.Incoming, error) {
	page, _ := s.Search(ctx, q, 0, 0)
	if len(page.Items) == 0 {
		return nil, nil
	}

	results := make([]*domain.Incoming, len(page.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, raw := range page.Items {
		g.Go(func() error {
			fields, err := s.Process(gctx, raw)
			if err != nil {
				s.logger.Warn("url produced no posting", "url", raw, "error", err)
				return nil
			}

			website, err := HostWebsite(fields.URL)
			if err != nil {
				s.logger.Warn("url has no host", "url", raw, "error", err)
				return nil
			}

			item := domain.NewIncoming(*fields)
			item.Website = website

			results[i] = &item
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.Incoming, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}

	s.logger.Info("processed urls", "requested", len(page.Items), "extracted", len(out))

	return source.KeepWithURL(out, s.logger), ctx.Err()
}

// Process fetches one page and extracts a posting from it. Strategies are
// tried in order: cache, model, JSON-LD, meta tags, and finally whatever
// the URL itself implies.
func (s *Source) Process(ctx context.Context, rawURL string) (*domain.Fields, error) {
	pageURL, err := parseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	rawURL = pageURL.String()
	logger := s.logger.With("url", rawURL)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, rawURL)
		if err != nil {
			logger.Warn("extraction cache lookup failed", "error", err)
		}
		if cached != nil {
			logger.Debug("extraction cache hit")
			return cached, nil
		}
	}

	html, err := s.fetchHTML(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	raw := s.extract(ctx, html, rawURL, logger)
	fields, err := finalize(raw, pageURL, s.cfg.Keywords)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rawURL, fields); err != nil {
			logger.Warn("extraction cache store failed", "error", err)
		}
	}

	return fields, nil
}

// extract runs the strategy chain and returns the first usable candidate.
func (s *Source) extract(ctx context.Context, html, pageURL string, logger *slog.Logger) candidate {
	if s.extractor != nil {
		if text := extract.VisibleText(html, pageURL); text != "" {
			ext, err := s.extractor.Extract(ctx, text)
			if err == nil {
				logger.Debug("extracted with model")
				return fromExtraction(ext)
			}
			logger.Warn("model extraction failed, trying page metadata", "error", err)
		}
	}

	doc, err := extract.Parse(html)
	if err != nil {
		logger.Warn("page could not be parsed", "error", err)
		return candidate{}
	}

	if postings := extract.FindJobPostings(doc); len(postings) > 0 {
		logger.Debug("extracted from json-ld")
		return fromJobPosting(postings[0])
	}

	meta := extract.ExtractMeta(doc)
	if meta.Title != "" && (meta.Description != "" || meta.SiteName != "") {
		logger.Debug("extracted from meta tags")
		return fromMeta(meta)
	}

	logger.Warn("no structured data found, deriving fields from url")
	return candidate{description: meta.Description, city: meta.Place}
}

func (s *Source) fetchHTML(ctx context.Context, pageURL string) (string, error) {
	resp, err := s.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodGet,
		URL:    pageURL,
		Header: http.Header{"Accept": []string{"text/html,application/xhtml+xml"}},
	})
	if err != nil {
		return "", err
	}
	return decodeBody(resp.Body, resp.Header.Get("Content-Type"))
}

// decodeBody converts the page to UTF-8 using the declared or sniffed
// charset.
func decodeBody(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body), nil
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode page: %w", err)
	}
	return string(decoded), nil
}

// HostWebsite is the website generic URLs are filed under: one per host.
func HostWebsite(pageURL string) (*domain.Website, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("no host in %q", pageURL)
	}
	return &domain.Website{Name: u.Host, URL: u.Scheme + "://" + u.Host}, nil
}

func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("unsupported url %q", raw)
	}
	return u, nil
}

func parseDate(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"internship_fetcher/internal/domain"
	"internship_fetcher/internal/metrics"
	"internship_fetcher/internal/source"
)

// Orchestrator fans a query out to every adapter in parallel and then
// reconciles the results one adapter at a time.
type Orchestrator struct {
	adapters   []Adapter
	websites   WebsiteStore
	postings   PostingStore
	queries    SearchQueryStore
	reconciler Reconciler
	publisher  Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
	newRunID   func() string
}

type Option func(*Orchestrator)

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithRunID(fn func() string) Option {
	return func(o *Orchestrator) { o.newRunID = fn }
}

// NewOrchestrator wires the run pipeline. publisher may be nil.
func NewOrchestrator(
	adapters []Adapter,
	websites WebsiteStore,
	postings PostingStore,
	queries SearchQueryStore,
	reconciler Reconciler,
	publisher Publisher,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		adapters:   adapters,
		websites:   websites,
		postings:   postings,
		queries:    queries,
		reconciler: reconciler,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
		newRunID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one query against every adapter. Adapter failures and
// per-record failures only show up in the returned stats.
func (o *Orchestrator) Run(ctx context.Context, q source.Query) (*domain.RunStats, error) {
	start := o.now()
	runID := o.newRunID()
	logger := o.logger.With("run_id", runID)

	stats := &domain.RunStats{RunID: runID, Query: q.Keywords}
	for _, a := range o.adapters {
		stats.Source(a.ID())
	}

	logger.Info("starting run",
		"keywords", q.Keywords,
		"city", q.City,
		"max_pages", q.MaxPages,
		"urls", len(q.URLs),
		"adapters", len(o.adapters),
	)

	sites := newWebsiteCache(o.websites)
	results := make([][]domain.Incoming, len(o.adapters))

	var g errgroup.Group
	if len(o.adapters) > 0 {
		g.SetLimit(len(o.adapters))
	}
	for i, a := range o.adapters {
		g.Go(func() error {
			results[i] = o.collect(ctx, a, q, sites, logger.With("source", a.ID()))
			return nil
		})
	}
	_ = g.Wait()

	for i, a := range o.adapters {
		o.persist(ctx, a, results[i], sites, stats.Source(a.ID()), runID, logger.With("source", a.ID()))
	}

	stats.Duration = o.now().Sub(start)
	totals := stats.Totals()

	status := "ok"
	if ctx.Err() != nil {
		status = "canceled"
	}
	o.metrics.Run(status)

	logger.Info("run completed",
		"total", totals.Total,
		"created", totals.Created,
		"updated", totals.Updated,
		"errors", totals.Errors,
		"duration", stats.Duration,
	)

	return stats, ctx.Err()
}

// collect runs one adapter. A panic or error yields an empty result.
func (o *Orchestrator) collect(ctx context.Context, a Adapter, q source.Query, sites *websiteCache, logger *slog.Logger) (items []domain.Incoming) {
	start := o.now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("adapter panicked", "panic", r)
			items = nil
		}
		o.metrics.AdapterRun(a.ID(), o.now().Sub(start), len(items))
	}()

	existing := func(ctx context.Context, externalID string) (*domain.Posting, error) {
		w, err := sites.resolve(ctx, a.Website())
		if err != nil {
			return nil, err
		}
		return o.postings.GetByExternalID(ctx, w.ID, externalID)
	}

	items, err := a.GetAll(ctx, q, existing)
	if err != nil {
		logger.Error("adapter failed", "error", err)
		return nil
	}

	logger.Info("adapter finished", "records", len(items), "duration", o.now().Sub(start))
	return items
}

func (o *Orchestrator) persist(
	ctx context.Context,
	a Adapter,
	items []domain.Incoming,
	sites *websiteCache,
	st *domain.SourceStats,
	runID string,
	logger *slog.Logger,
) {
	for _, item := range items {
		st.Total++

		target := a.Website()
		if item.Website != nil {
			target = *item.Website
		}

		website, err := sites.resolve(ctx, target)
		if err != nil {
			st.Errors++
			o.metrics.Reconcile(a.ID(), "error")
			logger.Error("resolve website failed", "website", target.Name, "error", err)
			continue
		}

		posting, isNew, err := o.reconciler.Apply(ctx, item, *website)
		if err != nil {
			st.Errors++
			o.metrics.Reconcile(a.ID(), "error")
			if errors.Is(err, domain.ErrValidation) {
				logger.Warn("posting rejected", "url", item.Fields.URL, "error", err)
			} else {
				logger.Error("reconcile failed", "url", item.Fields.URL, "error", err)
			}
			continue
		}

		if isNew {
			st.Created++
			o.metrics.Reconcile(a.ID(), "created")
		} else {
			st.Updated++
			o.metrics.Reconcile(a.ID(), "updated")
		}

		if o.publisher == nil || item.Kind != domain.IncomingNew {
			continue
		}
		if err := o.publisher.Publish(ctx, posting, isNew, a.ID(), runID); err != nil {
			logger.Warn("publish failed", "posting_id", posting.ID, "error", err)
		}
	}

	logger.Info("source reconciled",
		"total", st.Total,
		"created", st.Created,
		"updated", st.Updated,
		"errors", st.Errors,
	)
}

// RefreshSavedQueries runs every saved search and marks it executed.
func (o *Orchestrator) RefreshSavedQueries(ctx context.Context) ([]*domain.RunStats, error) {
	queries, err := o.queries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list saved queries: %w", err)
	}

	o.logger.Info("refreshing saved queries", "count", len(queries))

	var all []*domain.RunStats
	for _, sq := range queries {
		stats, err := o.Run(ctx, source.Query{
			Keywords: sq.Keywords,
			City:     sq.City,
			MaxPages: sq.MaxPages,
		})
		if stats != nil {
			all = append(all, stats)
		}
		if err != nil {
			return all, err
		}

		if err := o.queries.MarkExecuted(ctx, sq.ID, o.now()); err != nil {
			o.logger.Warn("mark query executed failed", "query_id", sq.ID, "error", err)
		}
	}
	return all, nil
}

// ArchiveExpired flags postings whose selection window has closed.
func (o *Orchestrator) ArchiveExpired(ctx context.Context) (int64, error) {
	n, err := o.postings.ArchiveExpired(ctx, o.now())
	if err != nil {
		return 0, fmt.Errorf("archive expired postings: %w", err)
	}
	o.logger.Info("archived expired postings", "count", n)
	return n, nil
}

// websiteCache resolves websites by name at most once per run.
type websiteCache struct {
	store WebsiteStore
	mu    sync.Mutex
	byKey map[string]*domain.Website
}

func newWebsiteCache(store WebsiteStore) *websiteCache {
	return &websiteCache{store: store, byKey: make(map[string]*domain.Website)}
}

func (c *websiteCache) resolve(ctx context.Context, w domain.Website) (*domain.Website, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.byKey[w.Name]; ok {
		return cached, nil
	}

	stored, err := c.store.GetOrCreate(ctx, w)
	if err != nil {
		return nil, err
	}
	c.byKey[w.Name] = stored
	return stored, nil
}

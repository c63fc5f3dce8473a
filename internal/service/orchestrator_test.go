package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"internship_fetcher/internal/domain"
	"internship_fetcher/internal/metrics"
	"internship_fetcher/internal/service/mocks"
	"internship_fetcher/internal/source"
	"internship_fetcher/testdata/utils"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	hh         *mocks.MockAdapter
	habr       *mocks.MockAdapter
	websites   *mocks.MockWebsiteStore
	postings   *mocks.MockPostingStore
	queries    *mocks.MockSearchQueryStore
	reconciler *mocks.MockReconciler
	publisher  *mocks.MockPublisher

	hhSite   domain.Website
	habrSite domain.Website
	now      time.Time
	logger   *slog.Logger
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.hh = mocks.NewMockAdapter(s.ctrl)
	s.habr = mocks.NewMockAdapter(s.ctrl)
	s.websites = mocks.NewMockWebsiteStore(s.ctrl)
	s.postings = mocks.NewMockPostingStore(s.ctrl)
	s.queries = mocks.NewMockSearchQueryStore(s.ctrl)
	s.reconciler = mocks.NewMockReconciler(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	s.hhSite = domain.Website{Name: "HeadHunter", URL: "https://hh.ru/", IsSpecial: true}
	s.habrSite = domain.Website{Name: "Habr Career", URL: "https://career.habr.com/", IsSpecial: true}
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.hh.EXPECT().ID().Return("hh").AnyTimes()
	s.hh.EXPECT().Website().Return(s.hhSite).AnyTimes()
	s.habr.EXPECT().ID().Return("habr").AnyTimes()
	s.habr.EXPECT().Website().Return(s.habrSite).AnyTimes()
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) orchestrator(publisher Publisher, opts ...Option) *Orchestrator {
	opts = append([]Option{
		WithClock(func() time.Time { return s.now }),
		WithRunID(func() string { return "run-1" }),
	}, opts...)

	return NewOrchestrator(
		[]Adapter{s.hh, s.habr},
		s.websites,
		s.postings,
		s.queries,
		s.reconciler,
		publisher,
		s.logger,
		opts...,
	)
}

func (s *OrchestratorTestSuite) stored(w domain.Website, id int64) *domain.Website {
	w.ID = id
	return &w
}

func fields(id, title string) domain.Fields {
	return domain.Fields{
		ExternalID: utils.Ptr(id),
		URL:        "https://example.com/" + id,
		Title:      utils.Ptr(title),
	}
}

func (s *OrchestratorTestSuite) TestRun_ReconcilesEveryAdapter() {
	ctx := context.Background()
	q := source.Query{Keywords: "go", City: "Москва", MaxPages: 2}

	persisted := &domain.Posting{ID: 10, WebsiteID: 1}
	hhItems := []domain.Incoming{
		domain.NewIncoming(fields("1", "Стажер Go")),
		domain.AlreadyPersisted(persisted),
	}
	habrItems := []domain.Incoming{domain.NewIncoming(fields("2", "Junior"))}

	s.hh.EXPECT().GetAll(ctx, q, gomock.Any()).Return(hhItems, nil)
	s.habr.EXPECT().GetAll(ctx, q, gomock.Any()).Return(habrItems, nil)

	hhStored := s.stored(s.hhSite, 1)
	habrStored := s.stored(s.habrSite, 2)
	s.websites.EXPECT().GetOrCreate(ctx, s.hhSite).Return(hhStored, nil).Times(1)
	s.websites.EXPECT().GetOrCreate(ctx, s.habrSite).Return(habrStored, nil).Times(1)

	created := &domain.Posting{ID: 11, WebsiteID: 1}
	fromHabr := &domain.Posting{ID: 12, WebsiteID: 2}
	s.reconciler.EXPECT().Apply(ctx, hhItems[0], *hhStored).Return(created, true, nil)
	s.reconciler.EXPECT().Apply(ctx, hhItems[1], *hhStored).Return(persisted, false, nil)
	s.reconciler.EXPECT().Apply(ctx, habrItems[0], *habrStored).Return(fromHabr, true, nil)

	s.publisher.EXPECT().Publish(ctx, created, true, "hh", "run-1").Return(nil)
	s.publisher.EXPECT().Publish(ctx, fromHabr, true, "habr", "run-1").Return(nil)

	stats, err := s.orchestrator(s.publisher).Run(ctx, q)

	s.Require().NoError(err)
	s.Equal("run-1", stats.RunID)
	s.Equal("go", stats.Query)
	s.Equal(domain.SourceStats{Total: 2, Created: 1, Updated: 1}, *stats.Sources["hh"])
	s.Equal(domain.SourceStats{Total: 1, Created: 1}, *stats.Sources["habr"])
	s.Equal(domain.SourceStats{Total: 3, Created: 2, Updated: 1}, stats.Totals())
}

func (s *OrchestratorTestSuite) TestRun_AdapterFailuresYieldEmptyResults() {
	ctx := context.Background()
	q := source.Query{Keywords: "go"}

	s.hh.EXPECT().GetAll(ctx, q, gomock.Any()).Return(nil, errors.New("boom"))
	s.habr.EXPECT().GetAll(ctx, q, gomock.Any()).DoAndReturn(
		func(context.Context, source.Query, source.ExistingFunc) ([]domain.Incoming, error) {
			panic("adapter bug")
		},
	)

	stats, err := s.orchestrator(nil).Run(ctx, q)

	s.Require().NoError(err)
	s.Len(stats.Sources, 2)
	s.Equal(domain.SourceStats{}, *stats.Sources["hh"])
	s.Equal(domain.SourceStats{}, *stats.Sources["habr"])
}

func (s *OrchestratorTestSuite) TestRun_PartialResultsOnErrorAreDropped() {
	ctx := context.Background()
	q := source.Query{Keywords: "go"}

	s.hh.EXPECT().GetAll(ctx, q, gomock.Any()).
		Return([]domain.Incoming{domain.NewIncoming(fields("1", "A"))}, errors.New("late failure"))
	s.habr.EXPECT().GetAll(ctx, q, gomock.Any()).Return(nil, nil)

	stats, err := s.orchestrator(nil).Run(ctx, q)

	s.Require().NoError(err)
	s.Equal(0, stats.Sources["hh"].Total)
}

func (s *OrchestratorTestSuite) TestRun_ExistingLookupUsesStoredWebsite() {
	ctx := context.Background()
	q := source.Query{Keywords: "go"}
	stored := &domain.Posting{ID: 5, WebsiteID: 1}
	hhStored := s.stored(s.hhSite, 1)

	s.hh.EXPECT().GetAll(ctx, q, gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ source.Query, existing source.ExistingFunc) ([]domain.Incoming, error) {
			p, err := existing(ctx, "42")
			if err != nil {
				return nil, err
			}
			return []domain.Incoming{domain.AlreadyPersisted(p)}, nil
		},
	)
	s.habr.EXPECT().GetAll(ctx, q, gomock.Any()).Return(nil, nil)

	s.websites.EXPECT().GetOrCreate(ctx, s.hhSite).Return(hhStored, nil).Times(1)
	s.postings.EXPECT().GetByExternalID(ctx, int64(1), "42").Return(stored, nil)
	s.reconciler.EXPECT().Apply(ctx, domain.AlreadyPersisted(stored), *hhStored).Return(stored, false, nil)

	stats, err := s.orchestrator(s.publisher).Run(ctx, q)

	s.Require().NoError(err)
	s.Equal(domain.SourceStats{Total: 1, Updated: 1}, *stats.Sources["hh"])
}

func (s *OrchestratorTestSuite) TestRun_RecordErrorsAreCounted() {
	ctx := context.Background()
	q := source.Query{Keywords: "go"}
	hhStored := s.stored(s.hhSite, 1)

	items := []domain.Incoming{
		domain.NewIncoming(fields("1", "")),
		domain.NewIncoming(fields("2", "B")),
		domain.NewIncoming(fields("3", "C")),
	}

	s.hh.EXPECT().GetAll(ctx, q, gomock.Any()).Return(items, nil)
	s.habr.EXPECT().GetAll(ctx, q, gomock.Any()).Return(nil, nil)
	s.websites.EXPECT().GetOrCreate(ctx, s.hhSite).Return(hhStored, nil)

	s.reconciler.EXPECT().Apply(ctx, items[0], *hhStored).Return(nil, false, fmt.Errorf("%w: title is required", domain.ErrValidation))
	s.reconciler.EXPECT().Apply(ctx, items[1], *hhStored).Return(nil, false, fmt.Errorf("%w: connection reset", domain.ErrStorage))
	s.reconciler.EXPECT().Apply(ctx, items[2], *hhStored).Return(&domain.Posting{ID: 3}, true, nil)

	m := metrics.New()
	stats, err := s.orchestrator(nil, WithMetrics(m)).Run(ctx, q)

	s.Require().NoError(err)
	s.Equal(domain.SourceStats{Total: 3, Created: 1, Errors: 2}, *stats.Sources["hh"])
	s.Equal(2.0, testutil.ToFloat64(m.Reconciled.WithLabelValues("hh", "error")))
	s.Equal(1.0, testutil.ToFloat64(m.Reconciled.WithLabelValues("hh", "created")))
	s.Equal(1.0, testutil.ToFloat64(m.Runs.WithLabelValues("ok")))
}

func (s *OrchestratorTestSuite) TestRun_PerRecordWebsiteOverride() {
	ctx := context.Background()
	q := source.Query{URLs: []string{"https://jobs.acme.io/intern"}}
	host := domain.Website{Name: "jobs.acme.io", URL: "https://jobs.acme.io"}
	hostStored := s.stored(host, 9)

	item := domain.NewIncoming(fields("x", "Intern"))
	item.Website = &host

	s.hh.EXPECT().GetAll(ctx, q, gomock.Any()).Return([]domain.Incoming{item}, nil)
	s.habr.EXPECT().GetAll(ctx, q, gomock.Any()).Return(nil, nil)
	s.websites.EXPECT().GetOrCreate(ctx, host).Return(hostStored, nil)
	s.reconciler.EXPECT().Apply(ctx, item, *hostStored).Return(&domain.Posting{ID: 1, WebsiteID: 9}, true, nil)

	stats, err := s.orchestrator(nil).Run(ctx, q)

	s.Require().NoError(err)
	s.Equal(1, stats.Sources["hh"].Created)
}

func (s *OrchestratorTestSuite) TestRun_WebsiteResolutionFailureCountsErrors() {
	ctx := context.Background()
	q := source.Query{Keywords: "go"}
	items := []domain.Incoming{domain.NewIncoming(fields("1", "A")), domain.NewIncoming(fields("2", "B"))}

	s.hh.EXPECT().GetAll(ctx, q, gomock.Any()).Return(items, nil)
	s.habr.EXPECT().GetAll(ctx, q, gomock.Any()).Return(nil, nil)
	s.websites.EXPECT().GetOrCreate(ctx, s.hhSite).Return(nil, errors.New("db down")).Times(2)

	stats, err := s.orchestrator(nil).Run(ctx, q)

	s.Require().NoError(err)
	s.Equal(domain.SourceStats{Total: 2, Errors: 2}, *stats.Sources["hh"])
}

func (s *OrchestratorTestSuite) TestRun_PublishFailureDoesNotCountAsError() {
	ctx := context.Background()
	q := source.Query{Keywords: "go"}
	hhStored := s.stored(s.hhSite, 1)
	item := domain.NewIncoming(fields("1", "A"))
	posting := &domain.Posting{ID: 1}

	s.hh.EXPECT().GetAll(ctx, q, gomock.Any()).Return([]domain.Incoming{item}, nil)
	s.habr.EXPECT().GetAll(ctx, q, gomock.Any()).Return(nil, nil)
	s.websites.EXPECT().GetOrCreate(ctx, s.hhSite).Return(hhStored, nil)
	s.reconciler.EXPECT().Apply(ctx, item, *hhStored).Return(posting, false, nil)
	s.publisher.EXPECT().Publish(ctx, posting, false, "hh", "run-1").Return(errors.New("broker gone"))

	stats, err := s.orchestrator(s.publisher).Run(ctx, q)

	s.Require().NoError(err)
	s.Equal(domain.SourceStats{Total: 1, Updated: 1}, *stats.Sources["hh"])
}

func (s *OrchestratorTestSuite) TestRefreshSavedQueries() {
	ctx := context.Background()
	saved := []domain.SearchQuery{
		{ID: 1, City: "Москва", Keywords: "go", MaxPages: 2},
		{ID: 2, Keywords: "python", MaxPages: 1},
	}

	s.queries.EXPECT().List(ctx).Return(saved, nil)
	for _, sq := range saved {
		q := source.Query{Keywords: sq.Keywords, City: sq.City, MaxPages: sq.MaxPages}
		s.hh.EXPECT().GetAll(ctx, q, gomock.Any()).Return(nil, nil)
		s.habr.EXPECT().GetAll(ctx, q, gomock.Any()).Return(nil, nil)
		s.queries.EXPECT().MarkExecuted(ctx, sq.ID, s.now).Return(nil)
	}

	all, err := s.orchestrator(nil).RefreshSavedQueries(ctx)

	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("go", all[0].Query)
	s.Equal("python", all[1].Query)
}

func (s *OrchestratorTestSuite) TestRefreshSavedQueries_MarkFailureContinues() {
	ctx := context.Background()
	saved := []domain.SearchQuery{{ID: 1, Keywords: "go", MaxPages: 1}, {ID: 2, Keywords: "java", MaxPages: 1}}

	s.queries.EXPECT().List(ctx).Return(saved, nil)
	s.hh.EXPECT().GetAll(ctx, gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	s.habr.EXPECT().GetAll(ctx, gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	s.queries.EXPECT().MarkExecuted(ctx, int64(1), s.now).Return(errors.New("db down"))
	s.queries.EXPECT().MarkExecuted(ctx, int64(2), s.now).Return(nil)

	all, err := s.orchestrator(nil).RefreshSavedQueries(ctx)

	s.NoError(err)
	s.Len(all, 2)
}

func (s *OrchestratorTestSuite) TestRefreshSavedQueries_ListError() {
	ctx := context.Background()
	s.queries.EXPECT().List(ctx).Return(nil, errors.New("db down"))

	all, err := s.orchestrator(nil).RefreshSavedQueries(ctx)

	s.Error(err)
	s.Nil(all)
}

func (s *OrchestratorTestSuite) TestArchiveExpired() {
	ctx := context.Background()
	s.postings.EXPECT().ArchiveExpired(ctx, s.now).Return(int64(4), nil)

	n, err := s.orchestrator(nil).ArchiveExpired(ctx)

	s.NoError(err)
	s.Equal(int64(4), n)
}

func (s *OrchestratorTestSuite) TestArchiveExpired_Error() {
	ctx := context.Background()
	s.postings.EXPECT().ArchiveExpired(ctx, s.now).Return(int64(0), errors.New("db down"))

	_, err := s.orchestrator(nil).ArchiveExpired(ctx)

	s.ErrorContains(err, "archive expired postings")
}

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"internship_fetcher/internal/domain"
	"internship_fetcher/internal/source"
)

// Runner is the orchestrator surface the scheduler drives.
type Runner interface {
	Run(ctx context.Context, q source.Query) (*domain.RunStats, error)
	RefreshSavedQueries(ctx context.Context) ([]*domain.RunStats, error)
	ArchiveExpired(ctx context.Context) (int64, error)
}

type Config struct {
	Interval             time.Duration
	SavedQueriesInterval time.Duration
	RunTimeout           time.Duration
	ArchiveSpec          string
	Query                source.Query
}

type Scheduler struct {
	runner Runner
	cfg    Config
	logger *slog.Logger
	cron   *cron.Cron
	chain  cron.Chain
}

func NewScheduler(runner Runner, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.ArchiveSpec == "" {
		cfg.ArchiveSpec = "@daily"
	}

	cl := cronLogger{logger: logger}
	wrappers := []cron.JobWrapper{cron.Recover(cl), cron.SkipIfStillRunning(cl)}
	return &Scheduler{
		runner: runner,
		cfg:    cfg,
		logger: logger,
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(wrappers...)),
		chain:  cron.NewChain(wrappers...),
	}
}

// Start runs the default query once, then schedules every job and blocks
// until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.register(ctx); err != nil {
		return err
	}

	s.logger.Info("scheduler started",
		"interval", s.cfg.Interval,
		"saved_queries_interval", s.cfg.SavedQueriesInterval,
		"archive", s.cfg.ArchiveSpec,
		"run_timeout", s.cfg.RunTimeout,
	)

	// The first run gets the same panic recovery as scheduled jobs.
	s.chain.Then(cron.FuncJob(func() { s.runQuery(ctx) })).Run()
	s.cron.Start()

	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) register(ctx context.Context) error {
	jobs := []struct {
		spec string
		fn   func(context.Context)
	}{
		{every(s.cfg.Interval), s.runQuery},
		{every(s.cfg.SavedQueriesInterval), s.runSavedQueries},
		{s.cfg.ArchiveSpec, s.runArchive},
	}

	for _, job := range jobs {
		fn := job.fn
		if _, err := s.cron.AddFunc(job.spec, func() { fn(ctx) }); err != nil {
			return fmt.Errorf("schedule %q: %w", job.spec, err)
		}
	}
	return nil
}

func (s *Scheduler) runQuery(ctx context.Context) {
	runCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.runner.Run(runCtx, s.cfg.Query); err != nil {
		s.logger.Error("run failed", "error", err)
	}
}

func (s *Scheduler) runSavedQueries(ctx context.Context) {
	runCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.runner.RefreshSavedQueries(runCtx); err != nil {
		s.logger.Error("saved queries refresh failed", "error", err)
	}
}

func (s *Scheduler) runArchive(ctx context.Context) {
	runCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.runner.ArchiveExpired(runCtx); err != nil {
		s.logger.Error("archive failed", "error", err)
	}
}

func (s *Scheduler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RunTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.RunTimeout)
}

func every(d time.Duration) string {
	return "@every " + d.String()
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

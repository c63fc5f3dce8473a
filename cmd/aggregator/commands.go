package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"internship_fetcher/internal/domain"
	"internship_fetcher/internal/scheduler"
	"internship_fetcher/internal/service"
	"internship_fetcher/internal/source"
)

func (c *cli) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler daemon with a metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if c.cfg.MetricsAddr != "" {
				srv := serveMetrics(c.cfg.MetricsAddr, a)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			sched := scheduler.NewScheduler(a.orchestrator(a.boardAdapters()), scheduler.Config{
				Interval:             c.cfg.Sync.Interval,
				SavedQueriesInterval: c.cfg.Sync.SavedQueriesInterval,
				RunTimeout:           c.cfg.Sync.RunTimeout,
				Query: source.Query{
					Keywords: c.cfg.Sync.Keywords,
					City:     c.cfg.Sync.City,
					Area:     c.cfg.Sync.Area,
					MaxPages: c.cfg.Sync.MaxPages,
				},
			}, c.logger)

			c.logger.Info("starting aggregator",
				"interval", c.cfg.Sync.Interval,
				"max_pages", c.cfg.Sync.MaxPages,
				"metrics_addr", c.cfg.MetricsAddr,
			)

			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("scheduler: %w", err)
			}
			return nil
		},
	}
}

func serveMetrics(addr string, a *app) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func (c *cli) fetchCommand() *cobra.Command {
	var q source.Query

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run one query against the job boards, or extract postings from --url pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if q.MaxPages <= 0 {
				return fmt.Errorf("--max-pages must be positive, got %d", q.MaxPages)
			}

			a, err := newApp(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			adapters := fetchAdapters(q, a.boardAdapters, a.universalAdapter)

			stats, err := a.orchestrator(adapters).Run(ctx, q)
			if stats != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(stats); encErr != nil {
					return encErr
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&q.Keywords, "keywords", "", "search keywords")
	cmd.Flags().StringVar(&q.City, "city", "", "city filter")
	cmd.Flags().StringVar(&q.Area, "area", "", "HeadHunter area id")
	cmd.Flags().IntVar(&q.MaxPages, "max-pages", 1, "maximum result pages per source")
	cmd.Flags().StringSliceVar(&q.URLs, "url", nil, "posting page to extract (repeatable)")

	return cmd
}

// fetchAdapters picks the adapters for a one-off fetch. The boards run for
// any search terms, or when no URLs were given. URLs add the universal
// adapter.
func fetchAdapters(q source.Query, boards func() []service.Adapter, universal func() service.Adapter) []service.Adapter {
	var adapters []service.Adapter
	if len(q.URLs) == 0 || q.Keywords != "" || q.City != "" || q.Area != "" {
		adapters = append(adapters, boards()...)
	}
	if len(q.URLs) > 0 {
		adapters = append(adapters, universal())
	}
	return adapters
}

func (c *cli) migrateCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrate.New(path, c.cfg.Database.MigrateURL())
			if err != nil {
				return fmt.Errorf("create migrate instance: %w", err)
			}
			defer func() { _, _ = m.Close() }()

			direction := args[0]
			if direction == "up" {
				err = m.Up()
			} else {
				err = m.Down()
			}
			if err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration %s: %w", direction, err)
			}

			version, dirty, verr := m.Version()
			if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
				return verr
			}
			c.logger.Info("migration completed", "direction", direction, "version", version, "dirty", dirty)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "file://migrations", "migrations source URL")

	return cmd
}

func (c *cli) queriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queries",
		Short: "Manage saved recurring searches",
	}

	var sq domain.SearchQuery
	add := &cobra.Command{
		Use:   "add",
		Short: "Save a search that the daemon refreshes periodically",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sq.MaxPages <= 0 {
				return fmt.Errorf("--max-pages must be positive, got %d", sq.MaxPages)
			}

			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.queries.Upsert(cmd.Context(), &sq); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved query %d\n", sq.ID)
			return nil
		},
	}
	add.Flags().StringVar(&sq.Keywords, "keywords", "", "search keywords")
	add.Flags().StringVar(&sq.City, "city", "", "city filter")
	add.Flags().IntVar(&sq.MaxPages, "max-pages", 1, "maximum result pages per source")

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			queries, err := a.queries.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKEYWORDS\tCITY\tMAX PAGES\tLAST EXECUTED")
			for _, q := range queries {
				last := "never"
				if q.LastExecuted != nil {
					last = q.LastExecuted.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", q.ID, q.Keywords, q.City, q.MaxPages, last)
			}
			return w.Flush()
		},
	}

	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Run every saved search now",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			_, err = a.orchestrator(a.boardAdapters()).RefreshSavedQueries(cmd.Context())
			return err
		},
	}

	cmd.AddCommand(add, list, refresh)
	return cmd
}

func (c *cli) websitesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "websites",
		Short: "Inspect and remove posting sources",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List known websites",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			websites, err := a.websites.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tURL\tBUILT-IN")
			for _, site := range websites {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", site.ID, site.Name, site.URL, site.IsSpecial)
			}
			return w.Flush()
		},
	}

	del := &cobra.Command{
		Use:   "delete ID|NAME",
		Short: "Delete an operator-added website and its postings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := websiteID(cmd.Context(), args[0], a.websites.GetByName)
			if err != nil {
				return err
			}
			return a.websites.Delete(cmd.Context(), id)
		},
	}

	cmd.AddCommand(list, del)
	return cmd
}

// websiteID accepts a numeric id or a website name such as "jobs.acme.io".
func websiteID(ctx context.Context, arg string, byName func(ctx context.Context, name string) (*domain.Website, error)) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, nil
	}

	w, err := byName(ctx, arg)
	if err != nil {
		return 0, fmt.Errorf("website %q: %w", arg, err)
	}
	return w.ID, nil
}

func (c *cli) archiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Archive postings whose selection window has closed",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.orchestrator(nil).ArchiveExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived %d postings\n", n)
			return nil
		},
	}
}

// Package cli wires the citypulse commands: the long-running server, one-shot
// scrape cycles, and featured-overlay inspection.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mbertelsen/citypulse/internal/catalog"
	"github.com/mbertelsen/citypulse/internal/config"
	"github.com/mbertelsen/citypulse/internal/fetch"
	"github.com/mbertelsen/citypulse/internal/ingest"
	"github.com/mbertelsen/citypulse/internal/server"
	"github.com/mbertelsen/citypulse/internal/store"
	"github.com/mbertelsen/citypulse/internal/venue"
)

var flagConfig string

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "citypulse",
		Short: "Aggregate venue event listings into one catalog",
		Long: `citypulse scrapes event listings from configured venue pages,
normalizes them into a deduplicated catalog, and serves the catalog
over HTTP with a curated featured overlay.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (YAML)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newFeaturedCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func setup() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	return cfg, log, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog API server with scheduled scrape cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer st.Close()

			registry, err := venue.Load(cfg.VenuesFile)
			if err != nil {
				return fmt.Errorf("loading venue registry: %w", err)
			}

			cache := catalog.NewCache(cfg.CacheTTL, nil)
			cat := catalog.New(st, cache, log)

			ing := ingest.New(fetch.New(cfg.FetchTimeout), registry, st, log,
				cfg.SourceTimeout, cat.InvalidateCache)

			sched, err := ingest.NewScheduler(ing, cfg.ScrapeCron)
			if err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			srv := &http.Server{
				Addr:              cfg.Listen,
				Handler:           server.New(cat, st, log).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("listen", cfg.Listen).Int("sources", registry.Len()).Msg("serving catalog")
				errCh <- srv.ListenAndServe()
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-stop:
				log.Info().Msg("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
}

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Run one ingest cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer st.Close()

			registry, err := venue.Load(cfg.VenuesFile)
			if err != nil {
				return fmt.Errorf("loading venue registry: %w", err)
			}

			ing := ingest.New(fetch.New(cfg.FetchTimeout), registry, st, log,
				cfg.SourceTimeout, nil)
			stats := ing.Run(cmd.Context())

			fmt.Printf("sources=%d failed=%d candidates=%d rejected=%d created=%d merged=%d\n",
				stats.Sources, stats.Failed, stats.Candidates, stats.Rejected, stats.Created, stats.Merged)
			return nil
		},
	}
}

func newFeaturedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: "List the curated featured overlay",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer st.Close()

			marks, err := st.ListFeatured()
			if err != nil {
				return fmt.Errorf("listing featured marks: %w", err)
			}
			if len(marks) == 0 {
				fmt.Println("no featured events")
				return nil
			}
			for _, m := range marks {
				title := "(missing event)"
				if evt, err := st.GetEvent(m.EventID); err == nil {
					title = evt.Title
				}
				fmt.Printf("%2d. %.12s  %s\n", m.Order, m.EventID, title)
			}
			return nil
		},
	}
}

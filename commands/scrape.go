package commands

import (
	"context"
	"fmt"
	"os"

	"car-scraper/config"
	"car-scraper/scraper"
	"car-scraper/services"
	"car-scraper/storage"
	"car-scraper/utils"

	"github.com/spf13/cobra"
)

var scrapeOpts struct {
	sites      string
	only       []string
	csvPath    string
	sqlitePath string
	postgres   bool
	workers    int
	noReport   bool
}

func init() {
	f := scrapeCmd.Flags()
	f.StringVar(&scrapeOpts.sites, "sites", "", "Site config file (YAML or JSON5). Defaults to sites_path from the config.")
	f.StringSliceVar(&scrapeOpts.only, "only", nil, "Scrape only these sources.")
	f.StringVar(&scrapeOpts.csvPath, "csv", "", "Overrides csv_path.")
	f.StringVar(&scrapeOpts.sqlitePath, "sqlite", "", "Overrides sqlite_path.")
	f.BoolVar(&scrapeOpts.postgres, "postgres", false, "Also write to PostgreSQL.")
	f.IntVar(&scrapeOpts.workers, "workers", 0, "Number of sites scraped at once. Overrides max_workers.")
	f.BoolVar(&scrapeOpts.noReport, "no-report", false, "Skip the summary tables.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--sites sites.yaml] [--only source,...]",
	Short: "Scrapes every enabled site and writes the normalized listings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyScrapeFlags(cfg)

		sites, err := config.LoadSites(cfg.SitesPath)
		if err != nil {
			return err
		}
		sites, err = config.SelectSites(config.EnabledSites(sites), scrapeOpts.only)
		if err != nil {
			return err
		}

		log := utils.Default().With("run", utils.NewRunID())
		log.Info("scraper starting", "sites", len(sites), "workers", cfg.MaxWorkers, "min_delay", cfg.MinDelay, "max_delay", cfg.MaxDelay)

		sink, closeSinks, err := openSinks(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeSinks()

		renderer := scraper.NewBrowserRenderer(cfg, log)
		paginator := scraper.NewPaginator(renderer, cfg, log)
		summary := scraper.NewAggregator(paginator, cfg, log).Run(cmd.Context(), sites, sink)

		if len(summary.Listings) == 0 {
			log.Warn("no listings scraped")
		} else {
			log.Success("scrape complete", "listings", len(summary.Listings))
		}

		if !scrapeOpts.noReport {
			services.PrintReport(os.Stdout, services.GenerateReport(summary.Listings, summary.Sites))
		}

		// Partial site failures are already in the report; only a lost
		// table fails the command.
		return summary.WriteErr
	},
}

func applyScrapeFlags(cfg *config.Config) {
	if scrapeOpts.sites != "" {
		cfg.SitesPath = scrapeOpts.sites
	}
	if scrapeOpts.csvPath != "" {
		cfg.CSVPath = scrapeOpts.csvPath
	}
	if scrapeOpts.sqlitePath != "" {
		cfg.SQLitePath = scrapeOpts.sqlitePath
	}
	if scrapeOpts.postgres {
		cfg.Postgres.Enabled = true
	}
	if scrapeOpts.workers > 0 {
		cfg.MaxWorkers = scrapeOpts.workers
	}
}

var openSQLite = storage.OpenSQLite

func openSinks(ctx context.Context, cfg *config.Config) (*storage.Multi, func(), error) {
	var (
		sinks   []storage.Sink
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.CSVPath != "" {
		sinks = append(sinks, storage.NewCSVWriter(cfg.CSVPath))
	}

	if cfg.SQLitePath != "" {
		w, err := openSQLite(cfg.SQLitePath)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, w)
		closers = append(closers, func() { w.Close() })
	}

	if cfg.Postgres.Enabled {
		w, err := storage.NewPostgresWriter(ctx, cfg.Postgres)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, w.Close)
		if err := w.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, w)
	}

	if len(sinks) == 0 {
		return nil, nil, fmt.Errorf("no output configured: %w", config.ErrNoSink)
	}
	return storage.NewMulti(sinks...), closeAll, nil
}

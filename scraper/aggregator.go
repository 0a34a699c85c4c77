package scraper

import (
	"context"
	"fmt"

	"car-scraper/config"
	"car-scraper/models"
	"car-scraper/services"
	"car-scraper/utils"

	"golang.org/x/sync/errgroup"
)

// Sink receives the final normalized table.
type Sink interface {
	Write(ctx context.Context, listings []models.NormalizedListing) error
}

type Summary struct {
	Sites    []models.SiteResult
	Listings []models.NormalizedListing
	// WriteErr is the sink's error, if any. Scraped data is still in Listings.
	WriteErr error
}

// Aggregator runs the paginator over a set of sites and merges the results.
type Aggregator struct {
	paginator *Paginator
	cfg       *config.Config
	log       *utils.Logger
}

func NewAggregator(paginator *Paginator, cfg *config.Config, log *utils.Logger) *Aggregator {
	if log == nil {
		log = utils.Discard()
	}
	return &Aggregator{paginator: paginator, cfg: cfg, log: log}
}

// Run scrapes all sites, up to cfg.MaxWorkers at a time, normalizes every
// listing and writes the table to sink once. A failing site never stops
// the others. sink may be nil.
func (a *Aggregator) Run(ctx context.Context, sites []models.SiteConfig, sink Sink) Summary {
	summary := Summary{Sites: make([]models.SiteResult, len(sites))}
	// One slot per site keeps output in configuration order whatever the
	// completion order is.
	normalized := make([][]models.NormalizedListing, len(sites))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.cfg.MaxWorkers, 1))

	for i, site := range sites {
		g.Go(func() error {
			result := a.runSite(gctx, site)
			summary.Sites[i] = result
			normalized[i] = services.NormalizeAll(result.Listings)
			return nil
		})
	}
	// Site goroutines never return errors; failures live in SiteResult.
	_ = g.Wait()

	for _, listings := range normalized {
		summary.Listings = append(summary.Listings, listings...)
	}

	for _, r := range summary.Sites {
		if r.Termination.Failed() {
			a.log.Warn("site finished early", "source", r.Source, "termination", r.Termination, "kind", Classify(r.Err), "err", r.Err)
			continue
		}
		a.log.Success("site finished", "source", r.Source, "termination", r.Termination, "pages", len(r.Pages), "listings", len(r.Listings))
	}

	if sink != nil {
		if err := sink.Write(ctx, summary.Listings); err != nil {
			summary.WriteErr = fmt.Errorf("write listings: %w", err)
			a.log.Error("failed to write listings", "err", err)
		}
	}
	return summary
}

func (a *Aggregator) runSite(ctx context.Context, site models.SiteConfig) (result models.SiteResult) {
	result.Source = site.Source

	if a.cfg.SiteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.SiteTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			// Pages finished before the panic stay in the result.
			result.Termination = models.TerminationFailed
			result.Err = &SiteFailure{Source: site.Source, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	a.log.Info("scraping site", "source", site.Source, "max_pages", site.MaxPages)
	a.paginator.run(ctx, site, &result)
	return result
}

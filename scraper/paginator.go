package scraper

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"car-scraper/config"
	"car-scraper/models"
	"car-scraper/utils"
)

// Paginator walks the pages of one site in order, rendering and extracting each.
type Paginator struct {
	renderer Renderer
	cfg      *config.Config
	log      *utils.Logger
	// pause runs between pages.
	pause func(ctx context.Context) error
}

func NewPaginator(renderer Renderer, cfg *config.Config, log *utils.Logger) *Paginator {
	if log == nil {
		log = utils.Discard()
	}
	return &Paginator{
		renderer: renderer,
		cfg:      cfg,
		log:      log,
		pause: func(ctx context.Context) error {
			return utils.RandomDelay(ctx, cfg.MinDelay, cfg.MaxDelay)
		},
	}
}

// Run scrapes every page of site and reports how pagination ended.
// Failed pages are recorded in the result, never returned as an error.
func (p *Paginator) Run(ctx context.Context, site models.SiteConfig) models.SiteResult {
	result := models.SiteResult{Source: site.Source}
	p.run(ctx, site, &result)
	return result
}

// run accumulates into result as pages complete, so a caller that
// recovers from a panic still sees every page finished before it.
func (p *Paginator) run(ctx context.Context, site models.SiteConfig, result *models.SiteResult) {
	p.walk(ctx, site, result, func(page models.PageResult) bool {
		result.Pages = append(result.Pages, page)
		result.Listings = append(result.Listings, page.Listings...)
		return true
	})
}

// Pages yields page results lazily. Stopping the iteration early stops
// pagination before the next page is requested.
func (p *Paginator) Pages(ctx context.Context, site models.SiteConfig) iter.Seq[models.PageResult] {
	return func(yield func(models.PageResult) bool) {
		var result models.SiteResult
		p.walk(ctx, site, &result, yield)
	}
}

func (p *Paginator) walk(ctx context.Context, site models.SiteConfig, result *models.SiteResult, yield func(models.PageResult) bool) {
	log := p.log.With("source", site.Source)
	consecutiveFailures := 0

	for pageNum := 1; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			result.Termination = models.TerminationDeadline
			result.Err = err
			log.Warn("site stopped by deadline", "page", pageNum, "err", err)
			return
		}

		page := p.scrapePage(ctx, site, pageNum, log)
		if !yield(page) {
			return
		}

		switch page.Status {
		case models.PageRenderFailed:
			consecutiveFailures++
		default:
			consecutiveFailures = 0
		}

		if p.cfg.MaxConsecutiveFailures > 0 && consecutiveFailures >= p.cfg.MaxConsecutiveFailures {
			result.Termination = models.TerminationAborted
			result.Err = fmt.Errorf("%d consecutive render failures: %w", consecutiveFailures, page.Err)
			log.Error("aborting site", "failures", consecutiveFailures, "err", page.Err)
			return
		}

		if page.Status == models.PageEmpty && pageNum > 1 {
			result.Termination = models.TerminationExhausted
			log.Info("no more listings", "page", pageNum)
			return
		}

		if pageNum >= site.MaxPages {
			result.Termination = models.TerminationCapped
			log.Info("page cap reached", "max_pages", site.MaxPages)
			return
		}

		if err := p.pause(ctx); err != nil {
			result.Termination = models.TerminationDeadline
			result.Err = err
			log.Warn("site stopped by deadline", "page", pageNum, "err", err)
			return
		}
	}
}

func (p *Paginator) scrapePage(ctx context.Context, site models.SiteConfig, pageNum int, log *utils.Logger) models.PageResult {
	url := site.PageURL(pageNum)
	page := models.PageResult{PageNumber: pageNum, URL: url}
	log = log.With("page", pageNum, "url", url)
	log.Info("scraping page")

	rendered, err := p.renderer.Render(ctx, url, site.Container, p.cfg.ContainerTimeout)
	if err != nil {
		var re *RenderError
		if !errors.As(err, &re) {
			err = &RenderError{URL: url, Err: err}
		}
		page.Status = models.PageRenderFailed
		page.Err = err
		log.Warn("page skipped", "kind", Classify(err), "err", err)
		return page
	}

	if rendered.ContainerTimedOut {
		page.TimedOut = true
		log.Warn("continuing with partial page", "kind", models.ErrorRenderTimeout, "container", site.Container, "err", ErrRenderTimeout)
	}

	listings, err := Extract(rendered, site)
	if err != nil {
		page.Status = models.PageExtractFailed
		page.Err = err
		log.Warn("page skipped", "kind", Classify(err), "err", err)
		return page
	}

	page.Listings = slices.Collect(listings)
	if len(page.Listings) == 0 {
		page.Status = models.PageEmpty
	} else {
		page.Status = models.PageOK
	}
	log.Info("page scraped", "listings", len(page.Listings))
	return page
}

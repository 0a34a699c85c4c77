package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"car-scraper/config"
	"car-scraper/models"
	"car-scraper/utils"

	"github.com/chromedp/chromedp"
)

// Renderer loads a listing page and returns its HTML once lazy content has loaded.
type Renderer interface {
	Render(ctx context.Context, url, container string, timeout time.Duration) (models.RenderedPage, error)
}

// BrowserRenderer renders pages with headless Chrome. Each call runs in
// its own browser process, released before Render returns.
type BrowserRenderer struct {
	cfg   *config.Config
	log   *utils.Logger
	sleep sleepFunc
}

func NewBrowserRenderer(cfg *config.Config, log *utils.Logger) *BrowserRenderer {
	if log == nil {
		log = utils.Discard()
	}
	return &BrowserRenderer{cfg: cfg, log: log, sleep: utils.Sleep}
}

func (r *BrowserRenderer) Render(ctx context.Context, url, container string, timeout time.Duration) (models.RenderedPage, error) {
	page := models.RenderedPage{URL: url}
	log := r.log.With("url", url)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, utils.BrowserOpts(r.cfg.Headless, r.cfg.ChromePath)...)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	pageCtx, cancel := context.WithTimeout(tabCtx, r.cfg.RequestTimeout)
	defer cancel()

	err := utils.Retry(pageCtx, log, r.cfg.MaxRetries, r.cfg.RetryBackoff, func() error {
		return chromedp.Run(pageCtx, chromedp.Navigate(url))
	})
	if err != nil {
		return page, &RenderError{URL: url, Err: err}
	}

	if err := r.waitContainer(pageCtx, container, timeout); err != nil {
		if !errors.Is(err, ErrRenderTimeout) {
			return page, &RenderError{URL: url, Err: err}
		}
		page.ContainerTimedOut = true
	}

	if err := r.settle(pageCtx, chromePage{}, log); err != nil {
		return page, &RenderError{URL: url, Err: err}
	}

	if err := chromedp.Run(pageCtx, chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery)); err != nil {
		return page, &RenderError{URL: url, Err: fmt.Errorf("read html: %w", err)}
	}
	return page, nil
}

// htmlReserve is the part of the page deadline kept for reading the HTML
// after scrolling.
const htmlReserve = 10 * time.Second

// settle scrolls page until its height settles. Scrolling gets the page
// deadline minus a reserve; running out of it is treated like the scroll
// cap so the HTML loaded so far is still read.
func (r *BrowserRenderer) settle(ctx context.Context, page scrollPage, log *utils.Logger) error {
	settleCtx, cancel := context.WithCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		cancel()
		settleCtx, cancel = context.WithTimeout(ctx, remaining-min(htmlReserve, remaining/4))
	}
	defer cancel()

	scrolls, settled, err := settleScroll(settleCtx, page, r.cfg.SettleInterval, r.cfg.MaxScrolls, r.sleep)
	if err != nil {
		if ctx.Err() != nil || !errors.Is(settleCtx.Err(), context.DeadlineExceeded) {
			return err
		}
		log.Warn("scroll time budget spent before page height settled", "scrolls", scrolls)
		return nil
	}
	if !settled {
		log.Warn("scroll limit reached before page height settled", "scrolls", scrolls)
	}
	log.Debug("page settled", "scrolls", scrolls)
	return nil
}

// waitContainer returns ErrRenderTimeout when the container is not in the
// DOM after timeout. Other errors mean the page itself is unusable.
func (r *BrowserRenderer) waitContainer(ctx context.Context, container string, timeout time.Duration) error {
	if container == "" || timeout <= 0 {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := chromedp.Run(waitCtx, chromedp.WaitReady(container, chromedp.ByQuery))
	if err == nil {
		return nil
	}
	// Only the wait's own deadline is recoverable; the page deadline is not.
	if errors.Is(waitCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return ErrRenderTimeout
	}
	return err
}

// chromePage runs scroll probes in the tab bound to ctx.
type chromePage struct{}

func (chromePage) ScrollHeight(ctx context.Context) (int64, error) {
	var height int64
	err := chromedp.Run(ctx, chromedp.Evaluate(`document.body ? document.body.scrollHeight : 0`, &height))
	return height, err
}

func (chromePage) ScrollToBottom(ctx context.Context) error {
	return chromedp.Run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body ? document.body.scrollHeight : 0)`, nil))
}

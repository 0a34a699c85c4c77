package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"car-scraper/config"
	"car-scraper/models"
	"car-scraper/utils"

	"github.com/stretchr/testify/require"
)

// fakeRenderer serves canned pages keyed by URL and records requests.
type fakeRenderer struct {
	mu       sync.Mutex
	pages    map[string]models.RenderedPage
	errs     map[string]error
	fallback error
	panicOn  string
	requests []string
}

func (r *fakeRenderer) Render(_ context.Context, url, _ string, _ time.Duration) (models.RenderedPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, url)
	if r.panicOn != "" && strings.Contains(url, r.panicOn) {
		panic("renderer exploded")
	}
	if err, ok := r.errs[url]; ok {
		return models.RenderedPage{URL: url}, err
	}
	if page, ok := r.pages[url]; ok {
		return page, nil
	}
	if r.fallback != nil {
		return models.RenderedPage{URL: url}, r.fallback
	}
	return models.RenderedPage{URL: url, HTML: "<html><body></body></html>"}, nil
}

func (r *fakeRenderer) Requests() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.requests...)
}

func carsHTML(n int) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := range n {
		fmt.Fprintf(&b, `<article class="car"><h2 class="title">2021 Ferrari %d</h2><span class="price">£%d</span></article>`, i, 100000+i)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func testSite(source string, maxPages int) models.SiteConfig {
	return models.SiteConfig{
		Source:      source,
		URLTemplate: "https://" + source + ".example/cars?page={page}",
		Container:   "article.car",
		Title:       ".title",
		Price:       ".price",
		MaxPages:    maxPages,
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.MinDelay = 2 * time.Second
	cfg.MaxDelay = 4 * time.Second
	return cfg
}

// pauseCounter replaces the delay between pages and counts how often it ran.
type pauseCounter struct {
	mu    sync.Mutex
	calls int
}

func (c *pauseCounter) pause(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func (c *pauseCounter) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestPaginator(r Renderer, cfg *config.Config) (*Paginator, *pauseCounter) {
	p := NewPaginator(r, cfg, utils.Discard())
	pauses := &pauseCounter{}
	p.pause = pauses.pause
	return p, pauses
}

func TestPaginatorStopsOnEmptyPage(t *testing.T) {
	site := testSite("dealer", 5)
	r := &fakeRenderer{pages: map[string]models.RenderedPage{
		site.PageURL(1): {HTML: carsHTML(3)},
		site.PageURL(2): {HTML: carsHTML(2)},
		site.PageURL(3): {HTML: carsHTML(1)},
		site.PageURL(4): {HTML: carsHTML(0)},
		site.PageURL(5): {HTML: carsHTML(4)},
	}}
	p, pauses := newTestPaginator(r, testConfig())

	result := p.Run(context.Background(), site)

	require.Equal(t, models.TerminationExhausted, result.Termination)
	require.NoError(t, result.Err)
	require.Equal(t, []string{site.PageURL(1), site.PageURL(2), site.PageURL(3), site.PageURL(4)}, r.Requests())
	require.Len(t, result.Pages, 4)
	require.Equal(t, models.PageEmpty, result.Pages[3].Status)
	require.Len(t, result.Listings, 6)
	require.Equal(t, 3, pauses.Calls())
}

func TestPaginatorDefaultPauseUsesDelayRange(t *testing.T) {
	site := testSite("dealer", 2)
	r := &fakeRenderer{pages: map[string]models.RenderedPage{
		site.PageURL(1): {HTML: carsHTML(1)},
		site.PageURL(2): {HTML: carsHTML(1)},
	}}
	cfg := testConfig()
	cfg.MinDelay = 10 * time.Millisecond
	cfg.MaxDelay = 20 * time.Millisecond
	p := NewPaginator(r, cfg, utils.Discard())

	start := time.Now()
	result := p.Run(context.Background(), site)

	require.Equal(t, models.TerminationCapped, result.Termination)
	require.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	require.Len(t, result.Listings, 2)
}

func TestPaginatorCapsAtMaxPages(t *testing.T) {
	site := testSite("dealer", 2)
	r := &fakeRenderer{pages: map[string]models.RenderedPage{
		site.PageURL(1): {HTML: carsHTML(2)},
		site.PageURL(2): {HTML: carsHTML(2)},
		site.PageURL(3): {HTML: carsHTML(2)},
	}}
	p, pauses := newTestPaginator(r, testConfig())

	result := p.Run(context.Background(), site)

	require.Equal(t, models.TerminationCapped, result.Termination)
	require.Equal(t, []string{site.PageURL(1), site.PageURL(2)}, r.Requests())
	require.Len(t, result.Listings, 4)
	require.Equal(t, 1, pauses.Calls())
}

func TestPaginatorEmptyFirstPageContinues(t *testing.T) {
	site := testSite("dealer", 3)
	r := &fakeRenderer{pages: map[string]models.RenderedPage{
		site.PageURL(1): {HTML: carsHTML(0)},
		site.PageURL(2): {HTML: carsHTML(1)},
		site.PageURL(3): {HTML: carsHTML(0)},
	}}
	p, _ := newTestPaginator(r, testConfig())

	result := p.Run(context.Background(), site)

	require.Equal(t, models.TerminationExhausted, result.Termination)
	require.Len(t, r.Requests(), 3)
	require.Len(t, result.Listings, 1)
}

func TestPaginatorSkipsFailedPages(t *testing.T) {
	site := testSite("dealer", 3)
	r := &fakeRenderer{
		pages: map[string]models.RenderedPage{
			site.PageURL(1): {HTML: carsHTML(2)},
			site.PageURL(3): {HTML: carsHTML(1), ContainerTimedOut: true},
		},
		errs: map[string]error{
			site.PageURL(2): &RenderError{URL: site.PageURL(2), Err: errors.New("net::ERR_NAME_NOT_RESOLVED")},
		},
	}
	p, _ := newTestPaginator(r, testConfig())

	result := p.Run(context.Background(), site)

	require.Equal(t, models.TerminationCapped, result.Termination)
	require.Len(t, result.Pages, 3)
	require.Equal(t, models.PageRenderFailed, result.Pages[1].Status)
	require.Equal(t, models.ErrorRender, Classify(result.Pages[1].Err))
	require.True(t, result.Pages[2].TimedOut)
	require.Equal(t, models.PageOK, result.Pages[2].Status)
	require.Len(t, result.Listings, 3)
	require.Equal(t, 1, result.FailedPages())
}

func TestPaginatorWrapsPlainRenderErrors(t *testing.T) {
	site := testSite("dealer", 1)
	r := &fakeRenderer{fallback: errors.New("chrome not found")}
	p, _ := newTestPaginator(r, testConfig())

	result := p.Run(context.Background(), site)

	var re *RenderError
	require.ErrorAs(t, result.Pages[0].Err, &re)
	require.Equal(t, site.PageURL(1), re.URL)
}

func TestPaginatorAbortsAfterConsecutiveFailures(t *testing.T) {
	site := testSite("dealer", 10)
	r := &fakeRenderer{fallback: errors.New("connection refused")}
	cfg := testConfig()
	cfg.MaxConsecutiveFailures = 3
	p, _ := newTestPaginator(r, cfg)

	result := p.Run(context.Background(), site)

	require.Equal(t, models.TerminationAborted, result.Termination)
	require.Len(t, r.Requests(), 3)
	require.ErrorContains(t, result.Err, "connection refused")
	require.True(t, result.Termination.Failed())
}

func TestPaginatorStopsOnDeadline(t *testing.T) {
	site := testSite("dealer", 5)
	r := &fakeRenderer{pages: map[string]models.RenderedPage{
		site.PageURL(1): {HTML: carsHTML(2)},
	}}
	p, _ := newTestPaginator(r, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	p.pause = func(context.Context) error {
		cancel()
		return context.Canceled
	}

	result := p.Run(ctx, site)

	require.Equal(t, models.TerminationDeadline, result.Termination)
	require.ErrorIs(t, result.Err, context.Canceled)
	require.Len(t, r.Requests(), 1)
	require.Len(t, result.Listings, 2)
}

func TestPaginatorPagesIsLazy(t *testing.T) {
	site := testSite("dealer", 5)
	r := &fakeRenderer{pages: map[string]models.RenderedPage{
		site.PageURL(1): {HTML: carsHTML(1)},
		site.PageURL(2): {HTML: carsHTML(1)},
	}}
	p, _ := newTestPaginator(r, testConfig())

	for page := range p.Pages(context.Background(), site) {
		require.Equal(t, 1, page.PageNumber)
		break
	}
	require.Equal(t, []string{site.PageURL(1)}, r.Requests())
}

package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"car-scraper/config"
	"car-scraper/utils"

	"github.com/stretchr/testify/require"
)

// lazyFeed appends two cars per scroll until three batches have loaded.
const lazyFeed = `<!DOCTYPE html>
<html><body style="margin:0">
<div id="feed">
  <article class="car" style="height:900px"><h2 class="title">2021 Ferrari 488</h2><span class="price">£1</span></article>
  <article class="car" style="height:900px"><h2 class="title">2019 Lamborghini Urus</h2><span class="price">£2</span></article>
  <article class="car" style="height:900px"><h2 class="title">2020 McLaren 720S</h2><span class="price">£3</span></article>
</div>
<script>
  var batches = 0;
  window.addEventListener('scroll', function () {
    if (batches >= 3) { return; }
    batches++;
    var feed = document.getElementById('feed');
    for (var i = 0; i < 2; i++) {
      var el = document.createElement('article');
      el.className = 'car';
      el.style.height = '900px';
      el.innerHTML = '<h2 class="title">2022 Porsche ' + batches + '-' + i + '</h2><span class="price">£9</span>';
      feed.appendChild(el);
    }
  });
</script>
</body></html>`

func blockingSleep(ctx context.Context, _ time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestSettleKeepsPageWhenScrollBudgetRunsOut(t *testing.T) {
	r := NewBrowserRenderer(config.DefaultConfig(), utils.Discard())
	r.sleep = blockingSleep
	page := &fakeScrollPage{heights: []int64{1000, 2000, 3000}}

	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()

	require.NoError(t, r.settle(ctx, page, utils.Discard()))
	require.NoError(t, ctx.Err())
	require.Equal(t, 1, page.scrolls)
}

func TestSettleFailsWhenPageContextEnds(t *testing.T) {
	r := NewBrowserRenderer(config.DefaultConfig(), utils.Discard())
	r.sleep = blockingSleep
	page := &fakeScrollPage{heights: []int64{1000, 2000}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, r.settle(ctx, page, utils.Discard()), context.Canceled)
}

func TestSettleWithoutDeadline(t *testing.T) {
	r := NewBrowserRenderer(config.DefaultConfig(), utils.Discard())
	sleep := &recordingSleep{}
	r.sleep = sleep.sleep
	page := &fakeScrollPage{heights: []int64{1000, 2000, 2000}}

	require.NoError(t, r.settle(context.Background(), page, utils.Discard()))
	require.Equal(t, 2, page.scrolls)
}

func requireBrowser(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests skipped in short mode")
	}
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("no chrome binary found")
	return ""
}

func browserConfig(chromePath string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.ChromePath = chromePath
	cfg.RequestTimeout = 45 * time.Second
	cfg.SettleInterval = 300 * time.Millisecond
	cfg.MaxScrolls = 10
	cfg.MaxRetries = 1
	return cfg
}

func TestBrowserRendererLoadsLazyContent(t *testing.T) {
	cfg := browserConfig(requireBrowser(t))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, lazyFeed)
	}))
	defer srv.Close()

	r := NewBrowserRenderer(cfg, utils.Discard())
	page, err := r.Render(context.Background(), srv.URL, "article.car", 10*time.Second)
	require.NoError(t, err)
	require.False(t, page.ContainerTimedOut)
	require.Equal(t, srv.URL, page.URL)
	require.Equal(t, 9, strings.Count(page.HTML, `class="car"`))
}

func TestBrowserRendererContainerTimeout(t *testing.T) {
	cfg := browserConfig(requireBrowser(t))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><p>No results</p></body></html>`)
	}))
	defer srv.Close()

	r := NewBrowserRenderer(cfg, utils.Discard())
	page, err := r.Render(context.Background(), srv.URL, "article.car", 500*time.Millisecond)
	require.NoError(t, err)
	require.True(t, page.ContainerTimedOut)
	require.Contains(t, page.HTML, "No results")
}

func TestBrowserRendererNavigationFailure(t *testing.T) {
	cfg := browserConfig(requireBrowser(t))

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := NewBrowserRenderer(cfg, utils.Discard())
	_, err := r.Render(context.Background(), url, "article.car", time.Second)

	var re *RenderError
	require.ErrorAs(t, err, &re)
	require.Equal(t, url, re.URL)
}

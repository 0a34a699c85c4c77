package scraper

import (
	"context"
	"fmt"
	"time"
)

// scrollPage is the part of a browser tab the settle loop needs.
type scrollPage interface {
	ScrollHeight(ctx context.Context) (int64, error)
	ScrollToBottom(ctx context.Context) error
}

type sleepFunc func(ctx context.Context, d time.Duration) error

// settleScroll scrolls until the document height stops growing.
//
// Heights are sampled once per settle interval. The loop ends when two
// consecutive samples are equal, so the first sample never ends it. A
// positive maxScrolls bounds endless feeds. It returns the number of
// scrolls performed and whether the height reached a fixed point.
func settleScroll(ctx context.Context, page scrollPage, interval time.Duration, maxScrolls int, sleep sleepFunc) (int, bool, error) {
	var previous int64
	scrolls := 0

	for {
		height, err := page.ScrollHeight(ctx)
		if err != nil {
			return scrolls, false, fmt.Errorf("read scroll height: %w", err)
		}
		if scrolls > 0 && height == previous {
			return scrolls, true, nil
		}
		if maxScrolls > 0 && scrolls >= maxScrolls {
			return scrolls, false, nil
		}

		if err := page.ScrollToBottom(ctx); err != nil {
			return scrolls, false, fmt.Errorf("scroll: %w", err)
		}
		previous = height
		scrolls++

		if err := sleep(ctx, interval); err != nil {
			return scrolls, false, err
		}
	}
}

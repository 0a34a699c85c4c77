package scraper

import (
	"context"
	"errors"
	"fmt"

	"car-scraper/models"
)

// ErrRenderTimeout marks a page whose listing container never appeared.
// It is a warning: the page is still extracted from whatever HTML loaded.
var ErrRenderTimeout = errors.New("listing container did not appear before timeout")

// RenderError is a navigation failure (network, DNS, TLS, browser launch).
type RenderError struct {
	URL string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.URL, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// ExtractionError means a rendered page could not be parsed.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// SiteFailure is an unexpected condition that stopped a whole site.
type SiteFailure struct {
	Source string
	Err    error
}

func (e *SiteFailure) Error() string {
	return fmt.Sprintf("site %s failed: %v", e.Source, e.Err)
}

func (e *SiteFailure) Unwrap() error {
	return e.Err
}

// Classify maps an error to its kind for logs and reports.
func Classify(err error) models.ErrorKind {
	if err == nil {
		return models.ErrorUnknown
	}

	var (
		re *RenderError
		ee *ExtractionError
		sf *SiteFailure
	)
	switch {
	case errors.Is(err, ErrRenderTimeout):
		return models.ErrorRenderTimeout
	case errors.As(err, &sf):
		return models.ErrorSite
	case errors.As(err, &re):
		return models.ErrorRender
	case errors.As(err, &ee):
		return models.ErrorExtraction
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return models.ErrorDeadline
	}
	return models.ErrorUnknown
}

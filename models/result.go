package models

// RenderedPage is the final DOM of one listing page.
type RenderedPage struct {
	URL  string
	HTML string
	// ContainerTimedOut is set when the listing container never appeared
	// and HTML holds whatever the page had at that point.
	ContainerTimedOut bool
}

type PageStatus string

const (
	PageOK            PageStatus = "ok"
	PageEmpty         PageStatus = "empty"
	PageRenderFailed  PageStatus = "render_failed"
	PageExtractFailed PageStatus = "extract_failed"
)

type PageResult struct {
	PageNumber int
	URL        string
	Status     PageStatus
	TimedOut   bool
	Listings   []RawListing
	Err        error
}

// Termination tells why a site's pagination stopped.
type Termination string

const (
	TerminationExhausted Termination = "exhausted"
	TerminationCapped    Termination = "capped"
	TerminationAborted   Termination = "aborted"
	TerminationDeadline  Termination = "deadline"
	TerminationFailed    Termination = "failed"
)

// Failed reports whether the site stopped abnormally.
func (t Termination) Failed() bool {
	return t != TerminationExhausted && t != TerminationCapped
}

type SiteResult struct {
	Source      string
	Pages       []PageResult
	Listings    []RawListing
	Termination Termination
	Err         error
}

// FailedPages counts pages that could not be rendered or extracted.
func (r SiteResult) FailedPages() int {
	n := 0
	for _, p := range r.Pages {
		if p.Status == PageRenderFailed || p.Status == PageExtractFailed {
			n++
		}
	}
	return n
}

type ErrorKind string

const (
	ErrorRenderTimeout ErrorKind = "render_timeout"
	ErrorRender        ErrorKind = "render"
	ErrorExtraction    ErrorKind = "extraction"
	ErrorSite          ErrorKind = "site"
	ErrorDeadline      ErrorKind = "deadline"
	ErrorUnknown       ErrorKind = "unknown"
)

package scraper

import (
	"iter"
	"regexp"
	"strings"

	"car-scraper/models"

	"github.com/PuerkitoBio/goquery"
)

var innerWhitespace = regexp.MustCompile(`\s+`)

// Extract parses page once and yields one RawListing per listing container.
//
// Field locators are resolved inside each container only. Containers
// without a title or a price node are skipped; a missing mileage node
// gives empty mileage text. The returned sequence is bound to the parsed
// document and should be consumed once.
func Extract(page models.RenderedPage, site models.SiteConfig) (iter.Seq[models.RawListing], error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, &ExtractionError{URL: page.URL, Err: err}
	}

	containers := doc.Find(site.Container)

	return func(yield func(models.RawListing) bool) {
		for i := range containers.Nodes {
			raw, ok := extractListing(containers.Eq(i), site)
			if !ok {
				continue
			}
			if !yield(raw) {
				return
			}
		}
	}, nil
}

func extractListing(container *goquery.Selection, site models.SiteConfig) (models.RawListing, bool) {
	title, ok := fieldText(container, site.Title)
	if !ok {
		return models.RawListing{}, false
	}
	price, ok := fieldText(container, site.Price)
	if !ok {
		return models.RawListing{}, false
	}
	mileage, _ := fieldText(container, site.Mileage)

	if site.TitleDelimiter != "" {
		title, _, _ = strings.Cut(title, site.TitleDelimiter)
		title = strings.TrimSpace(title)
	}

	return models.RawListing{
		Source:      site.Source,
		TitleText:   title,
		PriceText:   price,
		MileageText: mileage,
	}, true
}

// fieldText returns the collapsed text of the first node matching locator
// within container, and whether such a node exists.
func fieldText(container *goquery.Selection, locator string) (string, bool) {
	if locator == "" {
		return "", false
	}

	sel := container
	if locator != models.SelfLocator {
		sel = container.Find(locator).First()
	}
	if sel.Length() == 0 {
		return "", false
	}
	return cleanText(sel.Text()), true
}

func cleanText(s string) string {
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}

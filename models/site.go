package models

import (
	"strconv"
	"strings"
)

// PagePlaceholder is replaced by the 1-based page number in SiteConfig.URLTemplate.
const PagePlaceholder = "{page}"

// SelfLocator makes a field locator select the listing container itself.
const SelfLocator = "."

// SiteConfig describes how to scrape one listing website.
// Values are loaded once and never mutated afterwards.
type SiteConfig struct {
	Source         string `yaml:"source" json:"source"`
	URLTemplate    string `yaml:"url_template" json:"url_template"`
	Container      string `yaml:"container" json:"container"`
	Title          string `yaml:"title" json:"title"`
	Price          string `yaml:"price" json:"price"`
	Mileage        string `yaml:"mileage" json:"mileage"`
	TitleDelimiter string `yaml:"title_delimiter" json:"title_delimiter"`
	MaxPages       int    `yaml:"max_pages" json:"max_pages"`
	Enabled        *bool  `yaml:"enabled" json:"enabled"`
}

// PageURL builds the URL of the given page.
func (s SiteConfig) PageURL(page int) string {
	return strings.ReplaceAll(s.URLTemplate, PagePlaceholder, strconv.Itoa(page))
}

// IsEnabled reports whether the site should be scraped. Sites are enabled
// unless explicitly disabled.
func (s SiteConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"car-scraper/models"

	"github.com/andybalholm/cascadia"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoSites             = errors.New("at least one site is required")
	ErrNoEnabledSites      = errors.New("at least one site must be enabled")
	ErrMissingURLTemplate  = errors.New("url_template is required")
	ErrMissingPlaceholder  = errors.New("url_template must contain " + models.PagePlaceholder)
	ErrMissingContainer    = errors.New("container locator is required")
	ErrMissingTitle        = errors.New("title locator is required")
	ErrMissingPrice        = errors.New("price locator is required")
	ErrInvalidMaxPages     = errors.New("max_pages must be at least 1")
	ErrInvalidLocator      = errors.New("locator is not a valid CSS selector")
	ErrUnsupportedSiteFile = errors.New("site file must be .yaml, .yml, .json or .json5")
)

// SitesFile is the on-disk layout: a mapping from source name to its site config.
type SitesFile struct {
	Sites map[string]models.SiteConfig `yaml:"sites" json:"sites"`
}

// LoadSites reads all site configs from a YAML or JSON5 file, validates them
// and returns them sorted by source name. Disabled sites are included; use
// EnabledSites to filter.
func LoadSites(path string) ([]models.SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites file: %w", err)
	}
	return ParseSites(data, filepath.Ext(path))
}

// ParseSites decodes site configs; ext selects the format.
func ParseSites(data []byte, ext string) ([]models.SiteConfig, error) {
	var file SitesFile

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json", ".json5":
		if err := json5.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse JSON5: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: got %q", ErrUnsupportedSiteFile, ext)
	}

	if len(file.Sites) == 0 {
		return nil, ErrNoSites
	}

	names := make([]string, 0, len(file.Sites))
	for name := range file.Sites {
		names = append(names, name)
	}
	sort.Strings(names)

	sites := make([]models.SiteConfig, 0, len(names))
	for _, name := range names {
		site := file.Sites[name]
		if site.Source == "" {
			site.Source = name
		}
		if err := ValidateSite(site); err != nil {
			return nil, fmt.Errorf("site %q: %w", name, err)
		}
		sites = append(sites, site)
	}

	if len(EnabledSites(sites)) == 0 {
		return nil, ErrNoEnabledSites
	}
	return sites, nil
}

func ValidateSite(site models.SiteConfig) error {
	if site.URLTemplate == "" {
		return ErrMissingURLTemplate
	}
	if !strings.Contains(site.URLTemplate, models.PagePlaceholder) {
		return ErrMissingPlaceholder
	}
	if site.Container == "" {
		return ErrMissingContainer
	}
	if site.Title == "" {
		return ErrMissingTitle
	}
	if site.Price == "" {
		return ErrMissingPrice
	}
	if site.MaxPages < 1 {
		return ErrInvalidMaxPages
	}

	locators := map[string]string{
		"container": site.Container,
		"title":     site.Title,
		"price":     site.Price,
		"mileage":   site.Mileage,
	}
	for name, loc := range locators {
		if loc == "" || (name != "container" && loc == models.SelfLocator) {
			continue
		}
		if _, err := cascadia.Compile(loc); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidLocator, name, loc, err)
		}
	}
	return nil
}

// EnabledSites returns only enabled sites, order preserved.
func EnabledSites(sites []models.SiteConfig) []models.SiteConfig {
	var enabled []models.SiteConfig
	for _, s := range sites {
		if s.IsEnabled() {
			enabled = append(enabled, s)
		}
	}
	return enabled
}

// SelectSites keeps the sites whose source is in names. An empty names list keeps all.
func SelectSites(sites []models.SiteConfig, names []string) ([]models.SiteConfig, error) {
	if len(names) == 0 {
		return sites, nil
	}

	bySource := make(map[string]models.SiteConfig, len(sites))
	for _, s := range sites {
		bySource[s.Source] = s
	}

	selected := make([]models.SiteConfig, 0, len(names))
	for _, n := range names {
		s, ok := bySource[n]
		if !ok {
			return nil, fmt.Errorf("unknown site %q", n)
		}
		selected = append(selected, s)
	}
	return selected, nil
}

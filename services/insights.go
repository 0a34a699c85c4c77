package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"car-scraper/models"

	"github.com/jedib0t/go-pretty/v6/table"
)

type Report struct {
	TotalListings  int
	PricedListings int
	AveragePrice   float64
	MinPrice       int64
	MaxPrice       int64
	MostExpensive  models.NormalizedListing
	LowConfidence  int
	ListingsBySrc  map[string]int
	ListingsByMake map[string]int
	Sites          []SiteSummary
}

type SiteSummary struct {
	Source      string
	Pages       int
	FailedPages int
	Listings    int
	Termination models.Termination
	Err         string
}

// GenerateReport computes market insights for the normalized table and a
// per-site outcome summary.
func GenerateReport(listings []models.NormalizedListing, sites []models.SiteResult) Report {
	report := Report{
		TotalListings:  len(listings),
		ListingsBySrc:  make(map[string]int),
		ListingsByMake: make(map[string]int),
	}

	var priceSum int64
	for _, l := range listings {
		report.ListingsBySrc[l.Source]++
		report.ListingsByMake[normalizeMake(l.Make)]++
		if l.Confidence == models.ConfidenceLow {
			report.LowConfidence++
		}

		if !l.Price.Known {
			continue
		}
		if report.PricedListings == 0 || l.Price.Value < report.MinPrice {
			report.MinPrice = l.Price.Value
		}
		if report.PricedListings == 0 || l.Price.Value > report.MaxPrice {
			report.MaxPrice = l.Price.Value
			report.MostExpensive = l
		}
		priceSum += l.Price.Value
		report.PricedListings++
	}

	if report.PricedListings > 0 {
		report.AveragePrice = float64(priceSum) / float64(report.PricedListings)
	}

	for _, s := range sites {
		sum := SiteSummary{
			Source:      s.Source,
			Pages:       len(s.Pages),
			FailedPages: s.FailedPages(),
			Listings:    len(s.Listings),
			Termination: s.Termination,
		}
		if s.Err != nil {
			sum.Err = s.Err.Error()
		}
		report.Sites = append(report.Sites, sum)
	}

	return report
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func PrintReport(w io.Writer, report Report) {
	t := newTable(w)
	t.SetTitle("Vehicle Listing Insights")
	t.AppendRows([]table.Row{
		{"Total listings", report.TotalListings},
		{"Listings with price", report.PricedListings},
		{"Average price", fmt.Sprintf("%.2f", report.AveragePrice)},
		{"Minimum price", report.MinPrice},
		{"Maximum price", report.MaxPrice},
		{"Low-confidence titles", report.LowConfidence},
	})
	t.Render()

	if report.MostExpensive.Title != "" {
		fmt.Fprintln(w)
		t = newTable(w)
		t.SetTitle("Most Expensive")
		t.AppendRows([]table.Row{
			{"Title", truncateText(report.MostExpensive.Title, 48)},
			{"Source", report.MostExpensive.Source},
			{"Price", report.MostExpensive.Price.String()},
			{"Year", report.MostExpensive.Year.String()},
		})
		t.Render()
	}

	fmt.Fprintln(w)
	t = newTable(w)
	t.AppendHeader(table.Row{"Source", "Listings"})
	for _, src := range sortedKeys(report.ListingsBySrc) {
		t.AppendRow(table.Row{src, report.ListingsBySrc[src]})
	}
	t.Render()

	fmt.Fprintln(w)
	t = newTable(w)
	t.AppendHeader(table.Row{"Make", "Listings"})
	for _, mk := range sortedKeys(report.ListingsByMake) {
		t.AppendRow(table.Row{mk, report.ListingsByMake[mk]})
	}
	t.Render()

	if len(report.Sites) > 0 {
		fmt.Fprintln(w)
		t = newTable(w)
		t.AppendHeader(table.Row{"Site", "Pages", "Failed", "Listings", "Stopped", "Error"})
		for _, s := range report.Sites {
			t.AppendRow(table.Row{s.Source, s.Pages, s.FailedPages, s.Listings, s.Termination, truncateText(s.Err, 60)})
		}
		t.Render()
	}
}

func normalizeMake(mk string) string {
	mk = strings.TrimSpace(mk)
	if mk == "" {
		return "Unknown"
	}
	return mk
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"car-scraper/models"
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Normalize turns the text fields of a raw listing into typed fields.
// It never fails: anything that cannot be parsed becomes unknown.
//
// Titles are expected as "<Make> <Model...>" or "<Year> <Make> <Model...>".
// With a year, make is the token right after the year token and model is
// everything after make. Other layouts are parsed the same way but flagged
// with low confidence instead of being guessed at.
func Normalize(raw models.RawListing) models.NormalizedListing {
	title := strings.TrimSpace(raw.TitleText)

	out := models.NormalizedListing{
		Source:  raw.Source,
		Title:   title,
		Price:   ParseInt(raw.PriceText),
		Mileage: ParseInt(raw.MileageText),
	}
	out.Year, out.Make, out.Model, out.Confidence = splitTitle(title)
	return out
}

func NormalizeAll(raws []models.RawListing) []models.NormalizedListing {
	out := make([]models.NormalizedListing, 0, len(raws))
	for _, r := range raws {
		out = append(out, Normalize(r))
	}
	return out
}

func splitTitle(title string) (models.Int, string, string, models.Confidence) {
	tokens := strings.Fields(title)
	if len(tokens) == 0 {
		return models.Int{}, "", "", models.ConfidenceLow
	}

	loc := yearPattern.FindStringIndex(title)
	if loc == nil {
		return models.Int{}, tokens[0], strings.Join(tokens[1:], " "), models.ConfidenceHigh
	}

	v, _ := strconv.ParseInt(title[loc[0]:loc[1]], 10, 64)
	year := models.KnownInt(v)
	idx := tokenIndex(title, loc[0])

	after := tokens[idx+1:]
	if len(after) > 0 {
		conf := models.ConfidenceLow
		if idx == 0 {
			conf = models.ConfidenceHigh
		}
		return year, after[0], strings.Join(after[1:], " "), conf
	}

	// Year is the last token: fall back to the tokens before it.
	before := tokens[:idx]
	if len(before) == 0 {
		return year, "", title, models.ConfidenceLow
	}
	return year, before[0], strings.Join(before[1:], " "), models.ConfidenceLow
}

// tokenIndex returns the index of the whitespace-separated token of s
// that contains byte offset off.
func tokenIndex(s string, off int) int {
	prefix := s[:off]
	idx := len(strings.Fields(prefix))
	if prefix != "" {
		last, _ := utf8.DecodeLastRuneInString(prefix)
		if !unicode.IsSpace(last) {
			// off is inside a token that already started in prefix.
			idx--
		}
	}
	return idx
}

// ParseInt keeps only the digits of s, so currency symbols, units and
// thousands separators do not matter. No digits, or a value that does not
// fit in int64, gives unknown.
func ParseInt(s string) models.Int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return models.Int{}
	}

	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return models.Int{}
	}
	return models.KnownInt(v)
}

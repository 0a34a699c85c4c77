package models

import "strconv"

// RawListing is one matched listing container, fields still as page text.
type RawListing struct {
	Source      string
	TitleText   string
	PriceText   string
	MileageText string
}

type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

type NormalizedListing struct {
	Source     string
	Title      string
	Year       Int
	Make       string
	Model      string
	Price      Int
	Mileage    Int
	Confidence Confidence
}

// Int is a non-negative integer that may be unknown.
// The zero value is unknown.
type Int struct {
	Value int64
	Known bool
}

func KnownInt(v int64) Int {
	return Int{Value: v, Known: true}
}

// String returns "" for unknown values.
func (i Int) String() string {
	if !i.Known {
		return ""
	}
	return strconv.FormatInt(i.Value, 10)
}

// Ptr returns nil for unknown values, which database drivers store as NULL.
func (i Int) Ptr() *int64 {
	if !i.Known {
		return nil
	}
	v := i.Value
	return &v
}

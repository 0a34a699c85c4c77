package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"car-scraper/models"
)

// CSVHeader is the column order of the flat listing file.
var CSVHeader = []string{"source", "year", "make", "model", "price", "mileage"}

// CSVWriter saves listings to a CSV file, one row per listing.
type CSVWriter struct {
	path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

func (w *CSVWriter) Name() string { return "csv:" + w.path }

// Write replaces the file with the given listings.
// Creates the output directory if it does not exist.
func (w *CSVWriter) Write(_ context.Context, listings []models.NormalizedListing) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("could not create output dir: %w", err)
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer file.Close()

	if err := WriteCSV(file, listings); err != nil {
		return err
	}
	return file.Close()
}

// WriteCSV writes the header and one row per listing. Unknown values are empty cells.
func WriteCSV(out io.Writer, listings []models.NormalizedListing) error {
	// csv.Writer handles quoting of commas and quotes inside titles
	writer := csv.NewWriter(out)

	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	for _, l := range listings {
		row := []string{
			l.Source,
			l.Year.String(),
			l.Make,
			l.Model,
			l.Price.String(),
			l.Mileage.String(),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("csv write error: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	return nil
}

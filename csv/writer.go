// Package csv persists listings as a flat CSV table with a fixed column
// order.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/vhoang/nhatot"
)

// Columns is the fixed output column order. Every row carries every
// column; missing values are empty strings.
var Columns = []string{
	"title", "price", "area", "location", "description",
	"url", "image_url", "posted_date", "property_type",
	"bedrooms", "bathrooms", "page_number", "item_index", "scraped_at",
}

// DefaultFilename derives the output name from a timestamp,
// e.g. real_estate_data_20250131_154210.csv.
func DefaultFilename(now time.Time) string {
	return "real_estate_data_" + now.Format("20060102_150405") + ".csv"
}

// Ensure Writer implements nhatot.ListingWriter at compile time.
var _ nhatot.ListingWriter = (*Writer)(nil)

// Writer writes listings to a CSV file.
type Writer struct {
	path string
}

// NewWriter creates a Writer targeting the given path. An empty path picks
// a timestamp-derived default name in the working directory.
func NewWriter(path string) *Writer {
	if path == "" {
		path = DefaultFilename(time.Now())
	}
	return &Writer{path: path}
}

// Path returns the output path.
func (w *Writer) Path() string {
	return w.path
}

// WriteListings writes the header and one row per listing, replacing any
// existing file at the path.
func (w *Writer) WriteListings(ctx context.Context, listings []*nhatot.Listing) error {
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", w.path, err)
	}

	if err := writeRows(ctx, f, listings); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeRows(ctx context.Context, f *os.File, listings []*nhatot.Listing) error {
	cw := stdcsv.NewWriter(f)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, l := range listings {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write(row(l)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// row orders a listing's fields per Columns.
func row(l *nhatot.Listing) []string {
	return []string{
		l.Title,
		l.Price,
		l.Area,
		l.Location,
		l.Description,
		l.URL,
		l.ImageURL,
		l.PostedDate,
		l.PropertyType,
		l.Bedrooms,
		l.Bathrooms,
		fmt.Sprintf("%d", l.PageNumber),
		fmt.Sprintf("%d", l.ItemIndex),
		l.ExtractedAt.Format(time.RFC3339),
	}
}

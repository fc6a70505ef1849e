package nhatot

import (
	"context"
	"time"
)

// Listing represents one property advertisement extracted from a rendered
// listing page. A Listing is created once, at extraction time, and is
// immutable afterwards.
type Listing struct {
	// Content fields. Title is the only required field; a fragment that
	// yields no title produces no Listing at all.
	Title        string `json:"title"`
	PropertyType string `json:"propertyType"`
	Bedrooms     string `json:"bedrooms"`
	Bathrooms    string `json:"bathrooms"`
	Direction    string `json:"direction"`
	Description  string `json:"description"`

	// Quantitative fields. Price is the raw display string; currency and
	// unit resolution happens downstream.
	Price     string `json:"price"`
	PriceUnit string `json:"priceUnit"`
	Area      string `json:"area"`

	// Location fields. PostedDate stays free text; the upstream format is
	// locale-specific and ambiguous.
	Location   string `json:"location"`
	PostedDate string `json:"postedDate"`

	// Identity fields. URL is always absolute when present.
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl"`

	// Provenance fields, assigned at extraction time and never renumbered.
	PageNumber  int       `json:"pageNumber"`
	ItemIndex   int       `json:"itemIndex"`
	ExtractedAt time.Time `json:"extractedAt"`
}

// Validate returns an error if the listing contains invalid fields.
func (l *Listing) Validate() error {
	if l.Title == "" {
		return Errorf(EINVALID, "listing title required")
	}
	if l.PageNumber < 1 {
		return Errorf(EINVALID, "listing page number must be positive")
	}
	if l.ItemIndex < 1 {
		return Errorf(EINVALID, "listing item index must be positive")
	}
	return nil
}

// PageExtractor converts one rendered page's markup into the ordered
// sequence of listings found on it. A fragment that fails extraction is
// skipped; extraction never fails as a whole because of one fragment.
type PageExtractor interface {
	ExtractPage(html string, pageNumber int) []*Listing
}

// ListingWriter persists an ordered batch of listings.
type ListingWriter interface {
	WriteListings(ctx context.Context, listings []*Listing) error
}

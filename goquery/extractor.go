package goquery

import (
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/vhoang/nhatot"
)

// Ensure Extractor implements nhatot.PageExtractor at compile time.
var _ nhatot.PageExtractor = (*Extractor)(nil)

// Extractor converts one page's markup into listings: container resolution
// via the probe cascade, then per-fragment record extraction.
type Extractor struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger for extraction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithNow sets the clock used for the extraction timestamp.
// This is useful for testing with a fixed time.
func WithNow(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractPage parses the markup, resolves the item fragments and extracts
// one listing per fragment. Item indexes are 1-based and count every
// fragment, so a dropped no-title fragment leaves a gap. A fragment that
// panics during extraction is skipped; it never aborts the rest of the
// page.
func (e *Extractor) ExtractPage(html string, pageNumber int) []*nhatot.Listing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.logger.Warn("page parse failed", "page", pageNumber, "err", err)
		return nil
	}

	items, strategy := Resolve(doc)
	if len(items) == 0 {
		e.logger.Debug("no item fragments resolved", "page", pageNumber)
		return nil
	}

	extractedAt := e.now()
	var listings []*nhatot.Listing
	var dropped int
	for i, item := range items {
		listing := e.extractItem(item, pageNumber, i+1, extractedAt)
		if listing == nil || listing.Title == "" {
			dropped++
			continue
		}
		listings = append(listings, listing)
	}

	e.logger.Info("page extracted",
		"page", pageNumber,
		"strategy", strategy,
		"fragments", len(items),
		"listings", len(listings),
		"dropped", dropped,
	)
	return listings
}

// extractItem isolates one fragment's extraction so that a panic degrades
// to a skipped fragment.
func (e *Extractor) extractItem(item *goquery.Selection, pageNumber, itemIndex int, extractedAt time.Time) (listing *nhatot.Listing) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("fragment extraction failed",
				"page", pageNumber,
				"item", itemIndex,
				"panic", r,
			)
			listing = nil
		}
	}()
	return extractRecord(item, pageNumber, itemIndex, extractedAt)
}

package sqlite

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/vhoang/nhatot"
)

// Compile-time interface verification.
var _ nhatot.ListingWriter = (*ListingService)(nil)

// ListingService implements nhatot.ListingWriter using SQLite. Each batch
// is written in one transaction and tagged with a fresh run id; listings
// are never deduplicated, the url_hash column only gives consumers a cheap
// join key for their own dedup queries.
type ListingService struct {
	db *DB
}

// NewListingService creates a new ListingService.
func NewListingService(db *DB) *ListingService {
	return &ListingService{db: db}
}

// hashURL computes xxHash of a URL and returns a hex string.
func hashURL(url string) string {
	if url == "" {
		return ""
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64String(url))
	return hex.EncodeToString(b[:])
}

// WriteListings inserts the batch, validating each listing first.
func (s *ListingService) WriteListings(ctx context.Context, listings []*nhatot.Listing) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	runID := uuid.New().String()
	for _, l := range listings {
		if err := l.Validate(); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO listings (
				id, run_id, url_hash, title, price, price_unit, area,
				location, description, url, image_url, posted_date,
				property_type, bedrooms, bathrooms, direction,
				page_number, item_index, extracted_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), runID, hashURL(l.URL), l.Title, l.Price, l.PriceUnit, l.Area,
			l.Location, l.Description, l.URL, l.ImageURL, l.PostedDate,
			l.PropertyType, l.Bedrooms, l.Bathrooms, l.Direction,
			l.PageNumber, l.ItemIndex, l.ExtractedAt.Format(time.RFC3339))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CountListings returns the number of stored listings, optionally filtered
// by run id.
func (s *ListingService) CountListings(ctx context.Context, runID string) (int, error) {
	var n int
	var err error
	if runID == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings WHERE run_id = ?`, runID).Scan(&n)
	}
	return n, err
}

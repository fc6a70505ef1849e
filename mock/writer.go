package mock

import (
	"context"

	"github.com/vhoang/nhatot"
)

var _ nhatot.ListingWriter = (*ListingWriter)(nil)

// ListingWriter is a mock implementation of nhatot.ListingWriter.
type ListingWriter struct {
	WriteListingsFn func(ctx context.Context, listings []*nhatot.Listing) error
}

func (w *ListingWriter) WriteListings(ctx context.Context, listings []*nhatot.Listing) error {
	return w.WriteListingsFn(ctx, listings)
}

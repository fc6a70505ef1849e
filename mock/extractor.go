package mock

import "github.com/vhoang/nhatot"

var _ nhatot.PageExtractor = (*PageExtractor)(nil)

// PageExtractor is a mock implementation of nhatot.PageExtractor.
type PageExtractor struct {
	ExtractPageFn func(html string, pageNumber int) []*nhatot.Listing
}

func (e *PageExtractor) ExtractPage(html string, pageNumber int) []*nhatot.Listing {
	return e.ExtractPageFn(html, pageNumber)
}

package mock

import (
	"context"

	"github.com/vhoang/nhatot"
)

var _ nhatot.Browser = (*Browser)(nil)

// Browser is a mock implementation of nhatot.Browser.
type Browser struct {
	NewPageFn func(ctx context.Context) (nhatot.Page, error)
	CloseFn   func() error
}

func (b *Browser) NewPage(ctx context.Context) (nhatot.Page, error) {
	return b.NewPageFn(ctx)
}

func (b *Browser) Close() error {
	if b.CloseFn == nil {
		return nil
	}
	return b.CloseFn()
}

var _ nhatot.Page = (*Page)(nil)

// Page is a mock implementation of nhatot.Page.
type Page struct {
	NavigateFn func(ctx context.Context, url string) error
	HTMLFn     func(ctx context.Context) (string, error)
	CountFn    func(ctx context.Context, selector string) (int, error)
	CloseFn    func() error
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.NavigateFn(ctx, url)
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.HTMLFn(ctx)
}

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	return p.CountFn(ctx, selector)
}

func (p *Page) Close() error {
	if p.CloseFn == nil {
		return nil
	}
	return p.CloseFn()
}

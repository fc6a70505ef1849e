package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/vhoang/nhatot"
)

// Ensure LoggingBrowser implements nhatot.Browser.
var _ nhatot.Browser = (*LoggingBrowser)(nil)

// LoggingBrowser wraps a Browser with debug logging.
type LoggingBrowser struct {
	next   nhatot.Browser
	logger *slog.Logger
}

// NewLoggingBrowser creates a new LoggingBrowser.
func NewLoggingBrowser(next nhatot.Browser, logger *slog.Logger) *LoggingBrowser {
	return &LoggingBrowser{next: next, logger: logger}
}

// NewPage delegates to the wrapped browser and wraps the page with logging.
func (b *LoggingBrowser) NewPage(ctx context.Context) (nhatot.Page, error) {
	page, err := b.next.NewPage(ctx)
	if err != nil {
		b.logger.Error("new page", "err", err)
		return nil, err
	}
	b.logger.Debug("new page")
	return &LoggingPage{next: page, logger: b.logger}, nil
}

// Close delegates to the wrapped browser.
func (b *LoggingBrowser) Close() error {
	return b.next.Close()
}

// Ensure LoggingPage implements nhatot.Page.
var _ nhatot.Page = (*LoggingPage)(nil)

// LoggingPage wraps a Page with debug logging of navigations and probes.
type LoggingPage struct {
	next   nhatot.Page
	logger *slog.Logger
}

// Navigate logs the URL and duration and delegates to the wrapped page.
func (p *LoggingPage) Navigate(ctx context.Context, url string) (err error) {
	defer func(begin time.Time) {
		p.logger.Info("navigate",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Navigate(ctx, url)
}

// HTML logs the markup size and delegates to the wrapped page.
func (p *LoggingPage) HTML(ctx context.Context) (html string, err error) {
	defer func(begin time.Time) {
		p.logger.Debug("html",
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.HTML(ctx)
}

// Count logs the probe and delegates to the wrapped page.
func (p *LoggingPage) Count(ctx context.Context, selector string) (count int, err error) {
	defer func(begin time.Time) {
		p.logger.Debug("count",
			"selector", selector,
			"count", count,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Count(ctx, selector)
}

// Close delegates to the wrapped page.
func (p *LoggingPage) Close() error {
	return p.next.Close()
}

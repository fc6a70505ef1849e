// Package http implements the render collaborator contract over plain HTTP
// GET requests, for snapshots of the site that do not require JavaScript
// rendering. Probes are answered by parsing the fetched markup rather than
// by a live DOM.
package http

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/vhoang/nhatot"
)

// DefaultTimeout is the default timeout for HTTP requests.
const DefaultTimeout = 30 * time.Second

const (
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"
	acceptLanguage = "vi-VN,vi;q=0.9,en;q=0.8"
)

// Ensure Browser implements nhatot.Browser at compile time.
var _ nhatot.Browser = (*Browser)(nil)

// Browser fetches pages with a plain HTTP client. Unlike rod.Browser it
// does not execute JavaScript and only suits static markup.
type Browser struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Browser.
type Option func(*Browser)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(b *Browser) {
		b.timeout = d
	}
}

// NewBrowser creates a new HTTP-based Browser.
func NewBrowser(opts ...Option) *Browser {
	b := &Browser{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(b)
	}
	b.client = &http.Client{Timeout: b.timeout}
	return b
}

// NewPage creates a page. Pages are not safe for concurrent use; the
// traversal is strictly sequential.
func (b *Browser) NewPage(ctx context.Context) (nhatot.Page, error) {
	return &Page{client: b.client}, nil
}

// Close releases resources. No-op for the HTTP client.
func (b *Browser) Close() error {
	return nil
}

// Ensure Page implements nhatot.Page at compile time.
var _ nhatot.Page = (*Page)(nil)

// Page remembers the body of the last navigation.
type Page struct {
	client *http.Client
	html   string
	doc    *goquery.Document
}

// Navigate fetches the URL and remembers its body.
func (p *Page) Navigate(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nhatot.Errorf(nhatot.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	p.html = string(body)
	p.doc = nil
	return nil
}

// HTML returns the last fetched body.
func (p *Page) HTML(ctx context.Context) (string, error) {
	if p.html == "" {
		return "", nhatot.Errorf(nhatot.EINVALID, "no page loaded")
	}
	return p.html, nil
}

// Count answers selector probes against the fetched markup.
func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	if p.doc == nil {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.html))
		if err != nil {
			return 0, err
		}
		p.doc = doc
	}
	return p.doc.Find(selector).Length(), nil
}

// Close releases the remembered body.
func (p *Page) Close() error {
	p.html = ""
	p.doc = nil
	return nil
}

// Package rod implements the render collaborator contract against a remote
// Chrome DevTools endpoint (e.g. a browserless service).
package rod

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/vhoang/nhatot"
)

// Session dressing applied to every new page, mirroring a desktop browser
// closely enough that the site serves its regular markup.
const (
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"
	acceptLanguage = "vi-VN,vi;q=0.9,en;q=0.8"
	viewportWidth  = 1920
	viewportHeight = 1080
)

// Ensure Browser implements nhatot.Browser at compile time.
var _ nhatot.Browser = (*Browser)(nil)

// Browser is a connection to a remote browser-automation service.
type Browser struct {
	browser *rod.Browser
}

// Connect dials the DevTools endpoint and attaches to the remote browser.
// Close must be called when the Browser is no longer needed.
func Connect(endpoint string) (*Browser, error) {
	browser := rod.New().ControlURL(endpoint)
	if err := browser.Connect(); err != nil {
		return nil, nhatot.Errorf(nhatot.EUNAVAILABLE, "connecting to browser at %s: %v", endpoint, err)
	}
	return &Browser{browser: browser}, nil
}

// NewPage creates a page in the remote session with the desktop viewport,
// user agent and language headers applied.
func (b *Browser) NewPage(ctx context.Context) (nhatot.Page, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, nhatot.Errorf(nhatot.EUNAVAILABLE, "creating page: %v", err)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
		_ = page.Close()
		return nil, err
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = page.Close()
		return nil, err
	}
	if _, err := page.SetExtraHeaders([]string{"Accept-Language", acceptLanguage}); err != nil {
		_ = page.Close()
		return nil, err
	}

	return &Page{page: page}, nil
}

// Close disconnects from the remote browser.
func (b *Browser) Close() error {
	return b.browser.Close()
}

// Ensure Page implements nhatot.Page at compile time.
var _ nhatot.Page = (*Page)(nil)

// Page is one open page in the remote session.
type Page struct {
	page *rod.Page
}

// Navigate loads the URL and waits for the load event.
func (p *Page) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

// HTML returns the page's current rendered markup.
func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

// Count evaluates a querySelectorAll length probe in the live page.
func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	res, err := p.page.Context(ctx).Eval(`(sel) => document.querySelectorAll(sel).length`, selector)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

// Close closes the page.
func (p *Page) Close() error {
	return p.page.Close()
}

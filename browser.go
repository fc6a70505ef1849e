package nhatot

import "context"

// Browser is the remote render collaborator: an already-connected browser
// session that can open pages. The traversal core treats it purely as an
// RPC-like capability set and never depends on the implementation.
type Browser interface {
	// NewPage creates a new page in the session.
	NewPage(ctx context.Context) (Page, error)

	// Close disconnects from the session and releases resources.
	// Must be called when the Browser is no longer needed.
	Close() error
}

// Page is one open page in a render session.
type Page interface {
	// Navigate loads the URL and waits for the initial render.
	// The context controls timeout and cancellation.
	Navigate(ctx context.Context, url string) error

	// HTML returns the page's current rendered markup.
	HTML(ctx context.Context) (string, error)

	// Count evaluates a selector in the live page and returns the number
	// of matching nodes. Used for content-readiness and has-data probes,
	// independent of the authoritative extraction pass.
	Count(ctx context.Context, selector string) (int, error)

	// Close closes the page.
	Close() error
}

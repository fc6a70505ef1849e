// Package crawl provides the page-by-page traversal of the nhatot listing
// site: it drives the remote render session, decides when pagination has
// ended, runs the extraction stage on each rendered page and accumulates
// the results.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vhoang/nhatot"
	"github.com/vhoang/nhatot/bloom"
	"golang.org/x/time/rate"
)

// Defaults for the traversal policy, matching the site's behavior.
const (
	DefaultBaseURL           = "https://www.nhatot.com/mua-ban-bat-dong-san-da-nang"
	DefaultMaxPages          = 5
	DefaultNavigationTimeout = 30 * time.Second
	DefaultPageDelay         = 2 * time.Second
)

// State identifies a step of the traversal state machine.
type State int

// Traversal states, in the order a page normally passes through them.
const (
	StateIdle State = iota
	StateConnecting
	StatePageLoading
	StateContentWait
	StateDataCheck
	StateExtracting
	StatePacing
	StateFinished
	StateAborted
)

var stateNames = map[State]string{
	StateIdle:        "idle",
	StateConnecting:  "connecting",
	StatePageLoading: "page_loading",
	StateContentWait: "content_wait",
	StateDataCheck:   "data_check",
	StateExtracting:  "extracting",
	StatePacing:      "pacing",
	StateFinished:    "finished",
	StateAborted:     "aborted",
}

// String returns the state's name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome classifies how a run ended.
type Outcome int

// Run outcomes.
const (
	// OutcomeFinished means pagination ended normally: the configured
	// maximum was reached or an empty page was found.
	OutcomeFinished Outcome = iota

	// OutcomeAborted means a fatal fault ended the run early. Records
	// accumulated before the abort are still valid output.
	OutcomeAborted

	// OutcomeInterrupted means the run was canceled from outside.
	OutcomeInterrupted
)

// String returns the outcome's name.
func (o Outcome) String() string {
	switch o {
	case OutcomeFinished:
		return "finished"
	case OutcomeAborted:
		return "aborted"
	case OutcomeInterrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// dataCheckSelectors is the coarse "does this page hold data" probe set,
// evaluated in the live page. It is deliberately looser than, and
// independent of, the extraction cascade: it only guards against crawling
// past the end of pagination.
var dataCheckSelectors = []string{
	`li[itemprop="itemListElement"]`,
	`[class*="AdItem"]`,
	`[class*="ListAds"] li`,
}

// Crawler drives one traversal run. Create one Crawler per run; it owns no
// global state and a fresh one can run concurrently with others as long as
// each has its own Browser.
type Crawler struct {
	Browser   nhatot.Browser
	Extractor nhatot.PageExtractor
	Logger    *slog.Logger

	// BaseURL is the first page's URL; page n > 1 appends "?page=n".
	BaseURL string

	// MaxPages bounds the traversal.
	MaxPages int

	// NavigationTimeout bounds one page navigation. A navigation that
	// exceeds it skips that page, it does not abort the run.
	NavigationTimeout time.Duration

	// PageDelay is the pacing interval between page requests.
	PageDelay time.Duration

	// ContentWaitDelays are the pauses between readiness probes.
	// Defaults to DefaultContentWaitDelays; injectable for tests.
	ContentWaitDelays []time.Duration
}

// Result holds the outcome of one traversal run.
type Result struct {
	// RunID uniquely identifies the run in logs and storage.
	RunID string

	// Listings in ascending (PageNumber, ItemIndex) order.
	Listings []*nhatot.Listing

	// PagesVisited counts pages that reached extraction.
	PagesVisited int

	// PagesSkipped counts pages dropped after navigation failures.
	PagesSkipped int

	// DuplicateEstimate is the approximate number of listings whose URL
	// was already seen earlier in the run. Diagnostic only; no record is
	// ever dropped for it.
	DuplicateEstimate int

	Outcome Outcome
}

// Run executes the traversal until pagination ends, the page budget is
// exhausted, a fatal fault occurs or the context is canceled. The returned
// Result is never nil: whatever was accumulated before an abort or
// interrupt is still valid output. The error is non-nil only for a fatal
// connection fault or cancellation.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxPages := c.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	navTimeout := c.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = DefaultNavigationTimeout
	}
	pageDelay := c.PageDelay
	if pageDelay <= 0 {
		pageDelay = DefaultPageDelay
	}
	waitDelays := c.ContentWaitDelays
	if waitDelays == nil {
		waitDelays = DefaultContentWaitDelays()
	}

	res := &Result{
		RunID:   uuid.New().String(),
		Outcome: OutcomeAborted,
	}
	acc := newAccumulator()
	state := transition(logger, StateIdle, StateConnecting)

	page, err := c.Browser.NewPage(ctx)
	if err != nil {
		transition(logger, state, StateAborted)
		return res, nhatot.Errorf(nhatot.EUNAVAILABLE, "create page: %v", err)
	}
	// Cleanup runs on every exit path and tolerates its own failures.
	defer func() {
		if cerr := page.Close(); cerr != nil {
			logger.Warn("page close failed", "err", cerr)
		}
	}()

	// One pacing token per PageDelay; drained so the first Pacing state
	// actually waits.
	pacer := rate.NewLimiter(rate.Every(pageDelay), 1)
	_ = pacer.Allow()

	logger.Info("run started", "run_id", res.RunID, "max_pages", maxPages, "base_url", baseURL)

	for n := 1; n <= maxPages; n++ {
		if ctx.Err() != nil {
			return c.finish(logger, state, res, acc, OutcomeInterrupted, ctx.Err())
		}

		state = transition(logger, state, StatePageLoading)
		navCtx, cancel := context.WithTimeout(ctx, navTimeout)
		err := page.Navigate(navCtx, pageURL(baseURL, n))
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return c.finish(logger, state, res, acc, OutcomeInterrupted, ctx.Err())
			}
			// Page fault: skip this page, never the run.
			logger.Warn("page skipped", "page", n, "err", err)
			res.PagesSkipped++
			continue
		}

		state = transition(logger, state, StateContentWait)
		ready := waitForContent(ctx, page, dataCheckSelectors, waitDelays)
		if ctx.Err() != nil {
			return c.finish(logger, state, res, acc, OutcomeInterrupted, ctx.Err())
		}
		if !ready {
			// Absence of a marker does not prove absence of data.
			logger.Debug("no readiness marker found, proceeding", "page", n)
		}

		state = transition(logger, state, StateDataCheck)
		count, hasData := c.dataCheck(ctx, logger, page, n)
		if ctx.Err() != nil {
			return c.finish(logger, state, res, acc, OutcomeInterrupted, ctx.Err())
		}
		if !hasData {
			logger.Info("empty page, pagination end reached", "page", n)
			return c.finish(logger, state, res, acc, OutcomeFinished, nil)
		}
		logger.Debug("data check", "page", n, "candidates", count)

		state = transition(logger, state, StateExtracting)
		html, err := page.HTML(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return c.finish(logger, state, res, acc, OutcomeInterrupted, ctx.Err())
			}
			logger.Warn("page content unavailable, page skipped", "page", n, "err", err)
			res.PagesSkipped++
			continue
		}
		listings := c.Extractor.ExtractPage(html, n)
		acc.append(listings)
		res.PagesVisited++
		logger.Info("page crawled", "page", n, "listings", len(listings), "total", acc.len())

		if n < maxPages {
			state = transition(logger, state, StatePacing)
			if err := pacer.Wait(ctx); err != nil {
				return c.finish(logger, state, res, acc, OutcomeInterrupted, err)
			}
		}
	}

	return c.finish(logger, state, res, acc, OutcomeFinished, nil)
}

// finish records the terminal state and materializes the accumulator into
// the result.
func (c *Crawler) finish(logger *slog.Logger, state State, res *Result, acc *accumulator, outcome Outcome, err error) (*Result, error) {
	terminal := StateFinished
	if outcome != OutcomeFinished {
		terminal = StateAborted
	}
	transition(logger, state, terminal)

	res.Outcome = outcome
	res.Listings = acc.listings
	res.DuplicateEstimate = acc.duplicates
	logger.Info("run ended",
		"run_id", res.RunID,
		"outcome", outcome.String(),
		"listings", len(res.Listings),
		"pages_visited", res.PagesVisited,
		"pages_skipped", res.PagesSkipped,
		"duplicate_estimate", res.DuplicateEstimate,
	)
	return res, err
}

// dataCheck counts candidate item nodes in the live page. Probe errors are
// not page faults: the authoritative extractor decides, so the page is
// assumed to hold data.
func (c *Crawler) dataCheck(ctx context.Context, logger *slog.Logger, page nhatot.Page, pageNumber int) (int, bool) {
	for _, selector := range dataCheckSelectors {
		count, err := page.Count(ctx, selector)
		if err != nil {
			logger.Warn("data check probe failed, assuming data", "page", pageNumber, "selector", selector, "err", err)
			return 0, true
		}
		if count > 0 {
			return count, true
		}
	}
	return 0, false
}

// transition logs a state change and returns the new state.
func transition(logger *slog.Logger, from, to State) State {
	logger.Debug("state", "from", from.String(), "to", to.String())
	return to
}

// pageURL encodes the page number as a query parameter for pages after the
// first.
func pageURL(baseURL string, n int) string {
	if n <= 1 {
		return baseURL
	}
	return fmt.Sprintf("%s?page=%d", baseURL, n)
}

// accumulator is the append-only record set for one run. It performs no
// deduplication; it only estimates duplicates for diagnostics.
type accumulator struct {
	listings   []*nhatot.Listing
	seen       *bloom.Filter
	duplicates int
}

func newAccumulator() *accumulator {
	return &accumulator{
		seen: bloom.NewFilter(10000, 0.01),
	}
}

func (a *accumulator) append(listings []*nhatot.Listing) {
	for _, l := range listings {
		if l.URL != "" && a.seen.TestAndAdd(l.URL) {
			a.duplicates++
		}
		a.listings = append(a.listings, l)
	}
}

func (a *accumulator) len() int {
	return len(a.listings)
}

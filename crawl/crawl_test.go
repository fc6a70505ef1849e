package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhoang/nhatot"
	"github.com/vhoang/nhatot/crawl"
	"github.com/vhoang/nhatot/goquery"
	"github.com/vhoang/nhatot/mock"
)

// scriptedPage describes what one listing page serves during a test run.
type scriptedPage struct {
	html   string
	items  int
	navErr error
}

// site is a scripted listing site behind the mock browser. It records every
// navigation so tests can assert which pages were requested.
type site struct {
	mu        sync.Mutex
	pages     map[int]scriptedPage
	requested []int
	current   int
	onNav     func(page int)
}

func (s *site) pageNumber(url string) int {
	if i := strings.Index(url, "?page="); i >= 0 {
		n, _ := strconv.Atoi(url[i+len("?page="):])
		return n
	}
	return 1
}

func (s *site) browser() *mock.Browser {
	return &mock.Browser{
		NewPageFn: func(context.Context) (nhatot.Page, error) {
			return &mock.Page{
				NavigateFn: func(ctx context.Context, url string) error {
					n := s.pageNumber(url)
					s.mu.Lock()
					s.requested = append(s.requested, n)
					s.current = n
					s.mu.Unlock()
					if s.onNav != nil {
						s.onNav(n)
					}
					if err := ctx.Err(); err != nil {
						return err
					}
					return s.pages[n].navErr
				},
				HTMLFn: func(context.Context) (string, error) {
					s.mu.Lock()
					defer s.mu.Unlock()
					return s.pages[s.current].html, nil
				},
				CountFn: func(_ context.Context, selector string) (int, error) {
					s.mu.Lock()
					defer s.mu.Unlock()
					if selector == `li[itemprop="itemListElement"]` {
						return s.pages[s.current].items, nil
					}
					return 0, nil
				},
			}, nil
		},
	}
}

// itemHTML renders one schema.org listing fragment. An empty title yields a
// fragment no title heuristic can resolve.
func itemHTML(title, href string) string {
	heading := ""
	if title != "" {
		heading = "<h3>" + title + "</h3>"
	}
	return fmt.Sprintf(`<li itemprop="itemListElement">
		<a itemprop="item" href="%s"><div></div><div><span></span>%s</div></a>
	</li>`, href, heading)
}

func pageHTML(items ...string) string {
	return `<html><body><ul>` + strings.Join(items, "\n") + `</ul></body></html>`
}

// fastCrawler wires a crawler with no real-time pacing.
func fastCrawler(s *site, extractor nhatot.PageExtractor) *crawl.Crawler {
	return &crawl.Crawler{
		Browser:           s.browser(),
		Extractor:         extractor,
		MaxPages:          5,
		NavigationTimeout: time.Second,
		PageDelay:         time.Millisecond,
		ContentWaitDelays: []time.Duration{},
	}
}

func TestCrawler_Run(t *testing.T) {
	t.Parallel()

	t.Run("a failed session is fatal and yields an empty result", func(t *testing.T) {
		t.Parallel()
		crawler := &crawl.Crawler{
			Browser: &mock.Browser{
				NewPageFn: func(context.Context) (nhatot.Page, error) {
					return nil, errors.New("connection refused")
				},
			},
			Extractor: &mock.PageExtractor{},
		}

		res, err := crawler.Run(context.Background())
		require.Error(t, err)
		assert.Equal(t, nhatot.EUNAVAILABLE, nhatot.ErrorCode(err))
		require.NotNil(t, res)
		assert.NotEmpty(t, res.RunID)
		assert.Empty(t, res.Listings)
		assert.Equal(t, crawl.OutcomeAborted, res.Outcome)
	})

	t.Run("stops at the first empty page without requesting more", func(t *testing.T) {
		t.Parallel()
		s := &site{pages: map[int]scriptedPage{
			1: {
				items: 3,
				html: pageHTML(
					itemHTML("Nhà mặt tiền Hải Châu", "/nha-mat-tien-1001.htm"),
					itemHTML("Đất nền Hòa Xuân", "/dat-nen-1002.htm"),
					itemHTML("Căn hộ Sơn Trà", "/can-ho-1003.htm"),
				),
			},
			2: {
				items: 3,
				html: pageHTML(
					itemHTML("", "/khong-tieu-de-2001.htm"),
					itemHTML("Nhà cấp 4 Cẩm Lệ", "/nha-cap-4-2002.htm"),
					itemHTML("Kho xưởng Liên Chiểu", "/kho-xuong-2003.htm"),
				),
			},
			3: {items: 0, html: pageHTML()},
		}}
		crawler := fastCrawler(s, goquery.NewExtractor())

		res, err := crawler.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, crawl.OutcomeFinished, res.Outcome)
		require.Len(t, res.Listings, 5)
		var pages []int
		for _, l := range res.Listings {
			pages = append(pages, l.PageNumber)
		}
		assert.Equal(t, []int{1, 1, 1, 2, 2}, pages)

		// The dropped no-title fragment on page 2 leaves an index gap.
		assert.Equal(t, 2, res.Listings[3].ItemIndex)
		assert.Equal(t, 3, res.Listings[4].ItemIndex)

		assert.Equal(t, 2, res.PagesVisited)
		assert.Equal(t, 0, res.PagesSkipped)
		assert.Equal(t, []int{1, 2, 3}, s.requested)
	})

	t.Run("listings are ordered by page then item", func(t *testing.T) {
		t.Parallel()
		s := &site{pages: map[int]scriptedPage{
			1: {items: 2, html: pageHTML(
				itemHTML("Tin 1", "/tin-11.htm"),
				itemHTML("Tin 2", "/tin-12.htm"),
			)},
			2: {items: 1, html: pageHTML(itemHTML("Tin 3", "/tin-21.htm"))},
			3: {items: 0, html: pageHTML()},
		}}
		crawler := fastCrawler(s, goquery.NewExtractor())

		res, err := crawler.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, res.Listings, 3)
		prev := res.Listings[0]
		for _, l := range res.Listings[1:] {
			ordered := l.PageNumber > prev.PageNumber ||
				(l.PageNumber == prev.PageNumber && l.ItemIndex > prev.ItemIndex)
			assert.True(t, ordered, "listing %q out of order", l.Title)
			prev = l
		}
	})

	t.Run("a navigation fault skips the page, not the run", func(t *testing.T) {
		t.Parallel()
		s := &site{pages: map[int]scriptedPage{
			1: {items: 1, html: pageHTML(itemHTML("Tin trang 1", "/tin-101.htm"))},
			2: {navErr: errors.New("net::ERR_TIMED_OUT")},
			3: {items: 1, html: pageHTML(itemHTML("Tin trang 3", "/tin-301.htm"))},
			4: {items: 0, html: pageHTML()},
		}}
		crawler := fastCrawler(s, goquery.NewExtractor())

		res, err := crawler.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, crawl.OutcomeFinished, res.Outcome)
		assert.Equal(t, 1, res.PagesSkipped)
		assert.Equal(t, 2, res.PagesVisited)
		require.Len(t, res.Listings, 2)
		assert.Equal(t, 1, res.Listings[0].PageNumber)
		assert.Equal(t, 3, res.Listings[1].PageNumber)
		assert.Equal(t, []int{1, 2, 3, 4}, s.requested)
	})

	t.Run("an empty first page ends the run before extraction", func(t *testing.T) {
		t.Parallel()
		s := &site{pages: map[int]scriptedPage{1: {items: 0, html: pageHTML()}}}
		extracted := 0
		crawler := fastCrawler(s, &mock.PageExtractor{
			ExtractPageFn: func(string, int) []*nhatot.Listing {
				extracted++
				return nil
			},
		})

		res, err := crawler.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, crawl.OutcomeFinished, res.Outcome)
		assert.Empty(t, res.Listings)
		assert.Equal(t, 0, res.PagesVisited)
		assert.Equal(t, 0, extracted)
		assert.Equal(t, []int{1}, s.requested)
	})

	t.Run("cancellation keeps the records accumulated so far", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		s := &site{pages: map[int]scriptedPage{
			1: {items: 2, html: pageHTML(
				itemHTML("Tin 1", "/tin-11.htm"),
				itemHTML("Tin 2", "/tin-12.htm"),
			)},
			2: {items: 1, html: pageHTML(itemHTML("Tin 3", "/tin-21.htm"))},
		}}
		s.onNav = func(page int) {
			if page == 2 {
				cancel()
			}
		}
		crawler := fastCrawler(s, goquery.NewExtractor())

		res, err := crawler.Run(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, crawl.OutcomeInterrupted, res.Outcome)
		assert.Len(t, res.Listings, 2)
	})

	t.Run("repeated listing URLs raise the duplicate estimate", func(t *testing.T) {
		t.Parallel()
		repeat := pageHTML(
			itemHTML("Tin A", "/tin-aaa-1.htm"),
			itemHTML("Tin B", "/tin-bbb-2.htm"),
			itemHTML("Tin C", "/tin-ccc-3.htm"),
		)
		s := &site{pages: map[int]scriptedPage{
			1: {items: 3, html: repeat},
			2: {items: 3, html: repeat},
			3: {items: 0, html: pageHTML()},
		}}
		crawler := fastCrawler(s, goquery.NewExtractor())

		res, err := crawler.Run(context.Background())
		require.NoError(t, err)
		assert.Len(t, res.Listings, 6, "duplicates are counted, never dropped")
		assert.GreaterOrEqual(t, res.DuplicateEstimate, 3)
	})
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://www.nhatot.com/mua-ban-bat-dong-san-da-nang", crawl.DefaultBaseURL)
	assert.Equal(t, 5, crawl.DefaultMaxPages)
	assert.Equal(t, 30*time.Second, crawl.DefaultNavigationTimeout)
	assert.Equal(t, 2*time.Second, crawl.DefaultPageDelay)
}

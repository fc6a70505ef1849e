package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// listingHrefRE matches the shape of nhatot listing URLs, which end in a
// numeric ad id followed by ".htm".
var listingHrefRE = regexp.MustCompile(`\d+\.htm`)

// ContainerProbe is one strategy for locating the repeating item fragments
// on a listing page. Probes are pure: same document, same result.
type ContainerProbe struct {
	Name string
	Find func(doc *goquery.Document) []*goquery.Selection
}

// DefaultProbes returns the container resolution cascade in priority order.
// The first probe yielding at least one fragment wins; results are never
// merged across probes.
func DefaultProbes() []ContainerProbe {
	return []ContainerProbe{
		{Name: "structural", Find: structuralProbe},
		{Name: "attribute", Find: attributeProbe},
		{Name: "listing-links", Find: linkShapeProbe},
		{Name: "price-text", Find: priceTextProbe},
		{Name: "generic-tags", Find: genericTagProbe},
		{Name: "broad-class", Find: broadClassProbe},
	}
}

// Resolve runs the cascade over a parsed page and returns the item
// fragments together with the name of the winning probe. An empty result
// with strategy "" is a valid outcome, not an error: the page may simply
// hold no listings.
func Resolve(doc *goquery.Document) ([]*goquery.Selection, string) {
	return resolve(doc, DefaultProbes())
}

func resolve(doc *goquery.Document, probes []ContainerProbe) ([]*goquery.Selection, string) {
	for _, probe := range probes {
		if items := probe.Find(doc); len(items) > 0 {
			return items, probe.Name
		}
	}
	return nil, ""
}

// structuralProbe walks the known nhatot nesting: the list-view wrapper,
// the ListAds container (class hash suffix varies across site revisions),
// then the ul whose direct children are the item wrappers.
func structuralProbe(doc *goquery.Document) []*goquery.Selection {
	ul := doc.Find(`div.list-view div div[class*="ListAds_ListAds"] ul`).First()
	if ul.Length() == 0 {
		return nil
	}
	return splitNodes(ul.Children())
}

// attributeProbe tries class-substring patterns in fixed priority order.
// The first pattern matching at least one node is adopted for the whole
// page; patterns are never mixed within one page.
func attributeProbe(doc *goquery.Document) []*goquery.Selection {
	patterns := []string{
		`li[itemprop="itemListElement"]`,
		`[class*="AdItem"]`,
		`[class*="ad-item"]`,
		`[class*="ListingCard"]`,
		`[class*="listing-item"]`,
	}
	for _, pattern := range patterns {
		if sel := doc.Find(pattern); sel.Length() > 0 {
			return splitNodes(sel)
		}
	}
	return nil
}

// linkShapeProbe falls back to anchors whose target looks like a listing
// detail URL. The anchor subtree becomes the item fragment.
func linkShapeProbe(doc *goquery.Document) []*goquery.Selection {
	var items []*goquery.Selection
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if listingHrefRE.MatchString(href) {
			items = append(items, s)
		}
	})
	return items
}

// priceTextProbe selects block elements whose visible text contains a
// price-like pattern, keeping only the innermost matching blocks so that
// wrappers around several listings are not returned as one fragment.
func priceTextProbe(doc *goquery.Document) []*goquery.Selection {
	var items []*goquery.Selection
	doc.Find("li, div").Each(func(_ int, s *goquery.Selection) {
		if !PriceLike(s.Text()) {
			return
		}
		inner := false
		s.Find("li, div").EachWithBreak(func(_ int, c *goquery.Selection) bool {
			if PriceLike(c.Text()) {
				inner = true
				return false
			}
			return true
		})
		if !inner {
			items = append(items, s)
		}
	})
	return items
}

// genericTagProbe returns semantic article/list-item elements.
func genericTagProbe(doc *goquery.Document) []*goquery.Selection {
	if items := splitNodes(doc.Find("article")); len(items) > 0 {
		return items
	}
	return splitNodes(doc.Find("ul li"))
}

// broadClassProbe is the last resort: any block element whose class
// loosely resembles an item or card.
func broadClassProbe(doc *goquery.Document) []*goquery.Selection {
	var items []*goquery.Selection
	doc.Find("div, section, li").Each(func(_ int, s *goquery.Selection) {
		class, ok := s.Attr("class")
		if !ok {
			return
		}
		lower := strings.ToLower(class)
		if strings.Contains(lower, "item") || strings.Contains(lower, "card") {
			items = append(items, s)
		}
	})
	return items
}

// splitNodes turns a multi-node selection into one selection per node,
// preserving document order.
func splitNodes(sel *goquery.Selection) []*goquery.Selection {
	var items []*goquery.Selection
	sel.Each(func(_ int, s *goquery.Selection) {
		items = append(items, s)
	})
	return items
}

package goquery

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/vhoang/nhatot"
)

// Origin is the absolute site origin used to resolve relative listing and
// image URLs.
const Origin = "https://www.nhatot.com"

// Unit keywords nhatot uses in descriptor parts.
const (
	bedroomUnit  = "PN"
	bathroomUnit = "WC"
)

// extractRecord turns one item fragment into a listing. Every field
// resolves independently and degrades to empty on failure; the caller drops
// the record only when the title ends up empty.
func extractRecord(item *goquery.Selection, pageNumber, itemIndex int, extractedAt time.Time) *nhatot.Listing {
	listing := &nhatot.Listing{
		PageNumber:  pageNumber,
		ItemIndex:   itemIndex,
		ExtractedAt: extractedAt,
	}

	// The schema.org list element carries the actual ad markup; older
	// revisions put it directly on the fragment.
	li := item.Find(`li[itemprop="itemListElement"]`).First()
	if li.Length() == 0 {
		li = item
	}

	main := li.Find(`a[itemprop="item"] > div:nth-child(2)`).First()

	listing.Title = extractTitle(main, li)
	extractDescriptor(main, listing)
	extractPriceArea(main, li, listing)
	extractLocationDate(main, li, listing)
	extractURL(li, listing)
	extractImage(li, listing)

	return listing
}

// extractTitle resolves the title: the heading inside the main content
// block, then any heading in the fragment, then the text of the first link.
func extractTitle(main, li *goquery.Selection) string {
	if t := collapseSpace(main.Find("h3").First().Text()); t != "" {
		return t
	}
	if t := collapseSpace(li.Find("h1, h2, h3, h4, h5, h6").First().Text()); t != "" {
		return t
	}
	return collapseSpace(li.Find("a").First().Text())
}

// extractDescriptor parses the bullet-separated descriptor span (the third
// child of the main content block) into bedrooms, bathrooms, facing
// direction and property type. Classification is applied part by part and
// is order-independent.
func extractDescriptor(main *goquery.Selection, listing *nhatot.Listing) {
	desc := main.Children().Eq(2)
	if desc.Length() == 0 || !desc.Is("span") {
		return
	}
	text := collapseSpace(desc.Text())
	if text == "" {
		return
	}
	listing.PropertyType = text
	for _, part := range SplitBullet(text) {
		switch {
		case matchCount(part, bedroomUnit, &listing.Bedrooms):
		case matchCount(part, bathroomUnit, &listing.Bathrooms):
		default:
			if d, ok := Direction(part); ok {
				listing.Direction = d
			} else {
				listing.PropertyType = part
			}
		}
	}
}

func matchCount(part, unit string, dst *string) bool {
	n, ok := CountBefore(part, unit)
	if ok {
		*dst = n
	}
	return ok
}

// extractPriceArea reads the price block (the fourth child of the main
// content block): its spans hold price, price unit and area in order. When
// that shape is absent the whole fragment is scanned for price-like and
// area-like text independently.
func extractPriceArea(main, li *goquery.Selection, listing *nhatot.Listing) {
	priceDiv := main.Children().Eq(3)
	if priceDiv.Length() > 0 && priceDiv.Is("div") {
		spans := priceDiv.Find("span")
		if spans.Length() > 0 {
			listing.Price = collapseSpace(spans.Eq(0).Text())
		}
		if spans.Length() > 1 {
			listing.PriceUnit = collapseSpace(spans.Eq(1).Text())
		}
		if spans.Length() > 2 {
			listing.Area = collapseSpace(spans.Eq(2).Text())
		}
	}
	if listing.Price == "" || listing.Area == "" {
		scanPriceArea(li, listing)
	}
}

// scanPriceArea is the fallback for drifted markup: the first price-like
// and area-like texts anywhere in the fragment.
func scanPriceArea(li *goquery.Selection, listing *nhatot.Listing) {
	li.Find("span, div, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseSpace(s.Text())
		// Wrapper elements repeat their children's text; only short texts
		// can be the displayed value itself.
		if len([]rune(text)) > 40 {
			return true
		}
		if listing.Price == "" && PriceLike(text) {
			listing.Price = text
		}
		if listing.Area == "" && AreaLike(text) {
			listing.Area = text
		}
		return listing.Price == "" || listing.Area == ""
	})
}

// extractLocationDate reads the location element positionally: the second
// direct span of the main content block, which holds "location • posted
// date" or, without a date, just the location. Only when that shape is
// absent does it fall back to scanning the fragment for the last
// bullet-separated leaf, skipping the descriptor span so its parts can
// never leak into the location.
func extractLocationDate(main, li *goquery.Selection, listing *nhatot.Listing) {
	spans := main.ChildrenFiltered("span")
	if spans.Length() > 1 {
		if text := collapseSpace(spans.Eq(1).Text()); text != "" {
			listing.Location, listing.PostedDate = SplitLocationDate(text)
			return
		}
	}

	desc := main.Children().Eq(2)
	var last string
	li.Find("span, div, p").Each(func(_ int, s *goquery.Selection) {
		if desc.Length() > 0 && s.Nodes[0] == desc.Nodes[0] {
			return
		}
		text := collapseSpace(s.Text())
		if strings.Contains(text, Bullet) && s.Children().Length() == 0 {
			last = text
		}
	})
	if last == "" {
		return
	}
	listing.Location, listing.PostedDate = SplitLocationDate(last)
}

// extractURL resolves the listing link: the item-semantic anchor first,
// then any anchor with a target. Relative forms are absolutized against the
// site origin.
func extractURL(li *goquery.Selection, listing *nhatot.Listing) {
	a := li.Find(`a[itemprop="item"]`).First()
	if a.Length() == 0 {
		a = li.Find("a[href]").First()
	}
	if href, ok := a.Attr("href"); ok {
		listing.URL = Absolutize(href)
	}
}

// extractImage takes the first image with a source; its alt text becomes
// the description when no description is set yet.
func extractImage(li *goquery.Selection, listing *nhatot.Listing) {
	img := li.Find("img[src]").First()
	if img.Length() == 0 {
		return
	}
	if src, ok := img.Attr("src"); ok {
		listing.ImageURL = Absolutize(src)
	}
	if alt, ok := img.Attr("alt"); ok && alt != "" && listing.Description == "" {
		listing.Description = collapseSpace(alt)
	}
}

// Absolutize resolves root-relative, protocol-relative and bare-relative
// references against the site origin. Absolute URLs pass through unchanged.
func Absolutize(ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "/"):
		return Origin + ref
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	default:
		return Origin + "/" + ref
	}
}

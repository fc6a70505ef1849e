package goquery_test

import (
	"fmt"
	"strings"
)

// listingFixture describes one nhatot-shaped item fragment for tests.
type listingFixture struct {
	Title      string
	Descriptor string
	Price      string
	PriceUnit  string
	Area       string
	Location   string
	Href       string
	ImageSrc   string
	ImageAlt   string
}

// render produces the schema.org list element markup as the live site
// shapes it: an anchor whose second child div holds label, heading,
// descriptor, price block and location in order.
func (f listingFixture) render() string {
	return fmt.Sprintf(`
		<div>
			<li itemprop="itemListElement">
				<a itemprop="item" href="%s">
					<div><img src="%s" alt="%s"></div>
					<div>
						<div>Tin ưu tiên</div>
						<h3>%s</h3>
						<span>%s</span>
						<div><span>%s</span><span>%s</span><span>%s</span></div>
						<span>%s</span>
					</div>
				</a>
			</li>
		</div>`,
		f.Href, f.ImageSrc, f.ImageAlt, f.Title, f.Descriptor,
		f.Price, f.PriceUnit, f.Area, f.Location)
}

// listingPage wraps item fragments in the list-view nesting the structural
// probe expects.
func listingPage(items ...listingFixture) string {
	fragments := make([]string, len(items))
	for i, item := range items {
		fragments[i] = item.render()
	}
	return listingPageHTML(fragments...)
}

// listingPageHTML wraps raw fragment markup in the same nesting.
func listingPageHTML(fragments ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="list-view"><div><div class="ListAds_ListAds__h3kWa"><ul>`)
	for _, f := range fragments {
		b.WriteString(f)
	}
	b.WriteString(`</ul></div></div></div></body></html>`)
	return b.String()
}

// danangListing is a fully populated fragment matching live markup.
func danangListing() listingFixture {
	return listingFixture{
		Title:      "Bán nhà 3 tầng mặt tiền đường Lê Duẩn",
		Descriptor: "Nhà ở • 3 PN • 2 WC • Hướng Đông Nam",
		Price:      "5,2 tỷ",
		PriceUnit:  "tỷ",
		Area:       "80 m²",
		Location:   "Quận Hải Châu • 2 ngày trước",
		Href:       "/mua-ban-nha-dat-quan-hai-chau-123456.htm",
		ImageSrc:   "//cdn.nhatot.com/images/123456.jpg",
		ImageAlt:   "Nhà 3 tầng mặt tiền Lê Duẩn",
	}
}

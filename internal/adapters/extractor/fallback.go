package extractor

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/vntext"
)

// maxFallbackListings caps generic extraction per page, matching the
// page size of the structured platforms.
const maxFallbackListings = 20

// extractFallback scans visible page text for listing-shaped blocks
// when no selector map matched the markup. A block qualifies when it
// carries a parseable price; everything else the block mentions (area,
// phones, location) rides along through the shared normalization.
func (e *Extractor) extractFallback(result domain.RawFetchResult) []domain.Listing {
	text := visibleText(result.Body)
	if text == "" {
		return nil
	}

	var listings []domain.Listing
	for _, block := range textBlocks(text) {
		if len(listings) >= maxFallbackListings {
			break
		}

		raw, ok := listingBlock(block)
		if !ok {
			continue
		}
		listings = append(listings, e.buildListing(raw, result))
	}
	return listings
}

// listingBlock decides whether a text block describes a listing and
// shapes it into raw fields. The price is the anchoring signal: text
// without one is navigation, boilerplate or prose.
func listingBlock(block string) (rawListing, bool) {
	if !hasPrice(block) {
		return rawListing{}, false
	}

	lines := strings.Split(block, "\n")
	title := strings.TrimSpace(lines[0])
	if title == "" || len([]rune(title)) < 10 {
		return rawListing{}, false
	}
	if runes := []rune(title); len(runes) > 150 {
		title = string(runes[:150])
	}

	return rawListing{
		Title:       title,
		Description: block,
		PriceText:   block,
		AreaText:    block,
		Location:    block,
		PhoneText:   block,
	}, true
}

// visibleText renders the page body without script, style and other
// non-content subtrees, one node per line.
func visibleText(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript, iframe, svg").Remove()

	var sb strings.Builder
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		sb.WriteString(sel.Text())
	})
	if sb.Len() == 0 {
		return strings.TrimSpace(doc.Text())
	}
	return sb.String()
}

// textBlocks splits rendered text into blocks on blank lines, dropping
// whitespace-only noise.
func textBlocks(text string) []string {
	var blocks []string
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		blocks = append(blocks, strings.Join(current, "\n"))
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

// hasPrice requires a concrete parsed amount. Negotiable markers are
// not enough here: "liên hệ" shows up in every nav bar, and the
// structured path already handles price-on-request listings.
func hasPrice(text string) bool {
	price, _ := vntext.ParsePrice(text)
	return price != nil
}

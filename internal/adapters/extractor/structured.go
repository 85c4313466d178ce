package extractor

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

// rawListing carries field text as pulled off the page, before any
// normalization.
type rawListing struct {
	Title       string
	Description string
	PriceText   string
	AreaText    string
	Location    string
	URL         string
	ImageURL    string
	ContactName string
	PhoneText   string
	Bedrooms    string
	Bathrooms   string
}

// extractStructured walks the platform's listing containers and reads
// each field through its selector. Blocks without a title are noise
// (ad slots, banners) and are dropped here rather than in validation.
func (e *Extractor) extractStructured(result domain.RawFetchResult, cfg PlatformSelectors) []domain.Listing {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if err != nil {
		e.logger.Warn("Page did not parse as HTML", port.Fields{
			"platform": result.Platform,
			"url":      result.URL,
			"error":    err.Error(),
		})
		return nil
	}

	section := cfg.List
	if section.Container == "" {
		return nil
	}

	var listings []domain.Listing
	doc.Find(section.Container).Each(func(_ int, block *goquery.Selection) {
		raw := rawListing{
			Title:       fieldValue(block, section.Fields["title"]),
			Description: fieldValue(block, section.Fields["description"]),
			PriceText:   fieldValue(block, section.Fields["price"]),
			AreaText:    fieldValue(block, section.Fields["area"]),
			Location:    fieldValue(block, section.Fields["location"]),
			URL:         fieldValue(block, section.Fields["url"]),
			ImageURL:    fieldValue(block, section.Fields["image"]),
			ContactName: fieldValue(block, section.Fields["contact_name"]),
			PhoneText:   fieldValue(block, section.Fields["phone"]),
			Bedrooms:    fieldValue(block, section.Fields["bedrooms"]),
			Bathrooms:   fieldValue(block, section.Fields["bathrooms"]),
		}
		if raw.Title == "" {
			return
		}

		listing := e.buildListing(raw, result)
		listings = append(listings, listing)
	})

	return listings
}

// fieldValue reads one field off a listing block. An empty spec means
// the platform does not carry that field.
func fieldValue(block *goquery.Selection, spec string) string {
	if spec == "" {
		return ""
	}

	css, mode, attr := parseFieldSelector(spec)

	target := block
	if css != "" {
		target = block.Find(css).First()
		if target.Length() == 0 {
			return ""
		}
	}

	switch mode {
	case fieldAttr:
		value, _ := target.Attr(attr)
		return strings.TrimSpace(value)
	default:
		return strings.TrimSpace(target.Text())
	}
}

// resolveURL makes a listing link absolute against the page it was
// found on.
func resolveURL(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

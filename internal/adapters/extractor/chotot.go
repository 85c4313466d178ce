package extractor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jian131/agent-bds/internal/constants"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/internal/vntext"
)

// chototResponse is the shape of the public ad-listing gateway payload.
// Only the fields the pipeline consumes are decoded.
type chototResponse struct {
	Total int        `json:"total"`
	Ads   []chototAd `json:"ads"`
}

type chototAd struct {
	ListID      int64       `json:"list_id"`
	Subject     string      `json:"subject"`
	Body        string      `json:"body"`
	Price       json.Number `json:"price"`
	PriceString string      `json:"price_string"`
	Size        json.Number `json:"size"`
	RegionName  string      `json:"region_name"`
	AreaName    string      `json:"area_name"` // district
	WardName    string      `json:"ward_name"`
	Street      string      `json:"street_name"`
	Image       string      `json:"image"`
	Images      []string    `json:"images"`
	Rooms       int         `json:"rooms"`
	Toilets     int         `json:"toilets"`
	Floors      int         `json:"floors"`
	Latitude    *float64    `json:"latitude"`
	Longitude   *float64    `json:"longitude"`
	AccountName string      `json:"account_name"`
	ListTime    int64       `json:"list_time"` // ms epoch
}

// extractChotot decodes a gateway JSON response. Individual ads that
// fail to map are skipped, not fatal.
func (e *Extractor) extractChotot(result domain.RawFetchResult) []domain.Listing {
	var resp chototResponse
	if err := json.Unmarshal(result.Body, &resp); err != nil {
		e.logger.Warn("Chotot gateway payload did not decode", port.Fields{
			"url":   result.URL,
			"error": err.Error(),
		})
		return nil
	}

	listings := make([]domain.Listing, 0, len(resp.Ads))
	for _, ad := range resp.Ads {
		listing, ok := mapChototAd(ad, result.FetchedAt)
		if !ok {
			continue
		}
		listings = append(listings, listing)
	}
	return listings
}

func mapChototAd(ad chototAd, fetchedAt time.Time) (domain.Listing, bool) {
	if ad.ListID == 0 || strings.TrimSpace(ad.Subject) == "" {
		return domain.Listing{}, false
	}

	listing := domain.Listing{
		Title:          strings.TrimSpace(ad.Subject),
		Description:    strings.TrimSpace(ad.Body),
		PriceText:      ad.PriceString,
		ContactName:    strings.TrimSpace(ad.AccountName),
		SourcePlatform: constants.PlatformChotot,
		SourceURL:      fmt.Sprintf("https://nha.chotot.com/%d.htm", ad.ListID),
		Latitude:       ad.Latitude,
		Longitude:      ad.Longitude,
	}

	if v, err := ad.Price.Int64(); err == nil && v > 0 {
		listing.PriceVND = &v
	}
	if v, err := ad.Size.Float64(); err == nil && v > 0 {
		listing.AreaM2 = &v
		listing.AreaText = fmt.Sprintf("%s m²", ad.Size.String())
	}

	listing.City = vntext.CanonicalCity(ad.RegionName)
	if listing.City == "" {
		listing.City = strings.TrimSpace(ad.RegionName)
	}
	listing.District = vntext.CanonicalDistrict(ad.AreaName)
	if listing.District == "" {
		listing.District = strings.TrimSpace(ad.AreaName)
	}
	listing.Ward = strings.TrimSpace(ad.WardName)
	listing.Address = joinNonEmpty(", ", ad.Street, ad.WardName, ad.AreaName, ad.RegionName)

	if ad.Rooms > 0 {
		rooms := ad.Rooms
		listing.Bedrooms = &rooms
	}
	if ad.Toilets > 0 {
		toilets := ad.Toilets
		listing.Bathrooms = &toilets
	}
	if ad.Floors > 0 {
		floors := ad.Floors
		listing.Floors = &floors
	}

	for _, img := range ad.Images {
		listing.Images = append(listing.Images, chototImageURL(img))
	}
	if ad.Image != "" {
		listing.ThumbnailURL = chototImageURL(ad.Image)
		if len(listing.Images) == 0 {
			listing.Images = []string{listing.ThumbnailURL}
		}
	}

	if ad.ListTime > 0 {
		posted := time.UnixMilli(ad.ListTime)
		listing.PostedAt = &posted
	}

	listing.PropertyType = vntext.DetectPropertyType(listing.Title + " " + listing.Description)
	listing.Phones = vntext.ExtractPhones(listing.Description)
	listing.Zalo = vntext.ExtractZalo(listing.Description)
	listing.Emails = vntext.ExtractEmails(listing.Description)

	finalizeListing(&listing, fetchedAt)
	return listing, true
}

// chototImageURL prefixes bare image names with the CDN base; the
// gateway mixes absolute URLs and bare names.
func chototImageURL(image string) string {
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	return constants.ChototImageBase + image
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, sep)
}

package extractor

import (
	"math"
	"time"

	"github.com/mmcloughlin/geohash"

	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/vntext"
)

// locationCellPrecision is the geohash length stored per listing.
// Seven characters is roughly a 150m cell, fine enough for
// neighbourhood lookups and coarse enough to group duplicates.
const locationCellPrecision = 7

// buildListing normalizes one raw block into a canonical listing.
// Structured and fallback extraction both funnel through here so a
// listing looks the same regardless of which path produced it.
func (e *Extractor) buildListing(raw rawListing, result domain.RawFetchResult) domain.Listing {
	listing := domain.Listing{
		Title:          raw.Title,
		Description:    raw.Description,
		PriceText:      raw.PriceText,
		AreaText:       raw.AreaText,
		Address:        raw.Location,
		ContactName:    raw.ContactName,
		SourcePlatform: result.Platform,
		SourceURL:      resolveURL(result.URL, raw.URL),
	}

	// Listings found without their own link belong to the page that
	// carried them.
	if listing.SourceURL == "" {
		listing.SourceURL = result.URL
	}

	// Negotiable prices stay nil on purpose; zero would poison the
	// per-m² sanity check downstream.
	listing.PriceVND, _ = vntext.ParsePrice(raw.PriceText)
	listing.AreaM2 = vntext.ParseArea(raw.AreaText)

	contactText := raw.PhoneText + " " + raw.Description
	listing.Phones = vntext.ExtractPhones(contactText)
	listing.Zalo = vntext.ExtractZalo(raw.Description)
	listing.Emails = vntext.ExtractEmails(raw.Description)

	locationText := raw.Location + " " + raw.Title
	listing.City = vntext.DetectCity(locationText)
	listing.District = vntext.DetectDistrict(locationText, listing.City)
	listing.Ward = vntext.DetectWard(raw.Location)

	listing.PropertyType = vntext.DetectPropertyType(raw.Title + " " + raw.Description)
	listing.Bedrooms = parseCount(raw.Bedrooms, raw.Title)
	listing.Bathrooms = vntext.ParseBathrooms(raw.Bathrooms)

	if raw.ImageURL != "" {
		img := resolveURL(result.URL, raw.ImageURL)
		listing.ThumbnailURL = img
		listing.Images = []string{img}
	}

	finalizeListing(&listing, result.FetchedAt)
	return listing
}

// finalizeListing fills the derived fields every extraction path
// shares: price per m², the geohash cell, missing city/district from
// the address, timestamps, status and the fingerprint ID.
func finalizeListing(listing *domain.Listing, fetchedAt time.Time) {
	if listing.PricePerM2 == nil && listing.PriceVND != nil && listing.AreaM2 != nil && *listing.AreaM2 > 0 {
		perM2 := int64(math.Round(float64(*listing.PriceVND) / *listing.AreaM2))
		listing.PricePerM2 = &perM2
	}

	if listing.City == "" && listing.Address != "" {
		listing.City = vntext.DetectCity(listing.Address)
	}
	if listing.District == "" && listing.Address != "" {
		listing.District = vntext.DetectDistrict(listing.Address, listing.City)
	}
	if listing.City == "" && listing.District != "" {
		listing.City = vntext.CityOfDistrict(listing.District)
	}

	if listing.Latitude != nil && listing.Longitude != nil {
		listing.LocationCell = geohash.EncodeWithPrecision(*listing.Latitude, *listing.Longitude, locationCellPrecision)
	}

	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	listing.CollectedAt = fetchedAt
	listing.Status = domain.ListingActive
	listing.ComputeID()
}

// parseCount reads a bedroom count from the dedicated field, falling
// back to the title ("nhà 3PN...") when the card has no field for it.
func parseCount(fieldText, title string) *int {
	if n := vntext.ParseBedrooms(fieldText); n != nil {
		return n
	}
	return vntext.ParseBedrooms(title)
}

package domain

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// ListingStatus is the persistence lifecycle of a listing.
type ListingStatus string

const (
	ListingActive  ListingStatus = "active"
	ListingExpired ListingStatus = "expired"
	ListingDeleted ListingStatus = "deleted"
)

// Listing is the canonical unit of the whole pipeline. Never mutated
// after creation: an update is a new value under the same ID, and the
// newer CollectedAt wins downstream.
type Listing struct {
	ID          string
	Title       string
	Description string

	PriceText  string
	PriceVND   *int64 // nil when negotiable or unparseable
	PricePerM2 *int64 // derived when price and area are both present
	AreaText   string
	AreaM2     *float64

	Address      string
	Ward         string
	District     string
	City         string
	Latitude     *float64
	Longitude    *float64
	LocationCell string // geohash, derived from coordinates

	ContactName string
	Phones      []string // canonical local form, leading 0
	Zalo        []string
	Emails      []string

	PropertyType PropertyType
	Bedrooms     *int
	Bathrooms    *int
	Floors       *int

	Images       []string
	ThumbnailURL string

	SourcePlatform string
	SourceURL      string
	PostedAt       *time.Time
	CollectedAt    time.Time
	Status         ListingStatus
}

// Fingerprint derives the stable identity of a listing from its source
// URL, first phone number and title. Re-crawls of an unchanged ad map
// to the same ID; two listings sharing an ID are the same logical ad.
func Fingerprint(sourceURL, phone, title string) string {
	payload := buildFingerprintPayload(sourceURL, phone, title)

	h := sha256.New()
	h.Write([]byte(payload))
	return fmt.Sprintf("%x", h.Sum(nil))
}

func buildFingerprintPayload(sourceURL, phone, title string) string {
	parts := []string{
		strings.TrimSpace(sourceURL),
		strings.TrimSpace(phone),
		normalizeTitle(title),
	}
	return strings.Join(parts, "|")
}

// normalizeTitle lowercases and collapses whitespace runs, so titles
// differing only in spacing fingerprint identically.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// ComputeID fills ID from the fingerprint fields.
func (l *Listing) ComputeID() {
	phone := ""
	if len(l.Phones) > 0 {
		phone = l.Phones[0]
	}
	l.ID = Fingerprint(l.SourceURL, phone, l.Title)
}

type BatchUpsertStats struct {
	Created int // new rows inserted
	Updated int // existing rows refreshed with a newer crawl
	Skipped int // stale crawls that lost to a fresher row
}

package usecase

import (
	"context"
	"strings"

	"github.com/jian131/agent-bds/internal/constants"
	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/internal/vntext"
)

const (
	// maxPlausiblePriceVND rejects prices above 500 tỷ as parse errors.
	maxPlausiblePriceVND = 500_000_000_000
	// saleFloorVND gates the per-m² sanity check: totals below 100
	// triệu are monthly rents, which the district table does not cover.
	saleFloorVND = 100_000_000
	// spamRejectThreshold is the number of distinct broker-boilerplate
	// phrases that turns a suspicious listing into a rejected one.
	spamRejectThreshold = 2
)

// ValidateListingsUseCase drops malformed, implausible and duplicate
// listings. The seen set is owned by the caller and shared across the
// platform batches of one search run, so a listing appearing on two
// sites survives only once.
type ValidateListingsUseCase struct{}

func NewValidateListingsUseCase() *ValidateListingsUseCase {
	return &ValidateListingsUseCase{}
}

func (uc *ValidateListingsUseCase) Execute(ctx context.Context, candidates []domain.Listing, seen map[string]struct{}) ([]domain.Listing, int) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":        "ValidateListings",
		"candidate_count": len(candidates),
	})

	accepted := make([]domain.Listing, 0, len(candidates))
	rejected := 0

	for _, listing := range candidates {
		if reason := uc.rejectReason(listing); reason != "" {
			rejected++
			ucLogger.Debug("Listing rejected", port.Fields{
				"reason": reason,
				"url":    listing.SourceURL,
			})
			continue
		}

		if listing.ID == "" {
			listing.ComputeID()
		}
		if _, dup := seen[listing.ID]; dup {
			rejected++
			ucLogger.Debug("Duplicate listing dropped", port.Fields{"id": listing.ID})
			continue
		}
		seen[listing.ID] = struct{}{}

		if listing.Status == "" {
			listing.Status = domain.ListingActive
		}
		accepted = append(accepted, listing)
	}

	ucLogger.Info("Validation finished", port.Fields{
		"accepted": len(accepted),
		"rejected": rejected,
	})
	return accepted, rejected
}

// rejectReason returns a short human reason, or "" for a keeper.
func (uc *ValidateListingsUseCase) rejectReason(listing domain.Listing) string {
	if strings.TrimSpace(listing.SourceURL) == "" {
		return "missing source URL"
	}
	if strings.TrimSpace(listing.Title) == "" {
		return "missing title"
	}
	if listing.PriceVND != nil && *listing.PriceVND > maxPlausiblePriceVND {
		return "price above plausibility ceiling"
	}
	if !uc.priceSane(listing) {
		return "price per m2 outside district bounds"
	}
	if uc.spamScore(listing) >= spamRejectThreshold {
		return "broker boilerplate"
	}
	return ""
}

// priceSane rejects per-m² prices more than 3x outside the district
// table. Districts missing from the table use the citywide defaults.
func (uc *ValidateListingsUseCase) priceSane(listing domain.Listing) bool {
	if listing.PricePerM2 == nil || listing.PriceVND == nil || *listing.PriceVND < saleFloorVND {
		return true
	}

	bounds, ok := constants.DistrictPriceRanges[vntext.CanonicalDistrict(listing.District)]
	if !ok {
		bounds = constants.PricePerM2Range{
			Min: constants.DefaultPricePerM2Min,
			Max: constants.DefaultPricePerM2Max,
		}
	}

	perM2Million := float64(*listing.PricePerM2) / 1_000_000
	return perM2Million >= float64(bounds.Min)/3 && perM2Million <= float64(bounds.Max)*3
}

// spamScore counts distinct broker phrases in title and description.
// Accented and folded spellings of the same phrase count once.
func (uc *ValidateListingsUseCase) spamScore(listing domain.Listing) int {
	content := vntext.Fold(listing.Title + " " + listing.Description)

	hits := make(map[string]struct{})
	for _, keyword := range constants.SpamKeywords {
		folded := vntext.Fold(keyword)
		if _, dup := hits[folded]; dup {
			continue
		}
		if vntext.ContainsPhrase(content, folded) {
			hits[folded] = struct{}{}
		}
	}
	return len(hits)
}

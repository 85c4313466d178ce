package usecase

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/jian131/agent-bds/internal/constants"
	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/internal/vntext"
)

// GenerateTargetsUseCase builds one crawl target per enabled platform.
// A platform with no mapping for the intent's city degrades to a
// city-less or keyword-only URL; it is never omitted.
type GenerateTargetsUseCase struct {
	platforms []constants.PlatformSpec
}

// NewGenerateTargetsUseCase keeps only the platforms named in enabled,
// or the whole registry when enabled is empty.
func NewGenerateTargetsUseCase(enabled []string) *GenerateTargetsUseCase {
	if len(enabled) == 0 {
		return &GenerateTargetsUseCase{platforms: constants.Platforms}
	}

	allow := make(map[string]struct{}, len(enabled))
	for _, id := range enabled {
		allow[strings.ToLower(strings.TrimSpace(id))] = struct{}{}
	}

	var keep []constants.PlatformSpec
	for _, spec := range constants.Platforms {
		if _, ok := allow[spec.ID]; ok {
			keep = append(keep, spec)
		}
	}
	return &GenerateTargetsUseCase{platforms: keep}
}

func (uc *GenerateTargetsUseCase) Execute(ctx context.Context, intent domain.SearchIntent) []domain.SourceTarget {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GenerateTargets",
		"city":     intent.City,
	})

	targets := make([]domain.SourceTarget, 0, len(uc.platforms))
	for _, spec := range uc.platforms {
		targets = append(targets, domain.SourceTarget{
			Platform: spec.ID,
			URL:      buildPlatformURL(spec, intent),
			Priority: spec.Priority,
			Hint:     domain.FetchHint(spec.Hint),
		})
	}

	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].Priority < targets[j].Priority
	})

	ucLogger.Debug("Generated crawl targets", port.Fields{"count": len(targets)})
	return targets
}

func buildPlatformURL(spec constants.PlatformSpec, intent domain.SearchIntent) string {
	switch spec.ID {
	case constants.PlatformChotot:
		return buildChototURL(intent)
	case constants.PlatformBatdongsan:
		return buildBatdongsanURL(spec.BaseURL, intent)
	case constants.PlatformMogi:
		return buildMogiURL(spec.BaseURL, intent)
	case constants.PlatformAlonhadat:
		return buildAlonhadatURL(spec.BaseURL, intent)
	case constants.PlatformNhadat24h:
		return buildNhadat24hURL(spec.BaseURL, intent)
	default:
		return spec.BaseURL
	}
}

// citySlug resolves the platform slug for a city, falling back to a
// folded hyphen slug for cities missing from the table.
func citySlug(slugs map[string]string, city string) string {
	if city == "" {
		return ""
	}
	if slug, ok := slugs[vntext.Compact(city)]; ok {
		return slug
	}
	return vntext.Slug(city)
}

// buildChototURL targets the public ad-listing gateway rather than the
// HTML site; it returns structured JSON.
func buildChototURL(intent domain.SearchIntent) string {
	u, err := url.Parse(constants.ChototAPIBase)
	if err != nil {
		return constants.ChototAPIBase
	}

	q := u.Query()
	q.Set("cg", "1000")
	q.Set("limit", "20")
	if intent.Purpose == domain.PurposeRent {
		q.Set("st", "u,k")
	} else {
		q.Set("st", "s,k")
	}
	if code, ok := constants.ChototRegionCodes[vntext.Compact(intent.City)]; ok {
		q.Set("region_v2", strconv.Itoa(code))
	}
	if intent.PriceMin != nil {
		q.Set("price_min", strconv.FormatInt(*intent.PriceMin, 10))
	}
	if intent.PriceMax != nil {
		q.Set("price_max", strconv.FormatInt(*intent.PriceMax, 10))
	}
	if intent.AreaMin != nil {
		q.Set("area_min", strconv.Itoa(int(*intent.AreaMin)))
	}
	if intent.AreaMax != nil {
		q.Set("area_max", strconv.Itoa(int(*intent.AreaMax)))
	}
	if kw := keyword(intent); kw != "" {
		q.Set("key", kw)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func buildBatdongsanURL(base string, intent domain.SearchIntent) string {
	path := "/nha-dat-ban"
	if intent.Purpose == domain.PurposeRent {
		path = "/nha-dat-cho-thue"
	}
	if slug := citySlug(constants.BatdongsanCitySlugs, intent.City); slug != "" {
		path += "/" + slug
	}

	u, err := url.Parse(base + path)
	if err != nil {
		return base + path
	}

	q := u.Query()
	if intent.PriceMin != nil {
		q.Set("giaFrom", formatTy(*intent.PriceMin))
	}
	if intent.PriceMax != nil {
		q.Set("giaTo", formatTy(*intent.PriceMax))
	}
	if intent.AreaMin != nil {
		q.Set("dienTichFrom", trimFloat(*intent.AreaMin))
	}
	if intent.AreaMax != nil {
		q.Set("dienTichTo", trimFloat(*intent.AreaMax))
	}
	if kw := keyword(intent); kw != "" {
		q.Set("keyword", kw)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func buildMogiURL(base string, intent domain.SearchIntent) string {
	path := "/mua-nha-dat"
	if intent.Purpose == domain.PurposeRent {
		path = "/thue-nha-dat"
	}
	if slug := citySlug(constants.MogiCitySlugs, intent.City); slug != "" {
		path += "/" + slug
	}

	u, err := url.Parse(base + path)
	if err != nil {
		return base + path
	}

	q := u.Query()
	if intent.PriceMin != nil {
		q.Set("cp", formatTy(*intent.PriceMin))
	}
	if intent.PriceMax != nil {
		q.Set("dp", formatTy(*intent.PriceMax))
	}
	if intent.AreaMin != nil {
		q.Set("ca", strconv.Itoa(int(*intent.AreaMin)))
	}
	if intent.AreaMax != nil {
		q.Set("da", strconv.Itoa(int(*intent.AreaMax)))
	}
	if kw := keyword(intent); kw != "" {
		q.Set("kw", kw)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// buildAlonhadatURL encodes filters as path segments, the only shape
// that site understands.
func buildAlonhadatURL(base string, intent domain.SearchIntent) string {
	path := "/nha-dat/can-ban"
	if intent.Purpose == domain.PurposeRent {
		path = "/nha-dat/cho-thue"
	}
	if slug := citySlug(constants.AlonhadatCitySlugs, intent.City); slug != "" {
		path += "/" + slug
	}

	var segments []string
	if intent.PriceMin != nil {
		segments = append(segments, fmt.Sprintf("gia-tu-%s-ty", formatTy(*intent.PriceMin)))
	}
	if intent.PriceMax != nil {
		segments = append(segments, fmt.Sprintf("gia-den-%s-ty", formatTy(*intent.PriceMax)))
	}

	out := base + path
	if len(segments) > 0 {
		out += "/" + strings.Join(segments, "/")
	}
	return out
}

func buildNhadat24hURL(base string, intent domain.SearchIntent) string {
	path := "/ban-nha-dat"
	if intent.Purpose == domain.PurposeRent {
		path = "/cho-thue-nha-dat"
	}
	if slug := citySlug(constants.Nhadat24hCitySlugs, intent.City); slug != "" {
		path += "/" + slug
	}
	return base + path
}

// keyword is the free-text carried to platforms with keyword search.
func keyword(intent domain.SearchIntent) string {
	if len(intent.Keywords) == 0 {
		return strings.TrimSpace(intent.Query)
	}
	return intent.Keywords[0]
}

// formatTy renders a VND amount in "tỷ" units without a trailing zero
// fraction: 2_500_000_000 → "2.5", 2_000_000_000 → "2".
func formatTy(vnd int64) string {
	return trimFloat(float64(vnd) / 1_000_000_000)
}

// trimFloat rounds to two decimals before shortening, keeping the
// tolerance arithmetic from leaking float dust into URLs.
func trimFloat(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

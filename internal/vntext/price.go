package vntext

import (
	"regexp"
	"strconv"
	"strings"
)

// Markers that mean "price on request". A listing carrying one is
// priced nil on purpose, never zero.
var negotiableMarkers = []string{"thỏa thuận", "thoả thuận", "liên hệ", "thương lượng"}

// Ordered price patterns. The combined tỷ+triệu form must run before
// the bare tỷ form or "3 tỷ 200 triệu" collapses to 3 tỷ.
var (
	reTyTrieu    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*tỷ\s*(\d+(?:\.\d+)?)\s*triệu`)
	reTy         = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*tỷ`)
	reTrieuThang = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*triệu\s*/\s*tháng`)
	reTrieu      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*triệu`)
	reNghin      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*nghìn`)
	reDottedVND  = regexp.MustCompile(`(\d{1,3}(?:\.\d{3})+)\s*(?:đ|vnđ|vnd|₫)`)
	reSeparated  = regexp.MustCompile(`(\d{1,3}(?:[,.]\d{3})+)`)
	reBareDigits = regexp.MustCompile(`(\d{7,})`)
)

const (
	billion  = 1_000_000_000
	million  = 1_000_000
	thousand = 1_000
)

// ParsePrice reads one Vietnamese price expression and returns the
// amount in VND. Negotiable markers yield (nil, true): recognized but
// deliberately priceless.
//
//	"3,5 tỷ"        → 3_500_000_000
//	"3 tỷ 200 triệu" → 3_200_000_000
//	"12 triệu/tháng" → 12_000_000
//	"25.000.000 đ"   → 25_000_000
//	"Thỏa thuận"     → nil, negotiable
func ParsePrice(text string) (*int64, bool) {
	if text == "" {
		return nil, false
	}

	t := normalizePriceText(text)

	for _, marker := range negotiableMarkers {
		if strings.Contains(t, marker) {
			return nil, true
		}
	}

	if m := reTyTrieu.FindStringSubmatch(t); m != nil {
		ty := mustFloat(m[1])
		trieu := mustFloat(m[2])
		return vnd(ty*billion + trieu*million), false
	}
	if m := reTy.FindStringSubmatch(t); m != nil {
		return vnd(mustFloat(m[1]) * billion), false
	}
	if m := reTrieuThang.FindStringSubmatch(t); m != nil {
		return vnd(mustFloat(m[1]) * million), false
	}
	if m := reTrieu.FindStringSubmatch(t); m != nil {
		return vnd(mustFloat(m[1]) * million), false
	}
	if m := reNghin.FindStringSubmatch(t); m != nil {
		return vnd(mustFloat(m[1]) * thousand), false
	}
	if m := reDottedVND.FindStringSubmatch(t); m != nil {
		raw := strings.ReplaceAll(m[1], ".", "")
		return vnd(mustFloat(raw)), false
	}
	if m := reSeparated.FindStringSubmatch(t); m != nil {
		raw := strings.NewReplacer(",", "", ".", "").Replace(m[1])
		return vnd(mustFloat(raw)), false
	}
	if m := reBareDigits.FindStringSubmatch(t); m != nil {
		return vnd(mustFloat(m[1])), false
	}

	return nil, false
}

var (
	rePriceRange = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[-–]\s*(\d+(?:\.\d+)?)\s*(tỷ|triệu)`)
	rePriceFrom  = regexp.MustCompile(`từ\s*(\d+(?:\.\d+)?)\s*(tỷ|triệu)`)
	rePriceTo    = regexp.MustCompile(`(?:dưới|đến|tối đa)\s*(\d+(?:\.\d+)?)\s*(tỷ|triệu)`)
)

// ParsePriceRange extracts explicit price bounds.
//
//	"2-3 tỷ"   → both
//	"từ 2 tỷ"  → min only
//	"dưới 3 tỷ" → max only
//
// A bare single price is not a range; the intent parser expands it
// with the configured tolerance.
func ParsePriceRange(text string) (*int64, *int64) {
	if text == "" {
		return nil, nil
	}

	t := normalizePriceText(text)

	if m := rePriceRange.FindStringSubmatch(t); m != nil {
		mul := unitMultiplier(m[3])
		return vnd(mustFloat(m[1]) * mul), vnd(mustFloat(m[2]) * mul)
	}
	if m := rePriceFrom.FindStringSubmatch(t); m != nil {
		return vnd(mustFloat(m[1]) * unitMultiplier(m[2])), nil
	}
	if m := rePriceTo.FindStringSubmatch(t); m != nil {
		return nil, vnd(mustFloat(m[1]) * unitMultiplier(m[2]))
	}

	return nil, nil
}

// normalizePriceText lowercases and turns decimal commas into dots, so
// "3,5 Tỷ" parses like "3.5 tỷ". NBSP shows up in scraped price tags.
func normalizePriceText(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.ReplaceAll(t, " ", " ")
	return strings.ReplaceAll(t, ",", ".")
}

func unitMultiplier(unit string) float64 {
	if unit == "tỷ" {
		return billion
	}
	return million
}

func mustFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func vnd(v float64) *int64 {
	n := int64(v)
	return &n
}

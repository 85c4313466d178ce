package vntext

import (
	"regexp"
	"strings"
)

var (
	reAreaM2   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*m2`)
	reAreaBare = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

	reAreaRange = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[-–]\s*(\d+(?:\.\d+)?)\s*m2`)
	reAreaFrom  = regexp.MustCompile(`từ\s*(\d+(?:\.\d+)?)\s*m2`)
	reAreaTo    = regexp.MustCompile(`(?:dưới|đến|tối đa)\s*(\d+(?:\.\d+)?)\s*m2`)
)

// Plausible bounds for a bare number read as square meters.
const (
	minPlausibleAreaM2 = 10
	maxPlausibleAreaM2 = 10000
)

// ParseArea reads an area expression and returns square meters.
//
//	"85.5 m2"          → 85.5
//	"85,5m²"           → 85.5
//	"Diện tích: 100m2" → 100
//
// A bare number passes only inside the plausible range.
func ParseArea(text string) *float64 {
	if text == "" {
		return nil
	}

	t := normalizeAreaText(text)

	if m := reAreaM2.FindStringSubmatch(t); m != nil {
		v := mustFloat(m[1])
		return &v
	}
	if m := reAreaBare.FindStringSubmatch(t); m != nil {
		v := mustFloat(m[1])
		if v >= minPlausibleAreaM2 && v <= maxPlausibleAreaM2 {
			return &v
		}
	}

	return nil
}

// ParseAreaRange extracts explicit area bounds, same grammar as
// ParsePriceRange.
func ParseAreaRange(text string) (*float64, *float64) {
	if text == "" {
		return nil, nil
	}

	t := normalizeAreaText(text)

	if m := reAreaRange.FindStringSubmatch(t); m != nil {
		lo := mustFloat(m[1])
		hi := mustFloat(m[2])
		return &lo, &hi
	}
	if m := reAreaFrom.FindStringSubmatch(t); m != nil {
		v := mustFloat(m[1])
		return &v, nil
	}
	if m := reAreaTo.FindStringSubmatch(t); m != nil {
		v := mustFloat(m[1])
		return nil, &v
	}

	return nil, nil
}

// normalizeAreaText unifies the square-meter spellings and pads "m2"
// so "85m2" still splits into number and unit.
func normalizeAreaText(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.ReplaceAll(t, " ", " ")
	t = strings.ReplaceAll(t, ",", ".")
	t = strings.ReplaceAll(t, "²", "2")
	t = strings.ReplaceAll(t, "㎡", " m2 ")
	return strings.ReplaceAll(t, "m2", " m2 ")
}

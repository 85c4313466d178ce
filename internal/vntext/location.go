package vntext

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jian131/agent-bds/internal/constants"
)

var (
	reHCMNumbered = regexp.MustCompile(`\bq\.?\s*(\d{1,2})\b`)
	reWard        = regexp.MustCompile(`(?i)(?:phường|xã|p\.)\s*([^,]+)`)
)

// DetectCity finds a supported city in free text by alias, falling
// back to district names when no alias matches ("căn hộ Cầu Giấy" is a
// Hà Nội query even without the city spelled out).
func DetectCity(text string) string {
	folded := Fold(text)

	for _, city := range constants.CityOrder {
		for _, alias := range constants.CityAliases[city] {
			if ContainsPhrase(folded, Fold(alias)) {
				return city
			}
		}
	}

	for _, district := range constants.HanoiDistricts {
		if ContainsPhrase(folded, Fold(district)) {
			return "Hà Nội"
		}
	}
	for _, district := range constants.HCMDistricts {
		if ContainsPhrase(folded, Fold(district)) {
			return "Hồ Chí Minh"
		}
	}

	return ""
}

// DetectDistrict finds a district in free text. A known city narrows
// the search to its table; empty city scans both. HCM numbered
// districts also match the "Q.7"/"q7"/"quận 7" spellings.
func DetectDistrict(text, city string) string {
	folded := Fold(text)

	if city == "" || city == "Hà Nội" {
		for _, district := range constants.HanoiDistricts {
			if ContainsPhrase(folded, Fold(district)) {
				return district
			}
		}
	}

	if city == "" || city == "Hồ Chí Minh" {
		for _, district := range constants.HCMDistricts {
			if ContainsPhrase(folded, Fold(district)) {
				return district
			}
		}
		if m := reHCMNumbered.FindStringSubmatch(folded); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 12 {
				return "Quận " + m[1]
			}
		}
	}

	return ""
}

// CityOfDistrict returns the city a canonical district belongs to.
func CityOfDistrict(district string) string {
	folded := Fold(district)
	for city, districts := range constants.DistrictsByCity {
		for _, d := range districts {
			if Fold(d) == folded {
				return city
			}
		}
	}
	return ""
}

// Administrative prefixes platforms glue onto district names. Stripped
// only after an exact match failed, so "Quận 7" (canonical with
// prefix) is never mangled.
var districtPrefixes = []string{"quan ", "huyen ", "thi xa ", "q. "}

// CanonicalDistrict maps any spelling of a known district to its table
// form ("cau giay" → "Cầu Giấy", "Quận Cầu Giấy" → "Cầu Giấy").
// Unknown names are title-cased as-is so downstream comparisons stay
// consistent.
func CanonicalDistrict(name string) string {
	if name == "" {
		return ""
	}
	folded := Fold(name)

	if d := districtByFold(folded); d != "" {
		return d
	}
	for _, prefix := range districtPrefixes {
		if rest, ok := strings.CutPrefix(folded, prefix); ok {
			if d := districtByFold(rest); d != "" {
				return d
			}
		}
	}
	return cases.Title(language.Vietnamese).String(strings.TrimSpace(name))
}

func districtByFold(folded string) string {
	for _, districts := range constants.DistrictsByCity {
		for _, d := range districts {
			if Fold(d) == folded {
				return d
			}
		}
	}
	return ""
}

// CanonicalCity maps any spelling of a supported city to its canonical
// form. Unknown cities come back trimmed, title-cased.
func CanonicalCity(name string) string {
	if name == "" {
		return ""
	}
	folded := Fold(name)

	for _, city := range constants.CityOrder {
		if Fold(city) == folded {
			return city
		}
		for _, alias := range constants.CityAliases[city] {
			if Fold(alias) == folded {
				return city
			}
		}
	}
	return cases.Title(language.Vietnamese).String(strings.TrimSpace(name))
}

// DetectWard captures the ward after a "phường"/"xã"/"P." marker, up
// to the next comma.
func DetectWard(text string) string {
	m := reWard.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

package vntext

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jian131/agent-bds/internal/constants"
	"github.com/jian131/agent-bds/internal/core/domain"
)

var (
	reBedrooms  = regexp.MustCompile(`(\d+)\s*(?:phòng ngủ|pn)`)
	reBathrooms = regexp.MustCompile(`(\d+)\s*(?:phòng tắm|toilet|wc)`)
	reFloors    = regexp.MustCompile(`(\d+)\s*tầng`)
)

// DetectPropertyType classifies free text against the keyword table.
// Matching runs on lowercased text; the table carries accented and
// plain spellings both.
func DetectPropertyType(text string) domain.PropertyType {
	if text == "" {
		return domain.PropertyUnknown
	}

	t := strings.ToLower(text)
	for _, typ := range constants.PropertyTypeOrder {
		for _, kw := range constants.PropertyTypeKeywords[typ] {
			if strings.Contains(t, kw) {
				return domain.PropertyType(typ)
			}
		}
	}
	return domain.PropertyUnknown
}

// ParseBedrooms reads a bedroom count: "3PN", "3 phòng ngủ".
func ParseBedrooms(text string) *int {
	return firstInt(reBedrooms, text)
}

// ParseBathrooms reads a bathroom count: "2 WC", "2 phòng tắm".
func ParseBathrooms(text string) *int {
	return firstInt(reBathrooms, text)
}

// ParseFloors reads a floor count: "nhà 4 tầng".
func ParseFloors(text string) *int {
	return firstInt(reFloors, text)
}

func firstInt(re *regexp.Regexp, text string) *int {
	if text == "" {
		return nil
	}
	m := re.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

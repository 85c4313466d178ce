package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/internal/vntext"
)

// flexNumber tolerates the model writing a number bare, quoted or as
// null. Anything unparseable decodes to empty instead of failing the
// whole payload.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "null" {
		s = ""
	}
	*n = flexNumber(s)
	return nil
}

func (n flexNumber) int64() *int64 {
	if n == "" {
		return nil
	}
	if v, err := strconv.ParseInt(string(n), 10, 64); err == nil && v > 0 {
		return &v
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil && f > 0 {
		v := int64(f)
		return &v
	}
	return nil
}

func (n flexNumber) float64() *float64 {
	if n == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil && f > 0 {
		return &f
	}
	return nil
}

// intentPayload mirrors the JSON the prompt asks for.
type intentPayload struct {
	City         string     `json:"city"`
	District     string     `json:"district"`
	Ward         string     `json:"ward"`
	PriceMin     flexNumber `json:"price_min"`
	PriceMax     flexNumber `json:"price_max"`
	AreaMin      flexNumber `json:"area_min"`
	AreaMax      flexNumber `json:"area_max"`
	PropertyType string     `json:"property_type"`
	Bedrooms     flexNumber `json:"bedrooms"`
	Purpose      string     `json:"purpose"`
	Keywords     []string   `json:"keywords"`
}

// decodeIntent reads the model's answer. Markdown fences and prose
// around the JSON object are tolerated; values outside the vocabulary
// are dropped rather than passed through.
func decodeIntent(raw string, vocab port.IntentVocabulary) (domain.SearchIntent, error) {
	jsonText, err := extractJSONObject(raw)
	if err != nil {
		return domain.SearchIntent{}, err
	}

	var payload intentPayload
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return domain.SearchIntent{}, fmt.Errorf("decoding intent payload: %w", err)
	}

	intent := domain.SearchIntent{
		Ward:     strings.TrimSpace(payload.Ward),
		Keywords: cleanKeywords(payload.Keywords),
		PriceMin: payload.PriceMin.int64(),
		PriceMax: payload.PriceMax.int64(),
		AreaMin:  payload.AreaMin.float64(),
		AreaMax:  payload.AreaMax.float64(),
	}

	if city := vntext.CanonicalCity(payload.City); cityInVocab(city, vocab) {
		intent.City = city
	}
	if district := vntext.CanonicalDistrict(payload.District); districtInVocab(district, vocab) {
		intent.District = district
	}

	if typ := strings.ToLower(strings.TrimSpace(payload.PropertyType)); typ != "" {
		for _, allowed := range vocab.PropertyTypes {
			if typ == allowed {
				intent.PropertyType = domain.PropertyType(typ)
				break
			}
		}
	}

	if bedrooms := payload.Bedrooms.int64(); bedrooms != nil && *bedrooms > 0 && *bedrooms < 20 {
		n := int(*bedrooms)
		intent.Bedrooms = &n
	}

	switch strings.ToLower(strings.TrimSpace(payload.Purpose)) {
	case "rent":
		intent.Purpose = domain.PurposeRent
	case "buy":
		intent.Purpose = domain.PurposeBuy
	}

	return intent, nil
}

// extractJSONObject cuts the outermost {...} out of the model answer,
// surviving ```json fences and stray prose.
func extractJSONObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in model output")
	}
	return raw[start : end+1], nil
}

func cityInVocab(city string, vocab port.IntentVocabulary) bool {
	for _, c := range vocab.Cities {
		if c == city {
			return true
		}
	}
	return false
}

func districtInVocab(district string, vocab port.IntentVocabulary) bool {
	for _, districts := range vocab.Districts {
		for _, d := range districts {
			if d == district {
				return true
			}
		}
	}
	return false
}

func cleanKeywords(keywords []string) []string {
	var out []string
	for _, k := range keywords {
		if trimmed := strings.TrimSpace(k); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

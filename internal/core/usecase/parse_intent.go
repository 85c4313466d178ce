package usecase

import (
	"context"
	"math"
	"strings"

	"github.com/jian131/agent-bds/internal/constants"
	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/internal/vntext"
)

// ParseIntentUseCase turns a free-text query into a SearchIntent. The
// language model is tried first when configured; any model failure
// falls through to the deterministic rules, so parsing never fails.
type ParseIntentUseCase struct {
	llm            port.IntentLLMPort
	vocab          port.IntentVocabulary
	priceTolerance float64
}

// NewParseIntentUseCase wires the parser. llm may be nil, which skips
// straight to the rules path.
func NewParseIntentUseCase(llm port.IntentLLMPort, priceTolerance float64) *ParseIntentUseCase {
	return &ParseIntentUseCase{
		llm: llm,
		vocab: port.IntentVocabulary{
			Cities:    constants.CityOrder,
			Districts: constants.DistrictsByCity,
			PropertyTypes: []string{
				string(domain.PropertyApartment),
				string(domain.PropertyHouse),
				string(domain.PropertyVilla),
				string(domain.PropertyTownhouse),
				string(domain.PropertyLand),
			},
		},
		priceTolerance: priceTolerance,
	}
}

func (uc *ParseIntentUseCase) Execute(ctx context.Context, query string) domain.SearchIntent {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "ParseIntent",
		"query":    query,
	})

	if uc.llm != nil {
		parsed, err := uc.llm.ParseIntent(ctx, query, uc.vocab)
		if err == nil {
			intent := uc.finalize(parsed, query, domain.IntentSourceLLM)
			ucLogger.Info("Intent parsed by language model", port.Fields{
				"city":     intent.City,
				"district": intent.District,
				"type":     string(intent.PropertyType),
			})
			return intent
		}
		ucLogger.Warn("Language model parse failed, falling back to rules", port.Fields{
			"error": err.Error(),
		})
	}

	intent := uc.finalize(uc.parseWithRules(query), query, domain.IntentSourceRules)
	ucLogger.Info("Intent parsed by rules", port.Fields{
		"city":     intent.City,
		"district": intent.District,
		"type":     string(intent.PropertyType),
	})
	return intent
}

// parseWithRules fills every intent field it can from the dictionaries
// and regexes in vntext.
func (uc *ParseIntentUseCase) parseWithRules(query string) domain.SearchIntent {
	intent := domain.SearchIntent{}

	intent.City = vntext.DetectCity(query)
	city := intent.City
	if city == "" {
		city = constants.DefaultCity
	}
	intent.District = vntext.DetectDistrict(query, city)
	intent.Ward = vntext.DetectWard(query)
	intent.PropertyType = vntext.DetectPropertyType(query)
	intent.Bedrooms = vntext.ParseBedrooms(query)

	intent.PriceMin, intent.PriceMax = vntext.ParsePriceRange(query)
	if intent.PriceMin == nil && intent.PriceMax == nil {
		if price, negotiable := vntext.ParsePrice(query); price != nil && !negotiable {
			intent.PriceMin, intent.PriceMax = uc.expand(*price)
		}
	}

	intent.AreaMin, intent.AreaMax = vntext.ParseAreaRange(query)
	if intent.AreaMin == nil && intent.AreaMax == nil {
		if area := vntext.ParseArea(query); area != nil {
			lo := *area * (1 - uc.priceTolerance)
			hi := *area * (1 + uc.priceTolerance)
			intent.AreaMin, intent.AreaMax = &lo, &hi
		}
	}

	return intent
}

// expand widens a single "around X" price into a symmetric range.
// Rounding keeps 2 tỷ × 0.7 at exactly 1.4 tỷ despite float error.
func (uc *ParseIntentUseCase) expand(price int64) (*int64, *int64) {
	lo := int64(math.Round(float64(price) * (1 - uc.priceTolerance)))
	hi := int64(math.Round(float64(price) * (1 + uc.priceTolerance)))
	return &lo, &hi
}

// finalize applies the invariants shared by both parse paths: canonical
// location spellings, the default city, a purpose, and keywords that
// always carry the raw query.
func (uc *ParseIntentUseCase) finalize(intent domain.SearchIntent, query string, source domain.IntentSource) domain.SearchIntent {
	intent.Query = query
	intent.Source = source

	if intent.City == "" {
		intent.City = vntext.DetectCity(query)
	}
	if intent.City == "" {
		intent.City = constants.DefaultCity
	}
	intent.City = vntext.CanonicalCity(intent.City)
	if intent.District != "" {
		intent.District = vntext.CanonicalDistrict(intent.District)
	}

	if intent.PropertyType == "" {
		intent.PropertyType = domain.PropertyUnknown
	}

	if intent.Purpose == "" {
		intent.Purpose = domain.PurposeBuy
		folded := vntext.Fold(query)
		if vntext.ContainsPhrase(folded, "thue") {
			intent.Purpose = domain.PurposeRent
		}
	}

	if intent.PriceMin != nil && intent.PriceMax != nil && *intent.PriceMin > *intent.PriceMax {
		intent.PriceMin, intent.PriceMax = intent.PriceMax, intent.PriceMin
	}
	// Equal bounds mean "around X" regardless of which path read them.
	if intent.PriceMin != nil && intent.PriceMax != nil && *intent.PriceMin == *intent.PriceMax {
		intent.PriceMin, intent.PriceMax = uc.expand(*intent.PriceMin)
	}

	trimmed := strings.TrimSpace(query)
	if trimmed != "" && !containsKeyword(intent.Keywords, trimmed) {
		intent.Keywords = append([]string{trimmed}, intent.Keywords...)
	}

	return intent
}

func containsKeyword(keywords []string, keyword string) bool {
	for _, k := range keywords {
		if strings.EqualFold(k, keyword) {
			return true
		}
	}
	return false
}

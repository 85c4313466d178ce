package domain

// PropertyType classifies a listing by the kind of property offered.
type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyHouse     PropertyType = "house"
	PropertyVilla     PropertyType = "villa"
	PropertyTownhouse PropertyType = "townhouse"
	PropertyLand      PropertyType = "land"
	PropertyUnknown   PropertyType = "unknown"
)

// Purpose distinguishes buying from renting.
type Purpose string

const (
	PurposeBuy  Purpose = "buy"
	PurposeRent Purpose = "rent"
)

// IntentSource records which strategy filled the structured fields.
type IntentSource string

const (
	IntentSourceLLM   IntentSource = "llm"
	IntentSourceRules IntentSource = "rules"
)

// SearchIntent is the structured reading of a free-text query.
// Immutable after creation. A parse that extracts nothing still yields
// a valid intent carrying the raw query as keywords.
type SearchIntent struct {
	Query    string
	City     string
	District string
	Ward     string

	PriceMin *int64 // VND
	PriceMax *int64
	AreaMin  *float64 // m²
	AreaMax  *float64

	PropertyType PropertyType
	Bedrooms     *int
	Purpose      Purpose

	Keywords []string
	Source   IntentSource
}

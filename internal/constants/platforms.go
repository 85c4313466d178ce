package constants

// Platform identifiers. Adding a platform means one PlatformSpec entry,
// one slug table and one selector map in the extractor config.
const (
	PlatformChotot     = "chotot"
	PlatformBatdongsan = "batdongsan"
	PlatformMogi       = "mogi"
	PlatformAlonhadat  = "alonhadat"
	PlatformNhadat24h  = "nhadat24h"
)

// Fetch hints telling the dispatcher which fetcher to use. The values
// mirror domain.FetchHint.
const (
	FetchHintStatic  = "static"
	FetchHintBrowser = "browser"
	FetchHintJSONAPI = "jsonapi"
)

// PlatformSpec describes one listing site.
type PlatformSpec struct {
	ID       string
	Name     string
	BaseURL  string
	Priority int // lower is dispatched and shown first
	Hint     string
}

// Platforms is the full registry, ordered by priority. The config layer
// filters it down to the enabled set.
var Platforms = []PlatformSpec{
	{ID: PlatformChotot, Name: "Chợ Tốt", BaseURL: "https://nha.chotot.com", Priority: 1, Hint: FetchHintJSONAPI},
	{ID: PlatformBatdongsan, Name: "Batdongsan", BaseURL: "https://batdongsan.com.vn", Priority: 2, Hint: FetchHintBrowser},
	{ID: PlatformMogi, Name: "Mogi", BaseURL: "https://mogi.vn", Priority: 3, Hint: FetchHintStatic},
	{ID: PlatformAlonhadat, Name: "Alo Nhà Đất", BaseURL: "https://alonhadat.com.vn", Priority: 4, Hint: FetchHintStatic},
	{ID: PlatformNhadat24h, Name: "Nhadat24h", BaseURL: "https://nhadat24h.net", Priority: 5, Hint: FetchHintStatic},
}

// ChototAPIBase is the public ad-listing gateway; listing pages live on
// nha.chotot.com, search goes through the JSON API.
const ChototAPIBase = "https://gateway.chotot.com/v1/public/ad-listing"

// ChototImageBase prefixes the bare image names the gateway returns.
const ChototImageBase = "https://cdn.chotot.com/full/"

// ChototRegionCodes maps folded, space-stripped city names to the
// region_v2 codes of the chotot gateway.
var ChototRegionCodes = map[string]int{
	"hanoi":     12000,
	"hcm":       13000,
	"hochiminh": 13000,
	"saigon":    13000,
	"danang":    43000,
	"haiphong":  31000,
	"cantho":    92000,
	"bienhoa":   75000,
}

// Per-platform city slug tables, keyed by folded, space-stripped city
// names. Cities missing from a table fall back to a folded hyphen slug.
var (
	BatdongsanCitySlugs = map[string]string{
		"hanoi":     "ha-noi",
		"hcm":       "tp-hcm",
		"hochiminh": "tp-hcm",
		"saigon":    "tp-hcm",
		"danang":    "da-nang",
		"haiphong":  "hai-phong",
	}

	MogiCitySlugs = map[string]string{
		"hanoi":     "ha-noi",
		"hcm":       "ho-chi-minh",
		"hochiminh": "ho-chi-minh",
		"saigon":    "ho-chi-minh",
		"danang":    "da-nang",
		"haiphong":  "hai-phong",
		"cantho":    "can-tho",
		"bienhoa":   "dong-nai",
	}

	AlonhadatCitySlugs = map[string]string{
		"hanoi":     "ha-noi",
		"hcm":       "tp-hcm",
		"hochiminh": "tp-hcm",
		"saigon":    "tp-hcm",
		"danang":    "da-nang",
		"haiphong":  "hai-phong",
	}

	Nhadat24hCitySlugs = map[string]string{
		"hanoi":     "ha-noi",
		"hcm":       "ho-chi-minh",
		"hochiminh": "ho-chi-minh",
		"saigon":    "ho-chi-minh",
		"danang":    "da-nang",
	}
)

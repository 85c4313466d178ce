package constants

// Property type values. They mirror domain.PropertyType.
const (
	PropertyApartment = "apartment"
	PropertyHouse     = "house"
	PropertyVilla     = "villa"
	PropertyTownhouse = "townhouse"
	PropertyLand      = "land"
	PropertyUnknown   = "unknown"
)

// PropertyTypeOrder fixes the detection order. More specific phrases
// come first so "nhà phố" lands on townhouse, not house.
var PropertyTypeOrder = []string{
	PropertyApartment,
	PropertyVilla,
	PropertyTownhouse,
	PropertyHouse,
	PropertyLand,
}

// PropertyTypeKeywords maps each type to the phrases sellers use,
// accented and plain spellings both, matched as substrings of the
// lowercased text.
var PropertyTypeKeywords = map[string][]string{
	PropertyApartment: {"chung cư", "chung cu", "căn hộ", "can ho", "apartment", "cc"},
	PropertyVilla:     {"biệt thự", "biet thu", "villa"},
	PropertyTownhouse: {"nhà phố", "nha pho", "mặt phố", "mat pho", "mặt đường", "shophouse", "liền kề", "lien ke", "townhouse"},
	PropertyHouse:     {"nhà riêng", "nha rieng", "nhà mặt tiền", "nha mat tien"},
	PropertyLand:      {"đất nền", "dat nen", "đất thổ cư", "dat tho cu", "đất", "land"},
}

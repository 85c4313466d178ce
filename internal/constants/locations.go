package constants

// DefaultCity is assumed when a query names a district but no city.
const DefaultCity = "Hà Nội"

// CityOrder fixes the alias scan order; map iteration is random and
// detection must be deterministic.
var CityOrder = []string{
	"Hà Nội", "Hồ Chí Minh", "Đà Nẵng", "Hải Phòng", "Cần Thơ",
	"Bình Dương", "Đồng Nai", "Bắc Ninh", "Hưng Yên", "Long An",
	"Bà Rịa - Vũng Tàu",
}

// CityAliases maps canonical city names to the spellings people
// actually type. Matching is done on folded text, so the accented
// aliases double as documentation.
var CityAliases = map[string][]string{
	"Hà Nội":            {"hà nội", "ha noi", "hanoi", "hn"},
	"Hồ Chí Minh":       {"hồ chí minh", "ho chi minh", "hcm", "sài gòn", "saigon", "sg", "tp hcm", "tphcm"},
	"Đà Nẵng":           {"đà nẵng", "da nang", "dn"},
	"Hải Phòng":         {"hải phòng", "hai phong", "hp"},
	"Cần Thơ":           {"cần thơ", "can tho", "ct"},
	"Bình Dương":        {"bình dương", "binh duong", "bd"},
	"Đồng Nai":          {"đồng nai", "dong nai"},
	"Bắc Ninh":          {"bắc ninh", "bac ninh"},
	"Hưng Yên":          {"hưng yên", "hung yen"},
	"Long An":           {"long an"},
	"Bà Rịa - Vũng Tàu": {"bà rịa", "vũng tàu", "vung tau", "br-vt"},
}

// HanoiDistricts lists the canonical district names of Hà Nội.
var HanoiDistricts = []string{
	"Ba Đình", "Hoàn Kiếm", "Tây Hồ", "Long Biên", "Cầu Giấy", "Đống Đa",
	"Hai Bà Trưng", "Hoàng Mai", "Thanh Xuân", "Nam Từ Liêm", "Bắc Từ Liêm",
	"Hà Đông", "Thanh Trì", "Gia Lâm", "Đông Anh", "Hoài Đức", "Thanh Oai",
	"Thường Tín", "Sóc Sơn", "Mê Linh", "Đan Phượng", "Quốc Oai",
	"Chương Mỹ", "Phúc Thọ", "Thạch Thất", "Ba Vì", "Phú Xuyên", "Mỹ Đức",
	"Ứng Hòa",
}

// HCMDistricts lists the canonical district names of Hồ Chí Minh.
var HCMDistricts = []string{
	"Quận 1", "Quận 2", "Quận 3", "Quận 4", "Quận 5", "Quận 6", "Quận 7",
	"Quận 8", "Quận 9", "Quận 10", "Quận 11", "Quận 12", "Bình Thạnh",
	"Gò Vấp", "Phú Nhuận", "Tân Bình", "Tân Phú", "Bình Tân", "Thủ Đức",
	"Nhà Bè", "Hóc Môn", "Củ Chi", "Bình Chánh", "Cần Giờ",
}

// DistrictsByCity returns both tables keyed by canonical city name.
var DistrictsByCity = map[string][]string{
	"Hà Nội":      HanoiDistricts,
	"Hồ Chí Minh": HCMDistricts,
}

package constants

// PricePerM2Range bounds the plausible price per square meter for a
// district, in millions of VND.
type PricePerM2Range struct {
	Min int64
	Max int64
}

// Fallback bounds for districts missing from the table, millions of
// VND per m².
const (
	DefaultPricePerM2Min = 20
	DefaultPricePerM2Max = 300
)

// DistrictPriceRanges holds expected price-per-m² bounds per Hà Nội
// district. A parsed price landing far outside its district's range is
// treated as a parse error, not a real ad.
var DistrictPriceRanges = map[string]PricePerM2Range{
	"Ba Đình":      {80, 250},
	"Hoàn Kiếm":    {100, 300},
	"Đống Đa":      {70, 200},
	"Hai Bà Trưng": {60, 180},
	"Tây Hồ":       {80, 250},
	"Cầu Giấy":     {60, 180},
	"Thanh Xuân":   {50, 150},
	"Hoàng Mai":    {40, 120},
	"Long Biên":    {40, 130},
	"Nam Từ Liêm":  {50, 150},
	"Bắc Từ Liêm":  {40, 120},
	"Hà Đông":      {35, 100},
	"Gia Lâm":      {30, 80},
	"Đông Anh":     {25, 70},
	"Thanh Trì":    {30, 80},
	"Hoài Đức":     {25, 70},
	"Đan Phượng":   {20, 60},
	"Mê Linh":      {15, 50},
	"Sóc Sơn":      {10, 40},
	"Thạch Thất":   {15, 50},
	"Quốc Oai":     {15, 45},
	"Chương Mỹ":    {15, 45},
	"Thanh Oai":    {15, 45},
	"Thường Tín":   {15, 45},
	"Phú Xuyên":    {10, 35},
	"Ứng Hòa":      {10, 35},
	"Mỹ Đức":       {10, 30},
	"Ba Vì":        {8, 25},
}

// SpamKeywords flag broker boilerplate. Two distinct hits across
// title+description reject the listing.
var SpamKeywords = []string{
	"môi giới", "mô giới", "moi gioi",
	"ký gửi", "kí gửi", "ky gui",
	"hotline", "liên hệ ngay",
	"đăng tin miễn phí", "nhận đăng tin",
	"cần bán gấp", "siêu hot", "siêu rẻ",
	"giá sốc", "giá shock",
}

// ValidPhonePrefixes are the three-digit prefixes of Vietnamese mobile
// carriers plus the Hà Nội and HCM landline codes.
var ValidPhonePrefixes = []string{
	"032", "033", "034", "035", "036", "037", "038", "039",
	"070", "076", "077", "078", "079",
	"081", "082", "083", "084", "085",
	"056", "058", "059",
	"086", "096", "097", "098", "099",
	"090", "093",
	"091", "094",
	"092",
	"024", "028",
}

package domain

// PlatformCount is the number of stored listings per platform.
type PlatformCount struct {
	Platform string
	Count    int64
}

// DistrictStat aggregates stored listings per district.
type DistrictStat struct {
	District      string
	Count         int64
	AvgPriceVND   *float64
	AvgPricePerM2 *float64
}

// PropertyTypeCount is the number of stored listings per property type.
type PropertyTypeCount struct {
	Type  PropertyType
	Count int64
}

// ScrapeRunStats sums up recent crawl passes.
type ScrapeRunStats struct {
	Runs   int64
	Found  int64
	New    int64
	Failed int64
}

// AnalyticsSummary backs the analytics endpoint.
type AnalyticsSummary struct {
	TotalListings  int64
	ActiveListings int64
	ByPlatform     []PlatformCount
	ByDistrict     []DistrictStat
	ByType         []PropertyTypeCount
	RecentRuns     ScrapeRunStats
}

// MarketComparison sets a district's observed price-per-m² against the
// expected range of the reference table.
type MarketComparison struct {
	District         string
	ListingCount     int64
	AvgPricePerM2    *float64 // VND, observed
	ExpectedMinPerM2 int64    // VND, reference
	ExpectedMaxPerM2 int64
	WithinRange      *bool // nil when no observation
}

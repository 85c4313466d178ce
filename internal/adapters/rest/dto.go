package rest

import (
	"time"

	"github.com/jian131/agent-bds/internal/core/domain"
)

// SearchRequestBody is the POST /search payload. Explicit filters win
// over whatever intent parsing extracts from the query text. Realtime
// switches the response to the SSE stream.
type SearchRequestBody struct {
	Query        string `json:"query"`
	City         string `json:"city,omitempty"`
	District     string `json:"district,omitempty"`
	PropertyType string `json:"property_type,omitempty"`
	PriceMin     *int64 `json:"price_min,omitempty"`
	PriceMax     *int64 `json:"price_max,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Realtime     bool   `json:"realtime,omitempty"`
}

func (b SearchRequestBody) toDomain() domain.SearchRequest {
	return domain.SearchRequest{
		Query:        b.Query,
		City:         b.City,
		District:     b.District,
		PriceMin:     b.PriceMin,
		PriceMax:     b.PriceMax,
		PropertyType: domain.PropertyType(b.PropertyType),
		Limit:        b.Limit,
	}
}

// ListingResponse is the outward shape of one listing.
type ListingResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	PriceText  string   `json:"price_text,omitempty"`
	PriceVND   *int64   `json:"price_vnd,omitempty"`
	PricePerM2 *int64   `json:"price_per_m2,omitempty"`
	AreaText   string   `json:"area_text,omitempty"`
	AreaM2     *float64 `json:"area_m2,omitempty"`

	Address      string   `json:"address,omitempty"`
	Ward         string   `json:"ward,omitempty"`
	District     string   `json:"district,omitempty"`
	City         string   `json:"city,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	LocationCell string   `json:"location_cell,omitempty"`

	ContactName string   `json:"contact_name,omitempty"`
	Phones      []string `json:"phones,omitempty"`
	Zalo        []string `json:"zalo,omitempty"`
	Emails      []string `json:"emails,omitempty"`

	PropertyType string `json:"property_type"`
	Bedrooms     *int   `json:"bedrooms,omitempty"`
	Bathrooms    *int   `json:"bathrooms,omitempty"`
	Floors       *int   `json:"floors,omitempty"`

	Images       []string `json:"images,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`

	SourcePlatform string     `json:"source_platform"`
	SourceURL      string     `json:"source_url"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	CollectedAt    time.Time  `json:"collected_at"`
	Status         string     `json:"status"`
}

func toListingResponse(l domain.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,

		PriceText:  l.PriceText,
		PriceVND:   l.PriceVND,
		PricePerM2: l.PricePerM2,
		AreaText:   l.AreaText,
		AreaM2:     l.AreaM2,

		Address:      l.Address,
		Ward:         l.Ward,
		District:     l.District,
		City:         l.City,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		LocationCell: l.LocationCell,

		ContactName: l.ContactName,
		Phones:      l.Phones,
		Zalo:        l.Zalo,
		Emails:      l.Emails,

		PropertyType: string(l.PropertyType),
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		Floors:       l.Floors,

		Images:       l.Images,
		ThumbnailURL: l.ThumbnailURL,

		SourcePlatform: l.SourcePlatform,
		SourceURL:      l.SourceURL,
		PostedAt:       l.PostedAt,
		CollectedAt:    l.CollectedAt,
		Status:         string(l.Status),
	}
}

func toListingResponses(listings []domain.Listing) []ListingResponse {
	out := make([]ListingResponse, len(listings))
	for i, l := range listings {
		out[i] = toListingResponse(l)
	}
	return out
}

// SearchResponse is the batch answer of POST /search.
type SearchResponse struct {
	Listings           []ListingResponse `json:"listings"`
	Total              int               `json:"total"`
	PlatformsSearched  []string          `json:"platforms_searched"`
	PlatformsSucceeded []string          `json:"platforms_succeeded"`
	Failures           map[string]string `json:"failures,omitempty"`
	SearchTimeMS       int64             `json:"search_time_ms"`
	FromCache          bool              `json:"from_cache"`
}

// NewSearchResponse converts a pipeline result to its wire shape. The
// crawl command shares it so CLI output matches the API.
func NewSearchResponse(result *domain.SearchResult) SearchResponse {
	return toSearchResponse(result)
}

func toSearchResponse(result *domain.SearchResult) SearchResponse {
	resp := SearchResponse{
		Listings:           toListingResponses(result.Listings),
		Total:              result.Total,
		PlatformsSearched:  result.PlatformsSearched,
		PlatformsSucceeded: result.PlatformsSucceeded,
		SearchTimeMS:       result.SearchTimeMS,
		FromCache:          result.FromCache,
	}
	if len(result.Failures) > 0 {
		resp.Failures = make(map[string]string, len(result.Failures))
		for platform, failure := range result.Failures {
			resp.Failures[platform] = string(failure)
		}
	}
	return resp
}

// statusFrame, completeFrame and errorFrame are the data payloads of
// the SSE stream; result frames carry the listing itself.
type statusFrame struct {
	Platform string `json:"platform,omitempty"`
	Message  string `json:"message,omitempty"`
	Count    int    `json:"count,omitempty"`
	Failure  string `json:"failure,omitempty"`
}

type completeFrame struct {
	Total        int      `json:"total"`
	SearchTimeMS int64    `json:"search_time_ms"`
	Platforms    []string `json:"platforms"`
}

type errorFrame struct {
	Message string `json:"message"`
}

// ListingsPageResponse is one page of stored listings.
type ListingsPageResponse struct {
	Data    []ListingResponse `json:"data"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

// SimilarListingsResponse answers the similarity endpoints.
type SimilarListingsResponse struct {
	Data  []ListingResponse `json:"data"`
	Total int               `json:"total"`
}

type PlatformCountResponse struct {
	Platform string `json:"platform"`
	Count    int64  `json:"count"`
}

type DistrictStatResponse struct {
	District      string   `json:"district"`
	Count         int64    `json:"count"`
	AvgPriceVND   *float64 `json:"avg_price_vnd"`
	AvgPricePerM2 *float64 `json:"avg_price_per_m2"`
}

type TypeCountResponse struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type RunStatsResponse struct {
	Runs   int64 `json:"runs"`
	Found  int64 `json:"found"`
	New    int64 `json:"new"`
	Failed int64 `json:"failed"`
}

// AnalyticsResponse is the GET /analytics payload.
type AnalyticsResponse struct {
	TotalListings  int64                   `json:"total_listings"`
	ActiveListings int64                   `json:"active_listings"`
	ByPlatform     []PlatformCountResponse `json:"by_platform"`
	ByDistrict     []DistrictStatResponse  `json:"by_district"`
	ByType         []TypeCountResponse     `json:"by_type"`
	RecentRuns     RunStatsResponse        `json:"recent_runs"`
}

func toAnalyticsResponse(s *domain.AnalyticsSummary) AnalyticsResponse {
	resp := AnalyticsResponse{
		TotalListings:  s.TotalListings,
		ActiveListings: s.ActiveListings,
		ByPlatform:     make([]PlatformCountResponse, len(s.ByPlatform)),
		ByDistrict:     make([]DistrictStatResponse, len(s.ByDistrict)),
		ByType:         make([]TypeCountResponse, len(s.ByType)),
		RecentRuns: RunStatsResponse{
			Runs:   s.RecentRuns.Runs,
			Found:  s.RecentRuns.Found,
			New:    s.RecentRuns.New,
			Failed: s.RecentRuns.Failed,
		},
	}
	for i, p := range s.ByPlatform {
		resp.ByPlatform[i] = PlatformCountResponse{Platform: p.Platform, Count: p.Count}
	}
	for i, d := range s.ByDistrict {
		resp.ByDistrict[i] = DistrictStatResponse{
			District:      d.District,
			Count:         d.Count,
			AvgPriceVND:   d.AvgPriceVND,
			AvgPricePerM2: d.AvgPricePerM2,
		}
	}
	for i, p := range s.ByType {
		resp.ByType[i] = TypeCountResponse{Type: string(p.Type), Count: p.Count}
	}
	return resp
}

// MarketComparisonResponse is one row of GET /analytics/market.
type MarketComparisonResponse struct {
	District         string   `json:"district"`
	ListingCount     int64    `json:"listing_count"`
	AvgPricePerM2    *float64 `json:"avg_price_per_m2"`
	ExpectedMinPerM2 int64    `json:"expected_min_per_m2"`
	ExpectedMaxPerM2 int64    `json:"expected_max_per_m2"`
	WithinRange      *bool    `json:"within_range"`
}

func toMarketResponses(rows []domain.MarketComparison) []MarketComparisonResponse {
	out := make([]MarketComparisonResponse, len(rows))
	for i, row := range rows {
		out[i] = MarketComparisonResponse{
			District:         row.District,
			ListingCount:     row.ListingCount,
			AvgPricePerM2:    row.AvgPricePerM2,
			ExpectedMinPerM2: row.ExpectedMinPerM2,
			ExpectedMaxPerM2: row.ExpectedMaxPerM2,
			WithinRange:      row.WithinRange,
		}
	}
	return out
}

// ScrapeRunResponse is one row of GET /analytics/runs.
type ScrapeRunResponse struct {
	ID           string     `json:"id"`
	Platform     string     `json:"platform"`
	Query        string     `json:"query"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	DurationMS   int64      `json:"duration_ms"`
	Found        int        `json:"found"`
	New          int        `json:"new"`
	Failed       int        `json:"failed"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

func toScrapeRunResponses(runs []domain.ScrapeRun) []ScrapeRunResponse {
	out := make([]ScrapeRunResponse, len(runs))
	for i, run := range runs {
		out[i] = ScrapeRunResponse{
			ID:           run.ID.String(),
			Platform:     run.Platform,
			Query:        run.Query,
			StartedAt:    run.StartedAt,
			FinishedAt:   run.FinishedAt,
			DurationMS:   run.DurationMS,
			Found:        run.Found,
			New:          run.New,
			Failed:       run.Failed,
			Status:       string(run.Status),
			ErrorMessage: run.ErrorMessage,
		}
	}
	return out
}

// HealthResponse reports which backends this instance runs with.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

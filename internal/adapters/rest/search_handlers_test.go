package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jian131/agent-bds/internal/core/domain"
)

func searchRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSearchReturnsBatchResult(t *testing.T) {
	fakes := defaultFakes()
	fakes.search.result = &domain.SearchResult{
		Listings: []domain.Listing{{
			ID:             "abc",
			Title:          "Căn hộ 2PN",
			SourcePlatform: "batdongsan",
			SourceURL:      "https://batdongsan.com.vn/1",
			CollectedAt:    time.Date(2026, 8, 21, 4, 0, 0, 0, time.UTC),
			Status:         domain.ListingActive,
		}},
		Total:              1,
		PlatformsSearched:  []string{"batdongsan", "chotot"},
		PlatformsSucceeded: []string{"batdongsan"},
		Failures:           map[string]domain.FetchFailure{"chotot": domain.FetchTimeout},
		SearchTimeMS:       410,
	}
	s := newTestServer(fakes)

	rec := doRequest(t, s, searchRequest(`{"query": "căn hộ 2 tỷ quận 7", "limit": 10}`))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Len(t, resp.Listings, 1)
	assert.Equal(t, "abc", resp.Listings[0].ID)
	assert.Equal(t, []string{"batdongsan"}, resp.PlatformsSucceeded)
	assert.Equal(t, "timeout", resp.Failures["chotot"])
	assert.False(t, resp.FromCache)

	assert.Equal(t, "căn hộ 2 tỷ quận 7", fakes.search.gotReq.Query)
	assert.Equal(t, 10, fakes.search.gotReq.Limit)
}

func TestSearchPassesExplicitFilters(t *testing.T) {
	fakes := defaultFakes()
	s := newTestServer(fakes)

	rec := doRequest(t, s, searchRequest(`{
		"query": "nhà",
		"district": "Quận 7",
		"property_type": "house",
		"price_min": 1000000000,
		"price_max": 3000000000
	}`))

	require.Equal(t, http.StatusOK, rec.Code)
	got := fakes.search.gotReq
	assert.Equal(t, "Quận 7", got.District)
	assert.Equal(t, domain.PropertyHouse, got.PropertyType)
	require.NotNil(t, got.PriceMin)
	assert.Equal(t, int64(1_000_000_000), *got.PriceMin)
	require.NotNil(t, got.PriceMax)
	assert.Equal(t, int64(3_000_000_000), *got.PriceMax)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	s := newTestServer(defaultFakes())

	rec := doRequest(t, s, searchRequest(`{"query": "   "}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "query")
}

func TestSearchRejectsMalformedBody(t *testing.T) {
	s := newTestServer(defaultFakes())

	rec := doRequest(t, s, searchRequest(`{broken`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchWithoutPlatformsIs503(t *testing.T) {
	fakes := defaultFakes()
	fakes.search.result = nil
	fakes.search.err = domain.ErrNoPlatforms
	s := newTestServer(fakes)

	rec := doRequest(t, s, searchRequest(`{"query": "căn hộ"}`))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSearchStreamEmitsTypedFrames(t *testing.T) {
	fakes := defaultFakes()
	listing := domain.Listing{
		ID:             "abc",
		Title:          "Căn hộ",
		SourcePlatform: "batdongsan",
		SourceURL:      "https://batdongsan.com.vn/1",
		CollectedAt:    time.Date(2026, 8, 21, 4, 0, 0, 0, time.UTC),
		Status:         domain.ListingActive,
	}
	fakes.stream.events = []domain.SearchEvent{
		{Type: domain.EventStatus, Platform: "batdongsan", Message: "fetching"},
		{Type: domain.EventResult, Listing: &listing},
		{Type: domain.EventComplete, Total: 1, SearchTimeMS: 250, Platforms: []string{"batdongsan"}},
	}
	s := newTestServer(fakes)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/stream", strings.NewReader(`{"query": "căn hộ"}`))
	rec := doRequest(t, s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: connected\ndata: {}\n\n")
	assert.Contains(t, body, "event: status\n")
	assert.Contains(t, body, `"platform":"batdongsan"`)
	assert.Contains(t, body, "event: result\n")
	assert.Contains(t, body, `"id":"abc"`)
	assert.Contains(t, body, "event: complete\n")
	assert.Contains(t, body, `"total":1`)

	// Frames arrive in pipeline order.
	statusIdx := strings.Index(body, "event: status")
	resultIdx := strings.Index(body, "event: result")
	completeIdx := strings.Index(body, "event: complete")
	assert.Less(t, statusIdx, resultIdx)
	assert.Less(t, resultIdx, completeIdx)
}

func TestSearchStreamReportsPipelineError(t *testing.T) {
	fakes := defaultFakes()
	fakes.stream.events = []domain.SearchEvent{
		{Type: domain.EventError, Message: "no platforms configured"},
	}
	s := newTestServer(fakes)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/stream", strings.NewReader(`{"query": "căn hộ"}`))
	rec := doRequest(t, s, req)

	body := rec.Body.String()
	assert.Contains(t, body, "event: error\n")
	assert.Contains(t, body, "no platforms configured")
}

func TestSearchRealtimeFlagSwitchesToStream(t *testing.T) {
	fakes := defaultFakes()
	fakes.stream.events = []domain.SearchEvent{
		{Type: domain.EventComplete, Total: 0, Platforms: []string{}},
	}
	s := newTestServer(fakes)

	rec := doRequest(t, s, searchRequest(`{"query": "căn hộ", "realtime": true}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event: complete\n")
}

func TestSearchSimilarRequiresQuery(t *testing.T) {
	s := newTestServer(defaultFakes())

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/search/similar", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchSimilarWithoutVectorStoreIs503(t *testing.T) {
	fakes := defaultFakes()
	fakes.similar.err = domain.ErrVectorDisabled
	s := newTestServer(fakes)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/search/similar?q=nha+quan+7", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSearchSimilarReturnsMatches(t *testing.T) {
	fakes := defaultFakes()
	fakes.similar.listings = []domain.Listing{{
		ID:             "abc",
		Title:          "Căn hộ",
		SourcePlatform: "batdongsan",
		SourceURL:      "https://batdongsan.com.vn/1",
		CollectedAt:    time.Date(2026, 8, 21, 4, 0, 0, 0, time.UTC),
	}}
	s := newTestServer(fakes)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/search/similar?q=nha", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SimilarListingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "nha", fakes.similar.gotQuery)
}

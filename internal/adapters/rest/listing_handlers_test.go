package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jian131/agent-bds/internal/core/domain"
)

func TestListListingsMapsQueryToFilter(t *testing.T) {
	fakes := defaultFakes()
	s := newTestServer(fakes)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet,
		"/api/v1/listings?district=Qu%E1%BA%ADn%207&platform=chotot&property_type=house"+
			"&price_min=1000000000&price_max=2000000000&area_min=50&page=3&per_page=25", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	got := fakes.list.gotFilter
	assert.Equal(t, "Quận 7", got.District)
	assert.Equal(t, "chotot", got.Platform)
	assert.Equal(t, "house", got.PropertyType)
	require.NotNil(t, got.PriceMin)
	assert.Equal(t, int64(1_000_000_000), *got.PriceMin)
	require.NotNil(t, got.AreaMin)
	assert.Equal(t, 50.0, *got.AreaMin)
	assert.Nil(t, got.AreaMax)
	assert.Equal(t, 25, got.Limit)
	assert.Equal(t, 50, got.Offset)
}

func TestListListingsClampsPagination(t *testing.T) {
	fakes := defaultFakes()
	s := newTestServer(fakes)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet,
		"/api/v1/listings?page=-2&per_page=9999", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, fakes.list.gotFilter.Limit)
	assert.Equal(t, 0, fakes.list.gotFilter.Offset)
}

func TestListListingsWithoutStorageIs503(t *testing.T) {
	fakes := defaultFakes()
	fakes.list.err = domain.ErrStorageDisabled
	s := newTestServer(fakes)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetListingByID(t *testing.T) {
	fakes := defaultFakes()
	fakes.get.err = nil
	fakes.get.listing = &domain.Listing{
		ID:             "abc123",
		Title:          "Nhà mặt tiền",
		SourcePlatform: "chotot",
		SourceURL:      "https://nha.chotot.com/1",
		CollectedAt:    time.Date(2026, 8, 21, 4, 0, 0, 0, time.UTC),
		Status:         domain.ListingActive,
	}
	s := newTestServer(fakes)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/listings/abc123", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "abc123", resp.ID)
	assert.Equal(t, "active", resp.Status)
}

func TestGetListingNotFound(t *testing.T) {
	s := newTestServer(defaultFakes()) // default get fake answers ErrNotFound

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/listings/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteListingDefaultsToSoft(t *testing.T) {
	fakes := defaultFakes()
	s := newTestServer(fakes)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodDelete, "/api/v1/listings/abc123", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc123", fakes.delete.gotID)
	assert.False(t, fakes.delete.gotHard)
}

func TestDeleteListingHard(t *testing.T) {
	fakes := defaultFakes()
	s := newTestServer(fakes)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodDelete, "/api/v1/listings/abc123?hard=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fakes.delete.gotHard)
}

func TestDeleteListingNotFound(t *testing.T) {
	fakes := defaultFakes()
	fakes.delete.err = domain.ErrNotFound
	s := newTestServer(fakes)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodDelete, "/api/v1/listings/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSimilarByListing(t *testing.T) {
	fakes := defaultFakes()
	fakes.similar.listings = []domain.Listing{{
		ID:             "other",
		Title:          "Căn hộ gần đó",
		SourcePlatform: "batdongsan",
		SourceURL:      "https://batdongsan.com.vn/2",
		CollectedAt:    time.Date(2026, 8, 21, 4, 0, 0, 0, time.UTC),
	}}
	s := newTestServer(fakes)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/listings/abc123/similar", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc123", fakes.similar.gotID)

	var resp SimilarListingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
}

func TestSimilarByListingSourceMissing(t *testing.T) {
	fakes := defaultFakes()
	fakes.similar.err = domain.ErrNotFound
	s := newTestServer(fakes)

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/listings/missing/similar", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

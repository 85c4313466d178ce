package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jian131/agent-bds/internal/constants"
)

const chototPayload = `{
  "total": 2,
  "ads": [
    {
      "list_id": 123456789,
      "subject": "Bán căn hộ 2PN tại Cầu Giấy",
      "body": "Căn hộ đẹp, liên hệ 0912345678",
      "price": 2500000000,
      "price_string": "2,5 tỷ",
      "size": 80,
      "region_name": "Hà Nội",
      "area_name": "Quận Cầu Giấy",
      "ward_name": "Phường Dịch Vọng",
      "image": "a1b2c3.jpg",
      "rooms": 2,
      "toilets": 2,
      "latitude": 21.036,
      "longitude": 105.79,
      "account_name": "Nguyễn Văn A",
      "list_time": 1717200000000
    },
    {
      "list_id": 0,
      "subject": "bỏ qua vì thiếu list_id"
    }
  ]
}`

func TestExtractChototGatewayPayload(t *testing.T) {
	e := newTestExtractor(t)

	result := fetched(constants.PlatformChotot,
		"https://gateway.chotot.com/v1/public/ad-listing?cg=1000",
		"application/json", chototPayload)

	listings := e.Extract(result)
	require.Len(t, listings, 1)

	l := listings[0]
	assert.Equal(t, "Bán căn hộ 2PN tại Cầu Giấy", l.Title)
	assert.Equal(t, "https://nha.chotot.com/123456789.htm", l.SourceURL)
	assert.Equal(t, constants.PlatformChotot, l.SourcePlatform)

	require.NotNil(t, l.PriceVND)
	assert.Equal(t, int64(2_500_000_000), *l.PriceVND)
	require.NotNil(t, l.AreaM2)
	assert.InDelta(t, 80.0, *l.AreaM2, 0.001)
	require.NotNil(t, l.PricePerM2)
	assert.Equal(t, int64(31_250_000), *l.PricePerM2)

	assert.Equal(t, "Hà Nội", l.City)
	assert.Equal(t, "Cầu Giấy", l.District)
	assert.Equal(t, "Phường Dịch Vọng", l.Ward)

	assert.Equal(t, "https://cdn.chotot.com/full/a1b2c3.jpg", l.ThumbnailURL)
	assert.Equal(t, []string{"0912345678"}, l.Phones)

	require.NotNil(t, l.Bedrooms)
	assert.Equal(t, 2, *l.Bedrooms)
	require.NotNil(t, l.PostedAt)

	assert.NotEmpty(t, l.LocationCell)
	assert.NotEmpty(t, l.ID)
	assert.False(t, l.CollectedAt.IsZero())
}

func TestExtractChototBadPayload(t *testing.T) {
	e := newTestExtractor(t)

	result := fetched(constants.PlatformChotot,
		"https://gateway.chotot.com/v1/public/ad-listing",
		"application/json", `{"ads": "not-an-array"}`)

	assert.Empty(t, e.Extract(result))
}

func TestChototImageURLKeepsAbsolute(t *testing.T) {
	assert.Equal(t, "https://cdn.chotot.com/full/x.jpg", chototImageURL("x.jpg"))
	assert.Equal(t, "https://example.com/x.jpg", chototImageURL("https://example.com/x.jpg"))
}

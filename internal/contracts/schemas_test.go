package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jian131/agent-bds/internal/constants"
)

func validListingEvent() map[string]interface{} {
	return map[string]interface{}{
		"id":              "9f2c1a",
		"title":           "Bán căn hộ 2PN Quận 7",
		"description":     "Căn góc, view sông",
		"price_text":      "3,2 tỷ",
		"price_vnd":       3_200_000_000,
		"price_per_m2":    45_000_000,
		"area_text":       "71m²",
		"area_m2":         71.0,
		"address":         "Nguyễn Lương Bằng, Quận 7",
		"district":        "Quận 7",
		"city":            "Hồ Chí Minh",
		"phones":          []string{"0901234567"},
		"property_type":   "apartment",
		"bedrooms":        2,
		"source_platform": "batdongsan",
		"source_url":      "https://batdongsan.com.vn/ban-can-ho/123",
		"posted_at":       "2026-08-20T09:30:00Z",
		"collected_at":    "2026-08-21T04:15:00Z",
	}
}

func marshalEvent(t *testing.T, event map[string]interface{}) []byte {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return body
}

func TestValidateEventAcceptsFullPayload(t *testing.T) {
	body := marshalEvent(t, validListingEvent())

	err := ValidateEvent(constants.EventListingCollected, constants.EventListingCollectedVersion, body)

	assert.NoError(t, err)
}

func TestValidateEventAcceptsMinimalPayload(t *testing.T) {
	body := marshalEvent(t, map[string]interface{}{
		"id":              "abc",
		"title":           "Nhà mặt tiền",
		"source_platform": "chotot",
		"source_url":      "https://nha.chotot.com/1",
		"collected_at":    "2026-08-21T04:15:00Z",
	})

	err := ValidateEvent(constants.EventListingCollected, constants.EventListingCollectedVersion, body)

	assert.NoError(t, err)
}

func TestValidateEventRejectsMissingRequiredField(t *testing.T) {
	event := validListingEvent()
	delete(event, "title")

	err := ValidateEvent(constants.EventListingCollected, constants.EventListingCollectedVersion, marshalEvent(t, event))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestValidateEventRejectsWrongFieldType(t *testing.T) {
	event := validListingEvent()
	event["price_vnd"] = "ba tỷ hai"

	err := ValidateEvent(constants.EventListingCollected, constants.EventListingCollectedVersion, marshalEvent(t, event))

	assert.Error(t, err)
}

func TestValidateEventRejectsUnknownField(t *testing.T) {
	event := validListingEvent()
	event["seller_rating"] = 5

	err := ValidateEvent(constants.EventListingCollected, constants.EventListingCollectedVersion, marshalEvent(t, event))

	assert.Error(t, err)
}

func TestValidateEventRejectsUnknownPropertyType(t *testing.T) {
	event := validListingEvent()
	event["property_type"] = "castle"

	err := ValidateEvent(constants.EventListingCollected, constants.EventListingCollectedVersion, marshalEvent(t, event))

	assert.Error(t, err)
}

func TestValidateEventRejectsMalformedTimestamp(t *testing.T) {
	event := validListingEvent()
	event["collected_at"] = "21/08/2026 11:15"

	err := ValidateEvent(constants.EventListingCollected, constants.EventListingCollectedVersion, marshalEvent(t, event))

	assert.Error(t, err)
}

func TestValidateEventRejectsInvalidJSON(t *testing.T) {
	err := ValidateEvent(constants.EventListingCollected, constants.EventListingCollectedVersion, []byte("{not json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestValidateEventRejectsUnregisteredEvent(t *testing.T) {
	err := ValidateEvent("PriceChangedEvent", "1.0.0", []byte(`{}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schema registered")
}

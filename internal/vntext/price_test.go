package vntext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		text string
		want int64
	}{
		{"2 tỷ", 2_000_000_000},
		{"3.5 tỷ", 3_500_000_000},
		{"3,5 tỷ", 3_500_000_000},
		{"3 tỷ 200 triệu", 3_200_000_000},
		{"850 triệu", 850_000_000},
		{"12 triệu/tháng", 12_000_000},
		{"500 nghìn", 500_000},
		{"25.000.000 đ", 25_000_000},
		{"3,500,000,000", 3_500_000_000},
		{"3500000000", 3_500_000_000},
		{"Giá: 4 Tỷ", 4_000_000_000},
	}

	for _, tt := range tests {
		got, negotiable := ParsePrice(tt.text)
		require.NotNilf(t, got, "ParsePrice(%q) returned nil", tt.text)
		assert.Falsef(t, negotiable, "ParsePrice(%q) flagged negotiable", tt.text)
		assert.Equalf(t, tt.want, *got, "ParsePrice(%q)", tt.text)
	}
}

func TestParsePrice_Negotiable(t *testing.T) {
	for _, text := range []string{"Thỏa thuận", "Giá thoả thuận", "Liên hệ", "thương lượng"} {
		got, negotiable := ParsePrice(text)

		assert.Nilf(t, got, "ParsePrice(%q) should be nil, never 0", text)
		assert.Truef(t, negotiable, "ParsePrice(%q) should flag negotiable", text)
	}
}

func TestParsePrice_Unparseable(t *testing.T) {
	for _, text := range []string{"", "nhà đẹp", "giá tốt"} {
		got, negotiable := ParsePrice(text)

		assert.Nil(t, got)
		assert.False(t, negotiable)
	}
}

func TestParsePriceRange_Exact(t *testing.T) {
	min, max := ParsePriceRange("2-3 tỷ")

	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, int64(2_000_000_000), *min)
	assert.Equal(t, int64(3_000_000_000), *max)
}

func TestParsePriceRange_EnDashAndSpaces(t *testing.T) {
	min, max := ParsePriceRange("khoảng 2 – 3,5 tỷ")

	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, int64(2_000_000_000), *min)
	assert.Equal(t, int64(3_500_000_000), *max)
}

func TestParsePriceRange_MinOnly(t *testing.T) {
	min, max := ParsePriceRange("từ 2 tỷ")

	require.NotNil(t, min)
	assert.Equal(t, int64(2_000_000_000), *min)
	assert.Nil(t, max)
}

func TestParsePriceRange_MaxOnly(t *testing.T) {
	for _, text := range []string{"dưới 3 tỷ", "đến 3 tỷ", "tối đa 3 tỷ"} {
		min, max := ParsePriceRange(text)

		assert.Nilf(t, min, "ParsePriceRange(%q) min", text)
		require.NotNilf(t, max, "ParsePriceRange(%q) max", text)
		assert.Equal(t, int64(3_000_000_000), *max)
	}
}

func TestParsePriceRange_TrieuUnit(t *testing.T) {
	min, max := ParsePriceRange("500-800 triệu")

	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, int64(500_000_000), *min)
	assert.Equal(t, int64(800_000_000), *max)
}

func TestParsePriceRange_SinglePriceIsNotARange(t *testing.T) {
	min, max := ParsePriceRange("2 tỷ")

	assert.Nil(t, min)
	assert.Nil(t, max)
}

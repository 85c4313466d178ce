package vntext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCity(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"bán nhà Hà Nội", "Hà Nội"},
		{"ban nha ha noi", "Hà Nội"},
		{"chung cư HCM giá rẻ", "Hồ Chí Minh"},
		{"căn hộ Sài Gòn", "Hồ Chí Minh"},
		{"đất Đà Nẵng", "Đà Nẵng"},
		{"nhà mặt tiền cần thơ", "Cần Thơ"},
		{"chung cư Vũng Tàu", "Bà Rịa - Vũng Tàu"},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, DetectCity(tt.text), "DetectCity(%q)", tt.text)
	}
}

func TestDetectCity_InferredFromDistrict(t *testing.T) {
	assert.Equal(t, "Hà Nội", DetectCity("chung cư 2PN Cầu Giấy"))
	assert.Equal(t, "Hồ Chí Minh", DetectCity("nhà Bình Thạnh hẻm xe hơi"))
}

func TestDetectCity_NoMatch(t *testing.T) {
	assert.Equal(t, "", DetectCity("nhà đẹp giá tốt"))
}

func TestDetectDistrict(t *testing.T) {
	tests := []struct {
		text string
		city string
		want string
	}{
		{"chung cư Cầu Giấy", "Hà Nội", "Cầu Giấy"},
		{"chung cu cau giay", "Hà Nội", "Cầu Giấy"},
		{"nhà Hà Đông", "", "Hà Đông"},
		{"căn hộ Quận 7", "Hồ Chí Minh", "Quận 7"},
		{"căn hộ Q.7", "Hồ Chí Minh", "Quận 7"},
		{"căn hộ q7 view sông", "Hồ Chí Minh", "Quận 7"},
		{"nhà quận 10", "Hồ Chí Minh", "Quận 10"},
		{"đất Thủ Đức", "", "Thủ Đức"},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, DetectDistrict(tt.text, tt.city), "DetectDistrict(%q, %q)", tt.text, tt.city)
	}
}

func TestDetectDistrict_BoundaryAware(t *testing.T) {
	// "nhà đồng sở hữu" folds to "nha dong so huu"; the run "ha dong"
	// inside it must not read as the Hà Đông district.
	assert.Equal(t, "", DetectDistrict("nhà đồng sở hữu", "Hà Nội"))
}

func TestDetectDistrict_WrongCityTable(t *testing.T) {
	assert.Equal(t, "", DetectDistrict("chung cư Cầu Giấy", "Hồ Chí Minh"))
}

func TestCityOfDistrict(t *testing.T) {
	assert.Equal(t, "Hà Nội", CityOfDistrict("Cầu Giấy"))
	assert.Equal(t, "Hồ Chí Minh", CityOfDistrict("Bình Thạnh"))
	assert.Equal(t, "", CityOfDistrict("Nowhere"))
}

func TestCanonicalDistrict(t *testing.T) {
	assert.Equal(t, "Cầu Giấy", CanonicalDistrict("cau giay"))
	assert.Equal(t, "Cầu Giấy", CanonicalDistrict("CẦU GIẤY"))
	assert.Equal(t, "Cầu Giấy", CanonicalDistrict("Quận Cầu Giấy"))
	assert.Equal(t, "Gia Lâm", CanonicalDistrict("huyện Gia Lâm"))
	assert.Equal(t, "Quận 7", CanonicalDistrict("quận 7"))
	assert.Equal(t, "", CanonicalDistrict(""))
}

func TestCanonicalCity(t *testing.T) {
	assert.Equal(t, "Hà Nội", CanonicalCity("hanoi"))
	assert.Equal(t, "Hồ Chí Minh", CanonicalCity("sài gòn"))
	assert.Equal(t, "Hà Nội", CanonicalCity("Hà Nội"))
}

func TestDetectWard(t *testing.T) {
	assert.Equal(t, "Dịch Vọng", DetectWard("Phường Dịch Vọng, Cầu Giấy, Hà Nội"))
	assert.Equal(t, "Tân Thới Nhất", DetectWard("xã Tân Thới Nhất, Quận 12"))
	assert.Equal(t, "", DetectWard("Cầu Giấy, Hà Nội"))
}

package vntext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cầu Giấy", "cau giay"},
		{"Hà Nội", "ha noi"},
		{"Đống Đa", "dong da"},
		{"BIỆT THỰ", "biet thu"},
		{"đường Nguyễn Trãi", "duong nguyen trai"},
		{"already plain", "already plain"},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, Fold(tt.in), "Fold(%q)", tt.in)
	}
}

func TestSlugAndCompact(t *testing.T) {
	assert.Equal(t, "ha-noi", Slug("Hà Nội"))
	assert.Equal(t, "ho-chi-minh", Slug("Hồ Chí Minh"))
	assert.Equal(t, "hanoi", Compact("Hà Nội"))
	assert.Equal(t, "hochiminh", Compact("Hồ Chí Minh"))
}

func TestContainsPhrase_Boundaries(t *testing.T) {
	assert.True(t, ContainsPhrase("quan ha dong hn", "ha dong"))
	assert.False(t, ContainsPhrase("nha dong so huu", "ha dong"))
	assert.False(t, ContainsPhrase("quan 10", "quan 1"))
	assert.True(t, ContainsPhrase("quan 1, hcm", "quan 1"))
	assert.False(t, ContainsPhrase("anything", ""))
}

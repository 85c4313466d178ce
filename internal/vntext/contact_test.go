package vntext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone_SpellingsConverge(t *testing.T) {
	spellings := []string{
		"+84 912 345 678",
		"0912.345.678",
		"0912-345-678",
		"84912345678",
		"0912345678",
		"(0912) 345 678",
	}

	for _, raw := range spellings {
		got, ok := NormalizePhone(raw)
		require.Truef(t, ok, "NormalizePhone(%q) rejected", raw)
		assert.Equalf(t, "0912345678", got, "NormalizePhone(%q)", raw)
	}
}

func TestNormalizePhone_Rejections(t *testing.T) {
	for _, raw := range []string{
		"",
		"12345",
		"0123456789", // 012 is not a carrier prefix
		"1912345678", // no leading zero
		"09123456789012",
	} {
		_, ok := NormalizePhone(raw)
		assert.Falsef(t, ok, "NormalizePhone(%q) should reject", raw)
	}
}

func TestNormalizePhone_Landline(t *testing.T) {
	got, ok := NormalizePhone("024 3826 1234")
	require.True(t, ok)
	assert.Equal(t, "02438261234", got)
}

func TestExtractPhones(t *testing.T) {
	text := "LH chính chủ 0912.345.678 hoặc +84 987 654 321, gọi 0912345678"

	phones := ExtractPhones(text)

	require.Len(t, phones, 2)
	assert.Contains(t, phones, "0912345678")
	assert.Contains(t, phones, "0987654321")
}

func TestExtractPhones_NoneFound(t *testing.T) {
	assert.Empty(t, ExtractPhones("nhà đẹp giá tốt"))
	assert.Empty(t, ExtractPhones(""))
}

func TestExtractZalo(t *testing.T) {
	text := "Zalo: 0912345678. Hoặc zalo.me/849998887 nhé"

	zalo := ExtractZalo(text)

	require.Len(t, zalo, 2)
	assert.Equal(t, "0912345678", zalo[0])
	assert.Equal(t, "849998887", zalo[1])
}

func TestExtractEmails(t *testing.T) {
	text := "Liên hệ Chu.Van.A@Gmail.com hoặc chu.van.a@gmail.com"

	emails := ExtractEmails(text)

	require.Len(t, emails, 1)
	assert.Equal(t, "chu.van.a@gmail.com", emails[0])
}

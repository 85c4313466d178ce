package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

type stubIntentLLM struct {
	intent domain.SearchIntent
	err    error
	calls  int
}

func (s *stubIntentLLM) ParseIntent(ctx context.Context, query string, vocab port.IntentVocabulary) (domain.SearchIntent, error) {
	s.calls++
	if s.err != nil {
		return domain.SearchIntent{}, s.err
	}
	return s.intent, nil
}

func TestParseIntent_SinglePriceExpandsSymmetrically(t *testing.T) {
	uc := NewParseIntentUseCase(nil, 0.3)

	intent := uc.Execute(context.Background(), "bán nhà 2 tỷ cầu giấy")

	require.NotNil(t, intent.PriceMin)
	require.NotNil(t, intent.PriceMax)
	assert.Equal(t, int64(1_400_000_000), *intent.PriceMin)
	assert.Equal(t, int64(2_600_000_000), *intent.PriceMax)
	assert.Equal(t, domain.IntentSourceRules, intent.Source)
}

func TestParseIntent_ExplicitRangeKeptExact(t *testing.T) {
	uc := NewParseIntentUseCase(nil, 0.3)

	intent := uc.Execute(context.Background(), "chung cư cầu giấy 2-3 tỷ")

	require.NotNil(t, intent.PriceMin)
	require.NotNil(t, intent.PriceMax)
	assert.Equal(t, int64(2_000_000_000), *intent.PriceMin)
	assert.Equal(t, int64(3_000_000_000), *intent.PriceMax)
	assert.Equal(t, domain.PropertyApartment, intent.PropertyType)
	assert.Equal(t, "Hà Nội", intent.City)
	assert.Equal(t, "Cầu Giấy", intent.District)
}

func TestParseIntent_OpenBoundRanges(t *testing.T) {
	uc := NewParseIntentUseCase(nil, 0.3)

	from := uc.Execute(context.Background(), "nhà riêng từ 2 tỷ hà đông")
	require.NotNil(t, from.PriceMin)
	assert.Equal(t, int64(2_000_000_000), *from.PriceMin)
	assert.Nil(t, from.PriceMax)

	to := uc.Execute(context.Background(), "chung cư dưới 3 tỷ")
	require.NotNil(t, to.PriceMax)
	assert.Equal(t, int64(3_000_000_000), *to.PriceMax)
	assert.Nil(t, to.PriceMin)
}

func TestParseIntent_NeverFailsAndKeepsQueryAsKeyword(t *testing.T) {
	uc := NewParseIntentUseCase(nil, 0.3)

	intent := uc.Execute(context.Background(), "xyz hoàn toàn vô nghĩa 123")

	assert.Equal(t, domain.IntentSourceRules, intent.Source)
	require.NotEmpty(t, intent.Keywords)
	assert.Equal(t, "xyz hoàn toàn vô nghĩa 123", intent.Keywords[0])
	assert.Nil(t, intent.PriceMin)
	assert.Nil(t, intent.PriceMax)
	assert.Equal(t, domain.PropertyUnknown, intent.PropertyType)
}

func TestParseIntent_RentPurpose(t *testing.T) {
	uc := NewParseIntentUseCase(nil, 0.3)

	intent := uc.Execute(context.Background(), "thuê chung cư quận 7")

	assert.Equal(t, domain.PurposeRent, intent.Purpose)
	assert.Equal(t, "Hồ Chí Minh", intent.City)
	assert.Equal(t, "Quận 7", intent.District)
}

func TestParseIntent_LLMResultCanonicalized(t *testing.T) {
	llm := &stubIntentLLM{
		intent: domain.SearchIntent{
			City:         "ha noi",
			District:     "cau giay",
			PropertyType: domain.PropertyApartment,
		},
	}
	uc := NewParseIntentUseCase(llm, 0.3)

	intent := uc.Execute(context.Background(), "căn hộ Cầu Giấy")

	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, domain.IntentSourceLLM, intent.Source)
	assert.Equal(t, "Hà Nội", intent.City)
	assert.Equal(t, "Cầu Giấy", intent.District)
	require.NotEmpty(t, intent.Keywords)
	assert.Equal(t, "căn hộ Cầu Giấy", intent.Keywords[0])
}

func TestParseIntent_LLMEqualBoundsExpand(t *testing.T) {
	price := int64(2_000_000_000)
	llm := &stubIntentLLM{intent: domain.SearchIntent{
		City:     "Hà Nội",
		PriceMin: &price,
		PriceMax: &price,
	}}
	uc := NewParseIntentUseCase(llm, 0.3)

	intent := uc.Execute(context.Background(), "nhà khoảng 2 tỷ")

	require.NotNil(t, intent.PriceMin)
	require.NotNil(t, intent.PriceMax)
	assert.Equal(t, int64(1_400_000_000), *intent.PriceMin)
	assert.Equal(t, int64(2_600_000_000), *intent.PriceMax)
}

func TestParseIntent_LLMFailureFallsBackToRules(t *testing.T) {
	llm := &stubIntentLLM{err: errors.New("model unavailable")}
	uc := NewParseIntentUseCase(llm, 0.3)

	intent := uc.Execute(context.Background(), "biệt thự tây hồ 20 tỷ")

	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, domain.IntentSourceRules, intent.Source)
	assert.Equal(t, domain.PropertyVilla, intent.PropertyType)
	assert.Equal(t, "Tây Hồ", intent.District)
	require.NotNil(t, intent.PriceMin)
	assert.Equal(t, int64(14_000_000_000), *intent.PriceMin)
}

func TestParseIntent_DefaultsCityWhenUndetectable(t *testing.T) {
	uc := NewParseIntentUseCase(nil, 0.3)

	intent := uc.Execute(context.Background(), "chung cư 2 phòng ngủ giá rẻ")

	assert.Equal(t, "Hà Nội", intent.City)
	assert.Equal(t, domain.PurposeBuy, intent.Purpose)
	require.NotNil(t, intent.Bedrooms)
	assert.Equal(t, 2, *intent.Bedrooms)
}

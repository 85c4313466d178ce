package usecase

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jian131/agent-bds/internal/constants"
	"github.com/jian131/agent-bds/internal/core/domain"
)

func buyIntent() domain.SearchIntent {
	min := int64(2_000_000_000)
	max := int64(3_000_000_000)
	return domain.SearchIntent{
		Query:    "chung cư cầu giấy 2-3 tỷ",
		City:     "Hà Nội",
		District: "Cầu Giấy",
		PriceMin: &min,
		PriceMax: &max,
		Purpose:  domain.PurposeBuy,
		Keywords: []string{"chung cư cầu giấy 2-3 tỷ"},
	}
}

func targetByPlatform(t *testing.T, targets []domain.SourceTarget, platform string) domain.SourceTarget {
	t.Helper()
	for _, target := range targets {
		if target.Platform == platform {
			return target
		}
	}
	t.Fatalf("no target for platform %s", platform)
	return domain.SourceTarget{}
}

func TestGenerateTargets_AllPlatformsInPriorityOrder(t *testing.T) {
	uc := NewGenerateTargetsUseCase(nil)

	targets := uc.Execute(context.Background(), buyIntent())

	require.Len(t, targets, len(constants.Platforms))
	assert.Equal(t, constants.PlatformChotot, targets[0].Platform)
	assert.Equal(t, constants.PlatformBatdongsan, targets[1].Platform)
	assert.Equal(t, constants.PlatformMogi, targets[2].Platform)
	assert.Equal(t, constants.PlatformAlonhadat, targets[3].Platform)
	assert.Equal(t, constants.PlatformNhadat24h, targets[4].Platform)

	for i := 1; i < len(targets); i++ {
		assert.LessOrEqual(t, targets[i-1].Priority, targets[i].Priority)
	}
}

func TestGenerateTargets_ChototGatewayParams(t *testing.T) {
	uc := NewGenerateTargetsUseCase([]string{constants.PlatformChotot})

	targets := uc.Execute(context.Background(), buyIntent())
	require.Len(t, targets, 1)
	assert.Equal(t, domain.HintJSONAPI, targets[0].Hint)

	u, err := url.Parse(targets[0].URL)
	require.NoError(t, err)
	assert.Equal(t, "gateway.chotot.com", u.Host)

	q := u.Query()
	assert.Equal(t, "1000", q.Get("cg"))
	assert.Equal(t, "s,k", q.Get("st"))
	assert.Equal(t, "12000", q.Get("region_v2"))
	assert.Equal(t, "2000000000", q.Get("price_min"))
	assert.Equal(t, "3000000000", q.Get("price_max"))
	assert.Equal(t, "chung cư cầu giấy 2-3 tỷ", q.Get("key"))
}

func TestGenerateTargets_BatdongsanPathAndTyUnits(t *testing.T) {
	uc := NewGenerateTargetsUseCase([]string{constants.PlatformBatdongsan})

	targets := uc.Execute(context.Background(), buyIntent())
	require.Len(t, targets, 1)
	assert.Equal(t, domain.HintBrowser, targets[0].Hint)

	u, err := url.Parse(targets[0].URL)
	require.NoError(t, err)
	assert.Equal(t, "/nha-dat-ban/ha-noi", u.Path)

	q := u.Query()
	assert.Equal(t, "2", q.Get("giaFrom"))
	assert.Equal(t, "3", q.Get("giaTo"))
	assert.Equal(t, "chung cư cầu giấy 2-3 tỷ", q.Get("keyword"))
}

func TestGenerateTargets_AlonhadatPathSegments(t *testing.T) {
	uc := NewGenerateTargetsUseCase([]string{constants.PlatformAlonhadat})

	targets := uc.Execute(context.Background(), buyIntent())
	require.Len(t, targets, 1)

	assert.Equal(t,
		"https://alonhadat.com.vn/nha-dat/can-ban/ha-noi/gia-tu-2-ty/gia-den-3-ty",
		targets[0].URL)
}

func TestGenerateTargets_UnknownCityDegradesToFoldedSlug(t *testing.T) {
	uc := NewGenerateTargetsUseCase(nil)
	intent := buyIntent()
	intent.City = "Vĩnh Phúc"

	targets := uc.Execute(context.Background(), intent)

	bds := targetByPlatform(t, targets, constants.PlatformBatdongsan)
	assert.True(t, strings.Contains(bds.URL, "/nha-dat-ban/vinh-phuc"), bds.URL)

	// no region code for the city, but the platform is still queried
	chotot := targetByPlatform(t, targets, constants.PlatformChotot)
	u, err := url.Parse(chotot.URL)
	require.NoError(t, err)
	assert.Empty(t, u.Query().Get("region_v2"))
}

func TestGenerateTargets_RentSwitchesPaths(t *testing.T) {
	uc := NewGenerateTargetsUseCase(nil)
	intent := buyIntent()
	intent.Purpose = domain.PurposeRent

	targets := uc.Execute(context.Background(), intent)

	bds := targetByPlatform(t, targets, constants.PlatformBatdongsan)
	assert.True(t, strings.HasPrefix(bds.URL, "https://batdongsan.com.vn/nha-dat-cho-thue"), bds.URL)

	chotot := targetByPlatform(t, targets, constants.PlatformChotot)
	u, err := url.Parse(chotot.URL)
	require.NoError(t, err)
	assert.Equal(t, "u,k", u.Query().Get("st"))

	mogi := targetByPlatform(t, targets, constants.PlatformMogi)
	assert.True(t, strings.HasPrefix(mogi.URL, "https://mogi.vn/thue-nha-dat"), mogi.URL)
}

func TestGenerateTargets_EnabledSubsetOnly(t *testing.T) {
	uc := NewGenerateTargetsUseCase([]string{constants.PlatformMogi, constants.PlatformChotot})

	targets := uc.Execute(context.Background(), buyIntent())

	require.Len(t, targets, 2)
	assert.Equal(t, constants.PlatformChotot, targets[0].Platform)
	assert.Equal(t, constants.PlatformMogi, targets[1].Platform)
}

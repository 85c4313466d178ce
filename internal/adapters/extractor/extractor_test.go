package extractor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jian131/agent-bds/internal/constants"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

type nopLogger struct{}

func (nopLogger) Info(string, port.Fields)          {}
func (nopLogger) Warn(string, port.Fields)          {}
func (nopLogger) Error(string, error, port.Fields)  {}
func (nopLogger) Debug(string, port.Fields)         {}
func (nopLogger) WithFields(port.Fields) port.LoggerPort {
	return nopLogger{}
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New("", nopLogger{})
	require.NoError(t, err)
	return e
}

func fetched(platform, url, contentType, body string) domain.RawFetchResult {
	return domain.RawFetchResult{
		Platform:    platform,
		URL:         url,
		Body:        []byte(body),
		ContentType: contentType,
		FetchedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestExtractSkipsFailedFetches(t *testing.T) {
	e := newTestExtractor(t)

	result := fetched(constants.PlatformMogi, "https://mogi.vn/mua-nha-dat", "text/html", "<html></html>")
	result.Failure = domain.FetchTimeout

	assert.Empty(t, e.Extract(result))
}

func TestParseFieldSelector(t *testing.T) {
	tests := []struct {
		spec     string
		wantCSS  string
		wantMode fieldMode
		wantAttr string
	}{
		{".re__card-title::text", ".re__card-title", fieldText, ""},
		{"::attr(href)", "", fieldAttr, "href"},
		{"img::attr(src)", "img", fieldAttr, "src"},
		{".price", ".price", fieldText, ""},
		{" .area::text ", ".area", fieldText, ""},
	}

	for _, tt := range tests {
		css, mode, attr := parseFieldSelector(tt.spec)
		assert.Equal(t, tt.wantCSS, css, tt.spec)
		assert.Equal(t, tt.wantMode, mode, tt.spec)
		assert.Equal(t, tt.wantAttr, attr, tt.spec)
	}
}

func TestLoadSelectorSetOverrideMergesPerPlatform(t *testing.T) {
	dir := t.TempDir()
	overridePath := filepath.Join(dir, "selectors.yaml")
	override := `platforms:
  mogi:
    list:
      container: ".new-card"
      fields:
        title: ".new-title::text"
`
	require.NoError(t, os.WriteFile(overridePath, []byte(override), 0o644))

	set, err := loadSelectorSet(overridePath)
	require.NoError(t, err)

	// Patched platform uses the override.
	assert.Equal(t, ".new-card", set.Platforms["mogi"].List.Container)
	// Untouched platforms keep the embedded defaults.
	assert.Equal(t, ".js__product-link-for-product-id", set.Platforms["batdongsan"].List.Container)
	assert.Equal(t, ".content-item", set.Platforms["alonhadat"].List.Container)
}

func TestLoadSelectorSetRejectsBrokenOverride(t *testing.T) {
	dir := t.TempDir()
	overridePath := filepath.Join(dir, "selectors.yaml")
	require.NoError(t, os.WriteFile(overridePath, []byte("platforms: ["), 0o644))

	_, err := loadSelectorSet(overridePath)
	assert.Error(t, err)
}

func TestReloadKeepsPreviousSelectorsOnBrokenFile(t *testing.T) {
	dir := t.TempDir()
	overridePath := filepath.Join(dir, "selectors.yaml")
	require.NoError(t, os.WriteFile(overridePath, []byte(`platforms:
  mogi:
    list:
      container: ".patched"
`), 0o644))

	e, err := New(overridePath, nopLogger{})
	require.NoError(t, err)
	defer e.Close()

	cfg, ok := e.platformSelectors("mogi")
	require.True(t, ok)
	require.Equal(t, ".patched", cfg.List.Container)

	require.NoError(t, os.WriteFile(overridePath, []byte("platforms: ["), 0o644))
	e.reload()

	cfg, ok = e.platformSelectors("mogi")
	require.True(t, ok)
	assert.Equal(t, ".patched", cfg.List.Container)
}

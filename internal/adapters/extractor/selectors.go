package extractor

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed selectors.yaml
var embeddedSelectors []byte

// SectionSelectors describes how to pull listings out of one page kind.
// Container matches the repeated listing blocks; Fields maps logical
// field names to selectors using the "css::text" / "css::attr(name)"
// suffix convention. A selector without css part ("::attr(href)")
// reads from the container element itself.
type SectionSelectors struct {
	Container string            `yaml:"container"`
	Fields    map[string]string `yaml:"fields"`
}

// PlatformSelectors is the full selector map of one platform.
type PlatformSelectors struct {
	List   SectionSelectors `yaml:"list"`
	Detail SectionSelectors `yaml:"detail"`
}

type selectorSet struct {
	Platforms map[string]PlatformSelectors `yaml:"platforms"`
}

// loadSelectorSet parses the embedded defaults and, when overridePath
// is set, overlays the platforms defined in that file. Platforms absent
// from the override keep their embedded entry, so a partial file only
// patches the sites that changed markup.
func loadSelectorSet(overridePath string) (*selectorSet, error) {
	set := &selectorSet{}
	if err := yaml.Unmarshal(embeddedSelectors, set); err != nil {
		return nil, fmt.Errorf("parsing embedded selectors: %w", err)
	}

	if overridePath == "" {
		return set, nil
	}

	data, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("reading selector override %s: %w", overridePath, err)
	}

	override := &selectorSet{}
	if err := yaml.Unmarshal(data, override); err != nil {
		return nil, fmt.Errorf("parsing selector override %s: %w", overridePath, err)
	}

	for platform, selectors := range override.Platforms {
		set.Platforms[platform] = selectors
	}
	return set, nil
}

// fieldMode tells where a field selector reads its value from.
type fieldMode int

const (
	fieldText fieldMode = iota
	fieldAttr
)

// parseFieldSelector splits "css::text" / "css::attr(name)" into the
// css part and the read mode. A bare selector reads text.
func parseFieldSelector(spec string) (css string, mode fieldMode, attr string) {
	spec = strings.TrimSpace(spec)

	idx := strings.LastIndex(spec, "::")
	if idx < 0 {
		return spec, fieldText, ""
	}

	css = strings.TrimSpace(spec[:idx])
	suffix := spec[idx+2:]

	switch {
	case suffix == "text":
		return css, fieldText, ""
	case strings.HasPrefix(suffix, "attr(") && strings.HasSuffix(suffix, ")"):
		return css, fieldAttr, suffix[5 : len(suffix)-1]
	default:
		// Unknown suffix, treat the whole spec as a css selector.
		return spec, fieldText, ""
	}
}

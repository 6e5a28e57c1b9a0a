package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed publishing.yaml
var publishingDefaults []byte

// TOCSettings names the reserved markup identifiers used by the TOC
// transforms. Both ids are reserved: user-authored content must never
// carry them.
type TOCSettings struct {
	HeadingID string `yaml:"heading_id"`
	ListID    string `yaml:"list_id"`
	Title     string `yaml:"title"`
}

// AdSettings are the default interval parameters for read-time ad-marker
// insertion. Requests may override them per view.
type AdSettings struct {
	SkipFirst int `yaml:"skip_first"`
	Interval  int `yaml:"interval"`
	MaxSlots  int `yaml:"max_slots"`
}

// Publishing holds the embedded publishing defaults.
type Publishing struct {
	TOC TOCSettings `yaml:"toc"`
	Ads AdSettings  `yaml:"ads"`
}

// LoadPublishing parses the embedded defaults and applies environment
// overrides (AD_SKIP_FIRST, AD_INTERVAL, AD_MAX_SLOTS).
func LoadPublishing() (*Publishing, error) {
	var pub Publishing
	if err := yaml.Unmarshal(publishingDefaults, &pub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal publishing defaults: %w", err)
	}

	if pub.TOC.HeadingID == "" || pub.TOC.ListID == "" {
		return nil, fmt.Errorf("publishing defaults missing reserved TOC ids")
	}

	applyIntEnv("AD_SKIP_FIRST", &pub.Ads.SkipFirst)
	applyIntEnv("AD_INTERVAL", &pub.Ads.Interval)
	applyIntEnv("AD_MAX_SLOTS", &pub.Ads.MaxSlots)

	return &pub, nil
}

// applyIntEnv overrides dst when the env var holds a valid integer
func applyIntEnv(key string, dst *int) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	if n, err := strconv.Atoi(value); err == nil {
		*dst = n
	}
}

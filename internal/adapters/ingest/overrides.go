package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AgeClassOverride reassigns one athlete to a different age class for a
// specific cup season, correcting feeds where the timing software recorded
// the wrong class.
type AgeClassOverride struct {
	Cup      string `yaml:"cup"`
	Season   int    `yaml:"season"`
	Name     string `yaml:"name"`
	AgeClass string `yaml:"ageclass"`
}

// LoadOverrides reads age class overrides from a YAML file. A missing path
// yields no overrides.
func LoadOverrides(path string) ([]AgeClassOverride, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides file: %w", err)
	}
	var overrides []AgeClassOverride
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse overrides file: %w", err)
	}
	return overrides, nil
}

// overrideAgeClass returns the corrected age class for an athlete, or the
// recorded one when no override applies.
func overrideAgeClass(overrides []AgeClassOverride, cup string, season int, name, ageClass string) string {
	for _, o := range overrides {
		if o.Name == name && o.Cup == cup && o.Season == season {
			return o.AgeClass
		}
	}
	return ageClass
}

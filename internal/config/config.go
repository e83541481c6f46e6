// Package config loads optional settings profiles from YAML files. A
// profile seeds the settings store before any command-line option runs,
// so a pipeline can pin its quality, background and similar defaults in
// a file instead of repeating them on every invocation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is a flat name/value map of setting defaults, keyed by the
// same names the command-line settings use.
type Profile map[string]string

// profileFile is the on-disk shape: settings nested under one key so
// the format has room for future sections.
type profileFile struct {
	Settings map[string]string `yaml:"settings"`
}

// LoadProfile reads a YAML profile. A missing file is not an error; it
// yields an empty profile so callers need no existence check.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, nil
		}
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if pf.Settings == nil {
		return Profile{}, nil
	}
	return Profile(pf.Settings), nil
}

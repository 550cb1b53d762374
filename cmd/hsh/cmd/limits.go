package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"

	"github.com/hermetic-sh/hsh"
)

var limitsFile string

// loadLimits builds hsh.Limits from two layers, lowest to highest
// precedence: HSH_-prefixed environment variables, then --limits-file's
// YAML document. Zero fields at every layer fall back to
// state.DefaultLimits inside hsh.Run itself.
func loadLimits() (hsh.Limits, error) {
	var l hsh.Limits
	if err := envconfig.Process("hsh", &l); err != nil {
		return l, fmt.Errorf("reading HSH_* environment limits: %w", err)
	}

	if limitsFile != "" {
		data, err := os.ReadFile(limitsFile)
		if err != nil {
			return l, fmt.Errorf("reading limits file %s: %w", limitsFile, err)
		}
		if err := yaml.Unmarshal(data, &l); err != nil {
			return l, fmt.Errorf("parsing limits file %s: %w", limitsFile, err)
		}
	}

	return l, nil
}

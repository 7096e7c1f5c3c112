package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DiscoverDatasets resolves the configured dataset globs against DataDir
// and returns the matching paths, relative to DataDir and sorted.
func (c *Config) DiscoverDatasets() ([]string, error) {
	fsys := os.DirFS(c.DataDir)

	seen := make(map[string]bool)
	for _, pattern := range c.Datasets {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("resolving dataset glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			seen[match] = true
		}
	}

	var out []string
	for match := range seen {
		if c.excluded(match) {
			continue
		}
		out = append(out, match)
	}
	sort.Strings(out)
	return out, nil
}

func (c *Config) excluded(path string) bool {
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

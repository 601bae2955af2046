// Package source implements the ingestion sources: the structured baseline
// feed and the unstructured news-announcement scrapers.
package source

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SourceType selects how an announcement source is fetched and parsed.
type SourceType string

const (
	// TypeHTML scrapes a news listing page with CSS selectors.
	TypeHTML SourceType = "html"
	// TypeRSS parses an RSS/Atom feed.
	TypeRSS SourceType = "rss"
)

// Selectors locate the repeated article containers and the title node within
// each, for HTML sources.
type Selectors struct {
	Container string `yaml:"container"`
	Title     string `yaml:"title"`
}

// Config describes one announcement source.
type Config struct {
	Name      string     `yaml:"name"`
	URL       string     `yaml:"url"`
	Type      SourceType `yaml:"type"`
	Selectors Selectors  `yaml:"selectors"`
}

//go:embed default_sources.yaml
var defaultSourcesYAML []byte

// DefaultSources returns the built-in announcement source list.
func DefaultSources() []Config {
	sources, err := parseSources(defaultSourcesYAML)
	if err != nil {
		// The embedded file is validated by tests; this cannot happen at runtime.
		panic(err)
	}
	return sources
}

// LoadSources reads an announcement source list from a YAML file.
func LoadSources(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read sources file %s", path)
	}
	sources, err := parseSources(data)
	if err != nil {
		return nil, eris.Wrapf(err, "source: parse sources file %s", path)
	}
	return sources, nil
}

func parseSources(data []byte) ([]Config, error) {
	var wrapper struct {
		Sources []Config `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "source: unmarshal yaml")
	}
	for i := range wrapper.Sources {
		if wrapper.Sources[i].Type == "" {
			wrapper.Sources[i].Type = TypeHTML
		}
	}
	return wrapper.Sources, nil
}

package scrape

import (
	"errors"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type sourcesScrapeSection struct {
	URLs []string `toml:"urls"`
}

type sourcesProfile struct {
	Version int                  `toml:"version"`
	Scrape  sourcesScrapeSection `toml:"scrape"`
}

// LoadSources reads the case source list from a TOML file. Blank entries are
// dropped; an empty resulting list is an error because the pipeline would
// have nothing to serve.
func LoadSources(sourcesFile string) ([]string, error) {
	path := strings.TrimSpace(sourcesFile)
	if path == "" {
		return nil, errors.New("sources file is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var profile sourcesProfile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return nil, err
	}
	if profile.Version != 1 {
		return nil, errors.New("unsupported sources version: expected version = 1")
	}

	urls := make([]string, 0, len(profile.Scrape.URLs))
	for _, raw := range profile.Scrape.URLs {
		url := strings.TrimSpace(raw)
		if url == "" {
			continue
		}
		urls = append(urls, url)
	}

	if len(urls) == 0 {
		return nil, errors.New("sources file lists no urls")
	}
	return urls, nil
}

package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"uwcatalog/internal/catalog"
	"uwcatalog/internal/components/configutil"
	"uwcatalog/internal/components/telemetry"
	"uwcatalog/internal/scrapers/uwcatalog"
)

type Config struct {
	UserAgent         string  `json:"user_agent"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Concurrency       int     `json:"concurrency"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	Retries           int     `json:"retries"`
	// CampusUrls overrides the directory url of a campus, keyed by campus
	// name (ex. "seattle").
	CampusUrls map[string]string `json:"campus_urls"`
	Telemetry  telemetry.Config  `json:"telemetry"`
}

var defaultConfig = Config{
	UserAgent:         "uwcatalog/1.0 (+https://www.washington.edu/students/crscat/)",
	RequestsPerSecond: 4,
	Concurrency:       4,
	TimeoutSeconds:    30,
	Retries:           2,
}

// readConfig reads the config file at path, a missing file yields the
// default config.
func readConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultConfig, nil
	}
	if err != nil {
		return Config{}, err
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultConfig.UserAgent
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = defaultConfig.RequestsPerSecond
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConfig.Concurrency
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = defaultConfig.TimeoutSeconds
	}
	return cfg, nil
}

func (c Config) clientOptions() (uwcatalog.ClientOptions, error) {
	directories := make(map[catalog.Campus]string)
	for name, link := range c.CampusUrls {
		campus, err := catalog.ParseCampus(name)
		if err != nil {
			return uwcatalog.ClientOptions{}, fmt.Errorf("campus_urls: %w", err)
		}
		directories[campus] = link
	}
	return uwcatalog.ClientOptions{
		UserAgent:         c.UserAgent,
		RequestsPerSecond: c.RequestsPerSecond,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		Retries:           c.Retries,
		DirectoryUrls:     directories,
	}, nil
}

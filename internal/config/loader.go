package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const crawlerFile = "crawler.yaml"

// LoadCrawler loads the demo settings.
// Search order: customPath -> ~/.crawler/configs/crawler.yaml -> ./configs/crawler.yaml -> embedded default
// Fields missing from the chosen file keep their default values.
func LoadCrawler(customPath string) (CrawlerConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return DefaultCrawlerConfig(), fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parseCrawler(data)
		if err != nil {
			return DefaultCrawlerConfig(), fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(crawlerFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parseCrawler(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", crawlerFile)); err == nil {
		if cfg, err := parseCrawler(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parseCrawler(defaultCrawlerYAML)
	if err != nil {
		return DefaultCrawlerConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

func parseCrawler(data []byte) (CrawlerConfig, error) {
	cfg := DefaultCrawlerConfig()
	// keys replace the default bindings wholesale when present
	cfg.Keys = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Keys == nil {
		cfg.Keys = DefaultCrawlerConfig().Keys
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".crawler", "configs", filename)
}

// DataDir returns ~/.crawler, the directory holding the log file and the
// default database, or "." if home is unavailable.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".crawler")
}

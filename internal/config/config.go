package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// APIConfig tunes the Google Books client.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RPS            int    `yaml:"rps"`
	MaxRetries     int    `yaml:"max_retries"`
}

// Timeout returns the request timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SearchConfig tunes the search controller.
type SearchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// Debounce returns the filter-edit quiet window as a duration.
func (c SearchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// FavoritesConfig locates the durable favorites storage.
type FavoritesConfig struct {
	DBPath string `yaml:"db_path"`
}

type Config struct {
	API       APIConfig       `yaml:"api"`
	Search    SearchConfig    `yaml:"search"`
	Favorites FavoritesConfig `yaml:"favorites"`
	Debug     bool            `yaml:"debug"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "https://www.googleapis.com/books/v1",
			UserAgent:      "bookfinder/1.0",
			TimeoutSeconds: 15,
			RPS:            5,
			MaxRetries:     2,
		},
		Search: SearchConfig{
			DebounceMS: 1000,
		},
		Favorites: FavoritesConfig{
			DBPath: "bookfinder.db",
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Package config handles repository configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config represents repository configuration stored in .scholarmind/config.json.
type Config struct {
	OllamaURL      string  `json:"ollama_url,omitempty"`
	Model          string  `json:"model,omitempty"`
	Dimensions     int     `json:"dimensions,omitempty"`
	SearchLimit    int     `json:"search_limit,omitempty"`
	RecommendLimit int     `json:"recommend_limit,omitempty"`
	EmbedRate      float64 `json:"embed_rate,omitempty"` // requests per second, 0 = unlimited
}

const (
	RepoDir    = ".scholarmind"
	ConfigFile = "config.json"
	PapersFile = "papers.jsonl"
	CacheDir   = "cache"
	DBFile     = "papers.db"
)

// Defaults for fields left unset.
const (
	DefaultOllamaURL      = "http://localhost:11434"
	DefaultModel          = "all-minilm:l6-v2"
	DefaultDimensions     = 384
	DefaultSearchLimit    = 15
	DefaultRecommendLimit = 3
)

// ErrNotRepository is returned when no .scholarmind directory is found.
var ErrNotRepository = errors.New("not in a scholarmind repository (no .scholarmind directory found)")

// Default returns a config with every field set to its default.
func Default() *Config {
	return &Config{
		OllamaURL:      DefaultOllamaURL,
		Model:          DefaultModel,
		Dimensions:     DefaultDimensions,
		SearchLimit:    DefaultSearchLimit,
		RecommendLimit: DefaultRecommendLimit,
	}
}

// RepoPath returns the path to the .scholarmind directory from a root path.
func RepoPath(root string) string {
	return filepath.Join(root, RepoDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, RepoDir, ConfigFile)
}

// PapersPath returns the path to papers.jsonl from a root path.
func PapersPath(root string) string {
	return filepath.Join(root, RepoDir, PapersFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, RepoDir, CacheDir)
}

// DBPath returns the path to papers.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, RepoDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a scholarmind repository.
func IsRepository(root string) bool {
	info, err := os.Stat(RepoPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a scholarmind repository.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotRepository
		}
		abs = parent
	}
}

// readFile returns only the fields set in config.json.
func readFile(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var file Config
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &file, nil
}

// merge copies every set field of other into c.
func (c *Config) merge(other *Config) {
	if other.OllamaURL != "" {
		c.OllamaURL = other.OllamaURL
	}
	if other.Model != "" {
		c.Model = other.Model
	}
	if other.Dimensions != 0 {
		c.Dimensions = other.Dimensions
	}
	if other.SearchLimit != 0 {
		c.SearchLimit = other.SearchLimit
	}
	if other.RecommendLimit != 0 {
		c.RecommendLimit = other.RecommendLimit
	}
	if other.EmbedRate != 0 {
		c.EmbedRate = other.EmbedRate
	}
}

// Validate rejects values the engine cannot work with.
func (c *Config) Validate() error {
	if c.Dimensions < 0 {
		return fmt.Errorf("invalid dimensions: %d", c.Dimensions)
	}
	if c.SearchLimit < 0 {
		return fmt.Errorf("invalid search_limit: %d", c.SearchLimit)
	}
	if c.RecommendLimit < 0 {
		return fmt.Errorf("invalid recommend_limit: %d", c.RecommendLimit)
	}
	if c.EmbedRate < 0 {
		return fmt.Errorf("invalid embed_rate: %v", c.EmbedRate)
	}
	if c.OllamaURL != "" && !strings.HasPrefix(c.OllamaURL, "http://") && !strings.HasPrefix(c.OllamaURL, "https://") {
		return fmt.Errorf("invalid ollama_url: %s (must start with http:// or https://)", c.OllamaURL)
	}
	return nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}

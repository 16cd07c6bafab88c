package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file configuration.
const (
	EnvRoot       = "SM_ROOT"
	EnvOllamaHost = "OLLAMA_HOST"
)

// LoadEnv reads a .env file from the working directory, if present.
// Variables already set in the environment win.
func LoadEnv() {
	_ = godotenv.Load()
}

// Resolve layers configuration for the repository at root.
// Precedence, highest first: environment, repository config, global config, defaults.
func Resolve(root string) (*Config, error) {
	file, err := readFile(root)
	if err != nil {
		return nil, err
	}
	global, err := LoadGlobalConfig()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.merge(&Config{OllamaURL: global.OllamaURL, Model: global.Model})
	cfg.merge(file)
	if v := os.Getenv(EnvOllamaHost); v != "" {
		cfg.OllamaURL = normalizeHost(v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RootPath returns the configured repository root: SM_ROOT first, then the
// global root_path. Empty means search upward from the working directory.
func RootPath() string {
	if v := os.Getenv(EnvRoot); v != "" {
		return ExpandPath(v)
	}
	global, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return global.RootPath
}

// normalizeHost accepts OLLAMA_HOST in the bare host:port form the ollama CLI uses.
func normalizeHost(v string) string {
	if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		return v
	}
	return "http://" + v
}

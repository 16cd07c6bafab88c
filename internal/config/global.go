package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "scholarmind"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// GlobalConfig holds per-user settings shared by every repository:
// a default repository and the Ollama endpoint and model to embed with.
type GlobalConfig struct {
	RootPath  string `yaml:"root_path,omitempty"`
	OllamaURL string `yaml:"ollama_url,omitempty"`
	Model     string `yaml:"model,omitempty"`
}

// globalCache holds the global config once it has been read.
var globalCache struct {
	sync.Mutex
	cfg *GlobalConfig
}

// GlobalConfigPath returns $XDG_CONFIG_HOME/scholarmind/config.yml,
// falling back to ~/.config. Empty when no home directory is known.
func GlobalConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig returns the user's global config. A missing file
// yields an empty config; unknown keys are an error.
func LoadGlobalConfig() (*GlobalConfig, error) {
	globalCache.Lock()
	defer globalCache.Unlock()

	if globalCache.cfg != nil {
		return globalCache.cfg, nil
	}
	cfg, err := readGlobalConfig(GlobalConfigPath())
	if err != nil {
		return nil, err
	}
	globalCache.cfg = cfg
	return cfg, nil
}

func readGlobalConfig(path string) (*GlobalConfig, error) {
	if path == "" {
		return &GlobalConfig{}, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &GlobalConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading global config: %w", err)
	}
	defer f.Close()

	var cfg GlobalConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing global config %s: %w", path, err)
	}
	cfg.RootPath = ExpandPath(cfg.RootPath)
	return &cfg, nil
}

// ResetGlobalConfigCache forces the next LoadGlobalConfig to read the file again.
func ResetGlobalConfigCache() {
	globalCache.Lock()
	globalCache.cfg = nil
	globalCache.Unlock()
}

// HelpfulConfigMessage explains how to point sm at a default repository.
func HelpfulConfigMessage() string {
	path := GlobalConfigPath()
	return fmt.Sprintf(`No scholarmind repository found.

Run 'sm init' in a directory, or set a default repository in %s:
  mkdir -p %s
  echo 'root_path: /path/to/your/papers' > %s

The same file accepts ollama_url and model to share embedding settings
across repositories.`,
		path,
		filepath.Dir(path),
		path)
}

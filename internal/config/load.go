package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the name of the Heron configuration file.
const ConfigFileName = "heron.toml"

// FindConfigFile walks up from the given directory to find heron.toml.
// Returns the absolute path to the config file, or an empty string if not found.
// Stops at the filesystem root.
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root.
			return "", nil
		}
		dir = parent
	}
}

// LoadFromFile parses the TOML file at the given path and returns the
// configuration and TOML metadata. The metadata can be used to detect
// unknown keys via MetaData.Undecoded().
func LoadFromFile(path string) (*Config, toml.MetaData, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, md, fmt.Errorf("loading config %s: %w", path, err)
	}
	return &cfg, md, nil
}

// Load resolves configuration for startDir: it walks up for heron.toml and
// falls back to defaults when no file exists. The returned metadata is nil
// in the fallback case.
func Load(startDir string) (*Config, *toml.MetaData, error) {
	path, err := FindConfigFile(startDir)
	if err != nil {
		return nil, nil, err
	}
	if path == "" {
		return NewDefaults(), nil, nil
	}

	cfg, md, err := LoadFromFile(path)
	if err != nil {
		return nil, nil, err
	}
	applyDefaults(cfg)
	return cfg, &md, nil
}

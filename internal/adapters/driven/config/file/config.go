// Package file provides the TOML configuration file for the engine.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigDir is the directory under the user's home that holds the
// config file when no explicit directory is given.
const DefaultConfigDir = ".discovery"

// Config is the engine's on-disk configuration.
type Config struct {
	// DataDir is where the SQLite database lives. Empty means the default
	// under the config directory.
	DataDir string `toml:"data_dir"`

	// LibraryDir is the directory of workout markdown files to index.
	LibraryDir string `toml:"library_dir"`

	// Verbose enables debug logging.
	Verbose bool `toml:"verbose"`

	Search     SearchConfig     `toml:"search"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Generation GenerationConfig `toml:"generation"`
}

// SearchConfig tunes retrieval behavior.
type SearchConfig struct {
	// ConfidenceThreshold gates low-confidence generation. Zero means the
	// engine default.
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai" or "hashed" (default: hashed).
	Provider string `toml:"provider"`

	// APIKey for the remote provider. The OPENAI_API_KEY environment
	// variable takes precedence.
	APIKey string `toml:"api_key"`

	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
}

// GenerationConfig configures the tool-calling service.
type GenerationConfig struct {
	// APIKey for the Anthropic API. The ANTHROPIC_API_KEY environment
	// variable takes precedence. Empty disables live generation.
	APIKey string `toml:"api_key"`

	BaseURL           string `toml:"base_url"`
	Model             string `toml:"model"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir, "config.toml"), nil
}

// Load reads the config at path. A missing file yields the zero config with
// environment overrides applied, not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()
	return &cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	// Restricted permissions: the file can carry API keys.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// applyEnv lets environment variables override stored credentials.
func (c *Config) applyEnv() {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.Generation.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Embedding.APIKey = key
	}
}

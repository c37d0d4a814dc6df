package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for docai.
type Config struct {
	Generation GenerationConfig `yaml:"generation"`
	Document   DocumentConfig   `yaml:"document"`
	Cache      CacheConfig      `yaml:"cache"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GenerationConfig selects the backend that writes doc comments.
type GenerationConfig struct {
	Provider    string        `yaml:"provider"`    // "huggingface", "openai", "deepseek", "ollama", "anthropic", "mock"
	Model       string        `yaml:"model"`       // empty uses the provider default
	BaseURL     string        `yaml:"base_url"`
	APIKeyEnv   string        `yaml:"api_key_env"` // Environment variable for API key
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	Concurrency int           `yaml:"concurrency"`
}

// DocumentConfig holds defaults for a documentation run.
type DocumentConfig struct {
	Inline     bool     `yaml:"inline"`
	SpliceMode string   `yaml:"splice_mode"` // "offset" or "search"
	AllowDirty bool     `yaml:"allow_dirty"`
	Includes   []string `yaml:"includes"`
	Excludes   []string `yaml:"excludes"`
}

// CacheConfig holds generated-doc cache configuration.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Path       string        `yaml:"path"` // empty uses .docai/cache.db under the working directory
	MemorySize int           `yaml:"memory_size"`
	MemoryTTL  time.Duration `yaml:"memory_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Generation: GenerationConfig{
			Provider:    "huggingface",
			Model:       "codellama/CodeLlama-7b-hf",
			MaxTokens:   1024,
			Temperature: 0.2,
			Timeout:     120 * time.Second,
			MaxRetries:  3,
			Concurrency: 1,
		},
		Document: DocumentConfig{
			SpliceMode: "offset",
			Excludes:   []string{"**/node_modules/**", "**/vendor/**", "**/.git/**", "**/dist/**", "**/build/**", "**/target/**", "**/__pycache__/**", "**/*.min.js"},
		},
		Cache: CacheConfig{
			Enabled:    true,
			MemorySize: 256,
			MemoryTTL:  time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docai.yaml,
// then .docai/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docai.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docai", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadEnv reads an optional .env file in dir into the process environment.
// Variables already set win. It reports whether a file was loaded.
func LoadEnv(dir string) bool {
	return godotenv.Load(filepath.Join(dir, ".env")) == nil
}

// ApplyEnv overrides generation settings from DOCAI_* variables.
func (c *Config) ApplyEnv() {
	c.Generation.Provider = getEnv("DOCAI_PROVIDER", c.Generation.Provider)
	c.Generation.Model = getEnv("DOCAI_MODEL", c.Generation.Model)
	c.Generation.BaseURL = getEnv("DOCAI_BASE_URL", c.Generation.BaseURL)
	c.Generation.Concurrency = getEnvInt("DOCAI_CONCURRENCY", c.Generation.Concurrency)
	c.Logging.Level = getEnv("DOCAI_LOG_LEVEL", c.Logging.Level)
}

// CacheDBPath returns the doc cache database path for a working directory.
func (c *Config) CacheDBPath(dir string) string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return filepath.Join(dir, ".docai", "cache.db")
}

// EnsureDir ensures the .docai directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".docai"), 0755)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

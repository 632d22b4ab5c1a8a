// Package config holds caseforge configuration: a YAML file with
// environment variable overrides layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"caseforge/internal/corpus"
	"caseforge/internal/embedding"
	"caseforge/internal/llm"
)

// Config holds all caseforge configuration.
type Config struct {
	// LLM configures the generation model provider.
	LLM llm.Config `yaml:"llm"`

	// Embedding configures the encoder for compliance matching.
	Embedding embedding.Config `yaml:"embedding"`

	// Corpus configures the compliance snippet store.
	Corpus corpus.Config `yaml:"corpus"`

	// Generation tunes the orchestrator.
	Generation GenerationConfig `yaml:"generation"`

	// Server configures the HTTP layer.
	Server ServerConfig `yaml:"server"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// GenerationConfig tunes the generation orchestrator.
type GenerationConfig struct {
	Concurrency    int    `yaml:"concurrency"`
	RepairAttempts int    `yaml:"repair_attempts"`
	CasesMin       int    `yaml:"cases_min"`
	StepsMin       int    `yaml:"steps_min"`
	RequestTimeout string `yaml:"request_timeout"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM:       llm.DefaultConfig(),
		Embedding: embedding.DefaultConfig(),
		Corpus:    corpus.DefaultConfig(),
		Generation: GenerationConfig{
			Concurrency:    4,
			RepairAttempts: 1,
			CasesMin:       3,
			StepsMin:       3,
			RequestTimeout: "120s",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file. Missing file falls back to
// defaults; env overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// LLM provider keys, checked in priority order.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		if c.LLM.Provider == "" {
			c.LLM.Provider = "openai"
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = key
			c.LLM.Provider = "gemini"
		}
		if c.Embedding.APIKey == "" {
			c.Embedding.APIKey = key
		}
	}

	if v := os.Getenv("CASEFORGE_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("CASEFORGE_EMBEDDING_PROVIDER"); v != "" {
		c.Embedding.Provider = v
	}
	if v := os.Getenv("OLLAMA_ENDPOINT"); v != "" {
		c.Embedding.Endpoint = v
	}
	if v := os.Getenv("CASEFORGE_SNIPPETS_PATH"); v != "" {
		c.Corpus.SnippetsPath = v
	}
	if v := os.Getenv("CASEFORGE_CACHE_PATH"); v != "" {
		c.Corpus.CachePath = v
	}
	if v := os.Getenv("CASEFORGE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("CASEFORGE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// RequestTimeout returns the generation request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Generation.RequestTimeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// ListenAddr returns the host:port the server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

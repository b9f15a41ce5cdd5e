package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all task agent configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Logging   LoggingConfig   `yaml:"logging"`
	Workspace WorkspaceConfig `yaml:"workspace"`
}

// ServerConfig configures the dashboard HTTP API.
type ServerConfig struct {
	Address         string   `yaml:"address" validate:"required"`
	AllowAllOrigins bool     `yaml:"allow_all_origins"`
	AllowOrigins    []string `yaml:"allow_origins"`
}

// LLMConfig configures the hosted model service.
type LLMConfig struct {
	Provider string `yaml:"provider" validate:"oneof=gemini"`
	APIKey   string `yaml:"api_key" validate:"required"`
	Model    string `yaml:"model" validate:"required"`
	Timeout  string `yaml:"timeout"` // empty or "0" waits forever
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// WorkspaceConfig controls how a new session is populated.
type WorkspaceConfig struct {
	SeedDemoTasks bool `yaml:"seed_demo_tasks"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			AllowAllOrigins: true,
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Workspace: WorkspaceConfig{
			SeedDemoTasks: true,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	} else if key := os.Getenv("API_KEY"); key != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = key
	}
	if addr := os.Getenv("TASK_AGENT_ADDR"); addr != "" {
		c.Server.Address = addr
	}
}

// Validate checks the configuration with v.
func (c *Config) Validate(v *validator.Validate) error {
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.LLM.TimeoutDuration(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TimeoutDuration parses Timeout. Zero means no timeout.
func (l LLMConfig) TimeoutDuration() (time.Duration, error) {
	if l.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(l.Timeout)
	if err != nil {
		return 0, fmt.Errorf("llm.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("llm.timeout must not be negative")
	}
	return d, nil
}

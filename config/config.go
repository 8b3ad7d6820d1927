package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	API struct {
		BaseURL string        `yaml:"base_url" toml:"base_url" validate:"required,url"`
		Timeout time.Duration `yaml:"timeout" toml:"timeout" validate:"gte=0"`
	} `yaml:"api" toml:"api"`
	User struct {
		// Name is matched against assigned_to for the "my cases" filter
		Name string `yaml:"name" toml:"name"`
	} `yaml:"user" toml:"user"`
	Polling struct {
		Documents time.Duration `yaml:"documents" toml:"documents" validate:"gt=0"`
		Dashboard time.Duration `yaml:"dashboard" toml:"dashboard" validate:"gt=0"`
	} `yaml:"polling" toml:"polling"`
	Paths struct {
		InboxDir string `yaml:"inbox_dir" toml:"inbox_dir"`
	} `yaml:"paths" toml:"paths"`
	Log struct {
		File  string `yaml:"file" toml:"file"`
		Level string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
	} `yaml:"log" toml:"log"`
}

// Dir returns the directory holding the config file and the log
func Dir() string {
	return filepath.Join(os.Getenv("HOME"), ".casedesk")
}

// Load loads configuration from path, or from the default location when path
// is empty. A missing file yields defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile(Dir())
	}

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return cfg, err
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file in dir, or ""
func findConfigFile(dir string) string {
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}
	return nil
}

// applyEnv overrides file values with CASEDESK_* environment variables
func (c *Config) applyEnv() {
	if v := os.Getenv("CASEDESK_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CASEDESK_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.API.Timeout = d
		}
	}
	if v := os.Getenv("CASEDESK_USER"); v != "" {
		c.User.Name = v
	}
	if v := os.Getenv("CASEDESK_INBOX_DIR"); v != "" {
		c.Paths.InboxDir = v
	}
	if v := os.Getenv("CASEDESK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save saves configuration as YAML to the default location
func (c *Config) Save() error {
	configDir := Dir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}

	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.Timeout = 5 * time.Minute
	cfg.User.Name = "Alex"
	cfg.Polling.Documents = 60 * time.Second
	cfg.Polling.Dashboard = 30 * time.Second
	cfg.Paths.InboxDir = ""
	cfg.Log.File = filepath.Join(Dir(), "casedesk.log")
	cfg.Log.Level = "info"

	return cfg
}

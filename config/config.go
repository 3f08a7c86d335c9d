// Package config loads settings for the product grid from a YAML file,
// an optional .env file and the process environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProxyURL = "http://localhost:3000/api/shopify"
	DefaultLimit    = 6
)

type ProxyConfig struct {
	URL string `yaml:"url"`
	// Timeout is the request timeout in seconds.
	Timeout int               `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

type GridConfig struct {
	// Limit is how many products one fetch asks for.
	Limit int `yaml:"limit"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Config struct {
	Proxy  ProxyConfig  `yaml:"proxy"`
	Grid   GridConfig   `yaml:"grid"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// DefaultConfig returns a new Config with default values. Each call returns
// a distinct instance.
func DefaultConfig() *Config {
	return &Config{
		Proxy: ProxyConfig{
			URL:     DefaultProxyURL,
			Timeout: 30,
		},
		Grid: GridConfig{
			Limit: DefaultLimit,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads the YAML file at path on top of DefaultConfig, so keys
// missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: read file")
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}

	return cfg, nil
}

// LoadDotEnv loads the given .env files into the environment. A missing file
// is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(err, "config: load %s", f)
		}
	}
	return nil
}

// ApplyEnvOverrides updates cfg in place from the environment.
// Recognized variables:
//   - PRODUCT_GRID_PROXY_URL overrides cfg.Proxy.URL
//   - PRODUCT_GRID_LIMIT overrides cfg.Grid.Limit
//   - PRODUCT_GRID_LOG_LEVEL overrides cfg.Log.Level
//   - PORT overrides cfg.Server.Port
func ApplyEnvOverrides(cfg *Config) error {
	if url := os.Getenv("PRODUCT_GRID_PROXY_URL"); url != "" {
		cfg.Proxy.URL = url
	}
	if level := os.Getenv("PRODUCT_GRID_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if v := os.Getenv("PRODUCT_GRID_LIMIT"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrap(err, "config: PRODUCT_GRID_LIMIT")
		}
		cfg.Grid.Limit = n
	}
	if v := os.Getenv("PORT"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrap(err, "config: PORT")
		}
		cfg.Server.Port = n
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Proxy.URL == "" {
		return errors.New("config: proxy url is required")
	}
	if c.Grid.Limit <= 0 {
		return errors.Errorf("config: grid limit must be positive, got %d", c.Grid.Limit)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Errorf("config: invalid server port %d", c.Server.Port)
	}
	return nil
}

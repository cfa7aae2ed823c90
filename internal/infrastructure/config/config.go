package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LogConfig       `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Loader    LoaderConfig    `yaml:"loader"`
	Render    RenderConfig    `yaml:"render"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string   `envconfig:"PORT" default:"8000" yaml:"port"`
	Host           string   `envconfig:"HOST" default:"0.0.0.0" yaml:"host"`
	AllowedOrigins []string `envconfig:"CORS_ORIGINS" default:"*" yaml:"allowed_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// RateLimitConfig holds per-IP rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50" yaml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled"`
}

// LoaderConfig configures the external JavaScript module loader. It is
// disabled unless ModulesDir is set or the CDN is enabled.
type LoaderConfig struct {
	ModulesDir    string        `envconfig:"LOADER_MODULES_DIR" yaml:"modules_dir"`
	CDNEnabled    bool          `envconfig:"LOADER_CDN_ENABLED" default:"false" yaml:"cdn_enabled"`
	CDNURL        string        `envconfig:"LOADER_CDN_URL" default:"https://cdn.jsdelivr.net/npm/" yaml:"cdn_url"`
	CDNTimeout    time.Duration `envconfig:"LOADER_CDN_TIMEOUT" default:"10s" yaml:"cdn_timeout"`
	CDNRate       float64       `envconfig:"LOADER_CDN_RPS" default:"5" yaml:"cdn_rps"`
	ScriptTimeout time.Duration `envconfig:"LOADER_SCRIPT_TIMEOUT" default:"2s" yaml:"script_timeout"`
}

// Enabled reports whether any module source is configured.
func (c LoaderConfig) Enabled() bool {
	return c.ModulesDir != "" || c.CDNEnabled
}

// RenderConfig configures page rendering.
type RenderConfig struct {
	KeepScripts  bool `envconfig:"RENDER_KEEP_SCRIPTS" default:"true" yaml:"keep_scripts"`
	MaxPageBytes int  `envconfig:"RENDER_MAX_PAGE_BYTES" default:"10485760" yaml:"max_page_bytes"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile loads the environment configuration and overlays the YAML file at
// path. Keys present in the file win over the environment.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Server.Port))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate limit requires positive rps and burst"))
	}
	if c.Render.MaxPageBytes <= 0 {
		errs = append(errs, errors.New("max page bytes must be positive"))
	}
	if c.Loader.ScriptTimeout <= 0 {
		errs = append(errs, errors.New("script timeout must be positive"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8000",
			Host:           "0.0.0.0",
			AllowedOrigins: []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
		Loader: LoaderConfig{
			CDNURL:        "https://cdn.jsdelivr.net/npm/",
			CDNTimeout:    10 * time.Second,
			CDNRate:       5,
			ScriptTimeout: 2 * time.Second,
		},
		Render: RenderConfig{
			KeepScripts:  true,
			MaxPageBytes: 10 * 1024 * 1024,
		},
	}
}

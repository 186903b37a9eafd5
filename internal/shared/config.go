package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// MaxWorkers bounds [RenderConfig.Workers].
const MaxWorkers = 16

// Storage drivers accepted by [StorageConfig.Driver].
const (
	StorageFile = "file"
	StorageHTTP = "http"
)

var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Sources  SourcesConfig  `toml:"sources"`
	Render   RenderConfig   `toml:"render"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects where rendered diagrams are written.
type StorageConfig struct {
	Driver     string `toml:"driver"`
	Dir        string `toml:"dir"`
	BaseURL    string `toml:"base_url"`
	Bucket     string `toml:"bucket"`
	ServiceKey string `toml:"service_key"`
}

// SourcesConfig controls the tab page fetcher.
type SourcesConfig struct {
	UserAgent      string  `toml:"user_agent"`
	RateLimit      float64 `toml:"rate_limit"` // requests per second
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// RenderConfig holds bulk render defaults.
type RenderConfig struct {
	Workers       int      `toml:"workers"`
	RateLimit     float64  `toml:"rate_limit"` // store writes per second
	PositionTypes []string `toml:"position_types"`
	Frets         []int    `toml:"frets"`
	OutputDir     string   `toml:"output_dir"`
}

// LoadConfig reads and parses a TOML configuration file, then applies GTX_* environment
// overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := ApplyEnv(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads variables from .env files (default ".env") into the process environment.
// Missing files are ignored and variables that are already set win. A file that exists but
// cannot be parsed is [ErrInvalidConfig].
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, f, err)
		}
	}
	return nil
}

// ApplyEnv copies GTX_* environment variables over the matching config values.
func ApplyEnv(c *Config) error {
	strs := map[string]*string{
		"GTX_DATABASE_PATH":       &c.Database.Path,
		"GTX_SERVER_HOST":         &c.Server.Host,
		"GTX_STORAGE_DRIVER":      &c.Storage.Driver,
		"GTX_STORAGE_DIR":         &c.Storage.Dir,
		"GTX_STORAGE_BASE_URL":    &c.Storage.BaseURL,
		"GTX_STORAGE_BUCKET":      &c.Storage.Bucket,
		"GTX_STORAGE_SERVICE_KEY": &c.Storage.ServiceKey,
		"GTX_SOURCES_USER_AGENT":  &c.Sources.UserAgent,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("GTX_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: GTX_SERVER_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("%w: storage.dir is required for the file driver", ErrInvalidConfig)
		}
	case StorageHTTP:
		if c.Storage.BaseURL == "" || c.Storage.Bucket == "" {
			return fmt.Errorf("%w: storage.base_url and storage.bucket are required for the http driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Render.Workers < 0 || c.Render.Workers > MaxWorkers {
		return fmt.Errorf("%w: render.workers must be between 0 and %d", ErrInvalidConfig, MaxWorkers)
	}
	for _, pt := range c.Render.PositionTypes {
		if !slugPattern.MatchString(pt) {
			return fmt.Errorf("%w: render.position_types has %q", ErrInvalidConfig, pt)
		}
	}
	for _, f := range c.Render.Frets {
		if f < 0 {
			return fmt.Errorf("%w: render.frets has %d", ErrInvalidConfig, f)
		}
	}
	return nil
}

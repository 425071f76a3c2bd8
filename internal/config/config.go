// Package config loads knowgraph settings.
//
// Sources, later ones winning: built-in defaults, an optional YAML or TOML
// file, a .env file, then KNOWGRAPH_* environment variables. The result is
// validated before use.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/layout"
	"github.com/HendryAvila/knowgraph/internal/logging"
	"github.com/HendryAvila/knowgraph/internal/validation"
)

// EnvPrefix prefixes every environment variable knowgraph reads.
const EnvPrefix = "KNOWGRAPH_"

// dotEnvFiles are loaded if present. Variables already set are kept.
var dotEnvFiles = []string{".env"}

// Config is the full application configuration.
type Config struct {
	Store  StoreConfig    `json:"store" yaml:"store" toml:"store" envPrefix:"STORE_"`
	HTTP   HTTPConfig     `json:"http" yaml:"http" toml:"http" envPrefix:"HTTP_"`
	Auth   AuthConfig     `json:"auth" yaml:"auth" toml:"auth" envPrefix:"AUTH_"`
	Log    logging.Config `json:"log" yaml:"log" toml:"log" envPrefix:"LOG_"`
	Layout layout.Config  `json:"layout" yaml:"layout" toml:"layout" envPrefix:"LAYOUT_"`
	Viewer ViewerConfig   `json:"viewer" yaml:"viewer" toml:"viewer" envPrefix:"VIEWER_"`
}

// StoreConfig locates the graph database.
type StoreConfig struct {
	DataDir  string `json:"data_dir" yaml:"data_dir" toml:"data_dir" env:"DATA_DIR" validate:"required"`
	FileName string `json:"file_name" yaml:"file_name" toml:"file_name" env:"FILE_NAME" validate:"required"`
	PageSize int    `json:"page_size" yaml:"page_size" toml:"page_size" env:"PAGE_SIZE" validate:"gt=0,lte=10000"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Addr            string        `json:"addr" yaml:"addr" toml:"addr" env:"ADDR" validate:"required"`
	AllowedOrigins  []string      `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	RateLimit       float64       `json:"rate_limit" yaml:"rate_limit" toml:"rate_limit" env:"RATE_LIMIT" validate:"gte=0"`
	RateBurst       int           `json:"rate_burst" yaml:"rate_burst" toml:"rate_burst" env:"RATE_BURST" validate:"gte=0"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" toml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" toml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// AuthConfig holds the credentials accepted by the HTTP API. With nothing
// configured, authentication is off.
type AuthConfig struct {
	APIKeys   []string `json:"api_keys" yaml:"api_keys" toml:"api_keys" env:"API_KEYS" envSeparator:","`
	JWTSecret string   `json:"jwt_secret" yaml:"jwt_secret" toml:"jwt_secret" env:"JWT_SECRET"`
	JWTIssuer string   `json:"jwt_issuer" yaml:"jwt_issuer" toml:"jwt_issuer" env:"JWT_ISSUER"`
	// BasicUsers maps user names to bcrypt hashes.
	BasicUsers map[string]string `json:"basic_users" yaml:"basic_users" toml:"basic_users" env:"BASIC_USERS"`
}

// Enabled reports whether any credential is configured.
func (a AuthConfig) Enabled() bool {
	return len(a.APIKeys) > 0 || a.JWTSecret != "" || len(a.BasicUsers) > 0
}

// ViewerConfig tunes interactive view sessions.
type ViewerConfig struct {
	FrameInterval time.Duration `json:"frame_interval" yaml:"frame_interval" toml:"frame_interval" env:"FRAME_INTERVAL" validate:"gt=0"`
	StepsPerFrame int           `json:"steps_per_frame" yaml:"steps_per_frame" toml:"steps_per_frame" env:"STEPS_PER_FRAME" validate:"gt=0"`
	MaxSessions   int           `json:"max_sessions" yaml:"max_sessions" toml:"max_sessions" env:"MAX_SESSIONS" validate:"gt=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	gc := graph.DefaultConfig()
	return &Config{
		Store: StoreConfig{
			DataDir:  gc.DataDir,
			FileName: gc.FileName,
			PageSize: gc.PageSize,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"*"},
			RateLimit:       20,
			RateBurst:       40,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log:    logging.Config{Level: "info"},
		Layout: layout.DefaultConfig(),
		Viewer: ViewerConfig{
			FrameInterval: 33 * time.Millisecond,
			StepsPerFrame: 2,
			MaxSessions:   64,
		},
	}
}

// Load builds the configuration. path may be empty; otherwise it must name a
// .yaml, .yml or .toml file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	for _, f := range dotEnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	cfg.Store.DataDir = expandHome(cfg.Store.DataDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("config: layout: %w", err)
	}
	return nil
}

// GraphConfig converts the store section for graph.New.
func (c *Config) GraphConfig() graph.Config {
	return graph.Config{
		DataDir:  c.Store.DataDir,
		FileName: c.Store.FileName,
		PageSize: c.Store.PageSize,
	}
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config: unsupported file type %q (want .yaml, .yml or .toml)", ext)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

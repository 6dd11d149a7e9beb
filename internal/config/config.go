package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Trending backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRemote   = "remote"
)

// Config is the persistent application configuration
type Config struct {
	TMDB     TMDBConfig     `mapstructure:"tmdb"`
	Search   SearchConfig   `mapstructure:"search"`
	Trending TrendingConfig `mapstructure:"trending"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// TMDBConfig holds movie API settings
type TMDBConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Language          string        `mapstructure:"language"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 0 = unlimited
}

// SearchConfig holds search box behavior
type SearchConfig struct {
	Debounce      time.Duration `mapstructure:"debounce"`
	TrendingLimit int           `mapstructure:"trending_limit"`
}

// TrendingConfig selects where search counts live
type TrendingConfig struct {
	Backend string `mapstructure:"backend"` // sqlite, postgres or remote
	DSN     string `mapstructure:"dsn"`     // file path or connection string
	URL     string `mapstructure:"url"`     // trendingd base URL for remote
	Token   string `mapstructure:"token"`   // bearer token for remote
}

// ServerConfig is trendingd's listener
type ServerConfig struct {
	Addr  string `mapstructure:"addr"`
	Token string `mapstructure:"token"`
}

// LogConfig controls the JSONL event log
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// DataDir is where the database and log live by default.
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".reelfind")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "reelfind", "config.toml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := DataDir()
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			Language:          "en-US",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 20,
		},
		Search: SearchConfig{
			Debounce:      500 * time.Millisecond,
			TrendingLimit: 5,
		},
		Trending: TrendingConfig{
			Backend: BackendSQLite,
			DSN:     filepath.Join(dir, "reelfind.db"),
			URL:     "http://127.0.0.1:8787",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
		Log: LogConfig{
			Path:  filepath.Join(dir, "reelfind.jsonl"),
			Level: "info",
		},
	}
}

// Load reads .env from the working directory, then the config file at path
// (ConfigPath() when empty), then REELFIND_* environment overrides. A missing
// config file is not an error.
func Load(path string) (*Config, error) {
	if err := loadDotenv(".env"); err != nil {
		return nil, err
	}
	if path == "" {
		path = ConfigPath()
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("REELFIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("tmdb.api_key", "REELFIND_TMDB_API_KEY", "TMDB_API_KEY", "VITE_TMDB_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// loadDotenv sets variables from file without overriding the environment.
func loadDotenv(file string) error {
	err := godotenv.Load(file)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", file, err)
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("tmdb.base_url", d.TMDB.BaseURL)
	v.SetDefault("tmdb.api_key", d.TMDB.APIKey)
	v.SetDefault("tmdb.language", d.TMDB.Language)
	v.SetDefault("tmdb.timeout", d.TMDB.Timeout)
	v.SetDefault("tmdb.requests_per_second", d.TMDB.RequestsPerSecond)
	v.SetDefault("search.debounce", d.Search.Debounce)
	v.SetDefault("search.trending_limit", d.Search.TrendingLimit)
	v.SetDefault("trending.backend", d.Trending.Backend)
	v.SetDefault("trending.dsn", d.Trending.DSN)
	v.SetDefault("trending.url", d.Trending.URL)
	v.SetDefault("trending.token", d.Trending.Token)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.token", d.Server.Token)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	switch c.Trending.Backend {
	case BackendSQLite, BackendPostgres:
		if c.Trending.DSN == "" {
			return fmt.Errorf("trending.dsn is required for backend %q", c.Trending.Backend)
		}
	case BackendRemote:
		if c.Trending.URL == "" {
			return errors.New("trending.url is required for backend \"remote\"")
		}
	default:
		return fmt.Errorf("unknown trending.backend %q", c.Trending.Backend)
	}
	if c.Search.Debounce <= 0 {
		return errors.New("search.debounce must be positive")
	}
	if c.Search.TrendingLimit < 1 || c.Search.TrendingLimit > 50 {
		return fmt.Errorf("search.trending_limit must be 1-50, got %d", c.Search.TrendingLimit)
	}
	if c.TMDB.RequestsPerSecond < 0 {
		return errors.New("tmdb.requests_per_second must not be negative")
	}
	return nil
}

// HasAPIKey reports whether a TMDB key is configured.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.TMDB.APIKey) != ""
}

// Save writes config to path as TOML (ConfigPath() when empty).
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c.document())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600) // Restrictive permissions for API keys
}

// document is the on-disk shape: durations as strings viper can decode.
func (c *Config) document() map[string]any {
	return map[string]any{
		"tmdb": map[string]any{
			"base_url":            c.TMDB.BaseURL,
			"api_key":             c.TMDB.APIKey,
			"language":            c.TMDB.Language,
			"timeout":             c.TMDB.Timeout.String(),
			"requests_per_second": c.TMDB.RequestsPerSecond,
		},
		"search": map[string]any{
			"debounce":       c.Search.Debounce.String(),
			"trending_limit": c.Search.TrendingLimit,
		},
		"trending": map[string]any{
			"backend": c.Trending.Backend,
			"dsn":     c.Trending.DSN,
			"url":     c.Trending.URL,
			"token":   c.Trending.Token,
		},
		"server": map[string]any{
			"addr":  c.Server.Addr,
			"token": c.Server.Token,
		},
		"log": map[string]any{
			"path":  c.Log.Path,
			"level": c.Log.Level,
		},
	}
}

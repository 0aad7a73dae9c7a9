// Package config handles certgen configuration loading.
//
// Settings come from a YAML file, then CERTGEN_* environment variables
// override individual fields. The binaries load a .env file first, so the
// same overrides work in development.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yahya12213/certgen/doctpl"
	"github.com/yahya12213/certgen/fetch"
	"github.com/yahya12213/certgen/variables"
)

// Config is the root configuration structure.
type Config struct {
	Render RenderConfig `yaml:"render"`
	Fonts  FontsConfig  `yaml:"fonts"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// RenderConfig holds composer settings.
type RenderConfig struct {
	BaseURL       string        `yaml:"base_url"` // prefix for relative image and font paths
	Locale        string        `yaml:"locale"`   // fr or en
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	MaxFetchBytes int64         `yaml:"max_fetch_bytes"`
	AssetDir      string        `yaml:"asset_dir"` // root for file:// and bare-path assets
}

// FontsConfig holds custom font settings.
type FontsConfig struct {
	CatalogPath string `yaml:"catalog_path"` // YAML font list
	CatalogURL  string `yaml:"catalog_url"`  // JSON font list served by the back office
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxBatch     int           `yaml:"max_batch"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Locale:        "fr",
			FetchTimeout:  30 * time.Second,
			MaxFetchBytes: fetch.DefaultMaxBytes,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
			MaxBatch:     500,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns the default if path is
// empty or does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: creating directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from CERTGEN_* environment variables. Values that
// do not parse are ignored.
func (c *Config) ApplyEnv() {
	setString(&c.Render.BaseURL, "CERTGEN_BASE_URL")
	setString(&c.Render.Locale, "CERTGEN_LOCALE")
	setDuration(&c.Render.FetchTimeout, "CERTGEN_FETCH_TIMEOUT")
	if v := os.Getenv("CERTGEN_MAX_FETCH_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Render.MaxFetchBytes = n
		}
	}
	setString(&c.Render.AssetDir, "CERTGEN_ASSET_DIR")
	setString(&c.Fonts.CatalogPath, "CERTGEN_FONT_CATALOG")
	setString(&c.Fonts.CatalogURL, "CERTGEN_FONT_CATALOG_URL")
	setString(&c.Server.Addr, "CERTGEN_ADDR")
	if v := os.Getenv("PORT"); v != "" && os.Getenv("CERTGEN_ADDR") == "" {
		c.Server.Addr = ":" + v
	}
	setDuration(&c.Server.ReadTimeout, "CERTGEN_READ_TIMEOUT")
	setDuration(&c.Server.WriteTimeout, "CERTGEN_WRITE_TIMEOUT")
	if v := os.Getenv("CERTGEN_MAX_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.MaxBatch = n
		}
	}
	setString(&c.Log.Level, "CERTGEN_LOG_LEVEL")
	setString(&c.Log.Format, "CERTGEN_LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// LocaleValue returns the configured date locale, French when unknown.
func (r RenderConfig) LocaleValue() variables.Locale {
	return variables.LocaleByName(r.Locale)
}

// Fetcher builds the resource fetcher for the render settings.
func (r RenderConfig) Fetcher() fetch.Fetcher {
	m := fetch.Mux{HTTP: fetch.NewHTTPFetcher(r.FetchTimeout, r.MaxFetchBytes)}
	if r.AssetDir != "" {
		m.Files = &fetch.FileFetcher{Root: r.AssetDir}
	}
	return m
}

// FontProvider builds the custom font provider, or nil when none is
// configured. A catalog file wins over a catalog URL.
func (c *Config) FontProvider(f fetch.Fetcher) (fetch.FontProvider, error) {
	switch {
	case c.Fonts.CatalogPath != "":
		fonts, err := fetch.LoadCatalog(c.Fonts.CatalogPath)
		if err != nil {
			return nil, err
		}
		return fonts, nil
	case c.Fonts.CatalogURL != "":
		return &fetch.RemoteFonts{URL: c.Fonts.CatalogURL, Fetcher: f}, nil
	}
	return nil, nil
}

// ComposerOptions returns the composer options for this configuration.
// Callers append per-request options such as doctpl.WithProgress.
func (c *Config) ComposerOptions(l *slog.Logger) ([]doctpl.Option, error) {
	f := c.Render.Fetcher()
	fonts, err := c.FontProvider(f)
	if err != nil {
		return nil, err
	}
	opts := []doctpl.Option{
		doctpl.WithFetcher(f),
		doctpl.WithBaseURL(c.Render.BaseURL),
		doctpl.WithLocale(c.Render.LocaleValue()),
		doctpl.WithLogger(l),
	}
	if fonts != nil {
		opts = append(opts, doctpl.WithFontProvider(fonts))
	}
	return opts, nil
}

// Logger builds a slog logger writing to w.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.level()}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (l LogConfig) level() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"slices"

	"github.com/spf13/viper"

	"printbridge/internal/constants"
	"printbridge/internal/types"
)

// Config holds the immutable runtime settings of the bridge. A loaded Config
// is never mutated in place; updates produce a fresh snapshot that replaces
// the old one wholesale.
type Config struct {
	Host               string   `mapstructure:"host" toml:"host"`
	Port               int      `mapstructure:"port" toml:"port"`
	MaxFileSizeMB      int64    `mapstructure:"max_file_size_mb" toml:"max_file_size_mb"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute" toml:"rate_limit_per_minute"`
	APIToken           string   `mapstructure:"api_token" toml:"api_token"`
	AutoStart          bool     `mapstructure:"auto_start" toml:"auto_start"`
	MinimizeToTray     bool     `mapstructure:"minimize_to_tray" toml:"minimize_to_tray"`
	AllowedOrigins     []string `mapstructure:"allowed_origins" toml:"allowed_origins"`
	AllowedFileTypes   []string `mapstructure:"allowed_file_types" toml:"allowed_file_types"`
	DefaultPrinter     string   `mapstructure:"default_printer" toml:"default_printer"`
	HTMLRenderer       string   `mapstructure:"html_renderer" toml:"html_renderer"`
	BrowserFallback    bool     `mapstructure:"browser_fallback" toml:"browser_fallback"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		Host:               constants.DefaultHost,
		Port:               constants.DefaultPort,
		MaxFileSizeMB:      constants.DefaultMaxFileMB,
		RateLimitPerMinute: constants.DefaultRateLimit,
		APIToken:           "",
		AutoStart:          false,
		MinimizeToTray:     true,
		AllowedOrigins:     []string{"*"},
		AllowedFileTypes:   []string{"pdf", "html", "text", "image"},
		DefaultPrinter:     "",
		HTMLRenderer:       "wkhtmltopdf",
		BrowserFallback:    true,
	}
}

// Address returns the listen address in host:port form.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AllowsFileType reports whether the content-type tag is in the allowed set.
func (c *Config) AllowsFileType(t string) bool {
	return slices.Contains(c.AllowedFileTypes, t)
}

// AllowsAnyOrigin reports whether the origin set contains the wildcard.
func (c *Config) AllowsAnyOrigin() bool {
	return slices.Contains(c.AllowedOrigins, "*")
}

// MaxFileSizeBytes is the content-level size ceiling.
func (c *Config) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}

// Validate enforces the Config invariants.
func (c *Config) Validate() error {
	if c.Port < constants.MinPort || c.Port > constants.MaxPort {
		return types.ConfigError(fmt.Sprintf("invalid port %d", c.Port), nil)
	}
	if c.MaxFileSizeMB <= 0 {
		return types.ConfigError("max_file_size_mb must be positive", nil)
	}
	if c.RateLimitPerMinute <= 0 {
		return types.ConfigError("rate_limit_per_minute must be positive", nil)
	}
	if len(c.AllowedFileTypes) == 0 {
		return types.ConfigError("allowed_file_types must not be empty", nil)
	}
	switch c.HTMLRenderer {
	case "wkhtmltopdf", "chromedp":
	default:
		return types.ConfigError("html_renderer must be wkhtmltopdf or chromedp", nil)
	}
	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(constants.ConfigFileType)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("host", def.Host)
	v.SetDefault("port", def.Port)
	v.SetDefault("max_file_size_mb", def.MaxFileSizeMB)
	v.SetDefault("rate_limit_per_minute", def.RateLimitPerMinute)
	v.SetDefault("api_token", def.APIToken)
	v.SetDefault("auto_start", def.AutoStart)
	v.SetDefault("minimize_to_tray", def.MinimizeToTray)
	v.SetDefault("allowed_origins", def.AllowedOrigins)
	v.SetDefault("allowed_file_types", def.AllowedFileTypes)
	v.SetDefault("default_printer", def.DefaultPrinter)
	v.SetDefault("html_renderer", def.HTMLRenderer)
	v.SetDefault("browser_fallback", def.BrowserFallback)
	return v
}

// Provider loads, persists and watches the config document. It owns the viper
// instance; callers only ever see immutable Config snapshots.
type Provider struct {
	v    *viper.Viper
	path string
}

// NewProvider builds a provider for the document at path. An empty path uses
// print-bridge.toml in the working directory.
func NewProvider(path string) *Provider {
	if path == "" {
		path = constants.ConfigFile
	}
	return &Provider{v: newViper(path), path: path}
}

// Load reads the persisted document, creating it with defaults on first run.
func (p *Provider) Load() (*Config, error) {
	if _, err := os.Stat(p.path); errors.Is(err, os.ErrNotExist) {
		// First run: persist the defaults so the file documents every knob.
		if err := p.v.SafeWriteConfigAs(p.path); err != nil {
			return nil, types.ConfigError("failed to write default config", err)
		}
	}
	if err := p.v.ReadInConfig(); err != nil {
		return nil, types.ConfigError("malformed config file", err)
	}
	return p.unmarshal()
}

// Save persists a full Config snapshot back to the document.
func (p *Provider) Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.v.Set("host", cfg.Host)
	p.v.Set("port", cfg.Port)
	p.v.Set("max_file_size_mb", cfg.MaxFileSizeMB)
	p.v.Set("rate_limit_per_minute", cfg.RateLimitPerMinute)
	p.v.Set("api_token", cfg.APIToken)
	p.v.Set("auto_start", cfg.AutoStart)
	p.v.Set("minimize_to_tray", cfg.MinimizeToTray)
	p.v.Set("allowed_origins", cfg.AllowedOrigins)
	p.v.Set("allowed_file_types", cfg.AllowedFileTypes)
	p.v.Set("default_printer", cfg.DefaultPrinter)
	p.v.Set("html_renderer", cfg.HTMLRenderer)
	p.v.Set("browser_fallback", cfg.BrowserFallback)
	if err := p.v.WriteConfigAs(p.path); err != nil {
		return types.ConfigError("failed to save config", err)
	}
	return nil
}

func (p *Provider) unmarshal() (*Config, error) {
	cfg := &Config{}
	if err := p.v.Unmarshal(cfg); err != nil {
		return nil, types.ConfigError("malformed config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

const tokenCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateToken produces a 32-character alphanumeric shared token.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	max := big.NewInt(int64(len(tokenCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("token generation: %w", err)
		}
		buf[i] = tokenCharset[n.Int64()]
	}
	return string(buf), nil
}

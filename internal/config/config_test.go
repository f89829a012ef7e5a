package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printbridge/internal/constants"
)

func tempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), constants.ConfigFile)
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := tempConfigPath(t)

	cfg, err := NewProvider(path).Load()
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultHost, cfg.Host)
	assert.Equal(t, constants.DefaultPort, cfg.Port)
	assert.Equal(t, int64(constants.DefaultMaxFileMB), cfg.MaxFileSizeMB)
	assert.Equal(t, constants.DefaultRateLimit, cfg.RateLimitPerMinute)
	assert.Empty(t, cfg.APIToken)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.True(t, cfg.BrowserFallback)

	// First run leaves a document behind that names every knob.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rate_limit_per_minute")
	assert.Contains(t, string(data), "allowed_file_types")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := tempConfigPath(t)
	provider := NewProvider(path)
	_, err := provider.Load()
	require.NoError(t, err)

	cfg := Default()
	cfg.Port = 9100
	cfg.APIToken = "s3cret"
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	cfg.AllowedFileTypes = []string{"pdf"}
	cfg.DefaultPrinter = "Office_Printer"
	cfg.HTMLRenderer = "chromedp"
	cfg.BrowserFallback = false
	require.NoError(t, provider.Save(cfg))

	loaded, err := NewProvider(path).Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	path := tempConfigPath(t)
	provider := NewProvider(path)
	_, err := provider.Load()
	require.NoError(t, err)

	cfg := Default()
	cfg.Port = 0
	require.Error(t, provider.Save(cfg))

	// The document on disk keeps the previous snapshot.
	loaded, err := NewProvider(path).Load()
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultPort, loaded.Port)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := tempConfigPath(t)
	require.NoError(t, os.WriteFile(path, []byte("port = \"not a number"), 0o644))

	_, err := NewProvider(path).Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(*Config) {}, false},
		{"port too low", func(c *Config) { c.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Port = 70000 }, true},
		{"zero file size", func(c *Config) { c.MaxFileSizeMB = 0 }, true},
		{"negative rate limit", func(c *Config) { c.RateLimitPerMinute = -1 }, true},
		{"no file types", func(c *Config) { c.AllowedFileTypes = nil }, true},
		{"unknown renderer", func(c *Config) { c.HTMLRenderer = "pandoc" }, true},
		{"chromedp renderer", func(c *Config) { c.HTMLRenderer = "chromedp" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAllowsFileType(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.AllowsFileType("pdf"))
	assert.True(t, cfg.AllowsFileType("html"))
	assert.False(t, cfg.AllowsFileType("csv"))
	assert.False(t, cfg.AllowsFileType("PDF"))
}

func TestMaxFileSizeBytes(t *testing.T) {
	cfg := Default()
	cfg.MaxFileSizeMB = 2
	assert.Equal(t, int64(2*1024*1024), cfg.MaxFileSizeBytes())
}

func TestGenerateToken(t *testing.T) {
	seen := map[string]bool{}
	for range 8 {
		token, err := GenerateToken()
		require.NoError(t, err)
		require.Len(t, token, 32)
		for _, r := range token {
			assert.Contains(t, tokenCharset, string(r))
		}
		assert.False(t, seen[token], "tokens must not repeat")
		seen[token] = true
	}
}

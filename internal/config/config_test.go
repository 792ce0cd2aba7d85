package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klabast/wb-services/ophaaldagen/internal/reconcile"
)

// isolate keeps the developer's own config out of the test
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ophaaldagen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultSeenonsBaseURL, cfg.Seenons.BaseURL)
	assert.Equal(t, DefaultHuisvuilBaseURL, cfg.Huisvuil.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.HTTP.Timeout)
	assert.Equal(t, DefaultRateLimit, cfg.HTTP.RateLimit)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.Equal(t, reconcile.DefaultPolicy(), cfg.Match.Policy())
	assert.Equal(t, DefaultFormat, cfg.Output.Format)
	assert.Empty(t, cfg.File)
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
seenons:
  base_url: http://localhost:9000/api/me
http:
  timeout: 3s
  rate_limit: 0
log:
  level: debug
  format: json
match:
  direction: title-prefix-of-name
  tie_break: longest
output:
  format: ICS
`)

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/api/me", cfg.Seenons.BaseURL)
	assert.Equal(t, DefaultHuisvuilBaseURL, cfg.Huisvuil.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	assert.Zero(t, cfg.HTTP.RateLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, reconcile.TitlePrefixOfName, cfg.Match.Direction)
	assert.Equal(t, reconcile.TieBreakLongest, cfg.Match.TieBreak)
	assert.Equal(t, "ics", cfg.Output.Format)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_SearchPath(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("ophaaldagen.yaml", []byte("output:\n  format: csv\n"), 0644))

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.NotEmpty(t, cfg.File)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "http:\n  timeout: 3s\n")
	t.Setenv("OPHAALDAGEN_HTTP_TIMEOUT", "7s")
	t.Setenv("OPHAALDAGEN_HUISVUIL_BASE_URL", "http://127.0.0.1:8080")

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.Huisvuil.BaseURL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "relative base url", content: "seenons:\n  base_url: /api/me\n"},
		{name: "ftp base url", content: "huisvuil:\n  base_url: ftp://example.org\n"},
		{name: "zero timeout", content: "http:\n  timeout: 0s\n"},
		{name: "negative rate", content: "http:\n  rate_limit: -1\n"},
		{name: "log level", content: "log:\n  level: loud\n"},
		{name: "format", content: "output:\n  format: pdf\n"},
		{name: "direction", content: "match:\n  direction: sideways\n"},
		{name: "tie break", content: "match:\n  tie_break: first\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)

			_, err := Load(NewViper(), writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

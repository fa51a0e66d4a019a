package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.toml"), false)
	require.NoError(t, err)

	assert.Equal(t, "INFO", c.LogLevel)
	assert.Equal(t, "https://proceedings.jacow.org/srf2019", c.Site.BaseURL)
	assert.Equal(t, "SRF2019_Data", c.Site.OutputDir)
	assert.Equal(t, 30*time.Second, c.Fetcher.Timeout())
	assert.Equal(t, 3, c.Fetcher.Retries)
	assert.Equal(t, 3, c.Scrape.TestSessions)
	assert.True(t, c.Scrape.Download)
	assert.Equal(t, 1, c.Scrape.PaperWorkers)
	assert.Empty(t, c.Storage.Type)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), true)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
logLevel = "DEBUG"

[site]
outputDir = "out"

[fetcher]
timeout = 5000

[[fetcher.limits]]
eventCount = 2
eventDur = 1
bucket = 2

[scrape]
download = false

[storage]
type = "mysql"
sqlURL = "root:pw@tcp(127.0.0.1:3306)/crawler"
`), 0o644))

	c, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", c.LogLevel)
	assert.Equal(t, "out", c.Site.OutputDir)
	// unset fields keep their defaults
	assert.Equal(t, "https://proceedings.jacow.org/srf2019", c.Site.BaseURL)
	assert.Equal(t, 5*time.Second, c.Fetcher.Timeout())
	assert.False(t, c.Scrape.Download)
	assert.Equal(t, "mysql", c.Storage.Type)
	require.Len(t, c.Fetcher.Limits, 1)
	assert.Equal(t, 2, c.Fetcher.Limits[0].EventCount)

	assert.NotNil(t, c.Fetcher.RateLimiter())
}

func TestRateLimiterDefault(t *testing.T) {
	var f Fetch
	l := f.RateLimiter()
	require.NotNil(t, l)
	assert.Greater(t, float64(l.Limit()), 0.0)
}

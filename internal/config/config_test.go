package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"IMGSYNC_CATALOG", "IMGSYNC_IMAGES_DIR", "IMGSYNC_URL_PREFIX", "IMGSYNC_PROFILE",
	"IMGSYNC_QUALITY", "IMGSYNC_PERSIST", "IMGSYNC_HTTP_TIMEOUT", "IMGSYNC_CONNECT_TIMEOUT",
	"IMGSYNC_MENU_CSV", "PEXELS_API_KEY", "PEXELS_BASE_URL", "PEXELS_DELAY",
	"IMGSYNC_S3_ENDPOINT", "IMGSYNC_S3_REGION", "IMGSYNC_S3_ACCESS_KEY", "IMGSYNC_S3_SECRET_KEY",
	"IMGSYNC_S3_BUCKET", "IMGSYNC_S3_PREFIX", "IMGSYNC_S3_USE_SSL",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "public/data/imageMap.json", cfg.CatalogPath)
	assert.Equal(t, "public/images", cfg.ImagesDir)
	assert.Equal(t, "/images/", cfg.URLPrefix)
	assert.Equal(t, "restaurant-site", cfg.Profile)
	assert.Equal(t, 0, cfg.Quality)
	assert.Equal(t, "progress", cfg.Persist)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, "docs/menu_items.csv", cfg.MenuCSV)
	assert.Equal(t, 500*time.Millisecond, cfg.Pexels.Delay)
	assert.Empty(t, cfg.Pexels.APIKey)
	assert.True(t, cfg.Mirror.UseSSL)
	assert.Equal(t, "images", cfg.Mirror.Prefix)
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`PEXELS_API_KEY=from-file
IMGSYNC_QUALITY=70
IMGSYNC_S3_USE_SSL=false
IMGSYNC_IMAGES_DIR=dist/images
`), 0o644))
	t.Setenv("IMGSYNC_IMAGES_DIR", "build/img")
	t.Setenv("PEXELS_DELAY", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Pexels.APIKey)
	assert.Equal(t, 70, cfg.Quality)
	assert.False(t, cfg.Mirror.UseSSL)
	assert.Equal(t, "build/img", cfg.ImagesDir)
	assert.Equal(t, 2*time.Second, cfg.Pexels.Delay)

	// The file does not leak into the process environment.
	_, ok := os.LookupEnv("PEXELS_API_KEY")
	assert.False(t, ok)
}

func TestLoadRejectsBadValues(t *testing.T) {
	for key, val := range map[string]string{
		"IMGSYNC_QUALITY":      "high",
		"IMGSYNC_HTTP_TIMEOUT": "60",
		"IMGSYNC_S3_USE_SSL":   "maybe",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := Load("")
			assert.ErrorContains(t, err, key)
		})
	}
}

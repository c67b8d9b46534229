package cmd

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/imgsync/internal/catalog"
	"github.com/AnyUserName/imgsync/internal/profile"
)

func writePNG(t *testing.T, root, rel string, w, h int) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	f, err := os.Create(full)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, w, h))))
}

func TestValidateCatalog(t *testing.T) {
	root := t.TempDir()
	writePNG(t, root, "hero.webp", 1920, 1080)
	writePNG(t, root, "menuItems/paneer-tikka.webp", 800, 800)
	writePNG(t, root, "about/chef-2.webp", 300, 300)
	require.NoError(t, os.WriteFile(filepath.Join(root, "events-holi.webp"), []byte("junk"), 0o644))

	c, err := catalog.Parse([]byte(`{
  "hero": "/images/hero.webp",
  "menuItems": {
    "Paneer Tikka": "/images/menuItems/paneer-tikka.webp",
    "Dal Makhani": "https://img.test/dal.jpeg"
  },
  "events": {"holi": "/images/events/holi.webp"},
  "about": {"chef-2": "/images/about/chef-2.webp"}
}`))
	require.NoError(t, err)

	v := validateCatalog(c, root, "/images/", profile.Get(profile.DefaultName))
	assert.Equal(t, 4, v.resolved)
	assert.Equal(t, []string{"menuItems.Dal Makhani"}, v.pending)
	require.Len(t, v.errs, 2)
	assert.Contains(t, v.errs[0], "events.holi")
	assert.Contains(t, v.errs[0], "file not found")
	assert.Contains(t, v.errs[1], "about.chef-2")
	assert.Contains(t, v.errs[1], "size mismatch")
}

func TestValidateCatalogCollisions(t *testing.T) {
	c, err := catalog.Parse([]byte(`{"menuItems": {"Naan": "https://a", "naan": "https://b"}}`))
	require.NoError(t, err)
	v := validateCatalog(c, t.TempDir(), "/images/", profile.Get(profile.DefaultName))
	require.Len(t, v.errs, 1)
	assert.Contains(t, v.errs[0], "collision")
}

func TestCollectStats(t *testing.T) {
	root := t.TempDir()
	writePNG(t, root, "hero.webp", 10, 10)
	writePNG(t, root, "events/holi.webp", 10, 10)
	writePNG(t, root, "events/diwali.webp", 20, 10)

	c, err := catalog.Parse([]byte(`{
  "hero": "/images/hero.webp",
  "events": {
    "holi": "/images/events/holi.webp",
    "diwali": "/images/events/diwali.webp",
    "live-music": "https://img.test/music.jpeg"
  },
  "about": {"founder": "/images/about/founder.webp"}
}`))
	require.NoError(t, err)

	st := collectStats(c, root, "/images/")
	assert.Equal(t, 5, st.total)
	assert.Equal(t, 4, st.resolved)
	require.Len(t, st.sections, 3)
	assert.Equal(t, "hero", st.sections[0].name)
	assert.Equal(t, "events", st.sections[1].name)
	assert.Equal(t, 3, st.sections[1].total)
	assert.Equal(t, 2, st.sections[1].resolved)
	assert.Equal(t, []string{"about.founder"}, st.missing)
	assert.Equal(t, [][]string{{"hero", "events.holi"}}, st.duplicates)
	assert.Positive(t, st.bytes)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
}

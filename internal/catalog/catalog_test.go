package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "hero": "https://images.pexels.com/photos/1/hero.jpeg?auto=compress&cs=tinysrgb",
  "menuItems": {
    "Paneer Tikka": "https://images.pexels.com/photos/2/paneer.jpeg",
    "Dal Makhani": "/images/menuItems/dal-makhani.webp"
  },
  "events": {
    "diwali": "https://images.pexels.com/photos/3/diwali.jpeg"
  },
  "about": {
    "founder": "https://images.pexels.com/photos/4/founder.jpeg",
    "chef-2": "https://images.pexels.com/photos/5/chef.jpeg"
  }
}
`

func TestParseFlattenKeepsDocumentOrder(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	entries := c.Flatten()
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	assert.Equal(t, []string{
		"hero",
		"menuItems.Paneer Tikka",
		"menuItems.Dal Makhani",
		"events.diwali",
		"about.founder",
		"about.chef-2",
	}, keys)
	assert.Equal(t, "https://images.pexels.com/photos/1/hero.jpeg?auto=compress&cs=tinysrgb", entries[0].Value)
	assert.Equal(t, 6, c.Len())
}

func TestFlattenRebuildRoundTrip(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	rebuilt, err := FromEntries(c.Flatten())
	require.NoError(t, err)
	assert.Equal(t, c, rebuilt)
	assert.Equal(t, sampleDoc, string(rebuilt.Encode()))
}

func TestEncodeDoesNotEscapeHTML(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("hero", "https://x.test/a?b=1&c=<2>"))
	assert.Equal(t, "{\n  \"hero\": \"https://x.test/a?b=1&c=<2>\"\n}\n", string(c.Encode()))

	empty := New()
	assert.Equal(t, "{}\n", string(empty.Encode()))
}

func TestParseRejectsUnsupportedValues(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"number leaf", `{"hero": 3}`},
		{"array leaf", `{"hero": ["a"]}`},
		{"null leaf", `{"menuItems": {"x": null}}`},
		{"array root", `["a"]`},
		{"malformed", `{"hero": "a"`},
		{"dotted key", `{"a.b": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseUnescapesStrings(t *testing.T) {
	c, err := Parse([]byte(`{"a": {"b": "x&y \"q\""}}`))
	require.NoError(t, err)
	v, ok := c.Lookup("a.b")
	require.True(t, ok)
	assert.Equal(t, `x&y "q"`, v)
}

func TestSetConflicts(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("about.founder", "u1"))

	assert.Error(t, c.Set("about.founder.photo", "u2"), "leaf used as object")
	assert.Error(t, c.Set("about", "u3"), "object replaced by leaf")
	assert.Error(t, c.Set("about..x", "u4"), "empty segment")

	require.NoError(t, c.Set("about.founder", "u5"))
	v, _ := c.Lookup("about.founder")
	assert.Equal(t, "u5", v)

	_, ok := c.Lookup("about")
	assert.False(t, ok, "objects are not leaves")
}

func TestPlain(t *testing.T) {
	c, err := Parse([]byte(`{"hero": "h", "events": {"holi": "e"}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"hero":   "h",
		"events": map[string]any{"holi": "e"},
	}, c.Plain())
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "imageMap.json")

	_, err := Load(path)
	var rerr *ReadError
	require.True(t, errors.As(err, &rerr))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	c, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)
	require.NoError(t, c.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleDoc, string(data))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)

	leftovers, err := filepath.Glob(filepath.Join(dir, "data", ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSaveIntoMissingParentFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := New().Save(filepath.Join(blocker, "imageMap.json"))
	var werr *WriteError
	assert.True(t, errors.As(err, &werr))
}

func TestQuery(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	got, err := c.Query("$.menuItems['Dal Makhani']")
	require.NoError(t, err)
	assert.Equal(t, []any{"/images/menuItems/dal-makhani.webp"}, got)

	got, err = c.Query("$.about.*")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = c.Query("$.events.nope")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = c.Query("$[")
	assert.Error(t, err)
}

package populate

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/imgsync/internal/catalog"
	"github.com/AnyUserName/imgsync/internal/menu"
	"github.com/AnyUserName/imgsync/internal/search"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	results map[string]string
	err     map[string]error
	seen    []string
}

func (f *fakeSearcher) Search(ctx context.Context, q search.Query) (string, error) {
	f.seen = append(f.seen, q.Key)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := f.err[q.Key]; ok {
		return "", err
	}
	if u, ok := f.results[q.Key]; ok {
		return u, nil
	}
	return "", search.ErrNoMatch
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestDefaultQuerySet(t *testing.T) {
	qs := DefaultQuerySet()
	require.Len(t, qs.Static, 13)
	assert.Equal(t, search.Query{Key: "hero", Text: "indian restaurant interior elegant", Orientation: "landscape", Size: "large"}, qs.Static[0])
	assert.Equal(t, "square", qs.Static[6].Orientation)
	assert.Equal(t, "about.chef-1", qs.Static[6].Key)
}

func TestBuild(t *testing.T) {
	items := []menu.Item{
		{Category: "Starters", Name: "Paneer Tikka"},
		{Category: "Drinks", Name: "Masala Chai 2.0"},
		{Category: "Mains", Name: "Dal Makhani"},
	}
	set := QuerySet{
		Static: []search.Query{{Key: "hero", Text: "h"}},
		Menu:   MenuTemplate{Query: "{name} from {category}", Orientation: "square", Size: "medium"},
	}
	queries, dropped := Build(set, items)
	require.Len(t, queries, 3)
	assert.Equal(t, "hero", queries[0].Key)
	assert.Equal(t, search.Query{Key: "menuItems.Paneer Tikka", Text: "Paneer Tikka from Starters", Orientation: "square", Size: "medium"}, queries[1])
	assert.Equal(t, "menuItems.Dal Makhani", queries[2].Key)
	require.Len(t, dropped, 1)
	assert.Equal(t, "Masala Chai 2.0", dropped[0].Name)
}

func TestLoadQuerySet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queries.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
static:
  - key: hero
    query: cafe interior
    orientation: landscape
    size: large
  - key: events.brunch
    query: sunday brunch table
`), 0o644))

	qs, err := LoadQuerySet(path)
	require.NoError(t, err)
	require.Len(t, qs.Static, 2)
	assert.Equal(t, search.Query{Key: "hero", Text: "cafe interior", Orientation: "landscape", Size: "large"}, qs.Static[0])
	assert.Equal(t, DefaultQuerySet().Menu, qs.Menu)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("static:\n  - key: hero\n"), 0o644))
	_, err = LoadQuerySet(bad)
	assert.Error(t, err)

	_, err = LoadQuerySet(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRunBuildsNestedCatalog(t *testing.T) {
	s := &fakeSearcher{
		results: map[string]string{
			"hero":                   "https://img.test/hero.jpeg",
			"menuItems.Paneer Tikka": "https://img.test/paneer.jpeg",
			"about.chef-1":           "https://img.test/chef.jpeg",
		},
		err: map[string]error{"about.founder": errors.New("status 500")},
	}
	queries := []search.Query{
		{Key: "hero"},
		{Key: "menuItems.Paneer Tikka"},
		{Key: "events.holi"},
		{Key: "about.founder"},
		{Key: "about.chef-1"},
	}

	c, rep, err := Run(context.Background(), s, queries, Options{Log: quietLog()})
	require.NoError(t, err)
	assert.Len(t, rep.Found, 3)
	require.Len(t, rep.Missing, 2)
	assert.Equal(t, "events.holi", rep.Missing[0].Key)
	assert.Equal(t, "about.founder", rep.Missing[1].Key)

	assert.Equal(t, `{
  "hero": "https://img.test/hero.jpeg",
  "menuItems": {
    "Paneer Tikka": "https://img.test/paneer.jpeg"
  },
  "about": {
    "chef-1": "https://img.test/chef.jpeg"
  }
}
`, string(c.Encode()))
}

func TestRunMergeSkipsKnownKeys(t *testing.T) {
	existing, err := catalog.Parse([]byte(`{"hero": "/images/hero.webp", "logo": "/images/logo.webp"}`))
	require.NoError(t, err)
	s := &fakeSearcher{results: map[string]string{
		"hero":        "https://img.test/new-hero.jpeg",
		"events.holi": "https://img.test/holi.jpeg",
	}}

	c, rep, err := Run(context.Background(), s, []search.Query{{Key: "hero"}, {Key: "events.holi"}},
		Options{Existing: existing, Log: quietLog()})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Reused)
	assert.Equal(t, []string{"events.holi"}, s.seen)

	v, _ := c.Lookup("hero")
	assert.Equal(t, "/images/hero.webp", v)
	v, _ = c.Lookup("logo")
	assert.Equal(t, "/images/logo.webp", v)
	v, _ = c.Lookup("events.holi")
	assert.Equal(t, "https://img.test/holi.jpeg", v)

	// The input catalog is not modified.
	_, ok := existing.Lookup("events.holi")
	assert.False(t, ok)
}

func TestRunConflictingKeyIsMissing(t *testing.T) {
	s := &fakeSearcher{results: map[string]string{
		"about":         "https://img.test/about.jpeg",
		"about.founder": "https://img.test/founder.jpeg",
	}}
	_, rep, err := Run(context.Background(), s, []search.Query{{Key: "about"}, {Key: "about.founder"}}, Options{Log: quietLog()})
	require.NoError(t, err)
	assert.Len(t, rep.Found, 1)
	require.Len(t, rep.Missing, 1)
	assert.Equal(t, "about.founder", rep.Missing[0].Key)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Run(ctx, &fakeSearcher{}, []search.Query{{Key: "hero"}}, Options{Log: quietLog()})
	assert.ErrorIs(t, err, context.Canceled)
}

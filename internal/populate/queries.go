// Package populate builds the image catalog from stock-photo searches.
package populate

import (
	"fmt"
	"os"
	"strings"

	"github.com/AnyUserName/imgsync/internal/catalog"
	"github.com/AnyUserName/imgsync/internal/menu"
	"github.com/AnyUserName/imgsync/internal/search"
	"gopkg.in/yaml.v3"
)

// MenuTemplate turns menu items into queries. {name} and {category} are
// replaced with the item's fields.
type MenuTemplate struct {
	Query       string `yaml:"query"`
	Orientation string `yaml:"orientation,omitempty"`
	Size        string `yaml:"size,omitempty"`
}

// QuerySet is the full list of images a site needs.
type QuerySet struct {
	Static []search.Query `yaml:"static"`
	Menu   MenuTemplate   `yaml:"menu"`
}

// DefaultQuerySet covers the restaurant site's hero, events and about pages
// plus one photo per menu item.
func DefaultQuerySet() QuerySet {
	landscape := func(key, text, size string) search.Query {
		return search.Query{Key: key, Text: text, Orientation: "landscape", Size: size}
	}
	square := func(key, text string) search.Query {
		return search.Query{Key: key, Text: text, Orientation: "square", Size: "medium"}
	}
	return QuerySet{
		Static: []search.Query{
			landscape("hero", "indian restaurant interior elegant", "large"),
			landscape("events.live-music", "indian classical music performance", "medium"),
			landscape("events.diwali", "diwali festival celebration india", "medium"),
			landscape("events.south-indian-festival", "south indian food festival", "medium"),
			landscape("events.holi", "holi colors festival india", "medium"),
			square("about.founder", "indian woman chef restaurant owner professional"),
			square("about.chef-1", "indian male chef tandoor cooking"),
			square("about.chef-2", "indian female chef cooking professional"),
			square("about.chef-3", "indian chef preparing biryani rice"),
			landscape("about.culture-1", "north indian food thali meal", "medium"),
			landscape("about.culture-2", "south indian dosa idli breakfast", "medium"),
			landscape("about.culture-3", "indian street food chaat", "medium"),
			landscape("about.culture-4", "indian festival food sweets dessert", "medium"),
		},
		Menu: MenuTemplate{Query: "{name} indian food", Orientation: "square", Size: "medium"},
	}
}

// LoadQuerySet reads a YAML query set. An empty menu template falls back to
// the default one.
func LoadQuerySet(path string) (QuerySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QuerySet{}, fmt.Errorf("read query set: %w", err)
	}
	var qs QuerySet
	if err := yaml.Unmarshal(data, &qs); err != nil {
		return QuerySet{}, fmt.Errorf("parse query set %s: %w", path, err)
	}
	for i, q := range qs.Static {
		if q.Key == "" || q.Text == "" {
			return QuerySet{}, fmt.Errorf("query set %s: static entry %d needs key and query", path, i)
		}
	}
	if qs.Menu.Query == "" {
		qs.Menu = DefaultQuerySet().Menu
	}
	return qs, nil
}

// Expand fills in the template for one item.
func (t MenuTemplate) Expand(it menu.Item) search.Query {
	r := strings.NewReplacer("{name}", it.Name, "{category}", it.Category)
	return search.Query{
		Key:         it.Key(),
		Text:        r.Replace(t.Query),
		Orientation: t.Orientation,
		Size:        t.Size,
	}
}

// Build lists static queries first, then one per menu item. Items whose
// names cannot be a catalog key segment are returned in dropped.
func Build(set QuerySet, items []menu.Item) (queries []search.Query, dropped []menu.Item) {
	queries = append(queries, set.Static...)
	for _, it := range items {
		if strings.Contains(it.Name, catalog.Separator) {
			dropped = append(dropped, it)
			continue
		}
		queries = append(queries, set.Menu.Expand(it))
	}
	return queries, dropped
}

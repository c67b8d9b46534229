package profile

import (
	"fmt"
	"sort"
	"strings"
)

// Size is a target raster size in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Rule assigns Size to every key Match accepts.
type Rule struct {
	Name  string
	Match func(key string) bool
	Size  Size
}

// Exact matches one key.
func Exact(key string) func(string) bool {
	return func(k string) bool { return k == key }
}

// Prefix matches keys starting with any of the prefixes.
func Prefix(prefixes ...string) func(string) bool {
	return func(k string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(k, p) {
				return true
			}
		}
		return false
	}
}

// Profile defines how catalog entries are sized and encoded.
type Profile struct {
	Name    string
	Rules   []Rule // evaluated in order, first match wins
	Default Size
	Format  string // output format, e.g. "webp"
	Quality int    // encoding quality 1-100
}

// TargetSize returns the size for key.
func (p Profile) TargetSize(key string) Size {
	for _, r := range p.Rules {
		if r.Match(key) {
			return r.Size
		}
	}
	return p.Default
}

// DefaultName is the profile used when none is requested.
const DefaultName = "restaurant-site"

func siteRules(scale func(Size) Size) []Rule {
	return []Rule{
		{Name: "hero", Match: Exact("hero"), Size: scale(Size{1920, 1080})},
		{Name: "menu", Match: Prefix("menuItems."), Size: scale(Size{800, 800})},
		{Name: "events", Match: Prefix("events."), Size: scale(Size{1200, 900})},
		{Name: "people", Match: Prefix("about.founder", "about.chef-"), Size: scale(Size{600, 600})},
		{Name: "culture", Match: Prefix("about.culture-"), Size: scale(Size{1200, 900})},
	}
}

func same(s Size) Size { return s }
func half(s Size) Size { return Size{s.Width / 2, s.Height / 2} }

// Built-in profiles.
var profiles = map[string]Profile{
	DefaultName: {
		Name:    DefaultName,
		Rules:   siteRules(same),
		Default: Size{800, 800},
		Format:  "webp",
		Quality: 85,
	},
	"preview": {
		Name:    "preview",
		Rules:   siteRules(half),
		Default: Size{400, 400},
		Format:  "webp",
		Quality: 70,
	},
}

// Get returns a profile by name. Falls back to restaurant-site if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles[DefaultName]
	p.Name = name // preserve requested name
	return p
}

// Names lists the built-in profiles.
func Names() []string {
	out := make([]string, 0, len(profiles))
	for n := range profiles {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

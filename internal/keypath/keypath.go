// Package keypath maps logical catalog keys to the relative file paths their
// images are stored under.
package keypath

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
)

// DefaultExt is the extension of every materialized image.
const DefaultExt = "webp"

const separator = "."

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, collapses every run of characters outside [a-z0-9]
// into a single dash and trims dashes from both ends.
func Slugify(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// OutputPath returns the slash-separated path, relative to the images root,
// for key. "hero" becomes "hero.webp"; "menuItems.Paneer Tikka" becomes
// "menuItems/paneer-tikka.webp".
func OutputPath(key, ext string) string {
	parts := strings.Split(key, separator)
	if len(parts) == 1 {
		return key + "." + ext
	}
	name := Slugify(strings.Join(parts[1:], "-"))
	return parts[0] + "/" + name + "." + ext
}

// LocalURL is the catalog value of a resolved entry.
func LocalURL(prefix, rel string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(path.Clean(rel), "/")
}

// IsLocal reports whether a catalog value already points below prefix.
func IsLocal(prefix, value string) bool {
	return strings.HasPrefix(value, strings.TrimSuffix(prefix, "/")+"/")
}

// CollisionError lists output paths claimed by more than one key, and keys
// whose name slugifies to nothing.
type CollisionError struct {
	Paths map[string][]string
	Empty []string
}

func (e *CollisionError) Error() string {
	var parts []string
	paths := make([]string, 0, len(e.Paths))
	for p := range e.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		parts = append(parts, fmt.Sprintf("%s <- %s", p, strings.Join(e.Paths[p], ", ")))
	}
	for _, k := range e.Empty {
		parts = append(parts, fmt.Sprintf("%q has an empty file name", k))
	}
	return "output path collision: " + strings.Join(parts, "; ")
}

// CheckCollisions fails when two keys would be written to the same file.
func CheckCollisions(keys []string, ext string) error {
	owners := make(map[string][]string, len(keys))
	var empty []string
	for _, k := range keys {
		p := OutputPath(k, ext)
		if strings.HasSuffix(p, "/."+ext) || p == "."+ext {
			empty = append(empty, k)
			continue
		}
		owners[p] = append(owners[p], k)
	}

	dup := make(map[string][]string)
	for p, ks := range owners {
		if len(ks) > 1 {
			dup[p] = ks
		}
	}
	if len(dup) == 0 && len(empty) == 0 {
		return nil
	}
	return &CollisionError{Paths: dup, Empty: empty}
}

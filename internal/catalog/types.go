package catalog

import (
	"fmt"
	"strings"
)

// Separator joins path segments into a logical key ("menuItems.Paneer Tikka").
const Separator = "."

// Node is one position in the catalog tree: either a leaf holding an image
// location, or an object whose children keep insertion order.
type Node struct {
	leaf     bool
	value    string
	keys     []string
	children map[string]*Node
}

// Leaf returns a leaf node holding value.
func Leaf(value string) *Node {
	return &Node{leaf: true, value: value}
}

// Object returns an empty object node.
func Object() *Node {
	return &Node{children: make(map[string]*Node)}
}

func (n *Node) IsLeaf() bool  { return n.leaf }
func (n *Node) Value() string { return n.value }

// Keys returns child names in insertion order.
func (n *Node) Keys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Child returns the named child, or nil.
func (n *Node) Child(name string) *Node {
	if n.leaf {
		return nil
	}
	return n.children[name]
}

// put adds or replaces a child. A replaced child keeps its original position.
func (n *Node) put(name string, child *Node) {
	if _, ok := n.children[name]; !ok {
		n.keys = append(n.keys, name)
	}
	n.children[name] = child
}

// Entry is one flattened leaf: its dotted key and its value.
type Entry struct {
	Key   string
	Value string
}

// Catalog is the nested logical-key to image-location map.
type Catalog struct {
	root *Node
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{root: Object()}
}

// Root returns the top-level object node.
func (c *Catalog) Root() *Node { return c.root }

// Len returns the number of leaves.
func (c *Catalog) Len() int {
	return countLeaves(c.root)
}

func countLeaves(n *Node) int {
	if n.leaf {
		return 1
	}
	total := 0
	for _, k := range n.keys {
		total += countLeaves(n.children[k])
	}
	return total
}

// Flatten walks the tree depth-first in document order and returns one
// entry per leaf.
func (c *Catalog) Flatten() []Entry {
	var out []Entry
	flatten(c.root, "", &out)
	return out
}

func flatten(n *Node, prefix string, out *[]Entry) {
	for _, k := range n.keys {
		key := k
		if prefix != "" {
			key = prefix + Separator + k
		}
		child := n.children[k]
		if child.leaf {
			*out = append(*out, Entry{Key: key, Value: child.value})
			continue
		}
		flatten(child, key, out)
	}
}

// Lookup returns the leaf value at key.
func (c *Catalog) Lookup(key string) (string, bool) {
	n := c.root
	for _, seg := range strings.Split(key, Separator) {
		n = n.Child(seg)
		if n == nil {
			return "", false
		}
	}
	if !n.leaf {
		return "", false
	}
	return n.value, true
}

// Set stores value at key, creating intermediate objects as needed. It fails
// if the key would turn an existing leaf into an object or the reverse.
func (c *Catalog) Set(key, value string) error {
	parts := strings.Split(key, Separator)
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("key %q: empty segment", key)
		}
	}

	n := c.root
	for i, seg := range parts[:len(parts)-1] {
		next := n.children[seg]
		switch {
		case next == nil:
			next = Object()
			n.put(seg, next)
		case next.leaf:
			return fmt.Errorf("key %q: %q is a leaf", key, strings.Join(parts[:i+1], Separator))
		}
		n = next
	}

	last := parts[len(parts)-1]
	if existing := n.children[last]; existing != nil && !existing.leaf {
		return fmt.Errorf("key %q: is an object", key)
	}
	n.put(last, Leaf(value))
	return nil
}

// FromEntries rebuilds the nested tree from flat entries. Object order follows
// the first appearance of each segment.
func FromEntries(entries []Entry) (*Catalog, error) {
	c := New()
	for _, e := range entries {
		if err := c.Set(e.Key, e.Value); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Plain converts the catalog into nested map[string]any values, the shape
// generic JSON tooling expects. Key order is lost.
func (c *Catalog) Plain() map[string]any {
	return plain(c.root)
}

func plain(n *Node) map[string]any {
	out := make(map[string]any, len(n.keys))
	for _, k := range n.keys {
		child := n.children[k]
		if child.leaf {
			out[k] = child.value
		} else {
			out[k] = plain(child)
		}
	}
	return out
}

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
)

// Parse decodes a catalog document. The root must be an object and every
// value must be a string or a nested object. Key order is preserved.
func Parse(data []byte) (*Catalog, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("catalog root must be an object")
	}
	root, err := decodeObject(trimmed, "")
	if err != nil {
		return nil, err
	}
	return &Catalog{root: root}, nil
}

func decodeObject(data []byte, prefix string) (*Node, error) {
	n := Object()
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		name := string(key)
		path := name
		if prefix != "" {
			path = prefix + Separator + name
		}
		if name == "" || strings.Contains(name, Separator) {
			return fmt.Errorf("%s: invalid key %q", prefixOrRoot(prefix), name)
		}

		switch dataType {
		case jsonparser.String:
			s, err := jsonparser.ParseString(value)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			n.put(name, Leaf(s))
		case jsonparser.Object:
			child, err := decodeObject(value, path)
			if err != nil {
				return err
			}
			n.put(name, child)
		default:
			return fmt.Errorf("%s: unsupported value %s", path, bytes.TrimSpace(value))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func prefixOrRoot(prefix string) string {
	if prefix == "" {
		return "<root>"
	}
	return prefix
}

// MarshalJSON encodes the catalog in document order without indentation.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	writeNode(&buf, c.root, "", "")
	return buf.Bytes(), nil
}

// Encode returns the catalog as pretty-printed JSON (2-space indent) with a
// trailing newline. HTML characters in URLs are written as-is.
func (c *Catalog) Encode() []byte {
	var buf bytes.Buffer
	writeNode(&buf, c.root, "", "  ")
	buf.WriteByte('\n')
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, n *Node, indent, step string) {
	if n.leaf {
		writeString(buf, n.value)
		return
	}
	if len(n.keys) == 0 {
		buf.WriteString("{}")
		return
	}

	inner := indent + step
	buf.WriteByte('{')
	for i, k := range n.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if step != "" {
			buf.WriteByte('\n')
			buf.WriteString(inner)
		}
		writeString(buf, k)
		buf.WriteByte(':')
		if step != "" {
			buf.WriteByte(' ')
		}
		writeNode(buf, n.children[k], inner, step)
	}
	if step != "" {
		buf.WriteByte('\n')
		buf.WriteString(indent)
	}
	buf.WriteByte('}')
}

func writeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // strings always encode
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
}

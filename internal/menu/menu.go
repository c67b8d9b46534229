// Package menu reads the restaurant's menu sheet, the source of the
// menuItems section of the image catalog.
package menu

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Section is the catalog section menu items are filed under.
const Section = "menuItems"

const fieldCount = 5

// Item is one row of the menu sheet.
type Item struct {
	Category    string
	Name        string
	Description string
	Price       string
	Badge       string
}

// Key is the catalog key for the item's image.
func (it Item) Key() string { return Section + "." + it.Name }

// Sheet is a parsed menu file.
type Sheet struct {
	Items   []Item
	Skipped int // rows without exactly five fields
}

// Read parses the menu file at path.
func Read(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open menu: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a header row followed by category,name,description,price,badge
// rows. Rows with another field count or an empty name are skipped.
func Parse(r io.Reader) (*Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	sheet := &Sheet{}
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse menu: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) != fieldCount {
			sheet.Skipped++
			continue
		}
		it := Item{
			Category:    strings.TrimSpace(rec[0]),
			Name:        strings.TrimSpace(rec[1]),
			Description: strings.TrimSpace(rec[2]),
			Price:       strings.TrimSpace(rec[3]),
			Badge:       strings.TrimSpace(rec[4]),
		}
		if it.Name == "" {
			sheet.Skipped++
			continue
		}
		sheet.Items = append(sheet.Items, it)
	}
	return sheet, nil
}

// Categories lists item categories in first-seen order.
func Categories(items []Item) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out
}

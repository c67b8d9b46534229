package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgsync/internal/catalog"
	"github.com/AnyUserName/imgsync/internal/hasher"
	"github.com/AnyUserName/imgsync/internal/keypath"
)

var statsCmd = &cobra.Command{
	Use:   "stats [catalog]",
	Short: "Display per-section statistics for a catalog and its images",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path := cfg.CatalogPath
	if len(args) == 1 {
		path = args[0]
	}
	c, err := catalog.Load(path)
	if err != nil {
		return err
	}
	printStats(path, collectStats(c, cfg.ImagesDir, cfg.URLPrefix))
	return nil
}

type sectionStats struct {
	name     string
	total    int
	resolved int
	bytes    int64
}

type catalogStats struct {
	sections   []sectionStats
	total      int
	resolved   int
	bytes      int64
	missing    []string   // resolved keys without a file
	duplicates [][]string // keys sharing identical image content
}

func collectStats(c *catalog.Catalog, imagesDir, prefix string) catalogStats {
	var st catalogStats
	index := map[string]int{}
	byHash := map[string][]string{}
	var hashes []string

	for _, e := range c.Flatten() {
		section, _, _ := strings.Cut(e.Key, catalog.Separator)
		i, ok := index[section]
		if !ok {
			i = len(st.sections)
			index[section] = i
			st.sections = append(st.sections, sectionStats{name: section})
		}
		sec := &st.sections[i]
		sec.total++
		st.total++

		if !keypath.IsLocal(prefix, e.Value) {
			continue
		}
		sec.resolved++
		st.resolved++

		rel := strings.TrimPrefix(e.Value, strings.TrimSuffix(prefix, "/")+"/")
		full := filepath.Join(imagesDir, filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err != nil {
			st.missing = append(st.missing, e.Key)
			continue
		}
		sec.bytes += info.Size()
		st.bytes += info.Size()

		h, err := hasher.File(full)
		if err != nil {
			continue
		}
		if _, seen := byHash[h]; !seen {
			hashes = append(hashes, h)
		}
		byHash[h] = append(byHash[h], e.Key)
	}

	for _, h := range hashes {
		if keys := byHash[h]; len(keys) > 1 {
			st.duplicates = append(st.duplicates, keys)
		}
	}
	return st
}

func printStats(path string, st catalogStats) {
	fmt.Println()
	fmt.Printf("  Catalog:          %s\n", path)
	fmt.Printf("  Entries:          %d\n", st.total)
	fmt.Printf("  Resolved:         %d\n", st.resolved)
	fmt.Printf("  Remote:           %d\n", st.total-st.resolved)
	fmt.Printf("  On disk:          %s\n", formatBytes(st.bytes))
	fmt.Println()

	fmt.Println("  Section breakdown:")
	for _, s := range st.sections {
		fmt.Printf("    %-12s  %4d entries  %4d local  %s\n", s.name, s.total, s.resolved, formatBytes(s.bytes))
	}
	fmt.Println()

	var warnings []string
	for _, k := range st.missing {
		warnings = append(warnings, fmt.Sprintf("%q points at a missing file", k))
	}
	for _, keys := range st.duplicates {
		sorted := append([]string(nil), keys...)
		sort.Strings(sorted)
		warnings = append(warnings, fmt.Sprintf("identical images: %s", strings.Join(sorted, ", ")))
	}
	if len(warnings) > 0 {
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
		fmt.Println()
	}
}

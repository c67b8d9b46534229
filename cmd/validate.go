package cmd

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/imgsync/internal/catalog"
	"github.com/AnyUserName/imgsync/internal/keypath"
	"github.com/AnyUserName/imgsync/internal/profile"
)

var validateProfile string

var validateCmd = &cobra.Command{
	Use:   "validate [catalog]",
	Short: "Check that resolved catalog entries exist on disk at the right size",
	Long: `Checks every catalog entry that points below the URL prefix: the file must
exist under the images root, decode, and have the size its key calls for.
Entries still pointing at remote URLs are listed as pending. Keys whose
output paths collide are errors.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateProfile, "profile", "p", "", "size profile")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	path := cfg.CatalogPath
	if len(args) == 1 {
		path = args[0]
	}
	c, err := catalog.Load(path)
	if err != nil {
		return err
	}

	prof := profile.Get(firstNonEmpty(validateProfile, cfg.Profile))
	res := validateCatalog(c, cfg.ImagesDir, cfg.URLPrefix, prof)

	if len(res.pending) > 0 {
		fmt.Printf("  • %d entries still remote:\n", len(res.pending))
		for _, k := range res.pending {
			fmt.Printf("    - %s\n", k)
		}
	}
	if len(res.errs) == 0 {
		fmt.Println("  ✓ Catalog is valid")
		fmt.Printf("  ✓ %d entries, %d resolved, all files present\n", c.Len(), res.resolved)
		return nil
	}

	fmt.Printf("  ✗ Catalog has %d error(s):\n", len(res.errs))
	for _, e := range res.errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(res.errs))
}

type validation struct {
	resolved int
	pending  []string
	errs     []string
}

func validateCatalog(c *catalog.Catalog, imagesDir, prefix string, prof profile.Profile) validation {
	var v validation
	entries := c.Flatten()

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	var cerr *keypath.CollisionError
	if err := keypath.CheckCollisions(keys, prof.Format); errors.As(err, &cerr) {
		v.errs = append(v.errs, cerr.Error())
	}

	for _, e := range entries {
		if !keypath.IsLocal(prefix, e.Value) {
			v.pending = append(v.pending, e.Key)
			continue
		}
		v.resolved++

		rel := strings.TrimPrefix(e.Value, strings.TrimSuffix(prefix, "/")+"/")
		if want := keypath.OutputPath(e.Key, prof.Format); rel != want {
			v.errs = append(v.errs, fmt.Sprintf("%q: points at %s, expected %s", e.Key, rel, want))
		}

		full := filepath.Join(imagesDir, filepath.FromSlash(rel))
		f, err := os.Open(full)
		if err != nil {
			v.errs = append(v.errs, fmt.Sprintf("%q: file not found: %s", e.Key, rel))
			continue
		}
		ic, _, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			v.errs = append(v.errs, fmt.Sprintf("%q: cannot decode %s: %v", e.Key, rel, err))
			continue
		}
		if want := prof.TargetSize(e.Key); ic.Width != want.Width || ic.Height != want.Height {
			v.errs = append(v.errs, fmt.Sprintf("%q: size mismatch: want %s, file is %dx%d",
				e.Key, want, ic.Width, ic.Height))
		}
	}
	return v
}

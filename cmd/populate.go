package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgsync/internal/catalog"
	"github.com/AnyUserName/imgsync/internal/menu"
	"github.com/AnyUserName/imgsync/internal/populate"
	"github.com/AnyUserName/imgsync/internal/search"
)

var (
	populateMenu    string
	populateQueries string
	populateMerge   bool
	populateDelay   time.Duration
)

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Build the catalog from Pexels search results",
	Long: `Searches Pexels for every image the site needs (hero, events, about page and
one photo per menu item) and writes the found URLs to the catalog. Requires
PEXELS_API_KEY. With --merge, keys already in the catalog are kept and not
searched again.`,
	Args: cobra.NoArgs,
	RunE: runPopulate,
}

func init() {
	f := populateCmd.Flags()
	f.StringVar(&populateMenu, "menu", "", "menu CSV (default from IMGSYNC_MENU_CSV)")
	f.StringVar(&populateQueries, "queries", "", "YAML query set (default: built-in restaurant set)")
	f.BoolVar(&populateMerge, "merge", false, "keep existing catalog entries")
	f.DurationVar(&populateDelay, "delay", 0, "minimum gap between searches (default from PEXELS_DELAY)")
	rootCmd.AddCommand(populateCmd)
}

func runPopulate(cmd *cobra.Command, _ []string) error {
	log := componentLog("populate")

	set := populate.DefaultQuerySet()
	if populateQueries != "" {
		qs, err := populate.LoadQuerySet(populateQueries)
		if err != nil {
			return err
		}
		set = qs
	}

	menuPath := firstNonEmpty(populateMenu, cfg.MenuCSV)
	var items []menu.Item
	sheet, err := menu.Read(menuPath)
	switch {
	case err == nil:
		items = sheet.Items
		log.Infof("found %d menu items in %s", len(items), menuPath)
		if sheet.Skipped > 0 {
			log.Warnf("skipped %d malformed menu rows", sheet.Skipped)
		}
	case populateMenu == "" && errors.Is(err, fs.ErrNotExist):
		log.Warnf("no menu at %s, searching static images only", menuPath)
	default:
		return err
	}

	queries, dropped := populate.Build(set, items)
	for _, it := range dropped {
		log.Warnf("menu item %q contains %q and cannot be a catalog key", it.Name, catalog.Separator)
	}

	delay := cfg.Pexels.Delay
	if populateDelay > 0 {
		delay = populateDelay
	}
	client, err := search.NewClient(search.Options{
		APIKey:  cfg.Pexels.APIKey,
		BaseURL: cfg.Pexels.BaseURL,
		Delay:   delay,
	})
	if err != nil {
		return err
	}

	opts := populate.Options{Log: log}
	if populateMerge {
		existing, err := catalog.Load(cfg.CatalogPath)
		var rerr *catalog.ReadError
		switch {
		case err == nil:
			opts.Existing = existing
		case errors.As(err, &rerr) && errors.Is(err, fs.ErrNotExist):
			log.Debugf("no catalog at %s yet", cfg.CatalogPath)
		default:
			return err
		}
	}

	log.Infof("searching %d images (%s between requests)", len(queries), delay)
	c, rep, err := populate.Run(cmd.Context(), client, queries, opts)
	if err != nil {
		return err
	}
	if len(rep.Found) == 0 && rep.Reused == 0 {
		return fmt.Errorf("no images found for %d queries; catalog left unchanged", len(queries))
	}
	if err := c.Save(cfg.CatalogPath); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Catalog:     %s\n", cfg.CatalogPath)
	fmt.Printf("  Found:       %d / %d\n", len(rep.Found), len(queries)-rep.Reused)
	if rep.Reused > 0 {
		fmt.Printf("  Kept:        %d existing\n", rep.Reused)
	}
	if n := len(rep.Missing); n > 0 {
		fmt.Printf("  Missing:     %d\n", n)
		for i, q := range rep.Missing {
			if i == 10 {
				fmt.Printf("    ... and %d more\n", n-10)
				break
			}
			fmt.Printf("    - %s (%s)\n", q.Key, q.Text)
		}
	}
	fmt.Println()
	return nil
}

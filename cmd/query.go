package cmd

import (
	"fmt"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgsync/internal/catalog"
)

var queryCmd = &cobra.Command{
	Use:   "query <jsonpath> [catalog]",
	Short: "Look up catalog values with a JSONPath expression",
	Example: `  imgsync query '$.hero'
  imgsync query '$.menuItems.*'
  imgsync query "$.about['chef-2']" public/data/imageMap.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(_ *cobra.Command, args []string) error {
	path := cfg.CatalogPath
	if len(args) == 2 {
		path = args[1]
	}
	c, err := catalog.Load(path)
	if err != nil {
		return err
	}
	results, err := c.Query(args[0])
	if err != nil {
		return err
	}
	for _, r := range results {
		if s, ok := r.(string); ok {
			fmt.Println(s)
			continue
		}
		fmt.Println(oj.JSON(r, &ojg.Options{Indent: 2, Sort: true}))
	}
	if len(results) == 0 {
		return fmt.Errorf("no match for %s", args[0])
	}
	return nil
}

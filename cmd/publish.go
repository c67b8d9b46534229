package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgsync/internal/catalog"
	"github.com/AnyUserName/imgsync/internal/keypath"
	"github.com/AnyUserName/imgsync/internal/mirror"
)

var publishForce bool

var publishCmd = &cobra.Command{
	Use:   "publish [catalog]",
	Short: "Upload resolved images to an S3-compatible bucket",
	Long: `Uploads every image the catalog points at below the URL prefix to the bucket
configured by IMGSYNC_S3_ENDPOINT, IMGSYNC_S3_BUCKET, IMGSYNC_S3_ACCESS_KEY and
IMGSYNC_S3_SECRET_KEY. Objects whose size already matches are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().BoolVarP(&publishForce, "force", "f", false, "upload even when the object already exists")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	path := cfg.CatalogPath
	if len(args) == 1 {
		path = args[0]
	}
	c, err := catalog.Load(path)
	if err != nil {
		return err
	}

	var rels []string
	base := strings.TrimSuffix(cfg.URLPrefix, "/") + "/"
	for _, e := range c.Flatten() {
		if keypath.IsLocal(cfg.URLPrefix, e.Value) {
			rels = append(rels, strings.TrimPrefix(e.Value, base))
		}
	}
	if len(rels) == 0 {
		fmt.Println("  nothing to publish: no resolved entries")
		return nil
	}

	store, err := mirror.New(cfg.Mirror, componentLog("mirror"))
	if err != nil {
		return err
	}
	rep, err := store.Publish(cmd.Context(), cfg.ImagesDir, rels, publishForce)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Bucket:      %s\n", cfg.Mirror.Bucket)
	fmt.Printf("  Uploaded:    %d (%s)\n", rep.Uploaded, formatBytes(rep.Bytes))
	fmt.Printf("  Skipped:     %d (unchanged)\n", rep.Skipped)
	fmt.Printf("  Failed:      %d\n", len(rep.Failures))
	for _, f := range rep.Failures {
		fmt.Printf("    - %s: %s\n", f.Rel, f.Reason)
	}
	fmt.Println()
	if len(rep.Failures) > 0 {
		return fmt.Errorf("%d uploads failed", len(rep.Failures))
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgsync/internal/config"
)

var (
	version = "0.1.0"
	verbose bool
	envFile string

	// Shared by every subcommand.
	catalogPath string
	imagesDir   string
	urlPrefix   string

	cfg    *config.Config
	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "imgsync",
	Short: "Localize a site's remote images at build time",
	Long: `imgsync reads the site's image catalog (a nested JSON map of keys to image
URLs), downloads every remote image, resizes it to the size its key calls for,
encodes it as WebP under the images root and rewrites the catalog to point at
the local copies.

Runs are idempotent: images already on disk are not fetched again unless
--force is given. Entries that fail keep their original URL and make the
command exit non-zero.`,
	Version:           version,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runSync,
}

// Execute runs the command tree. ctx is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file read before the environment")
	pf.StringVar(&catalogPath, "catalog", "", "image catalog JSON (default from IMGSYNC_CATALOG)")
	pf.StringVar(&imagesDir, "images", "", "images root directory (default from IMGSYNC_IMAGES_DIR)")
	pf.StringVar(&urlPrefix, "prefix", "", "URL prefix the images root is served at (default from IMGSYNC_URL_PREFIX)")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"imgsync %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// setup loads configuration and configures logging for every command.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	c, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if catalogPath != "" {
		c.CatalogPath = catalogPath
	}
	if imagesDir != "" {
		c.ImagesDir = imagesDir
	}
	if urlPrefix != "" {
		c.URLPrefix = urlPrefix
	}
	cfg = c
	return nil
}

// componentLog returns the logger entry for one part of the tool.
func componentLog(name string) *logrus.Entry {
	return logger.WithField("component", name)
}

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/imgsync/internal/fetch"
	"github.com/AnyUserName/imgsync/internal/pipeline"
	"github.com/AnyUserName/imgsync/internal/profile"
)

var (
	syncForce   bool
	syncDryRun  bool
	syncQuality int
	syncProfile string
	syncPersist string
	syncTimeout time.Duration
)

func init() {
	f := rootCmd.Flags()
	f.BoolVarP(&syncForce, "force", "f", false, "re-fetch images that already exist on disk")
	f.BoolVarP(&syncDryRun, "dry-run", "n", false, "print the plan without fetching or writing anything")
	f.IntVarP(&syncQuality, "quality", "q", 0, "quality 1-100 (0 = profile default)")
	f.StringVarP(&syncProfile, "profile", "p", "", "size profile: "+strings.Join(profile.Names(), ", "))
	f.StringVar(&syncPersist, "persist", "", "catalog rewrite policy: progress, always or never")
	f.DurationVar(&syncTimeout, "timeout", 0, "per-image download timeout (default from IMGSYNC_HTTP_TIMEOUT)")
}

func runSync(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	log := componentLog("pipeline")

	prof := profile.Get(firstNonEmpty(syncProfile, cfg.Profile))
	quality := cfg.Quality
	if syncQuality != 0 {
		quality = syncQuality
	}
	persist, err := pipeline.ParsePersistPolicy(firstNonEmpty(syncPersist, cfg.Persist))
	if err != nil {
		return err
	}
	timeout := cfg.HTTPTimeout
	if syncTimeout > 0 {
		timeout = syncTimeout
	}

	log.Debugf("catalog: %s", cfg.CatalogPath)
	log.Debugf("images:  %s (served at %s)", cfg.ImagesDir, cfg.URLPrefix)

	p, err := pipeline.New(pipeline.Config{
		CatalogPath: cfg.CatalogPath,
		ImagesDir:   cfg.ImagesDir,
		URLPrefix:   cfg.URLPrefix,
		Profile:     prof,
		Quality:     quality,
		Force:       syncForce,
		DryRun:      syncDryRun,
		Persist:     persist,
		Fetcher:     newFetcher(timeout),
		Log:         log,
	})
	if err != nil {
		return err
	}

	summary, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}
	if summary.DryRun {
		printPlan(summary)
		return nil
	}
	printRunReport(summary, time.Since(start))
	if !summary.OK() {
		return pipeline.ErrEntriesFailed
	}
	return nil
}

// newFetcher builds the download client, logging every request when
// --verbose is set.
func newFetcher(timeout time.Duration) fetch.Fetcher {
	client := fetch.NewClient(fetch.Options{
		Timeout:        timeout,
		ConnectTimeout: cfg.ConnectTimeout,
		UserAgent:      "imgsync/" + version,
	})
	if !verbose {
		return client
	}
	log := componentLog("fetch")
	return fetch.Observe(client, fetch.ObserverFunc(func(ev fetch.Event) {
		entry := log.WithFields(logrus.Fields{
			"url":      ev.URL,
			"bytes":    ev.Bytes,
			"duration": ev.Duration.Round(time.Millisecond),
		})
		if ev.Err != nil {
			entry.WithError(ev.Err).Debug("fetch failed")
			return
		}
		entry.Debug("fetched")
	}))
}

func printPlan(s *pipeline.Summary) {
	fmt.Println()
	fmt.Printf("  Dry run: %d images\n", s.Total())
	fmt.Println()
	for _, r := range s.Records {
		fmt.Printf("    %-40s %-9s → %s\n", truncKey(r.Key, 40), r.Size, r.Path)
		fmt.Printf("    %-40s %s\n", "", r.Source)
	}
	fmt.Println()
}

func printRunReport(s *pipeline.Summary, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║                imgsync complete                  ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	var written int64
	for _, r := range s.Records {
		written += int64(r.Bytes)
	}

	fmt.Printf("  Processed:   %d\n", s.Processed)
	fmt.Printf("  Skipped:     %d (already exist)\n", s.Skipped)
	fmt.Printf("  Failed:      %d\n", s.Failed)
	fmt.Printf("  Written:     %s\n", formatBytes(written))
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if s.Persisted {
		fmt.Println("  Catalog:     updated")
	} else {
		fmt.Println("  Catalog:     unchanged")
	}
	fmt.Println()

	if len(s.Failures) > 0 {
		fmt.Println("  Failed images:")
		for _, f := range s.Failures {
			fmt.Printf("    - %s: %s\n", f.Key, f.Reason)
		}
		fmt.Println()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}

package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/AnyUserName/imgsync/internal/catalog"
	"github.com/AnyUserName/imgsync/internal/encoder"
	"github.com/AnyUserName/imgsync/internal/fetch"
	"github.com/AnyUserName/imgsync/internal/keypath"
	"github.com/AnyUserName/imgsync/internal/materialize"
	"github.com/AnyUserName/imgsync/internal/profile"
	"github.com/AnyUserName/imgsync/internal/transform"
	"github.com/sirupsen/logrus"
)

// DefaultURLPrefix is where the site serves the images root from.
const DefaultURLPrefix = "/images/"

// Config holds all parameters for a pipeline run.
type Config struct {
	CatalogPath string
	ImagesDir   string
	URLPrefix   string
	Profile     profile.Profile
	Quality     int // 0 = profile default
	Force       bool
	DryRun      bool
	Persist     PersistPolicy
	Fetcher     fetch.Fetcher   // nil = fetch.NewClient with defaults
	Encoder     encoder.Encoder // nil = registry lookup of Profile.Format
	Log         *logrus.Entry
}

// Pipeline resolves every catalog entry to a local image.
type Pipeline struct {
	cfg Config
	enc encoder.Encoder
	ext string
}

// New creates a configured pipeline. Encoder availability is only required
// for real runs; a dry run can plan without cwebp installed.
func New(cfg Config) (*Pipeline, error) {
	if cfg.CatalogPath == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	if cfg.ImagesDir == "" {
		return nil, fmt.Errorf("images dir is required")
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = DefaultURLPrefix
	}
	if cfg.Profile.Name == "" {
		cfg.Profile = profile.Get(profile.DefaultName)
	}
	if cfg.Quality == 0 {
		cfg.Quality = cfg.Profile.Quality
	}
	if cfg.Quality < 1 || cfg.Quality > 100 {
		return nil, fmt.Errorf("quality must be between 1 and 100, got %d", cfg.Quality)
	}
	if cfg.Persist == "" {
		cfg.Persist = PersistOnProgress
	}
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}

	p := &Pipeline{cfg: cfg, enc: cfg.Encoder, ext: cfg.Profile.Format}
	if p.enc == nil {
		enc, err := encoder.NewRegistry().Resolve(cfg.Profile.Format)
		if err != nil && !cfg.DryRun {
			return nil, err
		}
		p.enc = enc
	}
	if p.enc != nil {
		p.ext = p.enc.Extension()
	}
	if p.cfg.Fetcher == nil {
		p.cfg.Fetcher = fetch.NewClient(fetch.Options{})
	}
	return p, nil
}

// Plan loads the catalog and computes the output path and size of every
// entry without side effects.
func (p *Pipeline) Plan() ([]Record, error) {
	c, err := catalog.Load(p.cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	return p.plan(c.Flatten())
}

func (p *Pipeline) plan(entries []catalog.Entry) ([]Record, error) {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	if err := keypath.CheckCollisions(keys, p.ext); err != nil {
		return nil, err
	}

	records := make([]Record, len(entries))
	for i, e := range entries {
		records[i] = Record{
			Key:    e.Key,
			Source: e.Value,
			Path:   keypath.OutputPath(e.Key, p.ext),
			Size:   p.cfg.Profile.TargetSize(e.Key),
			Status: Planned,
			Value:  e.Value,
		}
	}
	return records, nil
}

// Run executes the pipeline: load, flatten, materialize each entry in order,
// then rebuild and persist the catalog according to the persist policy.
// Per-entry failures are recorded in the Summary; the returned error is
// reserved for failures that stop the run.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	log := p.cfg.Log

	log.Debugf("reading catalog %s", p.cfg.CatalogPath)
	c, err := catalog.Load(p.cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	entries := c.Flatten()
	log.Infof("found %d images", len(entries))

	plan, err := p.plan(entries)
	if err != nil {
		return nil, err
	}

	summary := &Summary{DryRun: p.cfg.DryRun}
	if p.cfg.DryRun {
		for _, r := range plan {
			summary.record(r)
		}
		return summary, nil
	}

	if err := os.MkdirAll(p.cfg.ImagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}

	log.Debugf("profile %s (format=%s, quality=%d, force=%t)",
		p.cfg.Profile.Name, p.enc.Format(), p.cfg.Quality, p.cfg.Force)

	m := materialize.New(p.cfg.ImagesDir, p.cfg.Fetcher, transform.New(p.enc, p.cfg.Quality))
	for i, r := range plan {
		entryLog := log.WithField("key", r.Key)
		entryLog.Debugf("[%d/%d] %s -> %s (%s)", i+1, len(plan), r.Source, r.Path, r.Size)

		r = p.resolve(ctx, m, r)
		switch r.Status {
		case Failed:
			entryLog.WithField("reason", r.Reason).Warn("failed")
		case Skipped:
			entryLog.Info("skipped (already exists)")
		default:
			entryLog.WithFields(logrus.Fields{"bytes": r.Bytes, "hash": r.Hash}).Infof("saved %s", r.Path)
		}
		summary.record(r)
	}

	if !p.cfg.Persist.shouldPersist(summary) {
		log.Warnf("catalog left unchanged (persist policy %q)", p.cfg.Persist)
		return summary, nil
	}

	updated := make([]catalog.Entry, len(summary.Records))
	for i, r := range summary.Records {
		updated[i] = catalog.Entry{Key: r.Key, Value: r.Value}
	}
	rebuilt, err := catalog.FromEntries(updated)
	if err != nil {
		return summary, fmt.Errorf("rebuild catalog: %w", err)
	}
	if err := rebuilt.Save(p.cfg.CatalogPath); err != nil {
		return summary, err
	}
	summary.Persisted = true
	log.Infof("catalog updated: %s", p.cfg.CatalogPath)
	return summary, nil
}

// resolve runs one entry through the materializer and fills in its outcome.
func (p *Pipeline) resolve(ctx context.Context, m *materialize.Materializer, r Record) Record {
	local := keypath.LocalURL(p.cfg.URLPrefix, r.Path)

	// Entries resolved by an earlier run have no remote source left.
	if keypath.IsLocal(p.cfg.URLPrefix, r.Source) {
		if m.Exists(r.Path) {
			r.Status, r.Value = Skipped, local
			return r
		}
		r.Status = Failed
		r.Reason = fmt.Sprintf("local file %s is missing and the catalog has no remote source for it", r.Path)
		return r
	}

	res, err := m.Materialize(ctx, r.Source, r.Path, r.Size, p.cfg.Force)
	switch {
	case err != nil:
		r.Status, r.Reason = Failed, err.Error()
	case res.Skipped:
		r.Status, r.Value = Skipped, local
	default:
		r.Status, r.Value = Processed, local
		r.Bytes, r.Hash = res.Bytes, res.Hash
	}
	return r
}

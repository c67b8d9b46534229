package populate

import (
	"context"
	"errors"

	"github.com/AnyUserName/imgsync/internal/catalog"
	"github.com/AnyUserName/imgsync/internal/search"
	"github.com/sirupsen/logrus"
)

// Options controls a population run.
type Options struct {
	// Existing is merged into the result. Keys it already holds are not
	// searched again.
	Existing *catalog.Catalog
	Log      *logrus.Entry
}

// Report lists what a run found.
type Report struct {
	Found   []search.Query
	Missing []search.Query
	Reused  int
}

// Run searches every query in order and returns the catalog built from the
// photos found. Queries without a result are left out of the catalog and
// listed in Report.Missing. Only context cancellation stops the run early.
func Run(ctx context.Context, s search.Searcher, queries []search.Query, opts Options) (*catalog.Catalog, *Report, error) {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	out := catalog.New()
	if opts.Existing != nil {
		rebuilt, err := catalog.FromEntries(opts.Existing.Flatten())
		if err != nil {
			return nil, nil, err
		}
		out = rebuilt
	}

	rep := &Report{}
	for i, q := range queries {
		if _, ok := out.Lookup(q.Key); ok && opts.Existing != nil {
			rep.Reused++
			continue
		}

		qlog := log.WithFields(logrus.Fields{"key": q.Key, "query": q.Text})
		qlog.Debugf("[%d/%d] searching", i+1, len(queries))

		u, err := s.Search(ctx, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, ctxErr
			}
			if errors.Is(err, search.ErrNoMatch) {
				qlog.Warn("no images found")
			} else {
				qlog.WithError(err).Warn("search failed")
			}
			rep.Missing = append(rep.Missing, q)
			continue
		}
		if err := out.Set(q.Key, u); err != nil {
			qlog.WithError(err).Warn("cannot place result in catalog")
			rep.Missing = append(rep.Missing, q)
			continue
		}
		rep.Found = append(rep.Found, q)
	}
	return out, rep, nil
}

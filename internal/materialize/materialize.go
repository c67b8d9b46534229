// Package materialize turns one remote image into a transcoded local file.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/AnyUserName/imgsync/internal/fetch"
	"github.com/AnyUserName/imgsync/internal/hasher"
	"github.com/AnyUserName/imgsync/internal/profile"
)

// Transcoder converts fetched bytes into the stored image.
type Transcoder interface {
	Transcode(data []byte, size profile.Size) ([]byte, error)
}

// Result describes what Materialize did.
type Result struct {
	Skipped bool   // destination already existed; nothing was fetched
	Bytes   int    // size of the written file
	Hash    string // content hash of the written file
}

// Materializer writes images below a fixed root directory.
type Materializer struct {
	root       string
	fetcher    fetch.Fetcher
	transcoder Transcoder
}

// New returns a Materializer writing below root.
func New(root string, f fetch.Fetcher, t Transcoder) *Materializer {
	return &Materializer{root: root, fetcher: f, transcoder: t}
}

// Root returns the images root.
func (m *Materializer) Root() string { return m.root }

// Path resolves a slash-separated destination below the root.
func (m *Materializer) Path(dest string) string {
	return filepath.Join(m.root, filepath.FromSlash(dest))
}

// Exists reports whether dest is already present.
func (m *Materializer) Exists(dest string) bool {
	_, err := os.Stat(m.Path(dest))
	return err == nil
}

// Materialize fetches sourceURL, transcodes it to size and stores it at dest.
// Unless force is set, an existing destination is left alone and no request
// is made. The destination is replaced atomically: it holds either the
// previous content or the complete new file.
func (m *Materializer) Materialize(ctx context.Context, sourceURL, dest string, size profile.Size, force bool) (Result, error) {
	if !filepath.IsLocal(filepath.FromSlash(dest)) {
		return Result{}, fmt.Errorf("destination %q escapes the images root", dest)
	}
	full := m.Path(dest)

	if !force {
		_, err := os.Stat(full)
		if err == nil {
			return Result{Skipped: true}, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("stat %s: %w", dest, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Result{}, fmt.Errorf("create dir for %s: %w", dest, err)
	}

	raw, err := m.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return Result{}, err
	}

	data, err := m.transcoder.Transcode(raw, size)
	if err != nil {
		return Result{}, err
	}

	if err := writeAtomic(full, data); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", dest, err)
	}
	return Result{Bytes: len(data), Hash: hasher.Sum(data)}, nil
}

// writeAtomic stages data in a hidden temp file in the target directory and
// renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

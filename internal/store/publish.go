package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kodict/internal/compress"
	"github.com/heartmarshall/kodict/internal/domain"
)

// recordsPerCheck is how many metadata records are written between context
// checks.
const recordsPerCheck = 4096

// ErrNotDurable reports a generation that is live but whose CURRENT update
// may not survive a crash. The generation is left in place.
var ErrNotDurable = errors.New("store: generation published but not durably synced")

// PublishOptions controls how a generation is written.
type PublishOptions struct {
	// Compression applies to the index payload and the metadata stream.
	Compression compress.Algorithm
	// Now returns the creation time; defaults to time.Now.
	Now func() time.Time
}

// Publish writes s as a new generation under root and makes it the live one.
//
// All artifacts are written and synced inside a temporary directory, which
// is renamed into place before CURRENT is replaced. If Publish fails, CURRENT
// still names the previous generation and no partial generation remains. The
// one exception is ErrNotDurable: CURRENT was replaced but the root directory
// could not be synced, and the returned manifest describes the live
// generation.
func Publish(ctx context.Context, root string, s *Store, opts PublishOptions) (Manifest, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("store: create root: %w", err)
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	created := now().UTC()
	name := generationPrefix + created.Format(generationTime) + "-" + uuid.NewString()[:8]

	tmp, err := os.MkdirTemp(root, ".tmp-"+name+"-")
	if err != nil {
		return Manifest{}, fmt.Errorf("store: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	m := Manifest{
		Version:      ManifestVersion,
		Generation:   name,
		CreatedAt:    created,
		Keys:         s.Len(),
		Compression:  opts.Compression.String(),
		IndexFile:    IndexFileName,
		MetadataFile: MetadataFileName + opts.Compression.Extension(),
	}

	m.IndexSize, err = writeFile(filepath.Join(tmp, m.IndexFile), func(w io.Writer) error {
		return s.index.Encode(w, opts.Compression)
	})
	if err != nil {
		return Manifest{}, fmt.Errorf("store: write index: %w", err)
	}
	m.MetadataSize, err = writeFile(filepath.Join(tmp, m.MetadataFile), func(w io.Writer) error {
		return writeRecords(ctx, w, s.entries, opts.Compression)
	})
	if err != nil {
		return Manifest{}, fmt.Errorf("store: write metadata: %w", err)
	}
	if _, err := writeFile(filepath.Join(tmp, ManifestFileName), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}); err != nil {
		return Manifest{}, fmt.Errorf("store: write manifest: %w", err)
	}
	if err := syncDir(tmp); err != nil {
		return Manifest{}, fmt.Errorf("store: sync generation: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Manifest{}, err
	}

	dir := filepath.Join(root, name)
	if err := os.Rename(tmp, dir); err != nil {
		return Manifest{}, fmt.Errorf("store: move generation into place: %w", err)
	}
	if err := setCurrent(root, name); err != nil {
		os.RemoveAll(dir)
		return Manifest{}, fmt.Errorf("store: publish %s: %w", name, err)
	}
	if err := syncDir(root); err != nil {
		return m, fmt.Errorf("%w: %s: %w", ErrNotDurable, name, err)
	}
	return m, nil
}

func writeRecords(ctx context.Context, w io.Writer, entries []domain.Entry, algo compress.Algorithm) error {
	zw, err := compress.NewWriter(w, algo)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(zw)
	enc.SetEscapeHTML(false)
	for i, e := range entries {
		if i%recordsPerCheck == 0 {
			if err := ctx.Err(); err != nil {
				zw.Close()
				return err
			}
		}
		if e.Senses == nil {
			e.Senses = []domain.Sense{}
		}
		if err := enc.Encode(e); err != nil {
			zw.Close()
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return zw.Close()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeFile creates path, fills it through fn, and syncs it to disk. It
// returns the number of bytes written.
func writeFile(path string, fn func(io.Writer) error) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriterSize(f, 64<<10)
	cw := &countingWriter{w: bw}
	if err := fn(cw); err != nil {
		f.Close()
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return 0, err
	}
	return cw.n, f.Close()
}

// setCurrent atomically points CURRENT at the named generation. The caller
// syncs root afterwards.
func setCurrent(root, name string) error {
	f, err := os.CreateTemp(root, CurrentFileName+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.WriteString(name + "\n"); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, filepath.Join(root, CurrentFileName)); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// syncDir is a variable so tests can simulate fsync failures.
var syncDir = func(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}

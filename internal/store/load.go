package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/heartmarshall/kodict/internal/compress"
	"github.com/heartmarshall/kodict/internal/domain"
	"github.com/heartmarshall/kodict/internal/index"
)

// Load opens the live generation under root.
//
// The pair is refused as a whole when the artifacts disagree: a record count
// different from the index size, a record whose key is not the one the index
// assigns to its position, or a manifest that does not describe the files
// all yield a *domain.CorruptStoreError.
func Load(root string) (*Store, error) {
	name, err := Current(root)
	if err != nil {
		return nil, err
	}
	return LoadGeneration(root, name)
}

// LoadGeneration opens the named generation under root regardless of
// CURRENT.
func LoadGeneration(root, name string) (*Store, error) {
	dir := filepath.Join(root, name)

	m, err := readManifest(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, err
	}
	if m.Generation != name {
		return nil, domain.NewCorruptStoreError(dir,
			fmt.Sprintf("manifest names generation %q", m.Generation), nil)
	}
	algo, err := compress.Parse(m.Compression)
	if err != nil {
		return nil, domain.NewCorruptStoreError(dir, "manifest compression", err)
	}

	ix, err := readIndex(filepath.Join(dir, m.IndexFile))
	if err != nil {
		return nil, err
	}
	if m.Keys != ix.Len() {
		return nil, &domain.CorruptStoreError{
			Path:   filepath.Join(dir, ManifestFileName),
			Reason: "manifest key count does not match index",
			ID:     -1,
			Want:   ix.Len(),
			Got:    m.Keys,
		}
	}

	entries, err := readRecords(filepath.Join(dir, m.MetadataFile), ix, algo)
	if err != nil {
		return nil, err
	}
	return &Store{index: ix, entries: entries, manifest: m}, nil
}

func readManifest(path string) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, domain.NewCorruptStoreError(path, "read manifest", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return Manifest{}, domain.NewCorruptStoreError(path, "decode manifest", err)
	}
	if m.Version != ManifestVersion {
		return Manifest{}, domain.NewCorruptStoreError(path,
			fmt.Sprintf("unsupported manifest version %d", m.Version), nil)
	}
	if filepath.Base(m.IndexFile) != m.IndexFile || filepath.Base(m.MetadataFile) != m.MetadataFile {
		return Manifest{}, domain.NewCorruptStoreError(path, "artifact names must be plain file names", nil)
	}
	return m, nil
}

func readIndex(path string) (*index.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewCorruptStoreError(path, "open index", err)
	}
	defer f.Close()

	ix, err := index.Decode(bufio.NewReaderSize(f, 64<<10))
	if err != nil {
		return nil, domain.NewCorruptStoreError(path, "decode index", err)
	}
	return ix, nil
}

// readRecords streams the metadata file, checking every record against the
// key the index assigns to its position.
func readRecords(path string, ix *index.Index, algo compress.Algorithm) ([]domain.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewCorruptStoreError(path, "open metadata", err)
	}
	defer f.Close()

	zr, err := compress.NewReader(bufio.NewReaderSize(f, 64<<10), algo)
	if err != nil {
		return nil, domain.NewCorruptStoreError(path, "open metadata stream", err)
	}
	defer zr.Close()

	n := ix.Len()
	entries := make([]domain.Entry, 0, n)
	extra := 0
	dec := json.NewDecoder(zr)
	for {
		var e domain.Entry
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewCorruptRecordError(path, "decode record", len(entries)+extra, err)
		}
		if len(entries) == n {
			extra++
			continue
		}
		id := uint32(len(entries))
		if key, _ := ix.Key(id); key != e.Key {
			return nil, domain.NewCorruptRecordError(path,
				fmt.Sprintf("record key %q does not match index key %q", e.Key, key), int(id), nil)
		}
		entries = append(entries, e)
	}

	if got := len(entries) + extra; got != n {
		return nil, &domain.CorruptStoreError{
			Path:   path,
			Reason: "record count does not match index",
			ID:     -1,
			Want:   n,
			Got:    got,
		}
	}
	return entries, nil
}

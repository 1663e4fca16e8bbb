package store

import (
	"time"
)

const (
	// CurrentFileName names the pointer file holding the live generation.
	CurrentFileName = "CURRENT"
	// ManifestFileName names the generation descriptor.
	ManifestFileName = "manifest.json"
	// IndexFileName names the encoded index.
	IndexFileName = "index.bin"
	// MetadataFileName names the metadata records, before any compression
	// extension.
	MetadataFileName = "metadata.jsonl"

	// ManifestVersion is the version of the generation layout.
	ManifestVersion = 1

	generationPrefix = "gen-"
	generationTime   = "20060102T150405.000000000Z"
)

// Manifest describes one published generation.
type Manifest struct {
	Version      int       `json:"version"`
	Generation   string    `json:"generation"`
	CreatedAt    time.Time `json:"created_at"`
	Keys         int       `json:"keys"`
	Compression  string    `json:"compression"`
	IndexFile    string    `json:"index_file"`
	IndexSize    int64     `json:"index_size"`
	MetadataFile string    `json:"metadata_file"`
	MetadataSize int64     `json:"metadata_size"`
}

// Package store pairs an index with its metadata table and persists the pair
// as one atomically published generation.
//
// A store root holds generation directories and a CURRENT file naming the
// live one:
//
//	root/
//	  CURRENT                      "gen-20261014T101500.000000000Z-1a2b3c4d\n"
//	  gen-20261014T101500.000000000Z-1a2b3c4d/
//	    manifest.json
//	    index.bin
//	    metadata.jsonl[.zst]
//
// Publish writes a complete generation before replacing CURRENT, and Load
// resolves CURRENT once, so a reader sees either the old pair or the new pair.
package store

import (
	"fmt"

	"github.com/heartmarshall/kodict/internal/domain"
	"github.com/heartmarshall/kodict/internal/index"
)

// Store is an immutable (index, metadata table) pair in which entries[id]
// carries the key with identifier id. It is safe for concurrent use.
type Store struct {
	index    *index.Index
	entries  []domain.Entry
	manifest Manifest
}

// New pairs ix with a reconciled table. The table must have one entry per
// identifier, each carrying the key the index assigns to that identifier.
func New(ix *index.Index, entries []domain.Entry) (*Store, error) {
	if len(entries) != ix.Len() {
		return nil, domain.NewValidationError("entries",
			fmt.Sprintf("table has %d entries, index has %d keys", len(entries), ix.Len()))
	}
	for id, e := range entries {
		if key, _ := ix.Key(uint32(id)); key != e.Key {
			return nil, domain.NewValidationError("entries",
				fmt.Sprintf("entry %d has key %q, index expects %q", id, e.Key, key))
		}
	}
	return &Store{index: ix, entries: entries}, nil
}

// Index returns the key index.
func (s *Store) Index() *index.Index { return s.index }

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Entry returns the entry with identifier id.
func (s *Store) Entry(id uint32) (domain.Entry, bool) {
	if int64(id) >= int64(len(s.entries)) {
		return domain.Entry{}, false
	}
	return s.entries[id], true
}

// Manifest describes the generation the store was loaded from. It is the
// zero value for a store built in memory.
func (s *Store) Manifest() Manifest { return s.manifest }

// Package query answers lookups, prefix searches and random samples over a
// loaded store.
package query

import (
	"iter"
	"math/rand/v2"

	"github.com/heartmarshall/kodict/internal/domain"
	"github.com/heartmarshall/kodict/internal/store"
)

// Match is one prefix search result.
type Match struct {
	Key   string       `json:"key"`
	Entry domain.Entry `json:"entry"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithIntN replaces the source of random positions. intN must return a value
// in [0, n) and be safe for concurrent use.
func WithIntN(intN func(n int) int) Option {
	return func(e *Engine) { e.intN = intN }
}

// Engine is a read-only view over a store. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	store *store.Store
	intN  func(n int) int
}

// New creates an Engine over s.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{store: s, intN: rand.IntN}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Len returns the number of entries.
func (e *Engine) Len() int { return e.store.Len() }

// Store returns the underlying store.
func (e *Engine) Store() *store.Store { return e.store }

// Lookup returns the entry for word. A miss is reported by ok == false and is
// not an error.
func (e *Engine) Lookup(word string) (domain.Entry, bool) {
	id, ok := e.store.Index().Lookup(word)
	if !ok {
		return domain.Entry{}, false
	}
	return e.store.Entry(id)
}

// Prefix returns the entries whose key starts with prefix, in lexicographic
// key order. The sequence is lazy.
func (e *Engine) Prefix(prefix string) iter.Seq2[string, domain.Entry] {
	return func(yield func(string, domain.Entry) bool) {
		for key, id := range e.store.Index().WithPrefix(prefix) {
			entry, _ := e.store.Entry(id)
			if !yield(key, entry) {
				return
			}
		}
	}
}

// PrefixSearch returns at most limit matches for prefix, in lexicographic key
// order. Enumeration stops once limit matches are collected. A limit of zero
// or less yields no matches.
func (e *Engine) PrefixSearch(prefix string, limit int) []Match {
	if limit <= 0 {
		return []Match{}
	}
	out := make([]Match, 0, min(limit, 64))
	for key, entry := range e.Prefix(prefix) {
		out = append(out, Match{Key: key, Entry: entry})
		if len(out) == limit {
			break
		}
	}
	return out
}

// Random returns an entry chosen uniformly at random. It returns
// domain.ErrEmptyStore when the store has no entries.
func (e *Engine) Random() (domain.Entry, error) {
	n := e.store.Len()
	if n == 0 {
		return domain.Entry{}, domain.ErrEmptyStore
	}
	entry, _ := e.store.Entry(uint32(e.intN(n)))
	return entry, nil
}

// Package collector gathers build entries from dictionary sources and
// prepares them for indexing.
package collector

import (
	"context"
	"slices"

	"github.com/heartmarshall/kodict/internal/domain"
)

// Source produces entries for one build.
type Source interface {
	Name() string
	Collect(ctx context.Context) ([]domain.Entry, error)
}

// CollectStats describes what a source read and dropped during its last
// Collect.
type CollectStats struct {
	// Read is the number of source records examined.
	Read int
	// Skipped counts dropped records by reason.
	Skipped map[string]int
}

// TotalSkipped sums Skipped over all reasons.
func (c CollectStats) TotalSkipped() int {
	n := 0
	for _, v := range c.Skipped {
		n += v
	}
	return n
}

// StatsReporter is implemented by sources that count the records they drop.
type StatsReporter interface {
	CollectStats() CollectStats
}

// DedupeStats counts the work done by Dedupe.
type DedupeStats struct {
	Input          int
	Output         int
	MergedEntries  int
	DroppedSenses  int
	NormalizedKeys int
}

// Dedupe normalizes keys and merges entries sharing a key into one entry.
// Senses keep their first-seen order; exact repeats of a sense are dropped.
// Entries whose key normalizes to the empty string are discarded. The output
// is ordered by first appearance of each key.
func Dedupe(entries []domain.Entry) ([]domain.Entry, DedupeStats) {
	stats := DedupeStats{Input: len(entries)}
	out := make([]domain.Entry, 0, len(entries))
	pos := make(map[string]int, len(entries))

	for _, e := range entries {
		key := domain.NormalizeKey(e.Key)
		if key == "" {
			continue
		}
		if key != e.Key {
			stats.NormalizedKeys++
		}

		i, seen := pos[key]
		if !seen {
			pos[key] = len(out)
			out = append(out, domain.Entry{Key: key})
			i = len(out) - 1
		} else {
			stats.MergedEntries++
		}

		for _, s := range e.Senses {
			if slices.Contains(out[i].Senses, s) {
				stats.DroppedSenses++
				continue
			}
			out[i].Senses = append(out[i].Senses, s)
		}
	}

	stats.Output = len(out)
	return out, stats
}

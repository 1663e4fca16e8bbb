package krdict

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/kodict/internal/collector"
	"github.com/heartmarshall/kodict/internal/domain"
)

var _ collector.StatsReporter = (*Source)(nil)

// Source collects entries from every *.xml file in a directory.
type Source struct {
	Dir     string
	Options Options
	// Workers bounds concurrent file parsing; zero uses GOMAXPROCS.
	Workers int

	stats Stats
	files int
}

// Name implements collector.Source.
func (s *Source) Name() string { return "krdict" }

// Collect parses the files concurrently. Entries are returned in sorted file
// name order, and in document order within a file, so the result does not
// depend on scheduling.
func (s *Source) Collect(ctx context.Context) ([]domain.Entry, error) {
	files, err := filepath.Glob(filepath.Join(s.Dir, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("krdict: list %s: %w", s.Dir, err)
	}
	slices.Sort(files)

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]ParseResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := Parse(path, s.Options)
			if err != nil {
				return fmt.Errorf("krdict: %w", err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var stats Stats
	n := 0
	for _, r := range results {
		stats.add(r.Stats)
		n += len(r.Entries)
	}
	entries := make([]domain.Entry, 0, n)
	for _, r := range results {
		entries = append(entries, r.Entries...)
	}
	s.stats, s.files = stats, len(files)
	return entries, nil
}

// Stats returns the statistics of the last Collect and the number of files
// it read.
func (s *Source) Stats() (Stats, int) { return s.stats, s.files }

// CollectStats implements collector.StatsReporter.
func (s *Source) CollectStats() collector.CollectStats {
	return collector.CollectStats{
		Read: s.stats.LexicalEntries,
		Skipped: map[string]int{
			"not_word":   s.stats.NotWords,
			"pos":        s.stats.FilteredByPOS,
			"no_lemma":   s.stats.NoLemma,
			"too_short":  s.stats.TooShort,
			"no_english": s.stats.NoEnglish,
		},
	}
}

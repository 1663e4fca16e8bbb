// Package refsource collects build entries from a PostgreSQL reference
// catalog made of the source_entries and source_senses tables.
package refsource

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/Masterminds/squirrel"

	postgres "github.com/heartmarshall/kodict/internal/adapter/postgres"
	"github.com/heartmarshall/kodict/internal/collector"
	"github.com/heartmarshall/kodict/internal/domain"
)

var _ collector.StatsReporter = (*Source)(nil)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Options selects which catalog rows are collected.
type Options struct {
	PartsOfSpeech []string
	// MinKeyLength is the minimum length in characters of the normalized
	// headword.
	MinKeyLength int
}

// Source reads entries from the reference catalog.
type Source struct {
	q    postgres.Querier
	opts Options

	read     int
	tooShort int
}

// New creates a catalog source reading through q.
func New(q postgres.Querier, opts Options) *Source {
	return &Source{q: q, opts: opts}
}

// Name implements collector.Source.
func (s *Source) Name() string { return "postgres" }

// selectSQL builds the join of entries and their senses, ordered by entry
// and sense position.
func (s *Source) selectSQL() (string, []any, error) {
	q := psql.
		Select("e.id", "e.headword", "s.word", "s.definition").
		From("source_entries e").
		Join("source_senses s ON s.entry_id = e.id").
		OrderBy("e.id", "s.position")
	if len(s.opts.PartsOfSpeech) > 0 {
		q = q.Where(squirrel.Eq{"e.part_of_speech": s.opts.PartsOfSpeech})
	}
	return q.ToSql()
}

// Collect returns one entry per catalog row that has at least one sense.
// Headwords are normalized before the length filter applies; entries are in
// catalog id order.
func (s *Source) Collect(ctx context.Context) ([]domain.Entry, error) {
	query, args, err := s.selectSQL()
	if err != nil {
		return nil, fmt.Errorf("refsource: build query: %w", err)
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "refsource: select entries")
	}
	defer rows.Close()

	var (
		entries  []domain.Entry
		lastID   int64 = -1
		skip     bool
		read     int
		tooShort int
	)
	for rows.Next() {
		var (
			id       int64
			headword string
			sense    domain.Sense
		)
		if err := rows.Scan(&id, &headword, &sense.Word, &sense.Definition); err != nil {
			return nil, postgres.MapError(err, "refsource: scan entry")
		}
		if id != lastID {
			lastID = id
			read++
			key := domain.NormalizeKey(headword)
			skip = utf8.RuneCountInString(key) < s.opts.MinKeyLength
			if skip {
				tooShort++
				continue
			}
			entries = append(entries, domain.Entry{Key: key})
		} else if skip {
			continue
		}
		last := &entries[len(entries)-1]
		last.Senses = append(last.Senses, sense)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "refsource: read entries")
	}
	s.read, s.tooShort = read, tooShort
	return entries, nil
}

// CollectStats implements collector.StatsReporter.
func (s *Source) CollectStats() collector.CollectStats {
	return collector.CollectStats{
		Read:    s.read,
		Skipped: map[string]int{"too_short": s.tooShort},
	}
}

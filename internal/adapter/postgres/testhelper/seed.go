package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/kodict/internal/domain"
)

// UniquePartOfSpeech returns a part of speech no other test uses, so tests
// sharing the container can filter to their own rows.
func UniquePartOfSpeech() string {
	return "pos-" + uuid.New().String()[:8]
}

// SeedSourceEntry inserts a catalog entry with its senses in order and
// returns the entry id.
func SeedSourceEntry(t *testing.T, pool *pgxpool.Pool, headword, partOfSpeech string, senses ...domain.Sense) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO source_entries (headword, part_of_speech) VALUES ($1, $2) RETURNING id`,
		headword, partOfSpeech,
	).Scan(&id)
	if err != nil {
		t.Fatalf("testhelper: SeedSourceEntry insert entry: %v", err)
	}

	for i, s := range senses {
		_, err := pool.Exec(ctx,
			`INSERT INTO source_senses (entry_id, position, word, definition) VALUES ($1, $2, $3, $4)`,
			id, i, s.Word, s.Definition,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedSourceEntry insert sense: %v", err)
		}
	}
	return id
}

package refsource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/heartmarshall/kodict/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/kodict/internal/domain"
)

func TestSource_SelectSQL(t *testing.T) {
	t.Parallel()

	s := New(nil, Options{PartsOfSpeech: []string{"명사", "동사"}, MinKeyLength: 2})
	query, args, err := s.selectSQL()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT e.id, e.headword, s.word, s.definition FROM source_entries e "+
			"JOIN source_senses s ON s.entry_id = e.id "+
			"WHERE e.part_of_speech IN ($1,$2) "+
			"ORDER BY e.id, s.position",
		query)
	assert.Equal(t, []any{"명사", "동사"}, args)
}

func TestSource_SelectSQL_NoFilters(t *testing.T) {
	t.Parallel()

	query, args, err := New(nil, Options{}).selectSQL()
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}

func TestSource_Collect(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	pos := testhelper.UniquePartOfSpeech()

	testhelper.SeedSourceEntry(t, pool, "다리", pos,
		domain.Sense{Word: "leg", Definition: "A limb."},
		domain.Sense{Word: "bridge", Definition: "A crossing."},
	)
	testhelper.SeedSourceEntry(t, pool, " 나무 ", pos, domain.Sense{Word: "tree", Definition: "A plant."})
	testhelper.SeedSourceEntry(t, pool, "간", pos, domain.Sense{Word: "liver", Definition: "An organ."})
	// Decomposed, this headword is three runes; composed, it is one.
	testhelper.SeedSourceEntry(t, pool, norm.NFD.String("강"), pos, domain.Sense{Word: "river", Definition: "Flowing water."})
	testhelper.SeedSourceEntry(t, pool, "하늘", pos)
	testhelper.SeedSourceEntry(t, pool, "바다", testhelper.UniquePartOfSpeech(), domain.Sense{Word: "sea", Definition: "Water."})

	src := New(pool, Options{PartsOfSpeech: []string{pos}, MinKeyLength: 2})
	assert.Equal(t, "postgres", src.Name())

	got, err := src.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.Entry{
		{Key: "다리", Senses: []domain.Sense{
			{Word: "leg", Definition: "A limb."},
			{Word: "bridge", Definition: "A crossing."},
		}},
		{Key: "나무", Senses: []domain.Sense{{Word: "tree", Definition: "A plant."}}},
	}, got)

	st := src.CollectStats()
	assert.Equal(t, 4, st.Read)
	assert.Equal(t, 2, st.Skipped["too_short"])
}

func TestSource_CollectCanceled(t *testing.T) {
	pool := testhelper.SetupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(pool, Options{}).Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

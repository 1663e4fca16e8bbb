package reconcile

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kodict/internal/domain"
	"github.com/heartmarshall/kodict/internal/index"
)

func entriesFor(keys ...string) []domain.Entry {
	out := make([]domain.Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.Entry{
			Key:    k,
			Senses: []domain.Sense{{Word: "w-" + k, Definition: "d-" + k}},
		})
	}
	return out
}

func buildIndex(t *testing.T, keys ...string) *index.Index {
	t.Helper()
	ix, err := index.Build(keys)
	require.NoError(t, err)
	return ix
}

func TestReconcile_PlacesByLookup(t *testing.T) {
	t.Parallel()

	keys := []string{"가다", "가을", "가방", "나무", "ab", "b"}
	ix := buildIndex(t, keys...)

	table, err := Reconcile(entriesFor(keys...), ix)
	require.NoError(t, err)
	require.Len(t, table, ix.Len())

	for _, k := range keys {
		id, ok := ix.Lookup(k)
		require.True(t, ok)
		assert.Equal(t, k, table[id].Key)
		assert.Equal(t, "d-"+k, table[id].Senses[0].Definition)
	}
}

func TestReconcile_PermutationInvariant(t *testing.T) {
	t.Parallel()

	keys := []string{"가", "가다", "가다듬다", "나", "나라", "나무", "-가", "abc"}
	ix := buildIndex(t, keys...)

	want, err := Reconcile(entriesFor(keys...), ix)
	require.NoError(t, err)

	r := rand.New(rand.NewPCG(3, 5))
	for range 20 {
		shuffled := entriesFor(keys...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := Reconcile(shuffled, ix)
		require.NoError(t, err)
		assert.True(t, slices.EqualFunc(want, got, domain.Entry.Equal))
	}
}

func TestReconcile_EmptySensesAccepted(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, "가다")
	table, err := Reconcile([]domain.Entry{{Key: "가다"}}, ix)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Empty(t, table[0].Senses)
}

func TestReconcile_Empty(t *testing.T) {
	t.Parallel()

	table, err := Reconcile(nil, buildIndex(t))
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestReconcile_KeyMismatch(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, "가다", "나무")
	_, err := Reconcile(entriesFor("가다", "없음"), ix)

	var km *domain.KeyMismatchError
	require.ErrorAs(t, err, &km)
	assert.Equal(t, "없음", km.Key)
	assert.True(t, errors.Is(err, domain.ErrKeyMismatch))
}

func TestReconcile_DuplicateEntry(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, "가다", "나무")
	_, err := Reconcile(entriesFor("가다", "나무", "가다"), ix)

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), `duplicate entry for key "가다"`)
}

func TestReconcile_Incomplete(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, "가다", "가을", "나무")
	_, err := Reconcile(entriesFor("가을"), ix)

	var ie *domain.IncompleteIndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 2, ie.Count)
	require.Len(t, ie.Missing, 2)
	assert.ElementsMatch(t, []string{"가다", "나무"}, ie.Keys)
	for i, id := range ie.Missing {
		key, _ := ix.Key(id)
		assert.Equal(t, key, ie.Keys[i])
	}
	assert.True(t, errors.Is(err, domain.ErrIncompleteIndex))
}

func TestReconcile_IncompleteCapsReport(t *testing.T) {
	t.Parallel()

	keys := make([]string, 0, 30)
	for r := 'a'; r < 'a'+30; r++ {
		keys = append(keys, "k"+string(r))
	}
	_, err := Reconcile(nil, buildIndex(t, keys...))

	var ie *domain.IncompleteIndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 30, ie.Count)
	assert.Len(t, ie.Missing, maxReportedMissing)
	assert.Contains(t, ie.Error(), "...")
}

// brokenIndex reports ids beyond its own length.
type brokenIndex struct{}

func (brokenIndex) Lookup(string) (uint32, bool) { return 7, true }
func (brokenIndex) Key(uint32) (string, bool)    { return "", false }
func (brokenIndex) Len() int                     { return 2 }

func TestReconcile_IDOutOfRange(t *testing.T) {
	t.Parallel()

	_, err := Reconcile(entriesFor("가다"), brokenIndex{})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "id", ve.Errors[0].Field)
	assert.Contains(t, ve.Errors[0].Message, "id 7 outside [0, 2)")
}

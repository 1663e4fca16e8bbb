package krdict

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kodict/internal/domain"
)

func TestParse_Nouns(t *testing.T) {
	t.Parallel()

	res, err := Parse(filepath.Join("testdata", "nouns.xml"), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []domain.Entry{
		{Key: "가게", Senses: []domain.Sense{
			{Word: "store; shop", Definition: "A house where goods are sold."},
			{Word: "None", Definition: "Error"},
		}},
		{Key: "나무", Senses: []domain.Sense{
			{Word: "wood", Definition: "Timber."},
		}},
	}, res.Entries)

	assert.Equal(t, Stats{
		LexicalEntries: 6,
		NotWords:       1,
		FilteredByPOS:  1,
		TooShort:       1,
		NoEnglish:      1,
		Kept:           2,
		Senses:         3,
	}, res.Stats)
}

func TestParse_PartsOfSpeechAndLength(t *testing.T) {
	t.Parallel()

	res, err := Parse(filepath.Join("testdata", "nouns.xml"), Options{
		PartsOfSpeech: []string{"명사", "동사"},
		MinKeyLength:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"가게", "가다", "간", "나무"}, domain.Keys(res.Entries))
}

func TestParse_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Parse("/nonexistent/file.xml", DefaultOptions())
	assert.Error(t, err)
}

func TestParseReader_MalformedXML(t *testing.T) {
	t.Parallel()

	_, err := ParseReader(strings.NewReader(`<LexicalResource><LexicalEntry><feat att="x"`), DefaultOptions())
	assert.Error(t, err)
}

func TestParseReader_NormalizesKeys(t *testing.T) {
	t.Parallel()

	doc := `<LexicalResource><LexicalEntry>
		<feat att="lexicalUnit" val="단어"/><feat att="partOfSpeech" val="명사"/>
		<Lemma><feat att="writtenForm" val="  사과 "/></Lemma>
		<Sense><Equivalent><feat att="language" val="영어"/><feat att="lemma" val="apple"/><feat att="definition" val="A fruit."/></Equivalent></Sense>
	</LexicalEntry></LexicalResource>`

	res, err := ParseReader(strings.NewReader(doc), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "사과", res.Entries[0].Key)
}

func TestSource_CollectsInFileOrder(t *testing.T) {
	t.Parallel()

	entry := func(key, word string) string {
		return `<LexicalEntry><feat att="lexicalUnit" val="단어"/><feat att="partOfSpeech" val="명사"/>` +
			`<Lemma><feat att="writtenForm" val="` + key + `"/></Lemma>` +
			`<Sense><Equivalent><feat att="language" val="영어"/><feat att="lemma" val="` + word +
			`"/><feat att="definition" val="d"/></Equivalent></Sense></LexicalEntry>`
	}

	dir := t.TempDir()
	files := map[string]string{
		"3.xml":     entry("하늘", "sky"),
		"1.xml":     entry("바다", "sea") + entry("사과", "apple"),
		"2.xml":     entry("나무", "tree"),
		"notes.txt": "ignored",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("<LexicalResource>"+body+"</LexicalResource>"), 0o644))
	}

	src := &Source{Dir: dir, Options: DefaultOptions(), Workers: 3}
	assert.Equal(t, "krdict", src.Name())

	for range 5 {
		got, err := src.Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"바다", "사과", "나무", "하늘"}, domain.Keys(got))
	}

	stats, n := src.Stats()
	assert.Equal(t, 3, n)
	assert.Equal(t, 4, stats.Kept)
}

func TestSource_PropagatesErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.xml"), []byte("<LexicalResource><LexicalEntry>"), 0o644))

	_, err := (&Source{Dir: dir}).Collect(context.Background())
	assert.Error(t, err)
}

func TestSource_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Source{Dir: "testdata"}).Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSource_CollectStats(t *testing.T) {
	t.Parallel()

	entry := func(pos, key, lang string) string {
		return `<LexicalEntry><feat att="lexicalUnit" val="단어"/><feat att="partOfSpeech" val="` + pos + `"/>` +
			`<Lemma><feat att="writtenForm" val="` + key + `"/></Lemma>` +
			`<Sense><Equivalent><feat att="language" val="` + lang + `"/><feat att="lemma" val="w"/>` +
			`<feat att="definition" val="d"/></Equivalent></Sense></LexicalEntry>`
	}
	body := entry("명사", "나무", "영어") +
		entry("동사", "가다", "영어") +
		entry("명사", "배", "영어") +
		entry("명사", "하늘", "일본어")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.xml"), []byte("<LexicalResource>"+body+"</LexicalResource>"), 0o644))

	src := &Source{Dir: dir, Options: DefaultOptions()}
	got, err := src.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"나무"}, domain.Keys(got))

	st := src.CollectStats()
	assert.Equal(t, 4, st.Read)
	assert.Equal(t, 3, st.TotalSkipped())
	assert.Equal(t, 1, st.Skipped["pos"])
	assert.Equal(t, 1, st.Skipped["too_short"])
	assert.Equal(t, 1, st.Skipped["no_english"])
}

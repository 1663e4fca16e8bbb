// Package krdict parses Korean learner's dictionary LMF XML exports into
// build entries. Pure functions: file path in, domain structs out.
package krdict

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"unicode/utf8"

	"github.com/heartmarshall/kodict/internal/domain"
)

const (
	unitWord        = "단어"
	languageEnglish = "영어"

	// Placeholders for an English equivalent whose value is blank.
	missingWord       = "None"
	missingDefinition = "Error"
)

// Options selects which lexical entries are kept.
type Options struct {
	// PartsOfSpeech lists accepted partOfSpeech values. Empty keeps nouns.
	PartsOfSpeech []string
	// MinKeyLength is the minimum headword length in runes.
	MinKeyLength int
}

// DefaultOptions keeps nouns of two or more characters.
func DefaultOptions() Options {
	return Options{PartsOfSpeech: []string{"명사"}, MinKeyLength: 2}
}

// Stats holds parser statistics for logging.
type Stats struct {
	LexicalEntries int
	NotWords       int
	FilteredByPOS  int
	NoLemma        int
	TooShort       int
	NoEnglish      int
	Kept           int
	Senses         int
}

func (s *Stats) add(o Stats) {
	s.LexicalEntries += o.LexicalEntries
	s.NotWords += o.NotWords
	s.FilteredByPOS += o.FilteredByPOS
	s.NoLemma += o.NoLemma
	s.TooShort += o.TooShort
	s.NoEnglish += o.NoEnglish
	s.Kept += o.Kept
	s.Senses += o.Senses
}

// ParseResult holds the entries of one file.
type ParseResult struct {
	Entries []domain.Entry
	Stats   Stats
}

// LMF XML internal types for deserialization.

type xmlFeat struct {
	Att string `xml:"att,attr"`
	Val string `xml:"val,attr"`
}

type feats []xmlFeat

// get returns the value of the feat named att.
func (fs feats) get(att string) (string, bool) {
	for _, f := range fs {
		if f.Att == att {
			return f.Val, true
		}
	}
	return "", false
}

func (fs feats) hasVal(val string) bool {
	for _, f := range fs {
		if f.Val == val {
			return true
		}
	}
	return false
}

type xmlLexicalEntry struct {
	Feats  feats      `xml:"feat"`
	Lemma  xmlLemma   `xml:"Lemma"`
	Senses []xmlSense `xml:"Sense"`
}

type xmlLemma struct {
	Feats feats `xml:"feat"`
}

type xmlSense struct {
	Feats       feats           `xml:"feat"`
	Equivalents []xmlEquivalent `xml:"Equivalent"`
}

type xmlEquivalent struct {
	Feats feats `xml:"feat"`
}

// Parse reads one LMF XML file.
func Parse(filePath string, opts Options) (ParseResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return ParseResult{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	res, err := ParseReader(f, opts)
	if err != nil {
		return ParseResult{}, fmt.Errorf("parse %s: %w", filePath, err)
	}
	return res, nil
}

// ParseReader streams LexicalEntry elements from r. Only one entry is held
// in decoded form at a time.
func ParseReader(r io.Reader, opts Options) (ParseResult, error) {
	if len(opts.PartsOfSpeech) == 0 {
		opts.PartsOfSpeech = DefaultOptions().PartsOfSpeech
	}

	var res ParseResult
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ParseResult{}, fmt.Errorf("decode XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "LexicalEntry" {
			continue
		}

		var le xmlLexicalEntry
		if err := dec.DecodeElement(&le, &start); err != nil {
			return ParseResult{}, fmt.Errorf("decode LexicalEntry: %w", err)
		}
		res.Stats.LexicalEntries++

		if e, ok := convert(le, opts, &res.Stats); ok {
			res.Entries = append(res.Entries, e)
			res.Stats.Kept++
			res.Stats.Senses += len(e.Senses)
		}
	}
	return res, nil
}

func convert(le xmlLexicalEntry, opts Options, st *Stats) (domain.Entry, bool) {
	if unit, _ := le.Feats.get("lexicalUnit"); unit != unitWord {
		st.NotWords++
		return domain.Entry{}, false
	}
	if pos, _ := le.Feats.get("partOfSpeech"); !slices.Contains(opts.PartsOfSpeech, pos) {
		st.FilteredByPOS++
		return domain.Entry{}, false
	}

	form, ok := le.Lemma.Feats.get("writtenForm")
	key := domain.NormalizeKey(form)
	if !ok || key == "" {
		st.NoLemma++
		return domain.Entry{}, false
	}
	if utf8.RuneCountInString(key) < opts.MinKeyLength {
		st.TooShort++
		return domain.Entry{}, false
	}

	senses := englishSenses(le.Senses)
	if len(senses) == 0 {
		st.NoEnglish++
		return domain.Entry{}, false
	}
	return domain.Entry{Key: key, Senses: senses}, true
}

// englishSenses takes the first English equivalent of every sense. An
// equivalent without a lemma or definition feat is skipped.
func englishSenses(senses []xmlSense) []domain.Sense {
	var out []domain.Sense
	for _, s := range senses {
		i := slices.IndexFunc(s.Equivalents, func(eq xmlEquivalent) bool {
			return eq.Feats.hasVal(languageEnglish)
		})
		if i < 0 {
			continue
		}
		eq := s.Equivalents[i].Feats

		word, okWord := eq.get("lemma")
		def, okDef := eq.get("definition")
		if !okWord || !okDef {
			continue
		}
		if word == "" {
			word = missingWord
		}
		if def == "" {
			def = missingDefinition
		}
		out = append(out, domain.Sense{Word: word, Definition: def})
	}
	return out
}

package collector

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/heartmarshall/kodict/internal/domain"
)

// LoadOverrides reads a JSON object mapping headwords to definitions. A
// missing file yields an empty map. Two headwords that normalize to the same
// key are rejected.
func LoadOverrides(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode overrides %s: %w", path, err)
	}

	out := make(map[string]string, len(raw))
	origin := make(map[string]string, len(raw))
	for _, word := range slices.Sorted(maps.Keys(raw)) {
		key := domain.NormalizeKey(word)
		if key == "" {
			return nil, domain.NewValidationError("overrides", fmt.Sprintf("empty headword in %s", path))
		}
		if prev, ok := origin[key]; ok {
			return nil, domain.NewValidationError("overrides",
				fmt.Sprintf("headwords %q and %q in %s both normalize to %q", prev, word, path, key))
		}
		origin[key] = word
		out[key] = raw[word]
	}
	return out, nil
}

// ApplyOverrides appends a single-sense entry for every override headword
// not already present. Existing entries are left untouched. Added entries
// follow in key order. It returns the extended slice and the number added.
func ApplyOverrides(entries []domain.Entry, overrides map[string]string) ([]domain.Entry, int) {
	present := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		present[e.Key] = struct{}{}
	}

	added := 0
	for _, word := range slices.Sorted(maps.Keys(overrides)) {
		if _, ok := present[word]; ok {
			continue
		}
		entries = append(entries, domain.Entry{
			Key:    word,
			Senses: []domain.Sense{{Word: word, Definition: overrides[word]}},
		})
		added++
	}
	return entries, added
}

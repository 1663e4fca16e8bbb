package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/heartmarshall/kodict/internal/domain"
)

// ErrNoGeneration is returned when a store root has never been published to.
var ErrNoGeneration = errors.New("store: no published generation")

// Current returns the name of the live generation under root.
func Current(root string) (string, error) {
	path := filepath.Join(root, CurrentFileName)
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w in %s", ErrNoGeneration, root)
	}
	if err != nil {
		return "", fmt.Errorf("store: read %s: %w", path, err)
	}
	name := strings.TrimSpace(string(b))
	if !validGeneration(name) {
		return "", domain.NewCorruptStoreError(path, fmt.Sprintf("invalid generation name %q", name), nil)
	}
	return name, nil
}

func validGeneration(name string) bool {
	return strings.HasPrefix(name, generationPrefix) &&
		len(name) > len(generationPrefix) &&
		!strings.ContainsAny(name, `/\`) &&
		name != "." && name != ".."
}

// Generations lists the generation directories under root, oldest first.
func Generations(root string) ([]string, error) {
	des, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("store: list generations: %w", err)
	}
	var names []string
	for _, de := range des {
		if de.IsDir() && validGeneration(de.Name()) {
			names = append(names, de.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// Prune removes all but the newest keep generations under root. The live
// generation is never removed, and keep below one is treated as one. It
// returns the names of the removed generations.
func Prune(root string, keep int) ([]string, error) {
	keep = max(keep, 1)
	live, err := Current(root)
	if err != nil {
		return nil, err
	}
	names, err := Generations(root)
	if err != nil {
		return nil, err
	}

	var removed []string
	kept := 0
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		if name == live || kept < keep {
			kept++
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, name)); err != nil {
			return removed, fmt.Errorf("store: remove %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}

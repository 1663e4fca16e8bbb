// Package reconcile places build entries into index identifier order.
package reconcile

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/heartmarshall/kodict/internal/domain"
)

// maxReportedMissing caps the identifiers named by an IncompleteIndexError.
const maxReportedMissing = 10

// KeyIndex is the part of an index the reconciler relies on.
type KeyIndex interface {
	Lookup(key string) (uint32, bool)
	Key(id uint32) (string, bool)
	Len() int
}

// Reconcile returns a table of length ix.Len() where the entry for key k sits
// at position ix.Lookup(k). Slots are filled by lookup only, so the order of
// entries does not matter.
//
// An entry whose key the index does not know yields a *domain.KeyMismatchError.
// Two entries for one slot, or an identifier outside [0, Len()), yield a
// *domain.ValidationError. Slots left empty yield a *domain.IncompleteIndexError.
func Reconcile(entries []domain.Entry, ix KeyIndex) ([]domain.Entry, error) {
	n := ix.Len()
	table := make([]domain.Entry, n)
	filled := roaring.New()

	for _, e := range entries {
		id, ok := ix.Lookup(e.Key)
		if !ok {
			return nil, &domain.KeyMismatchError{Key: e.Key}
		}
		if int64(id) >= int64(n) {
			return nil, domain.NewValidationError("id",
				fmt.Sprintf("key %q maps to id %d outside [0, %d)", e.Key, id, n))
		}
		if !filled.CheckedAdd(id) {
			return nil, domain.NewValidationError("key", fmt.Sprintf("duplicate entry for key %q", e.Key))
		}
		table[id] = e
	}

	if got := filled.GetCardinality(); got != uint64(n) {
		return nil, incomplete(filled, ix, n-int(got))
	}
	return table, nil
}

func incomplete(filled *roaring.Bitmap, ix KeyIndex, count int) *domain.IncompleteIndexError {
	missing := roaring.Flip(filled, 0, uint64(ix.Len()))
	err := &domain.IncompleteIndexError{Count: count}

	it := missing.Iterator()
	for it.HasNext() && len(err.Missing) < maxReportedMissing {
		id := it.Next()
		key, _ := ix.Key(id)
		err.Missing = append(err.Missing, id)
		err.Keys = append(err.Keys, key)
	}
	return err
}

package index

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/heartmarshall/kodict/internal/domain"
)

// maxReportedKeyErrors caps the field errors collected for one bad key set.
const maxReportedKeyErrors = 10

// Build constructs an Index over keys. The input order does not matter and
// the slice is not modified.
//
// Every key must be non-empty valid UTF-8 and unique. Violations are
// reported as a *domain.ValidationError naming the offending keys. An empty
// key set yields an empty index.
func Build(keys []string) (*Index, error) {
	if uint64(len(keys)) >= noID {
		return nil, fmt.Errorf("%w: %d", ErrTooManyKeys, len(keys))
	}

	sorted := slices.Clone(keys)
	slices.Sort(sorted)

	if err := validateSorted(sorted); err != nil {
		return nil, err
	}

	b := builder{keys: sorted}
	return b.build(), nil
}

func validateSorted(sorted []string) error {
	var errs []domain.FieldError
	for i, k := range sorted {
		if len(errs) == maxReportedKeyErrors {
			break
		}
		switch {
		case k == "":
			if i == 0 {
				errs = append(errs, domain.FieldError{Field: "key", Message: "empty key"})
			}
		case !utf8.ValidString(k):
			errs = append(errs, domain.FieldError{Field: "key", Message: fmt.Sprintf("invalid UTF-8 in key %q", k)})
		case i > 0 && sorted[i-1] == k:
			errs = append(errs, domain.FieldError{Field: "key", Message: fmt.Sprintf("duplicate key %q", k)})
		}
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// span is a run of sorted keys sharing the first depth bytes, all of which
// live below one node.
type span struct {
	lo, hi int
	depth  int
	node   uint32
}

type builder struct {
	keys []string
}

// build lays the tree out breadth-first. Spans are processed in queue order,
// which equals node order, so labels are appended in node order and
// terminal nodes receive identifiers in node order.
func (b *builder) build() *Index {
	keys := b.keys
	ix := &Index{
		nodes:  make([]node, 1, 2*len(keys)+1),
		labels: make([]byte, 0, len(keys)*4),
	}
	ix.nodes[0] = node{id: noID}

	var nextID uint32
	queue := []span{{lo: 0, hi: len(keys), depth: 0, node: 0}}
	for head := 0; head < len(queue); head++ {
		s := queue[head]
		lo := s.lo

		// The root has an empty label and is never terminal.
		end := s.depth
		if s.node != 0 {
			end = commonPrefixLen(keys[s.lo], keys[s.hi-1], s.depth)
			ix.nodes[s.node].label = uint32(len(ix.labels))
			ix.nodes[s.node].size = uint32(end - s.depth)
			ix.labels = append(ix.labels, keys[lo][s.depth:end]...)

			if len(keys[lo]) == end {
				ix.nodes[s.node].id = nextID
				nextID++
				lo++
			}
		}

		first := uint32(len(ix.nodes))
		for lo < s.hi {
			c := keys[lo][end]
			hi := lo + 1
			for hi < s.hi && keys[hi][end] == c {
				hi++
			}
			ix.nodes = append(ix.nodes, node{id: noID})
			queue = append(queue, span{lo: lo, hi: hi, depth: end, node: uint32(len(ix.nodes) - 1)})
			lo = hi
		}
		ix.nodes[s.node].first = first
		ix.nodes[s.node].count = uint32(len(ix.nodes)) - first
	}

	ix.link()
	return ix
}

// commonPrefixLen returns the length of the common prefix of a and b,
// which are known to agree on their first from bytes.
func commonPrefixLen(a, b string, from int) int {
	n := min(len(a), len(b))
	i := from
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

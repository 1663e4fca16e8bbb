package index

import (
	"iter"
	"math"
)

// noID marks a node that does not terminate a key.
const noID = math.MaxUint32

type node struct {
	label uint32 // offset of the label in Index.labels
	size  uint32 // label length in bytes; zero only for the root
	first uint32 // position of the first child
	count uint32 // number of children
	id    uint32 // key identifier, or noID
}

// Index maps a fixed set of keys to dense identifiers in [0, Len()).
//
// An Index is immutable and safe for concurrent use. Obtain one from Build or
// Decode; the zero value is an empty index.
type Index struct {
	nodes  []node
	labels []byte
	parent []uint32 // parent[i] is the parent of node i; parent[0] is 0
	terms  []uint32 // terms[id] is the terminal node of key id
}

// Stats describes the size of an index.
type Stats struct {
	Keys       int
	Nodes      int
	LabelBytes int
}

// Len returns the number of keys, N.
func (ix *Index) Len() int { return len(ix.terms) }

// Stats returns size counters of the index.
func (ix *Index) Stats() Stats {
	return Stats{Keys: len(ix.terms), Nodes: len(ix.nodes), LabelBytes: len(ix.labels)}
}

func (ix *Index) label(n uint32) []byte {
	nd := ix.nodes[n]
	return ix.labels[nd.label : nd.label+nd.size]
}

// child returns the child of n whose label starts with c.
func (ix *Index) child(n uint32, c byte) (uint32, bool) {
	nd := ix.nodes[n]
	lo, hi := nd.first, nd.first+nd.count
	for lo < hi {
		mid := lo + (hi-lo)/2
		b := ix.labels[ix.nodes[mid].label]
		switch {
		case b == c:
			return mid, true
		case b < c:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0, false
}

// Lookup returns the identifier of key. It runs in O(len(key)).
func (ix *Index) Lookup(key string) (uint32, bool) {
	if len(ix.nodes) == 0 || key == "" {
		return 0, false
	}
	n := uint32(0)
	for pos := 0; pos < len(key); {
		c, ok := ix.child(n, key[pos])
		if !ok {
			return 0, false
		}
		label := ix.label(c)
		if len(key)-pos < len(label) || key[pos:pos+len(label)] != string(label) {
			return 0, false
		}
		pos += len(label)
		n = c
	}
	id := ix.nodes[n].id
	if id == noID {
		return 0, false
	}
	return id, true
}

// Contains reports whether key is in the index.
func (ix *Index) Contains(key string) bool {
	_, ok := ix.Lookup(key)
	return ok
}

// Key returns the key with identifier id.
func (ix *Index) Key(id uint32) (string, bool) {
	if int64(id) >= int64(len(ix.terms)) {
		return "", false
	}
	n := ix.terms[id]
	size := 0
	for m := n; m != 0; m = ix.parent[m] {
		size += int(ix.nodes[m].size)
	}
	buf := make([]byte, size)
	pos := size
	for m := n; m != 0; m = ix.parent[m] {
		l := ix.label(m)
		pos -= len(l)
		copy(buf[pos:], l)
	}
	return string(buf), true
}

// All returns every (key, id) pair in lexicographic key order. The sequence
// is lazy and may be iterated any number of times.
func (ix *Index) All() iter.Seq2[string, uint32] {
	return ix.WithPrefix("")
}

// WithPrefix returns the (key, id) pairs whose key starts with prefix, in
// lexicographic key order. Nothing beyond what the caller consumes is
// visited, so breaking out of the loop early bounds the work.
func (ix *Index) WithPrefix(prefix string) iter.Seq2[string, uint32] {
	return func(yield func(string, uint32) bool) {
		if len(ix.nodes) == 0 {
			return
		}
		n, path, ok := ix.locate(prefix)
		if !ok {
			return
		}
		ix.walk(n, path, yield)
	}
}

// locate finds the shallowest node whose path starts with prefix. The
// returned path spells that node's full key path, including its label.
func (ix *Index) locate(prefix string) (uint32, []byte, bool) {
	path := make([]byte, 0, len(prefix)+16)
	n := uint32(0)
	for pos := 0; pos < len(prefix); {
		c, ok := ix.child(n, prefix[pos])
		if !ok {
			return 0, nil, false
		}
		label := ix.label(c)
		rest := prefix[pos:]
		if len(rest) <= len(label) {
			if string(label[:len(rest)]) != rest {
				return 0, nil, false
			}
			return c, append(path, label...), true
		}
		if string(label) != rest[:len(label)] {
			return 0, nil, false
		}
		path = append(path, label...)
		pos += len(label)
		n = c
	}
	return n, path, true
}

// walk yields the subtree of start in preorder. path must spell start's key
// path. Only bytes beyond a frame's depth are overwritten while its
// descendants are visited.
func (ix *Index) walk(start uint32, path []byte, yield func(string, uint32) bool) {
	type frame struct {
		node  uint32
		depth int
	}
	stack := []frame{{node: start, depth: len(path) - int(ix.nodes[start].size)}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		path = append(path[:f.depth], ix.label(f.node)...)
		nd := ix.nodes[f.node]
		if nd.id != noID && !yield(string(path), nd.id) {
			return
		}
		for i := nd.count; i > 0; i-- {
			stack = append(stack, frame{node: nd.first + i - 1, depth: len(path)})
		}
	}
}

// link fills parent and terms from nodes.
func (ix *Index) link() {
	ix.parent = make([]uint32, len(ix.nodes))
	keys := 0
	for i, nd := range ix.nodes {
		for c := nd.first; c < nd.first+nd.count; c++ {
			ix.parent[c] = uint32(i)
		}
		if nd.id != noID {
			keys++
		}
	}
	ix.terms = make([]uint32, keys)
	for i, nd := range ix.nodes {
		if nd.id != noID {
			ix.terms[nd.id] = uint32(i)
		}
	}
}

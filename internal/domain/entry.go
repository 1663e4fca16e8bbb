package domain

// Sense is one translated gloss of a headword.
type Sense struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

// Entry is a headword together with its ordered senses. It is the payload
// stored for every key of the index and the record written to the metadata
// file, one per line.
type Entry struct {
	Key    string  `json:"key"`
	Senses []Sense `json:"senses"`
}

// Keys returns the keys of entries in the given order.
func Keys(entries []Entry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

// Equal reports whether two entries carry the same key and senses.
func (e Entry) Equal(other Entry) bool {
	if e.Key != other.Key || len(e.Senses) != len(other.Senses) {
		return false
	}
	for i := range e.Senses {
		if e.Senses[i] != other.Senses[i] {
			return false
		}
	}
	return true
}

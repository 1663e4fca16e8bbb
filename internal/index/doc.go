/*
Package index implements the immutable key index of the lexical store: a
compacted radix tree over a set of unique UTF-8 keys that assigns every key a
dense identifier in [0, N).

# Shape

Nodes are kept in one flat slice in breadth-first order. Every node carries
a label (a run of key bytes stored once in a shared label pool), the position
of its first child and a child count. Children of a node are contiguous and
sorted by the first byte of their label; sibling labels never share a first
byte, so a lookup step is a binary search over at most 256 children.

A node whose path spells a whole key is terminal. Terminal nodes are numbered
in node order, which makes the identifier order breadth-first: shorter keys
and keys with short shared prefixes get small identifiers. This order is an
internal property of the tree. Callers that need to align data with the index
must go through Lookup, never through positional assumptions.

Enumeration (All, WithPrefix) walks the tree depth-first, which yields keys in
lexicographic byte order. For valid UTF-8 this is lexicographic order by code
point.

# Determinism

The tree is a pure function of the key set: Build sorts its input, so two
builds from the same keys in any presentation order are identical and encode
to identical bytes.

# Encoding

Encode writes a 16-byte header followed by the payload:

	Magic    (4 bytes) - "KDIX"
	Version  (2 bytes) - format version (currently 1)
	Flags    (2 bytes) - compression algorithm of the payload
	Checksum (4 bytes) - CRC32-IEEE of the stored payload
	Length   (4 bytes) - stored payload length in bytes

The uncompressed payload is a sequence of uvarints:

	NodeCount, KeyCount, LabelBytes, <label pool>,
	NodeCount x (LabelLen<<1 | Terminal, ChildCount)

Label offsets, child positions and identifiers are implied by node order and
are recomputed on Decode.
*/
package index

package index

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/heartmarshall/kodict/internal/compress"
)

const (
	magic         = "KDIX"
	formatVersion = uint16(1)
	headerSize    = 16

	// maxStoredPayload bounds the allocation made for a payload read from disk.
	maxStoredPayload = 1 << 31
)

// Encode writes ix to w, compressing the payload with algo. The output is a
// pure function of the key set and algo.
func (ix *Index) Encode(w io.Writer, algo compress.Algorithm) error {
	src := ix
	if len(src.nodes) == 0 {
		src = emptyIndex()
	}

	stored, err := compress.Block(algo, src.payload())
	if err != nil {
		return fmt.Errorf("compress index payload: %w", err)
	}
	if len(stored) > maxStoredPayload {
		return fmt.Errorf("index payload too large: %d bytes", len(stored))
	}

	var hdr [headerSize]byte
	copy(hdr[0:4], magic)
	binary.LittleEndian.PutUint16(hdr[4:6], formatVersion)
	binary.LittleEndian.PutUint16(hdr[6:8], uint16(algo))
	binary.LittleEndian.PutUint32(hdr[8:12], crc32.ChecksumIEEE(stored))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(len(stored)))

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write index header: %w", err)
	}
	if _, err := w.Write(stored); err != nil {
		return fmt.Errorf("write index payload: %w", err)
	}
	return nil
}

func (ix *Index) payload() []byte {
	buf := make([]byte, 0, len(ix.labels)+4*len(ix.nodes)+3*binary.MaxVarintLen64)
	buf = binary.AppendUvarint(buf, uint64(len(ix.nodes)))
	buf = binary.AppendUvarint(buf, uint64(len(ix.terms)))
	buf = binary.AppendUvarint(buf, uint64(len(ix.labels)))
	buf = append(buf, ix.labels...)
	for _, nd := range ix.nodes {
		v := uint64(nd.size) << 1
		if nd.id != noID {
			v |= 1
		}
		buf = binary.AppendUvarint(buf, v)
		buf = binary.AppendUvarint(buf, uint64(nd.count))
	}
	return buf
}

// Decode reads an index written by Encode. Structural problems are reported
// with ErrBadMagic, ErrUnsupportedVersion, ErrChecksum or ErrMalformed.
func Decode(r io.Reader) (*Index, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrMalformed, err)
	}
	if string(hdr[0:4]) != magic {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(hdr[4:6]); v != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	algo := compress.Algorithm(binary.LittleEndian.Uint16(hdr[6:8]))
	sum := binary.LittleEndian.Uint32(hdr[8:12])
	length := binary.LittleEndian.Uint32(hdr[12:16])
	if uint64(length) > maxStoredPayload {
		return nil, fmt.Errorf("%w: payload length %d", ErrMalformed, length)
	}

	stored := make([]byte, length)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, fmt.Errorf("%w: read payload: %w", ErrMalformed, err)
	}
	if crc32.ChecksumIEEE(stored) != sum {
		return nil, ErrChecksum
	}

	raw, err := compress.Unblock(algo, stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return parsePayload(raw)
}

type payloadReader struct {
	buf []byte
	off int
}

func (p *payloadReader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(p.buf[p.off:])
	if n <= 0 {
		return 0, fmt.Errorf("%w: bad varint at offset %d", ErrMalformed, p.off)
	}
	p.off += n
	return v, nil
}

func parsePayload(raw []byte) (*Index, error) {
	p := &payloadReader{buf: raw}

	nodeCount, err := p.uvarint()
	if err != nil {
		return nil, err
	}
	keyCount, err := p.uvarint()
	if err != nil {
		return nil, err
	}
	labelLen, err := p.uvarint()
	if err != nil {
		return nil, err
	}
	// Every node takes at least two payload bytes.
	if nodeCount == 0 || nodeCount > uint64(len(raw)) || keyCount >= nodeCount {
		return nil, fmt.Errorf("%w: %d nodes, %d keys", ErrMalformed, nodeCount, keyCount)
	}
	if labelLen > uint64(len(raw)-p.off) {
		return nil, fmt.Errorf("%w: label pool of %d bytes exceeds payload", ErrMalformed, labelLen)
	}

	ix := &Index{
		nodes:  make([]node, nodeCount),
		labels: raw[p.off : p.off+int(labelLen)],
	}
	p.off += int(labelLen)

	var labelOff, nextID uint64
	claimed := uint64(1)
	for i := range ix.nodes {
		v, err := p.uvarint()
		if err != nil {
			return nil, err
		}
		count, err := p.uvarint()
		if err != nil {
			return nil, err
		}
		size, terminal := v>>1, v&1 == 1

		switch {
		case i == 0 && (size != 0 || terminal):
			return nil, fmt.Errorf("%w: root must be an unlabeled non-terminal", ErrMalformed)
		case i > 0 && size == 0:
			return nil, fmt.Errorf("%w: node %d has an empty label", ErrMalformed, i)
		case i > 0 && uint64(i) >= claimed:
			return nil, fmt.Errorf("%w: node %d has no parent", ErrMalformed, i)
		case labelOff+size > labelLen:
			return nil, fmt.Errorf("%w: node %d label exceeds pool", ErrMalformed, i)
		case count > nodeCount-claimed:
			return nil, fmt.Errorf("%w: node %d claims %d children", ErrMalformed, i, count)
		case i > 0 && count == 0 && !terminal:
			return nil, fmt.Errorf("%w: node %d is a leaf without a key", ErrMalformed, i)
		}

		nd := node{
			label: uint32(labelOff),
			size:  uint32(size),
			first: uint32(claimed),
			count: uint32(count),
			id:    noID,
		}
		if terminal {
			if nextID >= keyCount {
				return nil, fmt.Errorf("%w: more terminal nodes than %d keys", ErrMalformed, keyCount)
			}
			nd.id = uint32(nextID)
			nextID++
		}
		ix.nodes[i] = nd
		labelOff += size
		claimed += count
	}

	if claimed != nodeCount || labelOff != labelLen || nextID != keyCount || p.off != len(raw) {
		return nil, fmt.Errorf("%w: inconsistent totals", ErrMalformed)
	}
	for i, nd := range ix.nodes {
		for c := nd.first + 1; c < nd.first+nd.count; c++ {
			if ix.labels[ix.nodes[c-1].label] >= ix.labels[ix.nodes[c].label] {
				return nil, fmt.Errorf("%w: children of node %d out of order", ErrMalformed, i)
			}
		}
	}

	ix.link()
	return ix, nil
}

func emptyIndex() *Index {
	ix := &Index{nodes: []node{{id: noID}}}
	ix.link()
	return ix
}

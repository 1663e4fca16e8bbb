// Package compress wraps the block and stream compression used by the
// persisted store artifacts.
package compress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Algorithm identifies a compression algorithm. Its numeric value is written
// into artifact headers, so existing values must never change.
type Algorithm uint16

const (
	// None stores data uncompressed.
	None Algorithm = 0
	// Zstd compresses with Zstandard.
	Zstd Algorithm = 1
)

// Parse converts a configuration value ("none", "zstd") into an Algorithm.
func Parse(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "zstd":
		return Zstd, nil
	default:
		return None, fmt.Errorf("unknown compression %q", s)
	}
}

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint16(a))
	}
}

// Extension returns the file name suffix used for streams written with a.
func (a Algorithm) Extension() string {
	if a == Zstd {
		return ".zst"
	}
	return ""
}

// EncodeAll and DecodeAll on a shared encoder/decoder are safe for
// concurrent use.
var (
	encoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1),
		)
	})
	decoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
)

// Block compresses src as a single block. The output is a pure function of
// src and a.
func Block(a Algorithm, src []byte) ([]byte, error) {
	switch a {
	case None:
		return src, nil
	case Zstd:
		enc, err := encoder()
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		return enc.EncodeAll(src, make([]byte, 0, len(src)/2)), nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", a)
	}
}

// Unblock reverses Block.
func Unblock(a Algorithm, src []byte) ([]byte, error) {
	switch a {
	case None:
		return src, nil
	case Zstd:
		dec, err := decoder()
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		out, err := dec.DecodeAll(src, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", a)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewWriter returns a stream writer for a. Close must be called to flush
// the stream; it does not close w.
func NewWriter(w io.Writer, a Algorithm) (io.WriteCloser, error) {
	switch a {
	case None:
		return nopWriteCloser{w}, nil
	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", a)
	}
}

// NewReader returns a stream reader for a. Close releases decoder
// resources; it does not close r.
func NewReader(r io.Reader, a Algorithm) (io.ReadCloser, error) {
	switch a {
	case None:
		return io.NopCloser(r), nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", a)
	}
}

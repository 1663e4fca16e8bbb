package index

import "errors"

var (
	// ErrBadMagic is returned when an encoded index does not start with the index magic.
	ErrBadMagic = errors.New("index: bad magic")

	// ErrUnsupportedVersion is returned for an encoded format version this package cannot read.
	ErrUnsupportedVersion = errors.New("index: unsupported format version")

	// ErrChecksum is returned when the stored payload does not match its checksum.
	ErrChecksum = errors.New("index: checksum mismatch")

	// ErrMalformed is returned when a decoded payload does not describe a valid tree.
	ErrMalformed = errors.New("index: malformed payload")

	// ErrTooManyKeys is returned when a key set does not fit 32-bit identifiers.
	ErrTooManyKeys = errors.New("index: too many keys")
)

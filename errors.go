package sframe

import "errors"

// Sentinel errors for the packet codec. All detail-carrying errors wrap
// one of these, so callers match with errors.Is.
var (
	// ErrNoData means the payload was read before it was ever set. A
	// zero-length payload that was set explicitly does not count as
	// unset and never triggers this.
	ErrNoData = errors.New("sframe: no data set on this packet")

	// ErrOverflow means a payload, after encoding, would not fit the
	// MaxDataLen capacity. The packet is left unmodified.
	ErrOverflow = errors.New("sframe: data exceeds packet capacity")

	// ErrRange means an integer value does not fit the width it was
	// asked to occupy, or the width itself is unusable.
	ErrRange = errors.New("sframe: value out of range")

	// ErrShortData means an integer was read with a width larger than
	// the stored payload.
	ErrShortData = errors.New("sframe: data too short")

	// ErrNotTerminated means Text found no NUL terminator at the end of
	// the payload.
	ErrNotTerminated = errors.New("sframe: data is not null-terminated")
)

// Package sframe implements a minimal point-to-point framing protocol
// for short binary packets over unreliable byte streams such as serial
// lines.
//
// A Packet carries three single-byte header fields (source,
// destination, type) and up to MaxDataLen bytes of payload, with typed
// accessors for little-endian integers and NUL-terminated strings. A
// Framer wraps packets in a synchronization envelope (SYN marker,
// length byte, additive checksum) and recovers them from a noisy
// stream, discarding garbage and corrupt frames until a whole valid
// one arrives.
package sframe

import (
	"encoding/binary"
	"fmt"
)

// Packet is the in-memory form of one frame: three single-byte header
// fields and up to MaxDataLen bytes of payload.
//
// The header fields are plain bytes and may be assigned directly. The
// payload sits behind accessors because it carries two invariants: its
// length can never exceed MaxDataLen, and "never set" is a state of its
// own, distinct from an explicit zero-length payload.
//
// A Packet is not safe for concurrent use.
type Packet struct {
	Source      byte
	Destination byte
	Type        byte

	data    [MaxDataLen]byte
	dataLen int
	dataSet bool
}

// New returns an empty packet: header fields zero, payload unset.
func New() *Packet {
	return &Packet{}
}

// Clear resets the packet to its initial state. The payload becomes
// unset again, so reading it before the next SetData fails with
// ErrNoData.
func (p *Packet) Clear() {
	*p = Packet{}
}

// SetData replaces the payload with a copy of b. A nil or empty slice
// is a valid zero-length payload and still marks the payload as set.
func (p *Packet) SetData(b []byte) error {
	if len(b) > MaxDataLen {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrOverflow, len(b), MaxDataLen)
	}
	copy(p.data[:], b)
	p.dataLen = len(b)
	p.dataSet = true
	return nil
}

// Data returns a copy of the payload. It fails with ErrNoData if no
// payload has been set since construction or the last Clear.
func (p *Packet) Data() ([]byte, error) {
	if !p.dataSet {
		return nil, ErrNoData
	}
	out := make([]byte, p.dataLen)
	copy(out, p.data[:p.dataLen])
	return out, nil
}

// Len reports the payload length in bytes, zero when no payload is set.
func (p *Packet) Len() int {
	return p.dataLen
}

// SetUint stores v as the payload, encoded little-endian into size
// bytes. Any width from 1 byte up to the payload capacity works, not
// just the usual ones; widths past 8 are zero-extended. v must fit the
// unsigned range of the width or SetUint fails with ErrRange naming
// the valid bounds.
func (p *Packet) SetUint(v uint64, size int) error {
	if size < 1 {
		return fmt.Errorf("%w: width %d bytes, must be at least 1", ErrRange, size)
	}
	if size < 8 {
		if max := uint64(1)<<(8*size) - 1; v > max {
			return fmt.Errorf("%w: %d does not fit %d unsigned bytes [0, %d]", ErrRange, v, size, max)
		}
	}
	b := make([]byte, size)
	if size >= 8 {
		binary.LittleEndian.PutUint64(b, v)
	} else {
		var full [8]byte
		binary.LittleEndian.PutUint64(full[:], v)
		copy(b, full[:size])
	}
	return p.SetData(b)
}

// SetInt is the signed counterpart of SetUint: two's complement,
// little-endian, size bytes wide, sign-extended past 8 bytes.
func (p *Packet) SetInt(v int64, size int) error {
	if size < 1 {
		return fmt.Errorf("%w: width %d bytes, must be at least 1", ErrRange, size)
	}
	if size < 8 {
		min := int64(-1) << (8*size - 1)
		max := int64(1)<<(8*size-1) - 1
		if v < min || v > max {
			return fmt.Errorf("%w: %d does not fit %d signed bytes [%d, %d]", ErrRange, v, size, min, max)
		}
	}
	b := make([]byte, size)
	if v < 0 {
		for i := range b {
			b[i] = 0xff
		}
	}
	var full [8]byte
	binary.LittleEndian.PutUint64(full[:], uint64(v))
	copy(b, full[:])
	return p.SetData(b)
}

// Uint decodes the first size bytes of the payload as a little-endian
// unsigned integer. It fails with ErrNoData when the payload is unset
// and with ErrShortData when fewer than size bytes are stored.
func (p *Packet) Uint(size int) (uint64, error) {
	if size < 1 || size > 8 {
		return 0, fmt.Errorf("%w: width %d bytes, must be 1 through 8", ErrRange, size)
	}
	b, err := p.payload(size)
	if err != nil {
		return 0, err
	}
	var full [8]byte
	copy(full[:], b)
	return binary.LittleEndian.Uint64(full[:]), nil
}

// Int is the signed counterpart of Uint, sign-extending the stored
// two's complement value.
func (p *Packet) Int(size int) (int64, error) {
	u, err := p.Uint(size)
	if err != nil {
		return 0, err
	}
	shift := uint(64 - 8*size)
	return int64(u<<shift) >> shift, nil
}

// payload returns the first size bytes of the payload without copying.
func (p *Packet) payload(size int) ([]byte, error) {
	if !p.dataSet {
		return nil, ErrNoData
	}
	if p.dataLen < size {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortData, size, p.dataLen)
	}
	return p.data[:size], nil
}

// Fixed-width conveniences. The setters cannot fail the range check
// (their argument types already fit) but keep the error return so that
// every payload write reads the same at the call site.

// SetUint8 stores v as a one-byte payload.
func (p *Packet) SetUint8(v uint8) error {
	return p.SetData([]byte{v})
}

// SetUint16 stores v as a two-byte little-endian payload.
func (p *Packet) SetUint16(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return p.SetData(b[:])
}

// SetUint32 stores v as a four-byte little-endian payload.
func (p *Packet) SetUint32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return p.SetData(b[:])
}

// SetUint64 stores v as an eight-byte little-endian payload.
func (p *Packet) SetUint64(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return p.SetData(b[:])
}

// SetInt8 stores v as a one-byte two's complement payload.
func (p *Packet) SetInt8(v int8) error {
	return p.SetData([]byte{byte(v)})
}

// SetInt16 stores v as a two-byte little-endian two's complement payload.
func (p *Packet) SetInt16(v int16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	return p.SetData(b[:])
}

// SetInt32 stores v as a four-byte little-endian two's complement payload.
func (p *Packet) SetInt32(v int32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	return p.SetData(b[:])
}

// SetInt64 stores v as an eight-byte little-endian two's complement payload.
func (p *Packet) SetInt64(v int64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	return p.SetData(b[:])
}

// Uint8 reads a one-byte unsigned payload integer.
func (p *Packet) Uint8() (uint8, error) {
	b, err := p.payload(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads a two-byte little-endian unsigned payload integer.
func (p *Packet) Uint16() (uint16, error) {
	b, err := p.payload(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32 reads a four-byte little-endian unsigned payload integer.
func (p *Packet) Uint32() (uint32, error) {
	b, err := p.payload(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint64 reads an eight-byte little-endian unsigned payload integer.
func (p *Packet) Uint64() (uint64, error) {
	b, err := p.payload(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Int8 reads a one-byte two's complement payload integer.
func (p *Packet) Int8() (int8, error) {
	b, err := p.payload(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// Int16 reads a two-byte little-endian two's complement payload integer.
func (p *Packet) Int16() (int16, error) {
	b, err := p.payload(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

// Int32 reads a four-byte little-endian two's complement payload integer.
func (p *Packet) Int32() (int32, error) {
	b, err := p.payload(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// Int64 reads an eight-byte little-endian two's complement payload integer.
func (p *Packet) Int64() (int64, error) {
	b, err := p.payload(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// SetChar stores a single character as a one-byte payload. The rune's
// code point must fit one unsigned byte, so anything past U+00FF fails
// with ErrRange.
func (p *Packet) SetChar(r rune) error {
	if r < 0 || r > 0xff {
		return fmt.Errorf("%w: code point %d (%q) does not fit one byte [0, 255]", ErrRange, r, r)
	}
	return p.SetData([]byte{byte(r)})
}

// SetText stores s as UTF-8 bytes followed by a single NUL terminator,
// the wire convention for strings. The encoded form, terminator
// included, must fit MaxDataLen or SetText fails with ErrOverflow.
func (p *Packet) SetText(s string) error {
	if len(s)+1 > MaxDataLen {
		return fmt.Errorf("%w: %d bytes with terminator, limit is %d", ErrOverflow, len(s)+1, MaxDataLen)
	}
	buf := make([]byte, 0, len(s)+1)
	buf = append(buf, s...)
	buf = append(buf, 0x00)
	return p.SetData(buf)
}

// Text decodes the payload as a NUL-terminated UTF-8 string, returning
// it without the terminator. It fails with ErrNotTerminated when the
// final payload byte is not NUL (a zero-length payload included).
func (p *Packet) Text() (string, error) {
	if !p.dataSet {
		return "", ErrNoData
	}
	if p.dataLen == 0 || p.data[p.dataLen-1] != 0x00 {
		return "", ErrNotTerminated
	}
	return string(p.data[:p.dataLen-1]), nil
}

package sframe

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDataRoundTrip(t *testing.T) {
	want := []byte{1, 0, 1}

	p := New()
	if err := p.SetData(want); err != nil {
		t.Fatal(err)
	}

	got, err := p.Data()
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(got, want) {
		t.Error(cmp.Diff(want, got))
	}
}

func TestDataUnset(t *testing.T) {
	p := New()
	if _, err := p.Data(); !errors.Is(err, ErrNoData) {
		t.Errorf("fresh packet: got %v, want ErrNoData", err)
	}

	if err := p.SetData([]byte{42}); err != nil {
		t.Fatal(err)
	}
	p.Clear()
	if _, err := p.Data(); !errors.Is(err, ErrNoData) {
		t.Errorf("cleared packet: got %v, want ErrNoData", err)
	}
}

func TestDataEmptyIsSet(t *testing.T) {
	p := New()
	if err := p.SetData(nil); err != nil {
		t.Fatal(err)
	}
	got, err := p.Data()
	if err != nil {
		t.Fatalf("empty payload should be readable: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestDataOverflowBoundary(t *testing.T) {
	p := New()
	if err := p.SetData(make([]byte, MaxDataLen)); err != nil {
		t.Errorf("%d bytes should fit: %v", MaxDataLen, err)
	}
	if err := p.SetData(make([]byte, MaxDataLen+1)); !errors.Is(err, ErrOverflow) {
		t.Errorf("%d bytes: got %v, want ErrOverflow", MaxDataLen+1, err)
	}
	// the failed SetData must leave the previous payload alone
	if p.Len() != MaxDataLen {
		t.Errorf("payload length changed to %d after rejected SetData", p.Len())
	}
}

func TestClearResetsHeader(t *testing.T) {
	p := New()
	p.Source = 7
	p.Destination = 8
	p.Type = 9
	p.Clear()
	if p.Source != 0 || p.Destination != 0 || p.Type != 0 {
		t.Errorf("header not cleared: %d %d %d", p.Source, p.Destination, p.Type)
	}
}

func TestUintRoundTrip(t *testing.T) {
	cases := []struct {
		value uint64
		size  int
		wire  []byte
	}{
		{0, 1, []byte{0}},
		{255, 1, []byte{255}},
		{0x0201, 2, []byte{0x01, 0x02}},
		{65535, 2, []byte{0xff, 0xff}},
		{0x04030201, 4, []byte{0x01, 0x02, 0x03, 0x04}},
		{4294967295, 4, []byte{0xff, 0xff, 0xff, 0xff}},
		{0x0807060504030201, 8, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{18446744073709551615, 8, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{0x030201, 3, []byte{0x01, 0x02, 0x03}},
	}

	for _, c := range cases {
		p := New()
		if err := p.SetUint(c.value, c.size); err != nil {
			t.Errorf("SetUint(%d, %d): %v", c.value, c.size, err)
			continue
		}
		wire, err := p.Data()
		if err != nil {
			t.Fatal(err)
		}
		if !cmp.Equal(wire, c.wire) {
			t.Errorf("SetUint(%d, %d) wire: %s", c.value, c.size, cmp.Diff(c.wire, wire))
		}
		got, err := p.Uint(c.size)
		if err != nil {
			t.Errorf("Uint(%d): %v", c.size, err)
			continue
		}
		if got != c.value {
			t.Errorf("Uint(%d) = %d, want %d", c.size, got, c.value)
		}
	}
}

func TestIntRoundTrip(t *testing.T) {
	cases := []struct {
		value int64
		size  int
		wire  []byte
	}{
		{-128, 1, []byte{0x80}},
		{127, 1, []byte{0x7f}},
		{-1, 1, []byte{0xff}},
		{-32768, 2, []byte{0x00, 0x80}},
		{32767, 2, []byte{0xff, 0x7f}},
		{-2147483648, 4, []byte{0x00, 0x00, 0x00, 0x80}},
		{2147483647, 4, []byte{0xff, 0xff, 0xff, 0x7f}},
		{-9223372036854775808, 8, []byte{0, 0, 0, 0, 0, 0, 0, 0x80}},
		{9223372036854775807, 8, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}},
	}

	for _, c := range cases {
		p := New()
		if err := p.SetInt(c.value, c.size); err != nil {
			t.Errorf("SetInt(%d, %d): %v", c.value, c.size, err)
			continue
		}
		wire, err := p.Data()
		if err != nil {
			t.Fatal(err)
		}
		if !cmp.Equal(wire, c.wire) {
			t.Errorf("SetInt(%d, %d) wire: %s", c.value, c.size, cmp.Diff(c.wire, wire))
		}
		got, err := p.Int(c.size)
		if err != nil {
			t.Errorf("Int(%d): %v", c.size, err)
			continue
		}
		if got != c.value {
			t.Errorf("Int(%d) = %d, want %d", c.size, got, c.value)
		}
	}
}

func TestUintRangeRejection(t *testing.T) {
	// one past the top of each width fails, the boundary itself passes
	for size := 1; size < 8; size++ {
		max := uint64(1)<<(8*size) - 1
		p := New()
		if err := p.SetUint(max, size); err != nil {
			t.Errorf("SetUint(%d, %d) at boundary: %v", max, size, err)
		}
		if err := p.SetUint(max+1, size); !errors.Is(err, ErrRange) {
			t.Errorf("SetUint(%d, %d): got %v, want ErrRange", max+1, size, err)
		}
	}
}

func TestIntRangeRejection(t *testing.T) {
	for size := 1; size < 8; size++ {
		min := int64(-1) << (8*size - 1)
		max := int64(1)<<(8*size-1) - 1
		p := New()
		if err := p.SetInt(min, size); err != nil {
			t.Errorf("SetInt(%d, %d) at boundary: %v", min, size, err)
		}
		if err := p.SetInt(max, size); err != nil {
			t.Errorf("SetInt(%d, %d) at boundary: %v", max, size, err)
		}
		if err := p.SetInt(min-1, size); !errors.Is(err, ErrRange) {
			t.Errorf("SetInt(%d, %d): got %v, want ErrRange", min-1, size, err)
		}
		if err := p.SetInt(max+1, size); !errors.Is(err, ErrRange) {
			t.Errorf("SetInt(%d, %d): got %v, want ErrRange", max+1, size, err)
		}
	}
}

func TestIntegerWidthValidation(t *testing.T) {
	p := New()
	for _, size := range []int{0, -1} {
		if err := p.SetUint(0, size); !errors.Is(err, ErrRange) {
			t.Errorf("SetUint width %d: got %v, want ErrRange", size, err)
		}
		if err := p.SetInt(0, size); !errors.Is(err, ErrRange) {
			t.Errorf("SetInt width %d: got %v, want ErrRange", size, err)
		}
	}
	// decoding is capped at 8 bytes, a uint64 holds no more
	for _, size := range []int{0, -1, 9} {
		if _, err := p.Uint(size); !errors.Is(err, ErrRange) {
			t.Errorf("Uint width %d: got %v, want ErrRange", size, err)
		}
	}
}

func TestIntegerWideWidths(t *testing.T) {
	// widths past 8 bytes are extended with the sign
	p := New()
	if err := p.SetUint(0x0102, 12); err != nil {
		t.Fatal(err)
	}
	wire, _ := p.Data()
	want := []byte{0x02, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	if !cmp.Equal(wire, want) {
		t.Error(cmp.Diff(want, wire))
	}

	if err := p.SetInt(-2, 10); err != nil {
		t.Fatal(err)
	}
	wire, _ = p.Data()
	want = []byte{0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	if !cmp.Equal(wire, want) {
		t.Error(cmp.Diff(want, wire))
	}
	if v, err := p.Int(8); err != nil || v != -2 {
		t.Errorf("Int(8) over a 10-byte payload = %d, %v", v, err)
	}

	// the width must still fit the payload capacity
	if err := p.SetUint(1, MaxDataLen+1); !errors.Is(err, ErrOverflow) {
		t.Errorf("got %v, want ErrOverflow", err)
	}
}

func TestIntegerShortData(t *testing.T) {
	p := New()
	if err := p.SetUint16(0x0102); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Uint(4); !errors.Is(err, ErrShortData) {
		t.Errorf("Uint(4) over 2 bytes: got %v, want ErrShortData", err)
	}
	if _, err := p.Uint32(); !errors.Is(err, ErrShortData) {
		t.Errorf("Uint32 over 2 bytes: got %v, want ErrShortData", err)
	}

	unset := New()
	if _, err := unset.Uint(1); !errors.Is(err, ErrNoData) {
		t.Errorf("Uint on unset payload: got %v, want ErrNoData", err)
	}
}

func TestFixedWidthWrappers(t *testing.T) {
	p := New()

	if err := p.SetUint32(0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	wire, _ := p.Data()
	if !bytes.Equal(wire, []byte{0xef, 0xbe, 0xad, 0xde}) {
		t.Errorf("SetUint32 wire: %x", wire)
	}
	if v, err := p.Uint32(); err != nil || v != 0xdeadbeef {
		t.Errorf("Uint32 = %d, %v", v, err)
	}

	if err := p.SetInt16(-2); err != nil {
		t.Fatal(err)
	}
	if v, err := p.Int16(); err != nil || v != -2 {
		t.Errorf("Int16 = %d, %v", v, err)
	}

	if err := p.SetUint8(200); err != nil {
		t.Fatal(err)
	}
	if v, err := p.Uint8(); err != nil || v != 200 {
		t.Errorf("Uint8 = %d, %v", v, err)
	}

	if err := p.SetInt64(-5_000_000_000); err != nil {
		t.Fatal(err)
	}
	if v, err := p.Int64(); err != nil || v != -5_000_000_000 {
		t.Errorf("Int64 = %d, %v", v, err)
	}
}

func TestSetChar(t *testing.T) {
	p := New()
	if err := p.SetChar('A'); err != nil {
		t.Fatal(err)
	}
	if v, err := p.Uint8(); err != nil || v != 65 {
		t.Errorf("got %d, %v", v, err)
	}

	// U+00FF is the last code point that fits one byte
	if err := p.SetChar('ÿ'); err != nil {
		t.Errorf("U+00FF should fit: %v", err)
	}
	if err := p.SetChar('€'); !errors.Is(err, ErrRange) {
		t.Errorf("U+20AC: got %v, want ErrRange", err)
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, s := range []string{"", "hello", "grüße, 世界"} {
		p := New()
		if err := p.SetText(s); err != nil {
			t.Fatalf("SetText(%q): %v", s, err)
		}
		if p.Len() != len(s)+1 {
			t.Errorf("SetText(%q) stored %d bytes, want %d", s, p.Len(), len(s)+1)
		}
		got, err := p.Text()
		if err != nil {
			t.Fatalf("Text after SetText(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("Text = %q, want %q", got, s)
		}
	}
}

func TestTextOverflowBoundary(t *testing.T) {
	p := New()
	longest := string(bytes.Repeat([]byte{'x'}, MaxDataLen-1))
	if err := p.SetText(longest); err != nil {
		t.Errorf("%d chars plus terminator should fit: %v", len(longest), err)
	}
	if err := p.SetText(longest + "x"); !errors.Is(err, ErrOverflow) {
		t.Errorf("got %v, want ErrOverflow", err)
	}
}

func TestTextNotTerminated(t *testing.T) {
	p := New()
	if err := p.SetData([]byte("no terminator")); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Text(); !errors.Is(err, ErrNotTerminated) {
		t.Errorf("got %v, want ErrNotTerminated", err)
	}

	if err := p.SetData(nil); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Text(); !errors.Is(err, ErrNotTerminated) {
		t.Errorf("empty payload: got %v, want ErrNotTerminated", err)
	}

	if _, err := New().Text(); !errors.Is(err, ErrNoData) {
		t.Errorf("unset payload: got %v, want ErrNoData", err)
	}
}

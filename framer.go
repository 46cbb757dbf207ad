package sframe

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Framer reads and writes packets as wire frames on a byte stream.
//
// The frame layout is
//
//	SYN  LEN  DST  SRC  TYPE  PAYLOAD...  CHECKSUM
//
// where LEN counts every byte after itself, checksum included, so the
// payload length plus 4, and CHECKSUM is the modulo-256 sum of the
// bytes between LEN and itself.
//
// Address is the station identity stamped into the source field of
// every outgoing packet. The zero value is usable and sends with
// source 0.
//
// A Framer holds no stream state, so one value can serve any number of
// streams, but two goroutines must not send on, or receive from, the
// same stream at once.
type Framer struct {
	Address byte
}

// Checksum sums b modulo 256. On the wire it covers the destination,
// source and type bytes plus the payload, everything between the
// length byte and the checksum byte itself.
func Checksum(b []byte) byte {
	var sum byte
	for _, c := range b {
		sum += c
	}
	return sum
}

// encode stamps the source field and renders p as a wire frame. It
// fails with ErrNoData when the packet has no payload set; the source
// stamp happens regardless, mirroring the field assignment order a
// caller would use.
func (f *Framer) encode(p *Packet) ([]byte, error) {
	p.Source = f.Address
	data, err := p.Data()
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(data)+6)
	frame = append(frame, SYN, byte(len(data)+minBodyLen), p.Destination, p.Source, p.Type)
	frame = append(frame, data...)
	frame = append(frame, Checksum(frame[2:]))
	return frame, nil
}

// Send frames p and writes it to w in a single Write call, so message
// oriented transports see one frame per message. The packet's source
// field is overwritten with the framer's Address. A packet with no
// payload set cannot be framed and fails with ErrNoData.
func (f *Framer) Send(w io.Writer, p *Packet) error {
	frame, err := f.encode(p)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("sframe: write frame: %w", err)
	}
	return nil
}

// SendContext is Send unless ctx is already done, in which case
// nothing is written and the context's error is returned.
func (f *Framer) SendContext(ctx context.Context, w io.Writer, p *Packet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.Send(w, p)
}

// SendTo stamps the destination and type fields on p and sends it.
// The stamps persist on the packet like any direct field assignment.
func (f *Framer) SendTo(w io.Writer, p *Packet, dst, typ byte) error {
	p.Destination = dst
	p.Type = typ
	return f.Send(w, p)
}

// SendToContext is SendTo with the cancellation check of SendContext.
func (f *Framer) SendToContext(ctx context.Context, w io.Writer, p *Packet, dst, typ byte) error {
	p.Destination = dst
	p.Type = typ
	return f.SendContext(ctx, w, p)
}

// Receive reads from r until a whole valid frame arrives and returns
// its packet. Leading garbage, false SYN markers and frames with bad
// checksums are consumed and skipped without comment. When the stream
// ends before a frame completes, Receive returns io.EOF whether the
// bytes ran out between frames or partway through one; a caller that
// sees io.EOF knows only that no whole packet arrived. Any other read
// failure is returned wrapped.
func (f *Framer) Receive(r io.Reader) (*Packet, error) {
	return receive(r.Read)
}

// ReceiveContext is Receive with cancellation between reads. The
// context is consulted before every read from r; once it is done the
// scan stops with the context's error. A Read already in flight is not
// interrupted, so responsiveness follows the granularity of the
// underlying stream.
func (f *Framer) ReceiveContext(ctx context.Context, r io.Reader) (*Packet, error) {
	return receive(func(b []byte) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return r.Read(b)
	})
}

// receive scans the stream for the next valid frame. Every rejected
// byte stays consumed: a false SYN match eats its length byte and a
// corrupt frame eats its whole body, exactly as a receiver behind a
// dumb UART would lose them.
func receive(read func([]byte) (int, error)) (*Packet, error) {
	var hdr [2]byte
	for {
		if err := readFull(read, hdr[:1]); err != nil {
			return nil, noPacket(err)
		}
		if hdr[0] != SYN {
			continue
		}

		// A SYN can be payload of unframed traffic, so the length
		// byte vouches for it: values no frame could carry mean the
		// match was false and the hunt resumes.
		if err := readFull(read, hdr[1:2]); err != nil {
			return nil, noPacket(err)
		}
		n := int(hdr[1])
		if n < minBodyLen || n > maxBodyLen {
			continue
		}

		body := make([]byte, n)
		if err := readFull(read, body); err != nil {
			return nil, noPacket(err)
		}
		if Checksum(body[:n-1]) != body[n-1] {
			continue
		}

		p := &Packet{
			Destination: body[0],
			Source:      body[1],
			Type:        body[2],
		}
		p.dataLen = n - minBodyLen
		p.dataSet = true
		copy(p.data[:], body[3:n-1])
		return p, nil
	}
}

// readFull reads len(buf) bytes with io.ReadFull semantics: a clean
// end of stream after some bytes becomes io.ErrUnexpectedEOF, before
// any bytes stays io.EOF.
func readFull(read func([]byte) (int, error), buf []byte) error {
	var n int
	var err error
	for n < len(buf) && err == nil {
		var m int
		m, err = read(buf[n:])
		n += m
	}
	switch {
	case n >= len(buf):
		return nil
	case n > 0 && errors.Is(err, io.EOF):
		return io.ErrUnexpectedEOF
	default:
		return err
	}
}

// noPacket maps a scan failure to the error Receive surfaces. A stream
// that dries up cleanly is not a fault, so both flavors of EOF come
// back as plain io.EOF. Cancellation passes through untouched for the
// caller to match against the context package. Everything else is a
// transport fault and gets wrapped.
func noPacket(err error) error {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return io.EOF
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("sframe: read frame: %w", err)
	}
}

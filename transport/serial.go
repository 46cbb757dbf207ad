// Package transport adapts concrete duplex transports to the plain
// io.Reader/io.Writer byte streams the framing layer consumes. The
// framer itself never knows what kind of stream it is scanning; all
// transport-specific setup lives here.
package transport

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// OpenSerial opens a serial port in 8N1 mode at the given baud rate.
// The returned stream delivers whatever bytes the line carries,
// noise included, which is exactly what the framer's resynchronizing
// scan is built for.
func OpenSerial(device string, baud int) (io.ReadWriteCloser, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", device, err)
	}
	return port, nil
}

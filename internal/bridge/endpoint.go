// Package bridge implements a store-nothing frame repeater: it joins
// two byte streams, runs the resynchronizing frame scan on each side
// and re-emits every recovered packet on the other, so only clean
// frames cross over.
package bridge

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/Pablu23/Sframe/transport"
)

// DefaultBaud is used for serial endpoints that do not carry a baud
// query parameter.
const DefaultBaud = 115200

// Dial opens the stream an endpoint string names. Supported forms:
//
//	serial:/dev/ttyUSB0?baud=115200
//	tcp:host:port
//	listen::port          (accept a single peer, then stop listening)
//	ws://host/path        (also wss://)
func Dial(spec string) (io.ReadWriteCloser, error) {
	if strings.HasPrefix(spec, "ws://") || strings.HasPrefix(spec, "wss://") {
		conn, _, err := websocket.DefaultDialer.Dial(spec, nil)
		if err != nil {
			return nil, fmt.Errorf("bridge: dial %s: %w", spec, err)
		}
		return transport.NewWSStream(conn), nil
	}

	scheme, rest, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, fmt.Errorf("bridge: endpoint %q has no scheme", spec)
	}

	switch scheme {
	case "serial":
		device, query, _ := strings.Cut(rest, "?")
		baud := DefaultBaud
		if query != "" {
			value, ok := strings.CutPrefix(query, "baud=")
			if !ok {
				return nil, fmt.Errorf("bridge: endpoint %q: unknown option %q", spec, query)
			}
			b, err := strconv.Atoi(value)
			if err != nil || b <= 0 {
				return nil, fmt.Errorf("bridge: endpoint %q: bad baud rate %q", spec, value)
			}
			baud = b
		}
		return transport.OpenSerial(device, baud)

	case "tcp":
		conn, err := net.Dial("tcp", rest)
		if err != nil {
			return nil, fmt.Errorf("bridge: dial %s: %w", spec, err)
		}
		return conn, nil

	case "listen":
		ln, err := net.Listen("tcp", rest)
		if err != nil {
			return nil, fmt.Errorf("bridge: listen %s: %w", spec, err)
		}
		conn, err := ln.Accept()
		ln.Close()
		if err != nil {
			return nil, fmt.Errorf("bridge: accept on %s: %w", spec, err)
		}
		return conn, nil

	default:
		return nil, fmt.Errorf("bridge: endpoint %q: unknown scheme %q", spec, scheme)
	}
}

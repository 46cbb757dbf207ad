package transport

import (
	"fmt"
	"io"

	"github.com/gorilla/websocket"
)

// WSStream presents a websocket connection as a duplex byte stream.
// Each Write becomes one binary message; Read drains the current
// incoming message and moves to the next one when it runs out, so
// message boundaries disappear and the framer sees a plain stream.
type WSStream struct {
	wsc *websocket.Conn
	r   io.Reader
}

// NewWSStream wraps an established websocket connection. The caller
// must not use conn directly afterwards.
func NewWSStream(conn *websocket.Conn) *WSStream {
	return &WSStream{wsc: conn}
}

func (s *WSStream) Read(b []byte) (int, error) {
	if s.r == nil {
		if err := s.renewReader(); err != nil {
			return 0, err
		}
	}
	n, err := s.r.Read(b)
	if err == io.EOF {
		s.r = nil
		if n == 0 {
			return s.Read(b)
		}
		return n, nil
	}
	return n, err
}

func (s *WSStream) renewReader() error {
	mt, r, err := s.wsc.NextReader()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return io.EOF
		}
		return fmt.Errorf("transport: websocket reader: %w", err)
	}
	if mt != websocket.BinaryMessage {
		return fmt.Errorf("transport: websocket: unexpected message type %d", mt)
	}
	s.r = r
	return nil
}

func (s *WSStream) Write(b []byte) (int, error) {
	w, err := s.wsc.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return 0, fmt.Errorf("transport: websocket writer: %w", err)
	}
	n, err := w.Write(b)
	if err != nil {
		return n, fmt.Errorf("transport: websocket write: %w", err)
	}
	return n, w.Close()
}

func (s *WSStream) Close() error {
	return s.wsc.Close()
}

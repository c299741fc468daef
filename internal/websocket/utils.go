package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds one frame write; a stalled client loses the
	// stream rather than stalling the writer.
	writeWait = 10 * time.Second

	// readWait is how long a client may stay silent before the session
	// ends. Clients that want to idle longer send pings.
	readWait = 5 * time.Minute
)

// WriteTyped sends one typed frame (pong, engine event, error) with the
// write deadline applied.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse frame.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON decodes the next client frame, refreshing the idle deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(readWait))
	return conn.ReadJSON(v)
}

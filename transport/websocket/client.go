package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 32
	writeTimeout = 10 * time.Second
)

// client - one connected socket with its buffered writer goroutine. All
// writes go through the send channel so the connection is written from a
// single goroutine.
type client struct {
	id   string
	conn *websocket.Conn
	send chan Message
}

func newClient(id string, conn *websocket.Conn) *client {
	return &client{
		id:   id,
		conn: conn,
		send: make(chan Message, sendBuffer),
	}
}

// writePump - drains the send channel onto the connection until the channel
// is closed.
func (that *client) writePump() {
	defer that.conn.Close()

	for message := range that.send {
		_ = that.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := that.conn.WriteJSON(message); err != nil {
			return
		}
	}

	_ = that.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

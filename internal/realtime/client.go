package realtime

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
)

const (
	sendBufferSize = 64
	writeWait      = 10 * time.Second
)

// Client is a single websocket connection. Outbound frames go through a
// bounded queue drained by one writer goroutine.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	// guarded by Hub.mu
	username string
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send queues msg for delivery. It reports false when the queue is full
// or the connection is closed; the message is dropped in both cases.
func (c *Client) Send(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Log.Warnw("websocket write failed", "error", err)
				c.conn.Close()
				return
			}
		}
	}
}

func (c *Client) close() {
	close(c.done)
	c.conn.Close()
}

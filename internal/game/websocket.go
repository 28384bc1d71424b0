package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebsocketConn adapts a websocket to the line-oriented Conn interface:
// each text message is one line of input or output.
type WebsocketConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewWebsocketConn wraps an upgraded websocket connection.
func NewWebsocketConn(conn *websocket.Conn) *WebsocketConn {
	return &WebsocketConn{conn: conn}
}

func (c *WebsocketConn) ReadLine() (string, error) {
	for {
		kind, payload, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if kind != websocket.TextMessage {
			continue
		}
		return strings.TrimRight(string(payload), "\r\n"), nil
	}
}

func (c *WebsocketConn) WriteString(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

func (c *WebsocketConn) SetWriteDeadline(deadline time.Time) error {
	return c.conn.SetWriteDeadline(deadline)
}

func (c *WebsocketConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *WebsocketConn) Close() error {
	return c.conn.Close()
}

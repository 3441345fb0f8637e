package wsrouter

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultWriteTimeout = 10 * time.Second

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Conn wraps a websocket connection so that writes from several goroutines
// are serialized. Reads are left to a single reader.
type Conn struct {
	ws           *websocket.Conn
	mu           sync.Mutex
	writeTimeout time.Duration
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ws:           ws,
		writeTimeout: defaultWriteTimeout,
	}
}

func (c *Conn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}

	return c.ws.WriteJSON(v)
}

// WriteMessage sends payload under the given message type.
func (c *Conn) WriteMessage(messageType string, payload any) error {
	if err := c.WriteJSON(&output{Type: messageType, Payload: payload}); err != nil {
		return fmt.Errorf("failed to write %s message: %w", messageType, err)
	}

	return nil
}

func (c *Conn) ReadMessage() (Message, error) {
	var msg Message
	if err := c.ws.ReadJSON(&msg); err != nil {
		return Message{}, err
	}

	return msg, nil
}

// CloseWithReason sends a close frame before closing the underlying
// connection.
func (c *Conn) CloseWithReason(code int, reason string) error {
	c.mu.Lock()
	c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(c.writeTimeout),
	)
	c.mu.Unlock()

	return c.ws.Close()
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

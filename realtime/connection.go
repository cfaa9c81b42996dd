// Package realtime carries the websocket transport: one Connection per
// session, a JSON event envelope on the wire, and the read loop dispatching
// client events onto the relay service.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"chat-relay/domain/event"
	"chat-relay/errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// envelope is the outbound wire frame. Clients switch on Event.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Connection wraps a websocket and coordinates outbound writes via a buffered
// channel. A connection is uniquely identified per session and is safe for
// concurrent use.
type Connection struct {
	id string

	ws    *websocket.Conn
	send  chan []byte
	once  sync.Once
	close chan struct{}
}

// NewConnection constructs a Connection over an upgraded websocket.
func NewConnection(ws *websocket.Conn, bufferSize int) *Connection {
	return &Connection{
		id:    uuid.NewString(),
		ws:    ws,
		send:  make(chan []byte, bufferSize),
		close: make(chan struct{}),
	}
}

func (c *Connection) ID() string { return c.id }

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Deliver encodes the event into its envelope and enqueues it for the write
// loop. Deliver never blocks: if the client is slow and the buffer is full,
// the connection is closed to keep backpressure bounded.
func (c *Connection) Deliver(_ context.Context, e event.Outbound) error {
	payload, err := json.Marshal(envelope{Event: e.Name(), Data: e})
	if err != nil {
		return err
	}
	select {
	case <-c.close:
		return errors.ErrConnectionClosed
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.ErrSendBufferFull
	}
}

// Close terminates the connection and stops the write loop.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.close)
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.close:
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				return
			}
		}
	}
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

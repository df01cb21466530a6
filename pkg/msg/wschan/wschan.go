// Package wschan carries the flowpane message protocol over WebSocket.
//
// Both ends wrap a gorilla connection in a Conn, which implements
// msg.Channel: a read pump decodes incoming frames onto the receive
// stream, a write pump serializes outgoing messages and keeps the
// connection alive with pings. WebSocket guarantees frame ordering, so
// the channel's FIFO contract comes for free.
package wschan

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/flowpane/flowpane/pkg/errors"
	"github.com/flowpane/flowpane/pkg/msg"
	"github.com/flowpane/flowpane/pkg/observability"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// pingPeriod is how often pings go out. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds incoming frames. Documents are text, so a
	// megabyte is generous.
	maxMessageSize = 1 << 20

	// sendBuffer is the outgoing queue depth per connection.
	sendBuffer = 64
)

// Conn is a msg.Channel over one WebSocket connection.
type Conn struct {
	ws     *websocket.Conn
	logger *log.Logger

	send chan msg.Message
	recv chan msg.Message

	done      chan struct{}
	closeOnce sync.Once
}

// New wraps an established WebSocket connection and starts its pumps.
// logger may be nil.
func New(ws *websocket.Conn, logger *log.Logger) *Conn {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	c := &Conn{
		ws:     ws,
		logger: logger,
		send:   make(chan msg.Message, sendBuffer),
		recv:   make(chan msg.Message, sendBuffer),
		done:   make(chan struct{}),
	}
	go c.readPump()
	go c.writePump()
	return c
}

// Dial connects to a flowpane host at url (ws:// or wss://).
func Dial(ctx context.Context, url string, logger *log.Logger) (*Conn, error) {
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeChannelClosed, err, "dial %s", url)
	}
	return New(ws, logger), nil
}

// Upgrader accepts browser and CLI peers alike; the host binds to
// loopback by default, so origin checking is delegated to deployment.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Send queues a message for the peer.
func (c *Conn) Send(ctx context.Context, m msg.Message) error {
	select {
	case <-c.done:
		return errors.New(errors.ErrCodeChannelClosed, "send %s on closed connection", m.Type)
	default:
	}

	select {
	case c.send <- m:
		observability.Channel().OnSend(ctx, string(m.Type))
		return nil
	case <-c.done:
		return errors.New(errors.ErrCodeChannelClosed, "send %s on closed connection", m.Type)
	case <-ctx.Done():
		observability.Channel().OnDrop(ctx, string(m.Type))
		return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "send %s", m.Type)
	}
}

// Receive returns the stream of messages from the peer. The stream closes
// when the connection goes down.
func (c *Conn) Receive() <-chan msg.Message {
	return c.recv
}

// Close tears down the connection. Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
	return nil
}

// readPump decodes incoming frames onto the receive stream. Malformed
// frames are logged and skipped; a read error ends the connection.
func (c *Conn) readPump() {
	defer func() {
		close(c.recv)
		c.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("connection read failed", "err", err)
			}
			return
		}

		m, err := msg.Decode(data)
		if err != nil {
			c.logger.Warn("skipping malformed frame", "err", err)
			continue
		}

		select {
		case c.recv <- m:
		case <-c.done:
			return
		}
	}
}

// writePump serializes outgoing messages and pings the peer.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case m := <-c.send:
			data, err := msg.Encode(m)
			if err != nil {
				c.logger.Warn("dropping unencodable message", "type", m.Type, "err", err)
				continue
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Ensure Conn implements msg.Channel.
var _ msg.Channel = (*Conn)(nil)

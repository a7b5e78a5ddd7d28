// Package wsclient connects to a WebSocket server and reports what happens
// on the connection as an ordered stream of events.
package wsclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrBadScheme    = errors.New(`url scheme has to be "ws" or "wss"`)
	ErrDisconnected = errors.New("disconnected")
)

const (
	eventBuffer = 64
	closeWait   = time.Second
)

type EventType int

const (
	EventConnect EventType = iota
	EventText
	EventBinary
	EventDisconnect
)

func (t EventType) String() string {
	switch t {
	case EventConnect:
		return "connect"
	case EventText:
		return "text"
	case EventBinary:
		return "binary"
	case EventDisconnect:
		return "disconnect"
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Event is one thing that happened on the connection. Text is set for
// EventText, Data for EventBinary. Err is set on EventDisconnect when the
// connection did not end with a normal close.
type Event struct {
	Type EventType
	Text string
	Data []byte
	Err  error
}

type Option func(d *websocket.Dialer)

// WithTLSConfig sets the TLS settings used for wss:// URLs, e.g. a RootCAs
// pool for a server signed by a private CA.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(d *websocket.Dialer) {
		d.TLSClientConfig = cfg
	}
}

type Client struct {
	conn   *websocket.Conn
	events chan Event
	done   chan struct{}

	writeMu      sync.Mutex
	disconnected atomic.Bool
	closeOnce    sync.Once
}

// Connect performs the handshake against a ws:// or wss:// URL. header is
// sent with the upgrade request and may be nil. Without an Origin entry the
// request carries http(s)://host of the URL.
func Connect(ctx context.Context, rawURL string, header http.Header, options ...Option) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("%w: %q", ErrBadScheme, rawURL)
	}
	header = header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if header.Get("Origin") == "" {
		header.Set("Origin", originOf(u))
	}
	dialer := *websocket.DefaultDialer
	for _, option := range options {
		option(&dialer)
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial %s: %w", u.Host, err)
	}
	c := &Client{
		conn:   conn,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
	c.events <- Event{Type: EventConnect}
	go c.read()
	return c, nil
}

func originOf(u *url.URL) string {
	if u.Scheme == "wss" {
		return "https://" + u.Host
	}
	return "http://" + u.Host
}

// Events is closed right after the EventDisconnect event. The reader stalls
// while the buffer is full, so keep draining it.
func (c *Client) Events() <-chan Event {
	return c.events
}

func (c *Client) read() {
	defer close(c.done)
	defer close(c.events)
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			c.disconnected.Store(true)
			ev := Event{Type: EventDisconnect}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ev.Err = err
			}
			c.events <- ev
			c.conn.Close()
			return
		}
		switch kind {
		case websocket.TextMessage:
			c.events <- Event{Type: EventText, Text: string(data)}
		case websocket.BinaryMessage:
			c.events <- Event{Type: EventBinary, Data: data}
		}
	}
}

func (c *Client) SendText(msg string) error {
	return c.write(websocket.TextMessage, []byte(msg))
}

func (c *Client) SendBinary(msg []byte) error {
	return c.write(websocket.BinaryMessage, msg)
}

func (c *Client) write(kind int, data []byte) error {
	if c.disconnected.Load() {
		return ErrDisconnected
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(kind, data); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Disconnect starts a normal close handshake and waits briefly for the
// server to answer before dropping the socket. Calling it again is a no-op.
func (c *Client) Disconnect() {
	c.closeOnce.Do(func() {
		c.disconnected.Store(true)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWait))
		select {
		case <-c.done:
		case <-time.After(closeWait):
		}
		c.conn.Close()
	})
}

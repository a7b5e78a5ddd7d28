package wconn

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

var ErrClientClosed = errors.New("client closed")

const (
	closeWait = time.Second
	// how long Terminate waits for queued frames before dropping the socket
	flushWait = time.Second
)

type frame struct {
	kind int
	data []byte
}

// Client is one live connection. It is OPEN from registration until its
// transport goes away, then CLOSED for good.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	id      int64
	limiter *rate.Limiter

	// mu guards send against close while a frame is queued.
	mu         sync.Mutex
	send       chan frame
	sendClosed bool

	writerDone chan struct{}
	terminated atomic.Bool
	closed     atomic.Bool
}

func newClient(hub *Hub, conn *websocket.Conn, id int64) *Client {
	c := &Client{
		hub:        hub,
		conn:       conn,
		id:         id,
		send:       make(chan frame, hub.conf.clientSendSize),
		writerDone: make(chan struct{}),
	}
	if hub.conf.breakerCap > 0 {
		c.limiter = rate.NewLimiter(rate.Every(hub.conf.breakerPeriod), hub.conf.breakerCap)
	}
	return c
}

func (c *Client) GetID() int64 {
	return c.id
}

func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Closed reports whether the connection has reached its terminal state.
func (c *Client) Closed() bool {
	return c.closed.Load()
}

// Send queues msg as a text frame.
func (c *Client) Send(msg []byte) error {
	return c.SendFrame(websocket.TextMessage, msg)
}

// SendFrame queues one frame. Frames go out in the order they were queued.
func (c *Client) SendFrame(kind int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendClosed {
		return ErrClientClosed
	}
	c.send <- frame{kind: kind, data: data}
	return nil
}

// Terminate drops the connection without a close handshake. Frames queued
// before the call get up to flushWait to go out; nothing read afterwards is
// handled.
func (c *Client) Terminate() {
	if c.terminated.Swap(true) {
		return
	}
	c.closeSend()
	go func() {
		t := time.NewTimer(flushWait)
		defer t.Stop()
		select {
		case <-c.writerDone:
		case <-t.C:
			c.hub.conf.logger.Debugln("flush timed out", "id", c.id)
			c.conn.Close()
		}
	}()
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

func (c *Client) serve() {
	if c.OnRegistered() {
		c.sendCloseMsg(websocket.ClosePolicyViolation, "regfail")
		c.closeSend()
		close(c.writerDone)
	} else {
		go c.write()
		c.read()
		c.closeSend()
		<-c.writerDone
	}
	c.conn.Close()
	c.closed.Store(true)
	c.hub.unregister(c)
	c.OnUnregistered()
}

func (c *Client) write() {
	defer close(c.writerDone)
	broken := false
	for f := range c.send {
		if broken {
			continue
		}
		if c.hub.conf.writeTimeout > 0 {
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.conf.writeTimeout))
		}
		if err := c.conn.WriteMessage(f.kind, f.data); err != nil {
			// not resent; closing unblocks the reader
			c.hub.conf.logger.Debugln("write failed", "id", c.id, "err", err)
			broken = true
			c.conn.Close()
		}
	}
}

func (c *Client) read() {
	c.conn.SetReadLimit(c.hub.conf.readLimit)
	for {
		if c.hub.conf.readTimeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.hub.conf.readTimeout))
		}
		kind, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure,
				websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				c.hub.conf.logger.Debugln("read failed", "id", c.id, "err", err)
			}
			return
		}
		if c.limiter != nil && !c.limiter.Allow() {
			c.hub.conf.logger.Println("message rate exceeded", "id", c.id)
			c.closeWith(websocket.CloseTryAgainLater, "busy")
			return
		}
		if err := c.hub.conf.handler.Response(c, kind, msg); err != nil {
			c.closeWith(websocket.CloseInternalServerErr, err.Error())
			return
		}
		if c.terminated.Load() {
			return
		}
	}
}

// closeWith queues a close frame behind the pending frames, then terminates.
func (c *Client) closeWith(code int, text string) {
	c.SendFrame(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
	c.Terminate()
}

func (c *Client) sendCloseMsg(code int, text string) {
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text),
		time.Now().Add(closeWait))
}

func (c *Client) SendHubCommand(command Command) error {
	return c.hub.SendCommand(command)
}

func (c *Client) OnRegistered() (closed bool) {
	if c.hub.conf.onClientRegistered != nil {
		closed = c.hub.conf.onClientRegistered(c)
	}
	return
}

func (c *Client) OnUnregistered() {
	if c.hub.conf.onClientUnregistered != nil {
		c.hub.conf.onClientUnregistered(c)
	}
}

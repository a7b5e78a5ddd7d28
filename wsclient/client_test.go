package wsclient

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ForeverZi/wsecho/handler"
	"github.com/ForeverZi/wsecho/log"
	"github.com/ForeverZi/wsecho/wconn"
)

func newEchoServer(t *testing.T, options ...wconn.Option) string {
	t.Helper()
	logger := log.Wrap(zap.NewNop())
	options = append([]wconn.Option{wconn.SetLogger(logger), wconn.ProtocolOption(handler.NewTermEcho(logger))}, options...)
	hub := wconn.NewHub(options...)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func connect(t *testing.T, url string, header http.Header) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Connect(ctx, url, header)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(c.Disconnect)
	return c
}

func next(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		if !ok {
			t.Fatal("events closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
	}
	return Event{}
}

func TestConnectBadScheme(t *testing.T) {
	for _, url := range []string{"http://localhost:8080/", "localhost:8080", "ftp://x/"} {
		if _, err := Connect(context.Background(), url, nil); !errors.Is(err, ErrBadScheme) {
			t.Errorf("Connect(%q) = %v, want ErrBadScheme", url, err)
		}
	}
}

func TestConnectRefused(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Connect(ctx, "ws://127.0.0.1:1/", nil); err == nil {
		t.Error("expected dial error")
	}
}

func TestEvents(t *testing.T) {
	c := connect(t, newEchoServer(t), nil)

	if ev := next(t, c); ev.Type != EventConnect {
		t.Fatalf("first event %v, want connect", ev.Type)
	}
	for _, msg := range []string{"a", "b", ""} {
		if err := c.SendText(msg); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	if err := c.SendBinary([]byte{0, 1, 2}); err != nil {
		t.Fatalf("send binary: %v", err)
	}
	for _, want := range []string{"a", "b", ""} {
		if ev := next(t, c); ev.Type != EventText || ev.Text != want {
			t.Fatalf("got %+v, want text %q", ev, want)
		}
	}
	if ev := next(t, c); ev.Type != EventBinary || string(ev.Data) != "\x00\x01\x02" {
		t.Fatalf("got %+v, want binary echo", ev)
	}

	c.Disconnect()
	ev := next(t, c)
	if ev.Type != EventDisconnect || ev.Err != nil {
		t.Fatalf("got %+v, want clean disconnect", ev)
	}
	if _, ok := <-c.Events(); ok {
		t.Error("events not closed after disconnect")
	}
	if err := c.SendText("late"); !errors.Is(err, ErrDisconnected) {
		t.Errorf("send after disconnect: %v", err)
	}
}

func TestServerTerminate(t *testing.T) {
	c := connect(t, newEchoServer(t), nil)
	next(t, c)

	if err := c.SendText(handler.TermWord); err != nil {
		t.Fatalf("send: %v", err)
	}
	ev := next(t, c)
	if ev.Type != EventDisconnect || ev.Err == nil {
		t.Fatalf("got %+v, want abnormal disconnect", ev)
	}
}

func TestExtraHeaders(t *testing.T) {
	got := make(chan string, 1)
	url := newEchoServer(t, wconn.CustomerUID(func(r *http.Request) int64 {
		got <- r.Header.Get("X-Client")
		return 1
	}))
	connect(t, url, http.Header{"X-Client": []string{"wsecho-cli"}})

	select {
	case v := <-got:
		if v != "wsecho-cli" {
			t.Errorf("X-Client = %q", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handshake header not seen")
	}
}

func TestDefaultOrigin(t *testing.T) {
	got := make(chan string, 2)
	url := newEchoServer(t, wconn.CustomerUID(func(r *http.Request) int64 {
		got <- r.Header.Get("Origin")
		return 1
	}))
	host := strings.TrimPrefix(url, "ws://")

	connect(t, url, nil)
	connect(t, url, http.Header{"Origin": []string{"https://example.com"}})

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case v := <-got:
			seen[v] = true
		case <-time.After(2 * time.Second):
			t.Fatal("handshake not seen")
		}
	}
	for _, want := range []string{"http://" + host, "https://example.com"} {
		if !seen[want] {
			t.Errorf("Origin %q not sent, saw %v", want, seen)
		}
	}
}

func TestConnectTLS(t *testing.T) {
	logger := log.Wrap(zap.NewNop())
	hub := wconn.NewHub(wconn.SetLogger(logger), wconn.ProtocolOption(handler.NewTermEcho(logger)))
	srv := httptest.NewTLSServer(hub)
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	url := "wss" + strings.TrimPrefix(srv.URL, "https")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := Connect(ctx, url, nil); err == nil {
		t.Fatal("connected to a server signed by an unknown CA")
	}

	roots := srv.Client().Transport.(*http.Transport).TLSClientConfig.RootCAs
	c, err := Connect(ctx, url, nil, WithTLSConfig(&tls.Config{RootCAs: roots}))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Disconnect()
	next(t, c)
	if err := c.SendText("secure"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if ev := next(t, c); ev.Type != EventText || ev.Text != "secure" {
		t.Fatalf("got %+v, want echo", ev)
	}
}

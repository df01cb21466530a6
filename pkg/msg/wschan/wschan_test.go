package wschan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flowpane/flowpane/pkg/msg"
)

// echoServer upgrades each request and echoes every message back.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		conn := New(ws, nil)
		go func() {
			defer conn.Close()
			for m := range conn.Receive() {
				if err := conn.Send(context.Background(), m); err != nil {
					return
				}
			}
		}()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestConnRoundTrip(t *testing.T) {
	srv := echoServer(t)

	conn, err := Dial(context.Background(), wsURL(srv), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	sent := []msg.Message{
		msg.Ready(),
		msg.Update("digraph g { build; }"),
		msg.ShowTaskDetails("build"),
		msg.Debug("hello"),
	}
	for _, m := range sent {
		if err := conn.Send(context.Background(), m); err != nil {
			t.Fatalf("Send %s: %v", m.Type, err)
		}
	}

	// Echoes come back in order.
	for i, want := range sent {
		select {
		case got, ok := <-conn.Receive():
			if !ok {
				t.Fatal("connection closed early")
			}
			if got != want {
				t.Errorf("echo %d = %+v, want %+v", i, got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for echo %d", i)
		}
	}
}

func TestConnCloseEndsReceive(t *testing.T) {
	srv := echoServer(t)

	conn, err := Dial(context.Background(), wsURL(srv), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close twice is fine.
	if err := conn.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	select {
	case _, ok := <-conn.Receive():
		if ok {
			// Buffered echoes may drain first; wait for the close.
			for range conn.Receive() {
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("receive stream not closed")
	}

	if err := conn.Send(context.Background(), msg.Ready()); err == nil {
		t.Error("Send after Close should fail")
	}
}

func TestDialFailure(t *testing.T) {
	_, err := Dial(context.Background(), "ws://127.0.0.1:1/ws", nil)
	if err == nil {
		t.Fatal("Dial to dead port should fail")
	}
}

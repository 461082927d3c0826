package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// dialTestConn stands up a server that drains incoming frames and returns a
// wrapped client connection to it.
func dialTestConn(t *testing.T) *Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			if _, _, err := c.NextReader(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	raw, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { raw.Close() })

	return NewConn(raw)
}

// A leaderboard socket is written to by the pub/sub push goroutine and by
// the read loop's pong replies at the same time. The write lock must keep
// those frames from interleaving.
func TestWriteTypedConcurrent(t *testing.T) {
	conn := dialTestConn(t)

	var wg sync.WaitGroup
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if err := conn.WriteTyped(PongResponse{Event: EventPong}); err != nil {
					t.Errorf("write failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestWriteError(t *testing.T) {
	conn := dialTestConn(t)

	if err := conn.WriteError("unknown action: bogus"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

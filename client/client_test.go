package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"team-hub/domain/event"
)

func TestClient_ReconnectDelay_Doubles_Per_Attempt(t *testing.T) {
	req := require.New(t)
	c := New(Options{URL: "ws://localhost/ws"})

	// Default schedule: 1s, 2s, 4s, 8s, 16s
	req.Equal(1*time.Second, c.ReconnectDelay(1))
	req.Equal(2*time.Second, c.ReconnectDelay(2))
	req.Equal(4*time.Second, c.ReconnectDelay(3))
	req.Equal(8*time.Second, c.ReconnectDelay(4))
	req.Equal(16*time.Second, c.ReconnectDelay(5))
}

func TestClient_ReconnectDelay_Uses_Configured_Base(t *testing.T) {
	req := require.New(t)
	c := New(Options{URL: "ws://localhost/ws", BaseDelay: 50 * time.Millisecond})

	req.Equal(50*time.Millisecond, c.ReconnectDelay(1))
	req.Equal(200*time.Millisecond, c.ReconnectDelay(3))
}

func TestClient_Send_Dropped_When_Not_Open(t *testing.T) {
	req := require.New(t)
	c := New(Options{URL: "ws://localhost/ws", Log: slog.Default()})

	// When sending before any connection exists: nothing panics
	c.Typing("some-channel")
	req.Equal(StateIdle, c.State())
}

func TestClient_On_Returns_Working_Unsubscribe(t *testing.T) {
	req := require.New(t)
	c := New(Options{URL: "ws://localhost/ws"})

	calls := 0
	off := c.On(event.TypeError, func(data json.RawMessage) { calls++ })

	c.fanOut(event.TypeError, json.RawMessage(`{"message":"boom"}`))
	req.Equal(1, calls)

	// When unsubscribed, the handler no longer fires
	off()
	c.fanOut(event.TypeError, json.RawMessage(`{"message":"boom"}`))
	req.Equal(1, calls)
}

func TestClient_Track_Maintains_Joined_Set(t *testing.T) {
	req := require.New(t)
	c := New(Options{URL: "ws://localhost/ws"})

	// When the server acknowledges a join
	c.track(event.TypeChannelJoined, json.RawMessage(`{"channelId":"c1","messages":[]}`))
	c.mu.Lock()
	_, joined := c.joined["c1"]
	c.mu.Unlock()
	req.True(joined)

	// And forgets it on the leave acknowledgment
	c.track(event.TypeChannelLeft, json.RawMessage(`{"channelId":"c1"}`))
	c.mu.Lock()
	_, joined = c.joined["c1"]
	c.mu.Unlock()
	req.False(joined)
}

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestClient_Clean_Close_Never_Reconnects(t *testing.T) {
	req := require.New(t)

	var dials atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dials.Add(1)
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		// Close cleanly right away.
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		_ = conn.Close()
	}))
	defer srv.Close()

	c := New(Options{
		URL:         wsURL(srv),
		Token:       "t",
		BaseDelay:   10 * time.Millisecond,
		MaxAttempts: 3,
		Log:         slog.Default(),
	})
	req.NoError(c.Connect(context.Background()))

	// Then the client settles on Closed without ever redialing
	require.Eventually(t, func() bool {
		return c.State() == StateClosed
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	req.Equal(int32(1), dials.Load())
}

func TestClient_Abnormal_Close_Reconnects_Then_Gives_Up(t *testing.T) {
	req := require.New(t)

	var mu sync.Mutex
	dials := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		dials++
		refuse := dials > 2
		mu.Unlock()

		// After two accepted connections the gateway goes away entirely.
		if refuse {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		// Drop the socket without a close frame: an abnormal closure.
		_ = conn.Close()
	}))
	defer srv.Close()

	c := New(Options{
		URL:         wsURL(srv),
		Token:       "t",
		BaseDelay:   10 * time.Millisecond,
		MaxAttempts: 2,
		Log:         slog.Default(),
	})
	req.NoError(c.Connect(context.Background()))

	// Then the client redials after each abnormal close and, once dialing
	// itself keeps failing, gives up after MaxAttempts
	require.Eventually(t, func() bool {
		return c.State() == StateClosed
	}, 3*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	req.GreaterOrEqual(dials, 4)
}

func TestClient_Failed_Initial_Dial_Enters_Backoff_And_Recovers(t *testing.T) {
	req := require.New(t)

	var mu sync.Mutex
	dials := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		dials++
		refuse := dials <= 2
		mu.Unlock()

		// The gateway is down for the first two dials.
		if refuse {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := New(Options{
		URL:         wsURL(srv),
		Token:       "t",
		BaseDelay:   10 * time.Millisecond,
		MaxAttempts: 3,
		Log:         slog.Default(),
	})
	err := c.Connect(context.Background())

	// The first dial fails, but the client keeps retrying instead of giving up
	req.Error(err)
	req.NotEqual(StateClosed, c.State())

	require.Eventually(t, func() bool {
		return c.State() == StateOpen
	}, 2*time.Second, 10*time.Millisecond)

	c.Disconnect()

	mu.Lock()
	defer mu.Unlock()
	req.Equal(3, dials)
}

func TestClient_Failed_Dials_Exhaust_Attempts_Then_Close(t *testing.T) {
	req := require.New(t)

	var mu sync.Mutex
	dials := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		dials++
		mu.Unlock()
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Options{
		URL:         wsURL(srv),
		Token:       "t",
		BaseDelay:   50 * time.Millisecond,
		MaxAttempts: 2,
		Log:         slog.Default(),
	})
	err := c.Connect(context.Background())
	req.Error(err)

	// During the backoff wait the state says so
	req.Equal(StateReconnecting, c.State())

	// Then, once every attempt has failed, the client closes for good
	require.Eventually(t, func() bool {
		return c.State() == StateClosed
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	req.Equal(3, dials)
}

func TestClient_Token_Survives_URL_Encoding(t *testing.T) {
	req := require.New(t)

	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.URL.Query().Get("token")
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}))
	defer srv.Close()

	// Tokens with reserved URL characters must arrive byte for byte
	token := "a+b&c=100%"
	c := New(Options{URL: wsURL(srv), Token: token, Log: slog.Default()})
	req.NoError(c.Connect(context.Background()))

	select {
	case got := <-received:
		req.Equal(token, got)
	case <-time.After(2 * time.Second):
		req.Fail("handshake never reached the server")
	}
}

func TestClient_Joined_Channels_Cleared_On_Close(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		// Acknowledge the join, then close cleanly.
		env := map[string]any{
			"type": event.TypeChannelJoined,
			"data": map[string]any{"channelId": "c1", "messages": []any{}},
		}
		_ = conn.WriteJSON(env)
		time.Sleep(50 * time.Millisecond)
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}))
	defer srv.Close()

	c := New(Options{URL: wsURL(srv), Token: "t", Log: slog.Default()})
	req.NoError(c.Connect(context.Background()))

	// The join acknowledgment lands in the joined set
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		_, ok := c.joined["c1"]
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	// After the close, membership is gone: the caller must rejoin explicitly
	require.Eventually(t, func() bool {
		return c.State() == StateClosed
	}, 2*time.Second, 10*time.Millisecond)

	c.mu.Lock()
	defer c.mu.Unlock()
	req.Empty(c.joined)
}

package signal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	router "github.com/dkeye/Parley/internal/adapters/http"
	"github.com/dkeye/Parley/internal/adapters/signal"
	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/config"
	"github.com/dkeye/Parley/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Mode:           "release",
		Secret:         "test-secret",
		SendBuffer:     32,
		WriteTimeout:   5 * time.Second,
		TypingLimit:    100,
		TypingInterval: time.Second,
	}
	orch := app.NewOrchestrator(app.NewRegistry(), app.NewRoomManager(), store.NewMemoryStore(), app.DropPolicy{})
	ctl := signal.NewChatWSController(orch, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(router.SetupRouter(ctx, cfg, orch, ctl))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server, username string) *websocket.Conn {
	t.Helper()
	return dialWithHeader(t, srv, username, nil)
}

func dialWithHeader(t *testing.T, srv *httptest.Server, username string, header http.Header) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/chat?username=" + username
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var v map[string]any
	require.NoError(t, conn.ReadJSON(&v))
	return v
}

func TestChatOverWebsocket(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	alice := dial(t, srv, "Alice")
	req.NoError(alice.WriteJSON(map[string]any{"type": "join", "room": "lobby"}))

	history := readEvent(t, alice)
	req.Equal("history", history["type"])
	req.Equal("lobby", history["room"])
	req.Empty(history["messages"])

	bob := dial(t, srv, "Bob")
	req.NoError(bob.WriteJSON(map[string]any{"type": "join", "room": "lobby"}))
	req.Equal("history", readEvent(t, bob)["type"])

	system := readEvent(t, alice)
	req.Equal("system", system["type"])
	req.Equal("Bob joined the room", system["text"])

	req.NoError(bob.WriteJSON(map[string]any{"type": "send", "room": "lobby", "message": "hi"}))
	for _, conn := range []*websocket.Conn{alice, bob} {
		msg := readEvent(t, conn)
		req.Equal("message", msg["type"])
		req.Equal("Bob", msg["username"])
		req.Equal("hi", msg["message"])
		req.Equal("lobby", msg["room"])
		req.NotEmpty(msg["timestamp"])
	}

	req.NoError(bob.WriteJSON(map[string]any{"type": "typing", "room": "lobby"}))
	typing := readEvent(t, alice)
	req.Equal("typing", typing["type"])
	req.Equal("Bob", typing["username"])
}

// Two tabs of one browser carry the same ct cookie. Each ws connection
// is its own session, so both must stay live members at once and
// closing one must not purge the other.
func TestTabsSharingClientTokenFanOutIndependently(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	header := http.Header{}
	header.Set("Cookie", "ct=shared-token")

	tab1 := dialWithHeader(t, srv, "Ana", header)
	req.NoError(tab1.WriteJSON(map[string]any{"type": "join", "room": "lobby"}))
	req.Equal("history", readEvent(t, tab1)["type"])

	tab2 := dialWithHeader(t, srv, "Ana", header)
	req.NoError(tab2.WriteJSON(map[string]any{"type": "join", "room": "lobby"}))
	req.Equal("history", readEvent(t, tab2)["type"])
	// The second tab is a distinct member, announced to the first.
	req.Equal("system", readEvent(t, tab1)["type"])

	carol := dial(t, srv, "Carol")
	req.NoError(carol.WriteJSON(map[string]any{"type": "join", "room": "lobby"}))
	req.Equal("history", readEvent(t, carol)["type"])
	req.Equal("system", readEvent(t, tab1)["type"])
	req.Equal("system", readEvent(t, tab2)["type"])

	req.NoError(carol.WriteJSON(map[string]any{"type": "send", "room": "lobby", "message": "hi all"}))
	for _, conn := range []*websocket.Conn{tab1, tab2, carol} {
		msg := readEvent(t, conn)
		req.Equal("message", msg["type"])
		req.Equal("hi all", msg["message"])
	}

	req.NoError(tab1.Close())
	left := readEvent(t, tab2)
	req.Equal("system", left["type"])
	req.Equal("Ana left the room", left["text"])
	req.Equal("system", readEvent(t, carol)["type"])

	req.NoError(carol.WriteJSON(map[string]any{"type": "send", "room": "lobby", "message": "still three of us?"}))
	msg := readEvent(t, tab2)
	req.Equal("message", msg["type"])
	req.Equal("still three of us?", msg["message"])
}

func TestEmptyMessageAnsweredToSenderOnly(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	alice := dial(t, srv, "Alice")
	req.NoError(alice.WriteJSON(map[string]any{"type": "join", "room": "lobby"}))
	req.Equal("history", readEvent(t, alice)["type"])

	req.NoError(alice.WriteJSON(map[string]any{"type": "send", "room": "lobby", "message": "   "}))
	errEvent := readEvent(t, alice)
	req.Equal("error", errEvent["type"])
	req.Equal("empty_message", errEvent["error"])
}

func TestDisconnectedClientNoLongerBreaksTheRoom(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	alice := dial(t, srv, "Alice")
	req.NoError(alice.WriteJSON(map[string]any{"type": "join", "room": "lobby"}))
	req.Equal("history", readEvent(t, alice)["type"])

	bob := dial(t, srv, "Bob")
	req.NoError(bob.WriteJSON(map[string]any{"type": "join", "room": "lobby"}))
	req.Equal("history", readEvent(t, bob)["type"])
	req.Equal("system", readEvent(t, alice)["type"])

	req.NoError(alice.Close())

	// Bob eventually observes the departure, then keeps chatting.
	left := readEvent(t, bob)
	req.Equal("system", left["type"])
	req.Equal("Alice left the room", left["text"])

	req.NoError(bob.WriteJSON(map[string]any{"type": "send", "room": "lobby", "message": "still here"}))
	msg := readEvent(t, bob)
	req.Equal("message", msg["type"])
	req.Equal("still here", msg["message"])
}

func TestPing(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	alice := dial(t, srv, "Alice")
	req.NoError(alice.WriteJSON(map[string]any{"type": "ping"}))
	req.Equal("pong", readEvent(t, alice)["type"])
}

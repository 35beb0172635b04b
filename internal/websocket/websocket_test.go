package websocket

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func register(t *testing.T, hub *Hub, clients ...*Client) {
	t.Helper()
	for _, c := range clients {
		hub.Register(c)
		assert.Eventually(t, func() bool {
			got, ok := hub.ClientByID(c.PlayerID)
			return ok && got == c
		}, time.Second, 5*time.Millisecond)
	}
}

func newClient(hub *Hub, id string, buf int) *Client {
	return &Client{PlayerID: id, Send: make(chan OutgoingMessage, buf), Hub: hub}
}

func TestHubBroadcastToPlayers(t *testing.T) {
	hub := startHub(t)
	c1 := newClient(hub, "p1", 1)
	c2 := newClient(hub, "p2", 1)
	c3 := newClient(hub, "p3", 1)
	register(t, hub, c1, c2, c3)

	msg := OutgoingMessage{
		Event: "room_update",
		Data:  map[string]any{"id": "1234"},
	}
	hub.BroadcastToPlayers([]string{"p1", "p2", "ghost"}, msg)

	assert.Equal(t, "room_update", (<-c1.Send).Event)
	assert.Equal(t, "room_update", (<-c2.Send).Event)
	select {
	case <-c3.Send:
		assert.Fail(t, "p3 was not addressed")
	default:
	}
}

func TestHubSendToPlayer(t *testing.T) {
	hub := startHub(t)
	c1 := newClient(hub, "p1", 1)
	c2 := newClient(hub, "p2", 1)
	register(t, hub, c1, c2)

	hub.SendToPlayer("p1", OutgoingMessage{Event: "hand", Data: "3♠"})

	received := <-c1.Send
	assert.Equal(t, "hand", received.Event)
	assert.Equal(t, "3♠", received.Data)

	// ensure B received nothing
	select {
	case <-c2.Send:
		assert.Fail(t, "p2 should NOT receive anything")
	default:
		// success
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := startHub(t)
	c := newClient(hub, "p1", 1)
	register(t, hub, c)

	done := make(chan struct{})
	go func() {
		hub.SendToPlayer("p1", OutgoingMessage{Event: "first"})
		hub.SendToPlayer("p1", OutgoingMessage{Event: "second"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send blocked on a full buffer")
	}
	assert.Equal(t, "first", (<-c.Send).Event)
}

func TestHubUnregisterNotifiesDisconnect(t *testing.T) {
	hub := startHub(t)
	gone := make(chan string, 1)
	hub.OnDisconnect = func(id string) { gone <- id }

	c := newClient(hub, "p1", 1)
	register(t, hub, c)

	hub.Unregister(c)
	select {
	case id := <-gone:
		assert.Equal(t, "p1", id)
	case <-time.After(time.Second):
		t.Fatal("no disconnect callback")
	}
	_, ok := hub.ClientByID("p1")
	assert.False(t, ok)

	_, open := <-c.Send
	assert.False(t, open, "send channel closed")
}

func TestHubReconnectReplacesClient(t *testing.T) {
	hub := startHub(t)
	var mu sync.Mutex
	var disconnects []string
	hub.OnDisconnect = func(id string) {
		mu.Lock()
		disconnects = append(disconnects, id)
		mu.Unlock()
	}

	old := newClient(hub, "p1", 1)
	register(t, hub, old)
	fresh := newClient(hub, "p1", 1)
	register(t, hub, fresh)

	_, open := <-old.Send
	assert.False(t, open, "old connection is closed")

	hub.Unregister(old)
	time.Sleep(20 * time.Millisecond)

	got, ok := hub.ClientByID("p1")
	require.True(t, ok)
	assert.Same(t, fresh, got)
	mu.Lock()
	assert.Empty(t, disconnects)
	mu.Unlock()
}

func TestServeWSStampsSender(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)
	incoming := make(chan IncomingMessage, 1)
	hub.OnIncoming = func(m IncomingMessage) { incoming <- m }

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("playerId", "p-42")
		c.Set("name", "Lan")
	}, ServeWS(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(gorilla.TextMessage,
		[]byte(`{"event":"pass","data":{"from":"someone-else"}}`)))

	select {
	case m := <-incoming:
		assert.Equal(t, "p-42", m.From)
		assert.Equal(t, "Lan", m.Name)
		assert.Equal(t, "pass", m.Event)
	case <-time.After(2 * time.Second):
		t.Fatal("message not dispatched")
	}

	require.Eventually(t, func() bool {
		_, ok := hub.ClientByID("p-42")
		return ok
	}, time.Second, 5*time.Millisecond)
	hub.SendToPlayer("p-42", OutgoingMessage{Event: "hello", Data: 1})
	var out OutgoingMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "hello", out.Event)
}

func TestServeWSRequiresPlayer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)
	r := gin.New()
	r.GET("/ws", ServeWS(hub))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, 401, w.Code)
}

func BenchmarkHubBroadcast(b *testing.B) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	c1 := &Client{PlayerID: "p1", Send: make(chan OutgoingMessage, 1024), Hub: hub}
	c2 := &Client{PlayerID: "p2", Send: make(chan OutgoingMessage, 1024), Hub: hub}

	go func() {
		for range c1.Send {
		}
	}()
	go func() {
		for range c2.Send {
		}
	}()

	hub.Register(c1)
	hub.Register(c2)

	b.ResetTimer()
	msg := OutgoingMessage{Event: "bench", Data: nil}

	for i := 0; i < b.N; i++ {
		hub.BroadcastToPlayers([]string{"p1", "p2"}, msg)
	}
}

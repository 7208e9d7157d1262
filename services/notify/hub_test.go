package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Serve(conn, r.URL.Query().Get("user"))
	}))
}

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHub_Broadcast(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(nopLogger{})
	srv := newTestServer(t, hub)
	defer srv.Close()

	c1 := dial(t, srv, "parent1")
	c2 := dial(t, srv, "teacher1")
	require.Eventually(t, func() bool { return hub.Len() == 2 }, time.Second, 10*time.Millisecond)

	hub.Broadcast("conversations")

	for _, conn := range []*websocket.Conn{c1, c2} {
		var evt Event
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		require.NoError(t, conn.ReadJSON(&evt))
		assert.Equal(t, Event{Type: EventChanged, Store: "conversations"}, evt)
	}

	// client leaves
	require.NoError(t, c1.Close())
	assert.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	// hub shutdown closes the remaining client
	hub.Close()
	_ = c2.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := c2.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	_ = c2.Close()
	assert.Zero(t, hub.Len())
}

func TestHub_RefusesClientsAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(nopLogger{})
	hub.Close()
	srv := newTestServer(t, hub)
	defer srv.Close()

	conn := dial(t, srv, "parent1")
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Zero(t, hub.Len())
}

package review

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmcore/internal/domain"
)

// dialPair returns both ends of a websocket connection backed by a test
// server.
func dialPair(t *testing.T) (client, server *websocket.Conn) {
	t.Helper()

	got := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		got <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case server = <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("server side of websocket never arrived")
	}
	return client, server
}

func TestHub_UnregisterIgnoresStaleConnection(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	client1, server1 := dialPair(t)
	client2, server2 := dialPair(t)

	hub.Register(1, server1)
	// reconnect: same user, new connection replaces the old one
	hub.Register(1, server2)

	// the old read goroutine notices its closed connection and unregisters;
	// that must not evict the replacement
	hub.Unregister(1, server1)

	hub.QueueChanged(&domain.ConversionRequest{ID: 7, LeadID: 3, Decision: domain.DecisionPending})

	require.NoError(t, client2.SetReadDeadline(time.Now().Add(2*time.Second)))
	var req domain.ConversionRequest
	require.NoError(t, client2.ReadJSON(&req))
	assert.Equal(t, int64(7), req.ID)

	// the first client's connection was closed on reconnect
	_ = client1.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	_, _, err := client1.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregisterRemovesOwnConnection(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	client, server := dialPair(t)
	hub.Register(1, server)
	hub.Unregister(1, server)

	hub.QueueChanged(&domain.ConversionRequest{ID: 8})

	_ = client.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)
}

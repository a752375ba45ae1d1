package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) (*Hub, string) {
	t.Helper()

	hub := NewHub(zap.NewNop().Sugar())
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.ServeWS(w, r); err != nil {
			t.Logf("upgrade failed: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForObservers(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d observers, have %d", want, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestPublishReachesAllObservers(t *testing.T) {
	hub, url := newTestHub(t)

	first := dial(t, url)
	second := dial(t, url)
	waitForObservers(t, hub, 2)

	hub.Publish(MeetingCreated, map[string]string{"agenda": "Demo"})

	for _, conn := range []*websocket.Conn{first, second} {
		env := readEnvelope(t, conn)
		require.Equal(t, MeetingCreated, env.Type)

		payload, ok := env.Payload.(map[string]any)
		require.True(t, ok)
		require.Equal(t, "Demo", payload["agenda"])
	}
}

func TestPublishWithoutObserversIsANoOp(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	go hub.Run()

	// Must neither block nor panic.
	hub.Publish(MeetingUpdated, map[string]string{"status": "cancelled"})
	require.Equal(t, 0, hub.ClientCount())
}

func TestDisconnectedObserverMissesEvents(t *testing.T) {
	hub, url := newTestHub(t)

	conn := dial(t, url)
	waitForObservers(t, hub, 1)

	conn.Close()
	waitForObservers(t, hub, 0)

	hub.Publish(MeetingDeleted, map[string]string{"id": "1"})

	late := dial(t, url)
	waitForObservers(t, hub, 1)

	// The late observer must not receive the event published before it
	// connected: there is no replay.
	late.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := late.ReadMessage()
	require.Error(t, err)
}

func TestEventOrderPreservedPerObserver(t *testing.T) {
	hub, url := newTestHub(t)

	conn := dial(t, url)
	waitForObservers(t, hub, 1)

	hub.Publish(MeetingCreated, map[string]string{"n": "1"})
	hub.Publish(MeetingUpdated, map[string]string{"n": "2"})
	hub.Publish(MeetingDeleted, map[string]string{"n": "3"})

	require.Equal(t, MeetingCreated, readEnvelope(t, conn).Type)
	require.Equal(t, MeetingUpdated, readEnvelope(t, conn).Type)
	require.Equal(t, MeetingDeleted, readEnvelope(t, conn).Type)
}

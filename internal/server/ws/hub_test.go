package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pricetrack/internal/models"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.Serve))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial hub: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Registration happens on the server goroutine; wait for it.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return envelope
}

// TestHubBroadcastsEntrySynced verifies a synced entry reaches connected
// clients as an entry.saved event.
func TestHubBroadcastsEntrySynced(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub)

	hub.EntrySynced(models.NewPriceEntry{
		ItemName: "Apples",
		Supplier: "Farm",
		Price:    2.99,
	})

	envelope := readEnvelope(t, conn)
	if envelope.Type != EventEntrySaved {
		t.Errorf("expected %s, got %s", EventEntrySaved, envelope.Type)
	}
	if envelope.Data["item_name"] != "Apples" {
		t.Errorf("expected item Apples, got %v", envelope.Data["item_name"])
	}
}

// TestHubBroadcastsDrainLifecycle verifies drain events arrive in order.
func TestHubBroadcastsDrainLifecycle(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub)

	hub.DrainStarted(2)
	hub.DrainCompleted(2)

	first := readEnvelope(t, conn)
	if first.Type != EventSyncStarted {
		t.Errorf("expected %s first, got %s", EventSyncStarted, first.Type)
	}
	second := readEnvelope(t, conn)
	if second.Type != EventSyncCompleted {
		t.Errorf("expected %s second, got %s", EventSyncCompleted, second.Type)
	}
}

// TestHubDropsDisconnectedClients verifies closed connections unregister.
func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub)

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected client to be dropped after close")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Broadcasting with no clients must not panic.
	hub.ConnectivityChanged(true)
}

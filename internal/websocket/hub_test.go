package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fairwaylabs/swinglab/pkg/models"
)

func httpHandlerFunc(hub *Hub) http.Handler {
	return http.HandlerFunc(hub.HandleWebSocket)
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(httpHandlerFunc(hub))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	waitForClients(t, hub, 1)

	hub.BroadcastReport(&models.SwingAnalysisReport{
		AnalysisID:     "a-1",
		SessionID:      "s-1",
		PredictedLabel: "on_plane",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}

	var ev struct {
		Type   string                      `json:"type"`
		Report *models.SwingAnalysisReport `json:"report"`
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Type != "swing_report" {
		t.Errorf("Expected swing_report event, got %q", ev.Type)
	}
	if ev.Report == nil || ev.Report.AnalysisID != "a-1" {
		t.Errorf("Unexpected report payload: %+v", ev.Report)
	}
}

func TestHub_SessionFilter(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(httpHandlerFunc(hub))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?session_id=mine"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	waitForClients(t, hub, 1)

	hub.BroadcastReport(&models.SwingAnalysisReport{AnalysisID: "other", SessionID: "theirs"})
	hub.BroadcastReport(&models.SwingAnalysisReport{AnalysisID: "wanted", SessionID: "mine"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}

	var ev struct {
		Report *models.SwingAnalysisReport `json:"report"`
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Report.AnalysisID != "wanted" {
		t.Errorf("Expected the session's own report, got %s", ev.Report.AnalysisID)
	}
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %d clients", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

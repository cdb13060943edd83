package observer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"kitchencraft.ai/internal/observerproto"
	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/catalogs"
	"kitchencraft.ai/internal/sim/layout"
	"kitchencraft.ai/internal/sim/tuning"
	"kitchencraft.ai/internal/sim/world"
)

func newKitchen(t *testing.T) *world.World {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatal(err)
	}
	tu, err := tuning.Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatal(err)
	}
	k, err := layout.Load("../../../configs/kitchen.yaml")
	if err != nil {
		t.Fatal(err)
	}
	w, err := world.New(world.ConfigFrom(tu, k), cats, nil)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestBootstrapHandler(t *testing.T) {
	w := newKitchen(t)
	srv := httptest.NewServer(NewServer(w, nil).BootstrapHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var b observerproto.BootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatal(err)
	}
	if b.KitchenID != "KITCHEN_1" || b.ProtocolVersion != observerproto.Version || len(b.Counters) == 0 {
		t.Fatalf("bootstrap=%+v", b)
	}

	post, err := http.Post(srv.URL, "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST status=%d", post.StatusCode)
	}
}

func TestBootstrapHandler_RejectsRemote(t *testing.T) {
	w := newKitchen(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/observer/bootstrap", nil)
	req.RemoteAddr = "203.0.113.7:4444"
	NewServer(w, nil).BootstrapHandler()(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status=%d want 403", rec.Code)
	}
}

func TestWSHandler_StreamsTicksWithEvents(t *testing.T) {
	w := newKitchen(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	srv := httptest.NewServer(NewServer(w, nil).WSHandler())
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(observerproto.SubscribeMsg{
		Type:            observerproto.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
		IncludeEvents:   true,
	}); err != nil {
		t.Fatal(err)
	}

	// Join a player once the observer is streaming so its join shows up.
	var first observerproto.TickMsg
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	w.Join() <- world.JoinRequest{Name: "alice"}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var msg observerproto.TickMsg
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read tick: %v", err)
		}
		if msg.Type != observerproto.TypeTick || msg.Tick < first.Tick {
			t.Fatalf("unexpected frame %+v", msg)
		}
		if len(msg.Joins) == 1 {
			found := false
			for _, e := range msg.Events {
				found = found || e.Type() == protocol.EventPlayerJoined
			}
			if !found || len(msg.Players) != 1 {
				t.Fatalf("join tick: events=%v players=%v", msg.Events, msg.Players)
			}
			return
		}
	}
	t.Fatalf("never saw the join tick")
}

func TestWSHandler_RequiresSubscribe(t *testing.T) {
	w := newKitchen(t)
	srv := httptest.NewServer(NewServer(w, nil).WSHandler())
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if err := conn.WriteJSON(map[string]string{"type": "HELLO", "protocol_version": observerproto.Version}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

func TestIsLoopback(t *testing.T) {
	for addr, want := range map[string]bool{
		"127.0.0.1:9000": true,
		"[::1]:9000":     true,
		"::1":            true,
		"10.0.0.4:9000":  false,
		"garbage":        false,
	} {
		if got := IsLoopback(addr); got != want {
			t.Fatalf("%s: got %v want %v", addr, got, want)
		}
	}
}

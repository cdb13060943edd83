package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/catalogs"
	"kitchencraft.ai/internal/sim/layout"
	"kitchencraft.ai/internal/sim/tuning"
	"kitchencraft.ai/internal/sim/world"
)

func startKitchen(t *testing.T) (*world.World, string) {
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
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Run(ctx) }()
	t.Cleanup(cancel)

	srv := httptest.NewServer(NewServer(w, nil).Handler())
	t.Cleanup(srv.Close)
	return w, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func hello(t *testing.T, conn *websocket.Conn, token string) protocol.WelcomeMsg {
	t.Helper()
	if err := conn.WriteJSON(protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      "alice",
		ResumeToken:     token,
	}); err != nil {
		t.Fatal(err)
	}
	var wel protocol.WelcomeMsg
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&wel); err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if wel.Type != protocol.TypeWelcome {
		t.Fatalf("expected WELCOME, got %+v", wel)
	}
	return wel
}

// readUntil reads frames until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) []byte {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		base, err := protocol.DecodeBase(b)
		if err == nil && base.Type == typ {
			return b
		}
	}
}

func TestHandler_HelloWelcomeAndState(t *testing.T) {
	_, url := startKitchen(t)
	conn := dial(t, url)
	wel := hello(t, conn, "")
	if wel.PlayerID != "P1" || wel.KitchenParams.KitchenID != "KITCHEN_1" {
		t.Fatalf("welcome: %+v", wel)
	}

	if err := conn.WriteJSON(protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Seq:             1,
		Move:            [2]float64{1, 0},
	}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var st protocol.StateMsg
		if err := json.Unmarshal(readUntil(t, conn, protocol.TypeState), &st); err != nil {
			t.Fatal(err)
		}
		if st.PlayerID != wel.PlayerID {
			t.Fatalf("state for %s", st.PlayerID)
		}
		if st.LastSeq == 1 && st.Self.Pos[0] > -2 {
			return
		}
	}
	t.Fatalf("input never applied")
}

func TestHandler_RejectsBadFramesWithAck(t *testing.T) {
	_, url := startKitchen(t)
	conn := dial(t, url)
	hello(t, conn, "")

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"INPUT","protocol_version":"0.1","seq":7,"move":[0,0]}`)); err != nil {
		t.Fatal(err)
	}
	var ack protocol.AckMsg
	if err := json.Unmarshal(readUntil(t, conn, protocol.TypeAck), &ack); err != nil {
		t.Fatal(err)
	}
	if ack.AckFor != 7 || ack.Accepted || ack.Code != protocol.ErrProtoVersion {
		t.Fatalf("ack=%+v", ack)
	}
}

func TestHandler_ResumeKeepsPlayer(t *testing.T) {
	w, url := startKitchen(t)
	first := dial(t, url)
	wel := hello(t, first, "")
	first.Close()

	second := dial(t, url)
	again := hello(t, second, wel.ResumeToken)
	if again.PlayerID != wel.PlayerID || again.ResumeToken == wel.ResumeToken {
		t.Fatalf("resume: first=%+v second=%+v", wel, again)
	}
	var st protocol.StateMsg
	if err := json.Unmarshal(readUntil(t, second, protocol.TypeState), &st); err != nil {
		t.Fatal(err)
	}
	if st.PlayerID != wel.PlayerID || len(w.PlayerIDs()) > 1 {
		t.Fatalf("state for %s, players=%v", st.PlayerID, w.PlayerIDs())
	}
}

func TestHandler_RequiresHello(t *testing.T) {
	_, url := startKitchen(t)
	conn := dial(t, url)
	if err := conn.WriteJSON(map[string]any{"type": "INPUT", "protocol_version": protocol.Version, "seq": 1}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

func TestDecodeInput(t *testing.T) {
	cases := []struct {
		in   string
		code string
	}{
		{`nope`, protocol.ErrProtoBadRequest},
		{`{"type":"HELLO","protocol_version":"1.0"}`, protocol.ErrProtoBadRequest},
		{`{"type":"INPUT","protocol_version":"1.0","seq":0,"move":[0,0]}`, protocol.ErrBadRequest},
		{`{"type":"INPUT","protocol_version":"1.0","seq":2,"move":[0,1],"interact":true}`, ""},
	}
	for _, c := range cases {
		_, code, _ := decodeInput([]byte(c.in))
		if code != c.code {
			t.Fatalf("%s: code=%q want %q", c.in, code, c.code)
		}
	}
}

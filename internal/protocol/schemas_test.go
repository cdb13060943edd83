package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"kitchencraft.ai/internal/protocol"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

// asJSON round-trips v through encoding/json so the validator sees the wire form.
func asJSON(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestSchemas_ValidateMessages(t *testing.T) {
	validate := func(schema string, v any) {
		t.Helper()
		if err := compileSchema(t, schema).Validate(asJSON(t, v)); err != nil {
			t.Fatalf("%s: %v", schema, err)
		}
	}

	validate("hello.schema.json", protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      "alice",
	})

	validate("welcome.schema.json", protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        "P1",
		ResumeToken:     "resume_0b5c",
		KitchenParams: protocol.KitchenParams{
			KitchenID:        "KITCHEN_1",
			TickRateHz:       20,
			Min:              [2]float64{-6, -4},
			Max:              [2]float64{6, 6},
			MoveSpeed:        7,
			PlayerRadius:     0.7,
			InteractDistance: 2,
		},
		Catalogs: protocol.CatalogDigests{
			ItemPalette:   protocol.DigestRef{Digest: "deadbeef", Count: 12},
			CuttingDigest: "deadbeef",
			MenuDigest:    "deadbeef",
		},
	})

	validate("input.schema.json", protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Seq:             3,
		Move:            [2]float64{0.6, -0.8},
		Interact:        true,
	})

	validate("ack.schema.json", protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          3,
		Code:            protocol.ErrStale,
		Message:         "seq already applied",
		ServerTick:      40,
	})

	validate("state.schema.json", protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            40,
		PlayerID:        "P1",
		LastSeq:         3,
		Self: protocol.SelfState{
			Pos:      [3]float64{-2, 0, 2.8},
			Moving:   true,
			Selected: "C_BREAD",
			Holding:  &protocol.ObjectState{ID: "O1", Item: "PLATE", Ingredients: []string{"BREAD"}},
		},
		Players: []protocol.PeerState{{ID: "P2", Name: "bob", Pos: [3]float64{1, 0, 1}}},
		Counters: []protocol.CounterState{
			{ID: "CUT_1", Kind: "CUTTING", Pos: [2]float64{2, 4.5}, Progress: &protocol.BarState{Fill: 0.5, Visible: true}},
			{ID: "PLATES_1", Kind: "PLATES", Pos: [2]float64{4, 4.5}, Stock: 2},
		},
		Events: []protocol.Event{{"type": protocol.EventSelectedCounterChanged, "t": 40, "counter": "C_BREAD"}},
		Score:  protocol.ScoreState{Delivered: 1},
	})
}

func TestSchemas_RejectMalformedInput(t *testing.T) {
	s := compileSchema(t, "input.schema.json")
	cases := []string{
		`{"type":"INPUT","protocol_version":"1.0","seq":1,"move":[2,0]}`,
		`{"type":"INPUT","protocol_version":"1.0","seq":1,"move":[0]}`,
		`{"type":"INPUT","protocol_version":"1.0","seq":0,"move":[0,0]}`,
		`{"type":"ACT","protocol_version":"1.0","seq":1,"move":[0,0]}`,
	}
	for _, c := range cases {
		var v any
		if err := json.Unmarshal([]byte(c), &v); err != nil {
			t.Fatal(err)
		}
		if err := s.Validate(v); err == nil {
			t.Fatalf("expected %s to be rejected", c)
		}
	}
}

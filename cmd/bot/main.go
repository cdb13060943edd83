package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"kitchencraft.ai/internal/protocol"
)

func main() {
	var (
		url    = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name   = flag.String("name", "bot", "player name")
		target = flag.String("counter", "", "counter id to walk to and use (default: the first container)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	b := &bot{target: *target}
	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME player_id=%s kitchen=%s tick_rate=%d", w.PlayerID, w.KitchenParams.KitchenID, w.KitchenParams.TickRateHz)

		case protocol.TypeAck:
			var ack protocol.AckMsg
			if err := json.Unmarshal(msg, &ack); err == nil {
				logger.Printf("ACK seq=%d code=%s %s", ack.AckFor, ack.Code, ack.Message)
			}

		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			for _, e := range st.Events {
				switch e.Type() {
				case protocol.EventInteractRejected, protocol.EventDeliverySuccess, protocol.EventDeliveryFailed:
					logger.Printf("tick=%d %v", st.Tick, e)
				}
			}
			if in, ok := b.next(&st); ok {
				_ = conn.WriteJSON(in)
			}
		}
	}
}

// bot walks to one counter and interacts with it every so often.
type bot struct {
	target string
	seq    uint64
	move   [2]float64
}

func (b *bot) next(st *protocol.StateMsg) (protocol.InputMsg, bool) {
	if b.target == "" {
		for _, c := range st.Counters {
			if c.Kind == "CONTAINER" {
				b.target = c.ID
				break
			}
		}
	}
	var goal *protocol.CounterState
	for i := range st.Counters {
		if st.Counters[i].ID == b.target {
			goal = &st.Counters[i]
		}
	}
	if goal == nil {
		return protocol.InputMsg{}, false
	}

	in := protocol.InputMsg{Type: protocol.TypeInput, ProtocolVersion: protocol.Version}
	if st.Self.Selected == goal.ID {
		in.Move = [2]float64{}
		in.Interact = st.Tick%40 == 0
	} else {
		dx := goal.Pos[0] - st.Self.Pos[0]
		dz := goal.Pos[1] - st.Self.Pos[2]
		if l := math.Hypot(dx, dz); l > 1e-6 {
			in.Move = [2]float64{dx / l, dz / l}
		}
	}
	if in.Move == b.move && !in.Interact {
		return protocol.InputMsg{}, false
	}
	b.seq++
	in.Seq = b.seq
	b.move = in.Move
	return in, true
}

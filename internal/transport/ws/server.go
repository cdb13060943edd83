package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/world"
)

const outQueue = 16

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		playerID, out := s.handshake(conn)
		if playerID == "" {
			return
		}
		s.log.Printf("player %s connected from %s", playerID, r.RemoteAddr)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			in, code, reason := decodeInput(msg)
			if code != "" {
				reject(out, in.Seq, code, reason, s.world.CurrentTick())
				continue
			}
			s.world.Inbox() <- world.InputEnvelope{PlayerID: playerID, Input: in}
		}

		// The player stays resumable until the world expires it.
		s.world.Detach() <- world.DetachRequest{PlayerID: playerID, Out: out}
		s.log.Printf("player %s disconnected", playerID)
	}
}

// decodeInput parses one client frame. A non-empty code means the frame was
// rejected before reaching the world.
func decodeInput(msg []byte) (protocol.InputMsg, string, string) {
	var in protocol.InputMsg
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return in, protocol.ErrProtoBadRequest, "malformed json"
	}
	if base.Type != protocol.TypeInput {
		return in, protocol.ErrProtoBadRequest, "unexpected message type " + base.Type
	}
	if err := json.Unmarshal(msg, &in); err != nil {
		return in, protocol.ErrProtoBadRequest, "bad INPUT"
	}
	if !protocol.SupportsVersion(in.ProtocolVersion) {
		return in, protocol.ErrProtoVersion, "unsupported protocol_version"
	}
	if in.Seq == 0 {
		return in, protocol.ErrBadRequest, "seq must be positive"
	}
	return in, "", ""
}

// reject queues an ACK without blocking the reader.
func reject(out chan []byte, seq uint64, code, reason string, tick uint64) {
	b, err := json.Marshal(protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          seq,
		Code:            code,
		Message:         reason,
		ServerTick:      tick,
	})
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func (s *Server) handshake(conn *websocket.Conn) (playerID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, websocket.ClosePolicyViolation, "expected HELLO")
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		closeWith(conn, websocket.ClosePolicyViolation, "bad HELLO")
		return "", nil
	}
	if !negotiate(hello) {
		closeWith(conn, websocket.ClosePolicyViolation, "bad protocol_version")
		return "", nil
	}

	out = make(chan []byte, outQueue)

	var resp world.JoinResponse
	if token := strings.TrimSpace(hello.ResumeToken); token != "" {
		respCh := make(chan world.JoinResponse, 1)
		s.world.Attach() <- world.AttachRequest{ResumeToken: token, Out: out, Resp: respCh}
		resp = <-respCh
	}
	if resp.Welcome.PlayerID == "" {
		// Fresh join.
		respCh := make(chan world.JoinResponse, 1)
		s.world.Join() <- world.JoinRequest{Name: hello.PlayerName, Out: out, Resp: respCh}
		resp = <-respCh
	}
	if resp.Code != "" {
		_ = writeJSON(conn, protocol.AckMsg{
			Type:            protocol.TypeAck,
			ProtocolVersion: protocol.Version,
			Code:            resp.Code,
			Message:         resp.Message,
		})
		closeWith(conn, websocket.CloseTryAgainLater, resp.Message)
		return "", nil
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		return "", nil
	}
	return resp.Welcome.PlayerID, out
}

func negotiate(h protocol.HelloMsg) bool {
	if protocol.SupportsVersion(h.ProtocolVersion) {
		return true
	}
	for _, v := range h.SupportedVersions {
		if protocol.SupportsVersion(v) {
			return true
		}
	}
	return false
}

func closeWith(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

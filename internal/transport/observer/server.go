package observer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"kitchencraft.ai/internal/observerproto"
	"kitchencraft.ai/internal/sim/world"
)

const (
	subscribeTimeout = 5 * time.Second
	idleTimeout      = 60 * time.Second
	writeTimeout     = 5 * time.Second
	tickBuffer       = 8
)

// Server streams kitchen TICK frames to read-only spectators on loopback.
type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
	sessions atomic.Uint64
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// LoopbackOnly rejects requests that do not originate from this host.
func LoopbackOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !IsLoopback(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		next(rw, r)
	}
}

// IsLoopback reports whether a host:port (or bare host) is a loopback address.
func IsLoopback(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return LoopbackOnly(func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.Header().Set("Allow", http.MethodGet)
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(rw).Encode(s.world.Bootstrap()); err != nil {
			s.log.Printf("bootstrap: %v", err)
		}
	})
}

func (s *Server) WSHandler() http.HandlerFunc {
	return LoopbackOnly(func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sub, err := readSubscribe(conn)
		if err != nil {
			closeWith(conn, websocket.ClosePolicyViolation, err.Error())
			return
		}

		sid := fmt.Sprintf("O%d", s.sessions.Add(1))
		ticks := make(chan []byte, tickBuffer)
		select {
		case s.world.ObserverJoin() <- world.ObserverJoinRequest{SessionID: sid, TickOut: ticks, IncludeEvents: sub.IncludeEvents}:
		default:
			closeWith(conn, websocket.CloseTryAgainLater, "kitchen busy")
			return
		}
		s.log.Printf("observer %s subscribed events=%v", sid, sub.IncludeEvents)

		stop, done := make(chan struct{}), make(chan struct{})
		go func() {
			defer close(done)
			forward(conn, ticks, stop)
		}()

		drain(conn)
		close(stop)

		select {
		case s.world.ObserverLeave() <- sid:
		default:
		}
		closeWith(conn, websocket.CloseNormalClosure, "bye")
		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
		}
		s.log.Printf("observer %s gone", sid)
	})
}

func readSubscribe(conn *websocket.Conn) (observerproto.SubscribeMsg, error) {
	var sub observerproto.SubscribeMsg
	_ = conn.SetReadDeadline(time.Now().Add(subscribeTimeout))
	_, b, err := conn.ReadMessage()
	if err != nil {
		return sub, err
	}
	if err := json.Unmarshal(b, &sub); err != nil {
		return sub, errors.New("bad subscribe")
	}
	if sub.Type != observerproto.TypeSubscribe || sub.ProtocolVersion != observerproto.Version {
		return sub, errors.New("expected SUBSCRIBE")
	}
	return sub, nil
}

// forward copies frames until stop, the world closing ticks, or a failed write.
func forward(conn *websocket.Conn, ticks <-chan []byte, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case b, ok := <-ticks:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}

// drain discards client frames until the connection closes or idles out.
func drain(conn *websocket.Conn) {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(idleTimeout))
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func closeWith(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
}

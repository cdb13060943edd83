package world

import (
	"fmt"
	"io"
	"log"
	"sort"
	"sync/atomic"

	"kitchencraft.ai/internal/persistence/snapshot"
	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/catalogs"
	"kitchencraft.ai/internal/sim/world/feature/counters"
	"kitchencraft.ai/internal/sim/world/feature/entities/objects"
	"kitchencraft.ai/internal/sim/world/feature/progress"
	"kitchencraft.ai/internal/sim/world/logic/ids"
	"kitchencraft.ai/internal/sim/world/logic/physics"
)

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type AttachRequest struct {
	ResumeToken string
	Out         chan []byte
	Resp        chan JoinResponse
}

// JoinResponse carries the WELCOME, or a protocol error code when the join was refused.
// DetachRequest reports a dropped connection. Out identifies the connection so
// a late detach cannot drop a newer resumed one.
type DetachRequest struct {
	PlayerID string
	Out      chan []byte
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
	Code    string
	Message string
}

type InputEnvelope struct {
	PlayerID string
	Input    protocol.InputMsg
}

type RecordedJoin struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

type RecordedInput struct {
	PlayerID string            `json:"player_id"`
	Input    protocol.InputMsg `json:"input"`
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type TickLogEntry struct {
	Tick   uint64          `json:"tick"`
	Joins  []RecordedJoin  `json:"joins,omitempty"`
	Leaves []string        `json:"leaves,omitempty"`
	Inputs []RecordedInput `json:"inputs,omitempty"`
	Digest string          `json:"digest"`
}

type AuditEntry struct {
	Tick    uint64 `json:"tick"`
	Actor   string `json:"actor"`
	Action  string `json:"action"` // e.g. "INTERACT", "DELIVER"
	Counter string `json:"counter,omitempty"`
	Item    string `json:"item,omitempty"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type clientState struct {
	Out chan []byte
}

// World is a single-threaded authoritative kitchen simulation.
type World struct {
	cfg      KitchenConfig
	catalogs *catalogs.Catalogs
	logger   *log.Logger

	tick atomic.Uint64

	space    *physics.Space
	objects  *objects.Registry
	counters []counters.Counter
	byID     map[string]counters.Counter
	bars     map[string]*progress.Bar

	players map[string]*playerEntry
	order   []string
	clients map[string]*clientState
	// detached maps players without a connection to the tick they lost it.
	detached map[string]uint64

	nextPlayer uint64
	delivered  int
	failed     int

	// Per-tick buffers.
	events []protocol.Event
	audits []AuditEntry
	// quiet drops events raised while the kitchen is being built or restored.
	quiet bool

	inbox  chan InputEnvelope
	join   chan JoinRequest
	attach chan AttachRequest
	leave  chan string
	detach chan DetachRequest
	stop   chan struct{}

	observerJoin  chan ObserverJoinRequest
	observerLeave chan string
	observers     map[string]*observerClient

	// Optional loggers (may be nil). Implemented in internal/persistence/*.
	tickLogger  TickLogger
	auditLogger AuditLogger

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.SnapshotV1

	metrics atomic.Value // KitchenMetrics
}

func New(cfg KitchenConfig, cats *catalogs.Catalogs, logger *log.Logger) (*World, error) {
	if cats == nil {
		return nil, fmt.Errorf("world: nil catalogs")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	cfg.applyDefaults()

	w := &World{
		cfg:           cfg,
		catalogs:      cats,
		logger:        logger,
		objects:       objects.NewRegistry(cats),
		byID:          map[string]counters.Counter{},
		bars:          map[string]*progress.Bar{},
		players:       map[string]*playerEntry{},
		clients:       map[string]*clientState{},
		detached:      map[string]uint64{},
		nextPlayer:    1,
		inbox:         make(chan InputEnvelope, 1024),
		join:          make(chan JoinRequest, 64),
		attach:        make(chan AttachRequest, 64),
		leave:         make(chan string, 64),
		detach:        make(chan DetachRequest, 64),
		stop:          make(chan struct{}),
		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerLeave: make(chan string, 16),
		observers:     map[string]*observerClient{},
	}
	if err := w.buildKitchen(); err != nil {
		return nil, err
	}
	w.objects.OnChange(w.onObjectChange)
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger)                    { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger)                  { w.auditLogger = l }
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) Inbox() chan<- InputEnvelope  { return w.inbox }
func (w *World) Join() chan<- JoinRequest     { return w.join }
func (w *World) Attach() chan<- AttachRequest { return w.attach }
func (w *World) Leave() chan<- string         { return w.leave }
func (w *World) Detach() chan<- DetachRequest { return w.detach }

func (w *World) ObserverJoin() chan<- ObserverJoinRequest { return w.observerJoin }
func (w *World) ObserverLeave() chan<- string             { return w.observerLeave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) Config() KitchenConfig {
	if w == nil {
		return KitchenConfig{}
	}
	return w.cfg
}

func (w *World) Catalogs() *catalogs.Catalogs { return w.catalogs }
func (w *World) Objects() *objects.Registry   { return w.objects }

func (w *World) ItemPalette() []string {
	if w == nil || w.catalogs == nil {
		return nil
	}
	return append([]string(nil), w.catalogs.Items.Palette...)
}

// Counter returns the counter with id, or nil.
func (w *World) Counter(id string) counters.Counter { return w.byID[id] }

// Bar returns the progress bar attached to a counter, or nil.
func (w *World) Bar(counterID string) *progress.Bar { return w.bars[counterID] }

// PlayerIDs returns current player ids in simulation order.
func (w *World) PlayerIDs() []string { return append([]string(nil), w.order...) }

func (w *World) sortPlayers() {
	sort.Slice(w.order, func(i, j int) bool {
		a, _ := ids.ParseUintAfterPrefix(ids.PlayerPrefix, w.order[i])
		b, _ := ids.ParseUintAfterPrefix(ids.PlayerPrefix, w.order[j])
		return a < b
	})
}

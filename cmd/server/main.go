package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	persistlog "kitchencraft.ai/internal/persistence/log"
	"kitchencraft.ai/internal/persistence/snapshot"
	"kitchencraft.ai/internal/sim/catalogs"
	"kitchencraft.ai/internal/sim/layout"
	"kitchencraft.ai/internal/sim/tuning"
	"kitchencraft.ai/internal/sim/world"
	"kitchencraft.ai/internal/transport/observer"
	"kitchencraft.ai/internal/transport/ws"
)

type options struct {
	addr       string
	configDir  string
	dataDir    string
	tuningPath string
	layoutPath string
	maxPlayers int
	disableDB  bool
	snapPath   string
	loadLatest bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.addr, "addr", ":8080", "http listen address")
	flag.StringVar(&o.configDir, "configs", "./configs", "directory holding catalogs, tuning.yaml and kitchen.yaml")
	flag.StringVar(&o.dataDir, "data", "./data", "runtime data directory (tick logs, snapshots, index)")
	flag.StringVar(&o.tuningPath, "tuning", "", "tuning.yaml override (default: <configs>/tuning.yaml)")
	flag.StringVar(&o.layoutPath, "kitchen", "", "kitchen.yaml override (default: <configs>/kitchen.yaml)")
	flag.IntVar(&o.maxPlayers, "max_players", 4, "maximum cooks in the kitchen")
	flag.BoolVar(&o.disableDB, "disable_db", false, "run without the sqlite read index")
	flag.StringVar(&o.snapPath, "snapshot", "", "snapshot to resume from")
	flag.BoolVar(&o.loadLatest, "load_latest_snapshot", true, "resume from the newest snapshot in the data dir when -snapshot is empty")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)
	if err := run(opts, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(opts options, logger *log.Logger) error {
	cats, err := catalogs.Load(opts.configDir)
	if err != nil {
		return fmt.Errorf("load catalogs: %w", err)
	}
	tune, err := tuning.Load(orDefault(opts.tuningPath, filepath.Join(opts.configDir, "tuning.yaml")))
	if err != nil {
		return fmt.Errorf("load tuning: %w", err)
	}
	kitchen, err := layout.Load(orDefault(opts.layoutPath, filepath.Join(opts.configDir, "kitchen.yaml")))
	if err != nil {
		return fmt.Errorf("load kitchen: %w", err)
	}

	kitchenDir := filepath.Join(opts.dataDir, "kitchens", kitchen.ID)
	if err := os.MkdirAll(kitchenDir, 0o755); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}

	// The index is a read model; the simulation never reads from it.
	idx, err := openRuntimeIndex(kitchenDir, opts.disableDB)
	if err != nil {
		return fmt.Errorf("open index backend: %w", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertCatalogs(opts.configDir, cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
	}

	cfg := world.ConfigFrom(tune, kitchen)
	cfg.MaxPlayers = opts.maxPlayers

	resumeFrom := strings.TrimSpace(opts.snapPath)
	if resumeFrom == "" && opts.loadLatest {
		resumeFrom = latestSnapshot(kitchenDir)
	}
	var snap *snapshot.SnapshotV1
	if resumeFrom != "" {
		s, err := snapshot.ReadSnapshot(resumeFrom)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		// Replays must tick at the rate the snapshot was taken at.
		if s.TickRate > 0 {
			cfg.TickRateHz = s.TickRate
		}
		snap = &s
	}

	w, err := world.New(cfg, cats, log.New(os.Stdout, "[kitchen] ", log.LstdFlags|log.Lmicroseconds))
	if err != nil {
		return fmt.Errorf("kitchen: %w", err)
	}
	if snap != nil {
		if err := w.ImportSnapshot(*snap); err != nil {
			return fmt.Errorf("import snapshot: %w", err)
		}
		logger.Printf("resumed %s at tick %d", filepath.Base(resumeFrom), w.CurrentTick())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tickLog := persistlog.NewTickLogger(kitchenDir)
	auditLog := persistlog.NewAuditLogger(kitchenDir)
	defer tickLog.Close()
	defer auditLog.Close()
	ticks := teeTickLogger{tickLog}
	audits := teeAuditLogger{auditLog}
	if idx != nil {
		ticks = append(ticks, idx)
		audits = append(audits, idx)
	}
	w.SetTickLogger(ticks)
	w.SetAuditLogger(audits)

	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	go writeSnapshots(ctx, kitchenDir, snapCh, idx, logger)

	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("kitchen stopped: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newMux(w, idx, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("kitchen %s listening on %s", w.ID(), opts.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newMux(w *world.World, idx runtimeIndex, logger *log.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", metricsHandler(w, idx))
	mux.HandleFunc("/admin/v1/state", observer.LoopbackOnly(adminState(w, idx)))

	obs := observer.NewServer(w, logger)
	mux.HandleFunc("/v1/observer/bootstrap", obs.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", obs.WSHandler())
	mux.HandleFunc("/v1/ws", ws.NewServer(w, logger).Handler())
	return mux
}

type adminStateResponse struct {
	KitchenID string               `json:"kitchen_id"`
	Tick      uint64               `json:"tick"`
	Metrics   world.KitchenMetrics `json:"metrics"`
	Index     any                  `json:"index,omitempty"`
}

func adminState(w *world.World, idx runtimeIndex) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		resp := adminStateResponse{KitchenID: w.ID(), Tick: w.CurrentTick(), Metrics: w.Metrics()}
		if idx != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if sum, err := idx.Summary(ctx); err == nil {
				resp.Index = sum
			}
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// teeTickLogger fans tick entries out; a failing sink never stops the others.
type teeTickLogger []world.TickLogger

func (t teeTickLogger) WriteTick(entry world.TickLogEntry) error {
	var errs []error
	for _, l := range t {
		if err := l.WriteTick(entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type teeAuditLogger []world.AuditLogger

func (t teeAuditLogger) WriteAudit(entry world.AuditEntry) error {
	var errs []error
	for _, l := range t {
		if err := l.WriteAudit(entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package main

import (
	"fmt"
	"net/http"

	"kitchencraft.ai/internal/sim/world"
)

// metricsHandler writes a minimal Prometheus exposition of the kitchen metrics.
func metricsHandler(w *world.World, idx runtimeIndex) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		id := w.ID()
		m := w.Metrics()
		tick := w.CurrentTick()
		if m.Tick != 0 {
			tick = m.Tick
		}

		gauge := func(name, help string, v any) {
			fmt.Fprintf(rw, "# HELP %s %s\n", name, help)
			fmt.Fprintf(rw, "# TYPE %s gauge\n", name)
			fmt.Fprintf(rw, "%s{kitchen=%q} %v\n", name, id, v)
		}
		gauge("kitchencraft_tick", "Current kitchen tick.", tick)
		gauge("kitchencraft_players", "Players in the kitchen.", m.Players)
		gauge("kitchencraft_clients", "Connected player clients.", m.Clients)
		gauge("kitchencraft_observers", "Connected observers.", m.Observers)
		gauge("kitchencraft_objects", "Live kitchen objects.", m.Objects)
		gauge("kitchencraft_deliveries", "Successful deliveries.", m.Delivered)
		gauge("kitchencraft_deliveries_failed", "Rejected deliveries.", m.Failed)
		gauge("kitchencraft_step_ms", "Last tick step duration in milliseconds.", fmt.Sprintf("%.3f", m.StepMS))

		fmt.Fprintf(rw, "# HELP kitchencraft_queue_depth Channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE kitchencraft_queue_depth gauge\n")
		for _, q := range []struct {
			name string
			v    int
		}{
			{"inbox", m.QueueDepths.Inbox},
			{"join", m.QueueDepths.Join},
			{"leave", m.QueueDepths.Leave},
			{"attach", m.QueueDepths.Attach},
		} {
			fmt.Fprintf(rw, "kitchencraft_queue_depth{kitchen=%q,queue=%q} %d\n", id, q.name, q.v)
		}

		if idx == nil {
			return
		}
		s := idx.Stats()
		fmt.Fprintf(rw, "# HELP kitchencraft_index_queue_depth SQLite index write queue depth.\n")
		fmt.Fprintf(rw, "# TYPE kitchencraft_index_queue_depth gauge\n")
		fmt.Fprintf(rw, "kitchencraft_index_queue_depth{kitchen=%q} %d\n", id, s.QueueDepth)
		fmt.Fprintf(rw, "# HELP kitchencraft_index_dropped_total Index rows dropped because the queue was full.\n")
		fmt.Fprintf(rw, "# TYPE kitchencraft_index_dropped_total counter\n")
		fmt.Fprintf(rw, "kitchencraft_index_dropped_total{kitchen=%q,kind=%q} %d\n", id, "tick", s.DropTickTotal)
		fmt.Fprintf(rw, "kitchencraft_index_dropped_total{kitchen=%q,kind=%q} %d\n", id, "audit", s.DropAuditTotal)
		fmt.Fprintf(rw, "kitchencraft_index_dropped_total{kitchen=%q,kind=%q} %d\n", id, "snapshot", s.DropSnapshotTotal)
	}
}

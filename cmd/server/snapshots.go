package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"kitchencraft.ai/internal/persistence/snapshot"
)

const snapshotSuffix = ".snap.zst"

func snapshotPath(kitchenDir string, tick uint64) string {
	return filepath.Join(kitchenDir, "snapshots", fmt.Sprintf("%d%s", tick, snapshotSuffix))
}

// writeSnapshots persists snapshots handed off by the kitchen loop so that
// compression and disk IO never stall a tick.
func writeSnapshots(ctx context.Context, kitchenDir string, ch <-chan snapshot.SnapshotV1, idx runtimeIndex, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-ch:
			path := snapshotPath(kitchenDir, snap.Header.Tick)
			if err := snapshot.WriteSnapshot(path, snap); err != nil {
				logger.Printf("snapshot %d: %v", snap.Header.Tick, err)
				continue
			}
			if idx != nil {
				idx.RecordSnapshot(path, snap)
			}
		}
	}
}

// latestSnapshot returns the highest-tick snapshot under kitchenDir, or "".
func latestSnapshot(kitchenDir string) string {
	dir := filepath.Join(kitchenDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	best, bestTick := "", uint64(0)
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, snapshotSuffix), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			best, bestTick = filepath.Join(dir, name), tick
		}
	}
	return best
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kitchencraft.ai/internal/persistence/indexdb"
	"kitchencraft.ai/internal/persistence/snapshot"
	"kitchencraft.ai/internal/sim/catalogs"
	"kitchencraft.ai/internal/sim/tuning"
	"kitchencraft.ai/internal/sim/world"
)

type runtimeIndex interface {
	world.TickLogger
	world.AuditLogger
	Close() error
	UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error
	RecordSnapshot(path string, snap snapshot.SnapshotV1)
	Stats() indexdb.Stats
	Summary(ctx context.Context) (indexdb.Summary, error)
}

func openRuntimeIndex(kitchenDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("KC_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(filepath.Join(kitchenDir, "index", "kitchen.sqlite"))
	default:
		return nil, fmt.Errorf("unsupported KC_INDEX_BACKEND: %s", backend)
	}
}

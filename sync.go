package main

import (
	"log/slog"
	"time"

	"github.com/lexandro/workspace-mcp/index"
	"github.com/lexandro/workspace-mcp/workspace"
)

// snapshotSource yields the current workspace state.
type snapshotSource interface {
	Snapshot() workspace.Snapshot
}

// runPeriodicSync verifies index consistency at the given interval until
// stop is closed. A non-positive interval disables the loop.
func runPeriodicSync(
	interval time.Duration,
	source snapshotSource,
	ix *indexer,
	logger *slog.Logger,
	stop <-chan struct{},
) {
	if interval <= 0 {
		logger.Info("periodic sync disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("periodic sync started", "interval", interval)

	for {
		select {
		case <-stop:
			logger.Info("periodic sync stopped")
			return
		case <-ticker.C:
			performSyncVerification(source, ix, logger)
		}
	}
}

// performSyncVerification compares the indexes with the current snapshot
// and re-indexes any out-of-sync files. The snapshot is taken under the
// indexer lock so a concurrent apply cannot be overwritten with older files.
func performSyncVerification(source snapshotSource, ix *indexer, logger *slog.Logger) index.SyncResult {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	snap := source.Snapshot()
	if snap.Revision < ix.lastRevision {
		logger.Debug("sync verification skipped stale snapshot", "revision", snap.Revision, "last", ix.lastRevision)
		return index.SyncResult{}
	}

	result, err := index.Sync(ix.fileIndex, ix.contentIndex, ix.indexable(snap.Files))
	if err != nil {
		logger.Error("sync verification failed", "revision", snap.Revision, "error", err)
		return result
	}
	ix.lastRevision = snap.Revision

	if result.Total() > 0 {
		logger.Info("sync verification complete",
			"missing", result.Added,
			"modified", result.Changed,
			"stale", result.Removed,
			"duration", result.Duration,
		)
	} else {
		logger.Debug("sync verification complete, index is in sync", "duration", result.Duration)
	}
	return result
}

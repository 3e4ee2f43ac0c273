package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lexandro/workspace-mcp/ignore"
	"github.com/lexandro/workspace-mcp/index"
	"github.com/lexandro/workspace-mcp/language"
	"github.com/lexandro/workspace-mcp/vfs"
	"github.com/lexandro/workspace-mcp/workspace"
)

var errStaleSnapshot = errors.New("snapshot is older than the indexed revision")

// indexer keeps the search indexes in line with workspace snapshots.
// Listeners may run out of order, so snapshots older than the last applied
// revision are ignored.
type indexer struct {
	fileIndex     *index.FileIndex
	contentIndex  *index.ContentIndex
	ignoreMatcher *ignore.Matcher
	logger        *slog.Logger

	mu           sync.Mutex
	lastRevision uint64
}

func newIndexer(fileIndex *index.FileIndex, contentIndex *index.ContentIndex, ignoreMatcher *ignore.Matcher, logger *slog.Logger) *indexer {
	return &indexer{
		fileIndex:     fileIndex,
		contentIndex:  contentIndex,
		ignoreMatcher: ignoreMatcher,
		logger:        logger,
	}
}

// apply syncs the indexes to snap. It is registered as a workspace listener.
func (ix *indexer) apply(snap workspace.Snapshot) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if snap.Revision < ix.lastRevision {
		ix.logger.Debug("skipped stale snapshot", "revision", snap.Revision, "last", ix.lastRevision)
		return
	}

	result, err := index.Sync(ix.fileIndex, ix.contentIndex, ix.indexable(snap.Files))
	if err != nil {
		ix.logger.Error("index sync failed", "revision", snap.Revision, "error", err)
		return
	}
	ix.lastRevision = snap.Revision
	if result.Total() > 0 {
		ix.logger.Debug("index synced",
			"revision", snap.Revision,
			"added", result.Added,
			"changed", result.Changed,
			"removed", result.Removed,
			"duration", result.Duration,
		)
	}
}

// reindex clears both indexes and rebuilds them from the current snapshot
// of source. A snapshot older than the last applied one is refused.
func (ix *indexer) reindex(source snapshotSource) (index.SyncResult, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	snap := source.Snapshot()
	if snap.Revision < ix.lastRevision {
		return index.SyncResult{}, fmt.Errorf("%w: revision %d, last applied %d", errStaleSnapshot, snap.Revision, ix.lastRevision)
	}

	start := time.Now()
	ix.fileIndex.Clear()
	if err := ix.contentIndex.Clear(); err != nil {
		return index.SyncResult{}, fmt.Errorf("clearing content index: %w", err)
	}

	result, err := index.Sync(ix.fileIndex, ix.contentIndex, ix.indexable(snap.Files))
	if err != nil {
		return result, fmt.Errorf("rebuilding index: %w", err)
	}
	ix.lastRevision = snap.Revision
	result.Duration = time.Since(start)
	return result, nil
}

// indexable drops files the index should not hold: oversized or binary content.
func (ix *indexer) indexable(fm *vfs.FileMap) *vfs.FileMap {
	kept := vfs.NewFileMap()
	fm.Range(func(p, content string) bool {
		if ix.ignoreMatcher.IsFileTooLarge(int64(len(content))) {
			ix.logger.Debug("skipped oversized file", "path", p, "size", len(content))
			return true
		}
		if language.IsBinaryText(content) {
			ix.logger.Debug("skipped binary file", "path", p)
			return true
		}
		kept.Set(p, content)
		return true
	})
	return kept
}

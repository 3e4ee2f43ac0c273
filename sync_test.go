package main

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/lexandro/workspace-mcp/ignore"
	"github.com/lexandro/workspace-mcp/index"
	"github.com/lexandro/workspace-mcp/vfs"
	"github.com/lexandro/workspace-mcp/workspace"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestIndexer(t *testing.T, maxFileSize int64) *indexer {
	t.Helper()
	contentIndex, err := index.NewContentIndex()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { contentIndex.Close() })
	matcher := ignore.NewMatcher(ignore.MatcherOptions{MaxFileSizeBytes: maxFileSize})
	return newIndexer(index.NewFileIndex(), contentIndex, matcher, testLogger())
}

func snapshotOf(t *testing.T, revision uint64, files map[string]string) workspace.Snapshot {
	t.Helper()
	fm := vfs.NewFileMap()
	for p, content := range files {
		if _, err := fm.Set(p, content); err != nil {
			t.Fatal(err)
		}
	}
	return workspace.Snapshot{Revision: revision, Files: fm}
}

type fixedSource struct{ snap workspace.Snapshot }

func (f fixedSource) Snapshot() workspace.Snapshot { return f.snap }

func Test_indexer_AppliesNewerSnapshots(t *testing.T) {
	ix := newTestIndexer(t, 0)

	ix.apply(snapshotOf(t, 1, map[string]string{"index.html": "<div></div>", "app.js": "run()"}))
	ix.apply(snapshotOf(t, 2, map[string]string{"index.html": "<main></main>"}))

	if ix.fileIndex.FileCount() != 1 {
		t.Fatalf("expected 1 indexed file, got %d", ix.fileIndex.FileCount())
	}
	if content, _ := ix.contentIndex.GetFileContent("index.html"); content != "<main></main>" {
		t.Errorf("expected latest content, got %q", content)
	}
}

func Test_indexer_IgnoresOlderSnapshots(t *testing.T) {
	ix := newTestIndexer(t, 0)

	ix.apply(snapshotOf(t, 5, map[string]string{"new.js": "latest"}))
	ix.apply(snapshotOf(t, 3, map[string]string{"old.js": "outdated"}))

	if ix.fileIndex.GetFile("old.js") != nil {
		t.Error("older snapshot should not reach the index")
	}
	if ix.fileIndex.GetFile("new.js") == nil {
		t.Error("expected new.js to stay indexed")
	}
}

func Test_indexer_SkipsOversizedAndBinaryFiles(t *testing.T) {
	ix := newTestIndexer(t, 16)

	ix.apply(snapshotOf(t, 1, map[string]string{
		"small.css": "a{}",
		"big.js":    strings.Repeat("x", 64),
		"logo.png":  "\x89PNG\x00\x00",
	}))

	if ix.fileIndex.FileCount() != 1 || ix.fileIndex.GetFile("small.css") == nil {
		t.Errorf("expected only small.css indexed, got %d files", ix.fileIndex.FileCount())
	}
}

func Test_indexer_Reindex(t *testing.T) {
	ix := newTestIndexer(t, 0)
	ix.apply(snapshotOf(t, 1, map[string]string{"a.js": "a"}))

	result, err := ix.reindex(fixedSource{snapshotOf(t, 2, map[string]string{"a.js": "a", "b.js": "b"})})
	if err != nil {
		t.Fatalf("reindex error: %v", err)
	}
	if result.Added != 2 {
		t.Errorf("expected 2 files added after clear, got %d", result.Added)
	}
	if ix.contentIndex.DocumentCount() != 2 {
		t.Errorf("expected 2 documents, got %d", ix.contentIndex.DocumentCount())
	}
}

func Test_indexer_ReindexRefusesOlderSnapshot(t *testing.T) {
	ix := newTestIndexer(t, 0)
	ix.apply(snapshotOf(t, 4, map[string]string{"a.js": "current()"}))

	_, err := ix.reindex(fixedSource{snapshotOf(t, 2, map[string]string{"a.js": "old()"})})
	if !errors.Is(err, errStaleSnapshot) {
		t.Fatalf("expected errStaleSnapshot, got %v", err)
	}
	if content, _ := ix.contentIndex.GetFileContent("a.js"); content != "current()" {
		t.Errorf("index should keep current content, got %q", content)
	}
}

func Test_performSyncVerification_IgnoresOlderSnapshot(t *testing.T) {
	ix := newTestIndexer(t, 0)
	ix.apply(snapshotOf(t, 2, map[string]string{"a.js": "new()"}))

	result := performSyncVerification(fixedSource{snapshotOf(t, 1, map[string]string{"a.js": "old()"})}, ix, testLogger())

	if result.Total() != 0 {
		t.Errorf("expected no changes from an older snapshot, got %+v", result)
	}
	if content, _ := ix.contentIndex.GetFileContent("a.js"); content != "new()" {
		t.Errorf("expected new() to stay indexed, got %q", content)
	}
	if ix.lastRevision != 2 {
		t.Errorf("lastRevision = %d, want 2", ix.lastRevision)
	}
}

func Test_performSyncVerification_RepairsDrift(t *testing.T) {
	ix := newTestIndexer(t, 0)
	snap := snapshotOf(t, 1, map[string]string{"a.js": "a", "b.js": "b"})
	ix.apply(snap)

	// Drift: one file dropped from the index, one stale entry added.
	ix.fileIndex.RemoveFile("a.js")
	ix.contentIndex.RemoveFile("a.js")
	ix.contentIndex.IndexFile("ghost.js", "boo", "JavaScript")

	result := performSyncVerification(fixedSource{snap}, ix, testLogger())

	if result.Added != 1 || result.Removed != 1 {
		t.Errorf("expected 1 missing and 1 stale, got %+v", result)
	}
	if ix.fileIndex.GetFile("a.js") == nil {
		t.Error("expected a.js to be re-indexed")
	}
	if _, ok := ix.contentIndex.GetFileContent("ghost.js"); ok {
		t.Error("expected ghost.js to be removed")
	}
}

func Test_performSyncVerification_InSync(t *testing.T) {
	ix := newTestIndexer(t, 0)
	snap := snapshotOf(t, 1, map[string]string{"a.js": "a"})
	ix.apply(snap)

	if result := performSyncVerification(fixedSource{snap}, ix, testLogger()); result.Total() != 0 {
		t.Errorf("expected no changes, got %+v", result)
	}
}

func Test_runPeriodicSync_StopsOnChannelClose(t *testing.T) {
	ix := newTestIndexer(t, 0)
	source := fixedSource{snapshotOf(t, 1, map[string]string{"a.js": "a"})}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		runPeriodicSync(10*time.Millisecond, source, ix, testLogger(), stop)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("runPeriodicSync did not stop within 3 seconds after closing stop channel")
	}
	if ix.fileIndex.GetFile("a.js") == nil {
		t.Error("expected periodic sync to index the snapshot")
	}
}

func Test_runPeriodicSync_Disabled(t *testing.T) {
	done := make(chan struct{})
	go func() {
		runPeriodicSync(0, fixedSource{}, newTestIndexer(t, 0), testLogger(), make(chan struct{}))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled periodic sync should return immediately")
	}
}

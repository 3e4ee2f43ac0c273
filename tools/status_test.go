package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lexandro/workspace-mcp/devserver"
	"github.com/lexandro/workspace-mcp/index"
)

type staticDevServers struct {
	server devserver.Server
	ok     bool
}

func (s staticDevServers) Active() (devserver.Server, bool) { return s.server, s.ok }

func newTestStatusHandler(t *testing.T) *StatusHandler {
	t.Helper()
	ws := newTestWorkspace(t, sampleCode)
	fi := index.NewFileIndex()
	ci, err := index.NewContentIndex()
	if err != nil {
		t.Fatalf("failed to create content index: %v", err)
	}
	t.Cleanup(func() { ci.Close() })
	index.Sync(fi, ci, ws.Snapshot().Files)

	return &StatusHandler{
		Workspace:    ws,
		FileIndex:    fi,
		ContentIndex: ci,
		DevServers:   staticDevServers{},
		StartTime:    time.Now(),
		DataDir:      "/data/workspace",
		Logger:       testLogger(),
	}
}

func Test_StatusHandler_Handle(t *testing.T) {
	h := newTestStatusHandler(t)
	h.Workspace.Edit("index.html", "<main></main>")

	result, _, err := h.Handle(context.Background(), nil, StatusArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(t, result)

	for _, want := range []string{
		"Data directory: /data/workspace",
		"Session: test",
		"Files: 3",
		"Unsaved files: 1",
		"Dev server: not running",
		"Indexed files: 3",
		"Content-indexed documents: 3",
		"TypeScript",
		"CSS",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in status, got:\n%s", want, text)
		}
	}
}

func Test_StatusHandler_ShowsDevServer(t *testing.T) {
	h := newTestStatusHandler(t)
	h.DevServers = staticDevServers{
		server: devserver.Server{Project: "app", URL: "http://localhost:5173", Started: time.Now()},
		ok:     true,
	}

	result, _, _ := h.Handle(context.Background(), nil, StatusArgs{})
	if text := resultText(t, result); !strings.Contains(text, "Dev server: http://localhost:5173 (project app") {
		t.Errorf("expected dev server line, got:\n%s", text)
	}
}

func Test_ReindexHandler(t *testing.T) {
	h := &ReindexHandler{
		DoReindex: func() (index.SyncResult, error) {
			return index.SyncResult{Added: 42, Duration: 1500 * time.Millisecond}, nil
		},
		Logger: testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, ReindexArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := resultText(t, result); text != "reindexed: 42 files in 1.5s" {
		t.Errorf("unexpected output: %q", text)
	}

	h.DoReindex = func() (index.SyncResult, error) {
		return index.SyncResult{}, fmt.Errorf("index closed")
	}
	result, _, _ = h.Handle(context.Background(), nil, ReindexArgs{})
	if !result.IsError || !strings.Contains(resultText(t, result), "index closed") {
		t.Error("expected reindex error result")
	}
}

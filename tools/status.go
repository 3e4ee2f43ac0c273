package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/lexandro/workspace-mcp/devserver"
	"github.com/lexandro/workspace-mcp/index"
	"github.com/lexandro/workspace-mcp/workspace"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the workspace_status tool (none required).
type StatusArgs struct{}

// DevServers reports the running dev server.
type DevServers interface {
	Active() (devserver.Server, bool)
}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Workspace    *workspace.Workspace
	FileIndex    *index.FileIndex
	ContentIndex *index.ContentIndex
	DevServers   DevServers
	StartTime    time.Time
	DataDir      string
	Logger       *slog.Logger
}

// Handle processes a workspace_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	var builder strings.Builder

	snap := h.Workspace.Snapshot()
	stats := h.FileIndex.Stats()
	docCount := h.ContentIndex.DocumentCount()
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("workspace_status",
		"files", snap.Files.Len(),
		"revision", snap.Revision,
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	session := snap.Session
	if session == "" {
		session = "(none)"
	}

	builder.WriteString("=== workspace-mcp Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Data directory: %s\n", h.DataDir))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	builder.WriteString(fmt.Sprintf("Session: %s (revision %d)\n", session, snap.Revision))
	builder.WriteString(fmt.Sprintf("Files: %d (%s)\n", snap.Files.Len(), formatFileSize(snap.Files.TotalSize())))
	builder.WriteString(fmt.Sprintf("Open tabs: %d, selected: %s\n", len(snap.Tabs), snap.Selected))
	builder.WriteString(fmt.Sprintf("Unsaved files: %d\n", len(snap.Unsaved)))
	if snap.ParseError != "" {
		builder.WriteString(fmt.Sprintf("Last parse error: %s\n", snap.ParseError))
	}

	if h.DevServers != nil {
		if server, ok := h.DevServers.Active(); ok {
			builder.WriteString(fmt.Sprintf("Dev server: %s (project %s, up %s)\n",
				server.URL, server.Project, formatDuration(time.Since(server.Started))))
		} else if snap.DevServerURL != "" {
			builder.WriteString(fmt.Sprintf("Dev server: %s (external)\n", snap.DevServerURL))
		} else {
			builder.WriteString("Dev server: not running\n")
		}
	}

	builder.WriteString(fmt.Sprintf("Indexed files: %d\n", stats.Files))
	builder.WriteString(fmt.Sprintf("Content-indexed documents: %d\n", docCount))
	builder.WriteString(fmt.Sprintf("Total indexed size: %s\n", formatFileSize(stats.TotalBytes)))
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	))

	if len(stats.Languages) > 0 {
		builder.WriteString("\nLanguages:\n")

		type langEntry struct {
			lang  string
			count int
		}
		entries := make([]langEntry, 0, len(stats.Languages))
		for lang, count := range stats.Languages {
			entries = append(entries, langEntry{lang, count})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].count != entries[j].count {
				return entries[i].count > entries[j].count
			}
			return entries[i].lang < entries[j].lang
		})

		for _, entry := range entries {
			builder.WriteString(fmt.Sprintf("  %-20s %d files\n", entry.lang, entry.count))
		}
	}

	return textResult(builder.String()), nil, nil
}

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/workspace-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReindexArgs defines the input parameters for the workspace_reindex tool.
type ReindexArgs struct{}

// ReindexFunc clears the search indexes and rebuilds them from the current
// workspace. It is provided by main.go to avoid circular dependencies.
type ReindexFunc func() (index.SyncResult, error)

// ReindexHandler holds the dependencies for the reindex tool.
type ReindexHandler struct {
	DoReindex ReindexFunc
	Logger    *slog.Logger
}

// Handle processes a workspace_reindex request.
func (h *ReindexHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReindexArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("workspace_reindex started")

	result, err := h.DoReindex()
	if err != nil {
		h.Logger.Error("workspace_reindex failed", "error", err)
		return errorResult("Reindex error: %v", err), nil, nil
	}

	elapsed := result.Duration.Round(time.Millisecond)
	h.Logger.Info("workspace_reindex complete", "files", result.Added, "elapsed", elapsed)

	return textResult(fmt.Sprintf("reindexed: %d files in %s", result.Added, elapsed)), nil, nil
}

package tools

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lexandro/workspace-mcp/language"
	"github.com/lexandro/workspace-mcp/workspace"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReadArgs defines the input parameters for the workspace_read tool.
type ReadArgs struct {
	FilePath string `json:"filePath" jsonschema:"Workspace file path to read (e.g. src/App.tsx)"`
	Offset   int    `json:"offset,omitempty" jsonschema:"1-based line number to start reading from"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of lines to return"`
}

// ReadHandler holds the dependencies for the read tool.
type ReadHandler struct {
	Workspace *workspace.Workspace
	Logger    *slog.Logger
}

// Handle processes a workspace_read request. Unsaved edits are included.
func (h *ReadHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReadArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.FilePath == "" {
		h.Logger.Warn("workspace_read called with empty filePath")
		return errorResult("Error: filePath parameter is required"), nil, nil
	}

	content, err := h.Workspace.Read(args.FilePath)
	if err != nil {
		if errors.Is(err, workspace.ErrNotFound) {
			h.Logger.Info("workspace_read file not found", "filePath", args.FilePath)
			return errorResult("File not found in workspace: %s", args.FilePath), nil, nil
		}
		return errorResult("Read error: %v", err), nil, nil
	}
	snap := h.Workspace.Snapshot()

	h.Logger.Info("workspace_read", "filePath", args.FilePath, "elapsed", time.Since(start))

	header := FormatFileHeader(args.FilePath, language.EditorLanguage(args.FilePath),
		strings.Count(content, "\n")+1, snap.IsUnsaved(args.FilePath))
	return textResult(header + FormatFileContent(content, args.Offset, args.Limit)), nil, nil
}

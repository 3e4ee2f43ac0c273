package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/workspace-mcp/index"
	"github.com/lexandro/workspace-mcp/workspace"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FilesArgs defines the input parameters for the workspace_files tool.
type FilesArgs struct {
	Pattern    string `json:"pattern,omitempty" jsonschema:"Glob pattern to match workspace files (e.g. **/*.tsx or src/**/*.css)"`
	Language   string `json:"language,omitempty" jsonschema:"Only list files of this language (e.g. TypeScript, CSS)"`
	NameOnly   bool   `json:"nameOnly,omitempty" jsonschema:"If true return only file paths without metadata"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// FilesHandler lists indexed workspace files. Workspace is optional and
// only used to flag unsaved files.
type FilesHandler struct {
	FileIndex  *index.FileIndex
	Workspace  *workspace.Workspace
	MaxResults int
	Logger     *slog.Logger
}

// Handle processes a workspace_files request.
func (h *FilesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FilesArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Pattern == "" && args.Language == "" {
		h.Logger.Warn("workspace_files called without pattern or language")
		return errorResult("Error: pattern or language parameter is required"), nil, nil
	}

	maxResults := args.MaxResults
	if maxResults <= 0 {
		maxResults = h.MaxResults
	}

	files, err := h.FileIndex.Find(index.FileQuery{
		Pattern:    args.Pattern,
		Language:   args.Language,
		MaxResults: maxResults,
	})
	if err != nil {
		h.Logger.Error("workspace_files failed", "pattern", args.Pattern, "error", err)
		return errorResult("Search error: %v", err), nil, nil
	}

	h.Logger.Info("workspace_files",
		"pattern", args.Pattern,
		"language", args.Language,
		"results", len(files),
		"elapsed", time.Since(start),
	)

	return textResult(FormatFileResults(files, args.NameOnly, unsavedSet(h.Workspace))), nil, nil
}

// unsavedSet returns the unsaved paths of ws, or nil without a workspace.
func unsavedSet(ws *workspace.Workspace) map[string]bool {
	if ws == nil {
		return nil
	}
	return ws.Snapshot().UnsavedSet()
}

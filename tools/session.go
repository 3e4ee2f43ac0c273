package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/workspace-mcp/workspace"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// LoadArgs defines the input parameters for the workspace_load tool.
type LoadArgs struct {
	Code      string `json:"code" jsonschema:"Generated source. Files are separated by marker lines such as // src/App.tsx"`
	Session   string `json:"session,omitempty" jsonschema:"Optional session identifier"`
	ServerURL string `json:"serverUrl,omitempty" jsonschema:"Optional URL of an already running dev server"`
}

// LoadHandler replaces the workspace with freshly generated code.
type LoadHandler struct {
	Workspace *workspace.Workspace
	Logger    *slog.Logger
}

// Handle processes a workspace_load request. Unparseable code still loads
// as a single index.html; the parse problem is reported as a warning.
func (h *LoadHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args LoadArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Code == "" {
		h.Logger.Warn("workspace_load called with empty code")
		return errorResult("Error: code parameter is required"), nil, nil
	}

	snap, parseErr := h.Workspace.Load(workspace.Update{Code: args.Code, Session: args.Session, ServerURL: args.ServerURL})

	h.Logger.Info("workspace_load",
		"session", args.Session,
		"files", snap.Files.Len(),
		"revision", snap.Revision,
		"elapsed", time.Since(start),
	)

	output := fmt.Sprintf("Loaded %d files.\n", snap.Files.Len())
	if parseErr != nil {
		output = fmt.Sprintf("Warning: %v. The code was loaded as a single file.\n", parseErr)
	}
	return textResult(output + "\n" + FormatWorkspace(snap)), nil, nil
}

// TreeArgs defines the input parameters for the workspace_tree tool (none required).
type TreeArgs struct{}

// TreeHandler renders the file tree.
type TreeHandler struct {
	Workspace *workspace.Workspace
	Logger    *slog.Logger
}

// Handle processes a workspace_tree request.
func (h *TreeHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args TreeArgs) (*mcp.CallToolResult, any, error) {
	snap := h.Workspace.Snapshot()
	h.Logger.Info("workspace_tree", "files", snap.Files.Len(), "revision", snap.Revision)
	return textResult(FormatWorkspace(snap)), nil, nil
}

// ToggleDirArgs defines the input parameters for the workspace_toggle_dir tool.
type ToggleDirArgs struct {
	Path string `json:"path" jsonschema:"Directory path to expand or collapse (e.g. src/components)"`
}

// ToggleDirHandler expands or collapses a directory in the tree.
type ToggleDirHandler struct {
	Workspace *workspace.Workspace
	Logger    *slog.Logger
}

// Handle processes a workspace_toggle_dir request.
func (h *ToggleDirHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ToggleDirArgs) (*mcp.CallToolResult, any, error) {
	if args.Path == "" {
		return errorResult("Error: path parameter is required"), nil, nil
	}

	expanded, err := h.Workspace.ToggleDirectory(args.Path)
	if err != nil {
		h.Logger.Info("workspace_toggle_dir failed", "path", args.Path, "error", err)
		return errorResult("Cannot toggle %s: %v", args.Path, err), nil, nil
	}

	state := "collapsed"
	if expanded {
		state = "expanded"
	}
	h.Logger.Info("workspace_toggle_dir", "path", args.Path, "state", state)

	snap := h.Workspace.Snapshot()
	return textResult(fmt.Sprintf("%s %s.\n\n%s", args.Path, state, FormatWorkspace(snap))), nil, nil
}

package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexandro/workspace-mcp/workspace"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PathArgs names a single workspace file.
type PathArgs struct {
	FilePath string `json:"filePath" jsonschema:"Workspace file path (e.g. src/App.tsx)"`
}

// ContentArgs names a workspace file and its new content.
type ContentArgs struct {
	FilePath string `json:"filePath" jsonschema:"Workspace file path (e.g. src/components/Nav.tsx)"`
	Content  string `json:"content" jsonschema:"Full file content"`
}

// SaveAllArgs defines the input parameters for the workspace_save_all tool (none required).
type SaveAllArgs struct{}

// EditorHandler serves the tab and editing tools: open, close, edit,
// create, save and save all.
type EditorHandler struct {
	Workspace *workspace.Workspace
	Logger    *slog.Logger
}

// HandleOpen processes a workspace_open request.
func (h *EditorHandler) HandleOpen(ctx context.Context, req *mcp.CallToolRequest, args PathArgs) (*mcp.CallToolResult, any, error) {
	if args.FilePath == "" {
		return errorResult("Error: filePath parameter is required"), nil, nil
	}
	if err := h.Workspace.Open(args.FilePath); err != nil {
		h.Logger.Info("workspace_open failed", "filePath", args.FilePath, "error", err)
		return errorResult("Cannot open %s: %v", args.FilePath, err), nil, nil
	}
	h.Logger.Info("workspace_open", "filePath", args.FilePath)
	return textResult(FormatTabs(h.Workspace.Snapshot())), nil, nil
}

// HandleClose processes a workspace_close request. Unsaved edits stay in the
// file but lose their unsaved flag.
func (h *EditorHandler) HandleClose(ctx context.Context, req *mcp.CallToolRequest, args PathArgs) (*mcp.CallToolResult, any, error) {
	if args.FilePath == "" {
		return errorResult("Error: filePath parameter is required"), nil, nil
	}
	if err := h.Workspace.Close(args.FilePath); err != nil {
		h.Logger.Info("workspace_close failed", "filePath", args.FilePath, "error", err)
		return errorResult("Cannot close %s: %v", args.FilePath, err), nil, nil
	}
	h.Logger.Info("workspace_close", "filePath", args.FilePath)
	return textResult(FormatTabs(h.Workspace.Snapshot())), nil, nil
}

// HandleEdit processes a workspace_edit request.
func (h *EditorHandler) HandleEdit(ctx context.Context, req *mcp.CallToolRequest, args ContentArgs) (*mcp.CallToolResult, any, error) {
	if args.FilePath == "" {
		return errorResult("Error: filePath parameter is required"), nil, nil
	}
	if err := h.Workspace.Edit(args.FilePath, args.Content); err != nil {
		h.Logger.Info("workspace_edit failed", "filePath", args.FilePath, "error", err)
		return errorResult("Cannot edit %s: %v", args.FilePath, err), nil, nil
	}
	h.Logger.Info("workspace_edit", "filePath", args.FilePath, "bytes", len(args.Content))
	return textResult(fmt.Sprintf("Edited %s (%s, unsaved).", args.FilePath, formatFileSize(int64(len(args.Content))))), nil, nil
}

// HandleCreate processes a workspace_create request.
func (h *EditorHandler) HandleCreate(ctx context.Context, req *mcp.CallToolRequest, args ContentArgs) (*mcp.CallToolResult, any, error) {
	if args.FilePath == "" {
		return errorResult("Error: filePath parameter is required"), nil, nil
	}
	p, err := h.Workspace.Create(args.FilePath, args.Content)
	if err != nil {
		h.Logger.Info("workspace_create failed", "filePath", args.FilePath, "error", err)
		return errorResult("Cannot create %s: %v", args.FilePath, err), nil, nil
	}
	h.Logger.Info("workspace_create", "filePath", p)
	return textResult(fmt.Sprintf("Created %s.\n\n%s", p, FormatWorkspace(h.Workspace.Snapshot()))), nil, nil
}

// HandleSave processes a workspace_save request.
func (h *EditorHandler) HandleSave(ctx context.Context, req *mcp.CallToolRequest, args PathArgs) (*mcp.CallToolResult, any, error) {
	if args.FilePath == "" {
		return errorResult("Error: filePath parameter is required"), nil, nil
	}
	if err := h.Workspace.Save(args.FilePath); err != nil {
		h.Logger.Info("workspace_save failed", "filePath", args.FilePath, "error", err)
		return errorResult("Cannot save %s: %v", args.FilePath, err), nil, nil
	}
	h.Logger.Info("workspace_save", "filePath", args.FilePath)
	return textResult(fmt.Sprintf("Saved %s. Preview updated.", args.FilePath)), nil, nil
}

// HandleSaveAll processes a workspace_save_all request.
func (h *EditorHandler) HandleSaveAll(ctx context.Context, req *mcp.CallToolRequest, args SaveAllArgs) (*mcp.CallToolResult, any, error) {
	count := h.Workspace.SaveAll()
	h.Logger.Info("workspace_save_all", "unsaved", count)
	return textResult(fmt.Sprintf("Saved all files (%d had unsaved edits). Preview updated.", count)), nil, nil
}

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/workspace-mcp/export"
	"github.com/lexandro/workspace-mcp/preview"
	"github.com/lexandro/workspace-mcp/workspace"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PreviewArgs defines the input parameters for the workspace_preview tool.
type PreviewArgs struct {
	Download bool `json:"download,omitempty" jsonschema:"Also write the raw generated code as generated-app.html in the export directory"`
}

// PreviewHandler renders the last saved or generated code.
type PreviewHandler struct {
	Workspace *workspace.Workspace
	ExportDir string
	Logger    *slog.Logger
}

// Handle processes a workspace_preview request. Unsaved edits are not
// part of the preview until saved.
func (h *PreviewHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args PreviewArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	snap := h.Workspace.Snapshot()

	result := preview.Render(snap.Code, snap.DevServerURL)
	if result.Mode == preview.ModeError {
		h.Logger.Warn("workspace_preview render failed", "error", result.Err)
	}

	header := fmt.Sprintf("Preview mode: %s\n", result.Mode)
	if args.Download {
		download, err := export.PreviewDocument(snap.Code, h.ExportDir)
		if err != nil {
			return errorResult("Preview download failed: %v", err), nil, nil
		}
		header += fmt.Sprintf("Saved raw document → %s\n", download.Path)
	}

	h.Logger.Info("workspace_preview", "mode", result.Mode, "files", result.Files, "elapsed", time.Since(start))

	if result.Mode == preview.ModeURL {
		return textResult(header + fmt.Sprintf("URL: %s\n", result.URL)), nil, nil
	}
	if snap.Code == "" {
		return textResult(header + "\nNo code generated yet.\n"), nil, nil
	}
	return textResult(header + "\n" + result.HTML), nil, nil
}

package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/lexandro/workspace-mcp/export"
	"github.com/lexandro/workspace-mcp/ignore"
	"github.com/lexandro/workspace-mcp/workspace"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ExportZipArgs defines the input parameters for the workspace_export_zip tool.
type ExportZipArgs struct {
	Name          string `json:"name,omitempty" jsonschema:"Archive file name (default project.zip)"`
	RespectIgnore *bool  `json:"respectIgnore,omitempty" jsonschema:"Skip files excluded by default patterns and the workspace .gitignore (default true)"`
}

// ExportHandler writes workspace files into the export directory.
type ExportHandler struct {
	Workspace     *workspace.Workspace
	Matcher       *ignore.Matcher
	Dir           string
	RespectIgnore bool
	Logger        *slog.Logger
}

// HandleFile processes a workspace_export_file request.
func (h *ExportHandler) HandleFile(ctx context.Context, req *mcp.CallToolRequest, args PathArgs) (*mcp.CallToolResult, any, error) {
	if args.FilePath == "" {
		return errorResult("Error: filePath parameter is required"), nil, nil
	}

	snap := h.Workspace.Snapshot()
	download, err := export.File(snap.Files, args.FilePath, h.Dir)
	if err != nil {
		h.Logger.Warn("workspace_export_file failed", "filePath", args.FilePath, "error", err)
		return errorResult("Export failed: %v", err), nil, nil
	}

	h.Logger.Info("workspace_export_file", "filePath", args.FilePath, "dest", download.Path, "size", download.Size)
	return textResult(fmt.Sprintf("Exported %s → %s (%s, %s)",
		args.FilePath, download.Path, download.MIMEType, formatFileSize(download.Size))), nil, nil
}

// HandleArchive processes a workspace_export_zip request.
func (h *ExportHandler) HandleArchive(ctx context.Context, req *mcp.CallToolRequest, args ExportZipArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	name := export.ArchiveName
	if args.Name != "" {
		name = filepath.Base(args.Name)
		if !strings.HasSuffix(strings.ToLower(name), ".zip") {
			name += ".zip"
		}
	}
	respect := h.RespectIgnore
	if args.RespectIgnore != nil {
		respect = *args.RespectIgnore
	}
	var matcher *ignore.Matcher
	if respect {
		matcher = h.Matcher
	}

	snap := h.Workspace.Snapshot()
	result, err := export.Archive(snap.Files, filepath.Join(h.Dir, name), matcher)
	if err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			return errorResult("No files to export."), nil, nil
		}
		h.Logger.Error("workspace_export_zip failed", "error", err)
		return errorResult("Export failed: %v", err), nil, nil
	}

	h.Logger.Info("workspace_export_zip",
		"dest", result.Path,
		"files", result.Files,
		"skipped", len(result.Skipped),
		"elapsed", time.Since(start),
	)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Exported %d files → %s (%s)\n", result.Files, result.Path, formatFileSize(result.Size)))
	if len(result.Skipped) > 0 {
		builder.WriteString(fmt.Sprintf("Skipped %d ignored files:\n", len(result.Skipped)))
		for _, p := range result.Skipped {
			builder.WriteString("  ")
			builder.WriteString(p)
			builder.WriteString("\n")
		}
	}
	return textResult(builder.String()), nil, nil
}

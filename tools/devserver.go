package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/lexandro/workspace-mcp/devserver"
	"github.com/lexandro/workspace-mcp/workspace"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultProject names the dev-server project when neither an argument nor
// a session id is available.
const DefaultProject = "app"

var unsafeProjectRunes = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DevServerStartArgs defines the input parameters for the workspace_devserver_start tool.
type DevServerStartArgs struct {
	Project string `json:"project,omitempty" jsonschema:"Project name (default: the session id or app)"`
}

// DevServerStopArgs defines the input parameters for the workspace_devserver_stop tool (none required).
type DevServerStopArgs struct{}

// DevServerHandler starts and stops the dev server for the workspace files.
type DevServerHandler struct {
	Manager   *devserver.Manager
	Workspace *workspace.Workspace
	Logger    *slog.Logger
}

// HandleStart processes a workspace_devserver_start request.
func (h *DevServerHandler) HandleStart(ctx context.Context, req *mcp.CallToolRequest, args DevServerStartArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	snap := h.Workspace.Snapshot()

	project := args.Project
	if project == "" {
		project = ProjectName(snap.Session)
	}

	server, err := h.Manager.Start(ctx, project, snap.Files)
	if err != nil {
		h.Logger.Warn("workspace_devserver_start failed", "project", project, "error", err)
		return errorResult("Failed to start dev server for %s: %v. The preview keeps showing static content.", project, err), nil, nil
	}

	h.Logger.Info("workspace_devserver_start", "project", project, "url", server.URL, "elapsed", time.Since(start))
	return textResult(fmt.Sprintf("Dev server for %s running at %s", server.Project, server.URL)), nil, nil
}

// HandleStop processes a workspace_devserver_stop request.
func (h *DevServerHandler) HandleStop(ctx context.Context, req *mcp.CallToolRequest, args DevServerStopArgs) (*mcp.CallToolResult, any, error) {
	server, err := h.Manager.Stop()
	if err != nil {
		if errors.Is(err, devserver.ErrNotRunning) {
			return errorResult("No dev server is running."), nil, nil
		}
		h.Logger.Warn("workspace_devserver_stop failed", "error", err)
		return errorResult("Failed to stop dev server: %v", err), nil, nil
	}
	h.Logger.Info("workspace_devserver_stop", "project", server.Project)
	return textResult(fmt.Sprintf("Stopped dev server for %s.", server.Project)), nil, nil
}

// ProjectName derives a safe project name from a session id.
func ProjectName(session string) string {
	name := strings.Trim(unsafeProjectRunes.ReplaceAllString(session, "-"), "-._")
	if name == "" {
		return DefaultProject
	}
	return name
}

package server

import (
	"github.com/lexandro/workspace-mcp/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Handlers groups the tool handlers registered on the server.
type Handlers struct {
	Load      *tools.LoadHandler
	Tree      *tools.TreeHandler
	Read      *tools.ReadHandler
	Editor    *tools.EditorHandler
	ToggleDir *tools.ToggleDirHandler
	Files     *tools.FilesHandler
	Search    *tools.SearchHandler
	Status    *tools.StatusHandler
	Reindex   *tools.ReindexHandler
	Export    *tools.ExportHandler
	Preview   *tools.PreviewHandler
	DevServer *tools.DevServerHandler
}

// Setup creates and configures the MCP server with all tool registrations.
func Setup(h Handlers) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "workspace-mcp",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server holds a workspace of generated code. Generated output uses file markers: a line "// path/to/file.ext" starts a file and everything up to the next marker is its content.

Typical flow:
- Use workspace_load with the generated code to split it into files and build the tree
- Use workspace_tree, workspace_read, workspace_files and workspace_search to inspect the files
- Use workspace_open, workspace_edit and workspace_create to change files, then workspace_save or workspace_save_all to publish them to the preview
- Use workspace_preview to see what the preview renders, workspace_export_file or workspace_export_zip to download files
- Use workspace_devserver_start for projects that need a build step (TypeScript, JSX, Vue, Svelte)

Edits stay unsaved until saved. The preview always shows the last saved or generated code.`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "workspace_load",
		Description: `Load generated code into the workspace. The code is split into files at "// path" marker lines and replaces the previous workspace.

If the markers are malformed (paths escaping the root with "..", a file and a directory with the same path) or the code looks binary, the whole code is loaded as a single index.html and a warning is returned. Code without markers also becomes a single index.html.`,
	}, h.Load.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_tree",
		Description: "Show the file tree (directories first, then files, alphabetically) and the open tabs. Collapsed directories are shown with ▸ and their contents are hidden.",
	}, h.Tree.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_read",
		Description: `Read a workspace file, including unsaved edits. Returns numbered lines (format: "N: content"). Use offset and limit for large files.`,
	}, h.Read.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_open",
		Description: "Open a file in a tab and select it. Opening an already open file only selects it.",
	}, h.Editor.HandleOpen)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_close",
		Description: "Close a tab. If it was selected, the first remaining tab becomes selected. Edits stay in the file but are no longer marked unsaved.",
	}, h.Editor.HandleClose)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_edit",
		Description: "Replace the contents of a file. The change is unsaved until workspace_save or workspace_save_all.",
	}, h.Editor.HandleEdit)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_create",
		Description: "Create a new file (unsaved) and open it in a tab. Fails if the path already exists or is not a valid relative path.",
	}, h.Editor.HandleCreate)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_save",
		Description: "Save a file. All files are joined back into marker format and published to the preview.",
	}, h.Editor.HandleSave)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_save_all",
		Description: "Save every file with unsaved edits and publish the joined code to the preview.",
	}, h.Editor.HandleSaveAll)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_toggle_dir",
		Description: "Collapse or expand a directory in the file tree.",
	}, h.ToggleDir.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "workspace_files",
		Description: `Find workspace files by glob pattern and/or language. Results show language, content type, size and line count; files with unsaved edits are flagged.

Pattern examples:
  - "**/*.tsx" - all TSX files
  - "src/**/*.css" - stylesheets under src/
  - "*.html" - HTML files in root only`,
	}, h.Files.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "workspace_search",
		Description: `Search workspace file contents using full-text indexed search. Unsaved edits are searchable.

Query formats:
  - Plain text: word-level matching (e.g., "useState")
  - "quoted text": exact phrase matching (e.g., "\"export default\"")
  - /regex/: regular expression matching (e.g., "/function\s+\w+/")

Filtering:
  - filePath: exact relative path to search in a single file. Overrides fileGlob.
  - fileGlob: glob pattern to filter by file type (e.g., "**/*.css").
  - language: only files of this language (e.g., "TypeScript").
  - contextLines: lines of context around each match (default 2, 0 for none).`,
	}, h.Search.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_status",
		Description: "Show workspace status: session, files, tabs, unsaved edits, dev server, index size, languages, memory usage and uptime.",
	}, h.Status.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_reindex",
		Description: "Clear the search indexes and rebuild them from the current workspace files.",
	}, h.Reindex.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_export_file",
		Description: "Write a single workspace file into the export directory, named after its base name.",
	}, h.Export.HandleFile)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_export_zip",
		Description: "Write all workspace files into a zip archive that keeps the folder structure. Files matched by default ignore patterns and the workspace .gitignore are skipped unless respectIgnore is false.",
	}, h.Export.HandleArchive)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_preview",
		Description: "Render the preview for the last saved or generated code: the dev server URL when one runs, otherwise a single HTML document with inlined styles and scripts. Set download to also write the raw code as generated-app.html.",
	}, h.Preview.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_devserver_start",
		Description: "Write the workspace files as a project and start its dev server (npm run dev by default). The preview switches to the reported URL.",
	}, h.DevServer.HandleStart)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "workspace_devserver_stop",
		Description: "Stop the running dev server, or cancel one that is still starting, and return the preview to static content.",
	}, h.DevServer.HandleStop)

	return mcpServer
}

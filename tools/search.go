package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/workspace-mcp/index"
	"github.com/lexandro/workspace-mcp/workspace"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultContextLines = 2

// SearchArgs defines the input parameters for the workspace_search tool.
type SearchArgs struct {
	Query        string `json:"query" jsonschema:"Search query. Plain text for word match, quoted for exact phrase, /regex/ for regular expression"`
	FilePath     string `json:"filePath,omitempty" jsonschema:"Exact workspace file path to search in (overrides fileGlob)"`
	FileGlob     string `json:"fileGlob,omitempty" jsonschema:"Optional glob pattern to filter files (e.g. src/**/*.tsx)"`
	Language     string `json:"language,omitempty" jsonschema:"Only search files of this language (e.g. TypeScript, CSS)"`
	MaxResults   int    `json:"maxResults,omitempty" jsonschema:"Maximum number of file results to return (default 50)"`
	ContextLines *int   `json:"contextLines,omitempty" jsonschema:"Number of context lines before and after each match (default 2, 0 for none)"`
}

// SearchHandler runs content searches over the workspace files, including
// unsaved edits. Workspace is optional and only used to flag unsaved files.
type SearchHandler struct {
	ContentIndex *index.ContentIndex
	Workspace    *workspace.Workspace
	MaxResults   int
	Logger       *slog.Logger
}

// Handle processes a workspace_search request.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Query == "" {
		h.Logger.Warn("workspace_search called with empty query")
		return errorResult("Error: query parameter is required"), nil, nil
	}

	options := index.SearchOptions{
		Query:        args.Query,
		FilePath:     args.FilePath,
		FileGlob:     args.FileGlob,
		Language:     args.Language,
		MaxResults:   args.MaxResults,
		ContextLines: defaultContextLines,
	}
	if options.MaxResults <= 0 {
		options.MaxResults = h.MaxResults
	}
	if args.ContextLines != nil {
		options.ContextLines = *args.ContextLines
	}

	results, totalMatches, err := h.ContentIndex.Search(options)
	if err != nil {
		h.Logger.Error("workspace_search failed", "query", args.Query, "error", err)
		return errorResult("Search error: %v", err), nil, nil
	}

	h.Logger.Info("workspace_search",
		"query", args.Query,
		"filePath", args.FilePath,
		"fileGlob", args.FileGlob,
		"language", args.Language,
		"files", len(results),
		"matches", totalMatches,
		"elapsed", time.Since(start),
	)

	return textResult(FormatSearchResults(results, totalMatches, unsavedSet(h.Workspace))), nil, nil
}

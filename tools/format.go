package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/lexandro/workspace-mcp/index"
	"github.com/lexandro/workspace-mcp/vfs"
	"github.com/lexandro/workspace-mcp/workspace"
)

// FormatSearchResults groups matches by file with line numbers and
// context. Files in unsaved are flagged.
func FormatSearchResults(results []index.ContentSearchResult, totalMatches int, unsaved map[string]bool) string {
	if len(results) == 0 {
		return "No matches found."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d matches in %d files:\n\n", totalMatches, len(results)))

	for i, result := range results {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(fmt.Sprintf("── %s (%s%s) ──\n", result.RelativePath, result.Language, unsavedSuffix(unsaved[result.RelativePath])))

		for _, match := range result.Matches {
			for _, ctxLine := range match.ContextBefore {
				builder.WriteString(fmt.Sprintf("  %s\n", ctxLine))
			}
			builder.WriteString(fmt.Sprintf("  %d: %s\n", match.LineNumber, match.LineText))
			for _, ctxLine := range match.ContextAfter {
				builder.WriteString(fmt.Sprintf("  %s\n", ctxLine))
			}
		}
	}

	return builder.String()
}

// FormatFileResults lists files with language, content type, size and
// line count. nameOnly prints bare paths.
func FormatFileResults(files []*index.IndexedFile, nameOnly bool, unsaved map[string]bool) string {
	if len(files) == 0 {
		return "No files matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d files:\n\n", len(files)))

	for _, file := range files {
		if nameOnly {
			builder.WriteString(file.RelativePath)
			builder.WriteString("\n")
			continue
		}
		builder.WriteString(fmt.Sprintf("  %s  (%s, %s, %s, %dL%s)\n",
			file.RelativePath,
			file.Language,
			file.MIMEType,
			formatFileSize(file.SizeBytes),
			file.LineCount,
			unsavedSuffix(unsaved[file.RelativePath]),
		))
	}

	return builder.String()
}

func unsavedSuffix(unsaved bool) string {
	if unsaved {
		return ", unsaved"
	}
	return ""
}

// FormatFileContent numbers the lines of content. offset is the 1-based
// first line to show (0 means 1); limit caps the number of lines (0 means all).
func FormatFileContent(content string, offset int, limit int) string {
	lines := strings.Split(content, "\n")
	total := len(lines)

	if offset <= 0 {
		offset = 1
	}
	if offset > total {
		return fmt.Sprintf("Offset exceeds file length (%d lines)", total)
	}
	last := total
	if limit > 0 && offset-1+limit < total {
		last = offset - 1 + limit
	}

	width := len(fmt.Sprintf("%d", last))
	var builder strings.Builder
	for i := offset - 1; i < last; i++ {
		builder.WriteString(fmt.Sprintf("%*d: %s\n", width, i+1, lines[i]))
	}
	return builder.String()
}

// FormatFileHeader describes a file above its content.
func FormatFileHeader(filePath string, editorLanguage string, lineCount int, unsaved bool) string {
	state := ""
	if unsaved {
		state = ", unsaved"
	}
	return fmt.Sprintf("── %s (%s, %d lines%s) ──\n", filePath, editorLanguage, lineCount, state)
}

// FormatTabs renders the open tabs, marking the selected and unsaved ones.
func FormatTabs(snap workspace.Snapshot) string {
	if len(snap.Tabs) == 0 {
		return "Open tabs: (none)"
	}

	var builder strings.Builder
	builder.WriteString("Open tabs:\n")
	for _, tab := range snap.Tabs {
		marker := "  "
		if tab == snap.Selected {
			marker = "> "
		}
		builder.WriteString(marker)
		builder.WriteString(tab)
		if snap.IsUnsaved(tab) {
			builder.WriteString(" ●")
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

// FormatWorkspace renders the file tree followed by the open tabs.
func FormatWorkspace(snap workspace.Snapshot) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Files (%d):\n", snap.Files.Len()))
	builder.WriteString(vfs.RenderTree(snap.Tree, snap.UnsavedSet()))
	builder.WriteString("\n")
	builder.WriteString(FormatTabs(snap))
	return builder.String()
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}

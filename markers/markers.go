// Package markers splits a generated source blob into files using
// "// path/to/file.ext" marker lines, and joins files back into a blob.
package markers

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/lexandro/workspace-mcp/language"
	"github.com/lexandro/workspace-mcp/vfs"
)

// DefaultFile is the path used when a blob carries no markers.
const DefaultFile = "index.html"

// ErrBinary is returned for blobs that look like binary data.
var ErrBinary = errors.New("blob looks binary")

// Parse splits blob into a FileMap.
//
// Text before the first marker is dropped. Each body loses its leading and
// trailing blank lines. A repeated path keeps its first position and takes
// the last body. A blob without markers becomes a single DefaultFile entry.
func Parse(blob string) (*vfs.FileMap, error) {
	if language.IsBinaryText(blob) {
		return nil, ErrBinary
	}

	fm := vfs.NewFileMap()
	normalized := strings.ReplaceAll(blob, "\r\n", "\n")

	var current string
	var body []string
	found := false

	flush := func() error {
		if !found {
			return nil
		}
		if _, err := fm.Set(current, trimBlankLines(body)); err != nil {
			return fmt.Errorf("marker %q: %w", current, err)
		}
		return nil
	}

	for lineNo, line := range strings.Split(normalized, "\n") {
		token, ok := markerToken(line)
		if !ok {
			if found {
				body = append(body, line)
			}
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		p, err := vfs.NormalizePath(token)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
		current = p
		body = body[:0]
		found = true
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if !found {
		fm.Set(DefaultFile, blob)
	}
	return fm, nil
}

// ParseOrFallback never fails: when Parse errors, the whole blob becomes a
// single DefaultFile entry. The parse error is still returned for logging.
func ParseOrFallback(blob string) (*vfs.FileMap, error) {
	fm, err := Parse(blob)
	if err == nil {
		return fm, nil
	}
	fallback := vfs.NewFileMap()
	fallback.Set(DefaultFile, blob)
	return fallback, err
}

// Join serialises files into a blob that Parse splits back into the same map,
// provided no content starts or ends with blank lines or holds marker lines.
func Join(fm *vfs.FileMap) string {
	var builder strings.Builder
	fm.Range(func(p, content string) bool {
		builder.WriteString("// ")
		builder.WriteString(p)
		builder.WriteString("\n")
		builder.WriteString(content)
		builder.WriteString("\n\n")
		return true
	})
	return builder.String()
}

// LooksStructured reports whether blob holds a marker under src/ or components/,
// the layout of generated multi-file apps.
func LooksStructured(blob string) bool {
	for _, line := range strings.Split(blob, "\n") {
		token, ok := markerToken(strings.TrimRight(line, "\r"))
		if !ok {
			continue
		}
		token = strings.TrimPrefix(strings.TrimPrefix(token, "./"), "/")
		if strings.HasPrefix(token, "src/") || strings.HasPrefix(token, "components/") {
			return true
		}
	}
	return false
}

// Count returns the number of marker lines in blob.
func Count(blob string) int {
	n := 0
	for _, line := range strings.Split(blob, "\n") {
		if _, ok := markerToken(strings.TrimRight(line, "\r")); ok {
			n++
		}
	}
	return n
}

// markerToken extracts the path token from a marker line.
// A marker is "//", then spaces or tabs, then one path-like token with a
// dotted extension, and nothing else on the line.
func markerToken(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "//") {
		return "", false
	}
	rest := trimmed[2:]
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return "", false
	}

	token := strings.TrimSpace(rest)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	for _, r := range token {
		if !isPathRune(r) {
			return "", false
		}
	}

	base := path.Base(strings.ReplaceAll(token, "\\", "/"))
	dot := strings.LastIndexByte(base, '.')
	if dot < 0 || dot == len(base)-1 {
		return "", false
	}
	for _, r := range base[dot+1:] {
		if !isAlnum(r) {
			return "", false
		}
	}
	return token, true
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isPathRune(r rune) bool {
	if isAlnum(r) {
		return true
	}
	switch r {
	case '.', '_', '-', '/', '\\', '@', '+', '~', '[', ']', '$':
		return true
	}
	return false
}

// trimBlankLines joins lines after dropping leading and trailing
// whitespace-only lines.
func trimBlankLines(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

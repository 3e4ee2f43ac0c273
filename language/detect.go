package language

import (
	"path"
	"strings"
)

// Kind describes how a file extension is presented and served.
type Kind struct {
	Name   string // display name
	Editor string // editor syntax mode
	MIME   string // content type used for downloads
}

const (
	plaintextMode = "plaintext"
	defaultMIME   = "text/plain"
)

// Extensions maps lowercase extensions (without dot) to their kind.
var Extensions = map[string]Kind{
	// Web
	"html": {"HTML", "html", "text/html"},
	"htm":  {"HTML", "html", "text/html"},
	"css":  {"CSS", "css", "text/css"},
	"scss": {"SCSS", "scss", "text/x-scss"},
	"less": {"Less", "less", "text/x-less"},
	"svg":  {"SVG", "xml", "image/svg+xml"},
	"vue":  {"Vue", "html", "text/plain"},
	// JavaScript / TypeScript
	"js":  {"JavaScript", "javascript", "application/javascript"},
	"jsx": {"JavaScript", "javascript", "application/javascript"},
	"mjs": {"JavaScript", "javascript", "application/javascript"},
	"cjs": {"JavaScript", "javascript", "application/javascript"},
	"ts":  {"TypeScript", "typescript", "application/javascript"},
	"tsx": {"TypeScript", "typescript", "application/javascript"},
	"mts": {"TypeScript", "typescript", "application/javascript"},
	// Data / Config
	"json": {"JSON", "json", "application/json"},
	"yaml": {"YAML", "yaml", "application/yaml"},
	"yml":  {"YAML", "yaml", "application/yaml"},
	"toml": {"TOML", plaintextMode, "application/toml"},
	"xml":  {"XML", "xml", "application/xml"},
	"env":  {"Env", plaintextMode, defaultMIME},
	// Markup
	"md":  {"Markdown", "markdown", "text/markdown"},
	"mdx": {"Markdown", "markdown", "text/markdown"},
	"txt": {"Text", plaintextMode, defaultMIME},
	// Other sources that show up in generated projects
	"go":   {"Go", "go", defaultMIME},
	"py":   {"Python", "python", "text/x-python"},
	"sh":   {"Shell", "shell", "application/x-sh"},
	"sql":  {"SQL", "sql", "application/sql"},
	"rs":   {"Rust", "rust", defaultMIME},
	"java": {"Java", "java", defaultMIME},
}

// Lookup returns the kind for a file path. Unknown extensions report
// "Unknown", the plaintext editor mode and text/plain.
func Lookup(filePath string) Kind {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filePath), "."))
	if kind, ok := Extensions[ext]; ok {
		return kind
	}

	switch strings.ToLower(path.Base(filePath)) {
	case "dockerfile":
		return Kind{"Dockerfile", "dockerfile", defaultMIME}
	case "makefile", "gnumakefile":
		return Kind{"Makefile", plaintextMode, defaultMIME}
	case ".gitignore", ".gitattributes":
		return Kind{"Git Config", plaintextMode, defaultMIME}
	}
	return Kind{"Unknown", plaintextMode, defaultMIME}
}

// DetectLanguage returns the display language for a file path.
func DetectLanguage(filePath string) string {
	return Lookup(filePath).Name
}

// EditorLanguage returns the editor syntax mode for a file path.
func EditorLanguage(filePath string) string {
	return Lookup(filePath).Editor
}

// MIMEType returns the content type used when a file is downloaded.
func MIMEType(filePath string) string {
	return Lookup(filePath).MIME
}

// IsScript reports whether the file can run in a browser without a build step.
func IsScript(filePath string) bool {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".js", ".mjs":
		return true
	}
	return false
}

// NeedsBuild reports whether the file is script source that requires transpiling.
func NeedsBuild(filePath string) bool {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".jsx", ".ts", ".tsx", ".mts":
		return true
	}
	return false
}

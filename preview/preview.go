// Package preview turns generated code into something a browser can show:
// the dev-server URL when one is running, an assembled HTML document for
// multi-file projects, or the raw code otherwise.
package preview

import (
	"fmt"
	"html"
	"path"
	"strings"

	"github.com/lexandro/workspace-mcp/language"
	"github.com/lexandro/workspace-mcp/markers"
	"github.com/lexandro/workspace-mcp/vfs"
)

// Mode says how a Result should be shown.
type Mode string

const (
	ModeURL      Mode = "url"
	ModeDocument Mode = "document"
	ModeRaw      Mode = "raw"
	ModeError    Mode = "error"
)

const rootElement = `<div id="root"></div>`

// Result is a rendered preview.
type Result struct {
	Mode  Mode
	URL   string // set in ModeURL
	HTML  string // set in every other mode
	Err   error  // set in ModeError
	Files int    // files assembled in ModeDocument
}

// Render picks the preview mode for code. A running dev server wins over
// any static rendering.
func Render(code string, devURL string) Result {
	if devURL != "" {
		return Result{Mode: ModeURL, URL: devURL}
	}
	if !markers.LooksStructured(code) {
		return Result{Mode: ModeRaw, HTML: code}
	}

	fm, err := markers.Parse(code)
	if err != nil {
		return Failure(err)
	}
	return Result{Mode: ModeDocument, HTML: Document(fm), Files: fm.Len()}
}

// Failure renders err as a standalone error page.
func Failure(err error) Result {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Preview error</title></head>
<body>
<div style="color:#b00020;font-family:monospace;padding:1rem">
<h3>Preview error</h3>
<pre>%s</pre>
</div>
</body>
</html>
`, html.EscapeString(err.Error()))
	return Result{Mode: ModeError, HTML: page, Err: err}
}

// Document assembles a single HTML page from a multi-file project.
// Stylesheets go in the head, the first HTML file (or a root element)
// forms the body, plain scripts are inlined after it, and files that need
// a build step are listed as comments.
func Document(fm *vfs.FileMap) string {
	var styles, scripts []string
	body := ""

	fm.Range(func(p, content string) bool {
		switch ext := strings.ToLower(path.Ext(p)); {
		case ext == ".css":
			styles = append(styles, fmt.Sprintf("<style data-file=%q>\n%s\n</style>", p, content))
		case ext == ".html" || ext == ".htm":
			if body == "" {
				body = htmlBody(content)
			}
		case language.IsScript(p):
			scripts = append(scripts, fmt.Sprintf("<script data-file=%q>\n%s\n</script>", p, escapeScript(content)))
		case language.NeedsBuild(p):
			scripts = append(scripts, fmt.Sprintf("<!-- %s requires a build step and is not inlined -->", commentSafe(p)))
		}
		return true
	})
	if strings.TrimSpace(body) == "" {
		body = rootElement
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Generated App</title>\n")
	for _, s := range styles {
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n")
	for _, s := range scripts {
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// htmlBody returns the contents of the <body> element when content is a
// full document, otherwise content itself.
func htmlBody(content string) string {
	lower := strings.ToLower(content)
	start := strings.Index(lower, "<body")
	if start < 0 {
		return content
	}
	open := strings.Index(lower[start:], ">")
	if open < 0 {
		return content
	}
	inner := start + open + 1
	end := strings.LastIndex(lower, "</body>")
	if end < inner {
		return content[inner:]
	}
	return strings.TrimSpace(content[inner:end])
}

func escapeScript(content string) string {
	return strings.ReplaceAll(content, "</script", `<\/script`)
}

func commentSafe(s string) string {
	return strings.ReplaceAll(s, "--", "- -")
}

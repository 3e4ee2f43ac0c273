package preview

import (
	"errors"
	"strings"
	"testing"
)

const structured = `// index.html
<html><body><h1>Title</h1></body></html>

// src/styles/app.css
h1 { color: red; }

// src/main.js
console.log("ready");

// src/App.tsx
export default function App() { return null; }
`

func Test_Render_DevServerWins(t *testing.T) {
	r := Render(structured, "http://localhost:5173")
	if r.Mode != ModeURL || r.URL != "http://localhost:5173" || r.HTML != "" {
		t.Errorf("unexpected result: %+v", r)
	}
}

func Test_Render_RawForUnstructuredCode(t *testing.T) {
	code := "<h1>plain</h1>"
	r := Render(code, "")
	if r.Mode != ModeRaw || r.HTML != code {
		t.Errorf("unexpected result: %+v", r)
	}
}

func Test_Render_DocumentAssemblesFiles(t *testing.T) {
	r := Render(structured, "")
	if r.Mode != ModeDocument {
		t.Fatalf("expected document mode, got %s", r.Mode)
	}
	if r.Files != 4 {
		t.Errorf("expected 4 files, got %d", r.Files)
	}

	doc := r.HTML
	head := doc[:strings.Index(doc, "</head>")]
	if !strings.Contains(head, "h1 { color: red; }") {
		t.Error("expected css inlined in head")
	}
	if !strings.Contains(doc, "<h1>Title</h1>") || strings.Contains(doc, "<html><body>") {
		t.Error("expected body taken from index.html without its wrapper")
	}
	if !strings.Contains(doc, `console.log("ready");`) {
		t.Error("expected js inlined")
	}
	if strings.Contains(doc, "export default function App") {
		t.Error("expected tsx not inlined")
	}
	if !strings.Contains(doc, "<!-- src/App.tsx requires a build step") {
		t.Error("expected tsx placeholder comment")
	}
	if strings.Index(doc, "<h1>Title</h1>") > strings.Index(doc, `console.log("ready")`) {
		t.Error("expected scripts after body")
	}
}

func Test_Render_DocumentWithoutHTMLUsesRootElement(t *testing.T) {
	code := "// src/main.js\ndocument.getElementById('root').textContent = 'x';\n"
	r := Render(code, "")
	if r.Mode != ModeDocument {
		t.Fatalf("expected document mode, got %s", r.Mode)
	}
	if !strings.Contains(r.HTML, rootElement) {
		t.Error("expected root element in body")
	}
}

func Test_Render_ParseErrorYieldsErrorPage(t *testing.T) {
	code := "// src/a.js\nx\n// ../../etc/passwd.txt\ny\n"
	r := Render(code, "")
	if r.Mode != ModeError || r.Err == nil {
		t.Fatalf("expected error mode, got %+v", r)
	}
	if !strings.Contains(r.HTML, "Preview error") {
		t.Error("expected error page")
	}
}

func Test_Failure_EscapesMessage(t *testing.T) {
	r := Failure(errors.New(`<script>alert("x")</script>`))
	if strings.Contains(r.HTML, "<script>alert") {
		t.Error("expected message to be escaped")
	}
	if !strings.Contains(r.HTML, "&lt;script&gt;") {
		t.Errorf("expected escaped tag in %q", r.HTML)
	}
}

func Test_Document_EscapesClosingScriptTag(t *testing.T) {
	code := "// src/main.js\nconst s = \"</script>\";\n"
	r := Render(code, "")
	if strings.Count(r.HTML, "</script>") != 1 {
		t.Errorf("expected a single closing script tag, got %q", r.HTML)
	}
}

package index

import (
	"testing"
)

func newTestContentIndex(t *testing.T) *ContentIndex {
	t.Helper()
	ci, err := NewContentIndex()
	if err != nil {
		t.Fatalf("failed to create content index: %v", err)
	}
	t.Cleanup(func() { ci.Close() })
	return ci
}

func Test_ContentIndex_IndexAndSearch(t *testing.T) {
	ci := newTestContentIndex(t)

	err := ci.IndexFile("src/App.tsx", `import React from "react";

export default function App() {
  return <h1>hello world</h1>;
}`, "TypeScript")
	if err != nil {
		t.Fatalf("failed to index file: %v", err)
	}

	results, totalMatches, err := ci.Search(SearchOptions{Query: "hello", MaxResults: 10})
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(results) == 0 || totalMatches == 0 {
		t.Fatal("expected at least one match")
	}
	if results[0].RelativePath != "src/App.tsx" {
		t.Errorf("expected src/App.tsx, got %s", results[0].RelativePath)
	}
	if results[0].Matches[0].LineNumber != 4 {
		t.Errorf("expected match on line 4, got %d", results[0].Matches[0].LineNumber)
	}
}

func Test_ContentIndex_PhraseSearch(t *testing.T) {
	ci := newTestContentIndex(t)

	ci.IndexFile("index.html", `<body><p>hello world</p></body>`, "HTML")

	results, _, err := ci.Search(SearchOptions{Query: `"hello world"`, MaxResults: 10})
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected phrase match")
	}
}

func Test_ContentIndex_InvalidRegex(t *testing.T) {
	ci := newTestContentIndex(t)
	ci.IndexFile("a.js", "x", "JavaScript")

	if _, _, err := ci.Search(SearchOptions{Query: "/([a-z/"}); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func Test_ContentIndex_SearchWithContextLines(t *testing.T) {
	ci := newTestContentIndex(t)

	ci.IndexFile("styles.css", "a {}\nb {}\n.target {}\nc {}\nd {}", "CSS")

	results, _, err := ci.Search(SearchOptions{Query: "target", MaxResults: 10, ContextLines: 1})
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}

	match := results[0].Matches[0]
	if match.LineNumber != 3 {
		t.Errorf("expected line 3, got %d", match.LineNumber)
	}
	if len(match.ContextBefore) != 1 || match.ContextBefore[0] != "b {}" {
		t.Errorf("unexpected context before: %v", match.ContextBefore)
	}
	if len(match.ContextAfter) != 1 || match.ContextAfter[0] != "c {}" {
		t.Errorf("unexpected context after: %v", match.ContextAfter)
	}
}

func Test_ContentIndex_SearchWithFileGlob(t *testing.T) {
	ci := newTestContentIndex(t)

	ci.IndexFile("src/main.js", "hello from JS", "JavaScript")
	ci.IndexFile("src/app.ts", "hello from TypeScript", "TypeScript")

	results, _, err := ci.Search(SearchOptions{Query: "hello", FileGlob: "**/*.ts", MaxResults: 10})
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(results) != 1 || results[0].RelativePath != "src/app.ts" {
		t.Errorf("expected only src/app.ts, got %+v", results)
	}
}

func Test_ContentIndex_SearchWithFilePath_PrecedenceOverFileGlob(t *testing.T) {
	ci := newTestContentIndex(t)

	ci.IndexFile("main.js", "hello from main", "JavaScript")
	ci.IndexFile("app.ts", "hello from app", "TypeScript")

	results, _, err := ci.Search(SearchOptions{Query: "hello", FilePath: "app.ts", FileGlob: "*.js"})
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(results) != 1 || results[0].RelativePath != "app.ts" {
		t.Fatalf("expected app.ts only, got %+v", results)
	}
}

func Test_ContentIndex_ApplyChanges(t *testing.T) {
	ci := newTestContentIndex(t)
	ci.IndexFile("old.js", "old", "JavaScript")

	err := ci.ApplyChanges([]Change{
		{Path: "new.js", Content: "fresh", Language: "JavaScript"},
		{Path: "old.js", Remove: true},
	})
	if err != nil {
		t.Fatalf("ApplyChanges failed: %v", err)
	}

	if ci.DocumentCount() != 1 {
		t.Errorf("expected 1 document, got %d", ci.DocumentCount())
	}
	if _, ok := ci.GetFileContent("old.js"); ok {
		t.Error("expected old.js to be gone")
	}
	if content, ok := ci.GetFileContent("new.js"); !ok || content != "fresh" {
		t.Errorf("expected new.js content, got %q", content)
	}
}

func Test_ContentIndex_Clear(t *testing.T) {
	ci := newTestContentIndex(t)

	ci.IndexFile("a.js", "content a", "JavaScript")
	ci.IndexFile("b.js", "content b", "JavaScript")

	if err := ci.Clear(); err != nil {
		t.Fatalf("clear error: %v", err)
	}
	if ci.DocumentCount() != 0 {
		t.Errorf("expected 0 docs after clear, got %d", ci.DocumentCount())
	}
}

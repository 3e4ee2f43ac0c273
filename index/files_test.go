package index

import (
	"strings"
	"testing"

	"github.com/lexandro/workspace-mcp/vfs"
)

func newTestFile(relPath string, lang string, size int64) *IndexedFile {
	return &IndexedFile{
		RelativePath: relPath,
		Language:     lang,
		SizeBytes:    size,
		LineCount:    10,
	}
}

func Test_FileIndex_FilesInPathOrder(t *testing.T) {
	fi := NewFileIndex()
	fi.AddFile(newTestFile("src/b.js", "JavaScript", 1))
	fi.AddFile(newTestFile("index.html", "HTML", 1))
	fi.AddFile(newTestFile("src/a.js", "JavaScript", 1))
	fi.AddFile(newTestFile("src/b.js", "JavaScript", 2))

	all := fi.Files()
	want := []string{"index.html", "src/a.js", "src/b.js"}
	if len(all) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(all))
	}
	for i, f := range all {
		if f.RelativePath != want[i] {
			t.Fatalf("expected %v order, got %s at %d", want, f.RelativePath, i)
		}
	}
	if fi.GetFile("src/b.js").SizeBytes != 2 {
		t.Error("expected re-added file to replace its entry")
	}
}

func Test_FileIndex_RemoveFile(t *testing.T) {
	fi := NewFileIndex()
	fi.AddFile(newTestFile("src/main.js", "JavaScript", 1024))
	fi.AddFile(newTestFile("index.html", "HTML", 10))
	fi.RemoveFile("src/main.js")
	fi.RemoveFile("missing.js")

	if fi.FileCount() != 1 || fi.GetFile("src/main.js") != nil {
		t.Error("expected file to be removed")
	}
	if files := fi.Files(); len(files) != 1 || files[0].RelativePath != "index.html" {
		t.Errorf("unexpected remaining files %+v", files)
	}
}

func Test_FileIndex_Find(t *testing.T) {
	fi := NewFileIndex()
	fi.AddFile(newTestFile("src/App.tsx", "TypeScript", 1024))
	fi.AddFile(newTestFile("src/components/Nav.tsx", "TypeScript", 512))
	fi.AddFile(newTestFile("src/app.css", "CSS", 256))
	fi.AddFile(newTestFile("index.html", "HTML", 256))

	cases := []struct {
		name  string
		query FileQuery
		want  []string
	}{
		{"glob", FileQuery{Pattern: "**/*.tsx"}, []string{"src/App.tsx", "src/components/Nav.tsx"}},
		{"root only", FileQuery{Pattern: "*.html"}, []string{"index.html"}},
		{"language", FileQuery{Language: "css"}, []string{"src/app.css"}},
		{"glob and language", FileQuery{Pattern: "src/*", Language: "TypeScript"}, []string{"src/App.tsx"}},
		{"max results", FileQuery{Pattern: "**", MaxResults: 2}, []string{"index.html", "src/App.tsx"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			found, err := fi.Find(c.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got []string
			for _, f := range found {
				got = append(got, f.RelativePath)
			}
			if strings.Join(got, ",") != strings.Join(c.want, ",") {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func Test_FileIndex_Find_InvalidPattern(t *testing.T) {
	fi := NewFileIndex()
	if _, err := fi.Find(FileQuery{Pattern: "src/["}); err == nil {
		t.Error("expected invalid pattern error")
	}
}

func Test_FileIndex_Stats(t *testing.T) {
	fi := NewFileIndex()
	fi.AddFile(newTestFile("a.js", "JavaScript", 100))
	fi.AddFile(newTestFile("b.js", "JavaScript", 50))
	fi.AddFile(newTestFile("c.css", "CSS", 10))

	stats := fi.Stats()
	if stats.Files != 3 || stats.TotalBytes != 160 {
		t.Errorf("expected 3 files and 160 bytes, got %+v", stats)
	}
	if stats.Languages["JavaScript"] != 2 || stats.Languages["CSS"] != 1 {
		t.Errorf("unexpected language counts: %v", stats.Languages)
	}

	fi.Clear()
	if stats := fi.Stats(); stats.Files != 0 || len(fi.Files()) != 0 {
		t.Errorf("expected empty index after Clear, got %+v", stats)
	}
}

func Test_Sync_AddChangeRemove(t *testing.T) {
	fi := NewFileIndex()
	ci := newTestContentIndex(t)

	fm := vfs.NewFileMap()
	fm.Set("index.html", "<h1>hi</h1>")
	fm.Set("src/main.js", "run();\nstop();")

	result, err := Sync(fi, ci, fm)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Added != 2 || result.Total() != 2 {
		t.Errorf("expected 2 added, got %+v", result)
	}
	if f := fi.GetFile("src/main.js"); f == nil || f.LineCount != 2 || f.MIMEType != "application/javascript" {
		t.Errorf("unexpected indexed file: %+v", f)
	}

	next := vfs.NewFileMap()
	next.Set("index.html", "<h1>hi</h1>")
	next.Set("src/main.js", "run();")
	next.Set("src/app.css", "h1 {}")

	result, err = Sync(fi, ci, next)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Added != 1 || result.Changed != 1 || result.Removed != 0 {
		t.Errorf("unexpected second sync result: %+v", result)
	}

	empty := vfs.NewFileMap()
	result, _ = Sync(fi, ci, empty)
	if result.Removed != 3 {
		t.Errorf("expected 3 removed, got %+v", result)
	}
	if fi.FileCount() != 0 || ci.DocumentCount() != 0 {
		t.Error("expected both indexes empty")
	}
}

func Test_Sync_NoChanges(t *testing.T) {
	fi := NewFileIndex()
	ci := newTestContentIndex(t)
	fm := vfs.NewFileMap()
	fm.Set("a.js", "x")

	Sync(fi, ci, fm)
	result, _ := Sync(fi, ci, fm)
	if result.Total() != 0 {
		t.Errorf("expected no changes, got %+v", result)
	}
}

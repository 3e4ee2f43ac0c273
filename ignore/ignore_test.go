package ignore

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexandro/workspace-mcp/vfs"
)

func Test_Matcher_DefaultPatterns_NodeModules(t *testing.T) {
	matcher := NewMatcher(MatcherOptions{})

	if !matcher.ShouldIgnore("node_modules/react/index.js", false) {
		t.Error("expected node_modules files to be ignored")
	}
}

func Test_Matcher_DefaultPatterns_EditorSwap(t *testing.T) {
	matcher := NewMatcher(MatcherOptions{})

	if !matcher.ShouldIgnore("src/.App.tsx.swp", false) {
		t.Error("expected swap files to be ignored")
	}
	if !matcher.ShouldIgnore(".DS_STORE", false) {
		t.Error("expected default patterns to be case-insensitive")
	}
}

func Test_Matcher_DefaultPatterns_AllowsSourceFiles(t *testing.T) {
	matcher := NewMatcher(MatcherOptions{})

	for _, p := range []string{"src/App.tsx", "index.html", "package.json", "styles/main.css"} {
		if matcher.ShouldIgnore(p, false) {
			t.Errorf("expected %s NOT to be ignored", p)
		}
	}
}

func Test_Matcher_CustomPatterns(t *testing.T) {
	matcher := NewMatcher(MatcherOptions{CustomPatterns: []string{"*.snap", "fixtures"}})

	if !matcher.ShouldIgnore("src/__snapshots__/App.snap", false) {
		t.Error("expected custom glob to match base name")
	}
	if !matcher.ShouldIgnore("test/fixtures/data.json", false) {
		t.Error("expected custom name to match a path component")
	}
}

func Test_Matcher_WorkspaceGitignore(t *testing.T) {
	fm := vfs.NewFileMap()
	fm.Set(".gitignore", "*.generated.ts\nsecret/\n")
	fm.Set("src/api.generated.ts", "x")
	fm.Set("src/api.ts", "y")
	fm.Set("secret/key.txt", "z")

	matcher := NewMatcher(MatcherOptions{}).ForFiles(fm)

	if !matcher.ShouldIgnore("src/api.generated.ts", false) {
		t.Error("expected workspace .gitignore to ignore *.generated.ts")
	}
	if matcher.ShouldIgnore("src/api.ts", false) {
		t.Error("expected src/api.ts NOT to be ignored")
	}
	if !matcher.ShouldIgnore("secret", true) {
		t.Error("expected secret/ directory to be ignored")
	}
}

func Test_Matcher_ForFilesDoesNotMutateOriginal(t *testing.T) {
	fm := vfs.NewFileMap()
	fm.Set(".gitignore", "*.ts\n")

	base := NewMatcher(MatcherOptions{})
	_ = base.ForFiles(fm)

	if base.ShouldIgnore("main.ts", false) {
		t.Error("expected base matcher to stay unbound")
	}
}

func Test_Matcher_Filter(t *testing.T) {
	fm := vfs.NewFileMap()
	fm.Set(".gitignore", "*.local\n")
	fm.Set("index.html", "a")
	fm.Set("config.local", "b")
	fm.Set("dist/bundle.js", "c")
	fm.Set("src/main.js", "d")

	kept := NewMatcher(MatcherOptions{}).Filter(fm)
	got := strings.Join(kept, ",")
	if got != ".gitignore,index.html,src/main.js" {
		t.Errorf("unexpected filter result: %s", got)
	}
}

func Test_Matcher_FileSizeLimit(t *testing.T) {
	matcher := NewMatcher(MatcherOptions{MaxFileSizeBytes: 1024})

	if !matcher.IsFileTooLarge(2048) {
		t.Error("expected 2KB file to exceed 1KB limit")
	}
	if matcher.IsFileTooLarge(512) {
		t.Error("expected 512B file to be within 1KB limit")
	}
	if NewMatcher(MatcherOptions{}).MaxFileSizeBytes() != 1024*1024 {
		t.Error("expected default max file size of 1MB")
	}
}

func Test_Rooted_ShouldIgnoreDir(t *testing.T) {
	root := t.TempDir()
	rooted := NewMatcher(MatcherOptions{}).Under(root)

	tests := []struct {
		dirName string
		ignored bool
	}{
		{".git", true},
		{"node_modules", true},
		{".vite", true},
		{"drafts", false},
	}
	for _, tt := range tests {
		got := rooted.ShouldIgnoreDir(filepath.Join(root, tt.dirName))
		if got != tt.ignored {
			t.Errorf("ShouldIgnoreDir(%s) = %v, want %v", tt.dirName, got, tt.ignored)
		}
	}
}

func Test_Rooted_ShouldIgnorePath(t *testing.T) {
	root := t.TempDir()
	rooted := NewMatcher(MatcherOptions{}).Under(root)

	if !rooted.ShouldIgnorePath(filepath.Join(root, "blob.txt.tmp")) {
		t.Error("expected temp file to be ignored")
	}
	if rooted.ShouldIgnorePath(filepath.Join(root, "blob.txt")) {
		t.Error("expected blob.txt NOT to be ignored")
	}
}

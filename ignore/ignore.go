package ignore

import (
	"path"
	"path/filepath"
	"strings"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/lexandro/workspace-mcp/vfs"
)

// GitignoreFile is the workspace file whose rules apply to exports.
const GitignoreFile = ".gitignore"

// Matcher decides whether a workspace-relative path is excluded.
// It combines DefaultPatterns, custom CLI patterns and, when bound to a
// file set, that set's own .gitignore. A Matcher is immutable; ForFiles
// returns a bound copy.
type Matcher struct {
	customPatterns   []string
	maxFileSizeBytes int64
	gitIgnore        gitignore.GitIgnore
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	CustomPatterns   []string
	MaxFileSizeBytes int64
}

// NewMatcher creates a matcher with default and custom patterns.
func NewMatcher(options MatcherOptions) *Matcher {
	m := &Matcher{
		customPatterns:   options.CustomPatterns,
		maxFileSizeBytes: options.MaxFileSizeBytes,
	}
	if m.maxFileSizeBytes <= 0 {
		m.maxFileSizeBytes = 1024 * 1024 // 1MB default
	}
	return m
}

// ForFiles returns a copy of m that also honours the .gitignore inside fm.
func (m *Matcher) ForFiles(fm *vfs.FileMap) *Matcher {
	bound := *m
	bound.gitIgnore = nil
	if content, ok := fm.Get(GitignoreFile); ok && strings.TrimSpace(content) != "" {
		bound.gitIgnore = gitignore.New(strings.NewReader(content), "/", nil)
	}
	return &bound
}

// ShouldIgnore reports whether relativePath (forward slashes) is excluded.
func (m *Matcher) ShouldIgnore(relativePath string, isDir bool) bool {
	relativePath = strings.TrimPrefix(filepath.ToSlash(relativePath), "/")

	if matchesAny(DefaultPatterns, relativePath, true) {
		return true
	}
	if m.gitIgnore != nil {
		if match := m.gitIgnore.Relative(relativePath, isDir); match != nil && match.Ignore() {
			return true
		}
	}
	return matchesAny(m.customPatterns, relativePath, false)
}

// IsFileTooLarge returns true if size exceeds the configured limit.
func (m *Matcher) IsFileTooLarge(size int64) bool {
	return size > m.maxFileSizeBytes
}

// MaxFileSizeBytes returns the configured maximum file size.
func (m *Matcher) MaxFileSizeBytes() int64 {
	return m.maxFileSizeBytes
}

// Filter returns the paths of fm that are not ignored, in insertion order.
func (m *Matcher) Filter(fm *vfs.FileMap) []string {
	bound := m.ForFiles(fm)
	var kept []string
	fm.Range(func(p, _ string) bool {
		if !bound.ShouldIgnore(p, false) {
			kept = append(kept, p)
		}
		return true
	})
	return kept
}

// matchesAny checks relativePath against patterns. Plain names match any
// path component; glob patterns match the base name or the whole path.
func matchesAny(patterns []string, relativePath string, foldCase bool) bool {
	subject := relativePath
	if foldCase {
		subject = strings.ToLower(subject)
	}
	base := path.Base(subject)
	parts := strings.Split(subject, "/")

	for _, pattern := range patterns {
		if foldCase {
			pattern = strings.ToLower(pattern)
		}
		if !strings.ContainsAny(pattern, "*?[") {
			for _, part := range parts {
				if part == pattern {
					return true
				}
			}
			continue
		}
		if matched, err := path.Match(pattern, base); err == nil && matched {
			return true
		}
		if matched, err := path.Match(pattern, subject); err == nil && matched {
			return true
		}
	}
	return false
}

// Rooted adapts a Matcher to absolute paths under rootDir, for watching
// a directory on disk.
type Rooted struct {
	*Matcher
	rootDir string
}

// Under binds the matcher to a directory on disk.
func (m *Matcher) Under(rootDir string) *Rooted {
	return &Rooted{Matcher: m, rootDir: rootDir}
}

// ShouldIgnorePath reports whether an absolute file path is excluded.
func (r *Rooted) ShouldIgnorePath(absolutePath string) bool {
	rel, err := filepath.Rel(r.rootDir, absolutePath)
	if err != nil {
		rel = absolutePath
	}
	return r.Matcher.ShouldIgnore(filepath.ToSlash(rel), false)
}

// ShouldIgnoreDir reports whether a directory should be skipped entirely.
func (r *Rooted) ShouldIgnoreDir(absolutePath string) bool {
	if skipDirs[filepath.Base(absolutePath)] {
		return true
	}
	rel, err := filepath.Rel(r.rootDir, absolutePath)
	if err != nil {
		rel = absolutePath
	}
	return r.Matcher.ShouldIgnore(filepath.ToSlash(rel), true)
}

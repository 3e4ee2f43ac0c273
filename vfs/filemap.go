package vfs

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrInvalidPath is returned for empty paths or paths that escape the workspace root.
	ErrInvalidPath = errors.New("invalid path")
	// ErrPathConflict is returned when a path would be both a file and a directory.
	ErrPathConflict = errors.New("path conflicts with existing entry")
)

// FileMap maps virtual file paths to their content.
// Paths are forward-slash separated and relative to the workspace root.
// Iteration follows insertion order; replacing a path keeps its position.
type FileMap struct {
	order    []string
	contents map[string]string
	// dirs counts how many files live under each directory prefix
	dirs map[string]int
}

// NewFileMap creates an empty FileMap.
func NewFileMap() *FileMap {
	return &FileMap{
		contents: make(map[string]string),
		dirs:     make(map[string]int),
	}
}

// NormalizePath cleans a raw path into FileMap key form.
// Backslashes become slashes and leading "./" or "/" are dropped.
func NormalizePath(raw string) (string, error) {
	p := strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	p = path.Clean(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: %q escapes the workspace root", ErrInvalidPath, raw)
	}
	return p, nil
}

// Set adds or replaces a file. The path is normalized first.
func (fm *FileMap) Set(rawPath string, content string) (string, error) {
	p, err := NormalizePath(rawPath)
	if err != nil {
		return "", err
	}

	if _, exists := fm.contents[p]; exists {
		fm.contents[p] = content
		return p, nil
	}

	if fm.dirs[p] > 0 {
		return "", fmt.Errorf("%w: %s is a directory", ErrPathConflict, p)
	}
	for _, dir := range parentDirs(p) {
		if _, isFile := fm.contents[dir]; isFile {
			return "", fmt.Errorf("%w: %s is a file", ErrPathConflict, dir)
		}
	}

	fm.contents[p] = content
	fm.order = append(fm.order, p)
	for _, dir := range parentDirs(p) {
		fm.dirs[dir]++
	}
	return p, nil
}

// Get returns the content of a file.
func (fm *FileMap) Get(p string) (string, bool) {
	content, ok := fm.contents[p]
	return content, ok
}

// Has reports whether p is a file in the map.
func (fm *FileMap) Has(p string) bool {
	_, ok := fm.contents[p]
	return ok
}

// IsDir reports whether p is a directory prefix of at least one file.
func (fm *FileMap) IsDir(p string) bool {
	return fm.dirs[p] > 0
}

// Len returns the number of files.
func (fm *FileMap) Len() int {
	return len(fm.order)
}

// Paths returns file paths in insertion order.
func (fm *FileMap) Paths() []string {
	out := make([]string, len(fm.order))
	copy(out, fm.order)
	return out
}

// First returns the first inserted path, or "" when empty.
func (fm *FileMap) First() string {
	if len(fm.order) == 0 {
		return ""
	}
	return fm.order[0]
}

// Range calls fn for each file in insertion order until fn returns false.
func (fm *FileMap) Range(fn func(p, content string) bool) {
	for _, p := range fm.order {
		if !fn(p, fm.contents[p]) {
			return
		}
	}
}

// TotalSize returns the summed byte length of all contents.
func (fm *FileMap) TotalSize() int64 {
	var total int64
	for _, content := range fm.contents {
		total += int64(len(content))
	}
	return total
}

// Clone returns a deep copy.
func (fm *FileMap) Clone() *FileMap {
	out := &FileMap{
		order:    make([]string, len(fm.order)),
		contents: make(map[string]string, len(fm.contents)),
		dirs:     make(map[string]int, len(fm.dirs)),
	}
	copy(out.order, fm.order)
	for k, v := range fm.contents {
		out.contents[k] = v
	}
	for k, v := range fm.dirs {
		out.dirs[k] = v
	}
	return out
}

// Equal reports whether both maps hold the same paths with the same contents.
// Insertion order is not compared.
func (fm *FileMap) Equal(other *FileMap) bool {
	if fm.Len() != other.Len() {
		return false
	}
	for p, content := range fm.contents {
		otherContent, ok := other.contents[p]
		if !ok || otherContent != content {
			return false
		}
	}
	return true
}

// parentDirs returns every directory prefix of p, shallowest first.
// "src/components/App.tsx" yields ["src", "src/components"].
func parentDirs(p string) []string {
	var dirs []string
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			dirs = append(dirs, p[:i])
		}
	}
	return dirs
}

package index

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// IndexedFile describes one workspace file in the path index.
type IndexedFile struct {
	RelativePath string // workspace path (forward slashes)
	Language     string // display language
	MIMEType     string // download content type
	SizeBytes    int64
	LineCount    int
}

// FileIndex holds the metadata of every indexed workspace file.
// Paths are sorted lazily, on the first lookup after a change.
type FileIndex struct {
	mu     sync.Mutex
	files  map[string]*IndexedFile
	paths  []string
	sorted bool
}

// NewFileIndex creates an empty index.
func NewFileIndex() *FileIndex {
	return &FileIndex{files: make(map[string]*IndexedFile), sorted: true}
}

// AddFile adds or replaces the entry for file.RelativePath.
func (fi *FileIndex) AddFile(file *IndexedFile) {
	fi.mu.Lock()
	defer fi.mu.Unlock()

	if _, exists := fi.files[file.RelativePath]; !exists {
		fi.paths = append(fi.paths, file.RelativePath)
		fi.sorted = false
	}
	fi.files[file.RelativePath] = file
}

// RemoveFile drops relativePath from the index.
func (fi *FileIndex) RemoveFile(relativePath string) {
	fi.mu.Lock()
	defer fi.mu.Unlock()

	if _, exists := fi.files[relativePath]; !exists {
		return
	}
	delete(fi.files, relativePath)
	for i, p := range fi.paths {
		if p == relativePath {
			fi.paths = append(fi.paths[:i], fi.paths[i+1:]...)
			break
		}
	}
}

// GetFile returns the entry for relativePath, or nil.
func (fi *FileIndex) GetFile(relativePath string) *IndexedFile {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	return fi.files[relativePath]
}

// FileCount returns the number of indexed files.
func (fi *FileIndex) FileCount() int {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	return len(fi.files)
}

// FileStats summarizes the index for the status report.
type FileStats struct {
	Files      int
	TotalBytes int64
	Languages  map[string]int // language -> file count
}

// Stats returns file, size and per-language totals.
func (fi *FileIndex) Stats() FileStats {
	fi.mu.Lock()
	defer fi.mu.Unlock()

	stats := FileStats{Files: len(fi.files), Languages: make(map[string]int)}
	for _, file := range fi.files {
		stats.TotalBytes += file.SizeBytes
		stats.Languages[file.Language]++
	}
	return stats
}

// FileQuery selects files by path glob and language.
type FileQuery struct {
	Pattern    string // doublestar glob; empty matches every path
	Language   string // display language, case-insensitive; empty matches all
	MaxResults int    // defaults to 50
}

// Find returns the files matching q in path order.
func (fi *FileIndex) Find(q FileQuery) ([]*IndexedFile, error) {
	pattern := strings.ReplaceAll(q.Pattern, "\\", "/")
	if pattern == "" {
		pattern = "**"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}
	if q.MaxResults <= 0 {
		q.MaxResults = 50
	}

	fi.mu.Lock()
	defer fi.mu.Unlock()

	var found []*IndexedFile
	for _, p := range fi.orderedLocked() {
		if len(found) >= q.MaxResults {
			break
		}
		file := fi.files[p]
		if q.Language != "" && !strings.EqualFold(file.Language, q.Language) {
			continue
		}
		if matched, _ := doublestar.Match(pattern, p); matched {
			found = append(found, file)
		}
	}
	return found, nil
}

// Files returns every indexed file in path order.
func (fi *FileIndex) Files() []*IndexedFile {
	fi.mu.Lock()
	defer fi.mu.Unlock()

	paths := fi.orderedLocked()
	out := make([]*IndexedFile, len(paths))
	for i, p := range paths {
		out[i] = fi.files[p]
	}
	return out
}

// Clear empties the index.
func (fi *FileIndex) Clear() {
	fi.mu.Lock()
	defer fi.mu.Unlock()

	fi.files = make(map[string]*IndexedFile)
	fi.paths = nil
	fi.sorted = true
}

func (fi *FileIndex) orderedLocked() []string {
	if !fi.sorted {
		sort.Strings(fi.paths)
		fi.sorted = true
	}
	return fi.paths
}

package index

import (
	"strings"
	"time"

	"github.com/lexandro/workspace-mcp/language"
	"github.com/lexandro/workspace-mcp/vfs"
)

// SyncResult holds the outcome of bringing the indexes in line with a file set.
type SyncResult struct {
	Added    int // files new to the index
	Changed  int // files whose content differs
	Removed  int // files no longer in the workspace
	Duration time.Duration
}

// Total returns the number of paths touched.
func (r SyncResult) Total() int {
	return r.Added + r.Changed + r.Removed
}

// Sync updates both indexes so they hold exactly the files of fm.
// Only differing paths are re-indexed.
func Sync(fileIndex *FileIndex, contentIndex *ContentIndex, fm *vfs.FileMap) (SyncResult, error) {
	start := time.Now()
	var result SyncResult

	indexed := contentIndex.Contents()
	var changes []Change

	fm.Range(func(p, content string) bool {
		previous, exists := indexed[p]
		switch {
		case !exists:
			result.Added++
		case previous != content:
			result.Changed++
		default:
			return true
		}
		changes = append(changes, Change{Path: p, Content: content, Language: language.DetectLanguage(p)})
		return true
	})

	for p := range indexed {
		if !fm.Has(p) {
			changes = append(changes, Change{Path: p, Remove: true})
			result.Removed++
		}
	}

	if err := contentIndex.ApplyChanges(changes); err != nil {
		return result, err
	}

	for _, change := range changes {
		if change.Remove {
			fileIndex.RemoveFile(change.Path)
			continue
		}
		fileIndex.AddFile(describe(change.Path, change.Content))
	}

	result.Duration = time.Since(start)
	return result, nil
}

func describe(p, content string) *IndexedFile {
	kind := language.Lookup(p)
	return &IndexedFile{
		RelativePath: p,
		Language:     kind.Name,
		MIMEType:     kind.MIME,
		SizeBytes:    int64(len(content)),
		LineCount:    strings.Count(content, "\n") + 1,
	}
}

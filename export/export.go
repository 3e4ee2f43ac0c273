// Package export writes workspace files to disk: single-file downloads,
// the raw generated document and zip archives of the whole project.
package export

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/lexandro/workspace-mcp/ignore"
	"github.com/lexandro/workspace-mcp/language"
	"github.com/lexandro/workspace-mcp/vfs"
)

const (
	// ArchiveName is the default archive file name.
	ArchiveName = "project.zip"
	// PreviewName is the file name of the raw generated document.
	PreviewName = "generated-app.html"
)

var (
	ErrNothingToExport = errors.New("nothing to export")
	ErrNotFound        = errors.New("file not found")
)

// Download describes one written file.
type Download struct {
	Name     string // file name offered to the user
	Path     string // where it was written
	MIMEType string
	Size     int64
}

// ArchiveResult describes a written archive.
type ArchiveResult struct {
	Path    string
	Files   int
	Skipped []string
	Size    int64
}

// File writes one workspace file into dir under its base name and reports
// the content type inferred from its extension.
func File(fm *vfs.FileMap, p string, dir string) (Download, error) {
	content, ok := fm.Get(p)
	if !ok {
		return Download{}, fmt.Errorf("%w: %s", ErrNotFound, p)
	}

	name := path.Base(p)
	dest := filepath.Join(dir, name)
	if err := writeAtomic(dest, []byte(content)); err != nil {
		return Download{}, err
	}
	return Download{
		Name:     name,
		Path:     dest,
		MIMEType: language.MIMEType(p),
		Size:     int64(len(content)),
	}, nil
}

// PreviewDocument writes the raw generated code as an HTML document.
func PreviewDocument(code string, dir string) (Download, error) {
	if code == "" {
		return Download{}, ErrNothingToExport
	}
	dest := filepath.Join(dir, PreviewName)
	if err := writeAtomic(dest, []byte(code)); err != nil {
		return Download{}, err
	}
	return Download{Name: PreviewName, Path: dest, MIMEType: "text/html", Size: int64(len(code))}, nil
}

// Archive writes every file of fm into a zip at dest, keeping the folder
// structure. When matcher is non-nil, ignored paths are skipped and listed.
func Archive(fm *vfs.FileMap, dest string, matcher *ignore.Matcher) (ArchiveResult, error) {
	if fm.Len() == 0 {
		return ArchiveResult{}, ErrNothingToExport
	}

	paths := fm.Paths()
	result := ArchiveResult{Path: dest}
	if matcher != nil {
		kept := matcher.Filter(fm)
		keptSet := make(map[string]bool, len(kept))
		for _, p := range kept {
			keptSet[p] = true
		}
		for _, p := range paths {
			if !keptSet[p] {
				result.Skipped = append(result.Skipped, p)
			}
		}
		paths = kept
	}
	if len(paths) == 0 {
		return result, ErrNothingToExport
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return result, fmt.Errorf("creating archive directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".project-*.zip")
	if err != nil {
		return result, fmt.Errorf("creating temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	zw := zip.NewWriter(tmp)
	modified := time.Now()
	for _, p := range paths {
		content, _ := fm.Get(p)
		header := &zip.FileHeader{Name: p, Method: zip.Deflate, Modified: modified}
		header.SetMode(0644)
		w, err := zw.CreateHeader(header)
		if err != nil {
			cleanup()
			return result, fmt.Errorf("adding %s to archive: %w", p, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			cleanup()
			return result, fmt.Errorf("writing %s to archive: %w", p, err)
		}
		result.Files++
	}
	if err := zw.Close(); err != nil {
		cleanup()
		return result, fmt.Errorf("finishing archive: %w", err)
	}

	info, err := tmp.Stat()
	if err == nil {
		result.Size = info.Size()
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return result, fmt.Errorf("closing archive: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return result, fmt.Errorf("renaming %s to %s: %w", tmpPath, dest, err)
	}
	return result, nil
}

// Materialize writes every file of fm under dir, creating directories.
func Materialize(fm *vfs.FileMap, dir string) error {
	var err error
	fm.Range(func(p, content string) bool {
		dest := filepath.Join(dir, filepath.FromSlash(p))
		if mkErr := os.MkdirAll(filepath.Dir(dest), 0755); mkErr != nil {
			err = fmt.Errorf("creating directory for %s: %w", p, mkErr)
			return false
		}
		if wErr := os.WriteFile(dest, []byte(content), 0644); wErr != nil {
			err = fmt.Errorf("writing %s: %w", p, wErr)
			return false
		}
		return true
	})
	return err
}

// writeAtomic writes to a temp file in the same directory, then renames.
func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmpFile, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, dest, err)
	}
	return nil
}

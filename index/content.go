package index

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// ContentIndex provides full-text search over workspace files using an
// in-memory Bleve index.
type ContentIndex struct {
	mu    sync.RWMutex
	index bleve.Index
	// fileContents keeps raw content for line-level result extraction
	fileContents map[string]string
}

// NewContentIndex creates a new in-memory Bleve content index.
func NewContentIndex() (*ContentIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}

	return &ContentIndex{
		index:        bleveIndex,
		fileContents: make(map[string]string),
	}, nil
}

// bleveDocument is the document structure stored in Bleve.
type bleveDocument struct {
	Content  string `json:"content"`
	Path     string `json:"path"`
	Language string `json:"language"`
}

// buildIndexMapping creates the Bleve index mapping for source content.
func buildIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Store = false // content lives in fileContents
	contentFieldMapping.IncludeInAll = true
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	pathFieldMapping := bleve.NewTextFieldMapping()
	pathFieldMapping.Store = true
	pathFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("path", pathFieldMapping)

	langFieldMapping := bleve.NewKeywordFieldMapping()
	langFieldMapping.Store = true
	langFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("language", langFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// IndexFile adds or updates a file's content in the search index.
func (ci *ContentIndex) IndexFile(relativePath string, content string, language string) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	if err := ci.index.Index(relativePath, bleveDocument{Content: content, Path: relativePath, Language: language}); err != nil {
		return fmt.Errorf("indexing file %s: %w", relativePath, err)
	}
	ci.fileContents[relativePath] = content
	return nil
}

// RemoveFile removes a file from the search index.
func (ci *ContentIndex) RemoveFile(relativePath string) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	delete(ci.fileContents, relativePath)
	if err := ci.index.Delete(relativePath); err != nil {
		return fmt.Errorf("removing file %s from index: %w", relativePath, err)
	}
	return nil
}

// Change is one entry of an ApplyChanges batch. Remove deletes the path.
type Change struct {
	Path     string
	Content  string
	Language string
	Remove   bool
}

// ApplyChanges writes a set of changes as a single Bleve batch.
func (ci *ContentIndex) ApplyChanges(changes []Change) error {
	if len(changes) == 0 {
		return nil
	}

	ci.mu.Lock()
	defer ci.mu.Unlock()

	batch := ci.index.NewBatch()
	for _, change := range changes {
		if change.Remove {
			batch.Delete(change.Path)
			continue
		}
		doc := bleveDocument{Content: change.Content, Path: change.Path, Language: change.Language}
		if err := batch.Index(change.Path, doc); err != nil {
			return fmt.Errorf("batching %s: %w", change.Path, err)
		}
	}
	if err := ci.index.Batch(batch); err != nil {
		return fmt.Errorf("applying index batch: %w", err)
	}

	for _, change := range changes {
		if change.Remove {
			delete(ci.fileContents, change.Path)
		} else {
			ci.fileContents[change.Path] = change.Content
		}
	}
	return nil
}

// Contents returns a copy of the indexed path → content map.
func (ci *ContentIndex) Contents() map[string]string {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	out := make(map[string]string, len(ci.fileContents))
	for k, v := range ci.fileContents {
		out[k] = v
	}
	return out
}

// DocumentCount returns the number of documents in the Bleve index.
func (ci *ContentIndex) DocumentCount() uint64 {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	count, _ := ci.index.DocCount()
	return count
}

// Close closes the Bleve index.
func (ci *ContentIndex) Close() error {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	return ci.index.Close()
}

// GetFileContent returns the raw content of an indexed file.
func (ci *ContentIndex) GetFileContent(relativePath string) (string, bool) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	content, ok := ci.fileContents[strings.ReplaceAll(relativePath, "\\", "/")]
	return content, ok
}

// Clear removes all documents and recreates the index.
func (ci *ContentIndex) Clear() error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	if err := ci.index.Close(); err != nil {
		return fmt.Errorf("closing old index: %w", err)
	}
	newIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("creating new index: %w", err)
	}

	ci.index = newIndex
	ci.fileContents = make(map[string]string)
	return nil
}

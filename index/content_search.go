package index

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/lexandro/workspace-mcp/language"
)

// ContentSearchResult holds the matches within one file.
type ContentSearchResult struct {
	RelativePath string
	Language     string
	Matches      []LineMatch
}

// LineMatch represents a single line match within a file.
type LineMatch struct {
	LineNumber    int
	LineText      string
	ContextBefore []string
	ContextAfter  []string
}

// SearchOptions configures a content search.
type SearchOptions struct {
	Query        string
	FilePath     string // exact path; overrides FileGlob
	FileGlob     string
	Language     string // display language, case-insensitive
	MaxResults   int
	ContextLines int
}

// Search performs a full-text search across all indexed files.
// Query format:
//   - Plain text: match query (word-level matching)
//   - "quoted text": phrase query (exact phrase match)
//   - /regex/: regexp query
func (ci *ContentIndex) Search(options SearchOptions) ([]ContentSearchResult, int, error) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}
	if options.ContextLines < 0 {
		options.ContextLines = 0
	}

	lineMatcher, err := newLineMatcher(options.Query)
	if err != nil {
		return nil, 0, err
	}

	searchRequest := bleve.NewSearchRequest(buildQuery(options.Query))
	searchRequest.Size = options.MaxResults * 5 // headroom for path filtering
	searchRequest.Fields = []string{"path", "language"}

	searchResults, err := ci.index.Search(searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("searching index: %w", err)
	}

	normalizedFilePath := strings.ReplaceAll(options.FilePath, "\\", "/")
	normalizedGlob := strings.ReplaceAll(options.FileGlob, "\\", "/")

	var results []ContentSearchResult
	totalMatches := 0

	for _, hit := range searchResults.Hits {
		relativePath := hit.ID
		content, ok := ci.fileContents[relativePath]
		if !ok {
			continue
		}

		if normalizedFilePath != "" {
			if relativePath != normalizedFilePath {
				continue
			}
		} else if normalizedGlob != "" {
			matched, matchErr := doublestar.Match(normalizedGlob, relativePath)
			if matchErr != nil || !matched {
				continue
			}
		}

		fileLanguage := language.DetectLanguage(relativePath)
		if options.Language != "" && !strings.EqualFold(fileLanguage, options.Language) {
			continue
		}

		lineMatches := findMatchingLines(content, lineMatcher, options.ContextLines)
		if len(lineMatches) == 0 {
			continue
		}

		totalMatches += len(lineMatches)
		results = append(results, ContentSearchResult{RelativePath: relativePath, Language: fileLanguage, Matches: lineMatches})

		if len(results) >= options.MaxResults {
			break
		}
	}

	return results, totalMatches, nil
}

// buildQuery parses the query string into a Bleve query.
func buildQuery(queryString string) query.Query {
	queryString = strings.TrimSpace(queryString)

	if pattern, ok := unwrap(queryString, "/"); ok {
		return bleve.NewRegexpQuery(pattern)
	}
	if phrase, ok := unwrap(queryString, "\""); ok {
		return bleve.NewMatchPhraseQuery(phrase)
	}
	return bleve.NewMatchQuery(queryString)
}

// unwrap strips a matching delimiter pair from s.
func unwrap(s, delim string) (string, bool) {
	if len(s) > 2 && strings.HasPrefix(s, delim) && strings.HasSuffix(s, delim) {
		return s[1 : len(s)-1], true
	}
	return "", false
}

// lineMatcher tests individual lines after Bleve has picked candidate files.
type lineMatcher func(line string) bool

func newLineMatcher(queryString string) (lineMatcher, error) {
	queryString = strings.TrimSpace(queryString)

	if pattern, ok := unwrap(queryString, "/"); ok {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
		}
		return re.MatchString, nil
	}

	term := queryString
	if phrase, ok := unwrap(queryString, "\""); ok {
		term = phrase
	}
	term = strings.ToLower(term)
	return func(line string) bool {
		return strings.Contains(strings.ToLower(line), term)
	}, nil
}

// findMatchingLines returns every matching line with its context.
func findMatchingLines(content string, matches lineMatcher, contextLines int) []LineMatch {
	lines := strings.Split(content, "\n")
	var out []LineMatch

	for lineIdx, line := range lines {
		if !matches(line) {
			continue
		}

		match := LineMatch{LineNumber: lineIdx + 1, LineText: line}
		if contextLines > 0 {
			start := lineIdx - contextLines
			if start < 0 {
				start = 0
			}
			match.ContextBefore = append(match.ContextBefore, lines[start:lineIdx]...)

			end := lineIdx + contextLines + 1
			if end > len(lines) {
				end = len(lines)
			}
			match.ContextAfter = append(match.ContextAfter, lines[lineIdx+1:end]...)
		}
		out = append(out, match)
	}

	return out
}

// Package workspace holds the editing session for generated source: the
// parsed files, their tree, the open tabs and unsaved edits.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/lexandro/workspace-mcp/markers"
	"github.com/lexandro/workspace-mcp/notify"
	"github.com/lexandro/workspace-mcp/vfs"
)

// placeholder is shown before any code has arrived.
const placeholder = "<!-- No code generated yet -->"

var (
	ErrNotFound     = errors.New("file not found")
	ErrExists       = errors.New("file already exists")
	ErrNotOpen      = errors.New("file is not open")
	ErrNotDirectory = errors.New("not a directory")
)

// Publisher receives outbound notifications.
type Publisher interface {
	Publish(event notify.Event)
}

// Update is an inbound notification carrying freshly generated source.
type Update struct {
	Code      string `json:"code"`
	Session   string `json:"session,omitempty"`
	ServerURL string `json:"serverUrl,omitempty"`
}

// Workspace is safe for concurrent use.
type Workspace struct {
	mu sync.Mutex

	code         string
	files        *vfs.FileMap
	tree         *vfs.Node
	tabs         []string
	selected     string
	unsaved      map[string]bool
	collapsed    map[string]bool
	session      string
	devServerURL string
	parseError   string
	revision     uint64

	publisher Publisher
	listeners []func(Snapshot)
	logger    *slog.Logger
}

// New creates a workspace holding the placeholder index.html.
func New(publisher Publisher, logger *slog.Logger) *Workspace {
	files := vfs.NewFileMap()
	files.Set(markers.DefaultFile, placeholder)

	w := &Workspace{
		files:     files,
		tabs:      []string{markers.DefaultFile},
		selected:  markers.DefaultFile,
		unsaved:   make(map[string]bool),
		collapsed: make(map[string]bool),
		publisher: publisher,
		logger:    logger,
	}
	w.tree = vfs.BuildTree(files, w.collapsed)
	return w
}

// OnChange registers fn to run after every mutation. fn runs outside the
// workspace lock and must not block for long.
func (w *Workspace) OnChange(fn func(Snapshot)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Load replaces the workspace with the files parsed from u.Code.
// A parse failure falls back to one index.html holding the raw code; the
// parse error is returned only so callers can log it. The returned snapshot
// is the state this load committed.
func (w *Workspace) Load(u Update) (Snapshot, error) {
	files, parseErr := markers.ParseOrFallback(u.Code)

	w.mu.Lock()
	w.code = u.Code
	w.files = files
	w.tree = vfs.BuildTree(files, w.collapsed)
	first := files.First()
	w.selected = first
	w.tabs = []string{first}
	w.unsaved = make(map[string]bool)
	w.session = u.Session
	if u.ServerURL != "" {
		w.devServerURL = u.ServerURL
	}
	w.parseError = ""
	if parseErr != nil {
		w.parseError = parseErr.Error()
	}
	snap := w.commitLocked()
	w.mu.Unlock()

	if parseErr != nil {
		w.logger.Warn("generated code did not parse, using it as a single file", "error", parseErr)
	}
	w.logger.Info("workspace loaded", "files", files.Len(), "session", u.Session, "revision", snap.Revision)

	w.publish(notify.Event{Type: notify.EventWorkspaceLoaded, Session: u.Session, Files: files.Len()})
	w.emit(snap)
	return snap, parseErr
}

// Read returns the content of a file.
func (w *Workspace) Read(p string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	content, ok := w.files.Get(p)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return content, nil
}

// Open selects a file and adds it to the tabs when not already open.
func (w *Workspace) Open(p string) error {
	w.mu.Lock()
	if !w.files.Has(p) {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	w.selected = p
	if !contains(w.tabs, p) {
		w.tabs = append(w.tabs, p)
	}
	snap := w.commitLocked()
	w.mu.Unlock()

	w.emit(snap)
	return nil
}

// Close removes a tab and discards its unsaved flag. Closing the selected
// tab selects the first remaining one; closing the last tab reopens the
// first file.
func (w *Workspace) Close(p string) error {
	w.mu.Lock()
	if !contains(w.tabs, p) {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotOpen, p)
	}

	remaining := make([]string, 0, len(w.tabs))
	for _, tab := range w.tabs {
		if tab != p {
			remaining = append(remaining, tab)
		}
	}
	delete(w.unsaved, p)
	w.tabs = remaining

	if w.selected == p && len(remaining) > 0 {
		w.selected = remaining[0]
	} else if len(remaining) == 0 && w.files.Len() > 0 {
		first := w.files.First()
		w.tabs = []string{first}
		w.selected = first
	}
	snap := w.commitLocked()
	w.mu.Unlock()

	w.emit(snap)
	return nil
}

// Edit replaces a file's content and marks it unsaved.
func (w *Workspace) Edit(p string, content string) error {
	w.mu.Lock()
	if !w.files.Has(p) {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	w.files.Set(p, content)
	w.unsaved[p] = true
	snap := w.commitLocked()
	w.mu.Unlock()

	w.emit(snap)
	return nil
}

// Create adds a new file, opens it and marks it unsaved.
// It returns the normalized path.
func (w *Workspace) Create(rawPath string, content string) (string, error) {
	p, err := vfs.NormalizePath(rawPath)
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	if w.files.Has(p) {
		w.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrExists, p)
	}
	if _, err := w.files.Set(p, content); err != nil {
		w.mu.Unlock()
		return "", err
	}
	w.tree = vfs.BuildTree(w.files, w.collapsed)
	w.selected = p
	w.tabs = append(w.tabs, p)
	w.unsaved[p] = true
	snap := w.commitLocked()
	w.mu.Unlock()

	w.emit(snap)
	return p, nil
}

// Save clears a file's unsaved flag and publishes the joined source.
func (w *Workspace) Save(p string) error {
	w.mu.Lock()
	if !w.files.Has(p) {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	delete(w.unsaved, p)
	w.code = markers.Join(w.files)
	code := w.code
	session := w.session
	snap := w.commitLocked()
	w.mu.Unlock()

	w.logger.Info("file saved", "path", p)
	w.publish(notify.Event{Type: notify.EventPreviewUpdate, Path: p, Code: code, Session: session})
	w.emit(snap)
	return nil
}

// SaveAll clears every unsaved flag and publishes the joined source.
// It returns the number of files that had unsaved edits.
func (w *Workspace) SaveAll() int {
	w.mu.Lock()
	count := len(w.unsaved)
	w.unsaved = make(map[string]bool)
	w.code = markers.Join(w.files)
	code := w.code
	session := w.session
	files := w.files.Len()
	snap := w.commitLocked()
	w.mu.Unlock()

	w.logger.Info("all files saved", "files", files, "unsaved", count)
	w.publish(notify.Event{Type: notify.EventPreviewUpdate, Code: code, Session: session, Files: files})
	w.emit(snap)
	return count
}

// ToggleDirectory flips a directory between expanded and collapsed.
// It returns the new expanded state.
func (w *Workspace) ToggleDirectory(p string) (bool, error) {
	w.mu.Lock()
	if !w.files.IsDir(p) {
		w.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrNotDirectory, p)
	}
	if w.collapsed[p] {
		delete(w.collapsed, p)
	} else {
		w.collapsed[p] = true
	}
	expanded := !w.collapsed[p]
	w.tree = vfs.BuildTree(w.files, w.collapsed)
	snap := w.commitLocked()
	w.mu.Unlock()

	w.emit(snap)
	return expanded, nil
}

// SetDevServer records the URL of a running dev server ("" clears it).
func (w *Workspace) SetDevServer(url string) {
	w.mu.Lock()
	w.devServerURL = url
	snap := w.commitLocked()
	w.mu.Unlock()

	w.emit(snap)
}

// Snapshot returns a consistent copy of the current state.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// commitLocked bumps the revision and captures a snapshot. Caller holds mu.
func (w *Workspace) commitLocked() Snapshot {
	w.revision++
	return w.snapshotLocked()
}

func (w *Workspace) snapshotLocked() Snapshot {
	unsaved := make([]string, 0, len(w.unsaved))
	for p := range w.unsaved {
		unsaved = append(unsaved, p)
	}
	sort.Strings(unsaved)

	tabs := make([]string, len(w.tabs))
	copy(tabs, w.tabs)

	return Snapshot{
		Revision:     w.revision,
		Code:         w.code,
		Files:        w.files.Clone(),
		Tree:         w.tree,
		Tabs:         tabs,
		Selected:     w.selected,
		Unsaved:      unsaved,
		Session:      w.session,
		DevServerURL: w.devServerURL,
		ParseError:   w.parseError,
	}
}

func (w *Workspace) emit(snap Snapshot) {
	w.mu.Lock()
	listeners := make([]func(Snapshot), len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (w *Workspace) publish(event notify.Event) {
	if w.publisher != nil {
		w.publisher.Publish(event)
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

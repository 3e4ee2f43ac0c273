package workspace

import "github.com/lexandro/workspace-mcp/vfs"

// Snapshot is an immutable view of the workspace at one revision.
// Tree is shared between snapshots and must not be modified.
type Snapshot struct {
	Revision     uint64
	Code         string
	Files        *vfs.FileMap
	Tree         *vfs.Node
	Tabs         []string
	Selected     string
	Unsaved      []string
	Session      string
	DevServerURL string
	ParseError   string
}

// IsUnsaved reports whether p has unsaved edits.
func (s Snapshot) IsUnsaved(p string) bool {
	for _, u := range s.Unsaved {
		if u == p {
			return true
		}
	}
	return false
}

// UnsavedSet returns the unsaved paths as a set.
func (s Snapshot) UnsavedSet() map[string]bool {
	set := make(map[string]bool, len(s.Unsaved))
	for _, p := range s.Unsaved {
		set[p] = true
	}
	return set
}

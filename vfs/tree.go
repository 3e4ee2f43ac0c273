// Package vfs holds the virtual file set produced from generated source
// and the directory tree derived from it.
package vfs

import (
	"sort"
	"strings"
)

// NodeKind tags a tree node as a file or a directory.
type NodeKind int

const (
	KindDirectory NodeKind = iota
	KindFile
)

func (k NodeKind) String() string {
	if k == KindFile {
		return "file"
	}
	return "directory"
}

// MarshalText encodes the kind as "file" or "directory".
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Node is one entry of the display tree.
// Files carry Path; directories carry Children and Expanded.
type Node struct {
	Kind     NodeKind         `json:"type"`
	Name     string           `json:"name"`
	Path     string           `json:"path"`
	Children map[string]*Node `json:"children,omitempty"`
	Expanded bool             `json:"expanded,omitempty"`
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Kind == KindDirectory
}

// SortedChildren returns children with directories first, each group by name.
func (n *Node) SortedChildren() []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].Kind != children[j].Kind {
			return children[i].Kind == KindDirectory
		}
		return children[i].Name < children[j].Name
	})
	return children
}

// BuildTree converts a FileMap into a directory tree rooted at an unnamed directory.
// Directories listed in collapsed start folded; all others are expanded.
func BuildTree(fm *FileMap, collapsed map[string]bool) *Node {
	root := newDir("", "", collapsed)

	fm.Range(func(p, _ string) bool {
		parts := strings.Split(p, "/")
		current := root
		for i, part := range parts {
			if i == len(parts)-1 {
				current.Children[part] = &Node{Kind: KindFile, Name: part, Path: p}
				break
			}
			next, ok := current.Children[part]
			if !ok {
				next = newDir(part, strings.Join(parts[:i+1], "/"), collapsed)
				current.Children[part] = next
			}
			current = next
		}
		return true
	})

	return root
}

func newDir(name, p string, collapsed map[string]bool) *Node {
	return &Node{
		Kind:     KindDirectory,
		Name:     name,
		Path:     p,
		Children: make(map[string]*Node),
		Expanded: !collapsed[p],
	}
}

// Leaves returns every file path under root in display order.
func Leaves(root *Node) []string {
	var out []string
	walkLeaves(root, func(n *Node) { out = append(out, n.Path) })
	return out
}

// CountLeaves returns the number of file nodes under root.
func CountLeaves(root *Node) int {
	count := 0
	walkLeaves(root, func(*Node) { count++ })
	return count
}

func walkLeaves(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	if n.Kind == KindFile {
		fn(n)
		return
	}
	for _, child := range n.SortedChildren() {
		walkLeaves(child, fn)
	}
}

// Rebuild collects a FileMap from the tree's leaves, taking content from source.
// Leaves missing from source get empty content.
func Rebuild(root *Node, source *FileMap) *FileMap {
	out := NewFileMap()
	for _, p := range Leaves(root) {
		content, _ := source.Get(p)
		out.Set(p, content)
	}
	return out
}

// Find returns the node at p, or nil. An empty path returns root.
func Find(root *Node, p string) *Node {
	if p == "" {
		return root
	}
	current := root
	for _, part := range strings.Split(p, "/") {
		if current == nil || current.Kind != KindDirectory {
			return nil
		}
		current = current.Children[part]
	}
	return current
}

// RenderTree draws the tree as indented text. Collapsed directories hide
// their children; marks flags individual file paths (e.g. unsaved ones).
func RenderTree(root *Node, marks map[string]bool) string {
	var builder strings.Builder
	renderLevel(&builder, root, 0, marks)
	return builder.String()
}

func renderLevel(builder *strings.Builder, n *Node, depth int, marks map[string]bool) {
	for _, child := range n.SortedChildren() {
		builder.WriteString(strings.Repeat("  ", depth))
		if child.Kind == KindDirectory {
			if child.Expanded {
				builder.WriteString("▾ ")
			} else {
				builder.WriteString("▸ ")
			}
			builder.WriteString(child.Name)
			builder.WriteString("/\n")
			if child.Expanded {
				renderLevel(builder, child, depth+1, marks)
			}
			continue
		}
		builder.WriteString("  ")
		builder.WriteString(child.Name)
		if marks[child.Path] {
			builder.WriteString(" ●")
		}
		builder.WriteString("\n")
	}
}

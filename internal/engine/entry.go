// Package engine implements the retention core: the tree snapshot of the
// watched directory, the cascading deletion protocol, and the age and
// pressure eviction policies.
package engine

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/driftersoft/janitord/internal/fs"
)

// Entry mirrors one filesystem path inside a tree snapshot. A fresh Entry
// only knows its path; metadata and children appear once the builder has
// populated it. An Entry whose population failed keeps a nil Metadata and is
// ignored by every policy.
type Entry struct {
	path   string
	name   string
	parent *Entry

	md *fs.Metadata

	mu       sync.Mutex
	children map[string]*Entry
}

func newEntry(path string, parent *Entry) *Entry {
	return &Entry{
		path:   path,
		name:   filepath.Base(path),
		parent: parent,
	}
}

// Path returns the absolute path this entry mirrors.
func (e *Entry) Path() string { return e.path }

// Name returns the last path segment.
func (e *Entry) Name() string { return e.name }

// Parent returns the owning entry, or nil for the root.
func (e *Entry) Parent() *Entry { return e.parent }

// Metadata returns the cached stat result, or nil if population failed or
// has not happened yet.
func (e *Entry) Metadata() *fs.Metadata { return e.md }

// Populated reports whether metadata retrieval succeeded for this entry.
func (e *Entry) Populated() bool { return e.md != nil }

// IsDir reports whether the entry is a directory. Calling it on an
// unpopulated entry is a programming error.
func (e *Entry) IsDir() bool {
	if e.md == nil {
		panic("engine: IsDir on unpopulated entry " + e.path)
	}
	return e.md.IsDir
}

// Child returns the named child, if present.
func (e *Entry) Child(name string) (*Entry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.children[name]
	return c, ok
}

// Children returns a snapshot of the current children. The slice is sorted
// by name so callers iterating it get a stable order.
func (e *Entry) Children() []*Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Entry, 0, len(e.children))
	for _, c := range e.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// ChildCount returns the number of children still attached.
func (e *Entry) ChildCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.children)
}

func (e *Entry) attachChild(c *Entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.children == nil {
		e.children = make(map[string]*Entry)
	}
	e.children[c.name] = c
}

// detachChild removes the named child and reports whether the entry is left
// with no children. Sibling deletions run concurrently, hence the lock.
func (e *Entry) detachChild(name string) (empty bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.children, name)
	return len(e.children) == 0
}

// walk visits e and its descendants depth-first, parents before children.
// Children are snapshotted before descending so the visitor may delete the
// entry it is handed.
func (e *Entry) walk(visit func(*Entry)) {
	visit(e)
	for _, c := range e.Children() {
		c.walk(visit)
	}
}

// flatten returns every entry below e (e itself excluded).
func (e *Entry) flatten() []*Entry {
	var out []*Entry
	for _, c := range e.Children() {
		c.walk(func(n *Entry) { out = append(out, n) })
	}
	return out
}

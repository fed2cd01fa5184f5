package engine

import (
	"context"
	"errors"
	iofs "io/fs"
	"sync"

	"golang.org/x/sync/errgroup"
)

// remove deletes e from storage and from its parent's bookkeeping. For a
// directory every current child is removed first (siblings concurrently, all
// joined before the directory itself goes); the directory is then removed
// from storage whatever keepEmptyParent says, since the flag only governs
// whether a parent left empty by this removal is collapsed afterwards.
//
// Failures are per node: a storage error is logged, the entry stays attached
// to its parent, and siblings proceed. In dry mode storage is untouched but
// every piece of bookkeeping still happens, so the returned records match a
// live run exactly.
//
// The returned slice lists removed entries children-first, with any
// collapsed ancestors appended after the entry itself.
func (c *Cleaner) remove(ctx context.Context, e *Entry, keepEmptyParent, dry bool) []Deletion {
	var (
		mu      sync.Mutex
		deleted []Deletion
	)
	record := func(d []Deletion) {
		mu.Lock()
		deleted = append(deleted, d...)
		mu.Unlock()
	}

	if e.Populated() && e.IsDir() {
		var g errgroup.Group
		for _, child := range e.Children() {
			child := child
			g.Go(func() error {
				record(c.remove(ctx, child, true, dry))
				return nil
			})
		}
		_ = g.Wait()

		if e.ChildCount() > 0 {
			// Some child removal failed; the directory cannot go yet.
			return deleted
		}
		if !dry {
			if err := c.fsys.RemoveDir(ctx, e.path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
				c.log.Warn("remove directory failed", "path", e.path, "error", err)
				return deleted
			}
		}
		deleted = append(deleted, Deletion{Path: e.path, IsDir: true, Dry: dry})
	} else {
		if !dry {
			if err := c.fsys.RemoveFile(ctx, e.path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
				c.log.Warn("remove file failed", "path", e.path, "error", err)
				return deleted
			}
		}
		var size int64
		if e.md != nil {
			size = e.md.Size
		}
		deleted = append(deleted, Deletion{Path: e.path, IsDir: false, Size: size, Dry: dry})
	}

	parent := e.parent
	if parent == nil {
		return deleted
	}
	emptied := parent.detachChild(e.name)
	if emptied && !keepEmptyParent && parent.parent != nil {
		// The deletion bubbles up: collapse the chain of now-empty
		// ancestors, stopping at the watched root.
		deleted = append(deleted, c.remove(ctx, parent, keepEmptyParent, dry)...)
	}
	return deleted
}

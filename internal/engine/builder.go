package engine

import (
	"context"
	"errors"
	iofs "io/fs"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// buildTree produces a fresh snapshot of the watched root. The returned root
// entry is populated even when parts of the subtree could not be read; only
// a failure to stat the root itself is fatal.
func (c *Cleaner) buildTree(ctx context.Context) (*Entry, error) {
	root := newEntry(c.opts.Root, nil)
	c.populate(ctx, root)
	if !root.Populated() {
		return nil, errors.New("engine: watched root " + c.opts.Root + " is unreadable")
	}
	return root, nil
}

// populate fetches metadata for e and, for directories, registers and
// recursively populates every child. Sibling subtrees populate concurrently
// and populate returns only once all of them have finished. Failures are
// confined to the node they hit: the entry is left unpopulated (inert) and
// the rest of the tree proceeds.
func (c *Cleaner) populate(ctx context.Context, e *Entry) {
	md, err := c.fsys.Stat(ctx, e.path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			// Raced with an external deleter; drop the node silently.
			if e.parent != nil {
				e.parent.detachChild(e.name)
			}
			return
		}
		c.log.Warn("stat failed", "path", e.path, "error", err)
		return
	}
	e.md = md
	if !md.IsDir {
		return
	}

	names, err := c.fsys.ListDir(ctx, e.path)
	if err != nil {
		if !errors.Is(err, iofs.ErrNotExist) {
			c.log.Warn("list failed", "path", e.path, "error", err)
		}
		return
	}

	var g errgroup.Group
	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		child := newEntry(filepath.Join(e.path, name), e)
		e.attachChild(child)
		g.Go(func() error {
			c.populate(ctx, child)
			return nil
		})
	}
	_ = g.Wait()
}

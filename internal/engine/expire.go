package engine

import (
	"context"
	"time"
)

// expire applies the age policy: a pre-order walk over the snapshot that
// deletes every matching file older than MaxAge and, when configured,
// directories that have no children at the moment they are visited. The
// watched root itself is never a candidate.
func (c *Cleaner) expire(ctx context.Context, root *Entry, dry bool) []Deletion {
	var deleted []Deletion
	keepParent := !c.opts.RemoveCleanedDirs
	cutoffActive := c.opts.MaxAge > 0
	now := c.now()

	var visit func(e *Entry)
	visit = func(e *Entry) {
		if e != root {
			if !e.Populated() {
				// Stat failed during population; leave the node alone.
				return
			}
			if e.IsDir() {
				if c.opts.RemoveEmptyDirs && e.ChildCount() == 0 && !c.protected(e.path) {
					deleted = append(deleted, c.remove(ctx, e, false, dry)...)
					return
				}
			} else {
				if c.shouldExpire(e, now, cutoffActive) {
					deleted = append(deleted, c.remove(ctx, e, keepParent, dry)...)
				}
				return
			}
		}
		for _, child := range e.Children() {
			visit(child)
		}
	}
	visit(root)

	if len(deleted) > 0 {
		c.log.Info("age policy deleted entries", "count", len(deleted), "dry_run", dry)
	}
	return deleted
}

// shouldExpire is the age predicate for non-directory entries: the inclusion
// filter has to match, the entry must not be protected, and its selected
// timestamp must be at least MaxAge in the past.
func (c *Cleaner) shouldExpire(e *Entry, now time.Time, cutoffActive bool) bool {
	if !cutoffActive {
		return false
	}
	if c.protected(e.path) {
		return false
	}
	if !c.opts.Filter.Match(e.path, e.md) {
		return false
	}
	ts := c.opts.Timestamp.of(e.md)
	return now.Sub(ts) >= c.opts.MaxAge
}

func (c *Cleaner) protected(path string) bool {
	return c.opts.Protect.Protected(path)
}

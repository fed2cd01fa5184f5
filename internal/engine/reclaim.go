package engine

import (
	"context"
	"fmt"
	"sort"
)

// reclaim applies the pressure policy. Disk usage is sampled once; if the
// used fraction is at or above the threshold, the oldest remaining files are
// deleted until enough bytes have been claimed to bring usage back down to
// exactly the threshold fraction of capacity. The loop trusts the sizes
// cached in the snapshot rather than re-querying the disk after every
// deletion.
func (c *Cleaner) reclaim(ctx context.Context, root *Entry, dry bool) ([]Deletion, error) {
	threshold := c.opts.UsedThreshold
	if threshold <= 0 || threshold >= 1 {
		return nil, nil
	}

	usage, err := c.disk.Usage(ctx, root.path)
	if err != nil {
		return nil, fmt.Errorf("query disk usage for %s: %w", root.path, err)
	}
	if usage.UsedFraction() < threshold {
		return nil, nil
	}

	used := usage.TotalBytes - usage.AvailableBytes
	toFree := int64(used) - int64(threshold*float64(usage.TotalBytes))
	c.log.Info("storage pressure detected",
		"used_fraction", usage.UsedFraction(),
		"threshold", threshold,
		"to_free_bytes", toFree,
	)

	// Newest first; eviction pops from the tail.
	candidates := root.flatten()
	sort.SliceStable(candidates, func(i, j int) bool {
		ei, ej := candidates[i], candidates[j]
		if !ei.Populated() || !ej.Populated() {
			return ej.Populated()
		}
		return c.opts.Timestamp.of(ei.md).After(c.opts.Timestamp.of(ej.md))
	})

	keepParent := !c.opts.RemoveCleanedDirs
	var deleted []Deletion
	for len(candidates) > 0 && toFree > 0 {
		oldest := candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]

		if !oldest.Populated() || oldest.IsDir() {
			continue
		}
		if c.protected(oldest.path) {
			continue
		}
		// A collapsed ancestor may already have taken this entry with it.
		if _, attached := oldest.parent.Child(oldest.name); !attached {
			continue
		}

		size := oldest.md.Size
		removed := c.remove(ctx, oldest, keepParent, dry)
		if len(removed) == 0 {
			continue
		}
		toFree -= size
		deleted = append(deleted, removed...)
	}

	if len(deleted) > 0 {
		c.log.Info("pressure policy deleted entries",
			"count", len(deleted),
			"dry_run", dry,
			"remaining_bytes", toFree,
		)
	}
	return deleted, nil
}

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/driftersoft/janitord/internal/fs"
)

// TimestampField selects which stat timestamp the policies compare against.
type TimestampField string

const (
	FieldATime TimestampField = "atime"
	FieldMTime TimestampField = "mtime"
	FieldCTime TimestampField = "ctime"
	FieldBTime TimestampField = "btime"
)

// ParseTimestampField validates a selector from configuration.
func ParseTimestampField(s string) (TimestampField, error) {
	switch TimestampField(s) {
	case FieldATime, FieldMTime, FieldCTime, FieldBTime:
		return TimestampField(s), nil
	case "":
		return FieldMTime, nil
	}
	return "", fmt.Errorf("unknown timestamp field %q (want atime, mtime, ctime or btime)", s)
}

func (f TimestampField) of(md *fs.Metadata) time.Time {
	switch f {
	case FieldATime:
		return md.ATime
	case FieldCTime:
		return md.CTime
	case FieldBTime:
		return md.BTime
	default:
		return md.MTime
	}
}

// Deletion describes one entry removed (or, in dry mode, reported) by a
// cleanup cycle.
type Deletion struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size_bytes"`
	Dry   bool   `json:"dry_run"`
}

// Options configures a Cleaner. Root is required; everything else has a
// usable zero value.
type Options struct {
	// Root is the absolute path of the watched directory.
	Root string

	// Filter limits age-policy candidates; nil matches everything.
	Filter Filter

	// Protect shields matching paths from both policies.
	Protect *ProtectList

	// Timestamp selects the stat field compared against MaxAge and used to
	// order pressure-policy candidates. Defaults to mtime.
	Timestamp TimestampField

	// MaxAge is the age policy threshold. Zero or negative disables age
	// deletion entirely.
	MaxAge time.Duration

	// UsedThreshold is the pressure policy trigger, as a fraction of volume
	// capacity. Values >= 1 (or 0) disable the policy.
	UsedThreshold float64

	// RemoveCleanedDirs collapses directories left empty by deletions.
	RemoveCleanedDirs bool

	// RemoveEmptyDirs additionally deletes directories that already have no
	// children, whatever the cause.
	RemoveEmptyDirs bool

	// AllowRootPath permits watching a filesystem root. Off by default as a
	// guard against wiping a whole volume by mistyped configuration.
	AllowRootPath bool

	// Filesystem and Disk default to the OS providers.
	Filesystem fs.Filesystem
	Disk       fs.UsageReporter

	Logger *slog.Logger

	// Now is the clock used by the age policy; tests override it.
	Now func() time.Time
}

// Cleaner owns the watched subtree and runs cleanup cycles over it. Cycles
// are serialized: a second Clean blocks until the first finishes.
type Cleaner struct {
	opts Options
	fsys fs.Filesystem
	disk fs.UsageReporter
	log  *slog.Logger
	now  func() time.Time

	cycleMu sync.Mutex
}

// New validates opts and constructs a Cleaner. Configuration problems are
// reported here, before any cycle can touch storage.
func New(opts Options) (*Cleaner, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("engine: watched root is required")
	}
	if !filepath.IsAbs(opts.Root) {
		return nil, fmt.Errorf("engine: watched root %q must be absolute", opts.Root)
	}
	opts.Root = filepath.Clean(opts.Root)
	if opts.Root == filepath.Dir(opts.Root) && !opts.AllowRootPath {
		return nil, fmt.Errorf("engine: refusing to watch filesystem root %q without allow_root_path", opts.Root)
	}
	if opts.UsedThreshold < 0 || opts.UsedThreshold > 1 {
		return nil, fmt.Errorf("engine: used threshold %v outside [0, 1]", opts.UsedThreshold)
	}
	if opts.Timestamp == "" {
		opts.Timestamp = FieldMTime
	}
	if _, err := ParseTimestampField(string(opts.Timestamp)); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if opts.Filter == nil {
		opts.Filter = matchAll
	}

	c := &Cleaner{
		opts: opts,
		fsys: opts.Filesystem,
		disk: opts.Disk,
		log:  opts.Logger,
		now:  opts.Now,
	}
	if c.fsys == nil || c.disk == nil {
		osProvider := fs.OS()
		if c.fsys == nil {
			c.fsys = osProvider
		}
		if c.disk == nil {
			c.disk = osProvider
		}
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.log = c.log.With("component", "engine")
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// Root returns the watched directory.
func (c *Cleaner) Root() string { return c.opts.Root }

// Clean runs one full cycle: snapshot the subtree, apply the age policy,
// then the pressure policy. It returns every entry deleted, in deletion
// order. In dry mode storage is never mutated but the report is identical to
// what a live run would delete.
func (c *Cleaner) Clean(ctx context.Context, dry bool) ([]Deletion, error) {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	start := c.now()
	root, err := c.buildTree(ctx)
	if err != nil {
		return nil, err
	}

	deleted := c.expire(ctx, root, dry)
	reclaimed, err := c.reclaim(ctx, root, dry)
	if err != nil {
		// The age policy already ran; report what it achieved.
		c.log.Warn("pressure policy skipped", "error", err)
	}
	deleted = append(deleted, reclaimed...)

	c.log.Info("cleanup cycle finished",
		"deleted", len(deleted),
		"dry_run", dry,
		"elapsed", time.Since(start),
	)
	return deleted, nil
}

// Snapshot builds and returns a fresh tree of the watched subtree, deleting
// nothing.
func (c *Cleaner) Snapshot(ctx context.Context) (*Entry, error) {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()
	return c.buildTree(ctx)
}

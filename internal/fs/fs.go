// Package fs defines the filesystem and disk-usage providers consumed by the
// retention engine, plus the OS-backed implementation of both.
package fs

import (
	"context"
	"time"
)

// Metadata is the cached stat result for one path.
type Metadata struct {
	Size  int64
	ATime time.Time
	MTime time.Time
	CTime time.Time
	BTime time.Time
	IsDir bool
}

// Filesystem abstracts the storage operations the engine performs. All
// methods report a vanished path via an error satisfying
// errors.Is(err, io/fs.ErrNotExist).
type Filesystem interface {
	ListDir(ctx context.Context, path string) ([]string, error)
	Stat(ctx context.Context, path string) (*Metadata, error)
	RemoveFile(ctx context.Context, path string) error
	RemoveDir(ctx context.Context, path string) error
}

// Usage describes capacity and headroom of the volume holding a path.
type Usage struct {
	TotalBytes     uint64
	AvailableBytes uint64
}

// UsedFraction returns used space as a fraction of capacity.
func (u Usage) UsedFraction() float64 {
	if u.TotalBytes == 0 {
		return 0
	}
	return 1 - float64(u.AvailableBytes)/float64(u.TotalBytes)
}

// UsageReporter reports disk usage for the volume holding a path.
type UsageReporter interface {
	Usage(ctx context.Context, path string) (Usage, error)
}

// Provider bundles both collaborator interfaces.
type Provider interface {
	Filesystem
	UsageReporter
}

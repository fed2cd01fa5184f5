package engine

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/driftersoft/janitord/internal/fs"
)

// fakeFS passes through to the real filesystem but lets a test inject
// failures and phantom directory listings per path.
type fakeFS struct {
	fs.Filesystem
	statErr    map[string]error
	listErr    map[string]error
	removeErr  map[string]error
	extraNames map[string][]string
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		Filesystem: fs.OS(),
		statErr:    make(map[string]error),
		listErr:    make(map[string]error),
		removeErr:  make(map[string]error),
		extraNames: make(map[string][]string),
	}
}

func (f *fakeFS) Stat(ctx context.Context, path string) (*fs.Metadata, error) {
	if err := f.statErr[path]; err != nil {
		return nil, err
	}
	return f.Filesystem.Stat(ctx, path)
}

func (f *fakeFS) ListDir(ctx context.Context, path string) ([]string, error) {
	if err := f.listErr[path]; err != nil {
		return nil, err
	}
	names, err := f.Filesystem.ListDir(ctx, path)
	if err != nil {
		return nil, err
	}
	return append(names, f.extraNames[path]...), nil
}

func (f *fakeFS) RemoveFile(ctx context.Context, path string) error {
	if err := f.removeErr[path]; err != nil {
		return err
	}
	return f.Filesystem.RemoveFile(ctx, path)
}

func (f *fakeFS) RemoveDir(ctx context.Context, path string) error {
	if err := f.removeErr[path]; err != nil {
		return err
	}
	return f.Filesystem.RemoveDir(ctx, path)
}

// fakeDisk reports a fixed usage sample.
type fakeDisk struct {
	usage fs.Usage
	err   error
}

func (d *fakeDisk) Usage(context.Context, string) (fs.Usage, error) {
	return d.usage, d.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCleaner(t *testing.T, opts Options) *Cleaner {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	if opts.Disk == nil {
		opts.Disk = &fakeDisk{}
	}
	c, err := New(opts)
	require.NoError(t, err, "construct cleaner")
	return c
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// touch rewinds a path's atime and mtime so age tests get stable input.
func touch(t *testing.T, path string, when time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, when, when))
}

func touchTimes(path string, atime, mtime time.Time) error {
	return os.Chtimes(path, atime, mtime)
}

func paths(deleted []Deletion) []string {
	out := make([]string, 0, len(deleted))
	for _, d := range deleted {
		out = append(out, d.Path)
	}
	return out
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

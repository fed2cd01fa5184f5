package fs

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

type osFS struct{}

// OS returns the provider backed by the local filesystem.
func OS() Provider {
	return osFS{}
}

func (osFS) ListDir(_ context.Context, path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (osFS) Stat(_ context.Context, path string) (*Metadata, error) {
	// Lstat so symlinks are treated as leaves rather than followed.
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	md := &Metadata{
		Size:  info.Size(),
		MTime: info.ModTime(),
		IsDir: info.IsDir(),
	}
	fillTimes(md, info)
	return md, nil
}

func (osFS) RemoveFile(_ context.Context, path string) error {
	return os.Remove(path)
}

func (osFS) RemoveDir(_ context.Context, path string) error {
	return os.Remove(path)
}

func (osFS) Usage(_ context.Context, path string) (Usage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Usage{}, fmt.Errorf("statfs %s: %w", path, err)
	}
	return Usage{
		TotalBytes:     st.Blocks * uint64(st.Bsize),
		AvailableBytes: st.Bavail * uint64(st.Bsize),
	}, nil
}

package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveFileDetachesFromParent(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a", "x.log"), "x")
	mustWriteFile(t, filepath.Join(root, "a", "y.log"), "y")

	c := newTestCleaner(t, Options{Root: root})
	tree, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	a, _ := tree.Child("a")
	x, _ := a.Child("x.log")

	deleted := c.remove(context.Background(), x, false, false)
	require.Len(t, deleted, 1)
	assert.Equal(t, x.Path(), deleted[0].Path)
	assert.False(t, deleted[0].IsDir)

	assert.False(t, exists(x.Path()))
	_, ok := a.Child("x.log")
	assert.False(t, ok)
	assert.Equal(t, 1, a.ChildCount(), "sibling stays")
	assert.True(t, exists(a.Path()), "parent still has a child, no collapse")
}

func TestRemoveLastFileCollapsesEmptyAncestors(t *testing.T) {
	root := t.TempDir()
	leaf := filepath.Join(root, "a", "b", "c")
	mustWriteFile(t, filepath.Join(leaf, "only.log"), "only")
	mustWriteFile(t, filepath.Join(root, "a", "keep.log"), "keep")

	c := newTestCleaner(t, Options{Root: root})
	tree, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	a, _ := tree.Child("a")
	b, _ := a.Child("b")
	cdir, _ := b.Child("c")
	only, _ := cdir.Child("only.log")

	deleted := c.remove(context.Background(), only, false, false)

	assert.Equal(t, []string{
		filepath.Join(leaf, "only.log"),
		filepath.Join(root, "a", "b", "c"),
		filepath.Join(root, "a", "b"),
	}, paths(deleted), "leaf first, then the emptied chain, stopping at the ancestor with another child")

	assert.False(t, exists(filepath.Join(root, "a", "b")))
	assert.True(t, exists(filepath.Join(root, "a")), "a still holds keep.log")
	assert.True(t, exists(root), "watched root is never removed")
}

func TestRemoveKeepEmptyParentLeavesDirInPlace(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a", "only.log"), "only")

	c := newTestCleaner(t, Options{Root: root})
	tree, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	a, _ := tree.Child("a")
	only, _ := a.Child("only.log")

	deleted := c.remove(context.Background(), only, true, false)
	require.Len(t, deleted, 1)

	assert.False(t, exists(only.Path()))
	assert.True(t, exists(a.Path()), "keepEmptyParent leaves the emptied directory")
	assert.Equal(t, 0, a.ChildCount())
}

func TestRemoveDirectoryRemovesChildrenFirst(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "d", "one.log"), "1")
	mustWriteFile(t, filepath.Join(root, "d", "sub", "two.log"), "2")

	c := newTestCleaner(t, Options{Root: root})
	tree, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	d, _ := tree.Child("d")
	deleted := c.remove(context.Background(), d, true, false)

	got := paths(deleted)
	assert.Len(t, got, 4)
	assert.Equal(t, d.Path(), got[len(got)-1], "directory goes last")
	assert.False(t, exists(d.Path()))
	assert.Equal(t, 0, tree.ChildCount())
}

func TestRemoveFailureStopsOnlyThatNode(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "d", "stuck.log"), "stuck")
	mustWriteFile(t, filepath.Join(root, "d", "loose.log"), "loose")

	fsys := newFakeFS()
	stuck := filepath.Join(root, "d", "stuck.log")
	fsys.removeErr[stuck] = errors.New("permission denied")

	c := newTestCleaner(t, Options{Root: root, Filesystem: fsys})
	tree, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	d, _ := tree.Child("d")
	deleted := c.remove(context.Background(), d, false, false)

	assert.Equal(t, []string{filepath.Join(root, "d", "loose.log")}, paths(deleted))
	assert.True(t, exists(stuck), "failed node untouched")
	assert.True(t, exists(d.Path()), "directory kept while a child remains")

	_, ok := d.Child("stuck.log")
	assert.True(t, ok, "failed node stays attached")
	_, ok = d.Child("loose.log")
	assert.False(t, ok)
}

func TestRemoveDryRunTouchesNothing(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a", "only.log"), "only")

	c := newTestCleaner(t, Options{Root: root})
	tree, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	a, _ := tree.Child("a")
	only, _ := a.Child("only.log")

	deleted := c.remove(context.Background(), only, false, true)

	assert.Equal(t, []string{
		filepath.Join(root, "a", "only.log"),
		filepath.Join(root, "a"),
	}, paths(deleted), "dry run reports the full cascade")
	for _, d := range deleted {
		assert.True(t, d.Dry)
	}

	assert.True(t, exists(only.Path()), "storage untouched")
	assert.True(t, exists(a.Path()))
	_, ok := a.Child("only.log")
	assert.False(t, ok, "bookkeeping still happens in dry mode")
}

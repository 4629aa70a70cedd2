package diff

import (
	"testing"

	"github.com/asheraflow/ashera/objectstore"
	"github.com/asheraflow/ashera/plumbing/filemode"
	"github.com/asheraflow/ashera/plumbing/object"
	"github.com/stretchr/testify/require"
)

func mustBlob(t *testing.T, s *objectstore.Store, content string) object.TreeEntry {
	t.Helper()
	h, err := s.StoreBlob([]byte(content))
	require.NoError(t, err)
	return object.TreeEntry{Mode: filemode.Regular, Hash: h}
}

func mustTree(t *testing.T, s *objectstore.Store, entries ...object.TreeEntry) *object.Tree {
	t.Helper()
	tree := object.NewTree(entries)
	_, err := s.StoreTree(tree)
	require.NoError(t, err)
	return tree
}

func TestTreeDiffModifyInsertDelete(t *testing.T) {
	s := objectstore.New(t.TempDir())
	require.NoError(t, s.EnsureDirs())

	a1 := mustBlob(t, s, "one")
	a1.Name = "a.txt"
	b1 := mustBlob(t, s, "two")
	b1.Name = "b.txt"
	from := mustTree(t, s, a1, b1)

	a2 := mustBlob(t, s, "one-changed")
	a2.Name = "a.txt"
	c1 := mustBlob(t, s, "three")
	c1.Name = "c.txt"
	to := mustTree(t, s, a2, c1)

	changes, err := TreeDiff(s, from, to)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	byPath := map[string]Change{}
	for _, c := range changes {
		byPath[c.Path] = c
	}
	require.Contains(t, byPath, "a.txt")
	require.Equal(t, Modify, byPath["a.txt"].Type)
	require.Contains(t, byPath, "b.txt")
	require.Equal(t, Delete, byPath["b.txt"].Type)
	require.Contains(t, byPath, "c.txt")
	require.Equal(t, Insert, byPath["c.txt"].Type)
}

func TestTreeDiffUnchangedSubtreeSkipped(t *testing.T) {
	s := objectstore.New(t.TempDir())
	require.NoError(t, s.EnsureDirs())

	leaf := mustBlob(t, s, "same")
	leaf.Name = "x.txt"
	sub := mustTree(t, s, leaf)

	subEntry := object.TreeEntry{Name: "dir", Mode: filemode.Dir, Hash: sub.Hash}
	top := mustTree(t, s, subEntry)

	changes, err := TreeDiff(s, top, top)
	require.NoError(t, err)
	require.Empty(t, changes)
}

package merge

import (
	"testing"

	"github.com/asheraflow/ashera/objectstore"
	"github.com/asheraflow/ashera/plumbing/filemode"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/asheraflow/ashera/plumbing/object"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *objectstore.Store {
	t.Helper()
	s := objectstore.New(t.TempDir())
	require.NoError(t, s.EnsureDirs())
	return s
}

func blobEntry(t *testing.T, s *objectstore.Store, name, content string) object.TreeEntry {
	t.Helper()
	h, err := s.StoreBlob([]byte(content))
	require.NoError(t, err)
	return object.TreeEntry{Name: name, Mode: filemode.Regular, Hash: h}
}

func commitWithTree(t *testing.T, s *objectstore.Store, entries ...object.TreeEntry) *object.Commit {
	t.Helper()
	tree := object.NewTree(entries)
	_, err := s.StoreTree(tree)
	require.NoError(t, err)
	c := &object.Commit{Tree: tree.Hash, Message: "test"}
	_, err = s.StoreCommit(c)
	require.NoError(t, err)
	return c
}

func TestThreeWayCleanBothSidesChangeDifferentFiles(t *testing.T) {
	s := newStore(t)

	base := commitWithTree(t, s,
		blobEntry(t, s, "a.txt", "base-a"),
		blobEntry(t, s, "b.txt", "base-b"),
	)
	ours := commitWithTree(t, s,
		blobEntry(t, s, "a.txt", "ours-a"),
		blobEntry(t, s, "b.txt", "base-b"),
	)
	theirs := commitWithTree(t, s,
		blobEntry(t, s, "a.txt", "base-a"),
		blobEntry(t, s, "b.txt", "theirs-b"),
	)

	res, err := ThreeWay(s, base, ours, theirs, "main", "feature")
	require.NoError(t, err)
	require.Empty(t, res.Conflicts)
	require.NoError(t, res.Err())

	require.Contains(t, res.Clean, "a.txt")
	require.Contains(t, res.Clean, "b.txt")

	aBlob, err := s.Blob(res.Clean["a.txt"].Hash)
	require.NoError(t, err)
	require.Equal(t, "ours-a", string(aBlob.Content))

	bBlob, err := s.Blob(res.Clean["b.txt"].Hash)
	require.NoError(t, err)
	require.Equal(t, "theirs-b", string(bBlob.Content))
}

func TestThreeWayModifyDeleteConflict(t *testing.T) {
	s := newStore(t)

	base := commitWithTree(t, s, blobEntry(t, s, "a.txt", "base"))
	ours := commitWithTree(t, s, blobEntry(t, s, "a.txt", "changed"))
	theirsTree := object.NewTree(nil)
	_, err := s.StoreTree(theirsTree)
	require.NoError(t, err)
	theirs := &object.Commit{Tree: theirsTree.Hash, Message: "delete"}
	_, err = s.StoreCommit(theirs)
	require.NoError(t, err)

	res, err := ThreeWay(s, base, ours, theirs, "main", "feature")
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	require.Error(t, res.Err())
	require.Equal(t, "a.txt", res.Conflicts[0].Path)
}

func TestThreeWayOverlappingContentConflict(t *testing.T) {
	s := newStore(t)

	base := commitWithTree(t, s, blobEntry(t, s, "a.txt", "line1\nline2\nline3\n"))
	ours := commitWithTree(t, s, blobEntry(t, s, "a.txt", "line1\nours\nline3\n"))
	theirs := commitWithTree(t, s, blobEntry(t, s, "a.txt", "line1\ntheirs\nline3\n"))

	res, err := ThreeWay(s, base, ours, theirs, "main", "feature")
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	require.Contains(t, string(res.Conflicts[0].WorkingTreeContent), "<<<<<<< main")
}

func TestFastForwardDetection(t *testing.T) {
	s := newStore(t)

	root := commitWithTree(t, s, blobEntry(t, s, "a.txt", "1"))
	child := &object.Commit{Tree: root.Tree, Parents: []hash.Hash{root.Hash}, Message: "child"}
	_, err := s.StoreCommit(child)
	require.NoError(t, err)

	forward, upToDate, err := FastForward(s, root, child)
	require.NoError(t, err)
	require.True(t, forward)
	require.False(t, upToDate)

	_, upToDate, err = FastForward(s, child, root)
	require.NoError(t, err)
	require.True(t, upToDate)
}

// TestThreeWayFileDirConflict covers spec.md §4.5 step 3: "p" is a plain
// file on ours and a directory (containing p/x) on theirs, so the merge
// must report a file/dir conflict at "p" and hand back the file side's
// content under RenamedPath instead of touching theirs' nested entries.
func TestThreeWayFileDirConflict(t *testing.T) {
	s := newStore(t)

	base := commitWithTree(t, s, blobEntry(t, s, "p", "base-p"))
	ours := commitWithTree(t, s, blobEntry(t, s, "p", "ours-p"))

	nested := object.NewTree([]object.TreeEntry{blobEntry(t, s, "x", "theirs-px")})
	nestedHash, err := s.StoreTree(nested)
	require.NoError(t, err)
	theirsTree := object.NewTree([]object.TreeEntry{{Name: "p", Mode: filemode.Dir, Hash: nestedHash}})
	_, err = s.StoreTree(theirsTree)
	require.NoError(t, err)
	theirs := &object.Commit{Tree: theirsTree.Hash, Message: "p becomes a directory"}
	_, err = s.StoreCommit(theirs)
	require.NoError(t, err)

	res, err := ThreeWay(s, base, ours, theirs, "main", "feature")
	require.NoError(t, err)
	require.Error(t, res.Err())
	require.Len(t, res.Conflicts, 1)

	c := res.Conflicts[0]
	require.Equal(t, "p", c.Path)
	require.Equal(t, "p~main", c.RenamedPath)
	require.Equal(t, "ours-p", string(c.WorkingTreeContent))

	require.NotContains(t, res.Clean, "p")
	require.Contains(t, res.Clean, "p/x")
}

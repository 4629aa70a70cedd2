package workspace

import (
	"crypto/sha1"
	"testing"
	"time"

	"github.com/asheraflow/ashera/index"
	"github.com/asheraflow/ashera/plumbing/filemode"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/stretchr/testify/require"
)

func sumHash(b []byte) hash.Hash {
	sum := sha1.Sum(b)
	var h hash.Hash
	copy(h[:], sum[:])
	return h
}

func TestWalkSkipsControlDir(t *testing.T) {
	ws := New(t.TempDir())
	require.NoError(t, ws.WriteFile("a.txt", []byte("a"), filemode.Regular))
	require.NoError(t, ws.WriteFile("dir/b.txt", []byte("b"), filemode.Regular))
	require.NoError(t, ws.WriteFile(".store/objects/whatever", []byte("x"), filemode.Regular))

	entries, err := ws.Walk()
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	require.ElementsMatch(t, []string{"a.txt", "dir/b.txt"}, paths)
}

func TestClassifyUntrackedAndUnmodified(t *testing.T) {
	ws := New(t.TempDir())
	require.NoError(t, ws.WriteFile("tracked.txt", []byte("v1"), filemode.Regular))
	require.NoError(t, ws.WriteFile("new.txt", []byte("new"), filemode.Regular))

	idx := index.New()
	h := sumHash([]byte("v1"))
	require.NoError(t, idx.Add(&index.Entry{
		Name: "tracked.txt", Mode: filemode.Regular, Hash: h,
		ModifiedAt: time.Time{}, Size: 2,
	}))

	statuses, err := ws.Classify(idx, sumHash)
	require.NoError(t, err)

	require.Equal(t, Unmodified, statuses["tracked.txt"])
	require.Equal(t, Untracked, statuses["new.txt"])
}

func TestClassifyDetectsContentChangeWithoutStatMatch(t *testing.T) {
	ws := New(t.TempDir())
	require.NoError(t, ws.WriteFile("tracked.txt", []byte("changed"), filemode.Regular))

	idx := index.New()
	h := sumHash([]byte("v1"))
	require.NoError(t, idx.Add(&index.Entry{
		Name: "tracked.txt", Mode: filemode.Regular, Hash: h,
		ModifiedAt: time.Time{}, Size: 2,
	}))

	statuses, err := ws.Classify(idx, sumHash)
	require.NoError(t, err)
	require.Equal(t, Modified, statuses["tracked.txt"])
}

func TestClassifyDeletedFile(t *testing.T) {
	ws := New(t.TempDir())

	idx := index.New()
	h := sumHash([]byte("v1"))
	require.NoError(t, idx.Add(&index.Entry{Name: "gone.txt", Mode: filemode.Regular, Hash: h}))

	statuses, err := ws.Classify(idx, sumHash)
	require.NoError(t, err)
	require.Equal(t, Deleted, statuses["gone.txt"])
}

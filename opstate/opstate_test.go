package opstate

import (
	"testing"

	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/require"
)

func TestMergeLifecycle(t *testing.T) {
	s := New(osfs.New(t.TempDir()))

	require.NoError(t, s.CheckNoneActive())

	h := hash.MustFromHex("e440e5c842586965a7fb77deda2eca68612b1f53")
	require.NoError(t, s.BeginMerge(MergeState{PreMergeHead: h, Message: "Merge branch 'feature'"}))

	require.Error(t, s.CheckNoneActive())

	st, err := s.ReadMerge()
	require.NoError(t, err)
	require.Equal(t, h, st.PreMergeHead)
	require.Equal(t, "Merge branch 'feature'", st.Message)

	require.NoError(t, s.AbortMerge())
	require.NoError(t, s.CheckNoneActive())
}

func TestSequenceLifecycle(t *testing.T) {
	s := New(osfs.New(t.TempDir()))

	head := hash.MustFromHex("e440e5c842586965a7fb77deda2eca68612b1f53")
	target := hash.MustFromHex("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	remaining := hash.MustFromHex("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	require.NoError(t, s.Begin(CherryPick, SequenceState{
		PreOpHead: head,
		Message:   "picked",
		Commit:    target,
		Remaining: []hash.Hash{remaining},
	}))

	active, ok, err := s.Active()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, CherryPick, active)

	st, err := s.Read(CherryPick)
	require.NoError(t, err)
	require.Equal(t, head, st.PreOpHead)
	require.Equal(t, target, st.Commit)
	require.Equal(t, []hash.Hash{remaining}, st.Remaining)

	require.NoError(t, s.Abort(CherryPick))
	require.NoError(t, s.CheckNoneActive())
}

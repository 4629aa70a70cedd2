package ashera

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/asheraflow/ashera/opstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupIdentity points author/committer resolution at fixed env values so
// tests don't depend on a populated .store/config, matching how the config
// package's own tests isolate identity resolution.
func setupIdentity(t *testing.T) {
	t.Helper()
	t.Setenv("AUTHOR_NAME", "Ada Lovelace")
	t.Setenv("AUTHOR_EMAIL", "ada@example.com")
	t.Setenv("COMMITTER_NAME", "Ada Lovelace")
	t.Setenv("COMMITTER_EMAIL", "ada@example.com")
}

func initRepo(t *testing.T) *Repository {
	t.Helper()
	setupIdentity(t)
	dir := t.TempDir()
	r, err := Init(dir)
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, r *Repository, path, content string) {
	t.Helper()
	full := filepath.Join(r.Root(), path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

// TestLinearCommit is spec.md §8 scenario 1: a single file committed from a
// fresh repository must hash to the documented OID.
func TestLinearCommit(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "a.txt", "1\n")
	require.NoError(t, r.Add("a.txt"))

	h, err := r.Commit("A")
	require.NoError(t, err)

	head, err := r.HeadCommit()
	require.NoError(t, err)
	assert.Equal(t, h, head.Hash)

	flat, err := r.flattenCommitTree(head)
	require.NoError(t, err)
	entry, ok := flat["a.txt"]
	require.True(t, ok)
	assert.Equal(t, "e440e5c842586965a7fb77deda2eca68612b1f53", entry.Hash.String())
}

// TestFastForwardMerge is spec.md §8 scenario 2.
func TestFastForwardMerge(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "a.txt", "1\n")
	require.NoError(t, r.Add("a.txt"))
	_, err := r.Commit("A")
	require.NoError(t, err)

	require.NoError(t, r.CreateBranch("feature", ""))
	require.NoError(t, r.Checkout("feature"))
	writeFile(t, r, "b.txt", "2\n")
	require.NoError(t, r.Add("b.txt"))
	featHash, err := r.Commit("B")
	require.NoError(t, err)

	require.NoError(t, r.Checkout("master"))
	merged, conflict, err := r.Merge("feature")
	require.NoError(t, err)
	require.False(t, conflict)
	require.NotNil(t, merged)

	masterHead, _, _, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, featHash, masterHead)

	assert.True(t, r.Workspace.Exists("a.txt"))
	assert.True(t, r.Workspace.Exists("b.txt"))
}

// TestContentConflict is spec.md §8 scenario 3.
func TestContentConflict(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "c.txt", "l1\nl2\nl3\n")
	require.NoError(t, r.Add("c.txt"))
	_, err := r.Commit("base")
	require.NoError(t, err)

	require.NoError(t, r.CreateBranch("feature", ""))

	writeFile(t, r, "c.txt", "l1_m\nl2\nl3\n")
	require.NoError(t, r.Add("c.txt"))
	_, err = r.Commit("on master")
	require.NoError(t, err)

	require.NoError(t, r.Checkout("feature"))
	writeFile(t, r, "c.txt", "l1\nl2\nl3_f\n")
	require.NoError(t, r.Add("c.txt"))
	_, err = r.Commit("on feature")
	require.NoError(t, err)

	require.NoError(t, r.Checkout("master"))
	_, conflict, err := r.Merge("feature")
	require.Error(t, err)
	assert.True(t, conflict)

	content, rerr := r.Workspace.ReadFile("c.txt")
	require.NoError(t, rerr)
	assert.Contains(t, string(content), "<<<<<<< HEAD")
	assert.Contains(t, string(content), ">>>>>>> feature")

	idx, ierr := r.LoadIndex()
	require.NoError(t, ierr)
	stages := map[int]bool{}
	for _, e := range idx.Entries() {
		if e.Name == "c.txt" {
			stages[int(e.Stage)] = true
		}
	}
	assert.True(t, stages[1] && stages[2] && stages[3])

	_, err = os.Stat(filepath.Join(r.Root(), ".store", "merge"))
	assert.NoError(t, err)
}

// TestModifyDeleteConflict is spec.md §8 scenario 4.
func TestModifyDeleteConflict(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "d.txt", "base\n")
	require.NoError(t, r.Add("d.txt"))
	_, err := r.Commit("base")
	require.NoError(t, err)

	require.NoError(t, r.CreateBranch("feature", ""))

	writeFile(t, r, "d.txt", "modified\n")
	require.NoError(t, r.Add("d.txt"))
	_, err = r.Commit("modify on master")
	require.NoError(t, err)

	require.NoError(t, r.Checkout("feature"))
	require.NoError(t, r.Rm(RmOptions{}, "d.txt"))
	_, err = r.Commit("delete on feature")
	require.NoError(t, err)

	require.NoError(t, r.Checkout("master"))
	_, conflict, err := r.Merge("feature")
	require.Error(t, err)
	assert.True(t, conflict)

	content, rerr := r.Workspace.ReadFile("d.txt")
	require.NoError(t, rerr)
	assert.Equal(t, "modified\n", string(content))

	idx, ierr := r.LoadIndex()
	require.NoError(t, ierr)
	stages := map[int]bool{}
	for _, e := range idx.Entries() {
		if e.Name == "d.txt" {
			stages[int(e.Stage)] = true
		}
	}
	assert.True(t, stages[1] && stages[2])
	assert.False(t, stages[3])
}

// TestSoftResetPreservesIndex is spec.md §8 scenario 5.
func TestSoftResetPreservesIndex(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "a.txt", "1\n")
	require.NoError(t, r.Add("a.txt"))
	c1, err := r.Commit("C1")
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "2\n")
	require.NoError(t, r.Add("a.txt"))
	_, err = r.Commit("C2")
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "3\n")
	require.NoError(t, r.Add("a.txt"))
	_, err = r.Commit("C3")
	require.NoError(t, err)

	require.NoError(t, r.Reset(c1.String(), ResetSoft))

	head, _, _, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, c1, head)

	diffOut, err := r.Diff(true)
	require.NoError(t, err)
	assert.NotEmpty(t, diffOut)
	assert.Contains(t, diffOut, "a.txt")

	content, err := r.Workspace.ReadFile("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "3\n", string(content))
}

// TestRevertContinue is spec.md §8 scenario 6.
func TestRevertContinue(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "a.txt", "l1\n")
	require.NoError(t, r.Add("a.txt"))
	_, err := r.Commit("C1")
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "l2\n")
	require.NoError(t, r.Add("a.txt"))
	c2, err := r.Commit("C2")
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "l3\n")
	require.NoError(t, r.Add("a.txt"))
	c3, err := r.Commit("C3")
	require.NoError(t, err)

	_, conflict, err := r.Revert(c2.String())
	require.Error(t, err)
	assert.True(t, conflict)

	writeFile(t, r, "a.txt", "resolved\n")
	require.NoError(t, r.Add("a.txt"))

	final, err := r.SequenceContinue(opstate.Revert)
	require.NoError(t, err)
	require.NotNil(t, final)

	assert.Contains(t, final.Message, `Revert "C2"`)
	require.Len(t, final.Parents, 1)
	assert.Equal(t, c3, final.Parents[0])
}

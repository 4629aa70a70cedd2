package ashera

import (
	"fmt"
	"os"
	"time"

	"github.com/asheraflow/ashera/index"
	"github.com/asheraflow/ashera/internal/vcslog"
	"github.com/asheraflow/ashera/merge"
	"github.com/asheraflow/ashera/opstate"
	"github.com/asheraflow/ashera/plumbing"
	"github.com/asheraflow/ashera/plumbing/filemode"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/asheraflow/ashera/plumbing/object"
	"github.com/google/uuid"
)

// Merge merges theirsRef into the current branch per spec.md §4.5: a
// fast-forward when possible, otherwise a three-way merge that either
// produces a merge commit or leaves conflict state for --continue/--abort.
// The bool return reports whether the merge stopped on a conflict.
func (r *Repository) Merge(theirsRef string) (*object.Commit, bool, error) {
	if err := r.Ops.CheckNoneActive(); err != nil {
		return nil, false, err
	}
	if err := r.preflightClean(); err != nil {
		return nil, false, err
	}

	headHash, _, _, err := r.Head()
	if err != nil {
		return nil, false, err
	}
	ours, err := r.Objects.Commit(headHash)
	if err != nil {
		return nil, false, err
	}
	theirsHash, err := r.resolveCommittish(theirsRef)
	if err != nil {
		return nil, false, err
	}
	theirs, err := r.Objects.Commit(theirsHash)
	if err != nil {
		return nil, false, err
	}

	forward, upToDate, err := merge.FastForward(r.Objects, ours, theirs)
	if err != nil {
		return nil, false, err
	}
	if upToDate {
		return ours, false, plumbing.ErrAlreadyUpToDate
	}
	if forward {
		flat, err := r.flattenCommitTree(theirs)
		if err != nil {
			return nil, false, err
		}
		if err := r.materializeTree(flat); err != nil {
			return nil, false, err
		}
		if err := r.advanceHead(headHash, theirsHash); err != nil {
			return nil, false, err
		}
		return theirs, false, nil
	}

	bases, err := merge.MergeBase(r.Objects, ours, theirs)
	if err != nil {
		return nil, false, err
	}
	base, err := merge.VirtualBase(r.Objects, bases)
	if err != nil {
		return nil, false, err
	}

	result, err := merge.ThreeWay(r.Objects, base, ours, theirs, "HEAD", theirsRef)
	if err != nil {
		return nil, false, err
	}

	message := fmt.Sprintf("Merge %s into %s", theirsRef, currentBranchShort(r))

	if conflictErr := result.Err(); conflictErr != nil {
		if err := r.materializeMergeResult(result); err != nil {
			return nil, false, err
		}
		opID := uuid.NewString()
		if err := r.Ops.BeginMerge(opstate.MergeState{PreMergeHead: headHash, MergeHead: theirsHash, Message: message, OperationID: opID}); err != nil {
			return nil, false, err
		}
		vcslog.WithOperation("merge").Warn().Str("op_id", opID).Int("conflicts", len(result.Conflicts)).Msg("merge stopped on conflicts")
		return nil, true, fmt.Errorf("%w: resolve conflicts and run merge --continue", conflictErr)
	}

	commitHash, err := r.commitMergeResult(result, []hash.Hash{headHash, theirsHash}, message)
	if err != nil {
		return nil, false, err
	}
	newCommit, err := r.Objects.Commit(commitHash)
	if err != nil {
		return nil, false, err
	}
	flat, err := r.flattenCommitTree(newCommit)
	if err != nil {
		return nil, false, err
	}
	if err := r.materializeTree(flat); err != nil {
		return nil, false, err
	}
	if err := r.advanceHead(headHash, commitHash); err != nil {
		return nil, false, err
	}
	return newCommit, false, nil
}

// MergeContinue completes an in-progress conflicted merge once every
// conflicted path has been re-staged clean in the index.
func (r *Repository) MergeContinue() (*object.Commit, error) {
	st, err := r.Ops.ReadMerge()
	if err != nil {
		return nil, err
	}
	idx, err := r.LoadIndex()
	if err != nil {
		return nil, err
	}
	if len(idx.ConflictedPaths()) > 0 {
		return nil, fmt.Errorf("%w: unresolved paths: %v", plumbing.ErrMergeConflict, idx.ConflictedPaths())
	}

	treeHash, err := r.buildTreeFromIndex(idx)
	if err != nil {
		return nil, err
	}

	author, err := r.authorSignature(time.Now())
	if err != nil {
		return nil, err
	}
	committer, err := r.committerSignature(time.Now())
	if err != nil {
		return nil, err
	}

	headCommit, err := r.Objects.Commit(st.PreMergeHead)
	if err != nil {
		return nil, err
	}
	currentHead, _, _, err := r.Head()
	if err != nil {
		return nil, err
	}
	if currentHead != headCommit.Hash {
		return nil, fmt.Errorf("ashera: merge --continue: HEAD moved since merge started")
	}

	c := &object.Commit{
		Tree:      treeHash,
		Parents:   []hash.Hash{st.PreMergeHead, st.MergeHead},
		Author:    author,
		Committer: committer,
		Message:   st.Message,
	}
	newHash, err := r.Objects.StoreCommit(c)
	if err != nil {
		return nil, err
	}
	if err := r.advanceHead(st.PreMergeHead, newHash); err != nil {
		return nil, err
	}
	if err := r.Ops.AbortMerge(); err != nil {
		return nil, err
	}
	return r.Objects.Commit(newHash)
}

// MergeAbort discards an in-progress merge, restoring HEAD, the index, and
// the working tree to their pre-merge state.
func (r *Repository) MergeAbort() error {
	st, err := r.Ops.ReadMerge()
	if err != nil {
		return err
	}
	commit, err := r.Objects.Commit(st.PreMergeHead)
	if err != nil {
		return err
	}
	flat, err := r.flattenCommitTree(commit)
	if err != nil {
		return err
	}
	if err := r.materializeTree(flat); err != nil {
		return err
	}
	return r.Ops.AbortMerge()
}

func currentBranchShort(r *Repository) string {
	_, branch, detached, err := r.Head()
	if err != nil || detached {
		return "HEAD"
	}
	return branch.Short()
}

// commitMergeResult builds and stores the tree for a clean merge.Result and
// wraps it in a commit with the given parents.
func (r *Repository) commitMergeResult(result *merge.Result, parents []hash.Hash, message string) (hash.Hash, error) {
	treeHash, err := r.buildTreeFromEntries(result.Clean)
	if err != nil {
		return hash.ZeroHash, err
	}
	now := time.Now()
	author, err := r.authorSignature(now)
	if err != nil {
		return hash.ZeroHash, err
	}
	committer, err := r.committerSignature(now)
	if err != nil {
		return hash.ZeroHash, err
	}
	c := &object.Commit{
		Tree:      treeHash,
		Parents:   parents,
		Author:    author,
		Committer: committer,
		Message:   message,
	}
	return r.Objects.StoreCommit(c)
}

// materializeMergeResult writes a conflicted merge.Result to the working
// tree and index: clean paths land as ordinary stage-0 entries, conflicted
// paths get conflict-marker content on disk plus the three-stage index
// entries §4.5 describes, and a file/dir conflict's renamed copy lands at
// its RenamedPath instead of Path.
func (r *Repository) materializeMergeResult(result *merge.Result) error {
	return r.WithIndex(func(idx *index.Index) error {
		for _, c := range result.Conflicts {
			if c.RenamedPath == "" {
				continue
			}
			if err := r.Workspace.RemoveFile(c.Path); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
		for path, e := range result.Clean {
			blob, err := r.Objects.Blob(e.Hash)
			if err != nil {
				return err
			}
			if err := r.Workspace.WriteFile(path, blob.Content, e.Mode); err != nil {
				return err
			}
			if err := idx.Add(&index.Entry{Name: path, Mode: e.Mode, Hash: e.Hash}); err != nil {
				return err
			}
		}
		for _, c := range result.Conflicts {
			writePath := c.Path
			if c.RenamedPath != "" {
				writePath = c.RenamedPath
			}
			if len(c.WorkingTreeContent) > 0 {
				if err := r.Workspace.WriteFile(writePath, c.WorkingTreeContent, entryMode(c.Ours, c.Theirs)); err != nil {
					return err
				}
			}
			idx.AddConflict(c.Path, indexEntryFor(c.Base), indexEntryFor(c.Ours), indexEntryFor(c.Theirs))
		}
		return nil
	})
}

func entryMode(candidates ...*object.TreeEntry) filemode.FileMode {
	for _, c := range candidates {
		if c != nil {
			return c.Mode
		}
	}
	return filemode.Regular
}

func indexEntryFor(e *object.TreeEntry) *index.Entry {
	if e == nil {
		return nil
	}
	return &index.Entry{Name: e.Name, Mode: e.Mode, Hash: e.Hash}
}

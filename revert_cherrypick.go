package ashera

import (
	"fmt"
	"time"

	"github.com/asheraflow/ashera/internal/vcslog"
	"github.com/asheraflow/ashera/merge"
	"github.com/asheraflow/ashera/opstate"
	"github.com/asheraflow/ashera/plumbing"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/asheraflow/ashera/plumbing/object"
	"github.com/google/uuid"
)

// Revert applies the inverse of commitRef's changes onto HEAD, as a new
// commit, per spec.md §4.6.2. It is a three-way merge of
// (commitRef's tree, commitRef's parent's tree) onto HEAD's tree, i.e. base
// = commitRef itself and ours/theirs = HEAD/commitRef's parent.
func (r *Repository) Revert(commitRef string) (*object.Commit, bool, error) {
	target, err := r.resolveCommit(commitRef)
	if err != nil {
		return nil, false, err
	}
	if target.IsRoot() {
		return nil, false, fmt.Errorf("%w: cannot revert root commit %s", plumbing.ErrNoParent, target.Hash)
	}
	parent, err := r.Objects.Commit(target.Parents[0])
	if err != nil {
		return nil, false, err
	}

	message := fmt.Sprintf("Revert \"%s\"\n\nThis reverts commit %s.", target.Subject(), target.Hash)
	return r.applySequenceStep(opstate.Revert, target, target, parent, message)
}

// CherryPick applies commitRef's changes onto HEAD, as a new commit, per
// spec.md §4.6.2: a three-way merge of (commitRef's parent's tree,
// commitRef's tree) onto HEAD's tree, preserving commitRef's author.
func (r *Repository) CherryPick(commitRef string) (*object.Commit, bool, error) {
	target, err := r.resolveCommit(commitRef)
	if err != nil {
		return nil, false, err
	}
	if target.IsRoot() {
		return nil, false, fmt.Errorf("%w: cannot cherry-pick root commit %s", plumbing.ErrNoParent, target.Hash)
	}
	parent, err := r.Objects.Commit(target.Parents[0])
	if err != nil {
		return nil, false, err
	}

	message := fmt.Sprintf("%s\n\n(cherry picked from commit %s)\n", target.Subject(), target.Hash)
	return r.applySequenceStep(opstate.CherryPick, target, parent, target, message)
}

// applySequenceStep is the shared engine behind Revert and CherryPick: both
// are a single three-way merge of (base, ours=HEAD, theirs) that either
// lands cleanly as a new commit crediting source's original author, or
// leaves <kind>/ state on disk for --continue/--abort.
func (r *Repository) applySequenceStep(kind opstate.Kind, source, base, theirs *object.Commit, message string) (*object.Commit, bool, error) {
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

	result, err := merge.ThreeWay(r.Objects, base, ours, theirs, "HEAD", string(kind))
	if err != nil {
		return nil, false, err
	}

	if conflictErr := result.Err(); conflictErr != nil {
		if err := r.materializeMergeResult(result); err != nil {
			return nil, false, err
		}
		opID := uuid.NewString()
		if err := r.Ops.Begin(kind, opstate.SequenceState{
			PreOpHead:   headHash,
			Message:     message,
			Commit:      source.Hash,
			AuthorName:  source.Author.Name,
			AuthorEmail: source.Author.Email,
			AuthorWhen:  source.Author.When,
			OperationID: opID,
		}); err != nil {
			return nil, false, err
		}
		vcslog.WithOperation(string(kind)).Warn().Str("op_id", opID).Int("conflicts", len(result.Conflicts)).Msg("stopped on conflicts")
		return nil, true, fmt.Errorf("%w: resolve conflicts and run %s --continue", conflictErr, kind)
	}

	newHash, err := r.commitSequenceResult(result, headHash, message, source.Author)
	if err != nil {
		return nil, false, err
	}
	newCommit, err := r.Objects.Commit(newHash)
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
	if err := r.advanceHead(headHash, newHash); err != nil {
		return nil, false, err
	}
	return newCommit, false, nil
}

// SequenceContinue completes an in-progress revert or cherry-pick once
// every conflicted path has been re-staged clean, crediting the original
// source commit's author.
func (r *Repository) SequenceContinue(kind opstate.Kind) (*object.Commit, error) {
	st, err := r.Ops.Read(kind)
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
	committer, err := r.committerSignature(time.Now())
	if err != nil {
		return nil, err
	}

	c := &object.Commit{
		Tree:      treeHash,
		Parents:   []hash.Hash{st.PreOpHead},
		Author:    object.Signature{Name: st.AuthorName, Email: st.AuthorEmail, When: st.AuthorWhen},
		Committer: committer,
		Message:   st.Message,
	}
	newHash, err := r.Objects.StoreCommit(c)
	if err != nil {
		return nil, err
	}
	if err := r.advanceHead(st.PreOpHead, newHash); err != nil {
		return nil, err
	}
	if err := r.Ops.Abort(kind); err != nil {
		return nil, err
	}
	return r.Objects.Commit(newHash)
}

// SequenceAbort discards an in-progress revert or cherry-pick, restoring
// HEAD, the index, and the working tree to their pre-operation state.
func (r *Repository) SequenceAbort(kind opstate.Kind) error {
	st, err := r.Ops.Read(kind)
	if err != nil {
		return err
	}
	commit, err := r.Objects.Commit(st.PreOpHead)
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
	return r.Ops.Abort(kind)
}

// commitSequenceResult builds and stores the tree for a clean merge.Result,
// committing with a single HEAD parent and the source commit's author
// (revert/cherry-pick never create a merge commit).
func (r *Repository) commitSequenceResult(result *merge.Result, headHash hash.Hash, message string, author object.Signature) (hash.Hash, error) {
	treeHash, err := r.buildTreeFromEntries(result.Clean)
	if err != nil {
		return hash.ZeroHash, err
	}
	committer, err := r.committerSignature(time.Now())
	if err != nil {
		return hash.ZeroHash, err
	}
	c := &object.Commit{
		Tree:      treeHash,
		Parents:   []hash.Hash{headHash},
		Author:    author,
		Committer: committer,
		Message:   message,
	}
	return r.Objects.StoreCommit(c)
}

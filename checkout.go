package ashera

import (
	"fmt"

	"github.com/asheraflow/ashera/plumbing"
	"github.com/asheraflow/ashera/plumbing/filemode"
)

// Checkout switches the working tree, index, and HEAD to target (a branch
// name or a committish). If target names an existing branch, HEAD attaches
// to it; otherwise HEAD detaches at the resolved commit, per spec.md §4.3.
// Refuses when the working tree has uncommitted changes.
func (r *Repository) Checkout(target string) error {
	if err := r.preflightClean(); err != nil {
		return err
	}

	isBranch, err := r.branchExists(target)
	if err != nil {
		return err
	}

	h, err := r.resolveCommittish(target)
	if err != nil {
		return err
	}
	commit, err := r.Objects.Commit(h)
	if err != nil {
		return fmt.Errorf("ashera: checkout: %w", err)
	}
	flat, err := r.flattenCommitTree(commit)
	if err != nil {
		return err
	}
	if err := r.materializeTree(flat); err != nil {
		return err
	}

	if isBranch {
		return r.Refs.SetSymbolic(plumbing.HEAD, plumbing.NewBranchReferenceName(target))
	}
	return r.Refs.Update(plumbing.HEAD, nil, h)
}

// CheckoutPaths restores specific working-tree paths from the index,
// discarding unstaged edits (`checkout -- <path>...`), without touching
// HEAD or any other path.
func (r *Repository) CheckoutPaths(paths ...string) error {
	if len(paths) == 0 {
		return fmt.Errorf("ashera: checkout: no paths given")
	}
	idx, err := r.LoadIndex()
	if err != nil {
		return err
	}

	for _, p := range paths {
		e, err := idx.Lookup(p)
		if err != nil {
			return fmt.Errorf("%w: %s", plumbing.ErrUnknownRef, p)
		}
		blob, err := r.Objects.Blob(e.Hash)
		if err != nil {
			return err
		}
		mode := e.Mode
		if mode != filemode.Executable {
			mode = filemode.Regular
		}
		if err := r.Workspace.WriteFile(p, blob.Content, mode); err != nil {
			return err
		}
	}
	return nil
}

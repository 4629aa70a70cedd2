package ashera

import (
	"errors"
	"fmt"

	"github.com/asheraflow/ashera/plumbing"
)

// BranchInfo is one branch's name and whether HEAD is currently attached
// to it.
type BranchInfo struct {
	Name    string
	Current bool
}

// Branches lists every branch under refs/heads/, sorted, flagging the one
// HEAD is attached to (if any).
func (r *Repository) Branches() ([]BranchInfo, error) {
	heads, err := r.Refs.ListHeads()
	if err != nil {
		return nil, err
	}
	target, attached, err := r.Refs.HeadTarget()
	if err != nil {
		return nil, err
	}

	out := make([]BranchInfo, 0, len(heads))
	for _, name := range heads {
		out = append(out, BranchInfo{Name: name.Short(), Current: attached && name == target})
	}
	return out, nil
}

// CreateBranch creates refs/heads/<name> pointing at startPoint (a
// committish; "" or "HEAD" means HEAD's current commit). It does not move
// HEAD.
func (r *Repository) CreateBranch(name, startPoint string) error {
	branchRef := plumbing.NewBranchReferenceName(name)
	if _, err := r.Refs.Read(branchRef); err == nil {
		return fmt.Errorf("ashera: branch %q already exists", name)
	} else if !errors.Is(err, plumbing.ErrUnknownRef) {
		return err
	}

	h, err := r.resolveCommittish(startPoint)
	if err != nil {
		return err
	}
	return r.Refs.Update(branchRef, nil, h)
}

// DeleteBranch removes refs/heads/<name>, refusing if it is the branch
// HEAD is currently attached to.
func (r *Repository) DeleteBranch(name string) error {
	branchRef := plumbing.NewBranchReferenceName(name)

	target, attached, err := r.Refs.HeadTarget()
	if err != nil {
		return err
	}
	if attached && target == branchRef {
		return fmt.Errorf("ashera: cannot delete branch %q: checked out", name)
	}

	ref, err := r.Refs.Read(branchRef)
	if err != nil {
		return fmt.Errorf("ashera: branch %q not found: %w", name, err)
	}
	return r.Refs.Delete(branchRef, ref.Hash())
}

// branchExists reports whether a branch named name exists, for checkout's
// create-vs-switch disambiguation.
func (r *Repository) branchExists(name string) (bool, error) {
	_, err := r.Refs.Read(plumbing.NewBranchReferenceName(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, plumbing.ErrUnknownRef) {
		return false, nil
	}
	return false, err
}

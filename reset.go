package ashera

import (
	"fmt"

	"github.com/asheraflow/ashera/index"
	"github.com/asheraflow/ashera/plumbing/object"
)

// ResetMode selects how much of the working tree and index `reset` rewrites,
// per spec.md §4.6.1.
type ResetMode int

const (
	// ResetSoft moves HEAD only; index and working tree are untouched.
	ResetSoft ResetMode = iota
	// ResetMixed moves HEAD and resets the index to match, leaving the
	// working tree untouched (the default mode).
	ResetMixed
	// ResetHard moves HEAD, resets the index, and overwrites the working
	// tree to match; any uncommitted change is discarded.
	ResetHard
)

// Reset moves HEAD (and the branch it's attached to) to target, per mode.
func (r *Repository) Reset(target string, mode ResetMode) error {
	oldHead, _, _, err := r.Head()
	if err != nil {
		return err
	}
	newHead, err := r.resolveCommittish(target)
	if err != nil {
		return err
	}
	commit, err := r.Objects.Commit(newHead)
	if err != nil {
		return fmt.Errorf("ashera: reset: %w", err)
	}

	if mode == ResetSoft {
		return r.advanceHead(oldHead, newHead)
	}

	flat, err := r.flattenCommitTree(commit)
	if err != nil {
		return err
	}
	if mode == ResetHard {
		err = r.materializeTree(flat)
	} else {
		err = r.resetIndexOnly(flat)
	}
	if err != nil {
		return err
	}
	return r.advanceHead(oldHead, newHead)
}

// ResetPaths resets only the index entries for paths to their HEAD (or, if
// explicit, the given committish) contents, without moving HEAD or
// touching the working tree; plain `reset [<committish>] -- <path>...`.
func (r *Repository) ResetPaths(target string, paths ...string) error {
	h, err := r.resolveCommittish(target)
	if err != nil {
		return err
	}
	commit, err := r.Objects.Commit(h)
	if err != nil {
		return fmt.Errorf("ashera: reset: %w", err)
	}
	flat, err := r.flattenCommitTree(commit)
	if err != nil {
		return err
	}

	return r.WithIndex(func(idx *index.Index) error {
		for _, p := range paths {
			if e, ok := flat[p]; ok {
				idx.Add(&index.Entry{Name: e.Name, Mode: e.Mode, Hash: e.Hash})
			} else {
				idx.Remove(p)
			}
		}
		return nil
	})
}

// resetIndexOnly rewrites the index to match flat, without touching the
// working tree (ResetMixed).
func (r *Repository) resetIndexOnly(flat map[string]object.TreeEntry) error {
	newIdx := index.New()
	for _, e := range flat {
		if err := newIdx.Add(&index.Entry{Name: e.Name, Mode: e.Mode, Hash: e.Hash}); err != nil {
			return err
		}
	}
	return r.writeIndexAtomic(newIdx)
}

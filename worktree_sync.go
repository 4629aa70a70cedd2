package ashera

import (
	"fmt"

	"github.com/asheraflow/ashera/index"
	"github.com/asheraflow/ashera/plumbing"
	"github.com/asheraflow/ashera/plumbing/object"
	"github.com/asheraflow/ashera/workspace"
)

// preflightClean returns ErrDirtyWorkingTree if any path has a staged or
// unstaged change, an untracked file included (its Unstaged column is '?');
// checkout, merge, revert, and cherry-pick run it before they start
// rewriting files.
func (r *Repository) preflightClean() error {
	statuses, err := r.Status()
	if err != nil {
		return err
	}
	for _, s := range statuses {
		if s.Staged != ' ' && s.Staged != '?' || s.Unstaged != ' ' {
			return fmt.Errorf("%w: %s", plumbing.ErrDirtyWorkingTree, s.Path)
		}
	}
	return nil
}

// materializeTree overwrites the working tree and index to exactly match
// target: every entry in target is (re)written, every path tracked by the
// current index but absent from target is removed from disk, and the index
// is replaced with fresh stage-0 entries carrying target's blob hashes and
// a stat cache read back from the files just written. Used by checkout,
// `reset --hard`, and a successful (non-conflicting) merge/revert/
// cherry-pick to land their result.
func (r *Repository) materializeTree(target map[string]object.TreeEntry) error {
	idx, err := r.LoadIndex()
	if err != nil {
		return err
	}
	for _, e := range idx.Entries() {
		if e.Stage != index.Merged {
			continue
		}
		if _, ok := target[e.Name]; !ok {
			if r.Workspace.Exists(e.Name) {
				if err := r.Workspace.RemoveFile(e.Name); err != nil {
					return err
				}
			}
		}
	}

	newIdx := index.New()
	for path, e := range target {
		blob, err := r.Objects.Blob(e.Hash)
		if err != nil {
			return fmt.Errorf("ashera: materializing %s: %w", path, err)
		}
		if err := r.Workspace.WriteFile(path, blob.Content, e.Mode); err != nil {
			return err
		}

		info, err := r.Workspace.Stat(path)
		if err != nil {
			return err
		}
		if err := newIdx.Add(&index.Entry{
			Name:       path,
			Mode:       e.Mode,
			Hash:       e.Hash,
			ModifiedAt: info.ModTime(),
			Size:       uint32(info.Size()),
			Inode:      workspace.InodeOf(info),
		}); err != nil {
			return err
		}
	}

	return r.writeIndexAtomic(newIdx)
}

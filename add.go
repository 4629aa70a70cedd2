package ashera

import (
	"fmt"

	"github.com/asheraflow/ashera/index"
	"github.com/asheraflow/ashera/internal/vcslog"
	"github.com/asheraflow/ashera/plumbing/filemode"
	"github.com/asheraflow/ashera/workspace"
)

// Add stages paths (files or directory prefixes) into the index: each
// matching working-tree file is hashed and written to the object store,
// then recorded as a stage-0 entry with a fresh stat cache. The stat-cache
// fast path (spec.md §4.2) is not applicable here since `add` always has
// fresh bytes in hand; it exists to let `status`/future `add` calls skip
// rehashing unchanged files.
func (r *Repository) Add(paths ...string) error {
	entries, err := r.Workspace.Walk()
	if err != nil {
		return err
	}

	matched := map[string]bool{}
	for _, e := range entries {
		if isUnderAny(e.Path, paths) {
			matched[e.Path] = true
		}
	}
	if len(paths) > 0 {
		for _, p := range paths {
			if !r.Workspace.Exists(p) {
				return fmt.Errorf("add: pathspec %q did not match any files", p)
			}
		}
	}

	return r.WithIndex(func(idx *index.Index) error {
		for _, e := range entries {
			if !matched[e.Path] {
				continue
			}
			content, err := r.Workspace.ReadFile(e.Path)
			if err != nil {
				return fmt.Errorf("add: reading %s: %w", e.Path, err)
			}
			h, err := r.Objects.StoreBlob(content)
			if err != nil {
				return fmt.Errorf("add: storing %s: %w", e.Path, err)
			}

			mode := e.Mode
			if mode != filemode.Executable {
				mode = filemode.Regular
			}

			entry := &index.Entry{
				Name:       e.Path,
				Mode:       mode,
				Hash:       h,
				ModifiedAt: e.Info.ModTime(),
				Size:       uint32(e.Info.Size()),
				Inode:      workspace.InodeOf(e.Info),
			}
			if err := idx.Add(entry); err != nil {
				return fmt.Errorf("add: %w", err)
			}
			vcslog.Logger.Debug().Str("path", e.Path).Str("oid", h.String()).Msg("staged")
		}
		return nil
	})
}

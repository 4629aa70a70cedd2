package ashera

import (
	"fmt"

	"github.com/asheraflow/ashera/index"
)

// RmOptions controls Rm's handling of a path whose working-tree content no
// longer matches what's staged.
type RmOptions struct {
	// Cached removes the path from the index only, leaving the working
	// tree file in place (`rm --cached`).
	Cached bool
	// Force allows removing a path even if it has unstaged changes
	// (normally refused to avoid silently discarding edits); staged
	// changes are not checked either way.
	Force bool
}

// Rm removes paths from the index and, unless Cached, from the working
// tree.
func (r *Repository) Rm(opts RmOptions, paths ...string) error {
	if len(paths) == 0 {
		return fmt.Errorf("ashera: rm: no paths given")
	}

	if !opts.Force {
		statuses, err := r.Status()
		if err != nil {
			return err
		}
		dirty := map[string]bool{}
		for _, s := range statuses {
			if s.Unstaged != ' ' {
				dirty[s.Path] = true
			}
		}
		for _, p := range paths {
			if dirty[p] {
				return fmt.Errorf("ashera: rm: %s has unstaged changes (use Force)", p)
			}
		}
	}

	return r.WithIndex(func(idx *index.Index) error {
		for _, p := range paths {
			if _, err := idx.Lookup(p); err != nil {
				return fmt.Errorf("ashera: rm: %s is not tracked: %w", p, err)
			}
			idx.Remove(p)
			if !opts.Cached && r.Workspace.Exists(p) {
				if err := r.Workspace.RemoveFile(p); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

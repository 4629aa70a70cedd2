package index

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/asheraflow/ashera/plumbing/filemode"
	"github.com/asheraflow/ashera/plumbing/hash"
)

// ErrEntryNotFound is returned by Lookup when no stage-0 entry exists for
// a path.
var ErrEntryNotFound = fmt.Errorf("index: entry not found")

// ErrFileDirectoryCollision is returned by Add when the new path is itself
// a directory prefix of tracked files. A tracked file that is a directory
// prefix of the new path is not detected.
var ErrFileDirectoryCollision = fmt.Errorf("index: file/directory collision")

// Index is the staging area: an ordered set of Entry values, kept sorted
// by (path, stage), plus the set of directory prefixes implied by the
// currently tracked paths.
type Index struct {
	entries []*Entry
}

// New returns an empty index.
func New() *Index {
	return &Index{}
}

func cmpKey(a *Entry) (string, Stage) { return a.Name, a.Stage }

func (i *Index) sort() {
	sort.Slice(i.entries, func(a, b int) bool {
		na, sa := cmpKey(i.entries[a])
		nb, sb := cmpKey(i.entries[b])
		if na != nb {
			return na < nb
		}
		return sa < sb
	})
}

// Entries returns the entries in on-disk (path, stage) order.
func (i *Index) Entries() []*Entry {
	i.sort()
	return i.entries
}

// trackedDirs computes the set of directory prefixes implied by every
// stage-0 and staged path currently in the index, used to detect
// file/directory collisions before `add` mutates anything.
func (i *Index) trackedDirs(except string) map[string]bool {
	dirs := make(map[string]bool)
	for _, e := range i.entries {
		if e.Name == except {
			continue
		}
		dir := path.Dir(e.Name)
		for dir != "." && dir != "/" {
			dirs[dir] = true
			dir = path.Dir(dir)
		}
	}
	return dirs
}

// collides reports whether adding path p (a file) would collide with a
// tracked directory, or whether p is itself a prefix of a tracked file
// (i.e. p is being added as a file but already exists as a directory).
func (i *Index) collides(p string) bool {
	dirs := i.trackedDirs(p)
	if dirs[p] {
		return true
	}
	for _, e := range i.entries {
		if e.Stage != Merged {
			continue
		}
		if strings.HasPrefix(e.Name, p+"/") {
			return true
		}
	}
	return false
}

// Add stages (or replaces) a clean, stage-0 entry. It is the caller's
// responsibility to have already resolved any conflict stages for the
// same path (Add removes them, matching §3's invariant that a path is
// either stage-0 alone, or stages 1/2/3 alone, never both).
func (i *Index) Add(e *Entry) error {
	if i.collides(e.Name) {
		return fmt.Errorf("%w: %s", ErrFileDirectoryCollision, e.Name)
	}

	e.Stage = Merged
	i.removeAllStages(e.Name)
	i.entries = append(i.entries, e)
	i.sort()
	return nil
}

// Remove deletes every stage of path p.
func (i *Index) Remove(p string) {
	i.removeAllStages(p)
}

func (i *Index) removeAllStages(p string) {
	kept := i.entries[:0]
	for _, e := range i.entries {
		if e.Name != p {
			kept = append(kept, e)
		}
	}
	i.entries = kept
}

// AddConflict stages a path in conflict: up to three entries at stages
// 1 (base), 2 (ours), 3 (theirs). A zero hash for any of base/ours/theirs
// means that side had no entry (e.g. the path was added on only one side).
// The stage-0 entry, if any, is removed, per the invariant in §3.
func (i *Index) AddConflict(p string, base, ours, theirs *Entry) {
	i.removeAllStages(p)
	for stage, e := range []*Entry{base, ours, theirs} {
		if e == nil {
			continue
		}
		e.Name = p
		e.Stage = Stage(stage + 1)
		i.entries = append(i.entries, e)
	}
	i.sort()
}

// Lookup returns the stage-0 entry for p.
func (i *Index) Lookup(p string) (*Entry, error) {
	for _, e := range i.entries {
		if e.Name == p && e.Stage == Merged {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, p)
}

// LookupStage returns the entry for p at a specific stage, if any.
func (i *Index) LookupStage(p string, stage Stage) (*Entry, bool) {
	for _, e := range i.entries {
		if e.Name == p && e.Stage == stage {
			return e, true
		}
	}
	return nil, false
}

// Conflicted reports whether p currently has any non-zero conflict stage.
func (i *Index) Conflicted(p string) bool {
	for _, e := range i.entries {
		if e.Name == p && e.Stage != Merged {
			return true
		}
	}
	return false
}

// ConflictedPaths returns the distinct set of paths with at least one
// conflict stage, in sorted order.
func (i *Index) ConflictedPaths() []string {
	set := make(map[string]bool)
	for _, e := range i.entries {
		if e.Stage != Merged {
			set[e.Name] = true
		}
	}
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of entries of any stage.
func (i *Index) Len() int { return len(i.entries) }

// Paths returns the distinct stage-0 paths, sorted.
func (i *Index) Paths() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, e := range i.entries {
		if e.Stage == Merged && !seen[e.Name] {
			seen[e.Name] = true
			paths = append(paths, e.Name)
		}
	}
	sort.Strings(paths)
	return paths
}

// entryFor is a small constructor used by commands building a fresh
// stage-0 entry from a blob hash and mode (no stat info: this is used
// when materializing entries from a tree, e.g. reset/checkout, where
// there is no workspace stat to cache yet).
func entryFor(name string, mode filemode.FileMode, h hash.Hash) *Entry {
	return &Entry{Name: name, Mode: mode, Hash: h, Stage: Merged}
}

// NewEntry is the exported form of entryFor, for callers outside the
// package building entries from tree content.
func NewEntry(name string, mode filemode.FileMode, h hash.Hash) *Entry {
	return entryFor(name, mode, h)
}

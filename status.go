package ashera

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/asheraflow/ashera/plumbing"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/asheraflow/ashera/plumbing/object"
	"github.com/asheraflow/ashera/workspace"
)

// PathStatus is one path's combined staged (index vs HEAD) and unstaged
// (working tree vs index) classification, the two axes `git status`'s
// porcelain XY columns report.
type PathStatus struct {
	Path    string
	Staged  byte // ' ', 'A', 'M', 'D', '?'
	Unstaged byte // ' ', 'M', 'D', '?'
}

// Status reports every path with a staged or unstaged change, sorted.
func (r *Repository) Status() ([]PathStatus, error) {
	idx, err := r.LoadIndex()
	if err != nil {
		return nil, err
	}

	headCommit, err := r.HeadCommit()
	if err != nil && !errors.Is(err, plumbing.ErrUnknownRef) {
		return nil, err
	}
	headFlat, err := r.flattenCommitTree(headCommit)
	if err != nil {
		return nil, err
	}

	unstaged, err := r.Workspace.Classify(idx, func(b []byte) hash.Hash { return hash.Sum(object.BlobObject.String(), b) })
	if err != nil {
		return nil, err
	}

	byPath := map[string]*PathStatus{}
	get := func(p string) *PathStatus {
		ps, ok := byPath[p]
		if !ok {
			ps = &PathStatus{Path: p, Staged: ' ', Unstaged: ' '}
			byPath[p] = ps
		}
		return ps
	}

	for _, e := range idx.Entries() {
		headEntry, inHead := headFlat[e.Name]
		switch {
		case !inHead:
			get(e.Name).Staged = 'A'
		case headEntry.Hash != e.Hash || headEntry.Mode != e.Mode:
			get(e.Name).Staged = 'M'
		}
	}
	trackedNow := map[string]bool{}
	for _, e := range idx.Entries() {
		trackedNow[e.Name] = true
	}
	for p := range headFlat {
		if !trackedNow[p] {
			get(p).Staged = 'D'
		}
	}

	for p, st := range unstaged {
		switch st {
		case workspace.Modified:
			get(p).Unstaged = 'M'
		case workspace.Deleted:
			get(p).Unstaged = 'D'
		case workspace.Untracked:
			get(p).Unstaged = '?'
			get(p).Staged = '?'
		}
	}

	out := make([]PathStatus, 0, len(byPath))
	for _, ps := range byPath {
		if ps.Staged == ' ' && ps.Unstaged == ' ' {
			continue
		}
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// StatusPorcelain renders Status in the short "XY PATH" form (`??` for
// untracked), matching go-git's own status.go String() shape.
func (r *Repository) StatusPorcelain() (string, error) {
	statuses, err := r.Status()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, ps := range statuses {
		fmt.Fprintf(&b, "%c%c %s\n", ps.Staged, ps.Unstaged, ps.Path)
	}
	return b.String(), nil
}

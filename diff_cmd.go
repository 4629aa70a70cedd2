package ashera

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/asheraflow/ashera/diff"
	"github.com/asheraflow/ashera/plumbing"
	"github.com/asheraflow/ashera/plumbing/object"
)

// Diff renders a unified-style diff. cached=true compares the index against
// HEAD ("diff --cached"); cached=false compares the working tree against
// the index. Either way it's restricted to paths under any of pathspec,
// or every changed path when pathspec is empty.
func (r *Repository) Diff(cached bool, pathspec ...string) (string, error) {
	if cached {
		return r.diffCached(pathspec)
	}
	return r.diffWorkingTree(pathspec)
}

func (r *Repository) diffCached(pathspec []string) (string, error) {
	idx, err := r.LoadIndex()
	if err != nil {
		return "", err
	}
	indexTreeHash, err := r.buildTreeFromIndex(idx)
	if err != nil {
		return "", err
	}
	indexTree, err := r.Objects.Tree(indexTreeHash)
	if err != nil {
		return "", err
	}

	headCommit, err := r.HeadCommit()
	if err != nil && !errors.Is(err, plumbing.ErrUnknownRef) {
		return "", err
	}
	var headTree *object.Tree
	if headCommit != nil {
		headTree, err = r.Objects.Tree(headCommit.Tree)
		if err != nil {
			return "", err
		}
	}

	changes, err := diff.TreeDiff(r.Objects, headTree, indexTree)
	if err != nil {
		return "", err
	}
	return r.renderChanges(changes, pathspec)
}

func (r *Repository) diffWorkingTree(pathspec []string) (string, error) {
	idx, err := r.LoadIndex()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, e := range idx.Entries() {
		if e.Stage != 0 {
			continue
		}
		if !isUnderAny(e.Name, pathspec) {
			continue
		}
		if !r.Workspace.Exists(e.Name) {
			blob, err := r.Objects.Blob(e.Hash)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "--- a/%s\n+++ /dev/null\n", e.Name)
			b.WriteString(diff.Unified(diff.Lines(string(blob.Content), ""), 3))
			continue
		}
		working, err := r.Workspace.ReadFile(e.Name)
		if err != nil {
			return "", err
		}
		blob, err := r.Objects.Blob(e.Hash)
		if err != nil {
			return "", err
		}
		if string(working) == string(blob.Content) {
			continue
		}
		fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", e.Name, e.Name)
		b.WriteString(diff.Unified(diff.Lines(string(blob.Content), string(working)), 3))
	}
	return b.String(), nil
}

func (r *Repository) renderChanges(changes []diff.Change, pathspec []string) (string, error) {
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })

	var b strings.Builder
	for _, c := range changes {
		if !isUnderAny(c.Path, pathspec) {
			continue
		}
		var oldContent, newContent string
		if c.Type != diff.Insert {
			blob, err := r.Objects.Blob(c.OldHash)
			if err != nil {
				return "", err
			}
			oldContent = string(blob.Content)
		}
		if c.Type != diff.Delete {
			blob, err := r.Objects.Blob(c.NewHash)
			if err != nil {
				return "", err
			}
			newContent = string(blob.Content)
		}
		oldPath, newPath := c.Path, c.Path
		if c.Type == diff.Insert {
			oldPath = "/dev/null"
		}
		if c.Type == diff.Delete {
			newPath = "/dev/null"
		}
		fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", oldPath, newPath)
		b.WriteString(diff.Unified(diff.Lines(oldContent, newContent), 3))
	}
	return b.String(), nil
}

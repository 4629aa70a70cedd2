package ashera

import (
	"sort"
	"strings"

	"github.com/asheraflow/ashera/index"
	"github.com/asheraflow/ashera/plumbing/filemode"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/asheraflow/ashera/plumbing/object"
)

// dirNode is a scratch in-memory directory used to fold a flat path->entry
// map into the nested object.Tree shape a commit references. Grounded on
// the same flatten/nest idiom as merge.materializeTree, generalized to
// build directly from an index instead of a merge.Result.
type dirNode struct {
	entries  map[string]object.TreeEntry
	children map[string]*dirNode
}

func newDirNode() *dirNode {
	return &dirNode{entries: map[string]object.TreeEntry{}, children: map[string]*dirNode{}}
}

func splitPath(p string) []string {
	var segs []string
	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			segs = append(segs, p[start:i])
			start = i + 1
		}
	}
	segs = append(segs, p[start:])
	return segs
}

// buildTreeFromEntries nests a flat path->entry map and stores every
// subtree bottom-up, returning the root tree's hash.
func (r *Repository) buildTreeFromEntries(flat map[string]object.TreeEntry) (hash.Hash, error) {
	root := newDirNode()

	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		e := flat[p]
		segs := splitPath(p)
		node := root
		for _, seg := range segs[:len(segs)-1] {
			child, ok := node.children[seg]
			if !ok {
				child = newDirNode()
				node.children[seg] = child
			}
			node = child
		}
		leaf := segs[len(segs)-1]
		node.entries[leaf] = e
	}

	var build func(n *dirNode) (*object.Tree, error)
	build = func(n *dirNode) (*object.Tree, error) {
		var entries []object.TreeEntry
		for name, e := range n.entries {
			e.Name = name
			entries = append(entries, e)
		}
		for name, child := range n.children {
			subtree, err := build(child)
			if err != nil {
				return nil, err
			}
			h, err := r.Objects.StoreTree(subtree)
			if err != nil {
				return nil, err
			}
			entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: h})
		}
		return object.NewTree(entries), nil
	}

	tree, err := build(root)
	if err != nil {
		return hash.ZeroHash, err
	}
	return r.Objects.StoreTree(tree)
}

// buildTreeFromIndex materializes the index's stage-0 entries into a tree
// object and stores it, the step `commit` uses to turn staged content into
// a snapshot (spec.md §2's "Workspace -> add -> Index -> commit" flow).
func (r *Repository) buildTreeFromIndex(idx *index.Index) (hash.Hash, error) {
	flat := make(map[string]object.TreeEntry)
	for _, e := range idx.Entries() {
		if e.Stage != index.Merged {
			continue
		}
		flat[e.Name] = object.TreeEntry{Name: e.Name, Mode: e.Mode, Hash: e.Hash}
	}
	return r.buildTreeFromEntries(flat)
}

// flattenTree recursively expands a tree into a full path->entry map of
// its leaves (files/symlinks only, directories are not represented as
// their own entries), the inverse of buildTreeFromEntries.
func (r *Repository) flattenTree(t *object.Tree, prefix string, out map[string]object.TreeEntry) error {
	if t == nil {
		return nil
	}
	for _, e := range t.Entries {
		full := e.Name
		if prefix != "" {
			full = prefix + "/" + e.Name
		}
		if e.Mode != filemode.Dir {
			out[full] = object.TreeEntry{Name: full, Mode: e.Mode, Hash: e.Hash}
			continue
		}
		sub, err := r.Objects.Tree(e.Hash)
		if err != nil {
			return err
		}
		if err := r.flattenTree(sub, full, out); err != nil {
			return err
		}
	}
	return nil
}

// flattenCommitTree is a convenience wrapper for flattening the tree a
// commit points at; nil commit yields an empty map (e.g. diffing against
// a repository with no HEAD yet).
func (r *Repository) flattenCommitTree(c *object.Commit) (map[string]object.TreeEntry, error) {
	out := map[string]object.TreeEntry{}
	if c == nil {
		return out, nil
	}
	t, err := r.Objects.Tree(c.Tree)
	if err != nil {
		return nil, err
	}
	if err := r.flattenTree(t, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

// isUnderAny reports whether p equals or is nested under any of prefixes.
func isUnderAny(p string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, pre := range prefixes {
		if p == pre || strings.HasPrefix(p, pre+"/") {
			return true
		}
	}
	return false
}

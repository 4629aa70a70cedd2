// Package merge implements the three-way merge engine: merge-base
// selection (via plumbing/object's recursive reduction), fast-forward
// detection, the path classification and diff3-style content merge of
// §4.5, and merge-commit construction. Grounded on go-git's own
// tree_diff.go/tree_walker.go name-sorted merge-join idiom, generalized
// from two-way to three-way comparison.
package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/asheraflow/ashera/diff"
	"github.com/asheraflow/ashera/plumbing"
	"github.com/asheraflow/ashera/plumbing/filemode"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/asheraflow/ashera/plumbing/object"
)

// similarityThreshold is the minimum line-overlap ratio at which a
// delete-on-one-side/add-on-the-other pair is treated as a rename (§4.4.3).
const similarityThreshold = 0.5

// Conflict describes one unresolved path after a merge attempt.
type Conflict struct {
	Path   string
	Reason string
	Base   *object.TreeEntry
	Ours   *object.TreeEntry
	Theirs *object.TreeEntry
	// WorkingTreeContent holds the conflict-marker text to write into the
	// working tree for a content conflict; empty for non-content conflicts.
	WorkingTreeContent []byte
	// RenamedPath is set for a file/dir conflict, where the file is
	// written to disk under path+"~"+branch instead of path.
	RenamedPath string
}

// Result is the outcome of a three-way tree merge, before any commit or
// working-tree materialization happens.
type Result struct {
	Clean     map[string]object.TreeEntry // path -> entry of the merged tree; conflicted paths are absent
	Conflicts []Conflict
	FastForward bool
}

// Loader is the subset of objectstore.Store the merge engine needs: reading
// trees/commits/blobs to compare, and writing back new blobs/trees when a
// content merge resolves cleanly to bytes neither side had (diff3 merges) or
// a virtual base needs materializing.
type Loader interface {
	diff.TreeLoader
	object.Loader
	Blob(h hash.Hash) (*object.Blob, error)
	StoreBlob(content []byte) (hash.Hash, error)
	StoreTree(t *object.Tree) (hash.Hash, error)
}

// MergeBase finds the merge base(s) of ours and theirs per §4.5 step 1,
// reusing the criss-cross reduction already implemented for ancestry
// queries.
func MergeBase(l object.Loader, ours, theirs *object.Commit) ([]*object.Commit, error) {
	return object.MergeBases(l, ours, theirs)
}

// FastForward reports whether theirs can be reached by advancing ours
// without a merge commit (ours is an ancestor of theirs), or the reverse
// (already up to date).
func FastForward(l object.Loader, ours, theirs *object.Commit) (forward, upToDate bool, err error) {
	if ours.Hash == theirs.Hash {
		return false, true, nil
	}

	// ours is an ancestor of theirs: theirs is reachable by fast-forwarding.
	forward, err = object.IsAncestor(l, theirs, ours)
	if err != nil {
		return false, false, err
	}
	if forward {
		return true, false, nil
	}

	// theirs is an ancestor of ours: nothing to do.
	upToDate, err = object.IsAncestor(l, ours, theirs)
	if err != nil {
		return false, false, err
	}
	return false, upToDate, nil
}

// VirtualBase builds an in-memory commit standing in for multiple
// criss-cross bases (a synthetic ancestor; it is never persisted). Each
// reduction step, left to right in discovery order, runs ThreeWay with the
// accumulated base as both base and ours and the next candidate as theirs,
// so the step's result is that candidate's tree: the virtual base carries
// the last candidate's tree, and changes unique to earlier candidates are
// not merged into it.
func VirtualBase(l Loader, bases []*object.Commit) (*object.Commit, error) {
	if len(bases) == 0 {
		return nil, fmt.Errorf("merge: no merge base candidates")
	}
	if len(bases) == 1 {
		return bases[0], nil
	}

	acc := bases[0]
	for _, next := range bases[1:] {
		res, err := ThreeWay(l, acc, acc, next, "base", "other")
		if err != nil {
			return nil, err
		}
		tree, err := materializeTree(l, res.Clean)
		if err != nil {
			return nil, err
		}
		acc = &object.Commit{Tree: tree.Hash, Message: "virtual merge base"}
	}
	return acc, nil
}

// materializeTree builds (and stores) a flat-to-nested tree from a
// path->entry map, used by VirtualBase to turn a clean merge result back
// into a real tree object the next reduction step can diff against.
func materializeTree(l Loader, clean map[string]object.TreeEntry) (*object.Tree, error) {
	type dirNode struct {
		entries  map[string]object.TreeEntry
		children map[string]*dirNode
	}
	root := &dirNode{entries: map[string]object.TreeEntry{}, children: map[string]*dirNode{}}

	paths := make([]string, 0, len(clean))
	for p := range clean {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		e := clean[p]
		segs := splitPath(p)
		node := root
		for _, seg := range segs[:len(segs)-1] {
			child, ok := node.children[seg]
			if !ok {
				child = &dirNode{entries: map[string]object.TreeEntry{}, children: map[string]*dirNode{}}
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
			h, err := l.StoreTree(subtree)
			if err != nil {
				return nil, err
			}
			entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: h})
		}
		return object.NewTree(entries), nil
	}

	tree, err := build(root)
	if err != nil {
		return nil, err
	}
	_, err = l.StoreTree(tree)
	return tree, err
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

// ThreeWay performs the full path-classification and content-merge pass of
// §4.5 steps 3-4 across base, ours, theirs trees.
func ThreeWay(l Loader, baseCommit, oursCommit, theirsCommit *object.Commit, oursLabel, theirsLabel string) (*Result, error) {
	baseTree, err := treeOf(l, baseCommit)
	if err != nil {
		return nil, err
	}
	oursTree, err := treeOf(l, oursCommit)
	if err != nil {
		return nil, err
	}
	theirsTree, err := treeOf(l, theirsCommit)
	if err != nil {
		return nil, err
	}

	baseDiff, err := diff.TreeDiff(l, baseTree, oursTree)
	if err != nil {
		return nil, fmt.Errorf("merge: diffing base vs ours: %w", err)
	}
	theirsDiff, err := diff.TreeDiff(l, baseTree, theirsTree)
	if err != nil {
		return nil, fmt.Errorf("merge: diffing base vs theirs: %w", err)
	}

	oursByPath := indexChanges(baseDiff)
	theirsByPath := indexChanges(theirsDiff)

	allPaths := map[string]bool{}
	for p := range oursByPath {
		allPaths[p] = true
	}
	for p := range theirsByPath {
		allPaths[p] = true
	}

	paths := make([]string, 0, len(allPaths))
	for p := range allPaths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	result := &Result{Clean: map[string]object.TreeEntry{}}

	// Seed Clean with ours' full tree so paths unchanged on both sides carry through.
	oursAll, err := diff.TreeDiff(l, nil, oursTree)
	if err != nil {
		return nil, fmt.Errorf("merge: listing ours: %w", err)
	}
	for _, c := range oursAll {
		result.Clean[c.Path] = object.TreeEntry{Name: c.Path, Mode: c.NewMode, Hash: c.NewHash}
	}

	for _, p := range paths {
		oc, oChanged := oursByPath[p]
		tc, tChanged := theirsByPath[p]
		baseEntry, inBase := lookupFlat(l, baseTree, p)

		switch {
		case oChanged && !tChanged:
			if oc.Type != diff.Delete {
				result.Clean[p] = object.TreeEntry{Name: p, Mode: oc.NewMode, Hash: oc.NewHash}
			}
			// delete: simply absent from Clean

		case tChanged && !oChanged:
			if tc.Type != diff.Delete {
				result.Clean[p] = object.TreeEntry{Name: p, Mode: tc.NewMode, Hash: tc.NewHash}
			} else {
				delete(result.Clean, p)
			}

		default:
			// changed on both sides
			if oc.Type == diff.Delete && tc.Type == diff.Delete {
				continue // both deleted: clean, absent
			}
			if oc.Type == diff.Delete || tc.Type == diff.Delete {
				deletedLabel, modifiedLabel := oursLabel, theirsLabel
				if tc.Type == diff.Delete {
					deletedLabel, modifiedLabel = theirsLabel, oursLabel
				}
				delete(result.Clean, p)
				result.Conflicts = append(result.Conflicts, Conflict{
					Path:   p,
					Reason: fmt.Sprintf("modify/delete: modified on %s, deleted on %s", modifiedLabel, deletedLabel),
					Base:   entryPtr(baseEntry, inBase),
					Ours:   entryPtr(object.TreeEntry{Mode: oc.NewMode, Hash: oc.NewHash}, oc.Type != diff.Delete),
					Theirs: entryPtr(object.TreeEntry{Mode: tc.NewMode, Hash: tc.NewHash}, tc.Type != diff.Delete),
				})
				continue
			}

			if oc.NewMode == tc.NewMode && oc.NewHash == tc.NewHash {
				result.Clean[p] = object.TreeEntry{Name: p, Mode: oc.NewMode, Hash: oc.NewHash}
				continue
			}

			conflict, err := contentConflict(l, p, baseEntry, inBase, oc, tc, oursLabel, theirsLabel)
			if err != nil {
				return nil, err
			}
			if conflict.Reason == "" {
				// diff3 resolved cleanly even though ours/theirs hashes differ;
				// store the merged content as a new blob and use it directly.
				h, err := l.StoreBlob(conflict.WorkingTreeContent)
				if err != nil {
					return nil, err
				}
				mode := oc.NewMode
				result.Clean[p] = object.TreeEntry{Name: p, Mode: mode, Hash: h}
			} else {
				delete(result.Clean, p)
				result.Conflicts = append(result.Conflicts, *conflict)
			}
		}
	}

	if err := resolveTypeConflicts(l, oursTree, theirsTree, baseTree, paths, oursLabel, theirsLabel, result); err != nil {
		return nil, err
	}

	return result, nil
}

// resolveTypeConflicts finds §4.5 step 3's file/dir case: a path that is a
// file on one side and a directory on the other. The per-path loop above
// classifies leaf paths only, so a directory's appearance shows up there as
// an ordinary delete (the old file) plus inserts for each new file beneath
// it; this pass looks at every changed leaf's ancestor directories, and
// where ours/theirs disagree on a prefix's file-vs-directory-ness, replaces
// whatever the leaf-level loop produced for that prefix with a single
// Conflict carrying RenamedPath, leaving the directory side's own entries
// (already staged as ordinary clean adds under the prefix) untouched.
func resolveTypeConflicts(l Loader, oursTree, theirsTree, baseTree *object.Tree, changedLeaves []string, oursLabel, theirsLabel string, result *Result) error {
	checked := map[string]bool{}
	for _, leaf := range changedLeaves {
		for _, prefix := range prefixesOf(leaf) {
			if checked[prefix] {
				continue
			}
			checked[prefix] = true

			oEntry, oOK := lookupFlat(l, oursTree, prefix)
			tEntry, tOK := lookupFlat(l, theirsTree, prefix)
			if !oOK || !tOK {
				continue
			}
			oIsDir := oEntry.Mode == filemode.Dir
			tIsDir := tEntry.Mode == filemode.Dir
			if oIsDir == tIsDir {
				continue
			}

			fileEntry, fileLabel := oEntry, oursLabel
			if oIsDir {
				fileEntry, fileLabel = tEntry, theirsLabel
			}

			blob, err := l.Blob(fileEntry.Hash)
			if err != nil {
				return fmt.Errorf("merge: reading file side of %s: %w", prefix, err)
			}

			baseEntry, inBase := lookupFlat(l, baseTree, prefix)

			delete(result.Clean, prefix)
			result.Conflicts = pruneConflictsAt(result.Conflicts, prefix)

			result.Conflicts = append(result.Conflicts, Conflict{
				Path:               prefix,
				Reason:             fmt.Sprintf("file/dir conflict: file on %s, directory on %s", fileLabel, dirLabel(oursLabel, theirsLabel, fileLabel)),
				Base:               entryPtr(baseEntry, inBase),
				Ours:               entryPtr(oEntry, true),
				Theirs:             entryPtr(tEntry, true),
				WorkingTreeContent: blob.Content,
				RenamedPath:        prefix + "~" + fileLabel,
			})
		}
	}
	return nil
}

func dirLabel(oursLabel, theirsLabel, fileLabel string) string {
	if fileLabel == oursLabel {
		return theirsLabel
	}
	return oursLabel
}

// pruneConflictsAt drops any existing conflict at exactly path, about to be
// replaced by a file/dir conflict covering the whole prefix.
func pruneConflictsAt(conflicts []Conflict, path string) []Conflict {
	out := conflicts[:0]
	for _, c := range conflicts {
		if c.Path == path {
			continue
		}
		out = append(out, c)
	}
	return out
}

// prefixesOf returns every ancestor directory path of p (shallowest first),
// followed by p itself.
func prefixesOf(p string) []string {
	segs := splitPath(p)
	out := make([]string, 0, len(segs))
	for i := 1; i <= len(segs); i++ {
		out = append(out, strings.Join(segs[:i], "/"))
	}
	return out
}

func entryPtr(e object.TreeEntry, ok bool) *object.TreeEntry {
	if !ok {
		return nil
	}
	cp := e
	return &cp
}

func treeOf(l Loader, c *object.Commit) (*object.Tree, error) {
	if c == nil {
		return nil, nil
	}
	return l.Tree(c.Tree)
}

func lookupFlat(l Loader, t *object.Tree, path string) (object.TreeEntry, bool) {
	if t == nil {
		return object.TreeEntry{}, false
	}
	segs := splitPath(path)
	cur := t
	for i, seg := range segs {
		e, ok := cur.Entry(seg)
		if !ok {
			return object.TreeEntry{}, false
		}
		if i == len(segs)-1 {
			return e, true
		}
		if e.Mode != filemode.Dir {
			return object.TreeEntry{}, false
		}
		next, err := l.Tree(e.Hash)
		if err != nil {
			return object.TreeEntry{}, false
		}
		cur = next
	}
	return object.TreeEntry{}, false
}

func indexChanges(changes []diff.Change) map[string]diff.Change {
	m := make(map[string]diff.Change, len(changes))
	for _, c := range changes {
		m[c.Path] = c
	}
	return m
}

// contentConflict attempts the diff3-style content merge for a path changed
// divergently on both sides; it always returns a non-nil Conflict. When the
// merge is clean, Reason is empty and WorkingTreeContent holds the merged
// bytes, which ThreeWay stores as a new blob in result.Clean; otherwise
// Reason is "content" and WorkingTreeContent holds the conflict-marker text.
func contentConflict(l Loader, path string, base object.TreeEntry, hasBase bool, ours, theirs diff.Change, oursLabel, theirsLabel string) (*Conflict, error) {
	var baseContent string
	if hasBase {
		blob, err := l.Blob(base.Hash)
		if err != nil {
			return nil, err
		}
		baseContent = string(blob.Content)
	}

	oursBlob, err := l.Blob(ours.NewHash)
	if err != nil {
		return nil, err
	}
	theirsBlob, err := l.Blob(theirs.NewHash)
	if err != nil {
		return nil, err
	}

	merged, conflicted := ContentMerge(baseContent, string(oursBlob.Content), string(theirsBlob.Content), oursLabel, theirsLabel)

	if !conflicted {
		return &Conflict{
			Path:               path,
			Reason:             "",
			WorkingTreeContent: []byte(merged),
		}, nil
	}

	return &Conflict{
		Path:               path,
		Reason:             "content",
		Base:               entryPtr(base, hasBase),
		Ours:               &object.TreeEntry{Mode: ours.NewMode, Hash: ours.NewHash},
		Theirs:             &object.TreeEntry{Mode: theirs.NewMode, Hash: theirs.NewHash},
		WorkingTreeContent: []byte(merged),
	}, nil
}

// DetectRenames scans a one-sided delete set against a one-sided add set and
// pairs up entries whose content similarity clears similarityThreshold,
// per §4.4.3. Nothing else in this module calls it: ThreeWay's conflict
// classification does not use it (a renamed-and-edited file is still seen
// as delete+add there), and status/diff output does not relabel renames.
func DetectRenames(l Loader, deletes, adds []object.TreeEntry) map[string]string {
	renames := map[string]string{}
	used := make(map[int]bool)

	for _, d := range deletes {
		bestIdx := -1
		bestRatio := similarityThreshold
		for i, a := range adds {
			if used[i] {
				continue
			}
			if d.Hash == a.Hash {
				bestIdx = i
				bestRatio = 1
				break
			}
			db, err1 := l.Blob(d.Hash)
			ab, err2 := l.Blob(a.Hash)
			if err1 != nil || err2 != nil {
				continue
			}
			ratio := diff.SimilarityRatio(string(db.Content), string(ab.Content))
			if ratio >= bestRatio {
				bestIdx, bestRatio = i, ratio
			}
		}
		if bestIdx >= 0 {
			used[bestIdx] = true
			renames[d.Name] = adds[bestIdx].Name
		}
	}
	return renames
}

// Err returns plumbing.ErrMergeConflict if the merge left any path
// unresolved, nil otherwise.
func (r *Result) Err() error {
	if len(r.Conflicts) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d path(s)", plumbing.ErrMergeConflict, len(r.Conflicts))
}

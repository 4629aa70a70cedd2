// Package diff implements tree-level change detection (§5.1) and line-level
// content diffing (§5.2). Tree diffing is grounded on go-git's own
// tree_diff.go name-sorted merge-join; content diffing delegates the actual
// shortest-edit-script computation to github.com/sergi/go-diff, a Myers
// implementation, instead of hand-rolling one.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/asheraflow/ashera/plumbing/filemode"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/asheraflow/ashera/plumbing/object"
)

// ChangeType classifies one path-level difference between two trees.
type ChangeType int

const (
	Insert ChangeType = iota
	Delete
	Modify
)

func (c ChangeType) String() string {
	switch c {
	case Insert:
		return "Insert"
	case Delete:
		return "Delete"
	case Modify:
		return "Modify"
	default:
		return fmt.Sprintf("ChangeType(%d)", c)
	}
}

// Change is one path's difference between two trees (old/new are zero when
// the path didn't exist on that side).
type Change struct {
	Type    ChangeType
	Path    string
	OldMode filemode.FileMode
	NewMode filemode.FileMode
	OldHash hash.Hash
	NewHash hash.Hash
}

func (c Change) String() string {
	return fmt.Sprintf("<%s: %s>", c.Type, c.Path)
}

// TreeLoader loads a tree by hash, satisfied by objectstore.Store.
type TreeLoader interface {
	Tree(h hash.Hash) (*object.Tree, error)
}

// TreeDiff computes the full recursive set of path-level changes between
// trees a and b, either of which may be nil (meaning "no tree", i.e. every
// entry reachable from the other side is an Insert or Delete). Results are
// returned sorted by path.
func TreeDiff(l TreeLoader, a, b *object.Tree) ([]Change, error) {
	var out []Change
	if err := diffAt(l, "", a, b, &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func entriesOf(t *object.Tree) []object.TreeEntry {
	if t == nil {
		return nil
	}
	es := make([]object.TreeEntry, len(t.Entries))
	copy(es, t.Entries)
	sort.Slice(es, func(i, j int) bool { return es[i].Name < es[j].Name })
	return es
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func diffAt(l TreeLoader, prefix string, a, b *object.Tree, out *[]Change) error {
	ae := entriesOf(a)
	be := entriesOf(b)

	i, j := 0, 0
	for i < len(ae) && j < len(be) {
		switch cmp := strings.Compare(ae[i].Name, be[j].Name); {
		case cmp < 0:
			if err := emitOneSided(l, prefix, ae[i], Delete, out); err != nil {
				return err
			}
			i++
		case cmp > 0:
			if err := emitOneSided(l, prefix, be[j], Insert, out); err != nil {
				return err
			}
			j++
		default:
			if err := diffEntry(l, prefix, ae[i], be[j], out); err != nil {
				return err
			}
			i++
			j++
		}
	}
	for ; i < len(ae); i++ {
		if err := emitOneSided(l, prefix, ae[i], Delete, out); err != nil {
			return err
		}
	}
	for ; j < len(be); j++ {
		if err := emitOneSided(l, prefix, be[j], Insert, out); err != nil {
			return err
		}
	}
	return nil
}

// emitOneSided records every leaf under an entry that exists on only one
// side of the comparison, recursing into directories.
func emitOneSided(l TreeLoader, prefix string, e object.TreeEntry, kind ChangeType, out *[]Change) error {
	full := joinPath(prefix, e.Name)

	if e.Mode != filemode.Dir {
		c := Change{Type: kind, Path: full}
		if kind == Delete {
			c.OldMode, c.OldHash = e.Mode, e.Hash
		} else {
			c.NewMode, c.NewHash = e.Mode, e.Hash
		}
		*out = append(*out, c)
		return nil
	}

	sub, err := l.Tree(e.Hash)
	if err != nil {
		return fmt.Errorf("diff: loading subtree %s at %s: %w", e.Hash, full, err)
	}
	for _, child := range sub.Entries {
		if err := emitOneSided(l, full, child, kind, out); err != nil {
			return err
		}
	}
	return nil
}

// diffEntry handles a name present on both sides: unchanged if the modes and
// hashes are identical, a mode/content Modify if both are files, or a
// recursive descent if either or both sides are directories (a file
// replacing a directory, or vice versa, is handled as a delete-then-insert
// of the whole subtree).
func diffEntry(l TreeLoader, prefix string, a, b object.TreeEntry, out *[]Change) error {
	full := joinPath(prefix, a.Name)
	aIsDir := a.Mode == filemode.Dir
	bIsDir := b.Mode == filemode.Dir

	switch {
	case !aIsDir && !bIsDir:
		if a.Mode == b.Mode && a.Hash == b.Hash {
			return nil
		}
		out2 := append(*out, Change{
			Type: Modify, Path: full,
			OldMode: a.Mode, OldHash: a.Hash,
			NewMode: b.Mode, NewHash: b.Hash,
		})
		*out = out2
		return nil

	case aIsDir && bIsDir:
		if a.Hash == b.Hash {
			return nil
		}
		at, err := l.Tree(a.Hash)
		if err != nil {
			return fmt.Errorf("diff: loading subtree %s at %s: %w", a.Hash, full, err)
		}
		bt, err := l.Tree(b.Hash)
		if err != nil {
			return fmt.Errorf("diff: loading subtree %s at %s: %w", b.Hash, full, err)
		}
		return diffAt(l, full, at, bt, out)

	default:
		if err := emitOneSided(l, prefix, a, Delete, out); err != nil {
			return err
		}
		return emitOneSided(l, prefix, b, Insert, out)
	}
}

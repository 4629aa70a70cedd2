package object

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/asheraflow/ashera/plumbing/filemode"
	"github.com/asheraflow/ashera/plumbing/hash"
)

// TreeEntry is one record of a tree: a name, the mode it was stored with,
// and the object it points at (a blob for files/symlinks, another tree
// for directories).
type TreeEntry struct {
	Name string
	Mode filemode.FileMode
	Hash hash.Hash
}

// Tree is a directory snapshot: an ordered set of entries. Entries are
// always kept sorted by sortKey so two trees with the same content
// produce byte-identical serializations.
type Tree struct {
	Hash    hash.Hash
	Entries []TreeEntry
}

// NewTree builds a Tree from entries, sorting them into canonical order.
func NewTree(entries []TreeEntry) *Tree {
	t := &Tree{Entries: append([]TreeEntry(nil), entries...)}
	t.sort()
	return t
}

// sortKey is a name, suffixed with "/" when the entry is a directory, so
// "foo" sorts after "foo.txt" but before "foo/bar", the same rule git
// uses to make tree ordering independent of on-disk directory contents.
func sortKey(e TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}

func (t *Tree) sort() {
	sort.Slice(t.Entries, func(i, j int) bool {
		return sortKey(t.Entries[i]) < sortKey(t.Entries[j])
	})
}

// Type implements Object.
func (t *Tree) Type() Type { return TreeObject }

// Entry looks up a single entry by name.
func (t *Tree) Entry(name string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// Encode serializes the tree as concatenated
// "<mode> <name>\0<20-byte-oid>" records, in canonical sorted order.
func (t *Tree) Encode() []byte {
	t.sort()
	var buf bytes.Buffer
	for _, e := range t.Entries {
		fmt.Fprintf(&buf, "%s %s\x00", e.Mode.String(), e.Name)
		buf.Write(e.Hash[:])
	}
	return buf.Bytes()
}

// DecodeTree parses a tree object's raw content.
func DecodeTree(h hash.Hash, content []byte) (*Tree, error) {
	t := &Tree{Hash: h}
	r := content
	for len(r) > 0 {
		sp := bytes.IndexByte(r, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("object: malformed tree %s: missing mode separator", h)
		}
		mode, err := filemode.New(string(r[:sp]))
		if err != nil {
			return nil, fmt.Errorf("object: malformed tree %s: %w", h, err)
		}
		r = r[sp+1:]

		nul := bytes.IndexByte(r, 0)
		if nul < 0 {
			return nil, fmt.Errorf("object: malformed tree %s: missing name terminator", h)
		}
		name := string(r[:nul])
		r = r[nul+1:]

		if len(r) < hash.Size {
			return nil, fmt.Errorf("object: malformed tree %s: truncated entry oid", h)
		}
		entryHash := hash.FromBytes(r[:hash.Size])
		r = r[hash.Size:]

		t.Entries = append(t.Entries, TreeEntry{Name: name, Mode: mode, Hash: entryHash})
	}
	return t, nil
}

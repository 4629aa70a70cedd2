// Package objectstore implements the content-addressed blob/tree/commit
// repository: §4.1 of the core's design. Objects are stored individually,
// zlib-deflated, at objects/<oid[0:2]>/<oid[2:]>, and are immutable once
// written.
package objectstore

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"path/filepath"

	"github.com/asheraflow/ashera/plumbing"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/asheraflow/ashera/plumbing/object"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

const objectsDir = "objects"

// Store is a content-addressed, compressed object repository rooted at a
// control directory's objects/ subtree.
type Store struct {
	fs billy.Filesystem
}

// New returns a Store rooted at dir (typically "<repo>/.store").
func New(dir string) *Store {
	return &Store{fs: osfs.New(dir)}
}

// NewFromFilesystem adapts an existing billy.Filesystem rooted at the
// control directory, for callers that already hold one (tests, in-memory
// repositories).
func NewFromFilesystem(fs billy.Filesystem) *Store {
	return &Store{fs: fs}
}

func objectPath(h hash.Hash) string {
	s := h.String()
	return filepath.Join(objectsDir, s[:2], s[2:])
}

// Exists reports whether an object with the given oid is on disk.
func (s *Store) Exists(h hash.Hash) bool {
	_, err := s.fs.Stat(objectPath(h))
	return err == nil
}

// Store hashes content, framed as "<kind> <size>\0<content>", and writes
// it if not already present. Writing is idempotent: storing the same
// bytes twice is a no-op the second time, and atomic via a temp file that
// is renamed into place, so a concurrent reader never observes a partial
// write.
func (s *Store) Store(kind object.Type, content []byte) (hash.Hash, error) {
	h := hash.Sum(kind.String(), content)
	if s.Exists(h) {
		return h, nil
	}

	path := objectPath(h)
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return h, fmt.Errorf("objectstore: creating object dir: %w", err)
	}

	tmp, err := s.fs.TempFile(objectsDir, "tmp_obj_")
	if err != nil {
		return h, fmt.Errorf("objectstore: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := zlib.NewWriter(tmp)
	if _, err := fmt.Fprintf(w, "%s %d\x00", kind, len(content)); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return h, fmt.Errorf("objectstore: writing object header: %w", err)
	}
	if _, err := w.Write(content); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return h, fmt.Errorf("objectstore: writing object content: %w", err)
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return h, fmt.Errorf("objectstore: closing compressor: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return h, fmt.Errorf("objectstore: closing temp file: %w", err)
	}

	if err := s.fs.Rename(tmpName, path); err != nil {
		s.fs.Remove(tmpName)
		return h, fmt.Errorf("objectstore: renaming object into place: %w", err)
	}

	return h, nil
}

// StoreBlob is a convenience wrapper for the common case.
func (s *Store) StoreBlob(content []byte) (hash.Hash, error) {
	return s.Store(object.BlobObject, content)
}

// StoreTree serializes and stores a tree.
func (s *Store) StoreTree(t *object.Tree) (hash.Hash, error) {
	h, err := s.Store(object.TreeObject, t.Encode())
	t.Hash = h
	return h, err
}

// StoreCommit serializes and stores a commit.
func (s *Store) StoreCommit(c *object.Commit) (hash.Hash, error) {
	h, err := s.Store(object.CommitObject, c.Encode())
	c.Hash = h
	return h, err
}

// Load reads and decompresses an object, validating its header against
// the decompressed length.
func (s *Store) Load(h hash.Hash) (object.Type, []byte, error) {
	f, err := s.fs.Open(objectPath(h))
	if err != nil {
		return object.InvalidObject, nil, fmt.Errorf("%w: %s: %v", plumbing.ErrNotARepository, h, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return object.InvalidObject, nil, fmt.Errorf("%w: %s: %v", plumbing.ErrCorruptObject, h, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return object.InvalidObject, nil, fmt.Errorf("%w: %s: %v", plumbing.ErrCorruptObject, h, err)
	}

	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return object.InvalidObject, nil, fmt.Errorf("%w: %s: missing header terminator", plumbing.ErrCorruptObject, h)
	}

	header := string(raw[:nul])
	content := raw[nul+1:]

	var kindStr string
	var size int
	if _, err := fmt.Sscanf(header, "%s %d", &kindStr, &size); err != nil {
		return object.InvalidObject, nil, fmt.Errorf("%w: %s: malformed header %q", plumbing.ErrInvalidObject, h, header)
	}

	kind, err := object.ParseType(kindStr)
	if err != nil {
		return object.InvalidObject, nil, fmt.Errorf("%w: %s: %v", plumbing.ErrInvalidObject, h, err)
	}

	if size != len(content) {
		return object.InvalidObject, nil, fmt.Errorf("%w: %s: header size %d disagrees with content length %d",
			plumbing.ErrCorruptObject, h, size, len(content))
	}

	return kind, content, nil
}

// Blob loads and decodes a blob object.
func (s *Store) Blob(h hash.Hash) (*object.Blob, error) {
	kind, content, err := s.Load(h)
	if err != nil {
		return nil, err
	}
	if kind != object.BlobObject {
		return nil, fmt.Errorf("%w: %s is a %s, not a blob", plumbing.ErrInvalidObject, h, kind)
	}
	return object.DecodeBlob(h, content), nil
}

// Tree loads and decodes a tree object.
func (s *Store) Tree(h hash.Hash) (*object.Tree, error) {
	kind, content, err := s.Load(h)
	if err != nil {
		return nil, err
	}
	if kind != object.TreeObject {
		return nil, fmt.Errorf("%w: %s is a %s, not a tree", plumbing.ErrInvalidObject, h, kind)
	}
	return object.DecodeTree(h, content)
}

// Commit loads and decodes a commit object; implements object.Loader so
// the ancestry walker in plumbing/object can use the store directly.
func (s *Store) Commit(h hash.Hash) (*object.Commit, error) {
	kind, content, err := s.Load(h)
	if err != nil {
		return nil, err
	}
	if kind != object.CommitObject {
		return nil, fmt.Errorf("%w: %s is a %s, not a commit", plumbing.ErrInvalidObject, h, kind)
	}
	return object.DecodeCommit(h, content)
}

// EnsureDirs makes sure the objects/ subtree exists; called by init.
func (s *Store) EnsureDirs() error {
	return s.fs.MkdirAll(objectsDir, 0o755)
}

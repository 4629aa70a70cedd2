// Package workspace implements the working tree: enumeration, stat-cache
// comparison, and the tracked/untracked/modified/deleted classification that
// backs `status`, `diff`, `add`, and checkout/reset's file materialization.
// Grounded on go-git's billy.Filesystem-backed worktree.go and
// worktree_status.go, generalized from go-git's merkletrie-node diffing to
// work directly against this module's own index.Entry/object.Tree types.
package workspace

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/asheraflow/ashera/index"
	"github.com/asheraflow/ashera/plumbing/filemode"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// controlDirName is excluded from every working-tree walk.
const controlDirName = ".store"

// Workspace is the on-disk working tree rooted at the repository's top
// level (the control directory's parent).
type Workspace struct {
	fs billy.Filesystem
}

// New returns a Workspace rooted at dir.
func New(dir string) *Workspace {
	return &Workspace{fs: osfs.New(dir)}
}

// NewFromFilesystem adapts an existing billy.Filesystem.
func NewFromFilesystem(bfs billy.Filesystem) *Workspace {
	return &Workspace{fs: bfs}
}

// Entry is one file found while walking the working tree.
type Entry struct {
	Path string
	Mode filemode.FileMode
	Info fs.FileInfo
}

// Walk enumerates every regular file under the working tree, skipping the
// control directory, in sorted path order.
func (w *Workspace) Walk() ([]Entry, error) {
	var entries []Entry
	if err := w.walk("", &entries); err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (w *Workspace) walk(dir string, out *[]Entry) error {
	items, err := w.fs.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, item := range items {
		name := item.Name()
		if dir == "" && name == controlDirName {
			continue
		}
		full := path.Join(dir, name)
		if item.IsDir() {
			if err := w.walk(full, out); err != nil {
				return err
			}
			continue
		}
		mode := filemode.FromOSFileMode(item.Mode())
		*out = append(*out, Entry{Path: full, Mode: mode, Info: item})
	}
	return nil
}

// ReadFile returns the full content of path.
func (w *Workspace) ReadFile(p string) ([]byte, error) {
	f, err := w.fs.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// WriteFile creates or overwrites path with content, creating parent
// directories as needed.
func (w *Workspace) WriteFile(p string, content []byte, mode filemode.FileMode) error {
	if dir := path.Dir(p); dir != "." {
		if err := w.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("workspace: creating parent dir for %s: %w", p, err)
		}
	}
	perm := fs.FileMode(0o644)
	if mode == filemode.Executable {
		perm = 0o755
	}
	f, err := w.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("workspace: opening %s: %w", p, err)
	}
	defer f.Close()
	_, err = f.Write(content)
	return err
}

// RemoveFile deletes path.
func (w *Workspace) RemoveFile(p string) error {
	return w.fs.Remove(p)
}

// Exists reports whether path exists in the working tree.
func (w *Workspace) Exists(p string) bool {
	_, err := w.fs.Stat(p)
	return err == nil
}

// Stat returns path's file info, for rebuilding a stat cache after writing
// a file (checkout, reset --hard, merge materialization).
func (w *Workspace) Stat(p string) (fs.FileInfo, error) {
	return w.fs.Stat(p)
}

// Status classifies one path's relationship between the index and the
// working tree.
type Status int

const (
	Unmodified Status = iota
	Modified
	Added
	Deleted
	Untracked
)

// Classify compares the working tree against the index, returning a
// path->Status map covering every tracked path plus every untracked file
// found on disk. Tracked files are first checked via the stat-cache fast
// path (index.Entry.StatMatches); only a stat mismatch triggers a content
// rehash.
func (w *Workspace) Classify(idx *index.Index, hasher func([]byte) hash.Hash) (map[string]Status, error) {
	result := make(map[string]Status)
	tracked := make(map[string]bool)

	for _, e := range idx.Entries() {
		if e.Stage != index.Merged {
			continue
		}
		tracked[e.Name] = true

		info, err := w.fs.Stat(e.Name)
		if err != nil {
			result[e.Name] = Deleted
			continue
		}

		mode := filemode.FromOSFileMode(info.Mode())
		if e.StatMatches(mode, info.ModTime(), uint32(info.Size()), inodeOf(info)) {
			result[e.Name] = Unmodified
			continue
		}

		content, err := w.ReadFile(e.Name)
		if err != nil {
			return nil, err
		}
		if hasher(content) == e.Hash && mode == e.Mode {
			result[e.Name] = Unmodified
		} else {
			result[e.Name] = Modified
		}
	}

	entries, err := w.Walk()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if tracked[e.Path] {
			continue
		}
		result[e.Path] = Untracked
	}

	return result, nil
}

// Package refs implements the reference store: flat files under refs/heads/
// holding a 40-char OID, and HEAD as either a symbolic reference (attached to
// a branch) or a direct OID (detached), per §4.3. Every mutation goes through
// a <ref>.lock file that is renamed into place, so a reader never observes a
// torn write and a second concurrent writer is rejected rather than racing.
package refs

import (
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/asheraflow/ashera/plumbing"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/go-git/go-billy/v5"
)

const (
	headsDir = "refs/heads"
	lockExt  = ".lock"
)

// Store is the reference store rooted at a control directory (".store").
type Store struct {
	fs billy.Filesystem
}

// New returns a Store rooted at the given billy filesystem.
func New(fs billy.Filesystem) *Store {
	return &Store{fs: fs}
}

func refPath(name plumbing.ReferenceName) string {
	return string(name)
}

// readRaw reads the raw content of a single ref file, without following
// symbolic references.
func (s *Store) readRaw(name plumbing.ReferenceName) (*plumbing.Reference, error) {
	f, err := s.fs.Open(refPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", plumbing.ErrUnknownRef, name)
		}
		return nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return plumbing.ParseReference(name, string(raw))
}

// Read returns the reference stored at name, without resolving symbolic
// references.
func (s *Store) Read(name plumbing.ReferenceName) (*plumbing.Reference, error) {
	return s.readRaw(name)
}

// Resolve follows symbolic references (HEAD -> refs/heads/main -> oid) until
// a hash reference is reached, guarding against a pathological reference
// cycle.
func (s *Store) Resolve(name plumbing.ReferenceName) (*plumbing.Reference, error) {
	const maxDepth = 10
	cur := name
	for depth := 0; depth < maxDepth; depth++ {
		ref, err := s.readRaw(cur)
		if err != nil {
			return nil, err
		}
		if ref.Type() == plumbing.HashReference {
			return ref, nil
		}
		cur = ref.Target()
	}
	return nil, fmt.Errorf("%w: %s: too many levels of symbolic reference", plumbing.ErrUnknownRef, name)
}

// lock creates name+".lock", failing with ErrLockHeld if one is already
// present.
func (s *Store) lock(name plumbing.ReferenceName) (billy.File, string, error) {
	lockPath := refPath(name) + lockExt
	if dir := path.Dir(lockPath); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, "", fmt.Errorf("refs: creating parent dir: %w", err)
		}
	}

	f, err := s.fs.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, "", fmt.Errorf("%w: %s", plumbing.ErrLockHeld, name)
		}
		return nil, "", err
	}
	return f, lockPath, nil
}

// Update performs a compare-and-swap ref update: if expected is non-nil, the
// current value of name must equal *expected (its absence counts as a
// ZeroHash expectation) or the update is rejected. A nil expected skips the
// check entirely.
func (s *Store) Update(name plumbing.ReferenceName, expected *hash.Hash, newHash hash.Hash) error {
	lockFile, lockPath, err := s.lock(name)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			lockFile.Close()
			s.fs.Remove(lockPath)
		}
	}()

	if expected != nil {
		current, err := s.currentHash(name)
		if err != nil {
			return err
		}
		if current != *expected {
			return fmt.Errorf("%w: %s: expected %s, found %s", plumbing.ErrLockHeld, name, expected, current)
		}
	}

	if _, err := io.WriteString(lockFile, newHash.String()+"\n"); err != nil {
		return err
	}
	if err := lockFile.Close(); err != nil {
		return err
	}

	if err := s.fs.Rename(lockPath, refPath(name)); err != nil {
		return fmt.Errorf("refs: renaming lock into place: %w", err)
	}
	committed = true
	return nil
}

// currentHash returns the current hash of name, or hash.ZeroHash if it does
// not yet exist.
func (s *Store) currentHash(name plumbing.ReferenceName) (hash.Hash, error) {
	ref, err := s.readRaw(name)
	if err != nil {
		if strings.Contains(err.Error(), plumbing.ErrUnknownRef.Error()) {
			return hash.ZeroHash, nil
		}
		return hash.ZeroHash, err
	}
	if ref.Type() != plumbing.HashReference {
		return hash.ZeroHash, fmt.Errorf("%w: %s is a symbolic reference", plumbing.ErrInvalidObject, name)
	}
	return ref.Hash(), nil
}

// SetSymbolic points name at target (used to attach HEAD to a branch).
func (s *Store) SetSymbolic(name, target plumbing.ReferenceName) error {
	lockFile, lockPath, err := s.lock(name)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			lockFile.Close()
			s.fs.Remove(lockPath)
		}
	}()

	if _, err := io.WriteString(lockFile, "ref: "+string(target)+"\n"); err != nil {
		return err
	}
	if err := lockFile.Close(); err != nil {
		return err
	}
	if err := s.fs.Rename(lockPath, refPath(name)); err != nil {
		return fmt.Errorf("refs: renaming lock into place: %w", err)
	}
	committed = true
	return nil
}

// Delete removes name, after checking its current hash matches expected.
func (s *Store) Delete(name plumbing.ReferenceName, expected hash.Hash) error {
	lockFile, lockPath, err := s.lock(name)
	if err != nil {
		return err
	}
	defer func() {
		lockFile.Close()
		s.fs.Remove(lockPath)
	}()

	current, err := s.currentHash(name)
	if err != nil {
		return err
	}
	if current != expected {
		return fmt.Errorf("%w: %s: expected %s, found %s", plumbing.ErrLockHeld, name, expected, current)
	}

	return s.fs.Remove(refPath(name))
}

// ListHeads returns every branch reference name under refs/heads/, sorted.
func (s *Store) ListHeads() ([]plumbing.ReferenceName, error) {
	var names []plumbing.ReferenceName
	err := s.walk(headsDir, func(p string) {
		names = append(names, plumbing.ReferenceName(p))
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names, nil
}

func (s *Store) walk(dir string, visit func(string)) error {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		full := path.Join(dir, e.Name())
		if e.IsDir() {
			if err := s.walk(full, visit); err != nil {
				return err
			}
			continue
		}
		if strings.HasSuffix(full, lockExt) {
			continue
		}
		visit(full)
	}
	return nil
}

// HeadTarget returns the branch reference HEAD currently points at, and
// false if HEAD is detached (a direct hash reference).
func (s *Store) HeadTarget() (plumbing.ReferenceName, bool, error) {
	ref, err := s.readRaw(plumbing.HEAD)
	if err != nil {
		return "", false, err
	}
	if ref.Type() != plumbing.SymbolicReference {
		return "", false, nil
	}
	return ref.Target(), true, nil
}

// EnsureDirs makes sure refs/heads exists; called by init.
func (s *Store) EnsureDirs() error {
	return s.fs.MkdirAll(headsDir, 0o755)
}

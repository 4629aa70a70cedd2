// Package ashera ties the object store, index, refs, diff, merge, workspace,
// config, and opstate packages together into the command surface of spec.md
// §6: init/add/status/diff/commit/log/branch/checkout/merge/reset/revert/
// cherry-pick/rm as methods on Repository. Grounded on go-git's own
// repository.go/worktree.go top-level orchestration idiom (validate options,
// call into plumbing, advance refs last) generalized from go-git's Storer
// abstraction to this module's own objectstore/refs/index packages.
package ashera

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/asheraflow/ashera/config"
	"github.com/asheraflow/ashera/index"
	"github.com/asheraflow/ashera/internal/vcslog"
	"github.com/asheraflow/ashera/objectstore"
	"github.com/asheraflow/ashera/opstate"
	"github.com/asheraflow/ashera/plumbing"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/asheraflow/ashera/plumbing/object"
	"github.com/asheraflow/ashera/refs"
	"github.com/asheraflow/ashera/workspace"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// controlDirName is the repository's control subdirectory, ".store" per
// spec.md §2 (chosen to avoid colliding with any name a real VCS reserves).
const controlDirName = ".store"

// defaultBranch is the branch HEAD is attached to by a fresh Init, matching
// spec.md §8's literal scenarios ("checkout master").
const defaultBranch = "master"

// Repository is an open repository: a working tree root plus its control
// directory's object store, index, refs, pending-operation state, and
// identity configuration.
type Repository struct {
	root       string
	controlFS  billy.Filesystem
	Objects    *objectstore.Store
	Refs       *refs.Store
	Ops        *opstate.Store
	Workspace  *workspace.Workspace
	cfg        *config.File
}

// Init creates a fresh repository rooted at path: an empty object store,
// an empty refs/heads, and HEAD attached to refs/heads/master. It fails if
// a control directory already exists there.
func Init(path string) (*Repository, error) {
	controlDir := filepath.Join(path, controlDirName)
	if _, err := os.Stat(controlDir); err == nil {
		return nil, fmt.Errorf("ashera: repository already exists at %s", controlDir)
	}

	if err := os.MkdirAll(controlDir, 0o755); err != nil {
		return nil, fmt.Errorf("ashera: creating control directory: %w", err)
	}

	r := open(path)

	if err := r.Objects.EnsureDirs(); err != nil {
		return nil, err
	}
	if err := r.Refs.EnsureDirs(); err != nil {
		return nil, err
	}

	branchRef := plumbing.NewBranchReferenceName(defaultBranch)
	if err := r.Refs.SetSymbolic(plumbing.HEAD, branchRef); err != nil {
		return nil, fmt.Errorf("ashera: writing initial HEAD: %w", err)
	}

	vcslog.WithRepo(path).Info().Msg("initialized empty repository")
	return r, nil
}

// Open opens an existing repository, walking up from path to find a
// ".store" control directory the way most VCS front-ends locate the
// repository root from a subdirectory. Returns plumbing.ErrNotARepository
// if none is found.
func Open(path string) (*Repository, error) {
	root, err := findControlDirRoot(path)
	if err != nil {
		return nil, err
	}
	return open(root), nil
}

func findControlDirRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, controlDirName)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: %s", plumbing.ErrNotARepository, start)
		}
		dir = parent
	}
}

func open(root string) *Repository {
	controlDir := filepath.Join(root, controlDirName)
	controlFS := osfs.New(controlDir)

	cfg, err := config.Load(filepath.Join(controlDir, "config"))
	if err != nil {
		cfg = &config.File{}
	}

	return &Repository{
		root:      root,
		controlFS: controlFS,
		Objects:   objectstore.New(controlDir),
		Refs:      refs.New(controlFS),
		Ops:       opstate.New(controlFS),
		Workspace: workspace.New(root),
		cfg:       cfg,
	}
}

// Root returns the working tree root directory.
func (r *Repository) Root() string { return r.root }

// Head resolves HEAD to a commit hash, reporting the branch name it is
// attached to (empty, detached=true if HEAD is a raw OID).
func (r *Repository) Head() (h hash.Hash, branch plumbing.ReferenceName, detached bool, err error) {
	target, attached, err := r.Refs.HeadTarget()
	if err != nil {
		return hash.ZeroHash, "", false, err
	}
	ref, err := r.Refs.Resolve(plumbing.HEAD)
	if err != nil {
		return hash.ZeroHash, "", false, err
	}
	if !attached {
		return ref.Hash(), "", true, nil
	}
	return ref.Hash(), target, false, nil
}

// HeadCommit loads the commit HEAD currently points at.
func (r *Repository) HeadCommit() (*object.Commit, error) {
	h, _, _, err := r.Head()
	if err != nil {
		return nil, err
	}
	return r.Objects.Commit(h)
}

// resolveCommittish resolves a branch name, "HEAD", or a hex object id to a
// commit hash. An abbreviated id is not expanded to a matching object: it is
// zero-padded by hash.FromHex, so only a full 40-char id names an object.
func (r *Repository) resolveCommittish(s string) (hash.Hash, error) {
	if s == "" || s == "HEAD" {
		h, _, _, err := r.Head()
		return h, err
	}

	branchRef := plumbing.NewBranchReferenceName(s)
	if ref, err := r.Refs.Read(branchRef); err == nil {
		return ref.Hash(), nil
	}

	h, err := hash.FromHex(s)
	if err != nil {
		return hash.ZeroHash, fmt.Errorf("%w: %s", plumbing.ErrUnknownRef, s)
	}
	return h, nil
}

// resolveCommit resolves and loads a commit in one step.
func (r *Repository) resolveCommit(s string) (*object.Commit, error) {
	h, err := r.resolveCommittish(s)
	if err != nil {
		return nil, err
	}
	return r.Objects.Commit(h)
}

// authorSignature and committerSignature resolve the author/committer
// identity for a new commit, env
// vars taking precedence over .store/config per spec.md §6.
func (r *Repository) authorSignature(now time.Time) (object.Signature, error) {
	id, err := r.cfg.AuthorIdentity()
	if err != nil {
		return object.Signature{}, err
	}
	return object.Signature{Name: id.Name, Email: id.Email, When: config.AuthorDate("AUTHOR_DATE", now)}, nil
}

func (r *Repository) committerSignature(now time.Time) (object.Signature, error) {
	id, err := r.cfg.CommitterIdentity()
	if err != nil {
		return object.Signature{}, err
	}
	return object.Signature{Name: id.Name, Email: id.Email, When: config.AuthorDate("COMMITTER_DATE", now)}, nil
}

// LoadIndex reads the current index, or an empty one if none has been
// written yet (a freshly initialized repository).
func (r *Repository) LoadIndex() (*index.Index, error) {
	f, err := r.controlFS.Open("index")
	if err != nil {
		if os.IsNotExist(err) {
			return index.New(), nil
		}
		return nil, err
	}
	defer f.Close()
	return index.Decode(f)
}

// WithIndex loads the index, runs fn against it, and persists the result
// under index.lock's create-write-rename discipline (spec.md §5): the lock
// is released on every exit, including fn returning an error.
func (r *Repository) WithIndex(fn func(idx *index.Index) error) error {
	const lockPath = "index.lock"
	lockFile, err := r.controlFS.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: index", plumbing.ErrLockHeld)
		}
		return err
	}
	committed := false
	defer func() {
		if !committed {
			lockFile.Close()
			r.controlFS.Remove(lockPath)
		}
	}()

	idx, err := r.LoadIndex()
	if err != nil {
		return err
	}
	if err := fn(idx); err != nil {
		return err
	}
	if err := index.Encode(lockFile, idx); err != nil {
		return err
	}
	if err := lockFile.Close(); err != nil {
		return err
	}
	if err := r.controlFS.Rename(lockPath, "index"); err != nil {
		return fmt.Errorf("ashera: renaming index.lock into place: %w", err)
	}
	committed = true
	return nil
}

// writeIndexAtomic persists idx under the same lock-write-rename discipline
// as WithIndex, for callers (reset, checkout, merge materialization) that
// build a replacement index directly instead of mutating the loaded one.
func (r *Repository) writeIndexAtomic(idx *index.Index) error {
	const lockPath = "index.lock"
	f, err := r.controlFS.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: index", plumbing.ErrLockHeld)
		}
		return err
	}
	if err := index.Encode(f, idx); err != nil {
		f.Close()
		r.controlFS.Remove(lockPath)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return r.controlFS.Rename(lockPath, "index")
}

// advanceHead moves HEAD (or the branch it's attached to) from old to new,
// via a compare-and-swap ref update, per spec.md §4.3/§4.6.
func (r *Repository) advanceHead(old, new hash.Hash) error {
	branch, attached, err := r.Refs.HeadTarget()
	if err != nil {
		return err
	}
	target := plumbing.HEAD
	if attached {
		target = branch
	}
	return r.Refs.Update(target, &old, new)
}

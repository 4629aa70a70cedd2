package plumbing

import "errors"

// Error kinds surfaced by the core, per the error-handling design: every
// command-layer failure ultimately wraps one of these with %w so a caller
// can errors.Is against it regardless of which component raised it.
var (
	// ErrNotARepository is returned when no control directory is found
	// walking up from the starting path.
	ErrNotARepository = errors.New("not a repository")
	// ErrInvalidObject is returned when object bytes don't parse as the
	// claimed kind.
	ErrInvalidObject = errors.New("invalid object")
	// ErrCorruptObject is returned when a stored object's header,
	// hash, or decompressed length disagree with its content.
	ErrCorruptObject = errors.New("corrupt object")
	// ErrUnknownRef is returned when a ref lookup or resolution fails.
	ErrUnknownRef = errors.New("unknown ref")
	// ErrAmbiguousRef is returned when a short object id matches more
	// than one object.
	ErrAmbiguousRef = errors.New("ambiguous ref")
	// ErrLockHeld is returned when a .lock file already exists.
	ErrLockHeld = errors.New("lock held")
	// ErrDirtyWorkingTree is returned by the preflight checks before
	// merge/revert/cherry-pick/checkout.
	ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes")
	// ErrUntrackedOverwrite is returned when an operation would clobber
	// an untracked file.
	ErrUntrackedOverwrite = errors.New("untracked file would be overwritten")
	// ErrMergeConflict is returned when a three-way merge could not
	// complete cleanly.
	ErrMergeConflict = errors.New("merge conflict")
	// ErrOperationInProgress is returned when a new high-level
	// operation is started while merge/revert/cherry_pick state exists.
	ErrOperationInProgress = errors.New("operation already in progress")
	// ErrNoSuchOperation is returned by --continue/--abort when no
	// operation state is pending.
	ErrNoSuchOperation = errors.New("no operation in progress")
	// ErrNoParent is returned when reverting the root commit.
	ErrNoParent = errors.New("commit has no parent")
	// ErrAlreadyUpToDate is returned when a merge's base equals its
	// source.
	ErrAlreadyUpToDate = errors.New("already up to date")
)

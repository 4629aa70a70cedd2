// Package opstate implements the advisory-lock operation-state directories
// of §6's on-disk layout: merge/, revert/, cherry_pick/. Their presence
// forbids starting a new high-level operation until the in-progress one is
// resolved, aborted, or continued (§5's locking model). Grounded on the
// same billy.Filesystem + atomic-rename discipline as objectstore and refs.
package opstate

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/asheraflow/ashera/plumbing"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
)

// Kind names one of the three pending-operation directories.
type Kind string

const (
	Merge       Kind = "merge"
	Revert      Kind = "revert"
	CherryPick  Kind = "cherry_pick"
)

func (k Kind) dir() string { return string(k) }

// Store manages the pending-operation directories rooted at the control
// directory.
type Store struct {
	fs billy.Filesystem
}

// New returns a Store rooted at the given control-directory filesystem.
func New(fs billy.Filesystem) *Store {
	return &Store{fs: fs}
}

// Active reports which operation, if any, currently has state on disk, and
// its Kind. Only one of the three should ever exist at a time; the command
// layer is responsible for checking this before starting a new operation.
func (s *Store) Active() (Kind, bool, error) {
	for _, k := range []Kind{Merge, Revert, CherryPick} {
		if _, err := s.fs.Stat(k.dir()); err == nil {
			return k, true, nil
		} else if !os.IsNotExist(err) {
			return "", false, err
		}
	}
	return "", false, nil
}

// CheckNoneActive returns plumbing.ErrOperationInProgress if any operation
// state directory already exists.
func (s *Store) CheckNoneActive() error {
	active, ok, err := s.Active()
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: %s", plumbing.ErrOperationInProgress, active)
	}
	return nil
}

// MergeState is the persisted state of an in-progress merge: the HEAD
// before the merge started, the other side being merged in (so --continue
// can build the merge commit's second parent), the proposed message, and
// an OperationID disambiguating this attempt from any prior one in logs.
type MergeState struct {
	PreMergeHead hash.Hash
	MergeHead    hash.Hash
	Message      string
	OperationID  string
}

// BeginMerge writes merge/HEAD, merge/MERGE_HEAD, merge/MSG, and
// merge/OPID, generating a fresh OperationID if st.OperationID is empty.
func (s *Store) BeginMerge(st MergeState) error {
	if st.OperationID == "" {
		st.OperationID = uuid.NewString()
	}
	if err := s.fs.MkdirAll(Merge.dir(), 0o755); err != nil {
		return err
	}
	if err := writeFile(s.fs, "merge/HEAD", st.PreMergeHead.String()+"\n"); err != nil {
		return err
	}
	if err := writeFile(s.fs, "merge/MERGE_HEAD", st.MergeHead.String()+"\n"); err != nil {
		return err
	}
	if err := writeFile(s.fs, "merge/OPID", st.OperationID+"\n"); err != nil {
		return err
	}
	return writeFile(s.fs, "merge/MSG", st.Message)
}

// ReadMerge loads the current merge state, or plumbing.ErrNoSuchOperation
// if none is in progress.
func (s *Store) ReadMerge() (MergeState, error) {
	var st MergeState
	headRaw, err := readFile(s.fs, "merge/HEAD")
	if err != nil {
		return st, fmt.Errorf("%w: %v", plumbing.ErrNoSuchOperation, err)
	}
	h, err := hash.FromHex(strings.TrimSpace(headRaw))
	if err != nil {
		return st, fmt.Errorf("opstate: malformed merge/HEAD: %w", err)
	}
	mergeHeadRaw, err := readFile(s.fs, "merge/MERGE_HEAD")
	if err != nil {
		return st, fmt.Errorf("opstate: reading merge/MERGE_HEAD: %w", err)
	}
	mh, err := hash.FromHex(strings.TrimSpace(mergeHeadRaw))
	if err != nil {
		return st, fmt.Errorf("opstate: malformed merge/MERGE_HEAD: %w", err)
	}
	msg, err := readFile(s.fs, "merge/MSG")
	if err != nil {
		return st, fmt.Errorf("opstate: reading merge/MSG: %w", err)
	}
	if opid, err := readFile(s.fs, "merge/OPID"); err == nil {
		st.OperationID = strings.TrimSpace(opid)
	}
	st.PreMergeHead = h
	st.MergeHead = mh
	st.Message = msg
	return st, nil
}

// AbortMerge removes the merge/ directory.
func (s *Store) AbortMerge() error {
	return removeAll(s.fs, Merge.dir())
}

// SequenceState is the persisted state of an in-progress revert or
// cherry-pick: the HEAD before the operation started, the proposed message
// for the current step, the source commit being reverted/picked, the
// remaining queue of commits for a multi-commit sequence, and the source
// commit's original author so `--continue` can preserve it on the final
// commit instead of crediting whoever resolves the conflict.
type SequenceState struct {
	PreOpHead   hash.Hash
	Message     string
	Commit      hash.Hash
	Remaining   []hash.Hash
	AuthorName  string
	AuthorEmail string
	AuthorWhen  time.Time
	OperationID string
}

// Begin writes <kind>/HEAD, <kind>/MSG, <kind>/commit, <kind>/sequence (one
// hex OID per line), <kind>/AUTHOR, and <kind>/OPID for a revert or
// cherry-pick, generating a fresh OperationID if st.OperationID is empty.
func (s *Store) Begin(kind Kind, st SequenceState) error {
	if kind != Revert && kind != CherryPick {
		return fmt.Errorf("opstate: %s does not use sequence state", kind)
	}
	if st.OperationID == "" {
		st.OperationID = uuid.NewString()
	}
	if err := s.fs.MkdirAll(kind.dir(), 0o755); err != nil {
		return err
	}
	if err := writeFile(s.fs, kind.dir()+"/HEAD", st.PreOpHead.String()+"\n"); err != nil {
		return err
	}
	if err := writeFile(s.fs, kind.dir()+"/MSG", st.Message); err != nil {
		return err
	}
	if err := writeFile(s.fs, kind.dir()+"/commit", st.Commit.String()+"\n"); err != nil {
		return err
	}
	if err := writeFile(s.fs, kind.dir()+"/AUTHOR", fmt.Sprintf("%s\n%s\n%s\n", st.AuthorName, st.AuthorEmail, st.AuthorWhen.Format(time.RFC3339))); err != nil {
		return err
	}
	if err := writeFile(s.fs, kind.dir()+"/OPID", st.OperationID+"\n"); err != nil {
		return err
	}
	var seq strings.Builder
	for _, h := range st.Remaining {
		seq.WriteString(h.String())
		seq.WriteByte('\n')
	}
	return writeFile(s.fs, kind.dir()+"/sequence", seq.String())
}

// Read loads the sequence state for kind, or plumbing.ErrNoSuchOperation if
// none is in progress.
func (s *Store) Read(kind Kind) (SequenceState, error) {
	var st SequenceState
	headRaw, err := readFile(s.fs, kind.dir()+"/HEAD")
	if err != nil {
		return st, fmt.Errorf("%w: %v", plumbing.ErrNoSuchOperation, err)
	}
	h, err := hash.FromHex(strings.TrimSpace(headRaw))
	if err != nil {
		return st, fmt.Errorf("opstate: malformed %s/HEAD: %w", kind, err)
	}
	msg, err := readFile(s.fs, kind.dir()+"/MSG")
	if err != nil {
		return st, err
	}
	commitRaw, err := readFile(s.fs, kind.dir()+"/commit")
	if err != nil {
		return st, err
	}
	commitHash, err := hash.FromHex(strings.TrimSpace(commitRaw))
	if err != nil {
		return st, fmt.Errorf("opstate: malformed %s/commit: %w", kind, err)
	}

	seqRaw, _ := readFile(s.fs, kind.dir()+"/sequence")
	var remaining []hash.Hash
	for _, line := range strings.Split(strings.TrimSpace(seqRaw), "\n") {
		if line == "" {
			continue
		}
		rh, err := hash.FromHex(line)
		if err != nil {
			return st, fmt.Errorf("opstate: malformed %s/sequence entry %q: %w", kind, line, err)
		}
		remaining = append(remaining, rh)
	}

	if authorRaw, err := readFile(s.fs, kind.dir()+"/AUTHOR"); err == nil {
		lines := strings.SplitN(authorRaw, "\n", 3)
		if len(lines) >= 2 {
			st.AuthorName = lines[0]
			st.AuthorEmail = lines[1]
		}
		if len(lines) == 3 {
			if when, err := time.Parse(time.RFC3339, strings.TrimSpace(lines[2])); err == nil {
				st.AuthorWhen = when
			}
		}
	}

	if opid, err := readFile(s.fs, kind.dir()+"/OPID"); err == nil {
		st.OperationID = strings.TrimSpace(opid)
	}

	st.PreOpHead = h
	st.Message = msg
	st.Commit = commitHash
	st.Remaining = remaining
	return st, nil
}

// Abort removes the kind/ directory.
func (s *Store) Abort(kind Kind) error {
	return removeAll(s.fs, kind.dir())
}

func writeFile(fs billy.Filesystem, path, content string) error {
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.WriteString(f, content)
	return err
}

func readFile(fs billy.Filesystem, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// removeAll recursively removes dir from fs; billy.Filesystem has no
// RemoveAll, so this walks and removes depth-first like go-git's own
// small filesystem-cleanup helpers do.
func removeAll(fs billy.Filesystem, dir string) error {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		full := dir + "/" + e.Name()
		if e.IsDir() {
			if err := removeAll(fs, full); err != nil {
				return err
			}
			continue
		}
		if err := fs.Remove(full); err != nil {
			return err
		}
	}
	return fs.Remove(dir)
}

package ashera

import (
	"errors"
	"fmt"
	"time"

	"github.com/asheraflow/ashera/internal/vcslog"
	"github.com/asheraflow/ashera/plumbing"
	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/asheraflow/ashera/plumbing/object"
)

// AmendOptions controls `commit --amend`'s message source, precedence per
// spec.md §4.6.3: explicit Message wins, then ReuseMessageRef (verbatim),
// then ReeditMessageRef/Edit (seed the editor callback with the existing
// message), otherwise the existing message is kept untouched.
type AmendOptions struct {
	Message         string
	ReuseMessageRef string
	ReeditMessageRef string
	Edit            bool
	Editor          func(initial string) (string, error)
}

// Commit snapshots the current index as a new commit, advancing HEAD (or
// the branch it's attached to). Parents are the current HEAD commit, or
// none for the first commit in a repository.
func (r *Repository) Commit(message string) (hash.Hash, error) {
	idx, err := r.LoadIndex()
	if err != nil {
		return hash.ZeroHash, err
	}
	if len(idx.ConflictedPaths()) > 0 {
		return hash.ZeroHash, fmt.Errorf("%w: unresolved paths: %v", plumbing.ErrMergeConflict, idx.ConflictedPaths())
	}

	treeHash, err := r.buildTreeFromIndex(idx)
	if err != nil {
		return hash.ZeroHash, err
	}

	now := time.Now()
	author, err := r.authorSignature(now)
	if err != nil {
		return hash.ZeroHash, err
	}
	committer, err := r.committerSignature(now)
	if err != nil {
		return hash.ZeroHash, err
	}

	var parents []hash.Hash
	oldHead, _, _, err := r.Head()
	if err != nil && !errors.Is(err, plumbing.ErrUnknownRef) {
		return hash.ZeroHash, err
	}
	if err == nil {
		parents = []hash.Hash{oldHead}
	}
	if idx.Len() == 0 && len(parents) == 0 {
		return hash.ZeroHash, fmt.Errorf("commit: nothing staged")
	}

	c := &object.Commit{
		Tree:      treeHash,
		Parents:   parents,
		Author:    author,
		Committer: committer,
		Message:   message,
	}
	newHash, err := r.Objects.StoreCommit(c)
	if err != nil {
		return hash.ZeroHash, err
	}

	if err := r.advanceHead(oldHead, newHash); err != nil {
		return hash.ZeroHash, err
	}

	vcslog.WithOperation("commit").Info().Str("oid", newHash.String()).Str("subject", c.Subject()).Msg("commit created")
	return newHash, nil
}

// Amend replaces HEAD with a new commit carrying the current index's tree,
// HEAD's own parents (not HEAD itself), HEAD's original author, and a
// committer timestamp later than HEAD's (moved one second past it when the
// clock has not advanced); per spec.md §4.6.3 this guarantees the new OID
// always differs from the original.
func (r *Repository) Amend(opts AmendOptions) (hash.Hash, error) {
	head, err := r.HeadCommit()
	if err != nil {
		return hash.ZeroHash, fmt.Errorf("amend: %w", err)
	}

	idx, err := r.LoadIndex()
	if err != nil {
		return hash.ZeroHash, err
	}
	treeHash, err := r.buildTreeFromIndex(idx)
	if err != nil {
		return hash.ZeroHash, err
	}

	message, err := r.resolveAmendMessage(head, opts)
	if err != nil {
		return hash.ZeroHash, err
	}

	committer, err := r.committerSignature(time.Now())
	if err != nil {
		return hash.ZeroHash, err
	}
	if committer.When.Unix() <= head.Committer.When.Unix() {
		committer.When = head.Committer.When.Add(time.Second)
	}

	c := &object.Commit{
		Tree:      treeHash,
		Parents:   head.Parents,
		Author:    head.Author,
		Committer: committer,
		Message:   message,
	}
	newHash, err := r.Objects.StoreCommit(c)
	if err != nil {
		return hash.ZeroHash, err
	}

	oldHeadHash, _, _, err := r.Head()
	if err != nil {
		return hash.ZeroHash, err
	}
	if err := r.advanceHead(oldHeadHash, newHash); err != nil {
		return hash.ZeroHash, err
	}

	vcslog.WithOperation("amend").Info().Str("from", oldHeadHash.String()).Str("to", newHash.String()).Msg("commit amended")
	return newHash, nil
}

func (r *Repository) resolveAmendMessage(head *object.Commit, opts AmendOptions) (string, error) {
	if opts.Message != "" {
		return opts.Message, nil
	}
	if opts.ReuseMessageRef != "" {
		c, err := r.resolveCommit(opts.ReuseMessageRef)
		if err != nil {
			return "", err
		}
		return c.Message, nil
	}
	if opts.ReeditMessageRef != "" {
		c, err := r.resolveCommit(opts.ReeditMessageRef)
		if err != nil {
			return "", err
		}
		if opts.Editor == nil {
			return c.Message, nil
		}
		return opts.Editor(c.Message)
	}
	if opts.Edit {
		if opts.Editor == nil {
			return head.Message, nil
		}
		return opts.Editor(head.Message)
	}
	return head.Message, nil
}

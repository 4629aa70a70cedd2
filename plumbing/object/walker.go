package object

import "github.com/asheraflow/ashera/plumbing/hash"

// Loader resolves a commit by hash; satisfied by the object store.
type Loader interface {
	Commit(h hash.Hash) (*Commit, error)
}

// WalkAncestors visits c and every reachable ancestor exactly once,
// depth-first, calling visit for each. A commit's parents are pushed onto a
// stack in order, so the last-listed parent is followed first; a commit is
// visited when first popped, which can come after one of its own parents
// if another path reached that parent earlier. Returning an error from
// visit stops the walk and is returned
// unwrapped. The visited-oid set is what keeps this a DAG walk rather than
// a naive recursive one: merge commits are reachable through more than
// one path, so a commit that was already visited is simply skipped.
func WalkAncestors(l Loader, start *Commit, visit func(*Commit) error) error {
	seen := make(map[hash.Hash]bool)
	stack := []*Commit{start}

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[c.Hash] {
			continue
		}
		seen[c.Hash] = true

		if err := visit(c); err != nil {
			return err
		}

		for _, p := range c.Parents {
			parent, err := l.Commit(p)
			if err != nil {
				return err
			}
			stack = append(stack, parent)
		}
	}

	return nil
}

// IsAncestor reports whether ancestor is reachable by following parent
// links from descendant (a commit is its own ancestor).
func IsAncestor(l Loader, descendant, ancestor *Commit) (bool, error) {
	found := false
	err := WalkAncestors(l, descendant, func(c *Commit) error {
		if c.Hash == ancestor.Hash {
			found = true
		}
		return nil
	})
	return found, err
}

// ancestorSet collects every oid reachable from start, including start.
func ancestorSet(l Loader, start *Commit) (map[hash.Hash]bool, error) {
	set := make(map[hash.Hash]bool)
	err := WalkAncestors(l, start, func(c *Commit) error {
		set[c.Hash] = true
		return nil
	})
	return set, err
}

// MergeBases computes the set of best common ancestors of a and b, per the
// same semantics as "git merge-base --all": commits reachable from both
// that are not themselves reachable from another common ancestor in the
// result (so a criss-cross history can yield more than one base).
func MergeBases(l Loader, a, b *Commit) ([]*Commit, error) {
	bSet, err := ancestorSet(l, b)
	if err != nil {
		return nil, err
	}

	// Walk a's ancestry in its own pre-order traversal order, rather than
	// ranging over a set, so the candidates feeding the reduction below are
	// in a deterministic earliest-discovered-first order. WalkAncestors
	// already visits each hash at most once.
	var candidates []hash.Hash
	err = WalkAncestors(l, a, func(c *Commit) error {
		if bSet[c.Hash] {
			candidates = append(candidates, c.Hash)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	candidateCommits := make(map[hash.Hash]*Commit, len(candidates))
	for _, h := range candidates {
		c, err := l.Commit(h)
		if err != nil {
			return nil, err
		}
		candidateCommits[h] = c
	}

	// Reduce: drop any candidate that is a (strict) ancestor of another
	// candidate, in the order the candidates were discovered above (the
	// earliest-discovered-first traversal order spec.md calls for).
	var result []*Commit
	for _, h := range candidates {
		c := candidateCommits[h]
		dominated := false
		for _, oh := range candidates {
			if oh == h {
				continue
			}
			other := candidateCommits[oh]
			isAnc, err := IsAncestor(l, other, c)
			if err != nil {
				return nil, err
			}
			if isAnc && other.Hash != c.Hash {
				dominated = true
				break
			}
		}
		if !dominated {
			result = append(result, c)
		}
	}

	return result, nil
}

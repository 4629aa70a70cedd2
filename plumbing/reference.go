package plumbing

import (
	"fmt"
	"strings"

	"github.com/asheraflow/ashera/plumbing/hash"
)

const (
	refPrefix     = "refs/"
	refHeadPrefix = refPrefix + "heads/"
	symrefPrefix  = "ref: "
)

// ReferenceName is a fully qualified reference path, e.g. "refs/heads/main".
type ReferenceName string

// HEAD is the name of the reference that always exists and names the
// current branch (attached) or commit (detached).
const HEAD ReferenceName = "HEAD"

// NewBranchReferenceName builds "refs/heads/<name>" from a short branch name.
func NewBranchReferenceName(name string) ReferenceName {
	return ReferenceName(refHeadPrefix + name)
}

// IsBranch reports whether n lives under refs/heads/.
func (n ReferenceName) IsBranch() bool {
	return strings.HasPrefix(string(n), refHeadPrefix)
}

// Short returns the name with any refs/heads/ prefix stripped.
func (n ReferenceName) Short() string {
	return strings.TrimPrefix(string(n), refHeadPrefix)
}

func (n ReferenceName) String() string {
	return string(n)
}

// ReferenceType distinguishes a ref pointing directly at an object from
// one pointing at another ref.
type ReferenceType int8

const (
	InvalidReference ReferenceType = iota
	HashReference
	SymbolicReference
)

// Reference is either a 40-char OID (a "hash reference") or a pointer at
// another reference name (a "symbolic reference", which is how HEAD
// tracks the current branch).
type Reference struct {
	typ    ReferenceType
	name   ReferenceName
	hash   hash.Hash
	target ReferenceName
}

// NewHashReference builds a reference that points directly at an object.
func NewHashReference(name ReferenceName, h hash.Hash) *Reference {
	return &Reference{typ: HashReference, name: name, hash: h}
}

// NewSymbolicReference builds a reference that points at another ref.
func NewSymbolicReference(name, target ReferenceName) *Reference {
	return &Reference{typ: SymbolicReference, name: name, target: target}
}

// ParseReference decodes one line of a ref file's content: either a
// "ref: <target>\n" symref or a bare 40-char hex OID.
func ParseReference(name ReferenceName, content string) (*Reference, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, symrefPrefix) {
		target := ReferenceName(strings.TrimSpace(strings.TrimPrefix(content, symrefPrefix)))
		return NewSymbolicReference(name, target), nil
	}

	h, err := hash.FromHex(content)
	if err != nil {
		return nil, fmt.Errorf("plumbing: malformed reference %q: %w", name, err)
	}
	return NewHashReference(name, h), nil
}

// Type reports whether this is a hash or symbolic reference.
func (r *Reference) Type() ReferenceType { return r.typ }

// Name returns the reference's own name.
func (r *Reference) Name() ReferenceName { return r.name }

// Hash returns the target object id of a hash reference; zero otherwise.
func (r *Reference) Hash() hash.Hash { return r.hash }

// Target returns the target reference name of a symbolic reference.
func (r *Reference) Target() ReferenceName { return r.target }

// String renders the reference the way it is stored on disk.
func (r *Reference) String() string {
	switch r.typ {
	case SymbolicReference:
		return symrefPrefix + string(r.target) + "\n"
	case HashReference:
		return r.hash.String() + "\n"
	default:
		return ""
	}
}

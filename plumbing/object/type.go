// Package object defines the four object kinds the store persists and
// their canonical serialization: blob, tree, commit, and (optionally) tag.
package object

import "fmt"

// Type tags the kind of an object, matching the header written before its
// content in the store ("<kind> <size>\0...").
type Type int8

const (
	InvalidObject Type = iota
	BlobObject
	TreeObject
	CommitObject
	TagObject
)

func (t Type) String() string {
	switch t {
	case BlobObject:
		return "blob"
	case TreeObject:
		return "tree"
	case CommitObject:
		return "commit"
	case TagObject:
		return "tag"
	default:
		return "invalid"
	}
}

// ParseType maps a header's kind word back to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "blob":
		return BlobObject, nil
	case "tree":
		return TreeObject, nil
	case "commit":
		return CommitObject, nil
	case "tag":
		return TagObject, nil
	default:
		return InvalidObject, fmt.Errorf("object: unknown object type %q", s)
	}
}

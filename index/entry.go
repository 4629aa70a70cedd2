// Package index implements the staging area: an ordered path->entry
// mapping with a stable, bit-exact binary on-disk format (§4.2).
package index

import (
	"time"

	"github.com/asheraflow/ashera/plumbing/filemode"
	"github.com/asheraflow/ashera/plumbing/hash"
)

// Stage distinguishes a normally-staged entry from the three slots a
// conflicted path occupies during an unresolved merge.
type Stage uint8

const (
	// Merged is the ordinary stage for a clean, non-conflicted entry.
	Merged Stage = 0
	// AncestorStage holds the common-ancestor ("base") version.
	AncestorStage Stage = 1
	// OurStage holds our side of an unresolved conflict.
	OurStage Stage = 2
	// TheirStage holds their side of an unresolved conflict.
	TheirStage Stage = 3
)

// Entry is one staged path. Stat-cache fields are used only to decide
// whether workspace.Classify can skip rehashing a file; they carry no
// semantic weight of their own.
type Entry struct {
	Name string
	Mode filemode.FileMode
	Hash hash.Hash
	Stage Stage

	CreatedAt  time.Time
	ModifiedAt time.Time
	Dev        uint32
	Inode      uint32
	UID        uint32
	GID        uint32
	Size       uint32
}

// StatMatches reports whether this entry's cached stat tuple
// (mode, mtime, size, ino) exactly matches the given values, the fast path
// that lets workspace.Classify skip rehashing an unchanged file. ctime is
// not compared.
func (e *Entry) StatMatches(mode filemode.FileMode, mtime time.Time, size uint32, inode uint32) bool {
	return e.Mode == mode &&
		e.ModifiedAt.Equal(mtime) &&
		e.Size == size &&
		e.Inode == inode
}

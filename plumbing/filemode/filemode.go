// Package filemode defines the tree-entry modes recognized by the object
// store, matching the octal modes used in a tree object's serialization.
package filemode

import (
	"fmt"
	"os"
	"strconv"
)

// FileMode is one of the handful of octal modes a tree entry may carry.
type FileMode uint32

const (
	// Empty is the zero value; never written to a tree.
	Empty FileMode = 0
	// Dir is a tree entry pointing at another tree.
	Dir FileMode = 0040000
	// Regular is an ordinary, non-executable file.
	Regular FileMode = 0100644
	// Deprecated is the legacy non-executable regular file mode some
	// historical repositories carry; read-compatible, never written.
	Deprecated FileMode = 0100664
	// Executable is a regular file with the executable bit set.
	Executable FileMode = 0100755
	// Symlink stores the link target as the blob content.
	Symlink FileMode = 0120000
	// Submodule is a gitlink entry; the core does not resolve it.
	Submodule FileMode = 0160000
)

// New parses the octal string form of a mode found in a tree record.
func New(s string) (FileMode, error) {
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return Empty, fmt.Errorf("filemode: invalid mode %q: %w", s, err)
	}
	return FileMode(n), nil
}

// String renders the mode the way a tree object encodes it: as octal,
// without leading zeros, "40000" rather than "040000".
func (m FileMode) String() string {
	return strconv.FormatUint(uint64(m), 8)
}

// IsMalformed reports whether m is not one of the recognized modes.
func (m FileMode) IsMalformed() bool {
	switch m {
	case Dir, Regular, Deprecated, Executable, Symlink, Submodule:
		return false
	default:
		return true
	}
}

// IsRegular reports whether m addresses blob content directly (a file
// or symlink, as opposed to a tree or gitlink).
func (m FileMode) IsRegular() bool {
	switch m {
	case Regular, Deprecated, Executable, Symlink:
		return true
	default:
		return false
	}
}

// FromOSFileMode maps a Go os.FileMode, as observed in the workspace, to
// the nearest tree mode.
func FromOSFileMode(m os.FileMode) FileMode {
	switch {
	case m.IsDir():
		return Dir
	case m&os.ModeSymlink != 0:
		return Symlink
	case m&0111 != 0:
		return Executable
	default:
		return Regular
	}
}

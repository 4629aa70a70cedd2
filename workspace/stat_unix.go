//go:build !windows && !plan9

package workspace

import (
	"io/fs"
	"syscall"
)

// inodeOf extracts the inode number from a stat result, when the underlying
// filesystem exposes one; 0 otherwise.
func inodeOf(info fs.FileInfo) uint32 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return uint32(st.Ino)
}

// InodeOf is the exported form, for callers outside the package (`add`)
// building a fresh index entry's stat cache.
func InodeOf(info fs.FileInfo) uint32 { return inodeOf(info) }

//go:build windows || plan9

package workspace

import "io/fs"

// inodeOf has no meaningful equivalent on Windows/Plan9 filesystems; the
// stat-cache fast path falls back to mode+mtime+size alone there.
func inodeOf(info fs.FileInfo) uint32 {
	return 0
}

// InodeOf is the exported form, for callers outside the package (`add`)
// building a fresh index entry's stat cache.
func InodeOf(info fs.FileInfo) uint32 { return inodeOf(info) }

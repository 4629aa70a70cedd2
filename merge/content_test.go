package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentMergeNonOverlapping(t *testing.T) {
	// Edits to "b" and "f" are separated by mergeContextLines (c, d, e)
	// untouched base lines on each side, so they apply independently.
	base := "a\nb\nc\nd\ne\nf\ng\n"
	ours := "a\nX\nc\nd\ne\nf\ng\n"
	theirs := "a\nb\nc\nd\ne\nY\ng\n"

	merged, conflicted := ContentMerge(base, ours, theirs, "ours", "theirs")
	assert.False(t, conflicted)
	assert.Equal(t, "a\nX\nc\nd\ne\nY\ng\n", merged)
}

// TestContentMergeTooCloseConflicts covers spec.md §8 scenario 3's shape at
// content-merge granularity: edits near opposite ends of a short file, with
// fewer than mergeContextLines untouched lines between them, collide even
// though their exact line ranges don't overlap.
func TestContentMergeTooCloseConflicts(t *testing.T) {
	base := "l1\nl2\nl3\n"
	ours := "l1_m\nl2\nl3\n"
	theirs := "l1\nl2\nl3_f\n"

	merged, conflicted := ContentMerge(base, ours, theirs, "master", "feature")
	assert.True(t, conflicted)
	assert.Contains(t, merged, "<<<<<<< master\n")
	assert.Contains(t, merged, ">>>>>>> feature\n")
}

func TestContentMergeOverlapping(t *testing.T) {
	base := "a\nb\nc\n"
	ours := "a\nX\nc\n"
	theirs := "a\nY\nc\n"

	merged, conflicted := ContentMerge(base, ours, theirs, "ours", "theirs")
	assert.True(t, conflicted)
	assert.Contains(t, merged, "<<<<<<< ours\n")
	assert.Contains(t, merged, "=======\n")
	assert.Contains(t, merged, ">>>>>>> theirs\n")
	assert.Contains(t, merged, "X\n")
	assert.Contains(t, merged, "Y\n")
}

func TestContentMergeIdenticalChangeIsClean(t *testing.T) {
	base := "a\nb\nc\n"
	ours := "a\nX\nc\n"
	theirs := "a\nX\nc\n"

	merged, conflicted := ContentMerge(base, ours, theirs, "ours", "theirs")
	assert.False(t, conflicted)
	assert.Equal(t, ours, merged)
}

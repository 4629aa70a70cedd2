package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinesNoChange(t *testing.T) {
	edits := Lines("a\nb\nc\n", "a\nb\nc\n")
	for _, e := range edits {
		assert.Equal(t, LineEqual, e.Op)
	}
}

func TestLinesInsertDelete(t *testing.T) {
	edits := Lines("a\nb\nc\n", "a\nx\nc\n")
	var ops []LineOp
	for _, e := range edits {
		ops = append(ops, e.Op)
	}
	assert.Contains(t, ops, LineDelete)
	assert.Contains(t, ops, LineInsert)
}

func TestSimilarityRatioIdentical(t *testing.T) {
	assert.Equal(t, 1.0, SimilarityRatio("same", "same"))
}

func TestSimilarityRatioDisjoint(t *testing.T) {
	r := SimilarityRatio("aaaa", "zzzzzzzz")
	assert.Less(t, r, 1.0)
	assert.GreaterOrEqual(t, r, 0.0)
}

func TestUnifiedRendersMarkers(t *testing.T) {
	edits := Lines("a\nb\nc\n", "a\nx\nc\n")
	out := Unified(edits, 3)
	assert.Contains(t, out, "-b\n")
	assert.Contains(t, out, "+x\n")
}

package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineOp mirrors diffmatchpatch's operation kinds at line granularity.
type LineOp int

const (
	LineEqual LineOp = iota
	LineInsert
	LineDelete
)

// LineEdit is one run of equal, inserted, or deleted lines.
type LineEdit struct {
	Op    LineOp
	Lines []string
}

// Lines computes the Myers shortest edit script between a and b at line
// granularity, using diffmatchpatch's line-mode optimization (hashing whole
// lines to runes before diffing, then expanding back): §5.2's required
// algorithm, delegated entirely to diffmatchpatch rather than reimplemented.
func Lines(a, b string) []LineEdit {
	dmp := diffmatchpatch.New()

	a1, b1, lineArray := dmp.DiffLinesToRunes(a, b)
	diffs := dmp.DiffMainRunes(a1, b1, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	edits := make([]LineEdit, 0, len(diffs))
	for _, d := range diffs {
		lines := splitLines(d.Text)
		if len(lines) == 0 {
			continue
		}
		var op LineOp
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			op = LineEqual
		case diffmatchpatch.DiffInsert:
			op = LineInsert
		case diffmatchpatch.DiffDelete:
			op = LineDelete
		}
		edits = append(edits, LineEdit{Op: op, Lines: lines})
	}
	return edits
}

// splitLines preserves trailing-newline semantics the way diffmatchpatch
// hands them back: a chunk always ends with "\n" except possibly the final
// line of the file.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	trimmed := strings.HasSuffix(s, "\n")
	if trimmed {
		s = s[:len(s)-1]
	}
	lines := strings.Split(s, "\n")
	if trimmed {
		for i := range lines {
			lines[i] += "\n"
		}
	}
	return lines
}

// Unified renders edits as a unified-style hunk body (no @@ header; callers
// that need file-level headers compose those from the two paths separately),
// with ctx lines of leading/trailing context collapsed around each changed
// run, matching the classic " "/"-"/"+" prefix convention.
func Unified(edits []LineEdit, ctx int) string {
	var b strings.Builder
	for idx, e := range edits {
		lines := e.Lines
		if e.Op == LineEqual {
			show := lines
			switch {
			case idx == 0 && idx == len(edits)-1:
				// whole diff is one equal run: nothing to show
				show = nil
			case idx == 0:
				if len(show) > ctx {
					show = show[len(show)-ctx:]
				}
			case idx == len(edits)-1:
				if len(show) > ctx {
					show = show[:ctx]
				}
			default:
				if len(show) > 2*ctx {
					head := show[:ctx]
					tail := show[len(show)-ctx:]
					for _, l := range head {
						fmt.Fprintf(&b, " %s", l)
					}
					b.WriteString("...\n")
					for _, l := range tail {
						fmt.Fprintf(&b, " %s", l)
					}
					continue
				}
			}
			for _, l := range show {
				fmt.Fprintf(&b, " %s", l)
			}
			continue
		}

		prefix := "+"
		if e.Op == LineDelete {
			prefix = "-"
		}
		for _, l := range lines {
			fmt.Fprintf(&b, "%s%s", prefix, l)
		}
	}
	return b.String()
}

// SimilarityRatio scores how related two blobs' contents are, in [0,1], used
// by rename detection (§5.1's file/dir and rename handling): 1 - (edit
// distance / max(len(a), len(b))), computed over the same line-level script
// Lines uses so the cost metric matches what the unified diff would show.
func SimilarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}

	dmp := diffmatchpatch.New()
	a1, b1, lineArray := dmp.DiffLinesToRunes(a, b)
	diffs := dmp.DiffMainRunes(a1, b1, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	dist := dmp.DiffLevenshtein(diffs)
	ratio := 1 - float64(dist)/float64(maxLen)
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}

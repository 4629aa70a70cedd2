package merge

import (
	"fmt"
	"strings"

	"github.com/asheraflow/ashera/diff"
)

// hunk is one run of base lines replaced (possibly by nothing, a pure
// delete, or by lines with no base counterpart, a pure insert anchored
// immediately after baseEnd) by a side's edit script.
type hunk struct {
	baseStart, baseEnd int // half-open range into the base line slice
	lines              []string
}

// hunksFromEdits converts a diff.Lines edit script into anchored hunks,
// merging the common Delete-then-Insert pairing diffmatchpatch produces for
// a modified region into a single replace hunk.
func hunksFromEdits(edits []diff.LineEdit) []hunk {
	var hunks []hunk
	basePos := 0

	i := 0
	for i < len(edits) {
		e := edits[i]
		switch e.Op {
		case diff.LineEqual:
			basePos += len(e.Lines)
			i++
		case diff.LineDelete:
			start := basePos
			basePos += len(e.Lines)
			var repl []string
			if i+1 < len(edits) && edits[i+1].Op == diff.LineInsert {
				repl = edits[i+1].Lines
				i += 2
			} else {
				i++
			}
			hunks = append(hunks, hunk{baseStart: start, baseEnd: basePos, lines: repl})
		case diff.LineInsert:
			hunks = append(hunks, hunk{baseStart: basePos, baseEnd: basePos, lines: e.Lines})
			i++
		}
	}
	return hunks
}

// mergeContextLines is the minimum run of untouched base lines required
// between two hunks from opposite sides for them to be considered
// independent edits; closer than this, they are folded into a single
// conflict region instead of applied separately. Matches §4.4's unified
// diff context default of 3, so two edits a reviewer would see sharing a
// hunk's context in `diff` also collide here.
const mergeContextLines = 3

// ContentMerge runs a three-way, diff3-style line merge of base/ours/theirs.
// Edits from each side separated by at least mergeContextLines untouched
// base lines are applied independently; edits closer together than that
// (including genuinely overlapping ranges) with different replacement
// content produce a conflict, and the full base/ours/theirs region is
// wrapped in <<<<<<</=======/>>>>>>> markers labelled with oursLabel/
// theirsLabel.
func ContentMerge(base, ours, theirs, oursLabel, theirsLabel string) (merged string, conflicted bool) {
	baseLines := splitKeepEnds(base)

	oursHunks := hunksFromEdits(diff.Lines(base, ours))
	theirsHunks := hunksFromEdits(diff.Lines(base, theirs))

	var b strings.Builder
	pos := 0
	oi, ti := 0, 0

	flush := func(upto int) {
		for pos < upto {
			b.WriteString(baseLines[pos])
			pos++
		}
	}

	for oi < len(oursHunks) || ti < len(theirsHunks) {
		var oh, th *hunk
		if oi < len(oursHunks) {
			oh = &oursHunks[oi]
		}
		if ti < len(theirsHunks) {
			th = &theirsHunks[ti]
		}

		switch {
		case oh != nil && (th == nil || oh.baseEnd+mergeContextLines <= th.baseStart):
			flush(oh.baseStart)
			writeHunkLines(&b, oh.lines)
			pos = oh.baseEnd
			oi++

		case th != nil && (oh == nil || th.baseEnd+mergeContextLines <= oh.baseStart):
			flush(th.baseStart)
			writeHunkLines(&b, th.lines)
			pos = th.baseEnd
			ti++

		default:
			// overlapping ranges: identical edits merge cleanly, otherwise conflict
			start := min(oh.baseStart, th.baseStart)
			end := max(oh.baseEnd, th.baseEnd)
			flush(start)

			if sameLines(oh.lines, th.lines) && oh.baseStart == th.baseStart && oh.baseEnd == th.baseEnd {
				writeHunkLines(&b, oh.lines)
			} else {
				conflicted = true
				region := func(h *hunk) []string {
					out := append([]string{}, baseLines[start:h.baseStart]...)
					out = append(out, h.lines...)
					return append(out, baseLines[h.baseEnd:end]...)
				}
				fmt.Fprintf(&b, "<<<<<<< %s\n", oursLabel)
				writeHunkLines(&b, region(oh))
				b.WriteString("=======\n")
				writeHunkLines(&b, region(th))
				fmt.Fprintf(&b, ">>>>>>> %s\n", theirsLabel)
			}
			pos = end
			oi++
			ti++
		}
	}

	flush(len(baseLines))
	return b.String(), conflicted
}

func writeHunkLines(b *strings.Builder, lines []string) {
	for _, l := range lines {
		b.WriteString(l)
	}
}

func sameLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func splitKeepEnds(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}


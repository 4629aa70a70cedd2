package ashera

import (
	"errors"
	"fmt"
	"strings"

	"github.com/asheraflow/ashera/plumbing/hash"
	"github.com/asheraflow/ashera/plumbing/object"
)

// LogOptions controls Log's output per SPEC_FULL.md's supplemented
// history-viewing surface.
type LogOptions struct {
	// MaxCount caps the number of commits returned; 0 means unbounded.
	MaxCount int
	// Oneline renders "<abbrev-hash> <subject>" instead of the full
	// multi-line form.
	Oneline bool
	// Decorate appends "(branch names pointing here)" after the hash,
	// the way `git log --decorate` annotates ref tips.
	Decorate bool
	// Pretty, if non-empty, overrides Oneline/Decorate with a custom
	// format string using the same placeholders as formatCommit; a leading
	// "format:" is dropped.
	Pretty string
}

// logEntry pairs a commit with the branch names (if any) whose tip is that
// commit, for --decorate.
type logEntry struct {
	commit *object.Commit
	refs   []string
}

var errLogLimitReached = errors.New("ashera: log: max-count reached")

// Log walks HEAD's ancestry with object.WalkAncestors, listing each
// reachable commit once (every merge parent is eventually visited, but a
// commit can be listed after one of its own parents when a merge reaches
// that parent by another path first), rendering up to MaxCount lines.
func (r *Repository) Log(opts LogOptions) ([]string, error) {
	head, err := r.HeadCommit()
	if err != nil {
		return nil, err
	}

	decorations, err := r.refDecorations()
	if err != nil {
		return nil, err
	}

	var lines []string
	count := 0
	err = object.WalkAncestors(r.Objects, head, func(c *object.Commit) error {
		if opts.MaxCount > 0 && count >= opts.MaxCount {
			return errLogLimitReached
		}
		count++
		lines = append(lines, renderLogEntry(logEntry{commit: c, refs: decorations[c.Hash]}, opts))
		return nil
	})
	if err != nil && !errors.Is(err, errLogLimitReached) {
		return nil, err
	}
	return lines, nil
}

// refDecorations maps a commit hash to the sorted branch names currently
// pointing at it, for --decorate.
func (r *Repository) refDecorations() (map[hash.Hash][]string, error) {
	heads, err := r.Refs.ListHeads()
	if err != nil {
		return nil, err
	}
	out := map[hash.Hash][]string{}
	for _, name := range heads {
		ref, err := r.Refs.Read(name)
		if err != nil {
			return nil, err
		}
		out[ref.Hash()] = append(out[ref.Hash()], name.Short())
	}
	return out, nil
}

func renderLogEntry(e logEntry, opts LogOptions) string {
	switch {
	case opts.Pretty != "":
		return formatCommit(strings.TrimPrefix(opts.Pretty, "format:"), e)
	case opts.Oneline:
		format := "%h %s"
		if opts.Decorate && len(e.refs) > 0 {
			format = "%h (" + strings.Join(e.refs, ", ") + ") %s"
		}
		return formatCommit(format, e)
	default:
		return formatCommitFull(e, opts)
	}
}

func formatCommitFull(e logEntry, opts LogOptions) string {
	c := e.commit
	var b strings.Builder
	fmt.Fprintf(&b, "commit %s", c.Hash)
	if opts.Decorate && len(e.refs) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.refs, ", "))
	}
	b.WriteByte('\n')
	if c.IsMerge() {
		fmt.Fprintf(&b, "Merge: %s\n", abbreviatedParents(c))
	}
	fmt.Fprintf(&b, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
	fmt.Fprintf(&b, "Date:   %s\n", c.Author.When.Format("Mon Jan 2 15:04:05 2006 -0700"))
	b.WriteByte('\n')
	for _, line := range strings.Split(c.Message, "\n") {
		fmt.Fprintf(&b, "    %s\n", line)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatCommit substitutes the token subset %H %h %T %t %an %ae %ad %cn %ce
// %cd %s %P, the pretty-print tokens SPEC_FULL.md's --pretty=format carries.
func formatCommit(format string, e logEntry) string {
	c := e.commit
	replacer := strings.NewReplacer(
		"%H", c.Hash.String(),
		"%h", abbrev(c.Hash.String()),
		"%T", c.Tree.String(),
		"%t", abbrev(c.Tree.String()),
		"%an", c.Author.Name,
		"%ae", c.Author.Email,
		"%ad", c.Author.When.Format("Mon Jan 2 15:04:05 2006 -0700"),
		"%cn", c.Committer.Name,
		"%ce", c.Committer.Email,
		"%cd", c.Committer.When.Format("Mon Jan 2 15:04:05 2006 -0700"),
		"%s", c.Subject(),
		"%P", parentsHex(c),
	)
	return replacer.Replace(format)
}

func parentsHex(c *object.Commit) string {
	hexes := make([]string, len(c.Parents))
	for i, p := range c.Parents {
		hexes[i] = p.String()
	}
	return strings.Join(hexes, " ")
}

func abbreviatedParents(c *object.Commit) string {
	hexes := make([]string, len(c.Parents))
	for i, p := range c.Parents {
		hexes[i] = abbrev(p.String())
	}
	return strings.Join(hexes, " ")
}

func abbrev(hex string) string {
	const n = 7
	if len(hex) < n {
		return hex
	}
	return hex[:n]
}

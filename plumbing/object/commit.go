package object

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/asheraflow/ashera/plumbing/hash"
)

// Commit captures a tree plus metadata and zero-or-more parents.
type Commit struct {
	Hash      hash.Hash
	Tree      hash.Hash
	Parents   []hash.Hash
	Author    Signature
	Committer Signature
	Message   string
}

// Type implements Object.
func (c *Commit) Type() Type { return CommitObject }

// IsMerge reports whether the commit has more than one parent.
func (c *Commit) IsMerge() bool { return len(c.Parents) > 1 }

// IsRoot reports whether the commit has no parent.
func (c *Commit) IsRoot() bool { return len(c.Parents) == 0 }

// Subject returns the first line of the commit message.
func (c *Commit) Subject() string {
	if i := strings.IndexByte(c.Message, '\n'); i >= 0 {
		return c.Message[:i]
	}
	return c.Message
}

// Encode serializes the commit into its canonical header+blank-line+message
// form: "tree <oid>\nparent <oid>\n...author ...\ncommitter ...\n\n<message>".
func (c *Commit) Encode() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// DecodeCommit parses a commit object's raw content.
func DecodeCommit(h hash.Hash, content []byte) (*Commit, error) {
	c := &Commit{Hash: h}
	r := bufio.NewReader(bytes.NewReader(content))

	for {
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			break
		}
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			break
		}

		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("object: malformed commit %s: bad header line %q", h, line)
		}
		key, value := line[:sp], line[sp+1:]

		switch key {
		case "tree":
			treeHash, err := hash.FromHex(value)
			if err != nil {
				return nil, fmt.Errorf("object: malformed commit %s: %w", h, err)
			}
			c.Tree = treeHash
		case "parent":
			parentHash, err := hash.FromHex(value)
			if err != nil {
				return nil, fmt.Errorf("object: malformed commit %s: %w", h, err)
			}
			c.Parents = append(c.Parents, parentHash)
		case "author":
			sig, err := ParseSignature(value)
			if err != nil {
				return nil, fmt.Errorf("object: malformed commit %s: %w", h, err)
			}
			c.Author = sig
		case "committer":
			sig, err := ParseSignature(value)
			if err != nil {
				return nil, fmt.Errorf("object: malformed commit %s: %w", h, err)
			}
			c.Committer = sig
		}

		if err != nil {
			break
		}
	}

	msg, err := r.ReadString(0)
	if err != nil && len(msg) == 0 {
		c.Message = ""
	} else {
		c.Message = msg
	}

	return c, nil
}

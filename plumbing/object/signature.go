package object

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signature is the author/committer line of a commit: name, email, and a
// timestamp. The timezone offset is preserved via a fixed Location so
// round-tripping a commit reproduces its exact bytes.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// ParseSignature decodes a line of the form
// "Name <email> <epoch-seconds> <+hhmm>".
func ParseSignature(line string) (Signature, error) {
	var sig Signature

	open := strings.IndexByte(line, '<')
	closeB := strings.IndexByte(line, '>')
	if open < 0 || closeB < open {
		return sig, fmt.Errorf("object: malformed signature %q", line)
	}

	sig.Name = strings.TrimSpace(line[:open])
	sig.Email = line[open+1 : closeB]

	rest := strings.Fields(line[closeB+1:])
	if len(rest) != 2 {
		return sig, fmt.Errorf("object: malformed signature timestamp in %q", line)
	}

	sec, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return sig, fmt.Errorf("object: malformed signature timestamp in %q: %w", line, err)
	}

	offset, err := parseTZOffset(rest[1])
	if err != nil {
		return sig, err
	}

	sig.When = time.Unix(sec, 0).In(time.FixedZone(rest[1], offset))
	return sig, nil
}

func parseTZOffset(tz string) (int, error) {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return 0, fmt.Errorf("object: malformed timezone %q", tz)
	}
	hh, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return 0, fmt.Errorf("object: malformed timezone %q: %w", tz, err)
	}
	mm, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return 0, fmt.Errorf("object: malformed timezone %q: %w", tz, err)
	}
	offset := hh*3600 + mm*60
	if tz[0] == '-' {
		offset = -offset
	}
	return offset, nil
}

// String renders the signature the way it is written into a commit
// object: "Name <email> <epoch> <+hhmm>".
func (s Signature) String() string {
	_, offset := s.When.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s <%s> %d %s%02d%02d",
		s.Name, s.Email, s.When.Unix(), sign, offset/3600, (offset%3600)/60)
}

// Package config reads the control directory's ".store/config" file: an
// ini-style document (core settings, author/committer identity) decoded with
// gcfg, matching go-git's own use of gcfg for git config files. Identity
// can additionally be overridden by environment variables, checked in the
// order AUTHOR_*/COMMITTER_* env vars, then config file, per §4.7.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-git/gcfg"
)

// Identity names who a commit's author or committer is.
type Identity struct {
	Name  string
	Email string
}

// Core holds the [core] section of the config file.
type Core struct {
	Bare bool
}

// User holds the [user] section: default author/committer identity.
type User struct {
	Name  string
	Email string
}

// File is the decoded shape of ".store/config".
type File struct {
	Core Core
	User User
}

func empty() *File {
	return &File{}
}

// Decode parses r as a gcfg document into a fresh File.
func Decode(r io.Reader) (*File, error) {
	f := empty()
	if err := gcfg.ReadInto(f, r); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return f, nil
}

// Load reads and decodes the config file at path; a missing file yields an
// empty, zero-valued File rather than an error, since a freshly initialized
// repository has none of this filled in yet.
func Load(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty(), nil
		}
		return nil, err
	}
	defer r.Close()
	return Decode(r)
}

// Encode writes f back out in gcfg's ini format.
func (f *File) Encode(w io.Writer) error {
	_, err := fmt.Fprintf(w, "[core]\n\tbare = %t\n[user]\n\tname = %s\n\temail = %s\n",
		f.Core.Bare, quote(f.User.Name), quote(f.User.Email))
	return err
}

func quote(s string) string { return s }

// AuthorIdentity resolves the author identity, preferring AUTHOR_NAME /
// AUTHOR_EMAIL environment variables over the config file's [user] section.
func (f *File) AuthorIdentity() (Identity, error) {
	return resolveIdentity(f, "AUTHOR_NAME", "AUTHOR_EMAIL")
}

// CommitterIdentity resolves the committer identity, preferring
// COMMITTER_NAME / COMMITTER_EMAIL over the config file.
func (f *File) CommitterIdentity() (Identity, error) {
	return resolveIdentity(f, "COMMITTER_NAME", "COMMITTER_EMAIL")
}

func resolveIdentity(f *File, nameVar, emailVar string) (Identity, error) {
	id := Identity{Name: f.User.Name, Email: f.User.Email}
	if v := os.Getenv(nameVar); v != "" {
		id.Name = v
	}
	if v := os.Getenv(emailVar); v != "" {
		id.Email = v
	}
	if id.Name == "" || id.Email == "" {
		return id, fmt.Errorf("config: no identity configured (set [user] in .store/config or %s/%s)", nameVar, emailVar)
	}
	return id, nil
}

// AuthorDate resolves an author/committer timestamp override from envVar,
// falling back to now when unset or unparseable. Dates are RFC3339.
func AuthorDate(envVar string, now time.Time) time.Time {
	v := os.Getenv(envVar)
	if v == "" {
		return now
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return now
	}
	return t
}

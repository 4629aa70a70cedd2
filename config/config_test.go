package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	r := strings.NewReader("[core]\n\tbare = true\n[user]\n\tname = Ada Lovelace\n\temail = ada@example.com\n")
	f, err := Decode(r)
	require.NoError(t, err)
	assert.True(t, f.Core.Bare)
	assert.Equal(t, "Ada Lovelace", f.User.Name)
	assert.Equal(t, "ada@example.com", f.User.Email)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	f, err := Load("/nonexistent/path/to/config")
	require.NoError(t, err)
	assert.Equal(t, "", f.User.Name)
}

func TestAuthorIdentityFromFile(t *testing.T) {
	f := &File{User: User{Name: "Ada Lovelace", Email: "ada@example.com"}}
	id, err := f.AuthorIdentity()
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", id.Name)
	assert.Equal(t, "ada@example.com", id.Email)
}

func TestAuthorIdentityEnvOverride(t *testing.T) {
	f := &File{User: User{Name: "Ada Lovelace", Email: "ada@example.com"}}
	t.Setenv("AUTHOR_NAME", "Grace Hopper")
	id, err := f.AuthorIdentity()
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", id.Name)
	assert.Equal(t, "ada@example.com", id.Email)
}

func TestAuthorIdentityMissingIsError(t *testing.T) {
	f := empty()
	_, err := f.AuthorIdentity()
	assert.Error(t, err)
}

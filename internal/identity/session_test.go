package identity

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	store := NewSessionStore(path)

	salt, err := GenerateSalt()
	require.NoError(t, err)
	require.Len(t, salt, 16)

	require.NoError(t, store.Save("uid-1234", "correct horse1", salt))

	got, err := store.Load("correct horse1", salt)
	require.NoError(t, err)
	assert.Equal(t, "uid-1234", got)
}

func TestSessionWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	store := NewSessionStore(path)

	salt, err := GenerateSalt()
	require.NoError(t, err)
	require.NoError(t, store.Save("uid-1234", "right one1", salt))

	_, err = store.Load("wrong one1", salt)
	require.Error(t, err, "a wrong passphrase must not unseal")
}

func TestSessionMissingFile(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "never-written"))

	salt, err := GenerateSalt()
	require.NoError(t, err)

	got, err := store.Load("anything", salt)
	require.NoError(t, err, "no session yet is not an error")
	assert.Empty(t, got)
}

func TestSessionClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	store := NewSessionStore(path)

	salt, err := GenerateSalt()
	require.NoError(t, err)
	require.NoError(t, store.Save("uid-1234", "pass word1", salt))

	require.NoError(t, store.Clear())
	got, err := store.Load("pass word1", salt)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, store.Clear(), "clearing twice is fine")
}

package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestStore_SaveAndGet(t *testing.T) {
	store := openTestStore(t)

	saved := &Session{
		Username:    "alice",
		AccessToken: "token-123",
		SavedAt:     time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(saved))

	got, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "token-123", got.AccessToken)
	assert.Equal(t, saved.SavedAt, got.SavedAt)
}

func TestStore_Get_NotLoggedIn(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestStore_SaveReplaces(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save(&Session{Username: "alice", AccessToken: "first"}))
	require.NoError(t, store.Save(&Session{Username: "bob", AccessToken: "second"}))

	got, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
	assert.Equal(t, "second", got.AccessToken)
}

func TestStore_Delete(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save(&Session{Username: "alice", AccessToken: "token"}))
	require.NoError(t, store.Delete())

	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	// Deleting again is not an error
	assert.NoError(t, store.Delete())
}

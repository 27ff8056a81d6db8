package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set("k", []byte("value")))

	got, err := store.Get("k")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), again)
}

func TestMemoryStoreMissingKey(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get("absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPebbleStoreRoundTrip(t *testing.T) {
	store, err := OpenPebble(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get("absent")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("k", []byte(`{"chats":[]}`)))
	got, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"chats":[]}`), got)

	// Overwrite is last-write-wins.
	require.NoError(t, store.Set("k", []byte("v2")))
	got, err = store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

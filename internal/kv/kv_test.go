package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	pebbleStore, err := OpenPebbleStore(t.TempDir())
	require.NoError(t, err)
	defer pebbleStore.Close()

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"pebble": pebbleStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set("k", "v1"))
			value, err := store.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "v1", value)

			require.NoError(t, store.Set("k", "v2"))
			value, err = store.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "v2", value)

			require.NoError(t, store.Delete("k"))
			_, err = store.Get("k")
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting a missing key is not an error.
			assert.NoError(t, store.Delete("k"))
		})
	}
}

func TestPebbleStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenPebbleStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("last_activity:zoe", "1700000000000"))
	require.NoError(t, store.Close())

	reopened, err := OpenPebbleStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get("last_activity:zoe")
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", value)
}

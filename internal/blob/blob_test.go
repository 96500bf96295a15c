package blob

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
			payload := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

			id, err := store.Put(payload, "image/png")
			require.NoError(t, err)
			require.NotEmpty(t, id)

			data, contentType, err := store.Get(id)
			require.NoError(t, err)
			assert.Equal(t, payload, data)
			assert.Equal(t, "image/png", contentType)

			_, _, err = store.Get("nope")
			assert.ErrorIs(t, err, ErrNotFound)

			// Each put gets a distinct id.
			other, err := store.Put(payload, "image/png")
			require.NoError(t, err)
			assert.NotEqual(t, id, other)
		})
	}
}

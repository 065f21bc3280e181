package testutils

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/vesting/internal/crypto"
	"github.com/eigerco/vesting/pkg/db/pebble"
)

func RandomIdentity(t *testing.T) crypto.Identity {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.PublicKey()
}

func RandomIdentities(t *testing.T, n int) []crypto.Identity {
	ids := make([]crypto.Identity, n)
	for i := range ids {
		ids[i] = RandomIdentity(t)
	}
	return ids
}

func RandomKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

// NewStore opens an in-memory store that is closed when the test ends.
func NewStore(t *testing.T) *pebble.KVStore {
	t.Helper()
	kv, err := pebble.NewKVStore()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, kv.Close())
	})
	return kv
}

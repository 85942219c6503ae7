package keyslot

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"awmkit/internal/secretstore"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := secretstore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	reg, err := Open(db, store, nil)
	require.NoError(t, err)
	return reg
}

func TestGenerateAndKeyRoundTrip(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.Generate(3))
	require.ErrorIs(t, reg.Generate(3), ErrSlotOccupied)

	key, err := reg.Key(3)
	require.NoError(t, err)
	require.Len(t, key, 32)

	fp, err := reg.Fingerprint(3)
	require.NoError(t, err)
	require.Len(t, fp, 8)
}

func TestImportValidatesKeyMaterial(t *testing.T) {
	reg := newTestRegistry(t)

	require.ErrorIs(t, reg.Import(0, []byte("too short")), ErrInvalidKeyMaterial)

	hexKey := make([]byte, 64)
	for i := range hexKey {
		hexKey[i] = '7'
	}
	require.NoError(t, reg.Import(0, hexKey))

	key, err := reg.Key(0)
	require.NoError(t, err)
	require.Len(t, key, 32)
}

func TestUseRejectsInvalidOrEmptySlots(t *testing.T) {
	reg := newTestRegistry(t)

	require.ErrorIs(t, reg.Use(32), ErrInvalidSlot)
	require.ErrorIs(t, reg.Use(5), ErrSlotEmpty)

	require.NoError(t, reg.Generate(5))
	require.NoError(t, reg.Use(5))

	current, err := reg.Current()
	require.NoError(t, err)
	require.Equal(t, 5, current)
}

func TestDeleteLeavesActiveSlotDangling(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.Generate(7))
	require.NoError(t, reg.Use(7))
	require.NoError(t, reg.Delete(7))

	current, err := reg.Current()
	require.NoError(t, err)
	require.Equal(t, 7, current)

	require.ErrorIs(t, reg.Use(7), ErrSlotEmpty)
	require.ErrorIs(t, reg.Delete(7), ErrSlotEmpty)
}

func TestLabelSetAndClear(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Generate(1))
	require.NoError(t, reg.LabelSet(1, "studio-master"))

	slots, err := reg.List()
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Equal(t, "studio-master", slots[0].Label)

	require.NoError(t, reg.LabelClear(1))
	slots, err = reg.List()
	require.NoError(t, err)
	require.Equal(t, "", slots[0].Label)
}

func TestRotateChangesKeyAndFingerprint(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Generate(2))

	before, err := reg.Key(2)
	require.NoError(t, err)
	fpBefore, err := reg.Fingerprint(2)
	require.NoError(t, err)

	require.NoError(t, reg.Rotate(2))

	after, err := reg.Key(2)
	require.NoError(t, err)
	fpAfter, err := reg.Fingerprint(2)
	require.NoError(t, err)

	require.NotEqual(t, before, after)
	require.NotEqual(t, fpBefore, fpAfter)
}

func TestKeysReturnsAllConfiguredSlots(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Generate(0))
	require.NoError(t, reg.Generate(10))
	require.NoError(t, reg.Generate(31))

	keys, err := reg.Keys()
	require.NoError(t, err)
	require.Len(t, keys, 3)
	for _, idx := range []int{0, 10, 31} {
		require.Contains(t, keys, idx)
		require.Len(t, keys[idx], 32)
	}
}

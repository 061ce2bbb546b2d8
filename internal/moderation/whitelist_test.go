package moderation

import (
	"testing"

	"voart-api/internal/models"
	"voart-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhitelistAddAndContains(t *testing.T) {
	w := NewStorageWhitelist(store.NewMemoryStore(), newTestLogger(t))

	res, err := w.Add(alice, admin)
	require.NoError(t, err)
	assert.True(t, res.Success)

	found, err := w.Contains(alice)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = w.Contains(bob)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWhitelistAddDuplicateRejected(t *testing.T) {
	kv := store.NewMemoryStore()
	w := NewStorageWhitelist(kv, newTestLogger(t))

	_, err := w.Add(alice, admin)
	require.NoError(t, err)

	// Case differences do not create a second member.
	res, err := w.Add(stringsToLower(alice), admin)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, KindAlreadyInState, res.Kind)

	var entries []models.WhitelistEntry
	require.NoError(t, kv.Get(store.KeyStorageWhitelist, &entries))
	assert.Len(t, entries, 1)
}

func TestWhitelistRemove(t *testing.T) {
	w := NewMarketplaceWhitelist(store.NewMemoryStore(), newTestLogger(t))

	_, err := w.Add(alice, admin)
	require.NoError(t, err)

	res, err := w.Remove(alice, admin)
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = w.Remove(alice, admin)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, KindNotFound, res.Kind)
}

func TestWhitelistContainsBumpsUsage(t *testing.T) {
	kv := store.NewMemoryStore()
	w := NewStorageWhitelist(kv, newTestLogger(t))

	_, err := w.Add(alice, admin)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = w.Contains(alice)
		require.NoError(t, err)
	}

	var entries []models.WhitelistEntry
	require.NoError(t, kv.Get(store.KeyStorageWhitelist, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].UsageCount)
}

func TestWhitelistBulkImport(t *testing.T) {
	w := NewStorageWhitelist(store.NewMemoryStore(), newTestLogger(t))

	_, err := w.Add(alice, admin)
	require.NoError(t, err)

	report, err := w.BulkImport([]string{
		"  " + bob + "  ", // trimmed, new
		alice,             // existing
		"",                // blank
		bob,               // duplicate within the batch
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 3, report.Skipped)

	entries, err := w.Export()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWhitelistExportEmpty(t *testing.T) {
	w := NewStorageWhitelist(store.NewMemoryStore(), newTestLogger(t))

	entries, err := w.Export()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStorageAndMarketplaceListsAreIndependent(t *testing.T) {
	kv := store.NewMemoryStore()
	log := newTestLogger(t)
	storageWL := NewStorageWhitelist(kv, log)
	marketWL := NewMarketplaceWhitelist(kv, log)

	_, err := storageWL.Add(alice, admin)
	require.NoError(t, err)

	found, err := marketWL.Contains(alice)
	require.NoError(t, err)
	assert.False(t, found, "storage membership must not leak into the marketplace list")
}

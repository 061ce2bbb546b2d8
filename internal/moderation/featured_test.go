package moderation

import (
	"testing"
	"time"

	"voart-api/internal/models"
	"voart-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureAndList(t *testing.T) {
	f := NewFeaturedCollections(store.NewMemoryStore(), newTestLogger(t))

	_, err := f.Feature("col-low", 1, nil)
	require.NoError(t, err)
	_, err = f.Feature("col-high", 10, nil)
	require.NoError(t, err)

	active, err := f.List(time.Now())
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "col-high", active[0].CollectionID)
	assert.Equal(t, "col-low", active[1].CollectionID)
}

func TestRefeatureUpdatesInPlace(t *testing.T) {
	kv := store.NewMemoryStore()
	f := NewFeaturedCollections(kv, newTestLogger(t))

	_, err := f.Feature("col-1", 1, nil)
	require.NoError(t, err)

	expiry := time.Now().UTC().Add(24 * time.Hour)
	res, err := f.Feature("col-1", 5, &expiry)
	require.NoError(t, err)
	assert.True(t, res.Success)

	var featured []models.FeaturedCollection
	require.NoError(t, kv.Get(store.KeyFeaturedCollections, &featured))
	require.Len(t, featured, 1)
	assert.Equal(t, 5, featured[0].Priority)
	require.NotNil(t, featured[0].ExpiresAt)
}

func TestFeatureRequiresCollectionID(t *testing.T) {
	f := NewFeaturedCollections(store.NewMemoryStore(), newTestLogger(t))

	res, err := f.Feature("", 1, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, KindInvalidInput, res.Kind)
}

func TestUnfeature(t *testing.T) {
	f := NewFeaturedCollections(store.NewMemoryStore(), newTestLogger(t))

	_, err := f.Feature("col-1", 1, nil)
	require.NoError(t, err)

	res, err := f.Unfeature("col-1")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = f.Unfeature("col-1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, KindNotFound, res.Kind)
}

func TestListFiltersExpired(t *testing.T) {
	f := NewFeaturedCollections(store.NewMemoryStore(), newTestLogger(t))

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	_, err := f.Feature("col-expired", 10, &past)
	require.NoError(t, err)
	_, err = f.Feature("col-live", 1, &future)
	require.NoError(t, err)

	active, err := f.List(now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "col-live", active[0].CollectionID)
}

func TestSweepExpiredFeatured(t *testing.T) {
	kv := store.NewMemoryStore()
	f := NewFeaturedCollections(kv, newTestLogger(t))

	now := time.Now().UTC()
	past := now.Add(-time.Minute)

	_, err := f.Feature("col-expired", 1, &past)
	require.NoError(t, err)
	_, err = f.Feature("col-forever", 1, nil)
	require.NoError(t, err)

	removed, err := f.SweepExpired(now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	var featured []models.FeaturedCollection
	require.NoError(t, kv.Get(store.KeyFeaturedCollections, &featured))
	require.Len(t, featured, 1)
	assert.Equal(t, "col-forever", featured[0].CollectionID)
}

package store

import (
	"errors"
	"testing"

	"voart-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var errAlwaysFails = errors.New("mutate failed")

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.StoreEntry{}))
	return db
}

func TestGormStoreGetMissingKey(t *testing.T) {
	s := NewGormStore(setupTestDB(t))

	var out []string
	assert.ErrorIs(t, s.Get("nope", &out), ErrKeyNotFound)
}

func TestGormStorePutUpsertsAndBumpsVersion(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormStore(db)

	require.NoError(t, s.Put("k", []string{"a"}))
	require.NoError(t, s.Put("k", []string{"a", "b"}))

	var out []string
	require.NoError(t, s.Get("k", &out))
	assert.Equal(t, []string{"a", "b"}, out)

	var entry models.StoreEntry
	require.NoError(t, db.First(&entry, "key = ?", "k").Error)
	assert.Equal(t, int64(2), entry.Version)
}

func TestGormStoreDelete(t *testing.T) {
	s := NewGormStore(setupTestDB(t))

	require.NoError(t, s.Put("k", "v"))
	require.NoError(t, s.Delete("k"))

	var out string
	assert.ErrorIs(t, s.Get("k", &out), ErrKeyNotFound)

	// Deleting a missing key is not an error.
	require.NoError(t, s.Delete("k"))
}

func TestGormStoreUpdateCreatesMissingKey(t *testing.T) {
	s := NewGormStore(setupTestDB(t))

	var out []int
	require.NoError(t, s.Update("list", &out, func() error {
		out = append(out, 7)
		return nil
	}))

	var read []int
	require.NoError(t, s.Get("list", &read))
	assert.Equal(t, []int{7}, read)
}

func TestGormStoreUpdateMutateErrorDiscardsWrite(t *testing.T) {
	s := NewGormStore(setupTestDB(t))
	require.NoError(t, s.Put("k", []int{1}))

	var out []int
	err := s.Update("k", &out, func() error {
		out = append(out, 2)
		return errAlwaysFails
	})
	assert.ErrorIs(t, err, errAlwaysFails)

	var read []int
	require.NoError(t, s.Get("k", &read))
	assert.Equal(t, []int{1}, read)
}

func TestGormStoreUpdateBumpsVersionPerWrite(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormStore(db)

	for i := 0; i < 3; i++ {
		var out []int
		require.NoError(t, s.Update("k", &out, func() error {
			out = append(out, i)
			return nil
		}))
	}

	var entry models.StoreEntry
	require.NoError(t, db.First(&entry, "key = ?", "k").Error)
	assert.Equal(t, int64(3), entry.Version)

	var read []int
	require.NoError(t, s.Get("k", &read))
	assert.Equal(t, []int{0, 1, 2}, read)
}

func TestGormStoreUpdateRetriesOnVersionConflict(t *testing.T) {
	db := setupTestDB(t)
	s := NewGormStore(db)
	require.NoError(t, s.Put("k", []int{1}))

	// Simulate a concurrent writer winning the race on the first attempt by
	// bumping the row version from inside mutate.
	interfered := false
	var out []int
	err := s.Update("k", &out, func() error {
		if !interfered {
			interfered = true
			other := NewGormStore(db)
			if err := other.Put("k", []int{1, 99}); err != nil {
				return err
			}
		}
		out = append(out, 2)
		return nil
	})
	require.NoError(t, err)

	// The retry re-read the interfering write before applying ours.
	var read []int
	require.NoError(t, s.Get("k", &read))
	assert.Equal(t, []int{1, 99, 2}, read)
}

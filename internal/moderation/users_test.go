package moderation

import (
	"testing"
	"time"

	"voart-api/internal/models"
	"voart-api/internal/store"
	"voart-api/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.NewLogger(logger.Config{Level: "error"})
	require.NoError(t, err)
	return l
}

const (
	alice = "0xA11CE0000000000000000000000000000000001"
	bob   = "0xB0B00000000000000000000000000000000002"
	admin = "0xAD1400000000000000000000000000000000099"
)

func TestBanUser(t *testing.T) {
	kv := store.NewMemoryStore()
	m := NewUserManagement(kv, newTestLogger(t))

	res, err := m.BanUser(alice, "spam", admin, 0)
	require.NoError(t, err)
	assert.True(t, res.Success)

	banned, err := m.IsUserBanned(alice, time.Now())
	require.NoError(t, err)
	assert.True(t, banned)
}

func TestBanUserIsIdempotentRejected(t *testing.T) {
	kv := store.NewMemoryStore()
	m := NewUserManagement(kv, newTestLogger(t))

	_, err := m.BanUser(alice, "spam", admin, 0)
	require.NoError(t, err)

	res, err := m.BanUser(alice, "spam again", admin, 0)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, KindAlreadyInState, res.Kind)

	// No duplicate BanAction was created.
	var bans []models.BanAction
	require.NoError(t, kv.Get(store.KeyBannedUsers, &bans))
	assert.Len(t, bans, 1)
}

func TestBanIsCaseInsensitiveOnAddress(t *testing.T) {
	m := NewUserManagement(store.NewMemoryStore(), newTestLogger(t))

	_, err := m.BanUser(alice, "spam", admin, 0)
	require.NoError(t, err)

	banned, err := m.IsUserBanned(stringsToLower(alice), time.Now())
	require.NoError(t, err)
	assert.True(t, banned)
}

func stringsToLower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r + 32
		}
	}
	return string(out)
}

func TestUnbanUserNotBannedFailsAndLeavesStorageUnchanged(t *testing.T) {
	kv := store.NewMemoryStore()
	m := NewUserManagement(kv, newTestLogger(t))

	_, err := m.BanUser(bob, "spam", admin, 0)
	require.NoError(t, err)

	res, err := m.UnbanUser(alice, admin)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, KindNotFound, res.Kind)

	var bans []models.BanAction
	require.NoError(t, kv.Get(store.KeyBannedUsers, &bans))
	require.Len(t, bans, 1)
	assert.Equal(t, bob, bans[0].UserAddress)
}

func TestUnbanUser(t *testing.T) {
	m := NewUserManagement(store.NewMemoryStore(), newTestLogger(t))

	_, err := m.BanUser(alice, "spam", admin, 0)
	require.NoError(t, err)

	res, err := m.UnbanUser(alice, admin)
	require.NoError(t, err)
	assert.True(t, res.Success)

	banned, err := m.IsUserBanned(alice, time.Now())
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestTemporaryBanExpiry(t *testing.T) {
	kv := store.NewMemoryStore()
	m := NewUserManagement(kv, newTestLogger(t))

	now := time.Now().UTC()
	// Banned 8 days ago with a 7 day duration: expired.
	require.NoError(t, kv.Put(store.KeyBannedUsers, []models.BanAction{{
		UserAddress:  alice,
		Reason:       "cooling off",
		BannedBy:     admin,
		BannedAt:     now.Add(-8 * 24 * time.Hour),
		DurationDays: 7,
	}}))

	// The predicate reports false without touching storage.
	banned, err := m.IsUserBanned(alice, now)
	require.NoError(t, err)
	assert.False(t, banned)

	var bans []models.BanAction
	require.NoError(t, kv.Get(store.KeyBannedUsers, &bans))
	assert.Len(t, bans, 1, "predicate must not mutate storage")

	// The sweep removes the record and logs the unban.
	lifted, err := m.SweepExpiredBans(now)
	require.NoError(t, err)
	assert.Equal(t, 1, lifted)

	require.NoError(t, kv.Get(store.KeyBannedUsers, &bans))
	assert.Empty(t, bans)

	actions, err := m.RecentActions(10)
	require.NoError(t, err)
	require.NotEmpty(t, actions)
	assert.Equal(t, "unban", actions[0].Type)
	assert.Equal(t, "system", actions[0].AdminAddress)
}

func TestTemporaryBanStillActive(t *testing.T) {
	kv := store.NewMemoryStore()
	m := NewUserManagement(kv, newTestLogger(t))

	now := time.Now().UTC()
	require.NoError(t, kv.Put(store.KeyBannedUsers, []models.BanAction{{
		UserAddress:  alice,
		BannedAt:     now.Add(-2 * 24 * time.Hour),
		DurationDays: 7,
	}}))

	banned, err := m.IsUserBanned(alice, now)
	require.NoError(t, err)
	assert.True(t, banned)

	lifted, err := m.SweepExpiredBans(now)
	require.NoError(t, err)
	assert.Zero(t, lifted)
}

func TestFixUserIssues(t *testing.T) {
	kv := store.NewMemoryStore()
	m := NewUserManagement(kv, newTestLogger(t))

	_, err := m.UpsertUser(alice, "alice")
	require.NoError(t, err)

	t.Run("unknown fix type", func(t *testing.T) {
		res, err := m.FixUserIssues(alice, admin, "defragment")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, KindUnknown, res.Kind)
	})

	t.Run("user not found", func(t *testing.T) {
		res, err := m.FixUserIssues(bob, admin, FixResetStats)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, KindNotFound, res.Kind)
	})

	t.Run("reset profile", func(t *testing.T) {
		res, err := m.FixUserIssues(alice, admin, FixResetProfile)
		require.NoError(t, err)
		assert.True(t, res.Success)

		var users []models.UserRecord
		require.NoError(t, kv.Get(store.KeyUsers, &users))
		assert.Contains(t, users[0].Username, "User_")
	})

	t.Run("restore access lifts a ban", func(t *testing.T) {
		_, err := m.BanUser(alice, "spam", admin, 0)
		require.NoError(t, err)

		res, err := m.FixUserIssues(alice, admin, FixRestoreAccess)
		require.NoError(t, err)
		assert.True(t, res.Success)

		banned, err := m.IsUserBanned(alice, time.Now())
		require.NoError(t, err)
		assert.False(t, banned)
	})
}

func TestGetUserStats(t *testing.T) {
	kv := store.NewMemoryStore()
	m := NewUserManagement(kv, newTestLogger(t))

	now := time.Now().UTC()
	require.NoError(t, kv.Put(store.KeyUsers, []models.UserRecord{
		{Address: alice, IsVerified: true, CreatedAt: now},
		{Address: bob, CreatedAt: now.Add(-48 * time.Hour)},
	}))
	_, err := m.BanUser(bob, "spam", admin, 0)
	require.NoError(t, err)

	stats, err := m.GetUserStats(now)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Verified)
	assert.Equal(t, 1, stats.Banned)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.NewToday)
}

func TestGetUserProfileJoinsBanAndNFTState(t *testing.T) {
	kv := store.NewMemoryStore()
	m := NewUserManagement(kv, newTestLogger(t))

	now := time.Now().UTC()
	require.NoError(t, kv.Put(store.KeyUsers, []models.UserRecord{
		{Address: alice, Username: "alice", CreatedAt: now},
	}))
	require.NoError(t, kv.Put(store.KeyMarketplaceNFTs, []models.NFTRecord{
		{ID: "nft-1", Creator: alice, Price: 100, Status: models.NFTStatusSold},
		{ID: "nft-2", Creator: alice, Price: 50, Status: models.NFTStatusListed},
		{ID: "nft-3", Creator: bob, Price: 10, Status: models.NFTStatusSold},
	}))
	_, err := m.BanUser(alice, "wash trading", admin, 0)
	require.NoError(t, err)

	profile, res, err := m.GetUserProfile(alice, now)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.True(t, profile.IsBanned)
	assert.Equal(t, "wash trading", profile.BanReason)
	assert.Equal(t, 2, profile.NFTsCreated)
	assert.InDelta(t, 100.0, profile.TotalVolume, 1e-12)
}

func TestAuditLogIsCapped(t *testing.T) {
	kv := store.NewMemoryStore()
	m := NewUserManagement(kv, newTestLogger(t))

	for i := 0; i < models.MaxUserActions+25; i++ {
		require.NoError(t, m.appendAction("warning", alice, admin, "x"))
	}

	var actions []models.UserAction
	require.NoError(t, kv.Get(store.KeyUserActions, &actions))
	assert.Len(t, actions, models.MaxUserActions)
}

func TestRecentActionsNewestFirst(t *testing.T) {
	m := NewUserManagement(store.NewMemoryStore(), newTestLogger(t))

	require.NoError(t, m.appendAction("ban", alice, admin, "first"))
	require.NoError(t, m.appendAction("unban", alice, admin, "second"))

	actions, err := m.RecentActions(1)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "unban", actions[0].Type)
}

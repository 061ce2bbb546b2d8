package moderation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"voart-api/internal/models"
	"voart-api/internal/store"
	"voart-api/shared/logger"

	"github.com/google/uuid"
)

// Fix types accepted by FixUserIssues.
const (
	FixResetProfile    = "reset_profile"
	FixRestoreAccess   = "restore_access"
	FixClearViolations = "clear_violations"
	FixResetStats      = "reset_stats"
)

var (
	errAlreadyBanned = errors.New("already banned")
	errNotBanned     = errors.New("not banned")
	errUserNotFound  = errors.New("user not found")
)

// UserManagement owns the user list, ban records and the audit log.
type UserManagement struct {
	store store.Store
	log   *logger.Logger
}

func NewUserManagement(s store.Store, log *logger.Logger) *UserManagement {
	return &UserManagement{store: s, log: log}
}

// UpsertUser creates or refreshes a raw user record.
func (m *UserManagement) UpsertUser(address, username string) (Result, error) {
	if address == "" {
		return fail(KindInvalidInput, "Address is required"), nil
	}
	var users []models.UserRecord
	err := m.store.Update(store.KeyUsers, &users, func() error {
		for i := range users {
			if strings.EqualFold(users[i].Address, address) {
				if username != "" {
					users[i].Username = username
				}
				return nil
			}
		}
		users = append(users, models.UserRecord{
			Address:   address,
			Username:  username,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return ok("User %s saved", address), nil
}

// BanUser bans an address. durationDays of zero means permanent. Banning an
// already banned address fails without touching the records; banning an
// address missing from the user list is allowed, matching the original.
func (m *UserManagement) BanUser(address, reason, admin string, durationDays int) (Result, error) {
	if address == "" || admin == "" {
		return fail(KindInvalidInput, "Address and admin are required"), nil
	}
	var bans []models.BanAction
	err := m.store.Update(store.KeyBannedUsers, &bans, func() error {
		for _, b := range bans {
			if strings.EqualFold(b.UserAddress, address) {
				return errAlreadyBanned
			}
		}
		bans = append(bans, models.BanAction{
			UserAddress:  address,
			Reason:       reason,
			BannedBy:     admin,
			BannedAt:     time.Now().UTC(),
			DurationDays: durationDays,
		})
		return nil
	})
	if errors.Is(err, errAlreadyBanned) {
		return fail(KindAlreadyInState, "User is already banned"), nil
	}
	if err != nil {
		return Result{}, err
	}

	if err := m.appendAction("ban", address, admin, reason); err != nil {
		return Result{}, err
	}
	m.log.LogModeration("user banned", "address", address, "admin", admin, "reason", reason, "durationDays", durationDays)
	return ok("User %s banned", address), nil
}

// UnbanUser lifts a ban. Fails if the address has no active ban record.
func (m *UserManagement) UnbanUser(address, admin string) (Result, error) {
	if address == "" || admin == "" {
		return fail(KindInvalidInput, "Address and admin are required"), nil
	}
	var bans []models.BanAction
	err := m.store.Update(store.KeyBannedUsers, &bans, func() error {
		for i, b := range bans {
			if strings.EqualFold(b.UserAddress, address) {
				bans = append(bans[:i], bans[i+1:]...)
				return nil
			}
		}
		return errNotBanned
	})
	if errors.Is(err, errNotBanned) {
		return fail(KindNotFound, "User is not banned"), nil
	}
	if err != nil {
		return Result{}, err
	}

	if err := m.appendAction("unban", address, admin, ""); err != nil {
		return Result{}, err
	}
	m.log.LogModeration("user unbanned", "address", address, "admin", admin)
	return ok("User %s unbanned", address), nil
}

// IsUserBanned reports whether the address is under an active ban. This is a
// pure predicate: an expired temporary ban reports false but stays on disk
// until SweepExpiredBans removes it. The original mutated storage from this
// read path, which is exactly what we are not doing anymore.
func (m *UserManagement) IsUserBanned(address string, now time.Time) (bool, error) {
	var bans []models.BanAction
	if err := m.store.Get(store.KeyBannedUsers, &bans); err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	for _, b := range bans {
		if !strings.EqualFold(b.UserAddress, address) {
			continue
		}
		if expiry, temporary := b.ExpiresAt(); temporary && !expiry.After(now) {
			return false, nil
		}
		return true, nil
	}
	return false, nil
}

// SweepExpiredBans removes every temporary ban whose expiry has passed and
// writes an unban audit entry for each. Returns the number lifted.
func (m *UserManagement) SweepExpiredBans(now time.Time) (int, error) {
	var expired []models.BanAction
	var bans []models.BanAction
	err := m.store.Update(store.KeyBannedUsers, &bans, func() error {
		expired = expired[:0]
		kept := bans[:0]
		for _, b := range bans {
			if expiry, temporary := b.ExpiresAt(); temporary && !expiry.After(now) {
				expired = append(expired, b)
				continue
			}
			kept = append(kept, b)
		}
		bans = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, b := range expired {
		if err := m.appendAction("unban", b.UserAddress, "system", "temporary ban expired"); err != nil {
			return len(expired), err
		}
		m.log.Info("temporary ban expired", "address", b.UserAddress, "bannedAt", b.BannedAt)
	}
	return len(expired), nil
}

// FixUserIssues applies one of the canned admin repairs to a user record.
func (m *UserManagement) FixUserIssues(address, admin, fixType string) (Result, error) {
	switch fixType {
	case FixResetProfile, FixRestoreAccess, FixClearViolations, FixResetStats:
	default:
		return fail(KindUnknown, "Unknown fix type: %s", fixType), nil
	}

	var users []models.UserRecord
	err := m.store.Update(store.KeyUsers, &users, func() error {
		for i := range users {
			if !strings.EqualFold(users[i].Address, address) {
				continue
			}
			switch fixType {
			case FixResetProfile:
				users[i].Username = defaultUsername(address)
			case FixClearViolations:
				users[i].Violations = 0
			case FixResetStats:
				users[i].NFTsCreated = 0
				users[i].TotalVolume = 0
			}
			return nil
		}
		return errUserNotFound
	})
	if errors.Is(err, errUserNotFound) {
		return fail(KindNotFound, "User not found"), nil
	}
	if err != nil {
		return Result{}, err
	}

	if fixType == FixRestoreAccess {
		// Lifting a ban that may not exist is fine here; restore_access is
		// a repair, not a state transition.
		if res, err := m.UnbanUser(address, admin); err != nil {
			return Result{}, err
		} else if res.Success {
			m.log.Info("restore_access lifted an active ban", "address", address)
		}
	}

	if err := m.appendAction("fix", address, admin, fixType); err != nil {
		return Result{}, err
	}
	m.log.LogModeration("user issues fixed", "address", address, "admin", admin, "fixType", fixType)
	return ok("Applied %s to %s", fixType, address), nil
}

// UserStats are the dashboard aggregate counts, recomputed from scratch on
// every call. O(n) over the local user list, which stays small.
type UserStats struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Banned   int `json:"banned"`
	Active   int `json:"active"`
	NewToday int `json:"newToday"`
}

func (m *UserManagement) GetUserStats(now time.Time) (UserStats, error) {
	var users []models.UserRecord
	if err := m.store.Get(store.KeyUsers, &users); err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		return UserStats{}, err
	}

	stats := UserStats{Total: len(users)}
	dayStart := now.UTC().Truncate(24 * time.Hour)
	for _, u := range users {
		if u.IsVerified {
			stats.Verified++
		}
		banned, err := m.IsUserBanned(u.Address, now)
		if err != nil {
			return UserStats{}, err
		}
		if banned {
			stats.Banned++
		} else {
			stats.Active++
		}
		if !u.CreatedAt.Before(dayStart) {
			stats.NewToday++
		}
	}
	return stats, nil
}

// GetUserProfile joins the raw user record with ban state and NFT aggregates.
// The profile is derived on read and never stored.
func (m *UserManagement) GetUserProfile(address string, now time.Time) (models.UserProfile, Result, error) {
	var users []models.UserRecord
	if err := m.store.Get(store.KeyUsers, &users); err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		return models.UserProfile{}, Result{}, err
	}

	var user *models.UserRecord
	for i := range users {
		if strings.EqualFold(users[i].Address, address) {
			user = &users[i]
			break
		}
	}
	if user == nil {
		return models.UserProfile{}, fail(KindNotFound, "User not found"), nil
	}

	profile := models.UserProfile{
		Address:    user.Address,
		Username:   user.Username,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
	}

	var bans []models.BanAction
	if err := m.store.Get(store.KeyBannedUsers, &bans); err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		return models.UserProfile{}, Result{}, err
	}
	for _, b := range bans {
		if !strings.EqualFold(b.UserAddress, address) {
			continue
		}
		if expiry, temporary := b.ExpiresAt(); temporary && !expiry.After(now) {
			continue
		}
		profile.IsBanned = true
		profile.BanReason = b.Reason
		profile.BannedAt = b.BannedAt
		profile.BannedBy = b.BannedBy
	}

	var nfts []models.NFTRecord
	if err := m.store.Get(store.KeyMarketplaceNFTs, &nfts); err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		return models.UserProfile{}, Result{}, err
	}
	for _, n := range nfts {
		if !strings.EqualFold(n.Creator, address) {
			continue
		}
		profile.NFTsCreated++
		if n.Status == models.NFTStatusSold {
			profile.TotalVolume += n.Price
		}
	}

	return profile, ok("Profile for %s", address), nil
}

// SetVerified toggles the verified flag on the raw user record.
func (m *UserManagement) SetVerified(address string, verified bool, admin string) (Result, error) {
	var users []models.UserRecord
	err := m.store.Update(store.KeyUsers, &users, func() error {
		for i := range users {
			if strings.EqualFold(users[i].Address, address) {
				users[i].IsVerified = verified
				return nil
			}
		}
		return errUserNotFound
	})
	if errors.Is(err, errUserNotFound) {
		return fail(KindNotFound, "User not found"), nil
	}
	if err != nil {
		return Result{}, err
	}
	action := "verify"
	if !verified {
		action = "unverify"
	}
	if err := m.appendAction(action, address, admin, ""); err != nil {
		return Result{}, err
	}
	return ok("User %s verification set to %t", address, verified), nil
}

// RecentActions returns the newest audit entries, newest first.
func (m *UserManagement) RecentActions(limit int) ([]models.UserAction, error) {
	var actions []models.UserAction
	if err := m.store.Get(store.KeyUserActions, &actions); err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if limit <= 0 || limit > len(actions) {
		limit = len(actions)
	}
	out := make([]models.UserAction, 0, limit)
	for i := len(actions) - 1; i >= len(actions)-limit; i-- {
		out = append(out, actions[i])
	}
	return out, nil
}

// appendAction writes one audit entry, truncating the oldest entries past the
// cap.
func (m *UserManagement) appendAction(actionType, address, admin, reason string) error {
	var actions []models.UserAction
	return m.store.Update(store.KeyUserActions, &actions, func() error {
		actions = append(actions, models.UserAction{
			ID:           uuid.NewString(),
			Type:         actionType,
			UserAddress:  address,
			AdminAddress: admin,
			Reason:       reason,
			Timestamp:    time.Now().UTC(),
		})
		if len(actions) > models.MaxUserActions {
			actions = actions[len(actions)-models.MaxUserActions:]
		}
		return nil
	})
}

func defaultUsername(address string) string {
	if len(address) > 8 {
		return fmt.Sprintf("User_%s", address[len(address)-6:])
	}
	return fmt.Sprintf("User_%s", address)
}

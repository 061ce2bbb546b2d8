package moderation

import (
	"errors"
	"strings"
	"time"

	"voart-api/internal/models"
	"voart-api/internal/store"
	"voart-api/shared/logger"
)

var errNotWhitelisted = errors.New("not whitelisted")

// Whitelist is a set-membership manager over one store key. The storage and
// marketplace whitelists are independent systems (no shared identity) built
// from the same implementation.
type Whitelist struct {
	store store.Store
	key   string
	name  string
	log   *logger.Logger
}

func NewStorageWhitelist(s store.Store, log *logger.Logger) *Whitelist {
	return &Whitelist{store: s, key: store.KeyStorageWhitelist, name: "storage", log: log}
}

func NewMarketplaceWhitelist(s store.Store, log *logger.Logger) *Whitelist {
	return &Whitelist{store: s, key: store.KeyMarketplaceWhitelist, name: "marketplace", log: log}
}

// Add whitelists an address. Adding an existing member is rejected as
// AlreadyInState; the original's export path could produce duplicates and
// this closes that hole.
func (w *Whitelist) Add(address, admin string) (Result, error) {
	if address == "" {
		return fail(KindInvalidInput, "Address is required"), nil
	}
	var entries []models.WhitelistEntry
	err := w.store.Update(w.key, &entries, func() error {
		for _, e := range entries {
			if strings.EqualFold(e.Address, address) {
				return errAlreadyInState
			}
		}
		entries = append(entries, models.WhitelistEntry{
			Address: address,
			AddedAt: time.Now().UTC(),
			AddedBy: admin,
		})
		return nil
	})
	if errors.Is(err, errAlreadyInState) {
		return fail(KindAlreadyInState, "Address is already on the %s whitelist", w.name), nil
	}
	if err != nil {
		return Result{}, err
	}
	w.log.LogModeration("whitelist add", "list", w.name, "address", address, "admin", admin)
	return ok("Address added to the %s whitelist", w.name), nil
}

// Remove drops an address from the list.
func (w *Whitelist) Remove(address, admin string) (Result, error) {
	var entries []models.WhitelistEntry
	err := w.store.Update(w.key, &entries, func() error {
		for i, e := range entries {
			if strings.EqualFold(e.Address, address) {
				entries = append(entries[:i], entries[i+1:]...)
				return nil
			}
		}
		return errNotWhitelisted
	})
	if errors.Is(err, errNotWhitelisted) {
		return fail(KindNotFound, "Address is not on the %s whitelist", w.name), nil
	}
	if err != nil {
		return Result{}, err
	}
	w.log.LogModeration("whitelist remove", "list", w.name, "address", address, "admin", admin)
	return ok("Address removed from the %s whitelist", w.name), nil
}

// Contains reports membership and bumps the member's usage counter.
func (w *Whitelist) Contains(address string) (bool, error) {
	found := false
	var entries []models.WhitelistEntry
	err := w.store.Update(w.key, &entries, func() error {
		for i := range entries {
			if strings.EqualFold(entries[i].Address, address) {
				entries[i].UsageCount++
				found = true
				return nil
			}
		}
		found = false
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// BulkImportResult reports what a bulk import did.
type BulkImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// BulkImport adds many addresses at once, skipping existing members and
// blanks.
func (w *Whitelist) BulkImport(addresses []string, admin string) (BulkImportResult, error) {
	var report BulkImportResult
	var entries []models.WhitelistEntry
	err := w.store.Update(w.key, &entries, func() error {
		report = BulkImportResult{}
		existing := make(map[string]bool, len(entries))
		for _, e := range entries {
			existing[strings.ToLower(e.Address)] = true
		}
		now := time.Now().UTC()
		for _, addr := range addresses {
			addr = strings.TrimSpace(addr)
			if addr == "" || existing[strings.ToLower(addr)] {
				report.Skipped++
				continue
			}
			existing[strings.ToLower(addr)] = true
			entries = append(entries, models.WhitelistEntry{
				Address: addr,
				AddedAt: now,
				AddedBy: admin,
			})
			report.Added++
		}
		return nil
	})
	if err != nil {
		return BulkImportResult{}, err
	}
	w.log.LogModeration("whitelist bulk import", "list", w.name, "added", report.Added, "skipped", report.Skipped, "admin", admin)
	return report, nil
}

// Export returns the full member list.
func (w *Whitelist) Export() ([]models.WhitelistEntry, error) {
	var entries []models.WhitelistEntry
	if err := w.store.Get(w.key, &entries); err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

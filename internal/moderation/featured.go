package moderation

import (
	"errors"
	"sort"
	"time"

	"voart-api/internal/models"
	"voart-api/internal/store"
	"voart-api/shared/logger"
)

var errNotFeatured = errors.New("not featured")

// FeaturedCollections curates the landing-page carousel.
type FeaturedCollections struct {
	store store.Store
	log   *logger.Logger
}

func NewFeaturedCollections(s store.Store, log *logger.Logger) *FeaturedCollections {
	return &FeaturedCollections{store: s, log: log}
}

// Feature adds a collection with a priority and an optional expiry.
// Re-featuring an already featured collection updates priority and expiry in
// place rather than duplicating the entry.
func (f *FeaturedCollections) Feature(collectionID string, priority int, expiresAt *time.Time) (Result, error) {
	if collectionID == "" {
		return fail(KindInvalidInput, "Collection id is required"), nil
	}
	updated := false
	var featured []models.FeaturedCollection
	err := f.store.Update(store.KeyFeaturedCollections, &featured, func() error {
		updated = false
		for i := range featured {
			if featured[i].CollectionID == collectionID {
				featured[i].Priority = priority
				featured[i].ExpiresAt = expiresAt
				updated = true
				return nil
			}
		}
		featured = append(featured, models.FeaturedCollection{
			CollectionID: collectionID,
			Priority:     priority,
			FeaturedAt:   time.Now().UTC(),
			ExpiresAt:    expiresAt,
		})
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	verb := "featured"
	if updated {
		verb = "refeatured"
	}
	f.log.LogModeration("collection "+verb, "collection", collectionID, "priority", priority)
	return ok("Collection %s %s", collectionID, verb), nil
}

// Unfeature removes a collection from the carousel.
func (f *FeaturedCollections) Unfeature(collectionID string) (Result, error) {
	var featured []models.FeaturedCollection
	err := f.store.Update(store.KeyFeaturedCollections, &featured, func() error {
		for i, c := range featured {
			if c.CollectionID == collectionID {
				featured = append(featured[:i], featured[i+1:]...)
				return nil
			}
		}
		return errNotFeatured
	})
	if errors.Is(err, errNotFeatured) {
		return fail(KindNotFound, "Collection %s is not featured", collectionID), nil
	}
	if err != nil {
		return Result{}, err
	}
	f.log.LogModeration("collection unfeatured", "collection", collectionID)
	return ok("Collection %s unfeatured", collectionID), nil
}

// List returns unexpired featured collections sorted by priority, highest
// first.
func (f *FeaturedCollections) List(now time.Time) ([]models.FeaturedCollection, error) {
	var featured []models.FeaturedCollection
	if err := f.store.Get(store.KeyFeaturedCollections, &featured); err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	active := make([]models.FeaturedCollection, 0, len(featured))
	for _, c := range featured {
		if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
			continue
		}
		active = append(active, c)
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority > active[j].Priority
	})
	return active, nil
}

// SweepExpired removes entries past their expiry. The original implied this
// sweep but never implemented it; the carousel just filtered on render.
func (f *FeaturedCollections) SweepExpired(now time.Time) (int, error) {
	removed := 0
	var featured []models.FeaturedCollection
	err := f.store.Update(store.KeyFeaturedCollections, &featured, func() error {
		removed = 0
		kept := featured[:0]
		for _, c := range featured {
			if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
				removed++
				continue
			}
			kept = append(kept, c)
		}
		featured = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		f.log.Info("expired featured collections removed", "count", removed)
	}
	return removed, nil
}

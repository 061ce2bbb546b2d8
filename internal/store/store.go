package store

import "errors"

// Keys preserve the layout names of the original client-side store so exported
// state remains portable between the two.
const (
	KeyMarketplaceNFTs       = "marketplace-nfts"
	KeyUsers                 = "voart_users"
	KeyBannedUsers           = "voart_banned_users"
	KeyUserActions           = "voart_user_actions"
	KeyVerificationRequests  = "voart_verification_requests"
	KeyStorageWhitelist      = "voart_storage_whitelist"
	KeyMarketplaceWhitelist  = "voart_marketplace_whitelist"
	KeyFeaturedCollections   = "voart_featured_collections"
	KeyQOMUSDRate            = "qom_usd_rate"
	KeyQOMPriceSource        = "qom_price_source"
	KeyQOMPriceUpdated       = "qom_price_updated"
	KeyCachedPrice           = "qomswap_cached_price"
	KeyLastPrice             = "qomswap_last_price"
	KeyLazyMintFee           = "admin_lazy_mint_fee"
	KeyCollectionCreationFee = "admin_collection_creation_fee"
)

// LikesKey returns the per-wallet likes key.
func LikesKey(address string) string { return "user-likes-" + address }

// ProfileKey returns the per-wallet ownership key.
func ProfileKey(address string) string { return "profile_" + address }

var (
	// ErrKeyNotFound is returned by Get when the key has never been written.
	ErrKeyNotFound = errors.New("store: key not found")
	// ErrConflict is returned by Update when the optimistic version check
	// keeps failing after retries.
	ErrConflict = errors.New("store: version conflict")
)

// Store is a namespaced JSON key-value store. Every manager takes one of
// these instead of touching a backend directly, so tests run against the
// in-memory implementation and production runs against Postgres.
//
// Update is the only safe way to do a read-modify-write: it loads the current
// value into out (leaving out at its zero value when the key is missing),
// runs mutate, and writes out back under an optimistic version check.
type Store interface {
	Get(key string, out interface{}) error
	Put(key string, value interface{}) error
	Delete(key string) error
	Update(key string, out interface{}, mutate func() error) error
}

package models

import (
	"encoding/json"
	"time"
)

// StoreEntry is the persisted form of one key-value record. Version backs the
// optimistic-concurrency check on every read-modify-write.
type StoreEntry struct {
	Key       string    `gorm:"primaryKey"`         // Namespaced store key
	Value     string    `gorm:"type:text;not null"` // JSON-serialized payload
	Version   int64     `gorm:"not null;default:1"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// UserRecord is the raw stored user entry (voart_users).
type UserRecord struct {
	Address     string    `json:"address"`
	Username    string    `json:"username"`
	IsVerified  bool      `json:"isVerified"`
	CreatedAt   time.Time `json:"createdAt"`
	Violations  int       `json:"violations"`
	NFTsCreated int       `json:"nftsCreated"`
	TotalVolume float64   `json:"totalVolume"`
}

// UserProfile is the derived view returned to callers: the raw record joined
// with ban state and NFT aggregates. It is computed on read, never stored.
type UserProfile struct {
	Address     string    `json:"address"`
	Username    string    `json:"username"`
	IsVerified  bool      `json:"isVerified"`
	IsBanned    bool      `json:"isBanned"`
	BanReason   string    `json:"banReason,omitempty"`
	BannedAt    time.Time `json:"bannedAt,omitempty"`
	BannedBy    string    `json:"bannedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	NFTsCreated int       `json:"nftsCreated"`
	TotalVolume float64   `json:"totalVolume"`
}

// BanAction is one active ban (voart_banned_users). DurationDays of zero means
// a permanent ban; otherwise the ban expires DurationDays after BannedAt.
type BanAction struct {
	UserAddress  string    `json:"userAddress"`
	Reason       string    `json:"reason"`
	BannedBy     string    `json:"bannedBy"`
	BannedAt     time.Time `json:"bannedAt"`
	DurationDays int       `json:"duration,omitempty"`
}

// ExpiresAt returns the ban expiry and whether the ban is temporary.
func (b BanAction) ExpiresAt() (time.Time, bool) {
	if b.DurationDays <= 0 {
		return time.Time{}, false
	}
	return b.BannedAt.Add(time.Duration(b.DurationDays) * 24 * time.Hour), true
}

// UserAction is an audit log entry (voart_user_actions). The log is
// append-only and capped at the newest MaxUserActions entries.
type UserAction struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"` // ban/unban/verify/unverify/warning/fix
	UserAddress  string    `json:"userAddress"`
	AdminAddress string    `json:"adminAddress"`
	Reason       string    `json:"reason"`
	Timestamp    time.Time `json:"timestamp"`
}

// MaxUserActions caps the audit log; oldest entries are truncated first.
const MaxUserActions = 1000

// NFTStatus is the listing state of a marketplace NFT. The original client
// stored it as either a bare string or a nested {"value": ...} object
// depending on call site; UnmarshalJSON normalizes both to the string form.
type NFTStatus string

const (
	NFTStatusListed   NFTStatus = "listed"
	NFTStatusSold     NFTStatus = "sold"
	NFTStatusDelisted NFTStatus = "delisted"
	NFTStatusHidden   NFTStatus = "hidden"
	NFTStatusBurned   NFTStatus = "burned"
)

func (s *NFTStatus) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*s = NFTStatus(plain)
		return nil
	}
	var nested struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}
	*s = NFTStatus(nested.Value)
	return nil
}

// NFTRecord is one marketplace NFT (marketplace-nfts).
type NFTRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Creator    string    `json:"creator"`
	Status     NFTStatus `json:"status"`
	Flagged    bool      `json:"flagged"`
	FlagReason string    `json:"flagReason,omitempty"`
	Featured   bool      `json:"featured"`
	Likes      int       `json:"likes"`
	Views      int       `json:"views"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OwnedNFT is one entry in a wallet's ownership array (profile_<address>).
// There is no transfer ledger; purchases append here.
type OwnedNFT struct {
	NFTID      string    `json:"nftId"`
	PricePaid  float64   `json:"pricePaid"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

// WhitelistEntry is one member of a whitelist. The storage and marketplace
// whitelists are independent systems sharing this shape.
type WhitelistEntry struct {
	Address    string    `json:"address"`
	AddedAt    time.Time `json:"addedAt"`
	AddedBy    string    `json:"addedBy"`
	UsageCount int       `json:"usageCount"`
}

// Verification request status values.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// VerificationRequest tracks a pending user or collection verification.
type VerificationRequest struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // user | collection
	TargetID  string    `json:"targetId"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FeaturedCollection is one curated entry on the featured carousel.
type FeaturedCollection struct {
	CollectionID string     `json:"collectionId"`
	Priority     int        `json:"priority"`
	FeaturedAt   time.Time  `json:"featuredAt"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

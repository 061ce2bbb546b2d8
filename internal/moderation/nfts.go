package moderation

import (
	"errors"
	"time"

	"voart-api/internal/models"
	"voart-api/internal/store"
	"voart-api/shared/logger"
)

var (
	errNFTNotFound    = errors.New("nft not found")
	errAlreadyInState = errors.New("already in state")
)

// NFTAdmin owns the marketplace NFT list and per-wallet ownership arrays.
type NFTAdmin struct {
	store store.Store
	log   *logger.Logger
}

func NewNFTAdmin(s store.Store, log *logger.Logger) *NFTAdmin {
	return &NFTAdmin{store: s, log: log}
}

// ListNFT adds a new listing.
func (a *NFTAdmin) ListNFT(nft models.NFTRecord) (Result, error) {
	if nft.ID == "" || nft.Creator == "" {
		return fail(KindInvalidInput, "NFT id and creator are required"), nil
	}
	var nfts []models.NFTRecord
	err := a.store.Update(store.KeyMarketplaceNFTs, &nfts, func() error {
		for _, n := range nfts {
			if n.ID == nft.ID {
				return errAlreadyInState
			}
		}
		if nft.Status == "" {
			nft.Status = models.NFTStatusListed
		}
		if nft.CreatedAt.IsZero() {
			nft.CreatedAt = time.Now().UTC()
		}
		nfts = append(nfts, nft)
		return nil
	})
	if errors.Is(err, errAlreadyInState) {
		return fail(KindAlreadyInState, "NFT %s is already listed", nft.ID), nil
	}
	if err != nil {
		return Result{}, err
	}
	return ok("NFT %s listed", nft.ID), nil
}

// mutateNFT applies fn to the NFT with the given id. fn returns
// errAlreadyInState for idempotent no-ops.
func (a *NFTAdmin) mutateNFT(id string, fn func(n *models.NFTRecord) error) error {
	var nfts []models.NFTRecord
	return a.store.Update(store.KeyMarketplaceNFTs, &nfts, func() error {
		for i := range nfts {
			if nfts[i].ID == id {
				return fn(&nfts[i])
			}
		}
		return errNFTNotFound
	})
}

func (a *NFTAdmin) transition(id, action string, err error) (Result, error) {
	if errors.Is(err, errNFTNotFound) {
		return fail(KindNotFound, "NFT %s not found", id), nil
	}
	if errors.Is(err, errAlreadyInState) {
		return fail(KindAlreadyInState, "NFT %s is already %s", id, action), nil
	}
	if err != nil {
		return Result{}, err
	}
	a.log.LogModeration("nft "+action, "id", id)
	return ok("NFT %s %s", id, action), nil
}

// HideNFT removes a listing from public view without deleting it.
func (a *NFTAdmin) HideNFT(id string) (Result, error) {
	err := a.mutateNFT(id, func(n *models.NFTRecord) error {
		if n.Status == models.NFTStatusHidden {
			return errAlreadyInState
		}
		n.Status = models.NFTStatusHidden
		return nil
	})
	return a.transition(id, "hidden", err)
}

// UnhideNFT restores a hidden listing.
func (a *NFTAdmin) UnhideNFT(id string) (Result, error) {
	err := a.mutateNFT(id, func(n *models.NFTRecord) error {
		if n.Status != models.NFTStatusHidden {
			return errAlreadyInState
		}
		n.Status = models.NFTStatusListed
		return nil
	})
	return a.transition(id, "restored", err)
}

// FlagNFT marks a listing for review.
func (a *NFTAdmin) FlagNFT(id, reason string) (Result, error) {
	err := a.mutateNFT(id, func(n *models.NFTRecord) error {
		if n.Flagged {
			return errAlreadyInState
		}
		n.Flagged = true
		n.FlagReason = reason
		return nil
	})
	return a.transition(id, "flagged", err)
}

// UnflagNFT clears a review flag.
func (a *NFTAdmin) UnflagNFT(id string) (Result, error) {
	err := a.mutateNFT(id, func(n *models.NFTRecord) error {
		if !n.Flagged {
			return errAlreadyInState
		}
		n.Flagged = false
		n.FlagReason = ""
		return nil
	})
	return a.transition(id, "unflagged", err)
}

// FeatureNFT pins a listing on the landing page.
func (a *NFTAdmin) FeatureNFT(id string) (Result, error) {
	err := a.mutateNFT(id, func(n *models.NFTRecord) error {
		if n.Featured {
			return errAlreadyInState
		}
		n.Featured = true
		return nil
	})
	return a.transition(id, "featured", err)
}

// UnfeatureNFT unpins a listing.
func (a *NFTAdmin) UnfeatureNFT(id string) (Result, error) {
	err := a.mutateNFT(id, func(n *models.NFTRecord) error {
		if !n.Featured {
			return errAlreadyInState
		}
		n.Featured = false
		return nil
	})
	return a.transition(id, "unfeatured", err)
}

// DeleteNFT burns a listing. Burned NFTs stay in the list for audit purposes
// but are terminal: no transition out of burned is allowed.
func (a *NFTAdmin) DeleteNFT(id string) (Result, error) {
	err := a.mutateNFT(id, func(n *models.NFTRecord) error {
		if n.Status == models.NFTStatusBurned {
			return errAlreadyInState
		}
		n.Status = models.NFTStatusBurned
		return nil
	})
	return a.transition(id, "burned", err)
}

// RecordPurchase marks the NFT sold and appends it to the buyer's ownership
// array. There is no transfer ledger; ownership is per-wallet, as in the
// original.
func (a *NFTAdmin) RecordPurchase(id, buyer string) (Result, error) {
	if buyer == "" {
		return fail(KindInvalidInput, "Buyer address is required"), nil
	}
	var price float64
	err := a.mutateNFT(id, func(n *models.NFTRecord) error {
		if n.Status != models.NFTStatusListed {
			return errAlreadyInState
		}
		n.Status = models.NFTStatusSold
		price = n.Price
		return nil
	})
	if errors.Is(err, errNFTNotFound) {
		return fail(KindNotFound, "NFT %s not found", id), nil
	}
	if errors.Is(err, errAlreadyInState) {
		return fail(KindAlreadyInState, "NFT %s is not listed for sale", id), nil
	}
	if err != nil {
		return Result{}, err
	}

	var owned []models.OwnedNFT
	err = a.store.Update(store.ProfileKey(buyer), &owned, func() error {
		owned = append(owned, models.OwnedNFT{
			NFTID:      id,
			PricePaid:  price,
			AcquiredAt: time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return ok("NFT %s sold to %s", id, buyer), nil
}

// ToggleLike flips a wallet's like on an NFT and keeps the listing's counter
// in sync with the per-wallet like set.
func (a *NFTAdmin) ToggleLike(id, address string) (bool, Result, error) {
	if address == "" {
		return false, fail(KindInvalidInput, "Address is required"), nil
	}
	if _, res, err := a.GetNFT(id); err != nil || !res.Success {
		return false, res, err
	}

	liked := false
	var likes []string
	err := a.store.Update(store.LikesKey(address), &likes, func() error {
		for i, nftID := range likes {
			if nftID == id {
				likes = append(likes[:i], likes[i+1:]...)
				liked = false
				return nil
			}
		}
		likes = append(likes, id)
		liked = true
		return nil
	})
	if err != nil {
		return false, Result{}, err
	}

	delta := 1
	if !liked {
		delta = -1
	}
	err = a.mutateNFT(id, func(n *models.NFTRecord) error {
		n.Likes += delta
		if n.Likes < 0 {
			n.Likes = 0
		}
		return nil
	})
	if err != nil {
		return liked, Result{}, err
	}
	if liked {
		return true, ok("NFT %s liked", id), nil
	}
	return false, ok("NFT %s unliked", id), nil
}

// GetNFT returns a single record.
func (a *NFTAdmin) GetNFT(id string) (models.NFTRecord, Result, error) {
	var nfts []models.NFTRecord
	if err := a.store.Get(store.KeyMarketplaceNFTs, &nfts); err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		return models.NFTRecord{}, Result{}, err
	}
	for _, n := range nfts {
		if n.ID == id {
			return n, ok("NFT %s", id), nil
		}
	}
	return models.NFTRecord{}, fail(KindNotFound, "NFT %s not found", id), nil
}

// VisibleNFTs returns the public listings: not hidden, not burned.
func (a *NFTAdmin) VisibleNFTs() ([]models.NFTRecord, error) {
	var nfts []models.NFTRecord
	if err := a.store.Get(store.KeyMarketplaceNFTs, &nfts); err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	visible := make([]models.NFTRecord, 0, len(nfts))
	for _, n := range nfts {
		if n.Status == models.NFTStatusHidden || n.Status == models.NFTStatusBurned {
			continue
		}
		visible = append(visible, n)
	}
	return visible, nil
}

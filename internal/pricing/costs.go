package pricing

import (
	"voart-api/internal/store"
	"voart-api/shared/config"
)

// Calculator composes the rate service, the congestion oracle and the fee
// configuration into the cost breakdowns the mint/list/deploy flows show.
type Calculator struct {
	store  store.Store
	oracle CongestionOracle
	fees   config.FeesConfig
}

func NewCalculator(s store.Store, oracle CongestionOracle, fees config.FeesConfig) *Calculator {
	return &Calculator{store: s, oracle: oracle, fees: fees}
}

// MintingCost is the lazy-mint breakdown for a batch of NFTs.
type MintingCost struct {
	Quantity    int         `json:"quantity"`
	PerNFTFee   float64     `json:"perNftFee"`
	PlatformFee float64     `json:"platformFee"`
	Gas         GasEstimate `json:"gas"`
	Total       float64     `json:"total"`
}

// MarketplaceCosts is the legacy listing estimator: 2.5% marketplace fee plus
// a 10% creator royalty. It deliberately disagrees with the commission split
// model; both are kept because the product never reconciled them.
type MarketplaceCosts struct {
	SalePrice      float64     `json:"salePrice"`
	MarketplaceFee float64     `json:"marketplaceFee"`
	RoyaltyFee     float64     `json:"royaltyFee"`
	NetEarnings    float64     `json:"netEarnings"`
	Gas            GasEstimate `json:"gas"`
}

// DeploymentCost is the collection deployment estimate.
type DeploymentCost struct {
	BaseCost  float64         `json:"baseCost"`
	SetupCost float64         `json:"setupCost"`
	Min       float64         `json:"min"`
	Max       float64         `json:"max"`
	Current   float64         `json:"current"`
	Level     CongestionLevel `json:"level"`
}

// lazyMintFee prefers the admin override persisted in the store.
func (c *Calculator) lazyMintFee() float64 {
	var fee float64
	if err := c.store.Get(store.KeyLazyMintFee, &fee); err == nil && fee > 0 {
		return fee
	}
	return c.fees.LazyMintFee
}

// deploymentBaseCost prefers the admin override persisted in the store.
func (c *Calculator) deploymentBaseCost() float64 {
	var fee float64
	if err := c.store.Get(store.KeyCollectionCreationFee, &fee); err == nil && fee > 0 {
		return fee
	}
	return c.fees.DeploymentBaseCost
}

// SetLazyMintFee persists an admin override for the per-NFT mint fee.
func (c *Calculator) SetLazyMintFee(fee float64) error {
	return c.store.Put(store.KeyLazyMintFee, fee)
}

// SetCollectionCreationFee persists an admin override for the deployment base
// cost.
func (c *Calculator) SetCollectionCreationFee(fee float64) error {
	return c.store.Put(store.KeyCollectionCreationFee, fee)
}

// CalculateMintingCost prices a lazy-mint of quantity NFTs.
func (c *Calculator) CalculateMintingCost(quantity int) MintingCost {
	perNFT := c.lazyMintFee()
	base := perNFT * float64(quantity)
	gas := EstimateGas(base, c.oracle.Level())
	return MintingCost{
		Quantity:    quantity,
		PerNFTFee:   perNFT,
		PlatformFee: base,
		Gas:         gas,
		Total:       base + gas.Current,
	}
}

// CalculateMarketplaceCosts prices a sale under the legacy listing model.
func (c *Calculator) CalculateMarketplaceCosts(salePrice float64) MarketplaceCosts {
	marketplaceFee := salePrice * c.fees.MarketplaceFeeRate
	royaltyFee := salePrice * c.fees.RoyaltyRate
	gas := EstimateGas(c.fees.ListingFee, c.oracle.Level())
	return MarketplaceCosts{
		SalePrice:      salePrice,
		MarketplaceFee: marketplaceFee,
		RoyaltyFee:     royaltyFee,
		NetEarnings:    salePrice - marketplaceFee - royaltyFee,
		Gas:            gas,
	}
}

// CalculateCollectionDeploymentCost prices a collection contract deployment.
// Min assumes low congestion, Max extreme, Current whatever the oracle says.
func (c *Calculator) CalculateCollectionDeploymentCost() DeploymentCost {
	base := c.deploymentBaseCost()
	setup := c.fees.DeploymentSetupCost
	total := base + setup
	level := c.oracle.Level()
	return DeploymentCost{
		BaseCost:  base,
		SetupCost: setup,
		Min:       total * Multiplier(CongestionLow),
		Max:       total * Multiplier(CongestionExtreme),
		Current:   total * Multiplier(level),
		Level:     level,
	}
}

package pricing

import (
	"github.com/shopspring/decimal"
)

// CommissionRates are the canonical settlement percentages: 3% buyer premium,
// 3% seller commission, 1% platform donation. Total platform take is 7%.
type CommissionRates struct {
	Buyer    decimal.Decimal
	Seller   decimal.Decimal
	Donation decimal.Decimal
}

// DefaultCommissionRates returns the documented 3/3/1 split.
func DefaultCommissionRates() CommissionRates {
	return CommissionRates{
		Buyer:    decimal.NewFromFloat(0.03),
		Seller:   decimal.NewFromFloat(0.03),
		Donation: decimal.NewFromFloat(0.01),
	}
}

// ParseCommissionRates builds rates from the configured decimal strings.
func ParseCommissionRates(buyer, seller, donation string) (CommissionRates, error) {
	b, err := decimal.NewFromString(buyer)
	if err != nil {
		return CommissionRates{}, err
	}
	s, err := decimal.NewFromString(seller)
	if err != nil {
		return CommissionRates{}, err
	}
	d, err := decimal.NewFromString(donation)
	if err != nil {
		return CommissionRates{}, err
	}
	return CommissionRates{Buyer: b, Seller: s, Donation: d}, nil
}

// CommissionBreakdown splits a sale price for settlement display.
//
//	BuyerPays    = price + price*buyerRate
//	SellerNet    = price - price*sellerRate - price*donationRate - gasFee
//	PlatformTake = price*(buyerRate+sellerRate+donationRate)
type CommissionBreakdown struct {
	SalePrice        decimal.Decimal `json:"salePrice"`
	BuyerCommission  decimal.Decimal `json:"buyerCommission"`
	BuyerPays        decimal.Decimal `json:"buyerPays"`
	SellerCommission decimal.Decimal `json:"sellerCommission"`
	Donation         decimal.Decimal `json:"donation"`
	GasFee           decimal.Decimal `json:"gasFee"`
	SellerNet        decimal.Decimal `json:"sellerNet"`
	PlatformTake     decimal.Decimal `json:"platformTake"`
}

// BreakdownCommission computes the 3/3/1 split over a sale price with a flat
// gas fee deducted from seller proceeds. Amounts round half-up to 8 decimal
// places, the QOM display precision.
func BreakdownCommission(salePrice, gasFee decimal.Decimal, rates CommissionRates) CommissionBreakdown {
	const places = 8

	buyerCommission := salePrice.Mul(rates.Buyer).Round(places)
	sellerCommission := salePrice.Mul(rates.Seller).Round(places)
	donation := salePrice.Mul(rates.Donation).Round(places)

	return CommissionBreakdown{
		SalePrice:        salePrice,
		BuyerCommission:  buyerCommission,
		BuyerPays:        salePrice.Add(buyerCommission),
		SellerCommission: sellerCommission,
		Donation:         donation,
		GasFee:           gasFee,
		SellerNet:        salePrice.Sub(sellerCommission).Sub(donation).Sub(gasFee),
		PlatformTake:     buyerCommission.Add(sellerCommission).Add(donation),
	}
}

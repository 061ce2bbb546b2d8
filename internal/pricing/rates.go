package pricing

import (
	"fmt"
	"time"

	"voart-api/internal/store"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RateService owns the QOM/USD exchange rate. Reads fall back silently to the
// configured default when nothing has been persisted yet; callers never see
// an error from a missing rate.
type RateService struct {
	store       store.Store
	defaultRate float64
}

func NewRateService(s store.Store, defaultRate float64) *RateService {
	return &RateService{store: s, defaultRate: defaultRate}
}

// CurrentRate returns the persisted QOM/USD rate, or the default if unset.
func (r *RateService) CurrentRate() float64 {
	var rate float64
	if err := r.store.Get(store.KeyQOMUSDRate, &rate); err != nil || rate <= 0 {
		return r.defaultRate
	}
	return rate
}

// SetRate persists a new rate along with its source and update timestamp.
func (r *RateService) SetRate(rate float64, source string) error {
	if err := r.store.Put(store.KeyQOMUSDRate, rate); err != nil {
		return err
	}
	if err := r.store.Put(store.KeyQOMPriceSource, source); err != nil {
		return err
	}
	return r.store.Put(store.KeyQOMPriceUpdated, time.Now().UTC())
}

// QOMToUSD converts a QOM amount to USD at the current rate.
// Negative and NaN inputs are not validated; callers guard.
func (r *RateService) QOMToUSD(amount float64) float64 {
	return amount * r.CurrentRate()
}

// USDToQOM converts a USD amount to QOM at the current rate.
func (r *RateService) USDToQOM(amount float64) float64 {
	return amount / r.CurrentRate()
}

var usdPrinter = message.NewPrinter(language.English)

// FormatQOM renders a QOM amount with magnitude suffixing (K/M/B).
func FormatQOM(amount float64) string {
	switch {
	case amount >= 1e9:
		return fmt.Sprintf("%.2fB", amount/1e9)
	case amount >= 1e6:
		return fmt.Sprintf("%.2fM", amount/1e6)
	case amount >= 1e3:
		return fmt.Sprintf("%.2fK", amount/1e3)
	default:
		return fmt.Sprintf("%.2f", amount)
	}
}

// FormatUSD renders a USD amount with thousands separators. Sub-cent values
// keep extra precision so tiny QOM conversions don't collapse to $0.00.
func FormatUSD(amount float64) string {
	if amount > 0 && amount < 0.01 {
		return fmt.Sprintf("$%.8f", amount)
	}
	return usdPrinter.Sprintf("$%.2f", amount)
}

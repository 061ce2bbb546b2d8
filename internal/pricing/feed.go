package pricing

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"voart-api/internal/store"
)

const (
	defaultPriceAPIURL      = "https://api.coingecko.com/api/v3/simple/price?ids=shiba-predator&vs_currencies=usd"
	defaultPriceFallbackURL = "https://api.qomswap.com/api/v1/ticker/price?symbol=QOMUSDT"
)

// PriceFeed fetches the QOM/USD rate from a market API with a fallback
// source, and persists successful fetches through the RateService. Total
// failure is not an error for callers: they keep reading the cached rate.
type PriceFeed struct {
	rates       *RateService
	store       store.Store
	primaryURL  string
	fallbackURL string
	maxRetries  int
}

func NewPriceFeed(rates *RateService, s store.Store, primaryURL, fallbackURL string, maxRetries int) *PriceFeed {
	if primaryURL == "" {
		primaryURL = defaultPriceAPIURL
	}
	if fallbackURL == "" {
		fallbackURL = defaultPriceFallbackURL
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &PriceFeed{
		rates:       rates,
		store:       s,
		primaryURL:  primaryURL,
		fallbackURL: fallbackURL,
		maxRetries:  maxRetries,
	}
}

// FetchQOMPrice tries the primary source first, then the fallback.
func (f *PriceFeed) FetchQOMPrice() (float64, error) {
	price, err := f.fetchWithRetries(f.primaryURL, "shiba-predator", "usd")
	if err == nil {
		log.Printf("✅ Fetched QOM Price from CoinGecko: $%.12f", price)
		return price, nil
	}

	log.Println("⚠️ CoinGecko API failed. Switching to fallback ticker API...")
	price, err = f.fetchFromTicker()
	if err == nil {
		log.Printf("✅ Fetched QOM Price from fallback ticker: $%.12f", price)
	}
	return price, err
}

// Refresh fetches and persists the rate. On failure the previously cached
// rate stays in place and Refresh reports what callers will keep seeing.
func (f *PriceFeed) Refresh() float64 {
	price, err := f.FetchQOMPrice()
	if err != nil {
		log.Printf("⚠️ QOM price refresh failed, keeping cached rate: %v", err)
		return f.rates.CurrentRate()
	}
	source := "coingecko"
	if err := f.rates.SetRate(price, source); err != nil {
		log.Printf("⚠️ Failed to persist refreshed QOM rate: %v", err)
		return f.rates.CurrentRate()
	}
	var last float64
	if err := f.store.Get(store.KeyCachedPrice, &last); err == nil {
		_ = f.store.Put(store.KeyLastPrice, last)
	}
	_ = f.store.Put(store.KeyCachedPrice, price)
	return price
}

// Source reads the persisted rate source name into out.
func (f *PriceFeed) Source(out *string) error {
	return f.store.Get(store.KeyQOMPriceSource, out)
}

func (f *PriceFeed) fetchFromTicker() (float64, error) {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(f.fallbackURL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch from fallback ticker: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]string
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read ticker response: %v", err)
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("failed to parse ticker JSON: %v", err)
	}

	priceStr, exists := result["price"]
	if !exists {
		return 0, fmt.Errorf("QOM price not found in ticker response")
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to convert ticker price: %v", err)
	}

	return price, nil
}

func (f *PriceFeed) fetchWithRetries(url, mainKey, subKey string) (float64, error) {
	client := &http.Client{Timeout: 5 * time.Second}

	var data map[string]map[string]float64
	var err error

	for i := 0; i < f.maxRetries; i++ {
		resp, err := client.Get(url)
		if err != nil {
			log.Printf("⚠️ Attempt %d: price API call failed: %v", i+1, err)
			time.Sleep(time.Duration(math.Pow(2, float64(i))) * time.Second)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			log.Printf("⏳ Price API rate limit reached. Retrying after 10 seconds...")
			time.Sleep(10 * time.Second)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Printf("⚠️ Attempt %d: failed to read response: %v", i+1, err)
			time.Sleep(time.Duration(math.Pow(2, float64(i))) * time.Second)
			continue
		}

		if err := json.Unmarshal(body, &data); err != nil {
			log.Printf("⚠️ Attempt %d: failed to parse JSON: %v", i+1, err)
			time.Sleep(time.Duration(math.Pow(2, float64(i))) * time.Second)
			continue
		}

		if price, exists := data[mainKey][subKey]; exists {
			return price, nil
		}

		log.Printf("⚠️ Attempt %d: price not found in response", i+1)
		time.Sleep(time.Duration(math.Pow(2, float64(i))) * time.Second)
	}

	return 0, fmt.Errorf("price API call failed after %d retries: %v", f.maxRetries, err)
}

package pricing

import (
	"math/rand"
	"sync"
	"time"
)

// CongestionLevel buckets the simulated network load.
type CongestionLevel string

const (
	CongestionLow      CongestionLevel = "low"
	CongestionStandard CongestionLevel = "standard"
	CongestionHigh     CongestionLevel = "high"
	CongestionExtreme  CongestionLevel = "extreme"
)

// CongestionOracle reports the current congestion level. The production
// implementation is a random draw standing in for real telemetry; tests
// inject a StaticOracle for deterministic output.
type CongestionOracle interface {
	Level() CongestionLevel
}

// RandomOracle draws a uniform sample against fixed thresholds (0.3/0.7/0.9).
type RandomOracle struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomOracle() *RandomOracle {
	return &RandomOracle{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (o *RandomOracle) Level() CongestionLevel {
	o.mu.Lock()
	sample := o.rnd.Float64()
	o.mu.Unlock()
	switch {
	case sample < 0.3:
		return CongestionLow
	case sample < 0.7:
		return CongestionStandard
	case sample < 0.9:
		return CongestionHigh
	default:
		return CongestionExtreme
	}
}

// StaticOracle always reports the same level.
type StaticOracle struct {
	Fixed CongestionLevel
}

func (o StaticOracle) Level() CongestionLevel { return o.Fixed }

// Multiplier maps a congestion level to its cost multiplier.
func Multiplier(level CongestionLevel) float64 {
	switch level {
	case CongestionLow:
		return 1.0
	case CongestionStandard:
		return 1.5
	case CongestionHigh:
		return 2.0
	case CongestionExtreme:
		return 3.0
	default:
		return 1.0
	}
}

// GasEstimate is the fee tier tuple for a given base cost. Low, Standard and
// High are the fixed tiers; Current is the base cost scaled by whatever the
// oracle reported when the estimate was taken.
type GasEstimate struct {
	Low      float64         `json:"low"`
	Standard float64         `json:"standard"`
	High     float64         `json:"high"`
	Current  float64         `json:"current"`
	Level    CongestionLevel `json:"level"`
}

// EstimateGas computes the tier tuple for baseCost at the given level.
func EstimateGas(baseCost float64, level CongestionLevel) GasEstimate {
	return GasEstimate{
		Low:      baseCost * Multiplier(CongestionLow),
		Standard: baseCost * Multiplier(CongestionStandard),
		High:     baseCost * Multiplier(CongestionHigh),
		Current:  baseCost * Multiplier(level),
		Level:    level,
	}
}

// NetworkStatus is a point-in-time congestion snapshot. Two calls within the
// same second can disagree; the UI refreshes it periodically and that is the
// documented behaviour.
type NetworkStatus struct {
	Level      CongestionLevel `json:"level"`
	Multiplier float64         `json:"multiplier"`
	CheckedAt  time.Time       `json:"checkedAt"`
}

// CurrentNetworkStatus samples the oracle once.
func CurrentNetworkStatus(oracle CongestionOracle) NetworkStatus {
	level := oracle.Level()
	return NetworkStatus{
		Level:      level,
		Multiplier: Multiplier(level),
		CheckedAt:  time.Now().UTC(),
	}
}

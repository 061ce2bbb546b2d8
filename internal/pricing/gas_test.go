package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGasTiersMonotonic(t *testing.T) {
	for _, level := range []CongestionLevel{CongestionLow, CongestionStandard, CongestionHigh, CongestionExtreme} {
		for _, base := range []float64{0.001, 0.05, 1, 250} {
			est := EstimateGas(base, level)
			assert.LessOrEqual(t, est.Low, est.Standard, "level %s base %v", level, base)
			assert.LessOrEqual(t, est.Standard, est.High, "level %s base %v", level, base)
		}
	}
}

func TestGasCurrentMatchesLevelMultiplier(t *testing.T) {
	est := EstimateGas(2.0, CongestionExtreme)
	assert.Equal(t, 6.0, est.Current)
	assert.Equal(t, 2.0, est.Low)
	assert.Equal(t, 3.0, est.Standard)
	assert.Equal(t, 4.0, est.High)
}

func TestRandomOracleLevelsAreValid(t *testing.T) {
	oracle := NewRandomOracle()
	valid := map[CongestionLevel]bool{
		CongestionLow: true, CongestionStandard: true,
		CongestionHigh: true, CongestionExtreme: true,
	}
	for i := 0; i < 200; i++ {
		assert.True(t, valid[oracle.Level()])
	}
}

func TestStaticOracle(t *testing.T) {
	oracle := StaticOracle{Fixed: CongestionHigh}
	assert.Equal(t, CongestionHigh, oracle.Level())
	assert.Equal(t, 2.0, Multiplier(oracle.Level()))
}

func TestMultiplierUnknownLevelDefaultsToOne(t *testing.T) {
	assert.Equal(t, 1.0, Multiplier(CongestionLevel("bogus")))
}

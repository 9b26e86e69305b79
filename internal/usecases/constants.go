package usecases

import (
	"math/big"
	"time"
)

const (
	// BpsDenominator converts basis points to a fraction (10000 = 100%).
	BpsDenominator = 10000

	// GlobalFeeCeilingBps caps every quote regardless of per-chain bounds.
	GlobalFeeCeilingBps = 10000

	// DailyVolumeWindow is the rolling window for per-token and per-chain
	// volume caps. Resets are lazy: evaluated against lastResetTime on the
	// next access, never by a scheduled job.
	DailyVolumeWindow = 24 * time.Hour

	// FeeDecayPerHourBps is subtracted from a quote for every full hour
	// since the last committed update, capped at FeeDecayCapBps.
	FeeDecayPerHourBps = 1
	FeeDecayCapBps     = 24

	// LargeAmountUnitDecimals defines the one-unit-of-asset threshold
	// above which the volume-proportional surcharge applies.
	LargeAmountUnitDecimals = 18

	// FeeHistoryDefaultLimit bounds last-N history reads.
	FeeHistoryDefaultLimit = 100
)

// oneTokenUnit is 10^18, one whole unit of an 18-decimals asset.
var oneTokenUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(LargeAmountUnitDecimals), nil)

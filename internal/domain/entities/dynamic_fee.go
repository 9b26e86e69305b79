package entities

import (
	"time"

	"github.com/google/uuid"
)

// DynamicFee holds per-chain adaptive fee state. All fee values are in
// basis points. History entries are immutable once appended.
type DynamicFee struct {
	ChainID               uint64    `json:"chainId"`
	BaseFeeBps            int64     `json:"baseFee"`
	MarketConditionFactor int64     `json:"marketConditionFactor"`
	NetworkCongestion     int64     `json:"networkCongestion"`
	AdjustmentThresholdBps int64    `json:"feeAdjustmentThreshold"`
	MinFeeBps             int64     `json:"minFee"`
	MaxFeeBps             int64     `json:"maxFee"`
	TransactionVolume     int64     `json:"transactionVolume"`
	NetworkActivity       int64     `json:"networkActivity"`
	LastUpdateTime        time.Time `json:"lastUpdateTime"`
	Enabled               bool      `json:"enabled"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// FeeHistoryEntry is one append-only snapshot of a committed base fee
type FeeHistoryEntry struct {
	ID         uuid.UUID `json:"id"`
	ChainID    uint64    `json:"chainId"`
	FeeBps     int64     `json:"fee"`
	RecordedAt time.Time `json:"recordedAt"`
}

// FeeAdjustment records why a committed fee change happened
type FeeAdjustment struct {
	ID         uuid.UUID `json:"id"`
	ChainID    uint64    `json:"chainId"`
	OldFeeBps  int64     `json:"oldFee"`
	NewFeeBps  int64     `json:"newFee"`
	Reason     string    `json:"reason"`
	AdjustedAt time.Time `json:"adjustedAt"`
}

// FeeMarketData is the derived read model for reporting consumers
type FeeMarketData struct {
	ChainID        uint64    `json:"chainId"`
	CurrentFeeBps  int64     `json:"currentFee"`
	AverageFeeBps  int64     `json:"averageFee"`
	HistoryLength  int64     `json:"historyLength"`
	LastUpdateTime time.Time `json:"lastUpdateTime"`
	Enabled        bool      `json:"enabled"`
}

// ConfigureDynamicFeeInput represents admin input for per-chain fee state
type ConfigureDynamicFeeInput struct {
	BaseFeeBps             int64 `json:"baseFee" binding:"required"`
	MarketConditionFactor  int64 `json:"marketConditionFactor"`
	NetworkCongestion      int64 `json:"networkCongestion"`
	AdjustmentThresholdBps int64 `json:"feeAdjustmentThreshold" binding:"required"`
	MinFeeBps              int64 `json:"minFee"`
	MaxFeeBps              int64 `json:"maxFee" binding:"required"`
	Enabled                *bool `json:"enabled" binding:"required"`
}

// TriggerFeeUpdateInput carries the observed transfer feeding the update
type TriggerFeeUpdateInput struct {
	Amount string `json:"amount" binding:"required"`
}

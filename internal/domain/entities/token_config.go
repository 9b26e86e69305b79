package entities

import "time"

// TokenConfig represents per-asset risk limits, fee tier and running
// statistics. FeeRateBps is expressed in basis points (10000 = 100%).
type TokenConfig struct {
	Token          string    `json:"token"`
	Symbol         string    `json:"symbol"`
	Enabled        bool      `json:"enabled"`
	MinAmount      string    `json:"minTransactionAmount"`
	MaxAmount      string    `json:"maxTransactionAmount"`
	MaxDailyVolume string    `json:"maxDailyVolume"`
	FeeRateBps     int64     `json:"feeRate"`
	MinFee         string    `json:"minFee"`
	MaxFee         string    `json:"maxFee"`
	DailyVolume    string    `json:"dailyVolume"`
	LastResetTime  time.Time `json:"lastResetTime"`

	// Running statistics, committed only when a transfer settles.
	TotalTransferred        string `json:"totalTransferred"`
	TotalFeesCollected      string `json:"totalFeesCollected"`
	TransactionCount        int64  `json:"transactionCount"`
	AverageTransactionValue string `json:"averageTransactionValue"`
	CompletedCount          int64  `json:"completedCount"`
	CancelledCount          int64  `json:"cancelledCount"`
	SuccessRateBps          int64  `json:"successRate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpsertTokenConfigInput represents admin input for token configuration.
// Invariants enforced at the boundary: max >= min bounds, maxFee >= minFee,
// feeRate <= 10000.
type UpsertTokenConfigInput struct {
	Token          string `json:"token" binding:"required"`
	Symbol         string `json:"symbol"`
	Enabled        *bool  `json:"enabled" binding:"required"`
	MinAmount      string `json:"minTransactionAmount" binding:"required"`
	MaxAmount      string `json:"maxTransactionAmount" binding:"required"`
	MaxDailyVolume string `json:"maxDailyVolume" binding:"required"`
	FeeRateBps     int64  `json:"feeRate"`
	MinFee         string `json:"minFee" binding:"required"`
	MaxFee         string `json:"maxFee" binding:"required"`
}

// TokenStats is the read model exposed to reporting consumers
type TokenStats struct {
	Token                   string `json:"token"`
	TotalTransferred        string `json:"totalTransferred"`
	TotalFeesCollected      string `json:"totalFeesCollected"`
	TransactionCount        int64  `json:"transactionCount"`
	AverageTransactionValue string `json:"averageTransactionValue"`
	SuccessRateBps          int64  `json:"successRate"`
	DailyVolume             string `json:"dailyVolume"`
}

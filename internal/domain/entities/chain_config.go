package entities

import "time"

// ChainConfig represents a supported destination chain.
// DailyVolume resets lazily when now >= LastResetTime + 1 day; there is no
// scheduled job, the counter is corrected the next time it is touched.
type ChainConfig struct {
	ChainID        uint64    `json:"chainId"`
	Name           string    `json:"name"`
	Enabled        bool      `json:"enabled"`
	RemoteBridge   string    `json:"remoteBridge"`
	GasLimit       uint64    `json:"gasLimit"`
	GasPrice       string    `json:"gasPrice"`
	MinAmount      string    `json:"minTransactionAmount"`
	MaxAmount      string    `json:"maxTransactionAmount"`
	DailyVolume    string    `json:"dailyVolume"`
	MaxDailyVolume string    `json:"maxDailyVolume"`
	LastResetTime  time.Time `json:"lastResetTime"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UpsertChainConfigInput represents admin input for chain configuration
type UpsertChainConfigInput struct {
	ChainID        uint64 `json:"chainId" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Enabled        *bool  `json:"enabled" binding:"required"`
	RemoteBridge   string `json:"remoteBridge" binding:"required"`
	GasLimit       uint64 `json:"gasLimit"`
	GasPrice       string `json:"gasPrice"`
	MinAmount      string `json:"minTransactionAmount" binding:"required"`
	MaxAmount      string `json:"maxTransactionAmount" binding:"required"`
	MaxDailyVolume string `json:"maxDailyVolume" binding:"required"`
}

package entities

import "time"

// BridgeSettings is the singleton row holding global settlement parameters,
// the validator threshold and the aggregate counters. Only the settlement
// state machine writes the counters.
type BridgeSettings struct {
	Enabled            bool          `json:"enabled"`
	CurrentChainID     uint64        `json:"currentChainId"`
	TransactionTimeout time.Duration `json:"transactionTimeout"`
	FeePercentageBps   int64         `json:"feePercentage"`
	MinimumAmount      string        `json:"minimumAmount"`
	MaximumAmount      string        `json:"maximumAmount"`
	FeeRecipient       string        `json:"feeRecipient"`
	EscrowAccount      string        `json:"escrowAccount"`
	Threshold          int64         `json:"threshold"`
	ValidatorCount     int64         `json:"validatorCount"`

	Stats BridgeStats `json:"stats"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateSettingsInput represents admin input for global parameters.
// Nil pointers leave the current value untouched.
type UpdateSettingsInput struct {
	Enabled            *bool   `json:"enabled,omitempty"`
	TransactionTimeout *int64  `json:"transactionTimeoutSeconds,omitempty"`
	FeePercentageBps   *int64  `json:"feePercentage,omitempty"`
	MinimumAmount      *string `json:"minimumAmount,omitempty"`
	MaximumAmount      *string `json:"maximumAmount,omitempty"`
	FeeRecipient       *string `json:"feeRecipient,omitempty"`
}

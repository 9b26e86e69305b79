package models

import "time"

// BridgeSettings is a singleton row (ID always 1)
type BridgeSettings struct {
	ID                 int64  `gorm:"primaryKey"`
	Enabled            bool   `gorm:"not null;default:true"`
	CurrentChainID     uint64 `gorm:"not null"`
	TransactionTimeout int64  `gorm:"not null"` // seconds
	FeePercentageBps   int64  `gorm:"not null"`
	MinimumAmount      string `gorm:"type:varchar(100);not null"`
	MaximumAmount      string `gorm:"type:varchar(100);not null"`
	FeeRecipient       string `gorm:"type:varchar(255);not null"`
	EscrowAccount      string `gorm:"type:varchar(255);not null"`
	Threshold          int64  `gorm:"not null;default:1"`
	ValidatorCount     int64  `gorm:"not null;default:0"`

	TotalTransactions     int64  `gorm:"not null;default:0"`
	PendingTransactions   int64  `gorm:"not null;default:0"`
	CompletedTransactions int64  `gorm:"not null;default:0"`
	CancelledTransactions int64  `gorm:"not null;default:0"`
	TotalVolume           string `gorm:"type:varchar(100);not null;default:'0'"`
	TotalFeesCollected    string `gorm:"type:varchar(100);not null;default:'0'"`

	UpdatedAt time.Time
}

func (BridgeSettings) TableName() string {
	return "bridge_settings"
}

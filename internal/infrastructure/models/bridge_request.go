package models

import "time"

type BridgeRequest struct {
	RequestID     uint64 `gorm:"primaryKey;autoIncrement"`
	Sender        string `gorm:"type:varchar(255);not null;index"`
	Receiver      string `gorm:"type:varchar(255);not null"`
	Token         string `gorm:"type:varchar(255);not null;index"`
	Amount        string `gorm:"type:varchar(100);not null"` // net, post-fee
	Fee           string `gorm:"type:varchar(100);not null;default:'0'"`
	SourceChainID uint64 `gorm:"not null"`
	DestChainID   uint64 `gorm:"not null"`
	ChainID       uint64 `gorm:"not null;index"`
	// Unique index doubles as the global anti-replay set of seen commitments.
	TxHash      string `gorm:"type:varchar(66);not null;uniqueIndex"`
	Timestamp   time.Time
	Status      string `gorm:"type:varchar(20);not null;index"`
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (BridgeRequest) TableName() string {
	return "bridge_requests"
}

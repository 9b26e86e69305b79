package models

import (
	"time"

	"github.com/google/uuid"
)

type DynamicFee struct {
	ChainID                uint64 `gorm:"primaryKey"`
	BaseFeeBps             int64  `gorm:"not null"`
	MarketConditionFactor  int64  `gorm:"not null;default:0"`
	NetworkCongestion      int64  `gorm:"not null;default:0"`
	AdjustmentThresholdBps int64  `gorm:"not null"`
	MinFeeBps              int64  `gorm:"not null;default:0"`
	MaxFeeBps              int64  `gorm:"not null"`
	TransactionVolume      int64  `gorm:"not null;default:0"`
	NetworkActivity        int64  `gorm:"not null;default:0"`
	LastUpdateTime         time.Time
	Enabled                bool `gorm:"not null;default:false"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (DynamicFee) TableName() string {
	return "dynamic_fees"
}

type FeeHistoryEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChainID    uint64    `gorm:"not null;index"`
	FeeBps     int64     `gorm:"not null"`
	RecordedAt time.Time `gorm:"index"`
}

func (FeeHistoryEntry) TableName() string {
	return "fee_history_entries"
}

type FeeAdjustment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChainID    uint64    `gorm:"not null;index"`
	OldFeeBps  int64     `gorm:"not null"`
	NewFeeBps  int64     `gorm:"not null"`
	Reason     string    `gorm:"type:varchar(255)"`
	AdjustedAt time.Time `gorm:"index"`
}

func (FeeAdjustment) TableName() string {
	return "fee_adjustments"
}

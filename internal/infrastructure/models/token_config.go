package models

import "time"

type TokenConfig struct {
	Token          string `gorm:"type:varchar(255);primaryKey"`
	Symbol         string `gorm:"type:varchar(20)"`
	Enabled        bool   `gorm:"not null;default:false"`
	MinAmount      string `gorm:"type:varchar(100);not null"`
	MaxAmount      string `gorm:"type:varchar(100);not null"`
	MaxDailyVolume string `gorm:"type:varchar(100);not null"`
	FeeRateBps     int64  `gorm:"not null;default:0"`
	MinFee         string `gorm:"type:varchar(100);not null;default:'0'"`
	MaxFee         string `gorm:"type:varchar(100);not null;default:'0'"`
	DailyVolume    string `gorm:"type:varchar(100);not null;default:'0'"`
	LastResetTime  time.Time

	TotalTransferred        string `gorm:"type:varchar(100);not null;default:'0'"`
	TotalFeesCollected      string `gorm:"type:varchar(100);not null;default:'0'"`
	TransactionCount        int64  `gorm:"not null;default:0"`
	AverageTransactionValue string `gorm:"type:varchar(100);not null;default:'0'"`
	CompletedCount          int64  `gorm:"not null;default:0"`
	CancelledCount          int64  `gorm:"not null;default:0"`
	SuccessRateBps          int64  `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TokenConfig) TableName() string {
	return "token_configs"
}

package models

import "time"

type ChainConfig struct {
	ChainID        uint64 `gorm:"primaryKey"`
	Name           string `gorm:"type:varchar(100);not null"`
	Enabled        bool   `gorm:"not null;default:false"`
	RemoteBridge   string `gorm:"type:varchar(255)"`
	GasLimit       uint64
	GasPrice       string `gorm:"type:varchar(100);default:'0'"`
	MinAmount      string `gorm:"type:varchar(100);not null"`
	MaxAmount      string `gorm:"type:varchar(100);not null"`
	DailyVolume    string `gorm:"type:varchar(100);not null;default:'0'"`
	MaxDailyVolume string `gorm:"type:varchar(100);not null"`
	LastResetTime  time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (ChainConfig) TableName() string {
	return "chain_configs"
}

package models

import "time"

// Balance is one (token, account) cell of the escrow ledger
type Balance struct {
	Token     string `gorm:"type:varchar(255);primaryKey"`
	Account   string `gorm:"type:varchar(255);primaryKey"`
	Amount    string `gorm:"type:varchar(100);not null;default:'0'"`
	UpdatedAt time.Time
}

func (Balance) TableName() string {
	return "balances"
}

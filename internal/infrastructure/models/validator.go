package models

import "time"

type Validator struct {
	Address string `gorm:"type:varchar(255);primaryKey"`
	AddedAt time.Time
}

func (Validator) TableName() string {
	return "validators"
}

type MerkleRoot struct {
	ChainID   uint64 `gorm:"primaryKey"`
	Root      string `gorm:"type:varchar(66);not null"`
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MerkleRoot) TableName() string {
	return "merkle_roots"
}

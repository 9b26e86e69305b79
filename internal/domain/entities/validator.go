package entities

import "time"

// Validator represents one attestor identity
type Validator struct {
	Address   string    `json:"address"`
	AddedAt   time.Time `json:"addedAt"`
}

// ValidatorSet is the read model for the threshold registry.
// Invariant: 1 <= Threshold <= Count while Count > 0.
type ValidatorSet struct {
	Validators []Validator `json:"validators"`
	Count      int64       `json:"count"`
	Threshold  int64       `json:"threshold"`
}

// MerkleRoot is a registered attestation root with expiry, per chain
type MerkleRoot struct {
	ChainID   uint64    `json:"chainId"`
	Root      string    `json:"root"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// AddValidatorInput represents admin input for adding an attestor
type AddValidatorInput struct {
	Address string `json:"address" binding:"required"`
}

// SetThresholdInput represents admin input for the signature threshold
type SetThresholdInput struct {
	Threshold int64 `json:"threshold" binding:"required"`
}

// SetMerkleRootInput represents admin input for root registration
type SetMerkleRootInput struct {
	ChainID   uint64 `json:"chainId" binding:"required"`
	Root      string `json:"root" binding:"required"`
	ExpiresAt int64  `json:"expiresAt" binding:"required"`
}

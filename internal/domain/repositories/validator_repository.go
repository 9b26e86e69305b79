package repositories

import (
	"context"

	"chain-bridge.backend/internal/domain/entities"
)

// ValidatorRepository defines attestor set operations
type ValidatorRepository interface {
	List(ctx context.Context) ([]*entities.Validator, error)
	IsValidator(ctx context.Context, address string) (bool, error)
	Add(ctx context.Context, validator *entities.Validator) error
	Remove(ctx context.Context, address string) error
	Count(ctx context.Context) (int64, error)
}

// MerkleRootRepository defines attestation root operations, one root per
// destination chain; re-registration replaces the previous root.
type MerkleRootRepository interface {
	GetByChainID(ctx context.Context, chainID uint64) (*entities.MerkleRoot, error)
	Set(ctx context.Context, root *entities.MerkleRoot) error
}

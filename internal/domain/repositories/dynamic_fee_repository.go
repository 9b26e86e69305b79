package repositories

import (
	"context"

	"chain-bridge.backend/internal/domain/entities"
)

// DynamicFeeRepository defines per-chain adaptive fee state operations.
// History tables are append-only; reads support bounded last-N retrieval.
type DynamicFeeRepository interface {
	GetByChainID(ctx context.Context, chainID uint64) (*entities.DynamicFee, error)
	List(ctx context.Context) ([]*entities.DynamicFee, error)
	Create(ctx context.Context, fee *entities.DynamicFee) error
	Update(ctx context.Context, fee *entities.DynamicFee) error
	AppendHistory(ctx context.Context, entry *entities.FeeHistoryEntry) error
	ListHistory(ctx context.Context, chainID uint64, limit int) ([]*entities.FeeHistoryEntry, error)
	CountHistory(ctx context.Context, chainID uint64) (int64, error)
	AppendAdjustment(ctx context.Context, adjustment *entities.FeeAdjustment) error
	ListAdjustments(ctx context.Context, chainID uint64, limit int) ([]*entities.FeeAdjustment, error)
}

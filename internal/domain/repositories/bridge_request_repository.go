package repositories

import (
	"context"

	"chain-bridge.backend/internal/domain/entities"
	"chain-bridge.backend/pkg/utils"
)

// BridgeRequestRepository defines ledger data operations. The ledger
// exclusively owns request records; status transitions go through
// MarkCompleted/MarkCancelled which refuse finalized rows.
type BridgeRequestRepository interface {
	// Create stores the record and assigns the next monotonically
	// increasing request id onto request.RequestID.
	Create(ctx context.Context, request *entities.BridgeRequest) error
	GetByID(ctx context.Context, requestID uint64) (*entities.BridgeRequest, error)
	GetByTxHash(ctx context.Context, txHash string) (*entities.BridgeRequest, error)
	// TxHashSeen reports membership in the global anti-replay set.
	TxHashSeen(ctx context.Context, txHash string) (bool, error)
	MarkCompleted(ctx context.Context, requestID uint64) error
	MarkCancelled(ctx context.Context, requestID uint64) error
	List(ctx context.Context, status *entities.RequestStatus, pagination utils.PaginationParams) ([]*entities.BridgeRequest, int64, error)
}

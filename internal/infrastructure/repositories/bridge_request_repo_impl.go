package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"chain-bridge.backend/internal/domain/entities"
	domainerrors "chain-bridge.backend/internal/domain/errors"
	domainrepos "chain-bridge.backend/internal/domain/repositories"
	"chain-bridge.backend/internal/infrastructure/models"
	"chain-bridge.backend/pkg/utils"
)

type bridgeRequestRepo struct {
	db *gorm.DB
}

// NewBridgeRequestRepository creates a new ledger repository
func NewBridgeRequestRepository(db *gorm.DB) domainrepos.BridgeRequestRepository {
	return &bridgeRequestRepo{db: db}
}

func (r *bridgeRequestRepo) Create(ctx context.Context, request *entities.BridgeRequest) error {
	m := &models.BridgeRequest{
		Sender:        request.Sender,
		Receiver:      request.Receiver,
		Token:         request.Token,
		Amount:        request.Amount,
		Fee:           request.Fee,
		SourceChainID: request.SourceChainID,
		DestChainID:   request.DestChainID,
		ChainID:       request.ChainID,
		TxHash:        request.TxHash,
		Timestamp:     request.Timestamp,
		Status:        string(request.Status),
		CreatedAt:     request.CreatedAt,
		UpdatedAt:     request.UpdatedAt,
	}

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrReplayedTxHash
		}
		return err
	}
	// Propagate the assigned monotonic id back to the caller.
	request.RequestID = m.RequestID
	return nil
}

func (r *bridgeRequestRepo) GetByID(ctx context.Context, requestID uint64) (*entities.BridgeRequest, error) {
	var m models.BridgeRequest
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("request_id = ?", requestID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toBridgeRequestEntity(&m), nil
}

func (r *bridgeRequestRepo) GetByTxHash(ctx context.Context, txHash string) (*entities.BridgeRequest, error) {
	var m models.BridgeRequest
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("tx_hash = ?", txHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toBridgeRequestEntity(&m), nil
}

func (r *bridgeRequestRepo) TxHashSeen(ctx context.Context, txHash string) (bool, error) {
	var count int64
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Model(&models.BridgeRequest{}).
		Where("tx_hash = ?", txHash).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *bridgeRequestRepo) MarkCompleted(ctx context.Context, requestID uint64) error {
	return r.finalize(ctx, requestID, entities.RequestStatusCompleted)
}

func (r *bridgeRequestRepo) MarkCancelled(ctx context.Context, requestID uint64) error {
	return r.finalize(ctx, requestID, entities.RequestStatusCancelled)
}

// finalize transitions a request out of CREATED. The status guard in the
// WHERE clause makes the terminal state a database-level invariant: a second
// finalize attempt affects zero rows.
func (r *bridgeRequestRepo) finalize(ctx context.Context, requestID uint64, status entities.RequestStatus) error {
	now := time.Now()
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.BridgeRequest{}).
		Where("request_id = ? AND status = ?", requestID, string(entities.RequestStatusCreated)).
		Updates(map[string]interface{}{
			"status":       string(status),
			"completed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.WithContext(ctx).Model(&models.BridgeRequest{}).
			Where("request_id = ?", requestID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrNotFound
		}
		return domainerrors.ErrAlreadyFinalized
	}
	return nil
}

func (r *bridgeRequestRepo) List(ctx context.Context, status *entities.RequestStatus, pagination utils.PaginationParams) ([]*entities.BridgeRequest, int64, error) {
	var rows []models.BridgeRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.WithContext(ctx).Model(&models.BridgeRequest{})
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}
	if err := query.Order("request_id DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entities.BridgeRequest, 0, len(rows))
	for _, row := range rows {
		model := row
		items = append(items, toBridgeRequestEntity(&model))
	}
	return items, total, nil
}

func toBridgeRequestEntity(m *models.BridgeRequest) *entities.BridgeRequest {
	e := &entities.BridgeRequest{
		RequestID:     m.RequestID,
		Sender:        m.Sender,
		Receiver:      m.Receiver,
		Token:         m.Token,
		Amount:        m.Amount,
		Fee:           m.Fee,
		SourceChainID: m.SourceChainID,
		DestChainID:   m.DestChainID,
		ChainID:       m.ChainID,
		TxHash:        m.TxHash,
		Timestamp:     m.Timestamp,
		Status:        entities.RequestStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.CompletedAt != nil {
		e.CompletedAt.SetValid(*m.CompletedAt)
	}
	return e
}

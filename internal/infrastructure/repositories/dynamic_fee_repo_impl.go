package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chain-bridge.backend/internal/domain/entities"
	domainerrors "chain-bridge.backend/internal/domain/errors"
	domainrepos "chain-bridge.backend/internal/domain/repositories"
	"chain-bridge.backend/internal/infrastructure/models"
	"chain-bridge.backend/pkg/utils"
)

type dynamicFeeRepo struct {
	db *gorm.DB
}

func NewDynamicFeeRepository(db *gorm.DB) domainrepos.DynamicFeeRepository {
	return &dynamicFeeRepo{db: db}
}

func (r *dynamicFeeRepo) GetByChainID(ctx context.Context, chainID uint64) (*entities.DynamicFee, error) {
	var m models.DynamicFee
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("chain_id = ?", chainID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toDynamicFeeEntity(&m), nil
}

func (r *dynamicFeeRepo) List(ctx context.Context) ([]*entities.DynamicFee, error) {
	var rows []models.DynamicFee
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Order("chain_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]*entities.DynamicFee, 0, len(rows))
	for _, row := range rows {
		model := row
		items = append(items, toDynamicFeeEntity(&model))
	}
	return items, nil
}

func (r *dynamicFeeRepo) Create(ctx context.Context, fee *entities.DynamicFee) error {
	m := toDynamicFeeModel(fee)
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	db := GetDB(ctx, r.db)
	return db.WithContext(ctx).Create(m).Error
}

func (r *dynamicFeeRepo) Update(ctx context.Context, fee *entities.DynamicFee) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.DynamicFee{}).
		Where("chain_id = ?", fee.ChainID).
		Updates(map[string]interface{}{
			"base_fee_bps":             fee.BaseFeeBps,
			"market_condition_factor":  fee.MarketConditionFactor,
			"network_congestion":       fee.NetworkCongestion,
			"adjustment_threshold_bps": fee.AdjustmentThresholdBps,
			"min_fee_bps":              fee.MinFeeBps,
			"max_fee_bps":              fee.MaxFeeBps,
			"transaction_volume":       fee.TransactionVolume,
			"network_activity":         fee.NetworkActivity,
			"last_update_time":         fee.LastUpdateTime,
			"enabled":                  fee.Enabled,
			"updated_at":               time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *dynamicFeeRepo) AppendHistory(ctx context.Context, entry *entities.FeeHistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = utils.GenerateUUIDv7()
	}
	m := &models.FeeHistoryEntry{
		ID:         entry.ID,
		ChainID:    entry.ChainID,
		FeeBps:     entry.FeeBps,
		RecordedAt: entry.RecordedAt,
	}
	db := GetDB(ctx, r.db)
	return db.WithContext(ctx).Create(m).Error
}

// ListHistory returns the last N entries, newest first. limit <= 0 means all.
func (r *dynamicFeeRepo) ListHistory(ctx context.Context, chainID uint64, limit int) ([]*entities.FeeHistoryEntry, error) {
	var rows []models.FeeHistoryEntry
	db := GetDB(ctx, r.db)
	query := db.WithContext(ctx).
		Where("chain_id = ?", chainID).
		Order("recorded_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]*entities.FeeHistoryEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, &entities.FeeHistoryEntry{
			ID:         row.ID,
			ChainID:    row.ChainID,
			FeeBps:     row.FeeBps,
			RecordedAt: row.RecordedAt,
		})
	}
	return items, nil
}

func (r *dynamicFeeRepo) CountHistory(ctx context.Context, chainID uint64) (int64, error) {
	var count int64
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Model(&models.FeeHistoryEntry{}).
		Where("chain_id = ?", chainID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *dynamicFeeRepo) AppendAdjustment(ctx context.Context, adjustment *entities.FeeAdjustment) error {
	if adjustment.ID == uuid.Nil {
		adjustment.ID = utils.GenerateUUIDv7()
	}
	m := &models.FeeAdjustment{
		ID:         adjustment.ID,
		ChainID:    adjustment.ChainID,
		OldFeeBps:  adjustment.OldFeeBps,
		NewFeeBps:  adjustment.NewFeeBps,
		Reason:     adjustment.Reason,
		AdjustedAt: adjustment.AdjustedAt,
	}
	db := GetDB(ctx, r.db)
	return db.WithContext(ctx).Create(m).Error
}

func (r *dynamicFeeRepo) ListAdjustments(ctx context.Context, chainID uint64, limit int) ([]*entities.FeeAdjustment, error) {
	var rows []models.FeeAdjustment
	db := GetDB(ctx, r.db)
	query := db.WithContext(ctx).
		Where("chain_id = ?", chainID).
		Order("adjusted_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]*entities.FeeAdjustment, 0, len(rows))
	for _, row := range rows {
		items = append(items, &entities.FeeAdjustment{
			ID:         row.ID,
			ChainID:    row.ChainID,
			OldFeeBps:  row.OldFeeBps,
			NewFeeBps:  row.NewFeeBps,
			Reason:     row.Reason,
			AdjustedAt: row.AdjustedAt,
		})
	}
	return items, nil
}

func toDynamicFeeModel(e *entities.DynamicFee) *models.DynamicFee {
	return &models.DynamicFee{
		ChainID:                e.ChainID,
		BaseFeeBps:             e.BaseFeeBps,
		MarketConditionFactor:  e.MarketConditionFactor,
		NetworkCongestion:      e.NetworkCongestion,
		AdjustmentThresholdBps: e.AdjustmentThresholdBps,
		MinFeeBps:              e.MinFeeBps,
		MaxFeeBps:              e.MaxFeeBps,
		TransactionVolume:      e.TransactionVolume,
		NetworkActivity:        e.NetworkActivity,
		LastUpdateTime:         e.LastUpdateTime,
		Enabled:                e.Enabled,
	}
}

func toDynamicFeeEntity(m *models.DynamicFee) *entities.DynamicFee {
	return &entities.DynamicFee{
		ChainID:                m.ChainID,
		BaseFeeBps:             m.BaseFeeBps,
		MarketConditionFactor:  m.MarketConditionFactor,
		NetworkCongestion:      m.NetworkCongestion,
		AdjustmentThresholdBps: m.AdjustmentThresholdBps,
		MinFeeBps:              m.MinFeeBps,
		MaxFeeBps:              m.MaxFeeBps,
		TransactionVolume:      m.TransactionVolume,
		NetworkActivity:        m.NetworkActivity,
		LastUpdateTime:         m.LastUpdateTime,
		Enabled:                m.Enabled,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}

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
)

type tokenConfigRepo struct {
	db *gorm.DB
}

func NewTokenConfigRepository(db *gorm.DB) domainrepos.TokenConfigRepository {
	return &tokenConfigRepo{db: db}
}

func (r *tokenConfigRepo) GetByToken(ctx context.Context, token string) (*entities.TokenConfig, error) {
	var m models.TokenConfig
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("token = ?", token).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toTokenConfigEntity(&m), nil
}

func (r *tokenConfigRepo) List(ctx context.Context) ([]*entities.TokenConfig, error) {
	var rows []models.TokenConfig
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Order("token ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]*entities.TokenConfig, 0, len(rows))
	for _, row := range rows {
		model := row
		items = append(items, toTokenConfigEntity(&model))
	}
	return items, nil
}

func (r *tokenConfigRepo) Create(ctx context.Context, config *entities.TokenConfig) error {
	m := toTokenConfigModel(config)
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	db := GetDB(ctx, r.db)
	return db.WithContext(ctx).Create(m).Error
}

func (r *tokenConfigRepo) Update(ctx context.Context, config *entities.TokenConfig) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.TokenConfig{}).
		Where("token = ?", config.Token).
		Updates(map[string]interface{}{
			"symbol":           config.Symbol,
			"enabled":          config.Enabled,
			"min_amount":       config.MinAmount,
			"max_amount":       config.MaxAmount,
			"max_daily_volume": config.MaxDailyVolume,
			"fee_rate_bps":     config.FeeRateBps,
			"min_fee":          config.MinFee,
			"max_fee":          config.MaxFee,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *tokenConfigRepo) UpdateVolume(ctx context.Context, token string, dailyVolume string, lastResetTime time.Time) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.TokenConfig{}).
		Where("token = ?", token).
		Updates(map[string]interface{}{
			"daily_volume":    dailyVolume,
			"last_reset_time": lastResetTime,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateStats commits the running statistics fields only; limits and fee
// tiers are untouched so a concurrent admin update cannot be clobbered.
func (r *tokenConfigRepo) UpdateStats(ctx context.Context, config *entities.TokenConfig) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.TokenConfig{}).
		Where("token = ?", config.Token).
		Updates(map[string]interface{}{
			"total_transferred":         config.TotalTransferred,
			"total_fees_collected":      config.TotalFeesCollected,
			"transaction_count":         config.TransactionCount,
			"average_transaction_value": config.AverageTransactionValue,
			"completed_count":           config.CompletedCount,
			"cancelled_count":           config.CancelledCount,
			"success_rate_bps":          config.SuccessRateBps,
			"updated_at":                time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toTokenConfigModel(e *entities.TokenConfig) *models.TokenConfig {
	return &models.TokenConfig{
		Token:                   e.Token,
		Symbol:                  e.Symbol,
		Enabled:                 e.Enabled,
		MinAmount:               e.MinAmount,
		MaxAmount:               e.MaxAmount,
		MaxDailyVolume:          e.MaxDailyVolume,
		FeeRateBps:              e.FeeRateBps,
		MinFee:                  e.MinFee,
		MaxFee:                  e.MaxFee,
		DailyVolume:             e.DailyVolume,
		LastResetTime:           e.LastResetTime,
		TotalTransferred:        e.TotalTransferred,
		TotalFeesCollected:      e.TotalFeesCollected,
		TransactionCount:        e.TransactionCount,
		AverageTransactionValue: e.AverageTransactionValue,
		CompletedCount:          e.CompletedCount,
		CancelledCount:          e.CancelledCount,
		SuccessRateBps:          e.SuccessRateBps,
	}
}

func toTokenConfigEntity(m *models.TokenConfig) *entities.TokenConfig {
	return &entities.TokenConfig{
		Token:                   m.Token,
		Symbol:                  m.Symbol,
		Enabled:                 m.Enabled,
		MinAmount:               m.MinAmount,
		MaxAmount:               m.MaxAmount,
		MaxDailyVolume:          m.MaxDailyVolume,
		FeeRateBps:              m.FeeRateBps,
		MinFee:                  m.MinFee,
		MaxFee:                  m.MaxFee,
		DailyVolume:             m.DailyVolume,
		LastResetTime:           m.LastResetTime,
		TotalTransferred:        m.TotalTransferred,
		TotalFeesCollected:      m.TotalFeesCollected,
		TransactionCount:        m.TransactionCount,
		AverageTransactionValue: m.AverageTransactionValue,
		CompletedCount:          m.CompletedCount,
		CancelledCount:          m.CancelledCount,
		SuccessRateBps:          m.SuccessRateBps,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}

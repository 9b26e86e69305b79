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

const settingsRowID = 1

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) domainrepos.SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context) (*entities.BridgeSettings, error) {
	var m models.BridgeSettings
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ?", settingsRowID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toSettingsEntity(&m), nil
}

// Update writes only the admin-tunable parameters. The settlement counters
// and the validator-set pair have their own write paths so a parameter
// change never carries stale values into columns another writer owns.
func (r *settingsRepo) Update(ctx context.Context, settings *entities.BridgeSettings) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.BridgeSettings{}).
		Where("id = ?", settingsRowID).
		Updates(map[string]interface{}{
			"enabled":             settings.Enabled,
			"transaction_timeout": int64(settings.TransactionTimeout / time.Second),
			"fee_percentage_bps":  settings.FeePercentageBps,
			"minimum_amount":      settings.MinimumAmount,
			"maximum_amount":      settings.MaximumAmount,
			"fee_recipient":       settings.FeeRecipient,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *settingsRepo) UpdateStats(ctx context.Context, stats *entities.BridgeStats) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.BridgeSettings{}).
		Where("id = ?", settingsRowID).
		Updates(map[string]interface{}{
			"total_transactions":     stats.TotalTransactions,
			"pending_transactions":   stats.PendingTransactions,
			"completed_transactions": stats.CompletedTransactions,
			"cancelled_transactions": stats.CancelledTransactions,
			"total_volume":           stats.TotalVolume,
			"total_fees_collected":   stats.TotalFeesCollected,
			"updated_at":             time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *settingsRepo) UpdateValidatorSet(ctx context.Context, threshold, validatorCount int64) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.BridgeSettings{}).
		Where("id = ?", settingsRowID).
		Updates(map[string]interface{}{
			"threshold":       threshold,
			"validator_count": validatorCount,
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

func (r *settingsRepo) Seed(ctx context.Context, settings *entities.BridgeSettings) error {
	db := GetDB(ctx, r.db)
	var count int64
	if err := db.WithContext(ctx).Model(&models.BridgeSettings{}).
		Where("id = ?", settingsRowID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	m := toSettingsModel(settings)
	m.ID = settingsRowID
	m.UpdatedAt = time.Now()
	return db.WithContext(ctx).Create(m).Error
}

func toSettingsModel(e *entities.BridgeSettings) *models.BridgeSettings {
	return &models.BridgeSettings{
		Enabled:               e.Enabled,
		CurrentChainID:        e.CurrentChainID,
		TransactionTimeout:    int64(e.TransactionTimeout / time.Second),
		FeePercentageBps:      e.FeePercentageBps,
		MinimumAmount:         e.MinimumAmount,
		MaximumAmount:         e.MaximumAmount,
		FeeRecipient:          e.FeeRecipient,
		EscrowAccount:         e.EscrowAccount,
		Threshold:             e.Threshold,
		ValidatorCount:        e.ValidatorCount,
		TotalTransactions:     e.Stats.TotalTransactions,
		PendingTransactions:   e.Stats.PendingTransactions,
		CompletedTransactions: e.Stats.CompletedTransactions,
		CancelledTransactions: e.Stats.CancelledTransactions,
		TotalVolume:           e.Stats.TotalVolume,
		TotalFeesCollected:    e.Stats.TotalFeesCollected,
	}
}

func toSettingsEntity(m *models.BridgeSettings) *entities.BridgeSettings {
	return &entities.BridgeSettings{
		Enabled:            m.Enabled,
		CurrentChainID:     m.CurrentChainID,
		TransactionTimeout: time.Duration(m.TransactionTimeout) * time.Second,
		FeePercentageBps:   m.FeePercentageBps,
		MinimumAmount:      m.MinimumAmount,
		MaximumAmount:      m.MaximumAmount,
		FeeRecipient:       m.FeeRecipient,
		EscrowAccount:      m.EscrowAccount,
		Threshold:          m.Threshold,
		ValidatorCount:     m.ValidatorCount,
		Stats: entities.BridgeStats{
			TotalTransactions:     m.TotalTransactions,
			PendingTransactions:   m.PendingTransactions,
			CompletedTransactions: m.CompletedTransactions,
			CancelledTransactions: m.CancelledTransactions,
			TotalVolume:           m.TotalVolume,
			TotalFeesCollected:    m.TotalFeesCollected,
		},
		UpdatedAt: m.UpdatedAt,
	}
}

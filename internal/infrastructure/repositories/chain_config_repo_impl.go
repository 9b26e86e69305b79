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

type chainConfigRepo struct {
	db *gorm.DB
}

func NewChainConfigRepository(db *gorm.DB) domainrepos.ChainConfigRepository {
	return &chainConfigRepo{db: db}
}

func (r *chainConfigRepo) GetByChainID(ctx context.Context, chainID uint64) (*entities.ChainConfig, error) {
	var m models.ChainConfig
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("chain_id = ?", chainID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toChainConfigEntity(&m), nil
}

func (r *chainConfigRepo) List(ctx context.Context) ([]*entities.ChainConfig, error) {
	var rows []models.ChainConfig
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Order("chain_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]*entities.ChainConfig, 0, len(rows))
	for _, row := range rows {
		model := row
		items = append(items, toChainConfigEntity(&model))
	}
	return items, nil
}

func (r *chainConfigRepo) Create(ctx context.Context, config *entities.ChainConfig) error {
	m := toChainConfigModel(config)
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	db := GetDB(ctx, r.db)
	return db.WithContext(ctx).Create(m).Error
}

func (r *chainConfigRepo) Update(ctx context.Context, config *entities.ChainConfig) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.ChainConfig{}).
		Where("chain_id = ?", config.ChainID).
		Updates(map[string]interface{}{
			"name":             config.Name,
			"enabled":          config.Enabled,
			"remote_bridge":    config.RemoteBridge,
			"gas_limit":        config.GasLimit,
			"gas_price":        config.GasPrice,
			"min_amount":       config.MinAmount,
			"max_amount":       config.MaxAmount,
			"max_daily_volume": config.MaxDailyVolume,
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

func (r *chainConfigRepo) UpdateVolume(ctx context.Context, chainID uint64, dailyVolume string, lastResetTime time.Time) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.ChainConfig{}).
		Where("chain_id = ?", chainID).
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

func toChainConfigModel(e *entities.ChainConfig) *models.ChainConfig {
	return &models.ChainConfig{
		ChainID:        e.ChainID,
		Name:           e.Name,
		Enabled:        e.Enabled,
		RemoteBridge:   e.RemoteBridge,
		GasLimit:       e.GasLimit,
		GasPrice:       e.GasPrice,
		MinAmount:      e.MinAmount,
		MaxAmount:      e.MaxAmount,
		DailyVolume:    e.DailyVolume,
		MaxDailyVolume: e.MaxDailyVolume,
		LastResetTime:  e.LastResetTime,
	}
}

func toChainConfigEntity(m *models.ChainConfig) *entities.ChainConfig {
	return &entities.ChainConfig{
		ChainID:        m.ChainID,
		Name:           m.Name,
		Enabled:        m.Enabled,
		RemoteBridge:   m.RemoteBridge,
		GasLimit:       m.GasLimit,
		GasPrice:       m.GasPrice,
		MinAmount:      m.MinAmount,
		MaxAmount:      m.MaxAmount,
		DailyVolume:    m.DailyVolume,
		MaxDailyVolume: m.MaxDailyVolume,
		LastResetTime:  m.LastResetTime,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

package repositories

import (
	"context"
	"time"

	"chain-bridge.backend/internal/domain/entities"
)

// ChainConfigRepository defines per-chain configuration operations
type ChainConfigRepository interface {
	GetByChainID(ctx context.Context, chainID uint64) (*entities.ChainConfig, error)
	List(ctx context.Context) ([]*entities.ChainConfig, error)
	Create(ctx context.Context, config *entities.ChainConfig) error
	Update(ctx context.Context, config *entities.ChainConfig) error
	// UpdateVolume commits a new rolling daily-volume counter together
	// with the reset marker it was computed against.
	UpdateVolume(ctx context.Context, chainID uint64, dailyVolume string, lastResetTime time.Time) error
}

// TokenConfigRepository defines per-token configuration operations
type TokenConfigRepository interface {
	GetByToken(ctx context.Context, token string) (*entities.TokenConfig, error)
	List(ctx context.Context) ([]*entities.TokenConfig, error)
	Create(ctx context.Context, config *entities.TokenConfig) error
	Update(ctx context.Context, config *entities.TokenConfig) error
	UpdateVolume(ctx context.Context, token string, dailyVolume string, lastResetTime time.Time) error
	UpdateStats(ctx context.Context, config *entities.TokenConfig) error
}

// SettingsRepository defines access to the bridge_settings singleton. The
// write surface is split by owner so concurrent writers never overwrite each
// other's columns: Update covers the admin-tunable parameters, UpdateStats
// the settlement counters, UpdateValidatorSet the attestation pair.
type SettingsRepository interface {
	Get(ctx context.Context) (*entities.BridgeSettings, error)
	Update(ctx context.Context, settings *entities.BridgeSettings) error
	UpdateStats(ctx context.Context, stats *entities.BridgeStats) error
	UpdateValidatorSet(ctx context.Context, threshold, validatorCount int64) error
	// Seed inserts the initial row if none exists yet.
	Seed(ctx context.Context, settings *entities.BridgeSettings) error
}

package usecases

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"chain-bridge.backend/internal/config"
	"chain-bridge.backend/internal/domain/entities"
	domainerrors "chain-bridge.backend/internal/domain/errors"
	"chain-bridge.backend/internal/domain/repositories"
	"chain-bridge.backend/pkg/logger"
)

// ConfigUsecase covers the remaining administrative surface: destination
// chain configuration and the global settings singleton.
type ConfigUsecase struct {
	chainRepo    repositories.ChainConfigRepository
	settingsRepo repositories.SettingsRepository
}

func NewConfigUsecase(chainRepo repositories.ChainConfigRepository, settingsRepo repositories.SettingsRepository) *ConfigUsecase {
	return &ConfigUsecase{chainRepo: chainRepo, settingsRepo: settingsRepo}
}

// UpsertChain creates or replaces a destination chain configuration
func (u *ConfigUsecase) UpsertChain(ctx context.Context, input *entities.UpsertChainConfigInput) (*entities.ChainConfig, error) {
	minAmount, err := parseBigAmount(input.MinAmount)
	if err != nil {
		return nil, domainerrors.BadRequest("invalid minTransactionAmount")
	}
	maxAmount, err := parseBigAmount(input.MaxAmount)
	if err != nil {
		return nil, domainerrors.BadRequest("invalid maxTransactionAmount")
	}
	if maxAmount.Cmp(minAmount) < 0 {
		return nil, domainerrors.BadRequest("maxTransactionAmount must be >= minTransactionAmount")
	}
	if _, err := parseBigAmount(input.MaxDailyVolume); err != nil {
		return nil, domainerrors.BadRequest("invalid maxDailyVolume")
	}

	existing, err := u.chainRepo.GetByChainID(ctx, input.ChainID)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		cfg := &entities.ChainConfig{
			ChainID:        input.ChainID,
			Name:           input.Name,
			Enabled:        *input.Enabled,
			RemoteBridge:   input.RemoteBridge,
			GasLimit:       input.GasLimit,
			GasPrice:       input.GasPrice,
			MinAmount:      input.MinAmount,
			MaxAmount:      input.MaxAmount,
			DailyVolume:    "0",
			MaxDailyVolume: input.MaxDailyVolume,
			LastResetTime:  time.Now(),
		}
		if err := u.chainRepo.Create(ctx, cfg); err != nil {
			return nil, err
		}
		logger.WithContext(ctx).Info("chain config created",
			zap.Uint64("chain_id", cfg.ChainID),
			zap.String("name", cfg.Name))
		return cfg, nil
	}

	logger.WithContext(ctx).Info("chain config updated",
		zap.Uint64("chain_id", existing.ChainID),
		zap.Bool("old_enabled", existing.Enabled),
		zap.Bool("new_enabled", *input.Enabled))

	existing.Name = input.Name
	existing.Enabled = *input.Enabled
	existing.RemoteBridge = input.RemoteBridge
	existing.GasLimit = input.GasLimit
	existing.GasPrice = input.GasPrice
	existing.MinAmount = input.MinAmount
	existing.MaxAmount = input.MaxAmount
	existing.MaxDailyVolume = input.MaxDailyVolume
	if err := u.chainRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (u *ConfigUsecase) GetChain(ctx context.Context, chainID uint64) (*entities.ChainConfig, error) {
	return u.chainRepo.GetByChainID(ctx, chainID)
}

func (u *ConfigUsecase) ListChains(ctx context.Context) ([]*entities.ChainConfig, error) {
	return u.chainRepo.List(ctx)
}

func (u *ConfigUsecase) GetSettings(ctx context.Context) (*entities.BridgeSettings, error) {
	return u.settingsRepo.Get(ctx)
}

// UpdateSettings applies a partial settings update; nil fields keep their
// current values. Every change is logged with old and new values.
func (u *ConfigUsecase) UpdateSettings(ctx context.Context, input *entities.UpdateSettingsInput) (*entities.BridgeSettings, error) {
	settings, err := u.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.WithContext(ctx)
	if input.Enabled != nil && *input.Enabled != settings.Enabled {
		log.Info("bridge pause switch toggled",
			zap.Bool("old", settings.Enabled), zap.Bool("new", *input.Enabled))
		settings.Enabled = *input.Enabled
	}
	if input.TransactionTimeout != nil {
		if *input.TransactionTimeout <= 0 {
			return nil, domainerrors.BadRequest("transactionTimeoutSeconds must be positive")
		}
		next := time.Duration(*input.TransactionTimeout) * time.Second
		log.Info("transaction timeout updated",
			zap.Duration("old", settings.TransactionTimeout), zap.Duration("new", next))
		settings.TransactionTimeout = next
	}
	if input.FeePercentageBps != nil {
		if *input.FeePercentageBps < 0 || *input.FeePercentageBps > BpsDenominator {
			return nil, domainerrors.BadRequest("feePercentage must be within [0, 10000] basis points")
		}
		log.Info("global fee percentage updated",
			zap.Int64("old", settings.FeePercentageBps), zap.Int64("new", *input.FeePercentageBps))
		settings.FeePercentageBps = *input.FeePercentageBps
	}
	if input.MinimumAmount != nil {
		if _, err := parseBigAmount(*input.MinimumAmount); err != nil {
			return nil, domainerrors.BadRequest("invalid minimumAmount")
		}
		settings.MinimumAmount = *input.MinimumAmount
	}
	if input.MaximumAmount != nil {
		if _, err := parseBigAmount(*input.MaximumAmount); err != nil {
			return nil, domainerrors.BadRequest("invalid maximumAmount")
		}
		settings.MaximumAmount = *input.MaximumAmount
	}
	minAmount, err := parseBigAmount(settings.MinimumAmount)
	if err != nil {
		return nil, err
	}
	maxAmount, err := parseBigAmount(settings.MaximumAmount)
	if err != nil {
		return nil, err
	}
	if maxAmount.Cmp(minAmount) < 0 {
		return nil, domainerrors.BadRequest("maximumAmount must be >= minimumAmount")
	}
	if input.FeeRecipient != nil {
		log.Info("fee recipient updated",
			zap.String("old", settings.FeeRecipient), zap.String("new", *input.FeeRecipient))
		settings.FeeRecipient = *input.FeeRecipient
	}

	if err := u.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SeedSettings installs the configured defaults on first boot. Subsequent
// boots leave the persisted row untouched.
func (u *ConfigUsecase) SeedSettings(ctx context.Context, cfg *config.BridgeConfig) error {
	return u.settingsRepo.Seed(ctx, &entities.BridgeSettings{
		Enabled:            true,
		CurrentChainID:     cfg.CurrentChainID,
		TransactionTimeout: cfg.TransactionTimeout,
		FeePercentageBps:   cfg.FeePercentageBps,
		MinimumAmount:      cfg.MinimumAmount,
		MaximumAmount:      cfg.MaximumAmount,
		FeeRecipient:       cfg.FeeRecipient,
		EscrowAccount:      cfg.EscrowAccount,
		Threshold:          1,
		Stats: entities.BridgeStats{
			TotalVolume:        "0",
			TotalFeesCollected: "0",
		},
	})
}

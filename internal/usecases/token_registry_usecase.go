package usecases

import (
	"context"
	"errors"
	"math/big"
	"time"

	"chain-bridge.backend/internal/domain/entities"
	domainerrors "chain-bridge.backend/internal/domain/errors"
	"chain-bridge.backend/internal/domain/repositories"
	"chain-bridge.backend/pkg/logger"
	"go.uber.org/zap"
)

// TokenRegistryUsecase owns per-token risk limits, fee tiers and rolling
// daily-volume counters. CheckAndReserve is a pure check: nothing is
// persisted until the caller confirms settlement via CommitVolume, so a
// request rejected downstream never charges volume.
type TokenRegistryUsecase struct {
	tokenRepo    repositories.TokenConfigRepository
	settingsRepo repositories.SettingsRepository
}

func NewTokenRegistryUsecase(
	tokenRepo repositories.TokenConfigRepository,
	settingsRepo repositories.SettingsRepository,
) *TokenRegistryUsecase {
	return &TokenRegistryUsecase{
		tokenRepo:    tokenRepo,
		settingsRepo: settingsRepo,
	}
}

// Upsert creates or replaces a token configuration (admin surface)
func (u *TokenRegistryUsecase) Upsert(ctx context.Context, input *entities.UpsertTokenConfigInput) (*entities.TokenConfig, error) {
	if input.FeeRateBps < 0 || input.FeeRateBps > BpsDenominator {
		return nil, domainerrors.BadRequest("feeRate must be within [0, 10000] basis points")
	}
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
	minFee, err := parseBigAmount(input.MinFee)
	if err != nil {
		return nil, domainerrors.BadRequest("invalid minFee")
	}
	maxFee, err := parseBigAmount(input.MaxFee)
	if err != nil {
		return nil, domainerrors.BadRequest("invalid maxFee")
	}
	if maxFee.Cmp(minFee) < 0 {
		return nil, domainerrors.BadRequest("maxFee must be >= minFee")
	}
	if _, err := parseBigAmount(input.MaxDailyVolume); err != nil {
		return nil, domainerrors.BadRequest("invalid maxDailyVolume")
	}

	existing, err := u.tokenRepo.GetByToken(ctx, input.Token)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		cfg := &entities.TokenConfig{
			Token:                   input.Token,
			Symbol:                  input.Symbol,
			Enabled:                 *input.Enabled,
			MinAmount:               input.MinAmount,
			MaxAmount:               input.MaxAmount,
			MaxDailyVolume:          input.MaxDailyVolume,
			FeeRateBps:              input.FeeRateBps,
			MinFee:                  input.MinFee,
			MaxFee:                  input.MaxFee,
			DailyVolume:             "0",
			LastResetTime:           time.Now(),
			TotalTransferred:        "0",
			TotalFeesCollected:      "0",
			AverageTransactionValue: "0",
		}
		if err := u.tokenRepo.Create(ctx, cfg); err != nil {
			return nil, err
		}
		logger.WithContext(ctx).Info("token config created",
			zap.String("token", cfg.Token),
			zap.Int64("fee_rate_bps", cfg.FeeRateBps))
		return cfg, nil
	}

	logger.WithContext(ctx).Info("token config updated",
		zap.String("token", existing.Token),
		zap.Bool("old_enabled", existing.Enabled),
		zap.Bool("new_enabled", *input.Enabled),
		zap.Int64("old_fee_rate_bps", existing.FeeRateBps),
		zap.Int64("new_fee_rate_bps", input.FeeRateBps))

	existing.Symbol = input.Symbol
	existing.Enabled = *input.Enabled
	existing.MinAmount = input.MinAmount
	existing.MaxAmount = input.MaxAmount
	existing.MaxDailyVolume = input.MaxDailyVolume
	existing.FeeRateBps = input.FeeRateBps
	existing.MinFee = input.MinFee
	existing.MaxFee = input.MaxFee
	if err := u.tokenRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (u *TokenRegistryUsecase) Get(ctx context.Context, token string) (*entities.TokenConfig, error) {
	return u.tokenRepo.GetByToken(ctx, token)
}

func (u *TokenRegistryUsecase) List(ctx context.Context) ([]*entities.TokenConfig, error) {
	return u.tokenRepo.List(ctx)
}

// Stats returns the reporting read model for one token
func (u *TokenRegistryUsecase) Stats(ctx context.Context, token string) (*entities.TokenStats, error) {
	cfg, err := u.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &entities.TokenStats{
		Token:                   cfg.Token,
		TotalTransferred:        cfg.TotalTransferred,
		TotalFeesCollected:      cfg.TotalFeesCollected,
		TransactionCount:        cfg.TransactionCount,
		AverageTransactionValue: cfg.AverageTransactionValue,
		SuccessRateBps:          cfg.SuccessRateBps,
		DailyVolume:             cfg.DailyVolume,
	}, nil
}

// effectiveDailyVolume applies the lazy reset rule without persisting it
func effectiveDailyVolume(cfg *entities.TokenConfig, now time.Time) (*big.Int, bool, error) {
	if !now.Before(cfg.LastResetTime.Add(DailyVolumeWindow)) {
		return big.NewInt(0), true, nil
	}
	vol, err := parseBigAmount(cfg.DailyVolume)
	if err != nil {
		return nil, false, err
	}
	return vol, false, nil
}

// CheckAndReserve validates a transfer against the token's limits and
// returns the fee. rateOverrideBps >= 0 substitutes the configured flat
// rate with a dynamic quote; the per-token min/max fee clamps still apply.
// When no config exists for the token, the global default percentage is
// applied with no caps. Read-only: volume is committed separately.
func (u *TokenRegistryUsecase) CheckAndReserve(ctx context.Context, token, amount string, rateOverrideBps int64, now time.Time) (string, error) {
	value, err := parseBigAmount(amount)
	if err != nil {
		return "", err
	}
	if value.Sign() <= 0 {
		return "", domainerrors.ErrInvalidAmount
	}

	cfg, err := u.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return "", err
		}
		return u.defaultFee(ctx, value, rateOverrideBps)
	}

	if !cfg.Enabled {
		return "", domainerrors.ErrTokenDisabled
	}

	minAmount, err := parseBigAmount(cfg.MinAmount)
	if err != nil {
		return "", err
	}
	if value.Cmp(minAmount) < 0 {
		return "", domainerrors.ErrBelowMinimum
	}
	maxAmount, err := parseBigAmount(cfg.MaxAmount)
	if err != nil {
		return "", err
	}
	if value.Cmp(maxAmount) > 0 {
		return "", domainerrors.ErrAboveMaximum
	}

	volume, _, err := effectiveDailyVolume(cfg, now)
	if err != nil {
		return "", err
	}
	maxDaily, err := parseBigAmount(cfg.MaxDailyVolume)
	if err != nil {
		return "", err
	}
	if new(big.Int).Add(volume, value).Cmp(maxDaily) > 0 {
		return "", domainerrors.ErrVolumeExceeded
	}

	rate := cfg.FeeRateBps
	if rateOverrideBps >= 0 {
		rate = rateOverrideBps
	}
	fee := feeForRate(value, rate)

	minFee, err := parseBigAmount(cfg.MinFee)
	if err != nil {
		return "", err
	}
	maxFee, err := parseBigAmount(cfg.MaxFee)
	if err != nil {
		return "", err
	}
	if fee.Cmp(minFee) < 0 {
		fee = minFee
	}
	// a zero maxFee means no cap, so an unset band never zeroes the fee
	if maxFee.Sign() > 0 && fee.Cmp(maxFee) > 0 {
		fee = maxFee
	}
	return fee.String(), nil
}

// defaultFee applies the global percentage with no caps for unconfigured
// tokens.
func (u *TokenRegistryUsecase) defaultFee(ctx context.Context, value *big.Int, rateOverrideBps int64) (string, error) {
	rate := rateOverrideBps
	if rate < 0 {
		settings, err := u.settingsRepo.Get(ctx)
		if err != nil {
			return "", err
		}
		rate = settings.FeePercentageBps
	}
	return feeForRate(value, rate).String(), nil
}

// CommitVolume charges the daily counter after the transfer actually
// executed. The lazy reset is re-evaluated here so a cap boundary crossed
// between check and commit still lands in the right window. No-op for
// unconfigured tokens.
func (u *TokenRegistryUsecase) CommitVolume(ctx context.Context, token, amount string, now time.Time) error {
	cfg, err := u.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		return err
	}
	value, err := parseBigAmount(amount)
	if err != nil {
		return err
	}
	volume, reset, err := effectiveDailyVolume(cfg, now)
	if err != nil {
		return err
	}
	lastReset := cfg.LastResetTime
	if reset {
		lastReset = now
	}
	return u.tokenRepo.UpdateVolume(ctx, token, new(big.Int).Add(volume, value).String(), lastReset)
}

// RecordSettled commits per-token statistics after a completed settlement
func (u *TokenRegistryUsecase) RecordSettled(ctx context.Context, token, amount, fee string) error {
	cfg, err := u.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		return err
	}
	value, err := parseBigAmount(amount)
	if err != nil {
		return err
	}
	feeValue, err := parseBigAmount(fee)
	if err != nil {
		return err
	}
	transferred, err := parseBigAmount(cfg.TotalTransferred)
	if err != nil {
		return err
	}
	collected, err := parseBigAmount(cfg.TotalFeesCollected)
	if err != nil {
		return err
	}

	cfg.TotalTransferred = new(big.Int).Add(transferred, value).String()
	cfg.TotalFeesCollected = new(big.Int).Add(collected, feeValue).String()
	cfg.TransactionCount++
	total, _ := parseBigAmount(cfg.TotalTransferred)
	cfg.AverageTransactionValue = new(big.Int).Quo(total, big.NewInt(cfg.TransactionCount)).String()
	cfg.CompletedCount++
	cfg.SuccessRateBps = successRateBps(cfg.CompletedCount, cfg.CancelledCount)
	return u.tokenRepo.UpdateStats(ctx, cfg)
}

// RecordCancelled commits the cancellation against the token's success rate
func (u *TokenRegistryUsecase) RecordCancelled(ctx context.Context, token string) error {
	cfg, err := u.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		return err
	}
	cfg.CancelledCount++
	cfg.SuccessRateBps = successRateBps(cfg.CompletedCount, cfg.CancelledCount)
	return u.tokenRepo.UpdateStats(ctx, cfg)
}

// feeForRate computes amount * rate / 10000 in integer arithmetic
func feeForRate(value *big.Int, rateBps int64) *big.Int {
	fee := new(big.Int).Mul(value, big.NewInt(rateBps))
	return fee.Quo(fee, big.NewInt(BpsDenominator))
}

// successRateBps is completed / settled in basis points
func successRateBps(completed, cancelled int64) int64 {
	settled := completed + cancelled
	if settled == 0 {
		return 0
	}
	return completed * BpsDenominator / settled
}

package usecases

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"chain-bridge.backend/internal/domain/entities"
	domainerrors "chain-bridge.backend/internal/domain/errors"
	"chain-bridge.backend/internal/domain/repositories"
	"chain-bridge.backend/internal/metrics"
	"chain-bridge.backend/pkg/logger"
)

// FeeEngineUsecase maintains per-chain adaptive fee state. Quote is pure
// and safe to call speculatively; TriggerUpdate and Optimize are the only
// write paths, and both go through the hysteresis threshold before
// committing anything.
type FeeEngineUsecase struct {
	feeRepo          repositories.DynamicFeeRepository
	adjustmentWindow time.Duration
	locks            *keyedMutex
}

func NewFeeEngineUsecase(feeRepo repositories.DynamicFeeRepository, adjustmentWindow time.Duration) *FeeEngineUsecase {
	return &FeeEngineUsecase{
		feeRepo:          feeRepo,
		adjustmentWindow: adjustmentWindow,
		locks:            newKeyedMutex(),
	}
}

// Configure creates or replaces the fee state for a chain (admin surface)
func (u *FeeEngineUsecase) Configure(ctx context.Context, chainID uint64, input *entities.ConfigureDynamicFeeInput) (*entities.DynamicFee, error) {
	if input.BaseFeeBps < 0 || input.BaseFeeBps > GlobalFeeCeilingBps {
		return nil, domainerrors.BadRequest("baseFee must be within [0, 10000] basis points")
	}
	if input.MaxFeeBps < input.MinFeeBps {
		return nil, domainerrors.BadRequest("maxFee must be >= minFee")
	}
	if input.AdjustmentThresholdBps <= 0 {
		return nil, domainerrors.BadRequest("feeAdjustmentThreshold must be positive")
	}

	existing, err := u.feeRepo.GetByChainID(ctx, chainID)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		fee := &entities.DynamicFee{
			ChainID:                chainID,
			BaseFeeBps:             input.BaseFeeBps,
			MarketConditionFactor:  input.MarketConditionFactor,
			NetworkCongestion:      input.NetworkCongestion,
			AdjustmentThresholdBps: input.AdjustmentThresholdBps,
			MinFeeBps:              input.MinFeeBps,
			MaxFeeBps:              input.MaxFeeBps,
			LastUpdateTime:         time.Now(),
			Enabled:                *input.Enabled,
		}
		if err := u.feeRepo.Create(ctx, fee); err != nil {
			return nil, err
		}
		logger.WithContext(ctx).Info("dynamic fee configured",
			zap.Uint64("chain_id", chainID),
			zap.Int64("base_fee_bps", fee.BaseFeeBps))
		return fee, nil
	}

	logger.WithContext(ctx).Info("dynamic fee reconfigured",
		zap.Uint64("chain_id", chainID),
		zap.Int64("old_base_fee_bps", existing.BaseFeeBps),
		zap.Int64("new_base_fee_bps", input.BaseFeeBps))

	existing.BaseFeeBps = input.BaseFeeBps
	existing.MarketConditionFactor = input.MarketConditionFactor
	existing.NetworkCongestion = input.NetworkCongestion
	existing.AdjustmentThresholdBps = input.AdjustmentThresholdBps
	existing.MinFeeBps = input.MinFeeBps
	existing.MaxFeeBps = input.MaxFeeBps
	existing.Enabled = *input.Enabled
	if err := u.feeRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (u *FeeEngineUsecase) Get(ctx context.Context, chainID uint64) (*entities.DynamicFee, error) {
	return u.feeRepo.GetByChainID(ctx, chainID)
}

// Quote computes the adaptive fee in basis points for a transfer. Pure: no
// state is touched, so settlement can always fetch a current number without
// mutating shared fee state.
func (u *FeeEngineUsecase) Quote(ctx context.Context, chainID uint64, amount string, now time.Time) (int64, error) {
	fee, err := u.feeRepo.GetByChainID(ctx, chainID)
	if err != nil {
		return 0, err
	}
	value, err := parseBigAmount(amount)
	if err != nil {
		return 0, err
	}
	return quoteFee(fee, value, now), nil
}

// quoteFee is the canonical fee formula. Disabled chains return the raw
// base fee. Components are additive: market pressure, network congestion,
// a decay for stale fee state, and a whole-unit surcharge for large
// transfers. The result is clamped to the chain's [minFee, maxFee] and
// then to the global ceiling.
func quoteFee(fee *entities.DynamicFee, amount *big.Int, now time.Time) int64 {
	if !fee.Enabled {
		return fee.BaseFeeBps
	}

	quoted := fee.BaseFeeBps
	quoted += fee.TransactionVolume * fee.MarketConditionFactor / 100
	quoted += fee.NetworkActivity * fee.NetworkCongestion / 100

	hours := int64(now.Sub(fee.LastUpdateTime) / time.Hour)
	if hours > 0 {
		decay := hours * FeeDecayPerHourBps
		if decay > FeeDecayCapBps {
			decay = FeeDecayCapBps
		}
		quoted -= decay
	}

	if amount.Cmp(oneTokenUnit) > 0 {
		units := new(big.Int).Quo(amount, oneTokenUnit)
		if units.IsInt64() {
			quoted += units.Int64()
		} else {
			quoted += GlobalFeeCeilingBps
		}
	}

	if quoted < fee.MinFeeBps {
		quoted = fee.MinFeeBps
	}
	if quoted > fee.MaxFeeBps {
		quoted = fee.MaxFeeBps
	}
	if quoted > GlobalFeeCeilingBps {
		quoted = GlobalFeeCeilingBps
	}
	if quoted < 0 {
		quoted = 0
	}
	return quoted
}

// TriggerUpdate recomputes the fee from an observed transfer and commits it
// when the delta clears the adjustment threshold. Rate-limited by the
// configured window; sub-threshold deltas are computed but never persisted.
func (u *FeeEngineUsecase) TriggerUpdate(ctx context.Context, chainID uint64, input *entities.TriggerFeeUpdateInput) (*entities.DynamicFee, error) {
	unlock := u.locks.Lock(feeKey(chainID))
	defer unlock()

	fee, err := u.feeRepo.GetByChainID(ctx, chainID)
	if err != nil {
		return nil, err
	}
	value, err := parseBigAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if now.Before(fee.LastUpdateTime.Add(u.adjustmentWindow)) {
		return nil, domainerrors.ErrTooSoon
	}

	quoted := quoteFee(fee, value, now)

	delta := quoted - fee.BaseFeeBps
	if delta < 0 {
		delta = -delta
	}
	if delta < fee.AdjustmentThresholdBps {
		// hysteresis: the quote is computed but nothing is persisted
		return fee, nil
	}

	fee.TransactionVolume++
	fee.NetworkActivity++
	return u.commitFee(ctx, fee, quoted, now, "market conditions")
}

// Optimize recomputes the base fee from the rolling history average and
// commits when the delta clears the threshold. Admin-only; bypasses the
// rate-limit window.
func (u *FeeEngineUsecase) Optimize(ctx context.Context, chainID uint64) (*entities.DynamicFee, error) {
	unlock := u.locks.Lock(feeKey(chainID))
	defer unlock()

	fee, err := u.feeRepo.GetByChainID(ctx, chainID)
	if err != nil {
		return nil, err
	}

	history, err := u.feeRepo.ListHistory(ctx, chainID, 10)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return fee, nil
	}

	var sum int64
	for _, entry := range history {
		sum += entry.FeeBps
	}
	average := sum / int64(len(history))

	delta := average - fee.BaseFeeBps
	if delta < 0 {
		delta = -delta
	}
	if delta < fee.AdjustmentThresholdBps {
		return fee, nil
	}
	return u.commitFee(ctx, fee, average, time.Now(), "history optimization")
}

// commitFee persists a fee change with its audit trail: the new base fee,
// one immutable history entry, and one adjustment record naming the reason.
func (u *FeeEngineUsecase) commitFee(ctx context.Context, fee *entities.DynamicFee, newFeeBps int64, now time.Time, reason string) (*entities.DynamicFee, error) {
	oldFee := fee.BaseFeeBps
	fee.BaseFeeBps = newFeeBps
	fee.LastUpdateTime = now
	if err := u.feeRepo.Update(ctx, fee); err != nil {
		return nil, err
	}
	if err := u.feeRepo.AppendHistory(ctx, &entities.FeeHistoryEntry{
		ChainID:    fee.ChainID,
		FeeBps:     newFeeBps,
		RecordedAt: now,
	}); err != nil {
		return nil, err
	}
	if err := u.feeRepo.AppendAdjustment(ctx, &entities.FeeAdjustment{
		ChainID:    fee.ChainID,
		OldFeeBps:  oldFee,
		NewFeeBps:  newFeeBps,
		Reason:     reason,
		AdjustedAt: now,
	}); err != nil {
		return nil, err
	}

	chainLabel := fmt.Sprintf("%d", fee.ChainID)
	metrics.FeeQuoteBps.WithLabelValues(chainLabel).Set(float64(newFeeBps))
	metrics.FeeAdjustments.WithLabelValues(chainLabel).Inc()
	logger.WithContext(ctx).Info("dynamic fee adjusted",
		zap.Uint64("chain_id", fee.ChainID),
		zap.Int64("old_fee_bps", oldFee),
		zap.Int64("new_fee_bps", newFeeBps),
		zap.String("reason", reason))
	return fee, nil
}

// History returns the last N committed fees, newest first
func (u *FeeEngineUsecase) History(ctx context.Context, chainID uint64, limit int) ([]*entities.FeeHistoryEntry, error) {
	if limit <= 0 || limit > FeeHistoryDefaultLimit {
		limit = FeeHistoryDefaultLimit
	}
	return u.feeRepo.ListHistory(ctx, chainID, limit)
}

// Adjustments returns the last N adjustment records, newest first
func (u *FeeEngineUsecase) Adjustments(ctx context.Context, chainID uint64, limit int) ([]*entities.FeeAdjustment, error) {
	if limit <= 0 || limit > FeeHistoryDefaultLimit {
		limit = FeeHistoryDefaultLimit
	}
	return u.feeRepo.ListAdjustments(ctx, chainID, limit)
}

// MarketData assembles the derived reporting read model for one chain
func (u *FeeEngineUsecase) MarketData(ctx context.Context, chainID uint64) (*entities.FeeMarketData, error) {
	fee, err := u.feeRepo.GetByChainID(ctx, chainID)
	if err != nil {
		return nil, err
	}
	count, err := u.feeRepo.CountHistory(ctx, chainID)
	if err != nil {
		return nil, err
	}
	recent, err := u.feeRepo.ListHistory(ctx, chainID, 10)
	if err != nil {
		return nil, err
	}
	average := fee.BaseFeeBps
	if len(recent) > 0 {
		var sum int64
		for _, entry := range recent {
			sum += entry.FeeBps
		}
		average = sum / int64(len(recent))
	}
	return &entities.FeeMarketData{
		ChainID:        chainID,
		CurrentFeeBps:  fee.BaseFeeBps,
		AverageFeeBps:  average,
		HistoryLength:  count,
		LastUpdateTime: fee.LastUpdateTime,
		Enabled:        fee.Enabled,
	}, nil
}

func feeKey(chainID uint64) string {
	return fmt.Sprintf("fee:%d", chainID)
}

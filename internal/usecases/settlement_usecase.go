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
	"chain-bridge.backend/pkg/utils"
)

// SettlementUsecase orchestrates the request lifecycle: initiate locks the
// gross amount in escrow and records the intent, complete releases the net
// amount to the receiver and routes the fee, cancel refunds the sender
// after the timeout. Every operation runs inside one UnitOfWork so any
// validation failure aborts with no partial state change, and per-key locks
// serialize callers racing on the same request, token or chain counter as
// well as the shared stats counters on the settings row.
type SettlementUsecase struct {
	requestRepo   repositories.BridgeRequestRepository
	chainRepo     repositories.ChainConfigRepository
	settingsRepo  repositories.SettingsRepository
	balanceRepo   repositories.BalanceRepository
	tokenRegistry *TokenRegistryUsecase
	feeEngine     *FeeEngineUsecase
	validators    *ValidatorUsecase
	uow           repositories.UnitOfWork
	locks         *keyedMutex
}

func NewSettlementUsecase(
	requestRepo repositories.BridgeRequestRepository,
	chainRepo repositories.ChainConfigRepository,
	settingsRepo repositories.SettingsRepository,
	balanceRepo repositories.BalanceRepository,
	tokenRegistry *TokenRegistryUsecase,
	feeEngine *FeeEngineUsecase,
	validators *ValidatorUsecase,
	uow repositories.UnitOfWork,
) *SettlementUsecase {
	return &SettlementUsecase{
		requestRepo:   requestRepo,
		chainRepo:     chainRepo,
		settingsRepo:  settingsRepo,
		balanceRepo:   balanceRepo,
		tokenRegistry: tokenRegistry,
		feeEngine:     feeEngine,
		validators:    validators,
		uow:           uow,
		locks:         newKeyedMutex(),
	}
}

func requestKey(requestID uint64) string { return fmt.Sprintf("request:%d", requestID) }
func tokenKey(token string) string       { return "token:" + token }
func chainKey(chainID uint64) string     { return fmt.Sprintf("chain:%d", chainID) }

// settingsStatsKey serializes the read-modify-write on the shared stats
// counters across all settlement operations, whatever token or chain they
// touch. Always acquired last to keep the lock order total.
const settingsStatsKey = "settings-stats"

// Initiate validates and records a new transfer, locking the gross amount
// in the escrow account. The fee stays escrowed until completion routes it
// to the fee recipient; cancellation refunds it with the rest.
func (u *SettlementUsecase) Initiate(ctx context.Context, input *entities.InitiateBridgeInput) (*entities.InitiateBridgeResponse, error) {
	started := time.Now()
	defer func() {
		metrics.SettlementDuration.WithLabelValues("initiate").Observe(time.Since(started).Seconds())
	}()

	// counters for the same token or chain must not interleave
	unlockToken := u.locks.Lock(tokenKey(input.Token))
	defer unlockToken()
	unlockChain := u.locks.Lock(chainKey(input.ChainID))
	defer unlockChain()
	unlockSettings := u.locks.Lock(settingsStatsKey)
	defer unlockSettings()

	var response *entities.InitiateBridgeResponse
	err := u.uow.Do(ctx, func(ctx context.Context) error {
		settings, err := u.settingsRepo.Get(ctx)
		if err != nil {
			return err
		}
		if !settings.Enabled {
			return domainerrors.ErrBridgePaused
		}

		now := time.Now()
		if err := u.validateRouting(ctx, input, settings, now); err != nil {
			return err
		}

		amount, err := parseBigAmount(input.Amount)
		if err != nil {
			return err
		}
		if amount.Sign() <= 0 {
			return domainerrors.ErrInvalidAmount
		}
		if err := checkGlobalBounds(amount, settings); err != nil {
			return err
		}

		fee, err := u.quoteFee(ctx, input, now)
		if err != nil {
			return err
		}
		feeValue, err := parseBigAmount(fee)
		if err != nil {
			return err
		}
		if feeValue.Cmp(amount) >= 0 {
			return domainerrors.ErrFeeTooHigh
		}
		net := new(big.Int).Sub(amount, feeValue)

		// lock the gross amount; fails atomically on insufficient balance
		if err := u.balanceRepo.Transfer(ctx, input.Token, input.Sender, settings.EscrowAccount, input.Amount); err != nil {
			return err
		}

		txHash, err := ComputeCommitment(input.Sender, input.Receiver, input.Token, net.String(), input.ChainID, now)
		if err != nil {
			return err
		}

		request := &entities.BridgeRequest{
			Sender:        input.Sender,
			Receiver:      input.Receiver,
			Token:         input.Token,
			Amount:        net.String(),
			Fee:           fee,
			SourceChainID: input.SourceChainID,
			DestChainID:   input.DestChainID,
			ChainID:       input.ChainID,
			TxHash:        txHash,
			Timestamp:     now,
			Status:        entities.RequestStatusCreated,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := u.requestRepo.Create(ctx, request); err != nil {
			return err
		}

		if err := u.tokenRegistry.CommitVolume(ctx, input.Token, input.Amount, now); err != nil {
			return err
		}
		if err := u.commitChainVolume(ctx, input.ChainID, amount, now); err != nil {
			return err
		}

		settings.Stats.TotalTransactions++
		settings.Stats.PendingTransactions++
		totalVolume, err := utils.AddAmounts(settings.Stats.TotalVolume, input.Amount)
		if err != nil {
			return err
		}
		settings.Stats.TotalVolume = totalVolume
		if err := u.settingsRepo.UpdateStats(ctx, &settings.Stats); err != nil {
			return err
		}

		response = &entities.InitiateBridgeResponse{
			RequestID: request.RequestID,
			TxHash:    txHash,
			Amount:    net.String(),
			Fee:       fee,
			Status:    entities.RequestStatusCreated,
			Timestamp: now,
			ExpiresAt: now.Add(settings.TransactionTimeout),
		}

		logger.WithContext(ctx).Info("bridge request initiated",
			zap.Uint64("request_id", request.RequestID),
			zap.String("token", input.Token),
			zap.Uint64("dest_chain_id", input.DestChainID),
			zap.String("amount", net.String()),
			zap.String("fee", fee))
		return nil
	})
	if err != nil {
		metrics.BridgeRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	metrics.BridgeInitiated.WithLabelValues(input.Token, fmt.Sprintf("%d", input.DestChainID)).Inc()
	metrics.PendingRequests.Inc()
	return response, nil
}

func (u *SettlementUsecase) validateRouting(ctx context.Context, input *entities.InitiateBridgeInput, settings *entities.BridgeSettings, now time.Time) error {
	if input.ChainID == input.SourceChainID {
		return domainerrors.ErrSameChain
	}
	if input.SourceChainID != settings.CurrentChainID {
		return domainerrors.ErrWrongSource
	}
	if input.DestChainID != input.ChainID {
		return domainerrors.ErrWrongDest
	}

	chainCfg, err := u.chainRepo.GetByChainID(ctx, input.ChainID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrChainDisabled
		}
		return err
	}
	if !chainCfg.Enabled {
		return domainerrors.ErrChainDisabled
	}

	amount, err := parseBigAmount(input.Amount)
	if err != nil {
		return err
	}
	minAmount, err := parseBigAmount(chainCfg.MinAmount)
	if err != nil {
		return err
	}
	if amount.Cmp(minAmount) < 0 {
		return domainerrors.ErrBelowMinimum
	}
	maxAmount, err := parseBigAmount(chainCfg.MaxAmount)
	if err != nil {
		return err
	}
	if amount.Cmp(maxAmount) > 0 {
		return domainerrors.ErrAboveMaximum
	}

	volume, _, err := effectiveChainVolume(chainCfg, now)
	if err != nil {
		return err
	}
	maxDaily, err := parseBigAmount(chainCfg.MaxDailyVolume)
	if err != nil {
		return err
	}
	if new(big.Int).Add(volume, amount).Cmp(maxDaily) > 0 {
		return domainerrors.ErrVolumeExceeded
	}
	return nil
}

func checkGlobalBounds(amount *big.Int, settings *entities.BridgeSettings) error {
	minAmount, err := parseBigAmount(settings.MinimumAmount)
	if err != nil {
		return err
	}
	if amount.Cmp(minAmount) < 0 {
		return domainerrors.ErrBelowMinimum
	}
	maxAmount, err := parseBigAmount(settings.MaximumAmount)
	if err != nil {
		return err
	}
	if amount.Cmp(maxAmount) > 0 {
		return domainerrors.ErrAboveMaximum
	}
	return nil
}

// quoteFee asks the fee engine for a dynamic rate; chains without fee state
// fall through to the token registry's configured rate (override -1).
func (u *SettlementUsecase) quoteFee(ctx context.Context, input *entities.InitiateBridgeInput, now time.Time) (string, error) {
	rateOverride := int64(-1)
	quote, err := u.feeEngine.Quote(ctx, input.ChainID, input.Amount, now)
	if err == nil {
		rateOverride = quote
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return "", err
	}
	return u.tokenRegistry.CheckAndReserve(ctx, input.Token, input.Amount, rateOverride, now)
}

func effectiveChainVolume(cfg *entities.ChainConfig, now time.Time) (*big.Int, bool, error) {
	if !now.Before(cfg.LastResetTime.Add(DailyVolumeWindow)) {
		return big.NewInt(0), true, nil
	}
	vol, err := parseBigAmount(cfg.DailyVolume)
	if err != nil {
		return nil, false, err
	}
	return vol, false, nil
}

func (u *SettlementUsecase) commitChainVolume(ctx context.Context, chainID uint64, amount *big.Int, now time.Time) error {
	cfg, err := u.chainRepo.GetByChainID(ctx, chainID)
	if err != nil {
		return err
	}
	volume, reset, err := effectiveChainVolume(cfg, now)
	if err != nil {
		return err
	}
	lastReset := cfg.LastResetTime
	if reset {
		lastReset = now
	}
	return u.chainRepo.UpdateVolume(ctx, chainID, new(big.Int).Add(volume, amount).String(), lastReset)
}

// Complete finalizes a request inside its timeout window. The claim must
// carry the registered commitment and a valid attestation: either
// threshold signatures or a Merkle proof against the chain's root. On
// success the net amount is released to the receiver and the escrowed fee
// routed to the fee recipient.
func (u *SettlementUsecase) Complete(ctx context.Context, input *entities.CompleteBridgeInput) (*entities.BridgeRequest, error) {
	started := time.Now()
	defer func() {
		metrics.SettlementDuration.WithLabelValues("complete").Observe(time.Since(started).Seconds())
	}()

	unlock := u.locks.Lock(requestKey(input.RequestID))
	defer unlock()
	unlockSettings := u.locks.Lock(settingsStatsKey)
	defer unlockSettings()

	var completed *entities.BridgeRequest
	err := u.uow.Do(ctx, func(ctx context.Context) error {
		settings, err := u.settingsRepo.Get(ctx)
		if err != nil {
			return err
		}

		request, err := u.requestRepo.GetByID(ctx, input.RequestID)
		if err != nil {
			return err
		}
		if request.Finalized() {
			return domainerrors.ErrAlreadyFinalized
		}

		seen, err := u.requestRepo.TxHashSeen(ctx, input.TxHash)
		if err != nil {
			return err
		}
		if !seen {
			return domainerrors.ErrUnknownCommitment
		}

		now := time.Now()
		if !request.CompletableAt(now, settings.TransactionTimeout) {
			return domainerrors.ErrExpiredWindow
		}

		// recompute over the stored fields to detect tampering
		expected, err := ComputeCommitment(request.Sender, request.Receiver, request.Token, request.Amount, request.ChainID, request.Timestamp)
		if err != nil {
			return err
		}
		if expected != input.TxHash {
			return domainerrors.ErrHashMismatch
		}

		if err := u.verifyAttestation(ctx, request, input); err != nil {
			return err
		}

		if err := u.requestRepo.MarkCompleted(ctx, request.RequestID); err != nil {
			return err
		}
		if err := u.balanceRepo.Transfer(ctx, request.Token, settings.EscrowAccount, request.Receiver, request.Amount); err != nil {
			return err
		}
		if err := u.balanceRepo.Transfer(ctx, request.Token, settings.EscrowAccount, settings.FeeRecipient, request.Fee); err != nil {
			return err
		}
		if err := u.tokenRegistry.RecordSettled(ctx, request.Token, request.Amount, request.Fee); err != nil {
			return err
		}

		settings.Stats.PendingTransactions--
		settings.Stats.CompletedTransactions++
		collected, err := utils.AddAmounts(settings.Stats.TotalFeesCollected, request.Fee)
		if err != nil {
			return err
		}
		settings.Stats.TotalFeesCollected = collected
		if err := u.settingsRepo.UpdateStats(ctx, &settings.Stats); err != nil {
			return err
		}

		request.Status = entities.RequestStatusCompleted
		request.CompletedAt.SetValid(now)
		completed = request

		logger.WithContext(ctx).Info("bridge request completed",
			zap.Uint64("request_id", request.RequestID),
			zap.String("token", request.Token),
			zap.String("amount", request.Amount),
			zap.String("fee", request.Fee))
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BridgeCompleted.WithLabelValues(completed.Token).Inc()
	metrics.PendingRequests.Dec()
	return completed, nil
}

func (u *SettlementUsecase) verifyAttestation(ctx context.Context, request *entities.BridgeRequest, input *entities.CompleteBridgeInput) error {
	if len(input.Signatures) > 0 {
		return u.validators.VerifySignatures(ctx, input.TxHash, input.Signatures)
	}
	if len(input.MerkleProof) > 0 {
		return u.validators.VerifyProof(ctx, request.ChainID, input.TxHash, input.MerkleProof)
	}
	return domainerrors.ErrInsufficientSignatures
}

// Cancel lets the original sender reclaim a transfer once the timeout has
// elapsed. The full gross amount, fee included, returns to the sender.
func (u *SettlementUsecase) Cancel(ctx context.Context, input *entities.CancelBridgeInput) (*entities.BridgeRequest, error) {
	started := time.Now()
	defer func() {
		metrics.SettlementDuration.WithLabelValues("cancel").Observe(time.Since(started).Seconds())
	}()

	unlock := u.locks.Lock(requestKey(input.RequestID))
	defer unlock()
	unlockSettings := u.locks.Lock(settingsStatsKey)
	defer unlockSettings()

	var cancelled *entities.BridgeRequest
	err := u.uow.Do(ctx, func(ctx context.Context) error {
		settings, err := u.settingsRepo.Get(ctx)
		if err != nil {
			return err
		}

		request, err := u.requestRepo.GetByID(ctx, input.RequestID)
		if err != nil {
			return err
		}
		if request.Sender != input.Sender {
			return domainerrors.ErrNotSender
		}
		if request.Finalized() {
			return domainerrors.ErrAlreadyFinalized
		}

		now := time.Now()
		if !request.CancellableAt(now, settings.TransactionTimeout) {
			return domainerrors.ErrWindowNotElapsed
		}

		if err := u.requestRepo.MarkCancelled(ctx, request.RequestID); err != nil {
			return err
		}

		gross, err := utils.AddAmounts(request.Amount, request.Fee)
		if err != nil {
			return err
		}
		if err := u.balanceRepo.Transfer(ctx, request.Token, settings.EscrowAccount, request.Sender, gross); err != nil {
			return err
		}
		if err := u.tokenRegistry.RecordCancelled(ctx, request.Token); err != nil {
			return err
		}

		settings.Stats.PendingTransactions--
		settings.Stats.CancelledTransactions++
		if err := u.settingsRepo.UpdateStats(ctx, &settings.Stats); err != nil {
			return err
		}

		request.Status = entities.RequestStatusCancelled
		request.CompletedAt.SetValid(now)
		cancelled = request

		logger.WithContext(ctx).Info("bridge request cancelled",
			zap.Uint64("request_id", request.RequestID),
			zap.String("token", request.Token),
			zap.String("refund", gross))
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BridgeCancelled.WithLabelValues(cancelled.Token).Inc()
	metrics.PendingRequests.Dec()
	return cancelled, nil
}

// Get returns one request by id
func (u *SettlementUsecase) Get(ctx context.Context, requestID uint64) (*entities.BridgeRequest, error) {
	return u.requestRepo.GetByID(ctx, requestID)
}

// List returns requests, optionally filtered by status, newest first
func (u *SettlementUsecase) List(ctx context.Context, status *entities.RequestStatus, pagination utils.PaginationParams) ([]*entities.BridgeRequest, int64, error) {
	return u.requestRepo.List(ctx, status, pagination)
}

// Stats returns the aggregate counters owned by this state machine
func (u *SettlementUsecase) Stats(ctx context.Context) (*entities.BridgeStats, error) {
	settings, err := u.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	stats := settings.Stats
	return &stats, nil
}

// rejectReason maps a validation failure onto a bounded metric label
func rejectReason(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrBridgePaused):
		return "paused"
	case errors.Is(err, domainerrors.ErrChainDisabled):
		return "chain_disabled"
	case errors.Is(err, domainerrors.ErrTokenDisabled):
		return "token_disabled"
	case errors.Is(err, domainerrors.ErrSameChain),
		errors.Is(err, domainerrors.ErrWrongSource),
		errors.Is(err, domainerrors.ErrWrongDest):
		return "routing"
	case errors.Is(err, domainerrors.ErrBelowMinimum),
		errors.Is(err, domainerrors.ErrAboveMaximum):
		return "bounds"
	case errors.Is(err, domainerrors.ErrVolumeExceeded):
		return "volume"
	case errors.Is(err, domainerrors.ErrInsufficientFunds):
		return "balance"
	case errors.Is(err, domainerrors.ErrReplayedTxHash):
		return "replay"
	default:
		return "other"
	}
}

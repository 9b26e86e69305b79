package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"chain-bridge.backend/internal/domain/entities"
	domainerrors "chain-bridge.backend/internal/domain/errors"
	"chain-bridge.backend/internal/domain/repositories"
	"chain-bridge.backend/internal/metrics"
	"chain-bridge.backend/pkg/logger"
)

// ValidatorUsecase owns the attestor set and its signature threshold, plus
// the per-chain Merkle roots used for proof-based attestation. The count
// and threshold live on the settings singleton; every mutation keeps
// 1 <= threshold <= count while the set is non-empty.
type ValidatorUsecase struct {
	validatorRepo repositories.ValidatorRepository
	merkleRepo    repositories.MerkleRootRepository
	settingsRepo  repositories.SettingsRepository
	uow           repositories.UnitOfWork
	locks         *keyedMutex
}

func NewValidatorUsecase(
	validatorRepo repositories.ValidatorRepository,
	merkleRepo repositories.MerkleRootRepository,
	settingsRepo repositories.SettingsRepository,
	uow repositories.UnitOfWork,
) *ValidatorUsecase {
	return &ValidatorUsecase{
		validatorRepo: validatorRepo,
		merkleRepo:    merkleRepo,
		settingsRepo:  settingsRepo,
		uow:           uow,
		locks:         newKeyedMutex(),
	}
}

const validatorSetKey = "validator-set"

// Set returns the current attestor set with its threshold
func (u *ValidatorUsecase) Set(ctx context.Context) (*entities.ValidatorSet, error) {
	validators, err := u.validatorRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := u.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	set := &entities.ValidatorSet{
		Validators: make([]entities.Validator, 0, len(validators)),
		Count:      settings.ValidatorCount,
		Threshold:  settings.Threshold,
	}
	for _, v := range validators {
		set.Validators = append(set.Validators, *v)
	}
	return set, nil
}

// Add registers a new attestor. The first validator pins the threshold to 1.
func (u *ValidatorUsecase) Add(ctx context.Context, input *entities.AddValidatorInput) error {
	if !common.IsHexAddress(input.Address) {
		return domainerrors.ErrInvalidAddress
	}
	address := strings.ToLower(input.Address)

	unlock := u.locks.Lock(validatorSetKey)
	defer unlock()

	return u.uow.Do(ctx, func(ctx context.Context) error {
		if err := u.validatorRepo.Add(ctx, &entities.Validator{
			Address: address,
			AddedAt: time.Now(),
		}); err != nil {
			return err
		}
		settings, err := u.settingsRepo.Get(ctx)
		if err != nil {
			return err
		}
		settings.ValidatorCount++
		if settings.ValidatorCount == 1 {
			settings.Threshold = 1
		}
		if err := u.settingsRepo.UpdateValidatorSet(ctx, settings.Threshold, settings.ValidatorCount); err != nil {
			return err
		}
		logger.WithContext(ctx).Info("validator added",
			zap.String("address", address),
			zap.Int64("validator_count", settings.ValidatorCount),
			zap.Int64("threshold", settings.Threshold))
		return nil
	})
}

// Remove deregisters an attestor. The last validator cannot be removed, and
// a removal that would leave threshold > count reduces the threshold to the
// new count.
func (u *ValidatorUsecase) Remove(ctx context.Context, address string) error {
	address = strings.ToLower(address)

	unlock := u.locks.Lock(validatorSetKey)
	defer unlock()

	return u.uow.Do(ctx, func(ctx context.Context) error {
		settings, err := u.settingsRepo.Get(ctx)
		if err != nil {
			return err
		}
		if settings.ValidatorCount <= 1 {
			return domainerrors.ErrLastValidator
		}
		if err := u.validatorRepo.Remove(ctx, address); err != nil {
			return err
		}
		settings.ValidatorCount--
		oldThreshold := settings.Threshold
		if settings.Threshold > settings.ValidatorCount {
			settings.Threshold = settings.ValidatorCount
		}
		if err := u.settingsRepo.UpdateValidatorSet(ctx, settings.Threshold, settings.ValidatorCount); err != nil {
			return err
		}
		logger.WithContext(ctx).Info("validator removed",
			zap.String("address", address),
			zap.Int64("validator_count", settings.ValidatorCount),
			zap.Int64("old_threshold", oldThreshold),
			zap.Int64("new_threshold", settings.Threshold))
		return nil
	})
}

// SetThreshold updates the minimum signature count (admin surface)
func (u *ValidatorUsecase) SetThreshold(ctx context.Context, threshold int64) error {
	unlock := u.locks.Lock(validatorSetKey)
	defer unlock()

	return u.uow.Do(ctx, func(ctx context.Context) error {
		settings, err := u.settingsRepo.Get(ctx)
		if err != nil {
			return err
		}
		if threshold < 1 || threshold > settings.ValidatorCount {
			return domainerrors.ErrThresholdOutOfRange
		}
		old := settings.Threshold
		settings.Threshold = threshold
		if err := u.settingsRepo.UpdateValidatorSet(ctx, threshold, settings.ValidatorCount); err != nil {
			return err
		}
		logger.WithContext(ctx).Info("threshold updated",
			zap.Int64("old_threshold", old),
			zap.Int64("new_threshold", threshold))
		return nil
	})
}

// VerifySignatures checks a threshold attestation over a commitment.
// Signatures from unknown signers and duplicate signers are ignored; the
// distinct validator count must meet the threshold.
func (u *ValidatorUsecase) VerifySignatures(ctx context.Context, commitment string, signatures []string) error {
	settings, err := u.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(signatures))
	var valid int64
	for _, sig := range signatures {
		signer, err := RecoverSigner(commitment, sig)
		if err != nil {
			continue
		}
		if seen[signer] {
			continue
		}
		ok, err := u.validatorRepo.IsValidator(ctx, signer)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		seen[signer] = true
		valid++
	}

	if valid < settings.Threshold {
		metrics.SignatureVerifications.WithLabelValues("rejected").Inc()
		return domainerrors.ErrInsufficientSignatures
	}
	metrics.SignatureVerifications.WithLabelValues("accepted").Inc()
	return nil
}

// SetMerkleRoot registers or replaces the attestation root for a chain
// (admin surface)
func (u *ValidatorUsecase) SetMerkleRoot(ctx context.Context, input *entities.SetMerkleRootInput) error {
	expiresAt := time.Unix(input.ExpiresAt, 0)
	if !expiresAt.After(time.Now()) {
		return domainerrors.BadRequest("expiresAt must be in the future")
	}
	old, err := u.merkleRepo.GetByChainID(ctx, input.ChainID)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return err
	}
	if err := u.merkleRepo.Set(ctx, &entities.MerkleRoot{
		ChainID:   input.ChainID,
		Root:      input.Root,
		ExpiresAt: expiresAt,
	}); err != nil {
		return err
	}
	oldRoot := ""
	if old != nil {
		oldRoot = old.Root
	}
	logger.WithContext(ctx).Info("merkle root registered",
		zap.Uint64("chain_id", input.ChainID),
		zap.String("old_root", oldRoot),
		zap.String("new_root", input.Root))
	return nil
}

// VerifyProof checks a commitment's membership against the chain's
// registered root. Expired roots reject with ErrRootExpired.
func (u *ValidatorUsecase) VerifyProof(ctx context.Context, chainID uint64, commitment string, proof []string) error {
	root, err := u.merkleRepo.GetByChainID(ctx, chainID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrInvalidProof
		}
		return err
	}
	if !time.Now().Before(root.ExpiresAt) {
		return domainerrors.ErrRootExpired
	}
	if !VerifyMerkleProof(commitment, proof, root.Root) {
		return domainerrors.ErrInvalidProof
	}
	return nil
}

package repositories

import (
	"context"
	"errors"
	"math/big"
	"time"

	"gorm.io/gorm"

	domainerrors "chain-bridge.backend/internal/domain/errors"
	domainrepos "chain-bridge.backend/internal/domain/repositories"
	"chain-bridge.backend/internal/infrastructure/models"
	"chain-bridge.backend/pkg/utils"
)

type balanceRepo struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) domainrepos.BalanceRepository {
	return &balanceRepo{db: db}
}

func (r *balanceRepo) BalanceOf(ctx context.Context, token, account string) (string, error) {
	var m models.Balance
	db := GetDB(ctx, r.db)
	err := db.WithContext(ctx).Where("token = ? AND account = ?", token, account).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "0", nil
		}
		return "", err
	}
	return m.Amount, nil
}

// Transfer debits from and credits to inside whatever transaction is on the
// context, so a later rollback undoes both legs together.
func (r *balanceRepo) Transfer(ctx context.Context, token, from, to, amount string) error {
	value, err := utils.ParseAmount(amount)
	if err != nil {
		return domainerrors.ErrInvalidAmount
	}
	if value.Sign() == 0 {
		return nil
	}
	if err := r.debit(ctx, token, from, value); err != nil {
		return err
	}
	return r.credit(ctx, token, to, value)
}

func (r *balanceRepo) Mint(ctx context.Context, token, account, amount string) error {
	value, err := utils.ParseAmount(amount)
	if err != nil {
		return domainerrors.ErrInvalidAmount
	}
	return r.credit(ctx, token, account, value)
}

func (r *balanceRepo) debit(ctx context.Context, token, account string, value *big.Int) error {
	db := GetDB(ctx, r.db)
	var m models.Balance
	err := db.WithContext(ctx).Where("token = ? AND account = ?", token, account).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrInsufficientFunds
		}
		return err
	}
	held, err := utils.ParseAmount(m.Amount)
	if err != nil {
		return err
	}
	if held.Cmp(value) < 0 {
		return domainerrors.ErrInsufficientFunds
	}
	remaining := new(big.Int).Sub(held, value)
	result := db.WithContext(ctx).Model(&models.Balance{}).
		Where("token = ? AND account = ? AND amount = ?", token, account, m.Amount).
		Updates(map[string]interface{}{
			"amount":     remaining.String(),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// the row moved under us; the serialized caller should never hit this
		return domainerrors.ErrInsufficientFunds
	}
	return nil
}

func (r *balanceRepo) credit(ctx context.Context, token, account string, value *big.Int) error {
	db := GetDB(ctx, r.db)
	var m models.Balance
	err := db.WithContext(ctx).Where("token = ? AND account = ?", token, account).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.WithContext(ctx).Create(&models.Balance{
				Token:     token,
				Account:   account,
				Amount:    value.String(),
				UpdatedAt: time.Now(),
			}).Error
		}
		return err
	}
	held, err := utils.ParseAmount(m.Amount)
	if err != nil {
		return err
	}
	next := new(big.Int).Add(held, value)
	return db.WithContext(ctx).Model(&models.Balance{}).
		Where("token = ? AND account = ?", token, account).
		Updates(map[string]interface{}{
			"amount":     next.String(),
			"updated_at": time.Now(),
		}).Error
}

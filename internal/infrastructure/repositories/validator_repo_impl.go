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

type validatorRepo struct {
	db *gorm.DB
}

func NewValidatorRepository(db *gorm.DB) domainrepos.ValidatorRepository {
	return &validatorRepo{db: db}
}

func (r *validatorRepo) List(ctx context.Context) ([]*entities.Validator, error) {
	var rows []models.Validator
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Order("added_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]*entities.Validator, 0, len(rows))
	for _, row := range rows {
		items = append(items, &entities.Validator{Address: row.Address, AddedAt: row.AddedAt})
	}
	return items, nil
}

func (r *validatorRepo) IsValidator(ctx context.Context, address string) (bool, error) {
	var count int64
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Model(&models.Validator{}).
		Where("address = ?", address).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *validatorRepo) Add(ctx context.Context, validator *entities.Validator) error {
	m := &models.Validator{Address: validator.Address, AddedAt: validator.AddedAt}
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *validatorRepo) Remove(ctx context.Context, address string) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Delete(&models.Validator{}, "address = ?", address)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *validatorRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Model(&models.Validator{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type merkleRootRepo struct {
	db *gorm.DB
}

func NewMerkleRootRepository(db *gorm.DB) domainrepos.MerkleRootRepository {
	return &merkleRootRepo{db: db}
}

func (r *merkleRootRepo) GetByChainID(ctx context.Context, chainID uint64) (*entities.MerkleRoot, error) {
	var m models.MerkleRoot
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("chain_id = ?", chainID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.MerkleRoot{
		ChainID:   m.ChainID,
		Root:      m.Root,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}, nil
}

// Set registers or replaces the root for a chain
func (r *merkleRootRepo) Set(ctx context.Context, root *entities.MerkleRoot) error {
	db := GetDB(ctx, r.db)
	now := time.Now()
	result := db.WithContext(ctx).Model(&models.MerkleRoot{}).
		Where("chain_id = ?", root.ChainID).
		Updates(map[string]interface{}{
			"root":       root.Root,
			"expires_at": root.ExpiresAt,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	m := &models.MerkleRoot{
		ChainID:   root.ChainID,
		Root:      root.Root,
		ExpiresAt: root.ExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.WithContext(ctx).Create(m).Error
}

package implementation

import (
	"context"
	"errors"

	"tumaini-be/internal/entity"
	"tumaini-be/internal/mapper"
	"tumaini-be/internal/model"
	"tumaini-be/internal/repository/contract"
	"tumaini-be/internal/repository/specification"

	"gorm.io/gorm"
)

type TierRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentMapper
}

func NewTierRepository(db *gorm.DB) contract.TierRepository {
	return &TierRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentMapper(),
	}
}

func (r *TierRepositoryImpl) Create(ctx context.Context, tier *entity.DonationTier) error {
	m := r.mapper.TierToModel(tier)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*tier = *r.mapper.TierToEntity(m)
	return nil
}

func (r *TierRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DonationTier, error) {
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	var models []*model.DonationTier
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	tiers := make([]*entity.DonationTier, len(models))
	for i, m := range models {
		tiers[i] = r.mapper.TierToEntity(m)
	}
	return tiers, nil
}

type AdminRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentMapper
}

func NewAdminRepository(db *gorm.DB) contract.AdminRepository {
	return &AdminRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentMapper(),
	}
}

func (r *AdminRepositoryImpl) Create(ctx context.Context, admin *entity.AdminUser) error {
	m := r.mapper.AdminToModel(admin)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*admin = *r.mapper.AdminToEntity(m)
	return nil
}

func (r *AdminRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.AdminUser, error) {
	var m model.AdminUser
	if err := r.db.WithContext(ctx).First(&m, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contract.ErrAdminNotFound
		}
		return nil, err
	}
	return r.mapper.AdminToEntity(&m), nil
}

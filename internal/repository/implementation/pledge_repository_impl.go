package implementation

import (
	"context"
	"errors"
	"time"

	"tumaini-be/internal/entity"
	"tumaini-be/internal/mapper"
	"tumaini-be/internal/model"
	"tumaini-be/internal/repository/contract"
	"tumaini-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PledgeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PledgeMapper
}

func NewPledgeRepository(db *gorm.DB) contract.PledgeRepository {
	return &PledgeRepositoryImpl{
		db:     db,
		mapper: mapper.NewPledgeMapper(),
	}
}

func (r *PledgeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PledgeRepositoryImpl) Create(ctx context.Context, pledge *entity.RecurringPledge) error {
	m := r.mapper.ToModel(pledge)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*pledge = *r.mapper.ToEntity(m)
	return nil
}

func (r *PledgeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RecurringPledge, error) {
	var m model.RecurringPledge
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PledgeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RecurringPledge, error) {
	var models []*model.RecurringPledge
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.RecurringPledge, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *PledgeRepositoryImpl) TransitionStatus(ctx context.Context, pledgeId uuid.UUID, from, to entity.PledgeStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.RecurringPledge{}).
		Where("id = ? AND status = ?", pledgeId, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AdvanceNextCharge only ever moves the date forward and only while the
// pledge is active; both conditions are part of the guard.
func (r *PledgeRepositoryImpl) AdvanceNextCharge(ctx context.Context, pledgeId uuid.UUID, next time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.RecurringPledge{}).
		Where("id = ? AND status = ? AND next_charge_date < ?", pledgeId, string(entity.PledgeStatusActive), next).
		Updates(map[string]interface{}{
			"next_charge_date": next,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PledgeRepositoryImpl) CountByStatus(ctx context.Context, status entity.PledgeStatus) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RecurringPledge{}).
		Where("status = ?", string(status)).
		Count(&count).Error
	return int(count), err
}

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

type DonationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DonationMapper
}

func NewDonationRepository(db *gorm.DB) contract.DonationRepository {
	return &DonationRepositoryImpl{
		db:     db,
		mapper: mapper.NewDonationMapper(),
	}
}

func (r *DonationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DonationRepositoryImpl) Create(ctx context.Context, donation *entity.Donation) error {
	m := r.mapper.ToModel(donation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*donation = *r.mapper.ToEntity(m)
	return nil
}

func (r *DonationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Donation, error) {
	var m model.Donation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DonationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Donation, error) {
	var models []*model.Donation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Donation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// BindProviderToken is a conditional update: the token lands only if the
// donation has no token yet. The unique index on provider_token catches
// the cross-donation case at the storage level.
func (r *DonationRepositoryImpl) BindProviderToken(ctx context.Context, donationId uuid.UUID, token string) error {
	res := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("id = ? AND provider_token IS NULL", donationId).
		Update("provider_token", token)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return contract.ErrTokenConflict
		}
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// Guard failed: either the donation is missing or a token is already
	// bound. Rebinding the identical token is an idempotent no-op.
	var m model.Donation
	if err := r.db.WithContext(ctx).First(&m, "id = ?", donationId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contract.ErrDonationNotFound
		}
		return err
	}
	if m.ProviderToken != nil && *m.ProviderToken == token {
		return nil
	}
	return contract.ErrTokenConflict
}

// Transition is the compare-and-swap at the heart of the ledger: the
// status moves only if it is still `from`, and the evidence row is
// appended in the same database transaction. A raced caller sees
// applied=false and zero writes.
func (r *DonationRepositoryImpl) Transition(ctx context.Context, donationId uuid.UUID, from, to entity.DonationStatus, evidence *entity.DonationEvent) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Donation{}).
			Where("id = ? AND status = ?", donationId, string(from)).
			Updates(map[string]interface{}{
				"status":     string(to),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		if evidence != nil {
			if evidence.Id == uuid.Nil {
				evidence.Id = uuid.New()
			}
			evidence.DonationId = donationId
			if err := tx.Create(r.mapper.EventToModel(evidence)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *DonationRepositoryImpl) AppendEvent(ctx context.Context, event *entity.DonationEvent) error {
	if event.Id == uuid.Nil {
		event.Id = uuid.New()
	}
	return r.db.WithContext(ctx).Create(r.mapper.EventToModel(event)).Error
}

func (r *DonationRepositoryImpl) FindEvents(ctx context.Context, donationId uuid.UUID) ([]*entity.DonationEvent, error) {
	var models []*model.DonationEvent
	err := r.db.WithContext(ctx).
		Where("donation_id = ?", donationId).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	events := make([]*entity.DonationEvent, len(models))
	for i, m := range models {
		events[i] = r.mapper.EventToEntity(m)
	}
	return events, nil
}

func (r *DonationRepositoryImpl) TotalRaised(ctx context.Context) ([]entity.CurrencyTotal, error) {
	var totals []entity.CurrencyTotal
	err := r.db.WithContext(ctx).Table("donations").
		Select("currency, COALESCE(SUM(amount), 0) as amount").
		Where("status = ?", string(entity.DonationStatusCompleted)).
		Group("currency").
		Scan(&totals).Error
	return totals, err
}

func (r *DonationRepositoryImpl) CountByStatus(ctx context.Context, status entity.DonationStatus) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("status = ?", string(status)).
		Count(&count).Error
	return int(count), err
}

package mapper

import (
	"tumaini-be/internal/entity"
	"tumaini-be/internal/model"
)

type PledgeMapper struct{}

func NewPledgeMapper() *PledgeMapper {
	return &PledgeMapper{}
}

func (m *PledgeMapper) ToEntity(p *model.RecurringPledge) *entity.RecurringPledge {
	if p == nil {
		return nil
	}
	return &entity.RecurringPledge{
		Id:             p.Id,
		DonorEmail:     p.DonorEmail,
		DonorName:      p.DonorName,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Frequency:      entity.PledgeFrequency(p.Frequency),
		Status:         entity.PledgeStatus(p.Status),
		NextChargeDate: p.NextChargeDate,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (m *PledgeMapper) ToModel(p *entity.RecurringPledge) *model.RecurringPledge {
	if p == nil {
		return nil
	}
	return &model.RecurringPledge{
		Id:             p.Id,
		DonorEmail:     p.DonorEmail,
		DonorName:      p.DonorName,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Frequency:      string(p.Frequency),
		Status:         string(p.Status),
		NextChargeDate: p.NextChargeDate,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

package mapper

import (
	"tumaini-be/internal/entity"
	"tumaini-be/internal/model"
)

type ContentMapper struct{}

func NewContentMapper() *ContentMapper {
	return &ContentMapper{}
}

func (m *ContentMapper) TierToEntity(t *model.DonationTier) *entity.DonationTier {
	if t == nil {
		return nil
	}
	return &entity.DonationTier{
		Id:          t.Id,
		Name:        t.Name,
		Amount:      t.Amount,
		Currency:    t.Currency,
		Description: t.Description,
		SortOrder:   t.SortOrder,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (m *ContentMapper) TierToModel(t *entity.DonationTier) *model.DonationTier {
	if t == nil {
		return nil
	}
	return &model.DonationTier{
		Id:          t.Id,
		Name:        t.Name,
		Amount:      t.Amount,
		Currency:    t.Currency,
		Description: t.Description,
		SortOrder:   t.SortOrder,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (m *ContentMapper) AdminToEntity(a *model.AdminUser) *entity.AdminUser {
	if a == nil {
		return nil
	}
	return &entity.AdminUser{
		Id:           a.Id,
		Email:        a.Email,
		FullName:     a.FullName,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (m *ContentMapper) AdminToModel(a *entity.AdminUser) *model.AdminUser {
	if a == nil {
		return nil
	}
	return &model.AdminUser{
		Id:           a.Id,
		Email:        a.Email,
		FullName:     a.FullName,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

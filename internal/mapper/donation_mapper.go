package mapper

import (
	"encoding/json"

	"tumaini-be/internal/entity"
	"tumaini-be/internal/model"

	"gorm.io/datatypes"
)

type DonationMapper struct{}

func NewDonationMapper() *DonationMapper {
	return &DonationMapper{}
}

func (m *DonationMapper) ToEntity(d *model.Donation) *entity.Donation {
	if d == nil {
		return nil
	}
	return &entity.Donation{
		Id:            d.Id,
		Reference:     d.Reference,
		Amount:        d.Amount,
		Currency:      d.Currency,
		DonorEmail:    d.DonorEmail,
		DonorName:     d.DonorName,
		DonorPhone:    d.DonorPhone,
		Method:        entity.PaymentMethod(d.Method),
		Status:        entity.DonationStatus(d.Status),
		ProviderToken: d.ProviderToken,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (m *DonationMapper) ToModel(d *entity.Donation) *model.Donation {
	if d == nil {
		return nil
	}
	return &model.Donation{
		Id:            d.Id,
		Reference:     d.Reference,
		Amount:        d.Amount,
		Currency:      d.Currency,
		DonorEmail:    d.DonorEmail,
		DonorName:     d.DonorName,
		DonorPhone:    d.DonorPhone,
		Method:        string(d.Method),
		Status:        string(d.Status),
		ProviderToken: d.ProviderToken,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (m *DonationMapper) EventToEntity(e *model.DonationEvent) *entity.DonationEvent {
	if e == nil {
		return nil
	}
	var payload map[string]interface{}
	if len(e.Payload) > 0 {
		// Payload rows we wrote ourselves; ignore decode failure and keep
		// the event rather than dropping audit data.
		_ = json.Unmarshal(e.Payload, &payload)
	}
	return &entity.DonationEvent{
		Id:         e.Id,
		DonationId: e.DonationId,
		Kind:       e.Kind,
		Actor:      e.Actor,
		Payload:    payload,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *DonationMapper) EventToModel(e *entity.DonationEvent) *model.DonationEvent {
	if e == nil {
		return nil
	}
	var payload datatypes.JSON
	if e.Payload != nil {
		if raw, err := json.Marshal(e.Payload); err == nil {
			payload = datatypes.JSON(raw)
		}
	}
	return &model.DonationEvent{
		Id:         e.Id,
		DonationId: e.DonationId,
		Kind:       e.Kind,
		Actor:      e.Actor,
		Payload:    payload,
		CreatedAt:  e.CreatedAt,
	}
}

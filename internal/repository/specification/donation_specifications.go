package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByReference filters donations by the internally issued reference.
type ByReference struct {
	Reference string
}

func (s ByReference) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("reference = ?", s.Reference)
}

// ByProviderToken filters donations by the provider-issued token.
type ByProviderToken struct {
	Token string
}

func (s ByProviderToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("provider_token = ?", s.Token)
}

// ByStatus filters by lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByMethod filters by payment rail.
type ByMethod struct {
	Method string
}

func (s ByMethod) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("method = ?", s.Method)
}

// DueOnOrBefore selects pledges whose next charge date has arrived.
type DueOnOrBefore struct {
	AsOf time.Time
}

func (s DueOnOrBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("next_charge_date <= ?", s.AsOf)
}

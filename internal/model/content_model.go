package model

import (
	"time"

	"github.com/google/uuid"
)

type DonationTier struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Amount      int64     `gorm:"not null"`
	Currency    string    `gorm:"type:varchar(3);not null"`
	Description string    `gorm:"type:text"`
	SortOrder   int       `gorm:"default:0"`
	IsActive    bool      `gorm:"default:true"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (DonationTier) TableName() string {
	return "donation_tiers"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Donation struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference     string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Amount        int64     `gorm:"not null"`
	Currency      string    `gorm:"type:varchar(3);not null"`
	DonorEmail    string    `gorm:"type:varchar(255);not null;index"`
	DonorName     string    `gorm:"type:varchar(255)"`
	DonorPhone    string    `gorm:"type:varchar(50)"`
	Method        string    `gorm:"type:varchar(20);not null;index"`
	Status        string    `gorm:"type:varchar(20);not null;index"`
	ProviderToken *string   `gorm:"type:varchar(255);uniqueIndex"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Donation) TableName() string {
	return "donations"
}

// DonationEvent rows are append-only; there is no update path.
type DonationEvent struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DonationId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Kind       string         `gorm:"type:varchar(50);not null"`
	Actor      string         `gorm:"type:varchar(255);not null"`
	Payload    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
}

func (DonationEvent) TableName() string {
	return "donation_events"
}

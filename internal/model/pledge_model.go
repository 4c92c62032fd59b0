package model

import (
	"time"

	"github.com/google/uuid"
)

type RecurringPledge struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DonorEmail     string    `gorm:"type:varchar(255);not null;index"`
	DonorName      string    `gorm:"type:varchar(255)"`
	Amount         int64     `gorm:"not null"`
	Currency       string    `gorm:"type:varchar(3);not null"`
	Frequency      string    `gorm:"type:varchar(20);not null"`
	Status         string    `gorm:"type:varchar(20);not null;index"`
	NextChargeDate time.Time `gorm:"not null;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (RecurringPledge) TableName() string {
	return "recurring_pledges"
}

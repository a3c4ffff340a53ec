package models

import (
	"time"

	"github.com/google/uuid"
)

type ProviderProfile struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	BusinessID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	BusinessName string    `gorm:"type:varchar(255);not null"`
	Name         string    `gorm:"type:varchar(255)"`
	Email        string    `gorm:"type:varchar(255);not null"`
	IsActive     bool      `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ProviderProfile) TableName() string {
	return "provider_profiles"
}

type ProviderSubscription struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;index"`
	Tier                string    `gorm:"type:varchar(50);not null"`
	Status              string    `gorm:"type:varchar(20);not null"`
	LeadDiscountPercent float64   `gorm:"not null;default:0"`
	MaxLeadsPerMonth    *int
	CurrentPeriodEnd    *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (ProviderSubscription) TableName() string {
	return "provider_subscriptions"
}

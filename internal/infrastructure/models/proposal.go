package models

import (
	"time"

	"github.com/google/uuid"
)

type Proposal struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ServiceRequestID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProviderID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	LeadID                *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Details               string     `gorm:"type:text;not null"`
	Price                 float64    `gorm:"type:numeric(12,2);not null"`
	Status                string     `gorm:"type:varchar(20);not null"`
	StripePaymentIntentID *string    `gorm:"type:varchar(255)"`
	PaymentStatus         string     `gorm:"type:varchar(20);not null;index"`
	PaidAt                *time.Time
	ProviderPayoutAmount  *int64
	PlatformFeeAmount     *int64
	PayoutStatus          *string `gorm:"type:varchar(20)"`
	PayoutProcessedAt     *time.Time
	StripeTransferID      *string `gorm:"type:varchar(255)"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (Proposal) TableName() string {
	return "proposals"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type Lead struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ServiceRequestID      *uuid.UUID `gorm:"type:uuid;index"`
	CustomerID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProviderID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	BusinessID            uuid.UUID  `gorm:"type:uuid;not null"`
	CategoryID            uuid.UUID  `gorm:"type:uuid;not null"`
	Status                string     `gorm:"type:varchar(20);not null;index"`
	StripePaymentIntentID *string    `gorm:"type:varchar(255);index"`
	LeadCost              int64      `gorm:"not null;default:0"`
	CustomerName          *string    `gorm:"type:varchar(255)"`
	CustomerEmail         *string    `gorm:"type:varchar(255)"`
	CustomerPhone         *string    `gorm:"type:varchar(50)"`
	RejectionReason       *string    `gorm:"type:varchar(20)"`
	RejectionReasonOther  *string    `gorm:"type:text"`
	Metadata              string     `gorm:"type:jsonb;not null"`
	PriorityExpiresAt     *time.Time `gorm:"index"`
	FallbackProcessedAt   *time.Time
	RespondedAt           *time.Time
	Version               int `gorm:"not null;default:1"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (Lead) TableName() string {
	return "leads"
}

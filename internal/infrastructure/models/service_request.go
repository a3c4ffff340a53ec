package models

import (
	"time"

	"github.com/google/uuid"
)

type ServiceRequest struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	CategoryID          uuid.UUID  `gorm:"type:uuid;not null"`
	SubCategoryID       *uuid.UUID `gorm:"type:uuid"`
	ZipCode             string     `gorm:"type:varchar(20);not null"`
	ProjectTitle        string     `gorm:"type:varchar(255);not null"`
	ProjectDescription  string     `gorm:"type:text"`
	PreferredDate       string     `gorm:"type:varchar(50)"`
	PreferredTime       string     `gorm:"type:varchar(50)"`
	Attachments         string     `gorm:"type:jsonb;not null"`
	Status              string     `gorm:"type:varchar(20);not null;index"`
	PrimaryProviderID   *uuid.UUID `gorm:"type:uuid"`
	SelectedBusinessIDs string     `gorm:"column:selected_business_ids;type:jsonb;not null"`
	ContactName         string     `gorm:"type:varchar(255)"`
	ContactEmail        string     `gorm:"type:varchar(255)"`
	ContactPhone        *string    `gorm:"type:varchar(50)"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (ServiceRequest) TableName() string {
	return "service_requests"
}

type AlternativeProviderSelection struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ServiceRequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_alt_selection_request_provider"`
	ProviderID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_alt_selection_request_provider"`
	Position         int       `gorm:"not null"`
	CreatedAt        time.Time
}

func (AlternativeProviderSelection) TableName() string {
	return "alternative_provider_selections"
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ServiceRequestStatus represents the status of a customer's request
type ServiceRequestStatus string

const (
	ServiceRequestStatusOpen       ServiceRequestStatus = "OPEN"
	ServiceRequestStatusInProgress ServiceRequestStatus = "IN_PROGRESS"
	ServiceRequestStatusCompleted  ServiceRequestStatus = "COMPLETED"
	ServiceRequestStatusClosed     ServiceRequestStatus = "CLOSED"
)

// ServiceRequest is a customer's project that gets routed to providers as leads
type ServiceRequest struct {
	ID                  uuid.UUID            `json:"id"`
	CustomerID          uuid.UUID            `json:"customerId"`
	CategoryID          uuid.UUID            `json:"categoryId"`
	SubCategoryID       *uuid.UUID           `json:"subCategoryId,omitempty"`
	ZipCode             string               `json:"zipCode"`
	ProjectTitle        string               `json:"projectTitle"`
	ProjectDescription  string               `json:"projectDescription"`
	PreferredDate       string               `json:"preferredDate,omitempty"`
	PreferredTime       string               `json:"preferredTime,omitempty"`
	Attachments         []string             `json:"attachments,omitempty"`
	Status              ServiceRequestStatus `json:"status"`
	PrimaryProviderID   *uuid.UUID           `json:"primaryProviderId,omitempty"`
	SelectedBusinessIDs []uuid.UUID          `json:"selectedBusinessIds,omitempty"`
	ContactName         string               `json:"contactName"`
	ContactEmail        string               `json:"contactEmail"`
	ContactPhone        null.String          `json:"contactPhone"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// Snapshot copies the project details stored on each lead.
func (r *ServiceRequest) Snapshot() ProjectSnapshot {
	attachments := make([]string, len(r.Attachments))
	copy(attachments, r.Attachments)
	return ProjectSnapshot{
		Title:         r.ProjectTitle,
		Description:   r.ProjectDescription,
		ZipCode:       r.ZipCode,
		PreferredDate: r.PreferredDate,
		PreferredTime: r.PreferredTime,
		Attachments:   attachments,
	}
}

// AlternativeProviderSelection is a customer-ranked backup provider for a request
type AlternativeProviderSelection struct {
	ID               uuid.UUID `json:"id"`
	ServiceRequestID uuid.UUID `json:"serviceRequestId"`
	ProviderID       uuid.UUID `json:"providerId"`
	Position         int       `json:"position"`
	CreatedAt        time.Time `json:"createdAt"`
}

package events

import (
	"github.com/google/uuid"
	"leadrouter.backend/pkg/events"
)

// Lead event names
const (
	LeadAcceptedEvent = "lead.accepted"
	LeadRejectedEvent = "lead.rejected"
	LeadAssignedEvent = "lead.assigned"
)

// LeadAccepted is published after an accepted lead and its proposal are committed
type LeadAccepted struct {
	events.BaseEvent
	LeadID           uuid.UUID `json:"leadId"`
	ServiceRequestID uuid.UUID `json:"serviceRequestId"`
	ProviderID       uuid.UUID `json:"providerId"`
	ProposalID       uuid.UUID `json:"proposalId"`
	BusinessName     string    `json:"businessName"`
	CustomerName     string    `json:"customerName"`
	CustomerEmail    string    `json:"customerEmail"`
	ProjectTitle     string    `json:"projectTitle"`
	Price            float64   `json:"price"`
	LeadCostCents    int64     `json:"leadCost"`
}

func (LeadAccepted) EventName() string { return LeadAcceptedEvent }

// LeadRejected is published after a provider turns a lead down
type LeadRejected struct {
	events.BaseEvent
	LeadID           uuid.UUID `json:"leadId"`
	ServiceRequestID uuid.UUID `json:"serviceRequestId"`
	ProviderID       uuid.UUID `json:"providerId"`
	Reason           string    `json:"reason"`
	ReasonOther      string    `json:"reasonOther,omitempty"`
	CustomerName     string    `json:"customerName"`
	CustomerEmail    string    `json:"customerEmail"`
	ProjectTitle     string    `json:"projectTitle"`
}

func (LeadRejected) EventName() string { return LeadRejectedEvent }

// LeadAssigned is published whenever a lead lands in a provider's inbox
type LeadAssigned struct {
	events.BaseEvent
	LeadID           uuid.UUID `json:"leadId"`
	ServiceRequestID uuid.UUID `json:"serviceRequestId"`
	ProviderID       uuid.UUID `json:"providerId"`
	ProviderName     string    `json:"providerName"`
	ProviderEmail    string    `json:"providerEmail"`
	ProjectTitle     string    `json:"projectTitle"`
	ZipCode          string    `json:"zipCode"`
	Channel          string    `json:"channel"`
}

func (LeadAssigned) EventName() string { return LeadAssignedEvent }

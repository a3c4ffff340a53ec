package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// LeadStatus represents the lifecycle state of a lead
type LeadStatus string

const (
	LeadStatusSubmitted LeadStatus = "submitted"
	LeadStatusRouted    LeadStatus = "routed"
	LeadStatusAccepted  LeadStatus = "accepted"
	LeadStatusRejected  LeadStatus = "rejected"
	LeadStatusCancelled LeadStatus = "cancelled"
)

// LiveLeadStatuses are the statuses covered by the one-live-lead-per-provider rule.
var LiveLeadStatuses = []LeadStatus{LeadStatusSubmitted, LeadStatusRouted, LeadStatusAccepted}

// IsLive reports whether the lead still occupies its provider slot on the request.
func (s LeadStatus) IsLive() bool {
	return s == LeadStatusSubmitted || s == LeadStatusRouted || s == LeadStatusAccepted
}

// CanRespond reports whether the provider may still accept or reject.
func (s LeadStatus) CanRespond() bool {
	return s == LeadStatusSubmitted || s == LeadStatusRouted
}

// RejectionReason is the fixed set of reasons a provider can give
type RejectionReason string

const (
	RejectionReasonTooFar       RejectionReason = "TOO_FAR"
	RejectionReasonTooExpensive RejectionReason = "TOO_EXPENSIVE"
	RejectionReasonNotRelevant  RejectionReason = "NOT_RELEVANT"
	RejectionReasonOther        RejectionReason = "OTHER"
)

// ParseRejectionReason normalizes case and reports whether the value is known.
func ParseRejectionReason(raw string) (RejectionReason, bool) {
	r := RejectionReason(strings.ToUpper(strings.TrimSpace(raw)))
	switch r {
	case RejectionReasonTooFar, RejectionReasonTooExpensive, RejectionReasonNotRelevant, RejectionReasonOther:
		return r, true
	}
	return "", false
}

// PresentationStatus is the customer/provider facing view of a lead
type PresentationStatus string

const (
	PresentationPending        PresentationStatus = "PENDING"
	PresentationPaymentPending PresentationStatus = "PAYMENT_PENDING"
	PresentationAccepted       PresentationStatus = "ACCEPTED"
	PresentationRejected       PresentationStatus = "REJECTED"
	PresentationPaymentFailed  PresentationStatus = "PAYMENT_FAILED"
)

// Reassignment channels recorded in AssignedFrom.
const (
	AssignmentChannelInitial     = "initial"
	AssignmentChannelAlternative = "alternative"
	AssignmentChannelFallback    = "fallback"
)

// ProjectSnapshot is the copy of request details taken when the lead is created
type ProjectSnapshot struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ZipCode       string   `json:"zipCode"`
	PreferredDate string   `json:"preferredDate,omitempty"`
	PreferredTime string   `json:"preferredTime,omitempty"`
	Attachments   []string `json:"attachments,omitempty"`
}

// PendingProposal holds the proposal contents while a payment awaits confirmation
type PendingProposal struct {
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// AssignedFrom records which lead a reassigned lead came from
type AssignedFrom struct {
	LeadID     uuid.UUID `json:"leadId"`
	ProviderID uuid.UUID `json:"providerId"`
	Channel    string    `json:"channel"`
	AssignedAt time.Time `json:"assignedAt"`
}

// LeadMetadata is the typed replacement for the free-form metadata blob
type LeadMetadata struct {
	Project             ProjectSnapshot  `json:"project"`
	PendingProposal     *PendingProposal `json:"pendingProposal,omitempty"`
	FallbackBusinessIDs []uuid.UUID      `json:"fallbackBusinessIds,omitempty"`
	AssignedFrom        *AssignedFrom    `json:"assignedFrom,omitempty"`
	ChargeAttempt       int              `json:"chargeAttempt,omitempty"` // bumped after each terminal charge failure
}

// ContactDetails are the customer fields revealed once a lead is accepted
type ContactDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Lead is one provider's view of a customer's service request
type Lead struct {
	ID                   uuid.UUID    `json:"id"`
	ServiceRequestID     uuid.UUID    `json:"serviceRequestId"`
	CustomerID           uuid.UUID    `json:"customerId"`
	ProviderID           uuid.UUID    `json:"providerId"`
	BusinessID           uuid.UUID    `json:"businessId"`
	CategoryID           uuid.UUID    `json:"categoryId"`
	Status               LeadStatus   `json:"status"`
	PaymentIntentID      null.String  `json:"paymentIntentId"`
	LeadCostCents        int64        `json:"leadCost"`
	CustomerName         null.String  `json:"customerName"`
	CustomerEmail        null.String  `json:"customerEmail"`
	CustomerPhone        null.String  `json:"customerPhone"`
	RejectionReason      null.String  `json:"rejectionReason"`
	RejectionReasonOther null.String  `json:"rejectionReasonOther"`
	Metadata             LeadMetadata `json:"metadata"`
	PriorityExpiresAt    *time.Time   `json:"priorityExpiresAt,omitempty"`
	FallbackProcessedAt  *time.Time   `json:"fallbackProcessedAt,omitempty"`
	RespondedAt          *time.Time   `json:"respondedAt,omitempty"`
	Version              int          `json:"-"`
	CreatedAt            time.Time    `json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}

// AwaitingPayment reports whether a charge was started but not finalized.
func (l *Lead) AwaitingPayment() bool {
	return l.Status.CanRespond() && l.PaymentIntentID.Valid
}

// PresentationStatus maps the internal state to what clients see.
func (l *Lead) PresentationStatus() PresentationStatus {
	switch l.Status {
	case LeadStatusAccepted:
		return PresentationAccepted
	case LeadStatusRejected:
		return PresentationRejected
	case LeadStatusCancelled:
		return PresentationPaymentFailed
	}
	if l.AwaitingPayment() {
		return PresentationPaymentPending
	}
	return PresentationPending
}

// Contact returns the customer contact fields, or nil until the lead is accepted.
func (l *Lead) Contact() *ContactDetails {
	if l.Status != LeadStatusAccepted {
		return nil
	}
	return &ContactDetails{
		Name:  l.CustomerName.String,
		Email: l.CustomerEmail.String,
		Phone: l.CustomerPhone.String,
	}
}

// FallbackDue reports whether the priority window has lapsed without a response.
func (l *Lead) FallbackDue(now time.Time) bool {
	if !l.Status.CanRespond() || l.FallbackProcessedAt != nil || l.PriorityExpiresAt == nil {
		return false
	}
	return !l.PriorityExpiresAt.After(now)
}

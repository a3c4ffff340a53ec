package entities

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ProposalStatus represents the customer's decision on a proposal
type ProposalStatus string

const (
	ProposalStatusSent     ProposalStatus = "SENT"
	ProposalStatusAccepted ProposalStatus = "ACCEPTED"
	ProposalStatusRejected ProposalStatus = "REJECTED"
)

// ProposalPaymentStatus tracks the customer's payment for the job
type ProposalPaymentStatus string

const (
	ProposalPaymentPending   ProposalPaymentStatus = "pending"
	ProposalPaymentSucceeded ProposalPaymentStatus = "succeeded"
	ProposalPaymentFailed    ProposalPaymentStatus = "failed"
)

// PayoutStatus tracks the transfer of the provider's share
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusCompleted  PayoutStatus = "completed"
	PayoutStatusFailed     PayoutStatus = "failed"
)

// CanTransitionTo lists the allowed payout moves. Failed payouts may be retried.
func (s PayoutStatus) CanTransitionTo(next PayoutStatus) bool {
	switch s {
	case PayoutStatusPending:
		return next == PayoutStatusProcessing || next == PayoutStatusCompleted || next == PayoutStatusFailed
	case PayoutStatusProcessing:
		return next == PayoutStatusCompleted || next == PayoutStatusFailed
	case PayoutStatusFailed:
		return next == PayoutStatusProcessing
	}
	return false
}

// Proposal is the provider's priced offer created when a lead is accepted
type Proposal struct {
	ID                   uuid.UUID             `json:"id"`
	ServiceRequestID     uuid.UUID             `json:"serviceRequestId"`
	ProviderID           uuid.UUID             `json:"providerId"` // provider profile id
	LeadID               uuid.UUID             `json:"leadId"`
	Details              string                `json:"details"`
	Price                float64               `json:"price"` // dollars
	Status               ProposalStatus        `json:"status"`
	PaymentIntentID      null.String           `json:"paymentIntentId"`
	PaymentStatus        ProposalPaymentStatus `json:"paymentStatus"`
	PaidAt               *time.Time            `json:"paidAt,omitempty"`
	ProviderPayoutAmount null.Int64            `json:"providerPayoutAmount"` // cents
	PlatformFeeAmount    null.Int64            `json:"platformFeeAmount"`    // cents
	PayoutStatus         PayoutStatus          `json:"payoutStatus,omitempty"`
	PayoutProcessedAt    *time.Time            `json:"payoutProcessedAt,omitempty"`
	TransferID           null.String           `json:"transferId"`
	CreatedAt            time.Time             `json:"createdAt"`
	UpdatedAt            time.Time             `json:"updatedAt"`
}

// PriceCents converts the dollar price to integer cents.
func (p *Proposal) PriceCents() int64 {
	return int64(math.Round(p.Price * 100))
}

// EffectivePayoutStatus treats an unset payout status as pending.
func (p *Proposal) EffectivePayoutStatus() PayoutStatus {
	if p.PayoutStatus == "" {
		return PayoutStatusPending
	}
	return p.PayoutStatus
}

// Payout is a derived view of a paid proposal for the provider
type Payout struct {
	ProposalID       uuid.UUID    `json:"proposalId"`
	ServiceRequestID uuid.UUID    `json:"serviceRequestId"`
	TotalAmount      int64        `json:"totalAmount"`
	PlatformFee      int64        `json:"platformFee"`
	ProviderAmount   int64        `json:"providerAmount"`
	Status           PayoutStatus `json:"status"`
	PaidAt           *time.Time   `json:"paidAt,omitempty"`
	ProcessedAt      *time.Time   `json:"processedAt,omitempty"`
	TransferID       string       `json:"transferId,omitempty"`
}

// PayoutStats aggregates payouts, all amounts in cents
type PayoutStats struct {
	TotalEarnings  int64 `json:"totalEarnings"`
	TotalPayouts   int64 `json:"totalPayouts"`
	PendingPayouts int64 `json:"pendingPayouts"`
	FailedPayouts  int64 `json:"failedPayouts"`
	FailedCount    int   `json:"failedCount"`
}

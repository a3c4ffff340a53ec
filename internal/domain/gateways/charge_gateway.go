package gateways

import (
	"context"
)

// ChargeStatus is the normalized outcome of a charge attempt
type ChargeStatus string

const (
	ChargeStatusSucceeded      ChargeStatus = "succeeded"
	ChargeStatusRequiresAction ChargeStatus = "requires_action"
	ChargeStatusProcessing     ChargeStatus = "processing"
	ChargeStatusFailed         ChargeStatus = "failed"
)

// Pending reports whether the charge is waiting on the customer or the network.
func (s ChargeStatus) Pending() bool {
	return s == ChargeStatusRequiresAction || s == ChargeStatusProcessing
}

// ChargeRequest describes one off-session charge against a saved payment method
type ChargeRequest struct {
	AmountCents      int64
	Currency         string
	PaymentMethodRef string
	IdempotencyKey   string
	Description      string
	Metadata         map[string]string
}

// ChargeResult is what the gateway reports back
type ChargeResult struct {
	ID             string
	Status         ChargeStatus
	ClientSecret   string
	FailureMessage string
}

// ChargeGateway creates, inspects and cancels charges
type ChargeGateway interface {
	CreateAndConfirm(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Retrieve(ctx context.Context, chargeID string) (*ChargeResult, error)
	Cancel(ctx context.Context, chargeID string) error
}

package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"

	"leadrouter.backend/internal/domain/gateways"
	"leadrouter.backend/pkg/logger"
)

// paymentIntentAPI is the slice of the Stripe client the gateway uses.
type paymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Cancel(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
}

// StripeGateway charges saved payment methods with PaymentIntents
type StripeGateway struct {
	intents paymentIntentAPI
}

// NewStripeGateway creates a gateway bound to the given secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{intents: sc.PaymentIntents}
}

// CreateAndConfirm creates a PaymentIntent and confirms it in one call. Card
// declines come back as a failed result, not an error.
func (g *StripeGateway) CreateAndConfirm(ctx context.Context, req gateways.ChargeRequest) (*gateways.ChargeResult, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("charge amount must be positive, got %d", req.AmountCents)
	}
	currency := req.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.AmountCents),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(req.PaymentMethodRef),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.intents.New(params)
	if err != nil {
		if declined := cardDecline(err); declined != nil {
			logger.Warn(ctx, "Charge declined", zap.String("code", string(declined.Code)), zap.String("decline_code", string(declined.DeclineCode)))
			return &gateways.ChargeResult{
				ID:             intentID(declined.PaymentIntent),
				Status:         gateways.ChargeStatusFailed,
				FailureMessage: declined.Msg,
			}, nil
		}
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return toResult(pi), nil
}

// Retrieve fetches the current state of a PaymentIntent.
func (g *StripeGateway) Retrieve(ctx context.Context, chargeID string) (*gateways.ChargeResult, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.intents.Get(chargeID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent %s: %w", chargeID, err)
	}
	return toResult(pi), nil
}

// Cancel abandons a PaymentIntent that has not been paid. Cancelling an
// intent that is already canceled is not an error.
func (g *StripeGateway) Cancel(ctx context.Context, chargeID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	pi, err := g.intents.Cancel(chargeID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.PaymentIntent != nil && stripeErr.PaymentIntent.Status == stripe.PaymentIntentStatusCanceled {
			return nil
		}
		return fmt.Errorf("cancel payment intent %s: %w", chargeID, err)
	}
	logger.Info(ctx, "Payment intent canceled", zap.String("payment_intent_id", pi.ID))
	return nil
}

func cardDecline(err error) *stripe.Error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
		return stripeErr
	}
	return nil
}

func intentID(pi *stripe.PaymentIntent) string {
	if pi == nil {
		return ""
	}
	return pi.ID
}

func toResult(pi *stripe.PaymentIntent) *gateways.ChargeResult {
	res := &gateways.ChargeResult{ID: pi.ID, ClientSecret: pi.ClientSecret}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		res.Status = gateways.ChargeStatusSucceeded
	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation:
		res.Status = gateways.ChargeStatusRequiresAction
	case stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresCapture:
		res.Status = gateways.ChargeStatusProcessing
	default:
		res.Status = gateways.ChargeStatusFailed
		res.FailureMessage = "payment was not completed"
		if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
			res.FailureMessage = pi.LastPaymentError.Msg
		}
	}
	return res
}

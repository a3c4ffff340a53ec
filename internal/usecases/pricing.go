package usecases

import (
	"math"

	"github.com/google/uuid"
	"leadrouter.backend/internal/config"
	"leadrouter.backend/internal/domain/entities"
	"leadrouter.backend/internal/domain/errors"
)

// PayoutSplit divides a customer payment between the platform and the provider, in cents
type PayoutSplit struct {
	TotalCents    int64 `json:"totalAmount"`
	PlatformFee   int64 `json:"platformFee"`
	ProviderShare int64 `json:"providerAmount"`
}

// PricingCalculator computes lead costs and payout splits
type PricingCalculator struct {
	defaultLeadCost int64
	categoryCosts   map[uuid.UUID]int64
	feePercent      float64
	minFeeCents     int64
}

func NewPricingCalculator(cfg config.PricingConfig) *PricingCalculator {
	c := &PricingCalculator{
		defaultLeadCost: cfg.DefaultLeadCostCents,
		categoryCosts:   cfg.CategoryLeadCosts,
		feePercent:      cfg.PlatformFeePercent,
		minFeeCents:     int64(math.Round(cfg.MinimumFeeDollars * 100)),
	}
	if c.defaultLeadCost <= 0 {
		c.defaultLeadCost = DefaultLeadCostCents
	}
	if c.feePercent < 0 || c.feePercent >= 1 {
		c.feePercent = DefaultPlatformFeePercent
	}
	if c.minFeeCents < 0 {
		c.minFeeCents = 0
	}
	if c.categoryCosts == nil {
		c.categoryCosts = map[uuid.UUID]int64{}
	}
	return c
}

// BaseLeadCost returns the undiscounted lead price for a category.
func (c *PricingCalculator) BaseLeadCost(categoryID uuid.UUID) int64 {
	if cost, ok := c.categoryCosts[categoryID]; ok {
		return cost
	}
	return c.defaultLeadCost
}

// LeadCost applies the subscriber discount to the category price, floored at
// one cent.
func (c *PricingCalculator) LeadCost(categoryID uuid.UUID, benefits entities.SubscriptionBenefits) int64 {
	base := c.BaseLeadCost(categoryID)
	if !benefits.HasActiveSubscription || benefits.LeadDiscountPercent <= 0 {
		return base
	}
	discount := math.Min(benefits.LeadDiscountPercent, 100)
	cost := int64(math.Round(float64(base) * (1 - discount/100)))
	if cost < MinimumLeadCostCents {
		return MinimumLeadCostCents
	}
	return cost
}

// PayoutSplit computes fee = max(round(total*pct), minFee), capped at the total.
func (c *PricingCalculator) PayoutSplit(totalDollars float64) (PayoutSplit, error) {
	if math.IsNaN(totalDollars) || math.IsInf(totalDollars, 0) || totalDollars <= 0 {
		return PayoutSplit{}, errors.InvalidAmount("payment total must be positive")
	}
	total := int64(math.Round(totalDollars * 100))
	if total <= 0 {
		return PayoutSplit{}, errors.InvalidAmount("payment total must be at least one cent")
	}

	fee := int64(math.Round(float64(total) * c.feePercent))
	if fee < c.minFeeCents {
		fee = c.minFeeCents
	}
	if fee > total {
		fee = total
	}
	return PayoutSplit{
		TotalCents:    total,
		PlatformFee:   fee,
		ProviderShare: total - fee,
	}, nil
}

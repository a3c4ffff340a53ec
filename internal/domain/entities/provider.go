package entities

import (
	"github.com/google/uuid"
)

// Provider joins a provider's user account with their profile and business
type Provider struct {
	UserID       uuid.UUID `json:"userId"`
	ProfileID    uuid.UUID `json:"profileId"`
	BusinessID   uuid.UUID `json:"businessId"`
	BusinessName string    `json:"businessName"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"isActive"`
}

// SubscriptionBenefits are the plan perks that affect lead pricing and quota
type SubscriptionBenefits struct {
	HasActiveSubscription bool    `json:"hasActiveSubscription"`
	Tier                  string  `json:"tier,omitempty"`
	LeadDiscountPercent   float64 `json:"leadDiscountPercent"`
	MaxLeadsPerMonth      int     `json:"maxLeadsPerMonth"` // 0 means unlimited
}

// HasQuota reports whether a monthly cap applies.
func (b SubscriptionBenefits) HasQuota() bool {
	return b.MaxLeadsPerMonth > 0
}

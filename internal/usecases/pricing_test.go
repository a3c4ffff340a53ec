package usecases_test

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadrouter.backend/internal/config"
	"leadrouter.backend/internal/domain/entities"
	domainerrors "leadrouter.backend/internal/domain/errors"
	"leadrouter.backend/internal/usecases"
)

func newPricing() *usecases.PricingCalculator {
	return usecases.NewPricingCalculator(config.PricingConfig{
		DefaultLeadCostCents: 2000,
		PlatformFeePercent:   0.10,
		MinimumFeeDollars:    5,
	})
}

func TestPricing_LeadCost(t *testing.T) {
	category := uuid.New()
	calc := usecases.NewPricingCalculator(config.PricingConfig{
		DefaultLeadCostCents: 2000,
		CategoryLeadCosts:    map[uuid.UUID]int64{category: 3000},
		PlatformFeePercent:   0.10,
	})

	assert.Equal(t, int64(2000), calc.LeadCost(uuid.New(), entities.SubscriptionBenefits{}))
	assert.Equal(t, int64(1700), calc.LeadCost(uuid.New(), entities.SubscriptionBenefits{HasActiveSubscription: true, LeadDiscountPercent: 15}))
	assert.Equal(t, int64(3000), calc.LeadCost(category, entities.SubscriptionBenefits{}))
	// discount ignored without an active subscription
	assert.Equal(t, int64(2000), calc.LeadCost(uuid.New(), entities.SubscriptionBenefits{LeadDiscountPercent: 50}))
	// never below one cent
	assert.Equal(t, int64(1), calc.LeadCost(uuid.New(), entities.SubscriptionBenefits{HasActiveSubscription: true, LeadDiscountPercent: 100}))
	assert.Equal(t, int64(1), calc.LeadCost(uuid.New(), entities.SubscriptionBenefits{HasActiveSubscription: true, LeadDiscountPercent: 150}))
}

func TestPricing_LeadCostMonotonic(t *testing.T) {
	calc := newPricing()
	category := uuid.New()

	prev := calc.LeadCost(category, entities.SubscriptionBenefits{})
	for pct := 0.0; pct <= 120; pct += 0.5 {
		cost := calc.LeadCost(category, entities.SubscriptionBenefits{HasActiveSubscription: true, LeadDiscountPercent: pct})
		assert.GreaterOrEqual(t, cost, int64(1), "discount %.1f", pct)
		assert.LessOrEqual(t, cost, prev, "discount %.1f", pct)
		prev = cost
	}
}

func TestPricing_PayoutSplitNoMinimum(t *testing.T) {
	calc := usecases.NewPricingCalculator(config.PricingConfig{PlatformFeePercent: 0.10})

	split, err := calc.PayoutSplit(100)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), split.ProviderShare)
	assert.Equal(t, int64(1000), split.PlatformFee)

	split, err = calc.PayoutSplit(0.04)
	require.NoError(t, err)
	assert.Equal(t, int64(0), split.PlatformFee)
	assert.Equal(t, int64(4), split.ProviderShare)
}

func TestPricing_PayoutSplit(t *testing.T) {
	calc := newPricing()

	split, err := calc.PayoutSplit(100)
	require.NoError(t, err)
	assert.Equal(t, usecases.PayoutSplit{TotalCents: 10000, PlatformFee: 1000, ProviderShare: 9000}, split)

	// minimum fee applies on small jobs
	split, err = calc.PayoutSplit(20)
	require.NoError(t, err)
	assert.Equal(t, int64(500), split.PlatformFee)
	assert.Equal(t, int64(1500), split.ProviderShare)

	// fee never exceeds the total
	split, err = calc.PayoutSplit(3)
	require.NoError(t, err)
	assert.Equal(t, int64(300), split.PlatformFee)
	assert.Equal(t, int64(0), split.ProviderShare)

	for _, bad := range []float64{0, -10, 0.001} {
		_, err = calc.PayoutSplit(bad)
		var appErr *domainerrors.AppError
		require.ErrorAs(t, err, &appErr, "%v", bad)
		assert.Equal(t, domainerrors.CodeInvalidAmount, appErr.Code)
	}
}

func TestPricing_PayoutSplitProperties(t *testing.T) {
	calc := newPricing()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		total := float64(rng.Intn(10_000_000)+1) / 100
		split, err := calc.PayoutSplit(total)
		require.NoError(t, err)
		assert.Equal(t, split.TotalCents, split.PlatformFee+split.ProviderShare, "total %.2f", total)
		assert.GreaterOrEqual(t, split.ProviderShare, int64(0))
		assert.GreaterOrEqual(t, split.PlatformFee, int64(0))
	}
}

func TestPricing_Defaults(t *testing.T) {
	calc := usecases.NewPricingCalculator(config.PricingConfig{PlatformFeePercent: 2, MinimumFeeDollars: -1})
	assert.Equal(t, usecases.DefaultLeadCostCents, calc.BaseLeadCost(uuid.New()))

	split, err := calc.PayoutSplit(100)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), split.PlatformFee)
}

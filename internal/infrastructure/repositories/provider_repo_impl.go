package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"leadrouter.backend/internal/domain/entities"
	"leadrouter.backend/internal/infrastructure/models"
)

const subscriptionStatusActive = "active"

// ProviderRepositoryImpl implements ProviderRepository
type ProviderRepositoryImpl struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepositoryImpl {
	return &ProviderRepositoryImpl{db: db}
}

func (r *ProviderRepositoryImpl) Create(ctx context.Context, p *entities.Provider) error {
	now := time.Now().UTC()
	if p.ProfileID == uuid.Nil {
		p.ProfileID = uuid.New()
	}
	m := &models.ProviderProfile{
		ID:           p.ProfileID,
		UserID:       p.UserID,
		BusinessID:   p.BusinessID,
		BusinessName: p.BusinessName,
		Name:         p.Name,
		Email:        p.Email,
		IsActive:     p.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return mapError(GetDB(ctx, r.db).WithContext(ctx).Create(m).Error)
}

func (r *ProviderRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Provider, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *ProviderRepositoryImpl) GetByBusinessID(ctx context.Context, businessID uuid.UUID) (*entities.Provider, error) {
	return r.first(ctx, "business_id = ?", businessID)
}

func (r *ProviderRepositoryImpl) first(ctx context.Context, cond string, arg interface{}) (*entities.Provider, error) {
	var m models.ProviderProfile
	if err := GetDB(ctx, r.db).WithContext(ctx).Where(cond, arg).First(&m).Error; err != nil {
		return nil, mapError(err)
	}
	return &entities.Provider{
		UserID:       m.UserID,
		ProfileID:    m.ID,
		BusinessID:   m.BusinessID,
		BusinessName: m.BusinessName,
		Name:         m.Name,
		Email:        m.Email,
		IsActive:     m.IsActive,
	}, nil
}

// SubscriptionRepositoryImpl implements SubscriptionRepository
type SubscriptionRepositoryImpl struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepositoryImpl {
	return &SubscriptionRepositoryImpl{db: db, now: time.Now}
}

// GetBenefits returns the most recent active subscription's perks, or the
// free-tier zero value when none is active.
func (r *SubscriptionRepositoryImpl) GetBenefits(ctx context.Context, providerID uuid.UUID) (entities.SubscriptionBenefits, error) {
	var m models.ProviderSubscription
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ? AND status = ?", providerID, subscriptionStatusActive).
		Where("(current_period_end IS NULL OR current_period_end > ?)", r.now().UTC()).
		Order("created_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.SubscriptionBenefits{}, nil
	}
	if err != nil {
		return entities.SubscriptionBenefits{}, err
	}

	benefits := entities.SubscriptionBenefits{
		HasActiveSubscription: true,
		Tier:                  m.Tier,
		LeadDiscountPercent:   m.LeadDiscountPercent,
	}
	if m.MaxLeadsPerMonth != nil {
		benefits.MaxLeadsPerMonth = *m.MaxLeadsPerMonth
	}
	return benefits, nil
}

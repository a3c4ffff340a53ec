package repositories

import (
	"context"

	"github.com/google/uuid"
	"leadrouter.backend/internal/domain/entities"
)

// ProviderRepository resolves providers by account or business
type ProviderRepository interface {
	Create(ctx context.Context, provider *entities.Provider) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Provider, error)
	GetByBusinessID(ctx context.Context, businessID uuid.UUID) (*entities.Provider, error)
}

// SubscriptionRepository reads the provider's current plan benefits
type SubscriptionRepository interface {
	GetBenefits(ctx context.Context, providerID uuid.UUID) (entities.SubscriptionBenefits, error)
}

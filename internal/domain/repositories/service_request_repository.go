package repositories

import (
	"context"

	"github.com/google/uuid"
	"leadrouter.backend/internal/domain/entities"
)

// ServiceRequestRepository interface
type ServiceRequestRepository interface {
	Create(ctx context.Context, request *entities.ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.ServiceRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ServiceRequestStatus) error
}

// AlternativeProviderRepository interface
type AlternativeProviderRepository interface {
	Create(ctx context.Context, selection *entities.AlternativeProviderSelection) error
	// ListByServiceRequest returns selections ordered by position.
	ListByServiceRequest(ctx context.Context, serviceRequestID uuid.UUID) ([]*entities.AlternativeProviderSelection, error)
}

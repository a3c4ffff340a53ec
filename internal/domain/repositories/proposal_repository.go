package repositories

import (
	"context"

	"github.com/google/uuid"
	"leadrouter.backend/internal/domain/entities"
)

// ProposalRepository interface
type ProposalRepository interface {
	Create(ctx context.Context, proposal *entities.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Proposal, error)
	GetByLeadID(ctx context.Context, leadID uuid.UUID) (*entities.Proposal, error)
	ListPaidByProvider(ctx context.Context, providerProfileID uuid.UUID) ([]*entities.Proposal, error)
	Update(ctx context.Context, proposal *entities.Proposal) error
}

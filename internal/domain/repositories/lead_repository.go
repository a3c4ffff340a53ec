package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"leadrouter.backend/internal/domain/entities"
)

// LeadFilter narrows provider inbox queries
type LeadFilter struct {
	Statuses []entities.LeadStatus
	Limit    int
	Offset   int
}

// LeadRepository interface
type LeadRepository interface {
	Create(ctx context.Context, lead *entities.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Lead, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, filter LeadFilter) ([]*entities.Lead, int, error)
	// Update persists the lead if its version is unchanged and bumps the version.
	// Returns ErrConflict when another writer got there first.
	Update(ctx context.Context, lead *entities.Lead) error
	HasLiveLead(ctx context.Context, serviceRequestID, providerID uuid.UUID) (bool, error)
	HasAcceptedLead(ctx context.Context, serviceRequestID uuid.UUID) (bool, error)
	CountAcceptedSince(ctx context.Context, providerID uuid.UUID, since time.Time) (int, error)
	// ListFallbackDue returns due leads oldest expiry first. Rows whose metadata
	// cannot be decoded come back as ids so one bad row never blocks the batch.
	ListFallbackDue(ctx context.Context, now time.Time, limit int) ([]*entities.Lead, []uuid.UUID, error)
	// MarkFallbackProcessed stamps a lead as handled by the sweep without loading it.
	MarkFallbackProcessed(ctx context.Context, id uuid.UUID, at time.Time) error
}

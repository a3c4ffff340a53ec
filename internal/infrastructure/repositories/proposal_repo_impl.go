package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"leadrouter.backend/internal/domain/entities"
	domainerrors "leadrouter.backend/internal/domain/errors"
	"leadrouter.backend/internal/infrastructure/models"
)

// ProposalRepositoryImpl implements ProposalRepository
type ProposalRepositoryImpl struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepositoryImpl {
	return &ProposalRepositoryImpl{db: db}
}

func (r *ProposalRepositoryImpl) Create(ctx context.Context, p *entities.Proposal) error {
	now := time.Now().UTC()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return mapError(GetDB(ctx, r.db).WithContext(ctx).Create(r.toModel(p)).Error)
}

func (r *ProposalRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Proposal, error) {
	var m models.Proposal
	db := lockedDB(ctx, GetDB(ctx, r.db).WithContext(ctx))
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapError(err)
	}
	return r.toEntity(&m), nil
}

func (r *ProposalRepositoryImpl) GetByLeadID(ctx context.Context, leadID uuid.UUID) (*entities.Proposal, error) {
	var m models.Proposal
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("lead_id = ?", leadID).First(&m).Error; err != nil {
		return nil, mapError(err)
	}
	return r.toEntity(&m), nil
}

// ListPaidByProvider returns proposals whose customer payment succeeded, newest first.
func (r *ProposalRepositoryImpl) ListPaidByProvider(ctx context.Context, providerProfileID uuid.UUID) ([]*entities.Proposal, error) {
	var ms []models.Proposal
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("provider_id = ? AND payment_status = ?", providerProfileID, string(entities.ProposalPaymentSucceeded)).
		Order("paid_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Proposal, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out, nil
}

func (r *ProposalRepositoryImpl) Update(ctx context.Context, p *entities.Proposal) error {
	now := time.Now().UTC()
	var payoutStatus *string
	if p.PayoutStatus != "" {
		s := string(p.PayoutStatus)
		payoutStatus = &s
	}
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Proposal{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"details":                  p.Details,
			"price":                    p.Price,
			"status":                   string(p.Status),
			"stripe_payment_intent_id": p.PaymentIntentID.Ptr(),
			"payment_status":           string(p.PaymentStatus),
			"paid_at":                  p.PaidAt,
			"provider_payout_amount":   p.ProviderPayoutAmount.Ptr(),
			"platform_fee_amount":      p.PlatformFeeAmount.Ptr(),
			"payout_status":            payoutStatus,
			"payout_processed_at":      p.PayoutProcessedAt,
			"stripe_transfer_id":       p.TransferID.Ptr(),
			"updated_at":               now,
		})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	p.UpdatedAt = now
	return nil
}

func (r *ProposalRepositoryImpl) toModel(p *entities.Proposal) *models.Proposal {
	var leadID *uuid.UUID
	if p.LeadID != uuid.Nil {
		id := p.LeadID
		leadID = &id
	}
	var payoutStatus *string
	if p.PayoutStatus != "" {
		s := string(p.PayoutStatus)
		payoutStatus = &s
	}
	return &models.Proposal{
		ID:                    p.ID,
		ServiceRequestID:      p.ServiceRequestID,
		ProviderID:            p.ProviderID,
		LeadID:                leadID,
		Details:               p.Details,
		Price:                 p.Price,
		Status:                string(p.Status),
		StripePaymentIntentID: p.PaymentIntentID.Ptr(),
		PaymentStatus:         string(p.PaymentStatus),
		PaidAt:                p.PaidAt,
		ProviderPayoutAmount:  p.ProviderPayoutAmount.Ptr(),
		PlatformFeeAmount:     p.PlatformFeeAmount.Ptr(),
		PayoutStatus:          payoutStatus,
		PayoutProcessedAt:     p.PayoutProcessedAt,
		StripeTransferID:      p.TransferID.Ptr(),
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func (r *ProposalRepositoryImpl) toEntity(m *models.Proposal) *entities.Proposal {
	p := &entities.Proposal{
		ID:                   m.ID,
		ServiceRequestID:     m.ServiceRequestID,
		ProviderID:           m.ProviderID,
		Details:              m.Details,
		Price:                m.Price,
		Status:               entities.ProposalStatus(m.Status),
		PaymentIntentID:      null.StringFromPtr(m.StripePaymentIntentID),
		PaymentStatus:        entities.ProposalPaymentStatus(m.PaymentStatus),
		PaidAt:               m.PaidAt,
		ProviderPayoutAmount: null.Int64FromPtr(m.ProviderPayoutAmount),
		PlatformFeeAmount:    null.Int64FromPtr(m.PlatformFeeAmount),
		PayoutProcessedAt:    m.PayoutProcessedAt,
		TransferID:           null.StringFromPtr(m.StripeTransferID),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
	if m.LeadID != nil {
		p.LeadID = *m.LeadID
	}
	if m.PayoutStatus != nil {
		p.PayoutStatus = entities.PayoutStatus(*m.PayoutStatus)
	}
	return p
}

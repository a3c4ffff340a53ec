package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"leadrouter.backend/internal/domain/entities"
	domainerrors "leadrouter.backend/internal/domain/errors"
	domainRepos "leadrouter.backend/internal/domain/repositories"
	"leadrouter.backend/internal/infrastructure/models"
)

// LeadRepositoryImpl implements LeadRepository
type LeadRepositoryImpl struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepositoryImpl {
	return &LeadRepositoryImpl{db: db}
}

func liveStatusStrings() []string {
	out := make([]string, 0, len(entities.LiveLeadStatuses))
	for _, s := range entities.LiveLeadStatuses {
		out = append(out, string(s))
	}
	return out
}

func (r *LeadRepositoryImpl) Create(ctx context.Context, lead *entities.Lead) error {
	now := time.Now().UTC()
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	lead.Version = 1
	lead.CreatedAt = now
	lead.UpdatedAt = now

	m, err := r.toModel(lead)
	if err != nil {
		return err
	}
	return mapError(GetDB(ctx, r.db).WithContext(ctx).Create(m).Error)
}

func (r *LeadRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Lead, error) {
	var m models.Lead
	db := lockedDB(ctx, GetDB(ctx, r.db).WithContext(ctx))
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapError(err)
	}
	return r.toEntity(&m)
}

func (r *LeadRepositoryImpl) ListByProvider(ctx context.Context, providerID uuid.UUID, filter domainRepos.LeadFilter) ([]*entities.Lead, int, error) {
	query := func() *gorm.DB {
		q := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Lead{}).Where("provider_id = ?", providerID)
		if len(filter.Statuses) > 0 {
			statuses := make([]string, 0, len(filter.Statuses))
			for _, s := range filter.Statuses {
				statuses = append(statuses, string(s))
			}
			q = q.Where("status IN ?", statuses)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := query().Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	var ms []models.Lead
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	leads := make([]*entities.Lead, 0, len(ms))
	for i := range ms {
		lead, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	return leads, int(total), nil
}

func (r *LeadRepositoryImpl) Update(ctx context.Context, lead *entities.Lead) error {
	metadata, err := marshalJSON(lead.Metadata)
	if err != nil {
		return fmt.Errorf("encode lead metadata: %w", err)
	}
	now := time.Now().UTC()

	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Lead{}).
		Where("id = ? AND version = ?", lead.ID, lead.Version).
		Updates(map[string]interface{}{
			"status":                   string(lead.Status),
			"stripe_payment_intent_id": lead.PaymentIntentID.Ptr(),
			"lead_cost":                lead.LeadCostCents,
			"customer_name":            lead.CustomerName.Ptr(),
			"customer_email":           lead.CustomerEmail.Ptr(),
			"customer_phone":           lead.CustomerPhone.Ptr(),
			"rejection_reason":         lead.RejectionReason.Ptr(),
			"rejection_reason_other":   lead.RejectionReasonOther.Ptr(),
			"metadata":                 metadata,
			"priority_expires_at":      lead.PriorityExpiresAt,
			"fallback_processed_at":    lead.FallbackProcessedAt,
			"responded_at":             lead.RespondedAt,
			"version":                  lead.Version + 1,
			"updated_at":               now,
		})
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	lead.Version++
	lead.UpdatedAt = now
	return nil
}

func (r *LeadRepositoryImpl) HasLiveLead(ctx context.Context, serviceRequestID, providerID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Lead{}).
		Where("service_request_id = ? AND provider_id = ? AND status IN ?", serviceRequestID, providerID, liveStatusStrings()).
		Count(&count).Error
	return count > 0, err
}

func (r *LeadRepositoryImpl) HasAcceptedLead(ctx context.Context, serviceRequestID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Lead{}).
		Where("service_request_id = ? AND status = ?", serviceRequestID, string(entities.LeadStatusAccepted)).
		Count(&count).Error
	return count > 0, err
}

// CountAcceptedSince counts leads accepted on or after since, by response time.
func (r *LeadRepositoryImpl) CountAcceptedSince(ctx context.Context, providerID uuid.UUID, since time.Time) (int, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Lead{}).
		Where("provider_id = ? AND status = ? AND responded_at >= ?", providerID, string(entities.LeadStatusAccepted), since.UTC()).
		Count(&count).Error
	return int(count), err
}

func (r *LeadRepositoryImpl) ListFallbackDue(ctx context.Context, now time.Time, limit int) ([]*entities.Lead, []uuid.UUID, error) {
	q := GetDB(ctx, r.db).WithContext(ctx).
		Where("status IN ?", []string{string(entities.LeadStatusSubmitted), string(entities.LeadStatusRouted)}).
		Where("priority_expires_at IS NOT NULL AND priority_expires_at <= ?", now.UTC()).
		Where("fallback_processed_at IS NULL").
		Order("priority_expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var ms []models.Lead
	if err := q.Find(&ms).Error; err != nil {
		return nil, nil, err
	}
	leads := make([]*entities.Lead, 0, len(ms))
	var undecodable []uuid.UUID
	for i := range ms {
		lead, err := r.toEntity(&ms[i])
		if err != nil {
			undecodable = append(undecodable, ms[i].ID)
			continue
		}
		leads = append(leads, lead)
	}
	return leads, undecodable, nil
}

func (r *LeadRepositoryImpl) MarkFallbackProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Lead{}).
		Where("id = ? AND fallback_processed_at IS NULL", id).
		Updates(map[string]interface{}{
			"fallback_processed_at": at.UTC(),
			"version":               gorm.Expr("version + 1"),
		})
	return res.Error
}

func (r *LeadRepositoryImpl) toModel(lead *entities.Lead) (*models.Lead, error) {
	metadata, err := marshalJSON(lead.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode lead metadata: %w", err)
	}
	var requestID *uuid.UUID
	if lead.ServiceRequestID != uuid.Nil {
		id := lead.ServiceRequestID
		requestID = &id
	}
	return &models.Lead{
		ID:                    lead.ID,
		ServiceRequestID:      requestID,
		CustomerID:            lead.CustomerID,
		ProviderID:            lead.ProviderID,
		BusinessID:            lead.BusinessID,
		CategoryID:            lead.CategoryID,
		Status:                string(lead.Status),
		StripePaymentIntentID: lead.PaymentIntentID.Ptr(),
		LeadCost:              lead.LeadCostCents,
		CustomerName:          lead.CustomerName.Ptr(),
		CustomerEmail:         lead.CustomerEmail.Ptr(),
		CustomerPhone:         lead.CustomerPhone.Ptr(),
		RejectionReason:       lead.RejectionReason.Ptr(),
		RejectionReasonOther:  lead.RejectionReasonOther.Ptr(),
		Metadata:              metadata,
		PriorityExpiresAt:     lead.PriorityExpiresAt,
		FallbackProcessedAt:   lead.FallbackProcessedAt,
		RespondedAt:           lead.RespondedAt,
		Version:               lead.Version,
		CreatedAt:             lead.CreatedAt,
		UpdatedAt:             lead.UpdatedAt,
	}, nil
}

func (r *LeadRepositoryImpl) toEntity(m *models.Lead) (*entities.Lead, error) {
	var metadata entities.LeadMetadata
	if err := unmarshalJSON(m.Metadata, &metadata); err != nil {
		return nil, fmt.Errorf("decode lead %s metadata: %w", m.ID, err)
	}
	lead := &entities.Lead{
		ID:                   m.ID,
		CustomerID:           m.CustomerID,
		ProviderID:           m.ProviderID,
		BusinessID:           m.BusinessID,
		CategoryID:           m.CategoryID,
		Status:               entities.LeadStatus(m.Status),
		PaymentIntentID:      null.StringFromPtr(m.StripePaymentIntentID),
		LeadCostCents:        m.LeadCost,
		CustomerName:         null.StringFromPtr(m.CustomerName),
		CustomerEmail:        null.StringFromPtr(m.CustomerEmail),
		CustomerPhone:        null.StringFromPtr(m.CustomerPhone),
		RejectionReason:      null.StringFromPtr(m.RejectionReason),
		RejectionReasonOther: null.StringFromPtr(m.RejectionReasonOther),
		Metadata:             metadata,
		PriorityExpiresAt:    m.PriorityExpiresAt,
		FallbackProcessedAt:  m.FallbackProcessedAt,
		RespondedAt:          m.RespondedAt,
		Version:              m.Version,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
	if m.ServiceRequestID != nil {
		lead.ServiceRequestID = *m.ServiceRequestID
	}
	return lead, nil
}
